package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/slotwise/slotwise-api/internal/models"
	"github.com/slotwise/slotwise-api/pkg/jobs"
)

const (
	eventBookingCreated       = "booking.created"
	eventBookingStatusChanged = "booking.status_changed"
)

// BookingEvent is the payload published for each booking write.
type BookingEvent struct {
	BookingID  string               `json:"booking_id"`
	ProviderID string               `json:"provider_id"`
	CustomerID string               `json:"customer_id"`
	Status     models.BookingStatus `json:"status"`
}

// BookingNotifier publishes booking lifecycle events onto a background
// queue. Delivery is best-effort; the write path never waits on it.
type BookingNotifier struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewBookingNotifier builds the notifier and its backing queue.
func NewBookingNotifier(opts jobs.Options) *BookingNotifier {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &BookingNotifier{logger: logger}
	n.queue = jobs.NewQueue("booking-events", n.handle, opts)
	return n
}

// Start launches the event workers.
func (n *BookingNotifier) Start(ctx context.Context) {
	if n == nil {
		return
	}
	n.queue.Start(ctx)
}

// Stop drains and stops the workers.
func (n *BookingNotifier) Stop() {
	if n == nil {
		return
	}
	n.queue.Stop()
}

// BookingCreated publishes a creation event.
func (n *BookingNotifier) BookingCreated(booking models.Booking) {
	n.publish(eventBookingCreated, booking)
}

// BookingStatusChanged publishes a transition event.
func (n *BookingNotifier) BookingStatusChanged(booking models.Booking) {
	n.publish(eventBookingStatusChanged, booking)
}

func (n *BookingNotifier) publish(eventType string, booking models.Booking) {
	if n == nil {
		return
	}
	job := jobs.Job{
		ID:   uuid.NewString(),
		Type: eventType,
		Payload: BookingEvent{
			BookingID:  booking.ID,
			ProviderID: booking.ProviderID,
			CustomerID: booking.CustomerID,
			Status:     booking.Status,
		},
	}
	if err := n.queue.Enqueue(job); err != nil {
		n.logger.Warn("booking event dropped",
			zap.String("type", eventType),
			zap.String("booking_id", booking.ID),
			zap.Error(err))
	}
}

func (n *BookingNotifier) handle(_ context.Context, job jobs.Job) error {
	event, ok := job.Payload.(BookingEvent)
	if !ok {
		n.logger.Warn("unexpected event payload", zap.String("job_id", job.ID))
		return nil
	}
	// Downstream delivery (mail, webhooks) hangs off this hook; today the
	// events are recorded in the structured log.
	n.logger.Info("booking event",
		zap.String("type", job.Type),
		zap.String("booking_id", event.BookingID),
		zap.String("provider_id", event.ProviderID),
		zap.String("customer_id", event.CustomerID),
		zap.String("status", string(event.Status)))
	return nil
}
