package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/slotwise/slotwise-api/internal/models"
	appErrors "github.com/slotwise/slotwise-api/pkg/errors"
	"github.com/slotwise/slotwise-api/pkg/export"
)

type providerBookingReader interface {
	ListForProvider(ctx context.Context, providerID string) ([]models.BookingDetail, error)
}

type tableRenderer interface {
	Render(table export.Table) ([]byte, error)
}

// ExportService renders a provider's booking ledger into downloadable files.
type ExportService struct {
	bookings providerBookingReader
	csv      tableRenderer
	pdf      tableRenderer
	logger   *zap.Logger
}

// NewExportService constructs the export service with the built-in renderers.
func NewExportService(bookings providerBookingReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		bookings: bookings,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

// ExportResult carries the rendered file and its response metadata.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportBookings renders the provider's bookings in the requested format.
// Supported formats are "csv" and "pdf".
func (s *ExportService) ExportBookings(ctx context.Context, providerID, format string) (*ExportResult, error) {
	var (
		renderer    tableRenderer
		contentType string
		extension   string
	)
	switch strings.ToLower(format) {
	case "csv":
		renderer, contentType, extension = s.csv, "text/csv", "csv"
	case "pdf":
		renderer, contentType, extension = s.pdf, "application/pdf", "pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	details, err := s.bookings.ListForProvider(ctx, providerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bookings for export")
	}

	table := export.Table{
		Title:   "Bookings",
		Columns: []string{"Booking ID", "Service", "Customer", "Start Time", "End Time", "Status", "Price"},
		Rows:    make([][]string, 0, len(details)),
	}
	for _, d := range details {
		table.Rows = append(table.Rows, []string{
			d.ID,
			d.ServiceName,
			d.CustomerName,
			d.StartTime.UTC().Format(time.RFC3339),
			d.EndTime.UTC().Format(time.RFC3339),
			string(d.Status),
			fmt.Sprintf("%.2f", d.Price),
		})
	}

	data, err := renderer.Render(table)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.logger.Info("bookings exported",
		zap.String("provider_id", providerID),
		zap.String("format", extension),
		zap.Int("rows", len(table.Rows)))

	return &ExportResult{
		Filename:    fmt.Sprintf("bookings_%s.%s", time.Now().UTC().Format("20060102_150405"), extension),
		ContentType: contentType,
		Data:        data,
	}, nil
}
