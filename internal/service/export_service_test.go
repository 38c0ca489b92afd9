package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotwise/slotwise-api/internal/models"
	appErrors "github.com/slotwise/slotwise-api/pkg/errors"
)

type mockBookingLister struct {
	details []models.BookingDetail
	err     error
}

func (m *mockBookingLister) ListForProvider(ctx context.Context, providerID string) ([]models.BookingDetail, error) {
	return m.details, m.err
}

func exportFixture() []models.BookingDetail {
	return []models.BookingDetail{
		{
			Booking: models.Booking{
				ID:        "b1",
				StartTime: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
				EndTime:   time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC),
				Status:    models.StatusConfirmed,
			},
			ServiceName:  "Haircut",
			CustomerName: "Sam",
			Price:        30,
		},
	}
}

func TestExportBookingsCSV(t *testing.T) {
	svc := NewExportService(&mockBookingLister{details: exportFixture()}, nil)

	result, err := svc.ExportBookings(context.Background(), "prov-1", "csv")

	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Contains(t, result.Filename, ".csv")
	assert.True(t, bytes.Contains(result.Data, []byte("Haircut")))
	assert.True(t, bytes.Contains(result.Data, []byte("Confirmed")))
	assert.True(t, bytes.Contains(result.Data, []byte("30.00")))
}

func TestExportBookingsPDF(t *testing.T) {
	svc := NewExportService(&mockBookingLister{details: exportFixture()}, nil)

	result, err := svc.ExportBookings(context.Background(), "prov-1", "pdf")

	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, bytes.HasPrefix(result.Data, []byte("%PDF")))
}

func TestExportBookingsUnsupportedFormat(t *testing.T) {
	svc := NewExportService(&mockBookingLister{}, nil)

	_, err := svc.ExportBookings(context.Background(), "prov-1", "xlsx")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportBookingsEmptyLedgerStillRenders(t *testing.T) {
	svc := NewExportService(&mockBookingLister{}, nil)

	result, err := svc.ExportBookings(context.Background(), "prov-1", "csv")

	require.NoError(t, err)
	assert.True(t, bytes.Contains(result.Data, []byte("Booking ID")))
}
