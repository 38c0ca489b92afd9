package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/slotwise/slotwise-api/internal/dto"
	"github.com/slotwise/slotwise-api/internal/models"
)

// ServiceRepository persists the provider catalog.
type ServiceRepository struct {
	db *sqlx.DB
}

// NewServiceRepository creates a new service repository.
func NewServiceRepository(db *sqlx.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

// Create stores a new catalog listing.
func (r *ServiceRepository) Create(ctx context.Context, svc *models.Service) error {
	if svc.ID == "" {
		svc.ID = uuid.NewString()
	}
	if svc.DurationMinutes <= 0 {
		svc.DurationMinutes = models.DefaultServiceDurationMinutes
	}
	now := time.Now().UTC()
	svc.CreatedAt = now
	svc.UpdatedAt = now

	const query = `
INSERT INTO services (id, provider_id, service_name, description, category, price, duration_minutes, availability, location, image_url, created_at, updated_at)
VALUES (:id, :provider_id, :service_name, :description, :category, :price, :duration_minutes, :availability, :location, :image_url, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, svc); err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	return nil
}

// List returns catalog listings joined with the provider name, narrowed by
// the optional filter fields.
func (r *ServiceRepository) List(ctx context.Context, filter dto.ServiceFilter) ([]models.ServiceListing, error) {
	base := `
SELECT s.id, s.provider_id, s.service_name, s.description, s.category, s.price, s.duration_minutes,
       s.availability, s.location, s.image_url, s.created_at, s.updated_at,
       u.name AS provider_name
FROM services s
JOIN users u ON u.id = s.provider_id
WHERE 1=1`

	var conditions []string
	var args []interface{}

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("s.category ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Category+"%")
	}
	if filter.Keyword != "" {
		conditions = append(conditions, fmt.Sprintf("(s.service_name ILIKE $%d OR s.description ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Keyword+"%")
	}
	if filter.Location != "" {
		conditions = append(conditions, fmt.Sprintf("s.location ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Location+"%")
	}
	if filter.ProviderID != "" {
		conditions = append(conditions, fmt.Sprintf("s.provider_id = $%d", len(args)+1))
		args = append(args, filter.ProviderID)
	}

	query := base
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY s.created_at DESC"

	var listings []models.ServiceListing
	if err := r.db.SelectContext(ctx, &listings, query, args...); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return listings, nil
}

// FindByID loads a single catalog entry. Returns sql.ErrNoRows when absent.
func (r *ServiceRepository) FindByID(ctx context.Context, id string) (*models.Service, error) {
	const query = `SELECT id, provider_id, service_name, description, category, price, duration_minutes, availability, location, image_url, created_at, updated_at
FROM services WHERE id = $1`
	var svc models.Service
	if err := r.db.GetContext(ctx, &svc, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find service by id: %w", err)
	}
	return &svc, nil
}

// Update edits a listing owned by providerID. sql.ErrNoRows covers both a
// missing listing and one owned by another provider.
func (r *ServiceRepository) Update(ctx context.Context, svc *models.Service) error {
	svc.UpdatedAt = time.Now().UTC()
	const query = `
UPDATE services SET service_name = :service_name, description = :description, category = :category,
       price = :price, duration_minutes = :duration_minutes, availability = :availability,
       location = :location, image_url = :image_url, updated_at = :updated_at
WHERE id = :id AND provider_id = :provider_id`
	result, err := r.db.NamedExecContext(ctx, query, svc)
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update service rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a listing owned by providerID, with the same conflated
// not-found semantics as Update.
func (r *ServiceRepository) Delete(ctx context.Context, id, providerID string) error {
	const query = `DELETE FROM services WHERE id = $1 AND provider_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, providerID)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete service rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
