package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/example/booking-engine/internal/persistence"
)

// SpaceRepository implements persistence.SpaceRepository on SQLite.
type SpaceRepository struct {
	pool *ConnectionPool
}

// NewSpaceRepository binds the repository to the pool.
func NewSpaceRepository(pool *ConnectionPool) *SpaceRepository {
	return &SpaceRepository{pool: pool}
}

const spaceColumns = `id, tenant_id, office_id, name, type, capacity, floor, zone, requires_approval, is_active, created_at, updated_at`

// CreateSpace inserts a space row.
func (r *SpaceRepository) CreateSpace(ctx context.Context, space persistence.Space) error {
	if space.ID == "" {
		return persistence.ErrConstraintViolation
	}
	now := time.Now().UTC()
	if space.CreatedAt.IsZero() {
		space.CreatedAt = now
	}
	if space.UpdatedAt.IsZero() {
		space.UpdatedAt = now
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO spaces (`+spaceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		space.ID,
		space.TenantID,
		space.OfficeID,
		space.Name,
		space.Type,
		space.Capacity,
		space.Floor,
		space.Zone,
		encodeBool(space.RequiresApproval),
		encodeBool(space.IsActive),
		encodeTime(space.CreatedAt),
		encodeTime(space.UpdatedAt),
	)
	return mapError(err)
}

// UpdateSpace rewrites the mutable columns of an existing space.
func (r *SpaceRepository) UpdateSpace(ctx context.Context, space persistence.Space) error {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE spaces
		SET office_id = ?, name = ?, type = ?, capacity = ?, floor = ?, zone = ?,
		    requires_approval = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		space.OfficeID,
		space.Name,
		space.Type,
		space.Capacity,
		space.Floor,
		space.Zone,
		encodeBool(space.RequiresApproval),
		encodeBool(space.IsActive),
		encodeTime(time.Now().UTC()),
		space.ID,
	)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetSpace retrieves a space by ID.
func (r *SpaceRepository) GetSpace(ctx context.Context, id string) (persistence.Space, error) {
	row := r.pool.db.QueryRowContext(ctx, `SELECT `+spaceColumns+` FROM spaces WHERE id = ?`, id)
	space, err := scanSpace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.Space{}, persistence.ErrNotFound
	}
	return space, err
}

// ListSpaces returns the tenant's spaces ordered by name.
func (r *SpaceRepository) ListSpaces(ctx context.Context, tenantID string) ([]persistence.Space, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT `+spaceColumns+` FROM spaces WHERE tenant_id = ? ORDER BY name, id`, tenantID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var spaces []persistence.Space
	for rows.Next() {
		space, err := scanSpace(rows)
		if err != nil {
			return nil, err
		}
		spaces = append(spaces, space)
	}
	return spaces, mapError(rows.Err())
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSpace(row rowScanner) (persistence.Space, error) {
	var (
		space                persistence.Space
		requiresApproval     int
		isActive             int
		createdAt, updatedAt string
	)
	err := row.Scan(
		&space.ID,
		&space.TenantID,
		&space.OfficeID,
		&space.Name,
		&space.Type,
		&space.Capacity,
		&space.Floor,
		&space.Zone,
		&requiresApproval,
		&isActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Space{}, err
	}
	space.RequiresApproval = requiresApproval != 0
	space.IsActive = isActive != 0
	if space.CreatedAt, err = decodeTime(createdAt); err != nil {
		return persistence.Space{}, err
	}
	if space.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return persistence.Space{}, err
	}
	return space, nil
}
