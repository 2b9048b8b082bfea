package hospital

import (
	"context"
)

// Repository is the persistence gateway for hospital records. Implementations
// must express every mutation as a single conditional statement scoped by
// external id and the deleted flag, so two concurrent requests cannot both
// succeed against a row the first one already retired.
type Repository interface {
	// Create persists a new hospital. Returns ErrDuplicateKey when the
	// external id collides with an existing row.
	Create(ctx context.Context, h *Hospital) error

	// GetActiveByExternalID retrieves a non-deleted hospital. Returns
	// ErrHospitalNotFound if absent or soft-deleted.
	GetActiveByExternalID(ctx context.Context, externalID string) (*Hospital, error)

	// UpdateActiveByExternalID applies only the provided fields to a
	// non-deleted hospital and refreshes updated_at. It must not resurrect a
	// deleted record. Returns ErrHospitalNotFound if nothing matched.
	UpdateActiveByExternalID(ctx context.Context, externalID string, cmd *UpdateHospitalCommand) (*Hospital, error)

	// SoftDeleteByExternalID flips the deleted flag on a non-deleted hospital
	// and refreshes updated_at. Returns ErrHospitalNotFound if nothing
	// matched, which makes a second delete on the same id a not-found.
	SoftDeleteByExternalID(ctx context.Context, externalID string) error

	// ExistsActiveByName checks name uniqueness among non-deleted records
	// without fetching the full row.
	ExistsActiveByName(ctx context.Context, name string) (bool, error)
}
