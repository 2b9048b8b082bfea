package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/arogyanet/hospital-registry/internal/domain/hospital"
)

// pgUniqueViolation is the Postgres error code for a unique constraint hit.
const pgUniqueViolation = "23505"

// nameIndex is the partial unique index guarding name uniqueness among
// non-deleted rows. Keep in sync with pkg/database.createIndexes.
const nameIndex = "idx_hospitals_name_active"

// HospitalRepository is the GORM-backed persistence gateway. Every mutation is
// a single conditional statement scoped by external_id AND NOT deleted; a row
// that transitions to deleted between two requests simply stops matching.
type HospitalRepository struct {
	db *gorm.DB
}

func NewHospitalRepo(db *gorm.DB) *HospitalRepository {
	return &HospitalRepository{db: db}
}

func (r *HospitalRepository) Create(ctx context.Context, h *hospital.Hospital) error {
	if err := r.db.WithContext(ctx).Create(h).Error; err != nil {
		return translateInsertError(err)
	}
	return nil
}

// translateInsertError maps unique violations onto domain errors, keyed by
// the constraint that fired: the name index means a live record already
// carries the name, anything else is the external id colliding.
func translateInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		if pgErr.ConstraintName == nameIndex {
			return hospital.ErrDuplicateName
		}
		return hospital.ErrDuplicateKey
	}
	return fmt.Errorf("inserting hospital: %w", err)
}

func (r *HospitalRepository) GetActiveByExternalID(ctx context.Context, externalID string) (*hospital.Hospital, error) {
	var h hospital.Hospital
	err := r.db.WithContext(ctx).
		Where("external_id = ? AND deleted = ?", externalID, false).
		First(&h).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, hospital.ErrHospitalNotFound
		}
		return nil, fmt.Errorf("fetching hospital: %w", err)
	}
	return &h, nil
}

func (r *HospitalRepository) UpdateActiveByExternalID(ctx context.Context, externalID string, cmd *hospital.UpdateHospitalCommand) (*hospital.Hospital, error) {
	values, err := updateColumns(cmd)
	if err != nil {
		return nil, err
	}

	// UPDATE ... RETURNING keeps the read-back in the same statement, so
	// the row we hand out is exactly the one the update produced.
	var h hospital.Hospital
	res := r.db.WithContext(ctx).
		Model(&h).
		Clauses(clause.Returning{}).
		Where("external_id = ? AND deleted = ?", externalID, false).
		Updates(values)
	if res.Error != nil {
		return nil, fmt.Errorf("updating hospital: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, hospital.ErrHospitalNotFound
	}
	return &h, nil
}

func (r *HospitalRepository) SoftDeleteByExternalID(ctx context.Context, externalID string) error {
	res := r.db.WithContext(ctx).
		Model(&hospital.Hospital{}).
		Where("external_id = ? AND deleted = ?", externalID, false).
		Updates(map[string]any{
			"deleted":    true,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("soft-deleting hospital: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return hospital.ErrHospitalNotFound
	}
	return nil
}

func (r *HospitalRepository) ExistsActiveByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&hospital.Hospital{}).
		Where("name = ? AND deleted = ?", name, false).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking name uniqueness: %w", err)
	}
	return count > 0, nil
}

// updateColumns maps the provided command fields onto column assignments. A
// present sub-record replaces the whole group; absent fields stay untouched.
func updateColumns(cmd *hospital.UpdateHospitalCommand) (map[string]any, error) {
	values := map[string]any{
		"updated_at": time.Now().UTC(),
	}

	if cmd.Name != nil {
		values["name"] = *cmd.Name
	}
	if cmd.Address != nil {
		values["address_street"] = cmd.Address.Street
		values["address_city"] = cmd.Address.City
		values["address_state"] = cmd.Address.State
		values["address_pincode"] = cmd.Address.Pincode
	}
	if cmd.Contact != nil {
		values["contact_phone"] = cmd.Contact.Phone
		values["contact_email"] = cmd.Contact.Email
	}
	if cmd.Location != nil {
		// Column updates bypass the model serializer, so marshal here.
		raw, err := json.Marshal(cmd.Location)
		if err != nil {
			return nil, fmt.Errorf("encoding location: %w", err)
		}
		values["location"] = string(raw)
	}

	return values, nil
}
