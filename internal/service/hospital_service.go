package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arogyanet/hospital-registry/internal/domain/hospital"
	"github.com/arogyanet/hospital-registry/internal/notify"
)

type HospitalService struct {
	repo      hospital.Repository
	publisher notify.Publisher
	log       *zap.Logger
}

func NewHospitalService(repo hospital.Repository, publisher notify.Publisher, log *zap.Logger) *HospitalService {
	return &HospitalService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// CreateHospital validates the command, rejects duplicate names among live
// records, persists the record under a fresh external id, and announces the
// creation best-effort.
func (s *HospitalService) CreateHospital(ctx context.Context, cmd *hospital.CreateHospitalCommand) (*hospital.Hospital, error) {
	if err := validateCreateCommand(cmd); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(cmd.Name)

	exists, err := s.repo.ExistsActiveByName(ctx, name)
	if err != nil {
		s.log.Error("failed to check name uniqueness", zap.Error(err))
		return nil, fmt.Errorf("checking uniqueness: %w", err)
	}
	if exists {
		return nil, hospital.ErrDuplicateName
	}

	h := &hospital.Hospital{
		ExternalID: uuid.New().String(),
		Name:       name,
	}
	if cmd.Address != nil {
		h.Address = trimAddress(*cmd.Address)
	}
	if cmd.Contact != nil {
		h.Contact = trimContact(*cmd.Contact)
	}
	if cmd.Location != nil && len(cmd.Location.Coordinates) > 0 {
		h.Location = &hospital.Location{Coordinates: cmd.Location.Coordinates}
	}

	// The pre-check above is advisory; the unique index is the arbiter
	// when two creates race, surfacing here as ErrDuplicateName.
	if err := s.repo.Create(ctx, h); err != nil {
		if !errors.Is(err, hospital.ErrDuplicateName) && !errors.Is(err, hospital.ErrDuplicateKey) {
			s.log.Error("failed to create hospital", zap.Error(err))
		}
		return nil, err
	}

	createdAt := h.CreatedAt
	s.publisher.Publish(notify.Event{
		Event: notify.EventHospitalCreated,
		Data: notify.EventData{
			ExternalID: h.ExternalID,
			Name:       h.Name,
			CreatedAt:  &createdAt,
		},
	})

	s.log.Info("hospital created",
		zap.String("external_id", h.ExternalID),
		zap.String("name", h.Name),
	)

	return h, nil
}

func (s *HospitalService) GetHospital(ctx context.Context, externalID string) (*hospital.Hospital, error) {
	h, err := s.repo.GetActiveByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// UpdateHospital applies a partial update to a live record. The repository
// performs the match-and-mutate in one conditional statement, so a record
// deleted by a concurrent request cannot be resurrected here.
func (s *HospitalService) UpdateHospital(ctx context.Context, externalID string, cmd *hospital.UpdateHospitalCommand) (*hospital.Hospital, error) {
	if err := validateUpdateCommand(cmd); err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		trimmed := strings.TrimSpace(*cmd.Name)
		cmd.Name = &trimmed
	}
	if cmd.Address != nil {
		trimmed := trimAddress(*cmd.Address)
		cmd.Address = &trimmed
	}
	if cmd.Contact != nil {
		trimmed := trimContact(*cmd.Contact)
		cmd.Contact = &trimmed
	}

	h, err := s.repo.UpdateActiveByExternalID(ctx, externalID, cmd)
	if err != nil {
		if !errors.Is(err, hospital.ErrHospitalNotFound) {
			s.log.Error("failed to update hospital",
				zap.String("external_id", externalID),
				zap.Error(err),
			)
		}
		return nil, err
	}

	updatedAt := h.UpdatedAt
	s.publisher.Publish(notify.Event{
		Event: notify.EventHospitalUpdated,
		Data: notify.EventData{
			ExternalID: h.ExternalID,
			Name:       h.Name,
			UpdatedAt:  &updatedAt,
		},
	})

	s.log.Info("hospital updated", zap.String("external_id", externalID))

	return h, nil
}

// DeleteHospital soft-deletes a live record. A second delete on the same id
// finds nothing to match and reports not found.
func (s *HospitalService) DeleteHospital(ctx context.Context, externalID string) error {
	if err := s.repo.SoftDeleteByExternalID(ctx, externalID); err != nil {
		if !errors.Is(err, hospital.ErrHospitalNotFound) {
			s.log.Error("failed to delete hospital",
				zap.String("external_id", externalID),
				zap.Error(err),
			)
		}
		return err
	}

	s.log.Info("hospital soft-deleted", zap.String("external_id", externalID))
	return nil
}

func trimAddress(a hospital.Address) hospital.Address {
	return hospital.Address{
		Street:  strings.TrimSpace(a.Street),
		City:    strings.TrimSpace(a.City),
		State:   strings.TrimSpace(a.State),
		Pincode: strings.TrimSpace(a.Pincode),
	}
}

func trimContact(c hospital.Contact) hospital.Contact {
	return hospital.Contact{
		Phone: strings.TrimSpace(c.Phone),
		Email: strings.ToLower(strings.TrimSpace(c.Email)),
	}
}
