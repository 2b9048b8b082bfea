package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/arogyanet/hospital-registry/internal/domain/hospital"
	"github.com/arogyanet/hospital-registry/internal/notify"
)

// ── Mocks ──

type mockHospitalRepo struct {
	records map[string]*hospital.Hospital
}

func newMockHospitalRepo() *mockHospitalRepo {
	return &mockHospitalRepo{records: make(map[string]*hospital.Hospital)}
}

func (m *mockHospitalRepo) Create(_ context.Context, h *hospital.Hospital) error {
	if _, ok := m.records[h.ExternalID]; ok {
		return hospital.ErrDuplicateKey
	}
	// Mirrors the partial unique index on (name) WHERE NOT deleted.
	for _, existing := range m.records {
		if existing.Name == h.Name && !existing.Deleted {
			return hospital.ErrDuplicateName
		}
	}
	now := time.Now()
	h.CreatedAt = now
	h.UpdatedAt = now
	clone := *h
	m.records[h.ExternalID] = &clone
	return nil
}

func (m *mockHospitalRepo) GetActiveByExternalID(_ context.Context, externalID string) (*hospital.Hospital, error) {
	h, ok := m.records[externalID]
	if !ok || h.Deleted {
		return nil, hospital.ErrHospitalNotFound
	}
	clone := *h
	return &clone, nil
}

func (m *mockHospitalRepo) UpdateActiveByExternalID(_ context.Context, externalID string, cmd *hospital.UpdateHospitalCommand) (*hospital.Hospital, error) {
	h, ok := m.records[externalID]
	if !ok || h.Deleted {
		return nil, hospital.ErrHospitalNotFound
	}
	if cmd.Name != nil {
		h.Name = *cmd.Name
	}
	if cmd.Address != nil {
		h.Address = *cmd.Address
	}
	if cmd.Contact != nil {
		h.Contact = *cmd.Contact
	}
	if cmd.Location != nil {
		loc := *cmd.Location
		h.Location = &loc
	}
	h.UpdatedAt = time.Now()
	clone := *h
	return &clone, nil
}

func (m *mockHospitalRepo) SoftDeleteByExternalID(_ context.Context, externalID string) error {
	h, ok := m.records[externalID]
	if !ok || h.Deleted {
		return hospital.ErrHospitalNotFound
	}
	h.Deleted = true
	h.UpdatedAt = time.Now()
	return nil
}

func (m *mockHospitalRepo) ExistsActiveByName(_ context.Context, name string) (bool, error) {
	for _, h := range m.records {
		if h.Name == name && !h.Deleted {
			return true, nil
		}
	}
	return false, nil
}

// blindNameCheckRepo defeats the advisory name pre-check, leaving conflict
// detection entirely to Create.
type blindNameCheckRepo struct {
	*mockHospitalRepo
}

func (r *blindNameCheckRepo) ExistsActiveByName(context.Context, string) (bool, error) {
	return false, nil
}

type capturePublisher struct {
	events []notify.Event
}

func (p *capturePublisher) Publish(event notify.Event) {
	p.events = append(p.events, event)
}

func newTestService() (*HospitalService, *mockHospitalRepo, *capturePublisher) {
	repo := newMockHospitalRepo()
	pub := &capturePublisher{}
	return NewHospitalService(repo, pub, zap.NewNop()), repo, pub
}

func validCreateCommand() *hospital.CreateHospitalCommand {
	return &hospital.CreateHospitalCommand{
		Name: "Apollo Hospital",
		Address: &hospital.Address{
			Street: "123 MG Road", City: "Delhi", State: "Delhi", Pincode: "110001",
		},
		Location: &hospital.Location{Coordinates: []float64{77.2090, 28.6139}},
		Contact:  &hospital.Contact{Phone: "9876543210", Email: "contact@apollo.com"},
	}
}

// ── Create ──

func TestCreateHospital(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns external id and timestamps", func(t *testing.T) {
		svc, _, pub := newTestService()

		created, err := svc.CreateHospital(ctx, validCreateCommand())
		if err != nil {
			t.Fatalf("CreateHospital: %v", err)
		}
		if created.ExternalID == "" {
			t.Fatal("expected a non-empty external id")
		}
		if !created.CreatedAt.Equal(created.UpdatedAt) {
			t.Errorf("expected CreatedAt == UpdatedAt at creation, got %v / %v", created.CreatedAt, created.UpdatedAt)
		}
		if created.Deleted {
			t.Error("new record must not be deleted")
		}

		if len(pub.events) != 1 {
			t.Fatalf("expected 1 published event, got %d", len(pub.events))
		}
		event := pub.events[0]
		if event.Event != notify.EventHospitalCreated {
			t.Errorf("expected %q event, got %q", notify.EventHospitalCreated, event.Event)
		}
		if event.Data.ExternalID != created.ExternalID || event.Data.Name != "Apollo Hospital" {
			t.Errorf("event data mismatch: %+v", event.Data)
		}
		if event.Data.CreatedAt == nil {
			t.Error("created event must carry createdAt")
		}
	})

	t.Run("validation failure persists nothing", func(t *testing.T) {
		svc, repo, pub := newTestService()

		_, err := svc.CreateHospital(ctx, &hospital.CreateHospitalCommand{Name: "  "})
		var validErr *ValidationError
		if !errors.As(err, &validErr) {
			t.Fatalf("expected *ValidationError, got %v", err)
		}
		if len(repo.records) != 0 {
			t.Error("no record must be persisted on validation failure")
		}
		if len(pub.events) != 0 {
			t.Error("no event must be published on validation failure")
		}
	})

	t.Run("duplicate name rejected", func(t *testing.T) {
		svc, _, _ := newTestService()

		if _, err := svc.CreateHospital(ctx, validCreateCommand()); err != nil {
			t.Fatalf("first create: %v", err)
		}
		_, err := svc.CreateHospital(ctx, validCreateCommand())
		if !errors.Is(err, hospital.ErrDuplicateName) {
			t.Fatalf("expected ErrDuplicateName, got %v", err)
		}
	})

	t.Run("racing create loses to the unique index", func(t *testing.T) {
		// A repo whose existence pre-check never fires stands in for two
		// creates interleaving between check and insert; the index-level
		// rejection must still surface as ErrDuplicateName.
		repo := newMockHospitalRepo()
		pub := &capturePublisher{}
		svc := NewHospitalService(&blindNameCheckRepo{repo}, pub, zap.NewNop())

		if _, err := svc.CreateHospital(ctx, validCreateCommand()); err != nil {
			t.Fatalf("first create: %v", err)
		}
		_, err := svc.CreateHospital(ctx, validCreateCommand())
		if !errors.Is(err, hospital.ErrDuplicateName) {
			t.Fatalf("expected ErrDuplicateName, got %v", err)
		}

		live := 0
		for _, h := range repo.records {
			if !h.Deleted {
				live++
			}
		}
		if live != 1 {
			t.Errorf("expected exactly 1 live record, got %d", live)
		}
		if len(pub.events) != 1 {
			t.Errorf("losing create must not publish, got %d events", len(pub.events))
		}
	})

	t.Run("name reusable after soft delete", func(t *testing.T) {
		svc, _, _ := newTestService()

		first, err := svc.CreateHospital(ctx, validCreateCommand())
		if err != nil {
			t.Fatalf("first create: %v", err)
		}
		if err := svc.DeleteHospital(ctx, first.ExternalID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := svc.CreateHospital(ctx, validCreateCommand()); err != nil {
			t.Fatalf("expected recreate after delete to succeed, got %v", err)
		}
	})
}

// ── Get ──

func TestGetHospital(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip preserves client fields", func(t *testing.T) {
		svc, _, _ := newTestService()

		created, err := svc.CreateHospital(ctx, validCreateCommand())
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		got, err := svc.GetHospital(ctx, created.ExternalID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Name != "Apollo Hospital" {
			t.Errorf("name: got %q", got.Name)
		}
		if got.Address.City != "Delhi" || got.Address.Pincode != "110001" {
			t.Errorf("address mismatch: %+v", got.Address)
		}
		if got.Contact.Phone != "9876543210" || got.Contact.Email != "contact@apollo.com" {
			t.Errorf("contact mismatch: %+v", got.Contact)
		}
		if got.Location == nil || len(got.Location.Coordinates) != 2 || got.Location.Coordinates[0] != 77.2090 {
			t.Errorf("location mismatch: %+v", got.Location)
		}
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		svc, _, _ := newTestService()

		_, err := svc.GetHospital(ctx, "does-not-exist")
		if !errors.Is(err, hospital.ErrHospitalNotFound) {
			t.Fatalf("expected ErrHospitalNotFound, got %v", err)
		}
	})
}

// ── Update ──

func TestUpdateHospital(t *testing.T) {
	ctx := context.Background()

	t.Run("changes only supplied fields and advances UpdatedAt", func(t *testing.T) {
		svc, _, pub := newTestService()

		created, err := svc.CreateHospital(ctx, validCreateCommand())
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		previous := created.UpdatedAt

		name := "Fortis Hospital"
		updated, err := svc.UpdateHospital(ctx, created.ExternalID, &hospital.UpdateHospitalCommand{Name: &name})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.Name != "Fortis Hospital" {
			t.Errorf("name: got %q", updated.Name)
		}
		if updated.Address.City != "Delhi" {
			t.Errorf("address must be untouched, got %+v", updated.Address)
		}
		if updated.Contact.Phone != "9876543210" {
			t.Errorf("contact must be untouched, got %+v", updated.Contact)
		}
		if updated.UpdatedAt.Before(previous) {
			t.Errorf("UpdatedAt must advance: %v -> %v", previous, updated.UpdatedAt)
		}

		last := pub.events[len(pub.events)-1]
		if last.Event != notify.EventHospitalUpdated {
			t.Errorf("expected %q event, got %q", notify.EventHospitalUpdated, last.Event)
		}
		if last.Data.UpdatedAt == nil {
			t.Error("updated event must carry updatedAt")
		}
	})

	t.Run("empty body rejected and record unchanged", func(t *testing.T) {
		svc, repo, _ := newTestService()

		created, err := svc.CreateHospital(ctx, validCreateCommand())
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		before := *repo.records[created.ExternalID]

		_, err = svc.UpdateHospital(ctx, created.ExternalID, &hospital.UpdateHospitalCommand{})
		var validErr *ValidationError
		if !errors.As(err, &validErr) {
			t.Fatalf("expected *ValidationError, got %v", err)
		}
		if validErr.Error() != "at least one field must be provided for update" {
			t.Errorf("unexpected message: %q", validErr.Error())
		}
		after := *repo.records[created.ExternalID]
		if !after.UpdatedAt.Equal(before.UpdatedAt) || after.Name != before.Name {
			t.Error("stored record must be unchanged after rejected update")
		}
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		svc, _, _ := newTestService()

		name := "Fortis Hospital"
		_, err := svc.UpdateHospital(ctx, "missing", &hospital.UpdateHospitalCommand{Name: &name})
		if !errors.Is(err, hospital.ErrHospitalNotFound) {
			t.Fatalf("expected ErrHospitalNotFound, got %v", err)
		}
	})
}

// ── Delete ──

func TestDeleteHospital(t *testing.T) {
	ctx := context.Background()

	t.Run("second delete is not found", func(t *testing.T) {
		svc, repo, _ := newTestService()

		created, err := svc.CreateHospital(ctx, validCreateCommand())
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		if err := svc.DeleteHospital(ctx, created.ExternalID); err != nil {
			t.Fatalf("first delete: %v", err)
		}
		if !repo.records[created.ExternalID].Deleted {
			t.Error("record must be flagged deleted")
		}

		if err := svc.DeleteHospital(ctx, created.ExternalID); !errors.Is(err, hospital.ErrHospitalNotFound) {
			t.Fatalf("second delete: expected ErrHospitalNotFound, got %v", err)
		}

		if _, err := svc.GetHospital(ctx, created.ExternalID); !errors.Is(err, hospital.ErrHospitalNotFound) {
			t.Fatalf("get after delete: expected ErrHospitalNotFound, got %v", err)
		}
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		svc, _, _ := newTestService()

		if err := svc.DeleteHospital(ctx, "missing"); !errors.Is(err, hospital.ErrHospitalNotFound) {
			t.Fatalf("expected ErrHospitalNotFound, got %v", err)
		}
	})
}
