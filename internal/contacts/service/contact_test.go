package service

import (
	"context"
	"errors"
	"math"
	"net/http"
	"testing"
	"time"

	contactserrors "truerelief/internal/contacts/errors"
	"truerelief/internal/contacts/validator"
	"truerelief/pkg/config"
	apperrors "truerelief/pkg/errors"
	"truerelief/pkg/logger"
	"truerelief/pkg/model"
	"truerelief/pkg/validation"
)

type mockContactRepository struct {
	contacts map[string]*model.Contact
	recent   bool
	err      error
	created  int
	updates  int
}

func newMockRepo() *mockContactRepository {
	return &mockContactRepository{contacts: map[string]*model.Contact{}}
}

func (m *mockContactRepository) Create(_ context.Context, c *model.Contact) error {
	if m.err != nil {
		return m.err
	}
	m.created++
	c.ID = "65a1b2c3d4e5f60718293a4b"
	m.contacts[c.ID] = c
	return nil
}

func (m *mockContactRepository) FindByID(_ context.Context, id string) (*model.Contact, error) {
	if c, ok := m.contacts[id]; ok {
		return c, nil
	}
	return nil, contactserrors.ErrNotFound
}

func (m *mockContactRepository) FindAll(context.Context, string, int, int64) ([]*model.Contact, error) {
	out := []*model.Contact{}
	for _, c := range m.contacts {
		out = append(out, c)
	}
	return out, m.err
}

func (m *mockContactRepository) Count(context.Context, string) (int64, error) {
	return int64(len(m.contacts)), m.err
}

func (m *mockContactRepository) UpdateStatus(_ context.Context, id, status string) (*model.Contact, error) {
	m.updates++
	c, ok := m.contacts[id]
	if !ok {
		return nil, contactserrors.ErrNotFound
	}
	c.Status = status
	return c, nil
}

func (m *mockContactRepository) BulkUpdateStatus(_ context.Context, ids []string, _ string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(ids)), nil
}

func (m *mockContactRepository) CountByStatus(context.Context) (map[string]int64, error) {
	if m.err != nil {
		return nil, m.err
	}
	counts := map[string]int64{}
	for _, c := range m.contacts {
		counts[c.Status]++
	}
	return counts, nil
}

func (m *mockContactRepository) ExistsRecentSubmission(context.Context, string, string, time.Duration) (bool, error) {
	return m.recent, m.err
}

func (m *mockContactRepository) ExistsActiveOnDate(context.Context, string, time.Time) (bool, error) {
	return false, nil
}

type mockNotifier struct {
	calls int
	err   error
}

func (m *mockNotifier) Notify(context.Context, model.Record) error {
	m.calls++
	return m.err
}

func setupService(repo *mockContactRepository, notifier *mockNotifier) ContactService {
	cfg := config.FromEnv("test")
	cfg.Log = logger.Discard()
	return NewContactService(repo, validator.NewContactValidator(cfg.Log), notifier, cfg)
}

func validPayload() *model.ContactPayload {
	return &model.ContactPayload{
		Name:        "Karan Gill",
		Email:       "karan@example.com",
		Phone:       "9812345678",
		ConcernType: "sports_injury",
		Subject:     "Hamstring strain",
		Message:     "Pulled my hamstring during a football match last week.",
	}
}

func TestCreate(t *testing.T) {
	repo := newMockRepo()
	notifier := &mockNotifier{err: errors.New("mail relay refused")}
	svc := setupService(repo, notifier)

	c, err := svc.Create(context.Background(), validPayload())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if c.Status != model.ContactNew || repo.created != 1 {
		t.Errorf("contact not stored as new: %+v", c)
	}
	if notifier.calls != 1 {
		t.Errorf("notifier called %d times", notifier.calls)
	}
}

func TestCreate_Rejections(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		repo := newMockRepo()
		svc := setupService(repo, &mockNotifier{})
		p := validPayload()
		p.Subject = "no"
		_, err := svc.Create(context.Background(), p)

		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) || appErr.StatusCode() != http.StatusBadRequest {
			t.Fatalf("expected 400, got %v", err)
		}
		if repo.created != 0 {
			t.Error("invalid contact stored")
		}
	})

	t.Run("recent submission", func(t *testing.T) {
		repo := newMockRepo()
		repo.recent = true
		notifier := &mockNotifier{}
		svc := setupService(repo, notifier)

		_, err := svc.Create(context.Background(), validPayload())
		if !validation.IsKind(err, validation.RateLimited) {
			t.Fatalf("expected RateLimited, got %v", err)
		}
		if repo.created != 0 || notifier.calls != 0 {
			t.Error("duplicate contact stored or notified")
		}
	})

	t.Run("store failure", func(t *testing.T) {
		repo := newMockRepo()
		repo.err = errors.New("no primary")
		svc := setupService(repo, &mockNotifier{})

		_, err := svc.Create(context.Background(), validPayload())
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) || appErr.Code != apperrors.CodePersistence {
			t.Fatalf("expected persistence error, got %v", err)
		}
	})
}

func TestUpdateStatus_AnyValidStatus(t *testing.T) {
	repo := newMockRepo()
	repo.contacts["c1"] = &model.Contact{ID: "c1", Status: model.ContactClosed}
	svc := setupService(repo, &mockNotifier{})

	for _, status := range []string{model.ContactNew, model.ContactReplied, model.ContactInProgress, model.ContactClosed} {
		c, err := svc.UpdateStatus(context.Background(), "c1", status)
		if err != nil {
			t.Fatalf("UpdateStatus(%s) error: %v", status, err)
		}
		if c.Status != status {
			t.Errorf("Status = %q, want %q", c.Status, status)
		}
	}

	before := repo.updates
	if _, err := svc.UpdateStatus(context.Background(), "c1", model.ContactClosed); err != nil {
		t.Fatalf("same status error: %v", err)
	}
	if repo.updates != before {
		t.Error("same-status update should not write")
	}

	_, err := svc.UpdateStatus(context.Background(), "c1", "confirmed")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected validation error, got %v", err)
	}

	_, err = svc.UpdateStatus(context.Background(), "missing", model.ContactReplied)
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestList_PageOutOfRange(t *testing.T) {
	repo := newMockRepo()
	repo.contacts["c1"] = &model.Contact{ID: "c1", Status: model.ContactNew}
	svc := setupService(repo, &mockNotifier{})

	page, err := svc.List(context.Background(), 1, 20, "")
	if err != nil || page.TotalCount != 1 {
		t.Fatalf("List = %+v, %v", page, err)
	}

	_, err = svc.List(context.Background(), 2, 20, "")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.StatusCode() != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}

	_, err = svc.List(context.Background(), math.MaxInt, 100, "")
	if !errors.As(err, &appErr) || appErr.StatusCode() != http.StatusNotFound {
		t.Errorf("overflowing page: expected 404, got %v", err)
	}
}

func TestStats(t *testing.T) {
	repo := newMockRepo()
	repo.contacts["a"] = &model.Contact{Status: model.ContactNew}
	repo.contacts["b"] = &model.Contact{Status: model.ContactNew}
	repo.contacts["c"] = &model.Contact{Status: model.ContactReplied}
	svc := setupService(repo, &mockNotifier{})

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	want := model.ContactStats{Total: 3, New: 2, Replied: 1}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}
}

func TestBulkUpdateStatus(t *testing.T) {
	svc := setupService(newMockRepo(), &mockNotifier{})

	n, err := svc.BulkUpdateStatus(context.Background(), &model.BulkStatusUpdate{
		IDs:    []string{"65a1b2c3d4e5f60718293a4b", "65a1b2c3d4e5f60718293a4c"},
		Status: model.ContactClosed,
	})
	if err != nil || n != 2 {
		t.Fatalf("BulkUpdateStatus = %d, %v", n, err)
	}

	_, err = svc.BulkUpdateStatus(context.Background(), &model.BulkStatusUpdate{
		IDs:    []string{"65a1b2c3d4e5f60718293a4b"},
		Status: "archived",
	})
	if !validation.IsKind(err, validation.InvalidChoice) {
		t.Errorf("expected InvalidChoice, got %v", err)
	}
}
