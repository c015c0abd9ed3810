package service

import (
	"context"
	"errors"
	"math"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	appointmentserrors "truerelief/internal/appointments/errors"
	"truerelief/internal/appointments/validator"
	"truerelief/pkg/config"
	apperrors "truerelief/pkg/errors"
	"truerelief/pkg/logger"
	"truerelief/pkg/model"
	"truerelief/pkg/validation"
)

type mockAppointmentRepository struct {
	createFunc           func(ctx context.Context, a *model.Appointment) error
	findByIDFunc         func(ctx context.Context, id string) (*model.Appointment, error)
	findAllFunc          func(ctx context.Context, status string, limit int, offset int64) ([]*model.Appointment, error)
	countFunc            func(ctx context.Context, status string) (int64, error)
	updateStatusFunc     func(ctx context.Context, id, status string) (*model.Appointment, error)
	bulkUpdateStatusFunc func(ctx context.Context, ids []string, status string) (int64, error)
	countByStatusFunc    func(ctx context.Context) (map[string]int64, error)
	recentFunc           func(ctx context.Context, email, phone string, window time.Duration) (bool, error)
	activeOnDateFunc     func(ctx context.Context, email string, date time.Time) (bool, error)
}

func (m *mockAppointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, a)
	}
	a.ID = "65a1b2c3d4e5f60718293a4b"
	return nil
}

func (m *mockAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, appointmentserrors.ErrNotFound
}

func (m *mockAppointmentRepository) FindAll(ctx context.Context, status string, limit int, offset int64) ([]*model.Appointment, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, status, limit, offset)
	}
	return []*model.Appointment{}, nil
}

func (m *mockAppointmentRepository) Count(ctx context.Context, status string) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, status)
	}
	return 0, nil
}

func (m *mockAppointmentRepository) UpdateStatus(ctx context.Context, id, status string) (*model.Appointment, error) {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return &model.Appointment{ID: id, Status: status}, nil
}

func (m *mockAppointmentRepository) BulkUpdateStatus(ctx context.Context, ids []string, status string) (int64, error) {
	if m.bulkUpdateStatusFunc != nil {
		return m.bulkUpdateStatusFunc(ctx, ids, status)
	}
	return int64(len(ids)), nil
}

func (m *mockAppointmentRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	if m.countByStatusFunc != nil {
		return m.countByStatusFunc(ctx)
	}
	return map[string]int64{}, nil
}

func (m *mockAppointmentRepository) ExistsRecentSubmission(ctx context.Context, email, phone string, window time.Duration) (bool, error) {
	if m.recentFunc != nil {
		return m.recentFunc(ctx, email, phone, window)
	}
	return false, nil
}

func (m *mockAppointmentRepository) ExistsActiveOnDate(ctx context.Context, email string, date time.Time) (bool, error) {
	if m.activeOnDateFunc != nil {
		return m.activeOnDateFunc(ctx, email, date)
	}
	return false, nil
}

type mockNotifier struct {
	calls atomic.Int32
	err   error
}

func (m *mockNotifier) Notify(_ context.Context, _ model.Record) error {
	m.calls.Add(1)
	return m.err
}

func setupService(t *testing.T, repo *mockAppointmentRepository, notifier *mockNotifier) AppointmentService {
	t.Helper()
	cfg := config.FromEnv("test")
	cfg.Log = logger.Discard()

	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, loc)
	dates := validation.NewDateTimeValidator(loc, 180).WithClock(func() time.Time { return now })

	return NewAppointmentService(repo, validator.NewAppointmentValidator(dates, cfg.Log), notifier, cfg)
}

func validPayload() *model.AppointmentPayload {
	return &model.AppointmentPayload{
		Service:  "sports_physio",
		Name:     "Rohit Mehra",
		Email:    "rohit@example.com",
		Phone:    "9876543210",
		Age:      "29",
		Location: "DLF Phase 3",
		Date:     "2025-03-05",
		Time:     "06:00 PM",
	}
}

func assertAppError(t *testing.T, err error, code string, status int) *apperrors.AppError {
	t.Helper()
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}
	if appErr.Code != code {
		t.Errorf("code = %s, want %s", appErr.Code, code)
	}
	if appErr.StatusCode() != status {
		t.Errorf("status = %d, want %d", appErr.StatusCode(), status)
	}
	return appErr
}

func TestCreate_Success(t *testing.T) {
	notifier := &mockNotifier{}
	var stored *model.Appointment
	repo := &mockAppointmentRepository{
		createFunc: func(_ context.Context, a *model.Appointment) error {
			stored = a
			a.ID = "65a1b2c3d4e5f60718293a4b"
			return nil
		},
	}
	svc := setupService(t, repo, notifier)

	a, err := svc.Create(context.Background(), validPayload())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if a.ID == "" || stored == nil {
		t.Fatal("appointment was not persisted")
	}
	if a.Status != model.AppointmentPending {
		t.Errorf("Status = %q, want pending", a.Status)
	}
	if a.Age != 29 {
		t.Errorf("Age = %d", a.Age)
	}
	if notifier.calls.Load() != 1 {
		t.Errorf("notifier called %d times, want 1", notifier.calls.Load())
	}
}

func TestCreate_NotificationFailureIsNotFatal(t *testing.T) {
	notifier := &mockNotifier{err: errors.New("smtp down")}
	svc := setupService(t, &mockAppointmentRepository{}, notifier)

	if _, err := svc.Create(context.Background(), validPayload()); err != nil {
		t.Fatalf("Create should succeed when notification fails, got %v", err)
	}
	if notifier.calls.Load() != 1 {
		t.Errorf("notifier called %d times", notifier.calls.Load())
	}
}

func TestCreate_ValidationErrorNotPersisted(t *testing.T) {
	created := false
	repo := &mockAppointmentRepository{
		createFunc: func(context.Context, *model.Appointment) error {
			created = true
			return nil
		},
	}
	notifier := &mockNotifier{}
	svc := setupService(t, repo, notifier)

	p := validPayload()
	p.Email = "broken"
	p.Time = "07:30 AM"

	_, err := svc.Create(context.Background(), p)
	appErr := assertAppError(t, err, apperrors.CodeValidation, http.StatusBadRequest)

	fields, _ := appErr.Details["fields"].(map[string]string)
	if _, ok := fields["email"]; !ok {
		t.Errorf("missing email error in %v", appErr.Details)
	}
	if _, ok := fields["time"]; !ok {
		t.Errorf("missing time error in %v", appErr.Details)
	}
	if created || notifier.calls.Load() != 0 {
		t.Error("rejected appointment must not be stored or notified")
	}
}

func TestCreate_DuplicateChecks(t *testing.T) {
	tests := []struct {
		name     string
		repo     *mockAppointmentRepository
		code     string
		status   int
		wantKind validation.Kind
	}{
		{
			name: "recent submission",
			repo: &mockAppointmentRepository{
				recentFunc: func(_ context.Context, _, _ string, window time.Duration) (bool, error) {
					return window == 24*time.Hour, nil
				},
			},
			code:     apperrors.CodeValidation,
			status:   http.StatusBadRequest,
			wantKind: validation.RateLimited,
		},
		{
			name: "already booked",
			repo: &mockAppointmentRepository{
				activeOnDateFunc: func(_ context.Context, email string, date time.Time) (bool, error) {
					return email == "rohit@example.com" && date.Format(validation.DateLayout) == "2025-03-05", nil
				},
			},
			code:     apperrors.CodeValidation,
			status:   http.StatusBadRequest,
			wantKind: validation.AlreadyBooked,
		},
		{
			name: "store failure",
			repo: &mockAppointmentRepository{
				recentFunc: func(context.Context, string, string, time.Duration) (bool, error) {
					return false, errors.New("connection reset")
				},
			},
			code:   apperrors.CodePersistence,
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &mockNotifier{}
			svc := setupService(t, tt.repo, notifier)

			_, err := svc.Create(context.Background(), validPayload())
			assertAppError(t, err, tt.code, tt.status)

			if tt.wantKind != "" && !validation.IsKind(err, tt.wantKind) {
				t.Errorf("expected kind %q in %v", tt.wantKind, err)
			}
			if notifier.calls.Load() != 0 {
				t.Error("rejected appointment must not be notified")
			}
		})
	}
}

func TestCreate_PersistenceError(t *testing.T) {
	repo := &mockAppointmentRepository{
		createFunc: func(context.Context, *model.Appointment) error {
			return errors.New("write concern failed")
		},
	}
	svc := setupService(t, repo, &mockNotifier{})

	_, err := svc.Create(context.Background(), validPayload())
	assertAppError(t, err, apperrors.CodePersistence, http.StatusInternalServerError)
}

func TestGetByID(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		repo   *mockAppointmentRepository
		code   string
		status int
	}{
		{"empty id", "", &mockAppointmentRepository{}, apperrors.CodeInvalidInput, http.StatusBadRequest},
		{"not found", "65a1b2c3d4e5f60718293a4b", &mockAppointmentRepository{}, apperrors.CodeNotFound, http.StatusNotFound},
		{"invalid id", "bogus", &mockAppointmentRepository{
			findByIDFunc: func(context.Context, string) (*model.Appointment, error) {
				return nil, appointmentserrors.ErrInvalidID
			},
		}, apperrors.CodeInvalidInput, http.StatusBadRequest},
		{"store failure", "65a1b2c3d4e5f60718293a4b", &mockAppointmentRepository{
			findByIDFunc: func(context.Context, string) (*model.Appointment, error) {
				return nil, errors.New("timeout")
			},
		}, apperrors.CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := setupService(t, tt.repo, &mockNotifier{})
			_, err := svc.GetByID(context.Background(), tt.id)
			assertAppError(t, err, tt.code, tt.status)
		})
	}
}

func TestList(t *testing.T) {
	var gotLimit int
	var gotOffset int64
	var gotStatus string
	repo := &mockAppointmentRepository{
		countFunc: func(context.Context, string) (int64, error) { return 45, nil },
		findAllFunc: func(_ context.Context, status string, limit int, offset int64) ([]*model.Appointment, error) {
			gotStatus, gotLimit, gotOffset = status, limit, offset
			return []*model.Appointment{{ID: "a"}, {ID: "b"}}, nil
		},
	}
	svc := setupService(t, repo, &mockNotifier{})

	page, err := svc.List(context.Background(), 3, 20, "pending")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if gotStatus != "pending" || gotLimit != 20 || gotOffset != 40 {
		t.Errorf("repo called with status=%q limit=%d offset=%d", gotStatus, gotLimit, gotOffset)
	}
	if page.TotalCount != 45 || page.TotalPages() != 3 || len(page.Items) != 2 {
		t.Errorf("unexpected page %+v", page)
	}
}

func TestList_Errors(t *testing.T) {
	t.Run("page past the end", func(t *testing.T) {
		repo := &mockAppointmentRepository{
			countFunc: func(context.Context, string) (int64, error) { return 20, nil },
		}
		svc := setupService(t, repo, &mockNotifier{})
		_, err := svc.List(context.Background(), 2, 20, "")
		assertAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
	})

	t.Run("page whose offset overflows", func(t *testing.T) {
		repo := &mockAppointmentRepository{
			findAllFunc: func(context.Context, string, int, int64) ([]*model.Appointment, error) {
				t.Error("repository should not be queried")
				return nil, nil
			},
		}
		svc := setupService(t, repo, &mockNotifier{})
		_, err := svc.List(context.Background(), math.MaxInt, 20, "")
		assertAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
	})

	t.Run("first page of empty list", func(t *testing.T) {
		svc := setupService(t, &mockAppointmentRepository{}, &mockNotifier{})
		page, err := svc.List(context.Background(), 1, 20, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.TotalCount != 0 || page.TotalPages() != 0 {
			t.Errorf("unexpected page %+v", page)
		}
	})

	t.Run("unknown status filter", func(t *testing.T) {
		svc := setupService(t, &mockAppointmentRepository{}, &mockNotifier{})
		_, err := svc.List(context.Background(), 1, 20, "archived")
		assertAppError(t, err, apperrors.CodeValidation, http.StatusBadRequest)
	})

	t.Run("count failure", func(t *testing.T) {
		repo := &mockAppointmentRepository{
			countFunc: func(context.Context, string) (int64, error) { return 0, errors.New("boom") },
		}
		svc := setupService(t, repo, &mockNotifier{})
		_, err := svc.List(context.Background(), 1, 20, "")
		assertAppError(t, err, apperrors.CodeInternal, http.StatusInternalServerError)
	})
}

func TestUpdateStatus(t *testing.T) {
	const id = "65a1b2c3d4e5f60718293a4b"

	tests := []struct {
		name        string
		current     string
		next        string
		wantCode    string
		wantUpdated bool
	}{
		{"pending to confirmed", model.AppointmentPending, model.AppointmentConfirmed, "", true},
		{"confirmed to completed", model.AppointmentConfirmed, model.AppointmentCompleted, "", true},
		{"pending to cancelled", model.AppointmentPending, model.AppointmentCancelled, "", true},
		{"same status is a no-op", model.AppointmentConfirmed, model.AppointmentConfirmed, "", false},
		{"completed is terminal", model.AppointmentCompleted, model.AppointmentPending, apperrors.CodeConflict, false},
		{"cancelled is terminal", model.AppointmentCancelled, model.AppointmentConfirmed, apperrors.CodeConflict, false},
		{"pending cannot complete", model.AppointmentPending, model.AppointmentCompleted, apperrors.CodeConflict, false},
		{"unknown status", model.AppointmentPending, "done", apperrors.CodeValidation, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated := false
			repo := &mockAppointmentRepository{
				findByIDFunc: func(context.Context, string) (*model.Appointment, error) {
					return &model.Appointment{ID: id, Status: tt.current}, nil
				},
				updateStatusFunc: func(_ context.Context, _ string, status string) (*model.Appointment, error) {
					updated = true
					return &model.Appointment{ID: id, Status: status}, nil
				},
			}
			svc := setupService(t, repo, &mockNotifier{})

			a, err := svc.UpdateStatus(context.Background(), id, tt.next)
			if tt.wantCode != "" {
				var appErr *apperrors.AppError
				if !errors.As(err, &appErr) || appErr.Code != tt.wantCode {
					t.Fatalf("error = %v, want code %s", err, tt.wantCode)
				}
				if tt.wantCode == apperrors.CodeConflict && appErr.StatusCode() != http.StatusConflict {
					t.Errorf("status = %d, want 409", appErr.StatusCode())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if a.Status != tt.next {
				t.Errorf("Status = %q, want %q", a.Status, tt.next)
			}
			if updated != tt.wantUpdated {
				t.Errorf("repo update called = %v, want %v", updated, tt.wantUpdated)
			}
		})
	}
}

func TestBulkUpdateStatus(t *testing.T) {
	ids := []string{"65a1b2c3d4e5f60718293a4b", "65a1b2c3d4e5f60718293a4c"}

	t.Run("success", func(t *testing.T) {
		repo := &mockAppointmentRepository{
			bulkUpdateStatusFunc: func(_ context.Context, got []string, status string) (int64, error) {
				if len(got) != 2 || status != model.AppointmentCompleted {
					t.Errorf("unexpected call ids=%v status=%q", got, status)
				}
				return 1, nil
			},
		}
		svc := setupService(t, repo, &mockNotifier{})

		n, err := svc.BulkUpdateStatus(context.Background(), &model.BulkStatusUpdate{IDs: ids, Status: model.AppointmentCompleted})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 1 {
			t.Errorf("updated = %d, want 1", n)
		}
	})

	t.Run("validation", func(t *testing.T) {
		svc := setupService(t, &mockAppointmentRepository{}, &mockNotifier{})
		_, err := svc.BulkUpdateStatus(context.Background(), &model.BulkStatusUpdate{Status: "confirmed"})
		assertAppError(t, err, apperrors.CodeValidation, http.StatusBadRequest)
	})

	t.Run("store failure", func(t *testing.T) {
		repo := &mockAppointmentRepository{
			bulkUpdateStatusFunc: func(context.Context, []string, string) (int64, error) {
				return 0, errors.New("boom")
			},
		}
		svc := setupService(t, repo, &mockNotifier{})
		_, err := svc.BulkUpdateStatus(context.Background(), &model.BulkStatusUpdate{IDs: ids, Status: "confirmed"})
		assertAppError(t, err, apperrors.CodeInternal, http.StatusInternalServerError)
	})
}

func TestStats(t *testing.T) {
	repo := &mockAppointmentRepository{
		countByStatusFunc: func(context.Context) (map[string]int64, error) {
			return map[string]int64{"pending": 4, "confirmed": 3, "completed": 2}, nil
		},
	}
	svc := setupService(t, repo, &mockNotifier{})

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	want := model.AppointmentStats{Total: 9, Pending: 4, Confirmed: 3, Completed: 2}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}

	failing := setupService(t, &mockAppointmentRepository{
		countByStatusFunc: func(context.Context) (map[string]int64, error) { return nil, errors.New("boom") },
	}, &mockNotifier{})
	_, err = failing.Stats(context.Background())
	appErr := assertAppError(t, err, apperrors.CodeInternal, http.StatusInternalServerError)
	if appErr.Message != "Unable to retrieve statistics" {
		t.Errorf("message = %q", appErr.Message)
	}
}
