package service

import (
	"context"
	"errors"
	"sync"

	appointmentserrors "truerelief/internal/appointments/errors"
	"truerelief/internal/appointments/repository"
	"truerelief/internal/appointments/validator"
	"truerelief/pkg/config"
	apperrors "truerelief/pkg/errors"
	"truerelief/pkg/metrics"
	"truerelief/pkg/model"
	"truerelief/pkg/notification"
	"truerelief/pkg/validation"
)

type AppointmentService interface {
	Create(ctx context.Context, payload *model.AppointmentPayload) (*model.Appointment, error)
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	List(ctx context.Context, page, pageSize int, status string) (*model.Page[*model.Appointment], error)
	UpdateStatus(ctx context.Context, id string, status string) (*model.Appointment, error)
	BulkUpdateStatus(ctx context.Context, update *model.BulkStatusUpdate) (int64, error)
	Stats(ctx context.Context) (*model.AppointmentStats, error)
}

type appointmentService struct {
	repo      repository.AppointmentRepository
	validator *validator.AppointmentValidator
	notifier  notification.Notifier
	cfg       *config.Config
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	validator *validator.AppointmentValidator,
	notifier notification.Notifier,
	cfg *config.Config,
) AppointmentService {
	return &appointmentService{
		repo:      repo,
		validator: validator,
		notifier:  notifier,
		cfg:       cfg,
	}
}

func (s *appointmentService) Create(ctx context.Context, payload *model.AppointmentPayload) (*model.Appointment, error) {
	log := s.cfg.Log.WithContext(ctx)

	appointment, date, err := s.validator.Build(payload)
	if err == nil {
		err = s.validator.Validate(appointment)
	}
	if err != nil {
		metrics.IncSubmissionRejected(model.KindAppointment, "validation")
		log.Warn("Appointment rejected", "reason", "validation", "error", err)
		return nil, apperrors.AsAppError(err)
	}

	if err := validation.CheckDuplicateAppointment(ctx, s.repo, appointment.Email, appointment.Phone, date); err != nil {
		var fe *validation.FieldError
		if errors.As(err, &fe) {
			metrics.IncSubmissionRejected(model.KindAppointment, string(fe.Kind))
			log.Warn("Appointment rejected", "reason", fe.Kind, "email", appointment.Email)
			return nil, apperrors.AsAppError(err)
		}
		log.Error("Failed to check duplicate appointments", "error", err)
		return nil, apperrors.Persistence(err)
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		log.Error("Failed to create appointment", "error", err)
		return nil, apperrors.Persistence(err)
	}
	metrics.IncRecordCreated(model.KindAppointment)

	log.Info("Appointment created successfully",
		"id", appointment.ID,
		"service", appointment.Service,
		"date", appointment.Date,
		"time", appointment.Time,
	)

	if err := s.notifier.Notify(ctx, appointment); err != nil {
		log.Error("Failed to send appointment notifications", "id", appointment.ID, "error", err)
	}

	return appointment, nil
}

func (s *appointmentService) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	appointment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(ctx, id, err, "Failed to retrieve appointment")
	}
	return appointment, nil
}

func (s *appointmentService) List(ctx context.Context, page, pageSize int, status string) (*model.Page[*model.Appointment], error) {
	if status != "" && !model.IsValidAppointmentStatus(status) {
		return nil, apperrors.AsAppError(validation.InvalidChoiceError("status", status))
	}

	offset, ok := model.PageOffset(page, pageSize)
	if !ok {
		return nil, apperrors.NotFound("Page")
	}

	var count int64
	var appointments []*model.Appointment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, status)
	}()

	go func() {
		defer wg.Done()
		appointments, errFind = s.repo.FindAll(ctx, status, pageSize, offset)
	}()

	wg.Wait()
	if err := errors.Join(errCount, errFind); err != nil {
		s.cfg.Log.WithContext(ctx).Error("Failed to list appointments", "error", err)
		return nil, apperrors.Internal("Failed to retrieve appointments", err)
	}

	if page > 1 && offset >= count {
		return nil, apperrors.NotFound("Page")
	}

	return &model.Page[*model.Appointment]{
		Items:      appointments,
		TotalCount: count,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// UpdateStatus moves one appointment along its lifecycle. Setting the current
// status again is a no-op.
func (s *appointmentService) UpdateStatus(ctx context.Context, id string, status string) (*model.Appointment, error) {
	if err := s.validator.ValidateStatus(status); err != nil {
		return nil, apperrors.AsAppError(err)
	}

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == status {
		return current, nil
	}
	if !model.CanTransitionAppointment(current.Status, status) {
		return nil, apperrors.Conflict("Cannot change appointment status from " + current.Status + " to " + status).
			WithDetails(map[string]any{"from": current.Status, "to": status})
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, s.mapRepoError(ctx, id, err, "Failed to update appointment")
	}
	metrics.IncStatusChange(model.KindAppointment, status)

	s.cfg.Log.WithContext(ctx).Info("Appointment status updated", "id", id, "from", current.Status, "to", status)
	return updated, nil
}

// BulkUpdateStatus is the admin action; it sets any valid status without
// checking transitions.
func (s *appointmentService) BulkUpdateStatus(ctx context.Context, update *model.BulkStatusUpdate) (int64, error) {
	if err := s.validator.ValidateBulk(update); err != nil {
		return 0, apperrors.AsAppError(err)
	}

	matched, err := s.repo.BulkUpdateStatus(ctx, update.IDs, update.Status)
	if err != nil {
		if errors.Is(err, appointmentserrors.ErrInvalidID) {
			return 0, apperrors.InvalidInput("Invalid appointment ID format")
		}
		s.cfg.Log.WithContext(ctx).Error("Failed to bulk update appointments", "error", err)
		return 0, apperrors.Internal("Failed to update appointments", err)
	}
	metrics.IncStatusChange(model.KindAppointment, update.Status)

	s.cfg.Log.WithContext(ctx).Info("Appointments marked",
		"status", update.Status,
		"requested", len(update.IDs),
		"matched", matched,
	)
	return matched, nil
}

func (s *appointmentService) Stats(ctx context.Context) (*model.AppointmentStats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		s.cfg.Log.WithContext(ctx).Error("Failed to compute appointment stats", "error", err)
		return nil, apperrors.Internal("Unable to retrieve statistics", err)
	}

	stats := &model.AppointmentStats{
		Pending:   counts[model.AppointmentPending],
		Confirmed: counts[model.AppointmentConfirmed],
		Completed: counts[model.AppointmentCompleted],
		Cancelled: counts[model.AppointmentCancelled],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

func (s *appointmentService) mapRepoError(ctx context.Context, id string, err error, msg string) error {
	switch {
	case errors.Is(err, appointmentserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Appointment", id)
	case errors.Is(err, appointmentserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid appointment ID format")
	default:
		s.cfg.Log.WithContext(ctx).Error(msg, "id", id, "error", err)
		return apperrors.Internal(msg, err)
	}
}
