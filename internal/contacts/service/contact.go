package service

import (
	"context"
	"errors"
	"sync"

	contactserrors "truerelief/internal/contacts/errors"
	"truerelief/internal/contacts/repository"
	"truerelief/internal/contacts/validator"
	"truerelief/pkg/config"
	apperrors "truerelief/pkg/errors"
	"truerelief/pkg/metrics"
	"truerelief/pkg/model"
	"truerelief/pkg/notification"
	"truerelief/pkg/validation"
)

type ContactService interface {
	Create(ctx context.Context, payload *model.ContactPayload) (*model.Contact, error)
	GetByID(ctx context.Context, id string) (*model.Contact, error)
	List(ctx context.Context, page, pageSize int, status string) (*model.Page[*model.Contact], error)
	UpdateStatus(ctx context.Context, id string, status string) (*model.Contact, error)
	BulkUpdateStatus(ctx context.Context, update *model.BulkStatusUpdate) (int64, error)
	Stats(ctx context.Context) (*model.ContactStats, error)
}

type contactService struct {
	repo      repository.ContactRepository
	validator *validator.ContactValidator
	notifier  notification.Notifier
	cfg       *config.Config
}

func NewContactService(
	repo repository.ContactRepository,
	validator *validator.ContactValidator,
	notifier notification.Notifier,
	cfg *config.Config,
) ContactService {
	return &contactService{
		repo:      repo,
		validator: validator,
		notifier:  notifier,
		cfg:       cfg,
	}
}

func (s *contactService) Create(ctx context.Context, payload *model.ContactPayload) (*model.Contact, error) {
	log := s.cfg.Log.WithContext(ctx)

	contact, err := s.validator.Build(payload)
	if err == nil {
		err = s.validator.Validate(contact)
	}
	if err != nil {
		metrics.IncSubmissionRejected(model.KindContact, "validation")
		log.Warn("Contact rejected", "reason", "validation", "error", err)
		return nil, apperrors.AsAppError(err)
	}

	if err := validation.CheckRecentSubmission(ctx, s.repo, contact.Email, contact.Phone); err != nil {
		var fe *validation.FieldError
		if errors.As(err, &fe) {
			metrics.IncSubmissionRejected(model.KindContact, string(fe.Kind))
			log.Warn("Contact rejected", "reason", fe.Kind, "email", contact.Email)
			return nil, apperrors.AsAppError(err)
		}
		log.Error("Failed to check recent contacts", "error", err)
		return nil, apperrors.Persistence(err)
	}

	if err := s.repo.Create(ctx, contact); err != nil {
		log.Error("Failed to create contact", "error", err)
		return nil, apperrors.Persistence(err)
	}
	metrics.IncRecordCreated(model.KindContact)

	log.Info("Contact created successfully", "id", contact.ID, "concern_type", contact.ConcernType)

	if err := s.notifier.Notify(ctx, contact); err != nil {
		log.Error("Failed to send contact notifications", "id", contact.ID, "error", err)
	}

	return contact, nil
}

func (s *contactService) GetByID(ctx context.Context, id string) (*model.Contact, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Contact ID cannot be empty")
	}

	contact, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(ctx, id, err, "Failed to retrieve contact")
	}
	return contact, nil
}

func (s *contactService) List(ctx context.Context, page, pageSize int, status string) (*model.Page[*model.Contact], error) {
	if status != "" && !model.IsValidContactStatus(status) {
		return nil, apperrors.AsAppError(validation.InvalidChoiceError("status", status))
	}

	offset, ok := model.PageOffset(page, pageSize)
	if !ok {
		return nil, apperrors.NotFound("Page")
	}

	var count int64
	var contacts []*model.Contact
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, status)
	}()

	go func() {
		defer wg.Done()
		contacts, errFind = s.repo.FindAll(ctx, status, pageSize, offset)
	}()

	wg.Wait()
	if err := errors.Join(errCount, errFind); err != nil {
		s.cfg.Log.WithContext(ctx).Error("Failed to list contacts", "error", err)
		return nil, apperrors.Internal("Failed to retrieve contacts", err)
	}

	if page > 1 && offset >= count {
		return nil, apperrors.NotFound("Page")
	}

	return &model.Page[*model.Contact]{
		Items:      contacts,
		TotalCount: count,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// UpdateStatus accepts any valid contact status; contacts have no fixed
// lifecycle.
func (s *contactService) UpdateStatus(ctx context.Context, id string, status string) (*model.Contact, error) {
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

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, s.mapRepoError(ctx, id, err, "Failed to update contact")
	}
	metrics.IncStatusChange(model.KindContact, status)

	s.cfg.Log.WithContext(ctx).Info("Contact status updated", "id", id, "from", current.Status, "to", status)
	return updated, nil
}

func (s *contactService) BulkUpdateStatus(ctx context.Context, update *model.BulkStatusUpdate) (int64, error) {
	if err := s.validator.ValidateBulk(update); err != nil {
		return 0, apperrors.AsAppError(err)
	}

	matched, err := s.repo.BulkUpdateStatus(ctx, update.IDs, update.Status)
	if err != nil {
		if errors.Is(err, contactserrors.ErrInvalidID) {
			return 0, apperrors.InvalidInput("Invalid contact ID format")
		}
		s.cfg.Log.WithContext(ctx).Error("Failed to bulk update contacts", "error", err)
		return 0, apperrors.Internal("Failed to update contacts", err)
	}
	metrics.IncStatusChange(model.KindContact, update.Status)

	s.cfg.Log.WithContext(ctx).Info("Contacts marked",
		"status", update.Status,
		"requested", len(update.IDs),
		"matched", matched,
	)
	return matched, nil
}

func (s *contactService) Stats(ctx context.Context) (*model.ContactStats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		s.cfg.Log.WithContext(ctx).Error("Failed to compute contact stats", "error", err)
		return nil, apperrors.Internal("Unable to retrieve statistics", err)
	}

	stats := &model.ContactStats{
		New:        counts[model.ContactNew],
		InProgress: counts[model.ContactInProgress],
		Replied:    counts[model.ContactReplied],
		Closed:     counts[model.ContactClosed],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

func (s *contactService) mapRepoError(ctx context.Context, id string, err error, msg string) error {
	switch {
	case errors.Is(err, contactserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Contact", id)
	case errors.Is(err, contactserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid contact ID format")
	default:
		s.cfg.Log.WithContext(ctx).Error(msg, "id", id, "error", err)
		return apperrors.Internal(msg, err)
	}
}
