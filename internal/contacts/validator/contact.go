package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"truerelief/pkg/logger"
	"truerelief/pkg/model"
	"truerelief/pkg/sanitizer"
	"truerelief/pkg/validation"
)

const (
	MaxNameLength    = 100
	MinSubjectLength = 3
	MaxSubjectLength = 200
	MinMessageLength = 10
	MaxMessageLength = 2000
)

var choiceTags = []string{"contact_concern", "contact_status"}

type ContactValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewContactValidator(log *logger.Logger) *ContactValidator {
	v := validator.New()
	v.RegisterTagNameFunc(validation.JSONFieldName)

	if err := v.RegisterValidation("contact_concern", validateConcern); err != nil {
		log.Fatal("Failed to register 'contact_concern' validator", "error", err)
	}
	if err := v.RegisterValidation("contact_status", validateStatus); err != nil {
		log.Fatal("Failed to register 'contact_status' validator", "error", err)
	}

	log.Info("Contact validator initialized successfully")

	return &ContactValidator{
		validate: v,
		logger:   log,
	}
}

func validateConcern(fl validator.FieldLevel) bool {
	return model.IsValidConcern(fl.Field().String())
}

func validateStatus(fl validator.FieldLevel) bool {
	return model.IsValidContactStatus(fl.Field().String())
}

// Build sanitizes a contact form into a new contact, collecting every field
// error.
func (v *ContactValidator) Build(p *model.ContactPayload) (*model.Contact, error) {
	var errs validation.Errors
	c := &model.Contact{Status: model.ContactNew}

	if name, err := sanitizer.SanitizeName(p.Name); err != nil {
		errs.Add("name", err)
	} else if name == "" {
		errs.Add("name", validation.NewError(validation.Required, "Name is required."))
	} else if utf8.RuneCountInString(name) > MaxNameLength {
		errs.Add("name", validation.NewError(validation.TooLong, fmt.Sprintf("Name cannot exceed %d characters.", MaxNameLength)))
	} else {
		c.Name = name
	}

	if email, err := sanitizer.SanitizeEmail(p.Email); err != nil {
		errs.Add("email", err)
	} else {
		c.Email = email
	}

	if phone, err := sanitizer.SanitizePhone(p.Phone); err != nil {
		errs.Add("phone", err)
	} else {
		c.Phone = phone
	}

	concern := strings.TrimSpace(p.ConcernType)
	switch {
	case concern == "":
		errs.Add("concern_type", validation.NewError(validation.Required, "Concern type is required."))
	case !model.IsValidConcern(concern):
		errs.Add("concern_type", validation.NewError(validation.InvalidChoice, fmt.Sprintf("%q is not a valid choice.", concern)))
	default:
		c.ConcernType = concern
	}

	if subject, err := sanitizer.SanitizeString(p.Subject); err != nil {
		errs.Add("subject", err)
	} else if subject == "" {
		errs.Add("subject", validation.NewError(validation.Required, "Subject is required."))
	} else if err := checkLength(subject, MinSubjectLength, MaxSubjectLength, "Subject"); err != nil {
		errs.Add("subject", err)
	} else {
		c.Subject = subject
	}

	if message, err := sanitizer.SanitizeString(p.Message); err != nil {
		errs.Add("message", err)
	} else if message == "" {
		errs.Add("message", validation.NewError(validation.Required, "Message is required."))
	} else if err := validation.ValidateMessageLength(message, MinMessageLength, MaxMessageLength); err != nil {
		errs.Add("message", err)
	} else {
		c.Message = message
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return c, nil
}

func checkLength(s string, min, max int, label string) error {
	n := utf8.RuneCountInString(s)
	if n < min {
		return validation.NewError(validation.TooShort, fmt.Sprintf("%s must be at least %d characters long.", label, min))
	}
	if n > max {
		return validation.NewError(validation.TooLong, fmt.Sprintf("%s cannot exceed %d characters.", label, max))
	}
	return nil
}

func (v *ContactValidator) Validate(c *model.Contact) error {
	return validation.FromValidator(v.validate.Struct(c), choiceTags...)
}

func (v *ContactValidator) ValidateStatus(status string) error {
	if err := v.validate.Var(status, "required,contact_status"); err != nil {
		return validation.InvalidChoiceError("status", status)
	}
	return nil
}

func (v *ContactValidator) ValidateBulk(u *model.BulkStatusUpdate) error {
	if err := validation.FromValidator(v.validate.Struct(u), choiceTags...); err != nil {
		return err
	}
	return v.ValidateStatus(u.Status)
}
