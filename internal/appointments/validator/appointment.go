package validator

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"truerelief/pkg/logger"
	"truerelief/pkg/model"
	"truerelief/pkg/sanitizer"
	"truerelief/pkg/validation"
)

const (
	MaxNameLength     = 100
	MaxLocationLength = 255
	MaxMessageLength  = 2000
)

type AppointmentValidator struct {
	validate *validator.Validate
	dates    *validation.DateTimeValidator
	logger   *logger.Logger
}

func NewAppointmentValidator(dates *validation.DateTimeValidator, log *logger.Logger) *AppointmentValidator {
	v := validator.New()
	v.RegisterTagNameFunc(validation.JSONFieldName)

	if err := v.RegisterValidation("appointment_service", validateService); err != nil {
		log.Fatal("Failed to register 'appointment_service' validator", "error", err)
	}
	if err := v.RegisterValidation("appointment_status", validateStatus); err != nil {
		log.Fatal("Failed to register 'appointment_status' validator", "error", err)
	}

	log.Info("Appointment validator initialized successfully")

	return &AppointmentValidator{
		validate: v,
		dates:    dates,
		logger:   log,
	}
}

func validateService(fl validator.FieldLevel) bool {
	return model.IsValidService(fl.Field().String())
}

func validateStatus(fl validator.FieldLevel) bool {
	return model.IsValidAppointmentStatus(fl.Field().String())
}

// Build sanitizes a booking form into a pending appointment. Every field is
// checked and all failures are returned together. The parsed date is
// returned for the duplicate check.
func (v *AppointmentValidator) Build(p *model.AppointmentPayload) (*model.Appointment, time.Time, error) {
	var errs validation.Errors
	a := &model.Appointment{Status: model.AppointmentPending}

	service := strings.TrimSpace(p.Service)
	switch {
	case service == "":
		errs.Add("service", validation.NewError(validation.Required, "Service is required."))
	case !model.IsValidService(service):
		errs.Add("service", validation.NewError(validation.InvalidChoice, fmt.Sprintf("%q is not a valid choice.", service)))
	default:
		a.Service = service
	}

	if name, err := sanitizer.SanitizeName(p.Name); err != nil {
		errs.Add("name", err)
	} else if name == "" {
		errs.Add("name", validation.NewError(validation.Required, "Name is required."))
	} else if utf8.RuneCountInString(name) > MaxNameLength {
		errs.Add("name", validation.NewError(validation.TooLong, fmt.Sprintf("Name cannot exceed %d characters.", MaxNameLength)))
	} else {
		a.Name = name
	}

	if email, err := sanitizer.SanitizeEmail(p.Email); err != nil {
		errs.Add("email", err)
	} else {
		a.Email = email
	}

	if phone, err := sanitizer.SanitizePhone(p.Phone); err != nil {
		errs.Add("phone", err)
	} else {
		a.Phone = phone
	}

	if age, err := validation.ValidateAge(p.Age); err != nil {
		errs.Add("age", err)
	} else {
		a.Age = age
	}

	if location, err := sanitizer.SanitizeString(p.Location); err != nil {
		errs.Add("location", err)
	} else if location == "" {
		errs.Add("location", validation.NewError(validation.Required, "Location is required."))
	} else if utf8.RuneCountInString(location) > MaxLocationLength {
		errs.Add("location", validation.NewError(validation.TooLong, fmt.Sprintf("Location cannot exceed %d characters.", MaxLocationLength)))
	} else {
		a.Location = location
	}

	date, err := v.dates.ParseAppointmentDate(p.Date)
	if err != nil {
		errs.Add("date", err)
	} else {
		a.Date = date.Format(validation.DateLayout)
	}

	if slot, err := v.dates.ValidateTimeSlot(p.Time); err != nil {
		errs.Add("time", err)
	} else {
		a.Time = slot
	}

	if message, err := sanitizer.SanitizeString(p.Message); err != nil {
		errs.Add("message", err)
	} else if message != "" {
		if err := validation.ValidateMessageLength(message, 0, MaxMessageLength); err != nil {
			errs.Add("message", err)
		} else {
			a.Message = message
		}
	}

	if len(errs) > 0 {
		return nil, time.Time{}, errs
	}
	return a, date, nil
}

var choiceTags = []string{"appointment_service", "appointment_status"}

// Validate checks the struct tags of a built appointment.
func (v *AppointmentValidator) Validate(a *model.Appointment) error {
	return validation.FromValidator(v.validate.Struct(a), choiceTags...)
}

// ValidateStatus checks a requested status value.
func (v *AppointmentValidator) ValidateStatus(status string) error {
	if err := v.validate.Var(status, "required,appointment_status"); err != nil {
		return validation.InvalidChoiceError("status", status)
	}
	return nil
}

// ValidateBulk checks the ids and status of a bulk status action.
func (v *AppointmentValidator) ValidateBulk(u *model.BulkStatusUpdate) error {
	if err := validation.FromValidator(v.validate.Struct(u), choiceTags...); err != nil {
		return err
	}
	return v.ValidateStatus(u.Status)
}
