package main

import (
	appointmentshandler "truerelief/internal/appointments/handler"
	appointmentsrepo "truerelief/internal/appointments/repository"
	appointmentsservice "truerelief/internal/appointments/service"
	appointmentsvalidator "truerelief/internal/appointments/validator"
	contactshandler "truerelief/internal/contacts/handler"
	contactsrepo "truerelief/internal/contacts/repository"
	contactsservice "truerelief/internal/contacts/service"
	contactsvalidator "truerelief/internal/contacts/validator"
	"truerelief/internal/health"
	"truerelief/pkg/app"
	"truerelief/pkg/config"
	"truerelief/pkg/notification"
	"truerelief/pkg/validation"
)

const ServiceName = "truerelief-api"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()
	cfg.SetKafka()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting True Relief Physio API")

	notifier, err := notification.New(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to configure notifications", "error", err)
	}

	application := app.NewApplication(cfg)
	guards := application.Guards()

	appointments := initAppointments(cfg, notifier)
	contacts := initContacts(cfg, notifier)

	healthHandler := health.NewHandler(cfg.Client.Mongo, cfg.Clinic.Name+" API", cfg.ServiceVersion, cfg.Log)

	application.SetApp(
		healthHandler,
		appointmentshandler.NewAppointmentHandler(appointments, cfg.Log, guards, app.AppointmentScopes(cfg)),
		contactshandler.NewContactHandler(contacts, cfg.Log, guards, app.ContactScopes(cfg)),
	)
	application.Run()
}

func initAppointments(cfg *config.Config, notifier notification.Notifier) appointmentsservice.AppointmentService {
	dates := validation.NewDateTimeValidator(cfg.Location(), cfg.BookingHorizonDays)
	appointmentValidator := appointmentsvalidator.NewAppointmentValidator(dates, cfg.Log)
	appointmentRepo := appointmentsrepo.NewMongoAppointmentRepository(cfg)
	appointmentService := appointmentsservice.NewAppointmentService(appointmentRepo, appointmentValidator, notifier, cfg)

	cfg.Log.Info("Appointment service initialized")
	return appointmentService
}

func initContacts(cfg *config.Config, notifier notification.Notifier) contactsservice.ContactService {
	contactValidator := contactsvalidator.NewContactValidator(cfg.Log)
	contactRepo := contactsrepo.NewMongoContactRepository(cfg)
	contactService := contactsservice.NewContactService(contactRepo, contactValidator, notifier, cfg)

	cfg.Log.Info("Contact service initialized")
	return contactService
}
