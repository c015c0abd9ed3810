//go:build integration

package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	appointmentserrors "truerelief/internal/appointments/errors"
	migrations "truerelief/internal/migrations/mongo"
	"truerelief/pkg/db/mongo/mongotest"
	"truerelief/pkg/model"
)

func newAppointment(email, date string) *model.Appointment {
	return &model.Appointment{
		Service:  "physiotherapy",
		Name:     "Test Patient",
		Email:    email,
		Phone:    "+919625891710",
		Age:      40,
		Location: "Gurugram",
		Date:     date,
		Time:     "09:00 AM",
		Status:   model.AppointmentPending,
	}
}

func setup(t *testing.T) (AppointmentRepository, *mongotest.Helper) {
	t.Helper()
	h := mongotest.New(t)
	cfg := h.Config()
	if err := migrations.RunMigration(context.Background(), h.Client, h.DBName, cfg.Log); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	return NewMongoAppointmentRepository(cfg), h
}

func TestMongoAppointmentRepository_Lifecycle(t *testing.T) {
	repo, h := setup(t)
	ctx := context.Background()

	a := newAppointment("lifecycle@example.com", "2030-01-15")
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.ID == "" || a.CreatedAt.IsZero() {
		t.Fatalf("ID or CreatedAt not set: %+v", a)
	}
	if h.CountDocuments(t, CollectionName) != 1 {
		t.Error("expected one stored appointment")
	}

	found, err := repo.FindByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found.Email != a.Email || found.Age != 40 {
		t.Errorf("round trip mismatch: %+v", found)
	}

	time.Sleep(5 * time.Millisecond)
	updated, err := repo.UpdateStatus(ctx, a.ID, model.AppointmentConfirmed)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != model.AppointmentConfirmed {
		t.Errorf("Status = %q", updated.Status)
	}
	if !updated.CreatedAt.Equal(found.CreatedAt) || !updated.UpdatedAt.After(found.UpdatedAt) {
		t.Errorf("timestamps: created %v→%v updated %v→%v", found.CreatedAt, updated.CreatedAt, found.UpdatedAt, updated.UpdatedAt)
	}

	if _, err := repo.FindByID(ctx, "not-an-id"); !errors.Is(err, appointmentserrors.ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
	if _, err := repo.FindByID(ctx, "65a1b2c3d4e5f60718293a4b"); !errors.Is(err, appointmentserrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMongoAppointmentRepository_ListAndStats(t *testing.T) {
	repo, _ := setup(t)
	ctx := context.Background()

	var ids []string
	for i, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		a := newAppointment(email, fmt.Sprintf("2030-02-%02d", i+1))
		if err := repo.Create(ctx, a); err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, a.ID)
		time.Sleep(2 * time.Millisecond)
	}

	items, err := repo.FindAll(ctx, "", 2, 0)
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(items) != 2 || items[0].Email != "c@example.com" {
		t.Errorf("expected newest first, got %v", items)
	}

	n, err := repo.BulkUpdateStatus(ctx, ids[:2], model.AppointmentCancelled)
	if err != nil || n != 2 {
		t.Fatalf("BulkUpdateStatus = %d, %v", n, err)
	}

	count, err := repo.Count(ctx, model.AppointmentCancelled)
	if err != nil || count != 2 {
		t.Errorf("Count(cancelled) = %d, %v", count, err)
	}

	stats, err := repo.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if stats[model.AppointmentCancelled] != 2 || stats[model.AppointmentPending] != 1 {
		t.Errorf("stats = %v", stats)
	}
}

func TestMongoAppointmentRepository_SubmissionHistory(t *testing.T) {
	repo, h := setup(t)
	ctx := context.Background()

	a := newAppointment("history@example.com", "2030-03-10")
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create: %v", err)
	}

	recent, err := repo.ExistsRecentSubmission(ctx, "other@example.com", a.Phone, 24*time.Hour)
	if err != nil || !recent {
		t.Errorf("phone match should count as recent: %v, %v", recent, err)
	}

	date, _ := time.Parse("2006-01-02", "2030-03-10")
	booked, err := repo.ExistsActiveOnDate(ctx, a.Email, date)
	if err != nil || !booked {
		t.Errorf("expected active booking: %v, %v", booked, err)
	}

	if _, err := repo.UpdateStatus(ctx, a.ID, model.AppointmentCancelled); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	booked, err = repo.ExistsActiveOnDate(ctx, a.Email, date)
	if err != nil || booked {
		t.Errorf("cancelled booking should not block the date: %v, %v", booked, err)
	}

	old := bson.M{
		"service": "physiotherapy", "name": "Old", "email": "old@example.com", "phone": "+918449555400",
		"age": 30, "location": "x", "date": "2030-01-01", "time": "09:00 AM", "status": "completed",
		"created_at": time.Now().Add(-48 * time.Hour), "updated_at": time.Now().Add(-48 * time.Hour),
	}
	h.Insert(t, CollectionName, old)
	recent, err = repo.ExistsRecentSubmission(ctx, "old@example.com", "+910000000000", 24*time.Hour)
	if err != nil || recent {
		t.Errorf("submission older than the window should not count: %v, %v", recent, err)
	}
}
