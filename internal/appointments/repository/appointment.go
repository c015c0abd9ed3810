package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	appointmentserrors "truerelief/internal/appointments/errors"
	"truerelief/pkg/config"
	mongostore "truerelief/pkg/db/mongo"
	"truerelief/pkg/model"
	"truerelief/pkg/validation"
)

const (
	CollectionName = "Appointments"
)

type AppointmentRepository interface {
	validation.SubmissionHistory
	Create(ctx context.Context, appointment *model.Appointment) error
	FindByID(ctx context.Context, id string) (*model.Appointment, error)
	FindAll(ctx context.Context, status string, limit int, offset int64) ([]*model.Appointment, error)
	Count(ctx context.Context, status string) (int64, error)
	UpdateStatus(ctx context.Context, id string, status string) (*model.Appointment, error)
	BulkUpdateStatus(ctx context.Context, ids []string, status string) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type mongoAppointmentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	now        func() time.Time
}

func NewMongoAppointmentRepository(cfg *config.Config) AppointmentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAppointmentRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		now:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (r *mongoAppointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	ctx, cancel := mongostore.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := r.now()
	appointment.ID = ""
	appointment.CreatedAt = now
	appointment.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, appointment)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		appointment.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	ctx, cancel := mongostore.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := mongostore.ObjectID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", appointmentserrors.ErrInvalidID, id)
	}

	var appointment model.Appointment
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&appointment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appointmentserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}

	return &appointment, nil
}

func (r *mongoAppointmentRepository) FindAll(ctx context.Context, status string, limit int, offset int64) ([]*model.Appointment, error) {
	ctx, cancel := mongostore.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, mongostore.StatusFilter(status), mongostore.NewestFirst(limit, offset))
	if err != nil {
		return nil, fmt.Errorf("failed to find appointments: %w", err)
	}
	defer cursor.Close(ctx)

	appointments := []*model.Appointment{}
	if err = cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}

	return appointments, nil
}

func (r *mongoAppointmentRepository) Count(ctx context.Context, status string) (int64, error) {
	ctx, cancel := mongostore.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, mongostore.StatusFilter(status))
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}

func (r *mongoAppointmentRepository) UpdateStatus(ctx context.Context, id string, status string) (*model.Appointment, error) {
	ctx, cancel := mongostore.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := mongostore.ObjectID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", appointmentserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, mongostore.SetStatus(status, r.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, appointmentserrors.ErrNotFound
	}

	return r.FindByID(ctx, id)
}

func (r *mongoAppointmentRepository) BulkUpdateStatus(ctx context.Context, ids []string, status string) (int64, error) {
	ctx, cancel := mongostore.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectIDs, err := mongostore.ObjectIDs(ids)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", appointmentserrors.ErrInvalidID, err)
	}

	result, err := r.collection.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": objectIDs}}, mongostore.SetStatus(status, r.now()))
	if err != nil {
		return 0, fmt.Errorf("failed to update appointments: %w", err)
	}
	return result.MatchedCount, nil
}

func (r *mongoAppointmentRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	ctx, cancel := mongostore.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return mongostore.CountByStatus(ctx, r.collection)
}

func (r *mongoAppointmentRepository) ExistsRecentSubmission(ctx context.Context, email, phone string, window time.Duration) (bool, error) {
	ctx, cancel := mongostore.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return mongostore.ExistsRecent(ctx, r.collection, email, phone, r.now().Add(-window))
}

func (r *mongoAppointmentRepository) ExistsActiveOnDate(ctx context.Context, email string, date time.Time) (bool, error) {
	ctx, cancel := mongostore.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"email":  email,
		"date":   date.Format(validation.DateLayout),
		"status": bson.M{"$in": model.ActiveAppointmentStatuses},
	}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to check existing appointments: %w", err)
	}
	return count > 0, nil
}
