package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	contactserrors "truerelief/internal/contacts/errors"
	"truerelief/pkg/config"
	mongostore "truerelief/pkg/db/mongo"
	"truerelief/pkg/model"
	"truerelief/pkg/validation"
)

const CollectionName = "Contacts"

type ContactRepository interface {
	validation.SubmissionHistory
	Create(ctx context.Context, contact *model.Contact) error
	FindByID(ctx context.Context, id string) (*model.Contact, error)
	FindAll(ctx context.Context, status string, limit int, offset int64) ([]*model.Contact, error)
	Count(ctx context.Context, status string) (int64, error)
	UpdateStatus(ctx context.Context, id string, status string) (*model.Contact, error)
	BulkUpdateStatus(ctx context.Context, ids []string, status string) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type mongoContactRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	now        func() time.Time
}

func NewMongoContactRepository(cfg *config.Config) ContactRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoContactRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		now:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (r *mongoContactRepository) Create(ctx context.Context, contact *model.Contact) error {
	ctx, cancel := mongostore.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := r.now()
	contact.ID = ""
	contact.CreatedAt = now
	contact.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, contact)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		contact.ID = oid.Hex()
	}
	return nil
}

func (r *mongoContactRepository) FindByID(ctx context.Context, id string) (*model.Contact, error) {
	ctx, cancel := mongostore.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := mongostore.ObjectID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", contactserrors.ErrInvalidID, id)
	}

	var contact model.Contact
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&contact); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, contactserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find contact: %w", err)
	}
	return &contact, nil
}

func (r *mongoContactRepository) FindAll(ctx context.Context, status string, limit int, offset int64) ([]*model.Contact, error) {
	ctx, cancel := mongostore.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, mongostore.StatusFilter(status), mongostore.NewestFirst(limit, offset))
	if err != nil {
		return nil, fmt.Errorf("failed to find contacts: %w", err)
	}
	defer cursor.Close(ctx)

	contacts := []*model.Contact{}
	if err := cursor.All(ctx, &contacts); err != nil {
		return nil, fmt.Errorf("failed to decode contacts: %w", err)
	}
	return contacts, nil
}

func (r *mongoContactRepository) Count(ctx context.Context, status string) (int64, error) {
	ctx, cancel := mongostore.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, mongostore.StatusFilter(status))
	if err != nil {
		return 0, fmt.Errorf("failed to count contacts: %w", err)
	}
	return count, nil
}

func (r *mongoContactRepository) UpdateStatus(ctx context.Context, id string, status string) (*model.Contact, error) {
	ctx, cancel := mongostore.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := mongostore.ObjectID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", contactserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, mongostore.SetStatus(status, r.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, contactserrors.ErrNotFound
	}

	return r.FindByID(ctx, id)
}

func (r *mongoContactRepository) BulkUpdateStatus(ctx context.Context, ids []string, status string) (int64, error) {
	ctx, cancel := mongostore.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectIDs, err := mongostore.ObjectIDs(ids)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", contactserrors.ErrInvalidID, err)
	}

	result, err := r.collection.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": objectIDs}}, mongostore.SetStatus(status, r.now()))
	if err != nil {
		return 0, fmt.Errorf("failed to update contacts: %w", err)
	}
	return result.MatchedCount, nil
}

func (r *mongoContactRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	ctx, cancel := mongostore.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return mongostore.CountByStatus(ctx, r.collection)
}

func (r *mongoContactRepository) ExistsRecentSubmission(ctx context.Context, email, phone string, window time.Duration) (bool, error) {
	ctx, cancel := mongostore.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return mongostore.ExistsRecent(ctx, r.collection, email, phone, r.now().Add(-window))
}

// ExistsActiveOnDate is always false; contact messages carry no date.
func (r *mongoContactRepository) ExistsActiveOnDate(context.Context, string, time.Time) (bool, error) {
	return false, nil
}
