package mongo

import (
	"coachdesk/portal/internal/domain"
	"coachdesk/portal/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const workoutRecordCollectionName = "workout_records"

// mongoWorkoutRecordRepository implements repository.WorkoutRecordRepository
type mongoWorkoutRecordRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRecordRepository creates a new workout record repository.
func NewMongoWorkoutRecordRepository(db *mongo.Database) repository.WorkoutRecordRepository {
	return &mongoWorkoutRecordRepository{
		collection: db.Collection(workoutRecordCollectionName),
	}
}

// Create inserts a new workout record.
func (r *mongoWorkoutRecordRepository) Create(ctx context.Context, rec *domain.WorkoutRecord) (primitive.ObjectID, error) {
	if rec.ClientID == "" || rec.TrainerID == "" || rec.Exercise == "" {
		return primitive.NilObjectID, errors.New("workout record requires clientId, trainerId, and exercise")
	}
	rec.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if rec.Status == "" {
		rec.Status = domain.WorkoutStatusPending
	}

	result, err := r.collection.InsertOne(ctx, rec)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout record ID")
	}
	return insertedID, nil
}

// FetchAll retrieves every workout record in the collection. No tenant
// predicate is passed here on purpose; the access layer filters after the
// fetch so the query layer can never be tricked into widening a scope.
func (r *mongoWorkoutRecordRepository) FetchAll(ctx context.Context) ([]domain.WorkoutRecord, error) {
	var records []domain.WorkoutRecord
	findOptions := options.Find().SetSort(bson.D{{Key: "weekNumber", Value: 1}, {Key: "createdAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// FetchByID retrieves a single workout record by its ID.
func (r *mongoWorkoutRecordRepository) FetchByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutRecord, error) {
	var rec domain.WorkoutRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// UpdateByID applies the non-nil patch fields to one record.
// Ownership fields (clientId, trainerId) are never part of a patch; moving a
// record between tenants is not an operation this layer offers.
func (r *mongoWorkoutRecordRepository) UpdateByID(ctx context.Context, id primitive.ObjectID, patch domain.WorkoutPatch) error {
	if id == primitive.NilObjectID {
		return errors.New("workout record ID is required for update")
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Sets != nil {
		set["sets"] = *patch.Sets
	}
	if patch.Reps != nil {
		set["reps"] = *patch.Reps
	}
	if patch.TrainerComment != nil {
		set["trainerComment"] = *patch.TrainerComment
	}
	if patch.VideoObjectKey != nil {
		set["videoObjectKey"] = *patch.VideoObjectKey
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureWorkoutRecordIndexes creates necessary indexes. Call during startup.
// The clientId/trainerId indexes serve reporting jobs; request-path reads go
// through FetchAll and do not rely on them.
func EnsureWorkoutRecordIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "weekNumber", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
