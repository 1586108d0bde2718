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

const assignmentCollectionName = "trainer_client_assignments"

// mongoAssignmentRepository implements repository.AssignmentRepository
type mongoAssignmentRepository struct {
	collection *mongo.Collection
}

// NewMongoAssignmentRepository creates a new assignment repository.
func NewMongoAssignmentRepository(db *mongo.Database) repository.AssignmentRepository {
	return &mongoAssignmentRepository{
		collection: db.Collection(assignmentCollectionName),
	}
}

// Create inserts a new trainer-client assignment row. If an inactive row for
// the same pair already exists it is reactivated instead, so revoke/re-grant
// cycles do not accumulate rows.
func (r *mongoAssignmentRepository) Create(ctx context.Context, a *domain.TrainerClientAssignment) (primitive.ObjectID, error) {
	if a.TrainerID == "" || a.ClientID == "" {
		return primitive.NilObjectID, errors.New("assignment requires trainerId and clientId")
	}
	if a.Status == "" {
		a.Status = domain.AssignmentStatusActive
	}
	now := time.Now().UTC()

	// Reactivate an existing pair if present.
	filter := bson.M{"trainerId": a.TrainerID, "clientId": a.ClientID}
	update := bson.M{"$set": bson.M{"status": a.Status, "updatedAt": now}}
	var existing domain.TrainerClientAssignment
	err := r.collection.FindOneAndUpdate(ctx, filter, update).Decode(&existing)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return primitive.NilObjectID, err
	}

	a.ID = primitive.NewObjectID()
	a.CreatedAt = now
	a.UpdatedAt = now
	result, err := r.collection.InsertOne(ctx, a)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted assignment ID")
	}
	return insertedID, nil
}

// FetchAll retrieves every assignment row, active or not. The resolver
// filters in memory; no status or trainer predicate reaches the query.
func (r *mongoAssignmentRepository) FetchAll(ctx context.Context) ([]domain.TrainerClientAssignment, error) {
	var assignments []domain.TrainerClientAssignment

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return assignments, nil
}

// SetStatus changes the status of the (trainer, client) pair's row. Setting
// anything other than "active" revokes access for every subsequent request.
func (r *mongoAssignmentRepository) SetStatus(ctx context.Context, trainerID, clientID string, status domain.AssignmentStatus) error {
	if trainerID == "" || clientID == "" {
		return errors.New("trainer ID and client ID are required")
	}

	filter := bson.M{"trainerId": trainerID, "clientId": clientID}
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureAssignmentIndexes creates necessary indexes. Call during startup.
func EnsureAssignmentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "clientId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
