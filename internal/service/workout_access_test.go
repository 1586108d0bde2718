package service

import (
	"coachdesk/portal/internal/domain"
	"coachdesk/portal/internal/repository"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- In-memory fakes for the record store ---

type fakeWorkoutRepo struct {
	records    []domain.WorkoutRecord
	fetchCalls int
	patches    map[string]domain.WorkoutPatch
}

func (f *fakeWorkoutRepo) Create(ctx context.Context, rec *domain.WorkoutRecord) (primitive.ObjectID, error) {
	rec.ID = primitive.NewObjectID()
	f.records = append(f.records, *rec)
	return rec.ID, nil
}

func (f *fakeWorkoutRepo) FetchAll(ctx context.Context) ([]domain.WorkoutRecord, error) {
	f.fetchCalls++
	out := make([]domain.WorkoutRecord, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeWorkoutRepo) FetchByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutRecord, error) {
	for i := range f.records {
		if f.records[i].ID == id {
			rec := f.records[i]
			return &rec, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeWorkoutRepo) UpdateByID(ctx context.Context, id primitive.ObjectID, patch domain.WorkoutPatch) error {
	for i := range f.records {
		if f.records[i].ID == id {
			if f.patches == nil {
				f.patches = make(map[string]domain.WorkoutPatch)
			}
			f.patches[id.Hex()] = patch
			if patch.Status != nil {
				f.records[i].Status = *patch.Status
			}
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeAssignmentRepo struct {
	rows       []domain.TrainerClientAssignment
	fetchCalls int
}

func (f *fakeAssignmentRepo) Create(ctx context.Context, a *domain.TrainerClientAssignment) (primitive.ObjectID, error) {
	a.ID = primitive.NewObjectID()
	f.rows = append(f.rows, *a)
	return a.ID, nil
}

func (f *fakeAssignmentRepo) FetchAll(ctx context.Context) ([]domain.TrainerClientAssignment, error) {
	f.fetchCalls++
	out := make([]domain.TrainerClientAssignment, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

func (f *fakeAssignmentRepo) SetStatus(ctx context.Context, trainerID, clientID string, status domain.AssignmentStatus) error {
	for i := range f.rows {
		if f.rows[i].TrainerID == trainerID && f.rows[i].ClientID == clientID {
			f.rows[i].Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

// --- Helpers ---

const (
	clientA  = "client-a"
	clientB  = "client-b"
	trainer1 = "trainer-1"
	trainer2 = "trainer-2"
)

func record(clientID, trainerID, exercise string, status domain.WorkoutStatus, week int) domain.WorkoutRecord {
	return domain.WorkoutRecord{
		ID:         primitive.NewObjectID(),
		ClientID:   clientID,
		TrainerID:  trainerID,
		Exercise:   exercise,
		Sets:       3,
		Reps:       10,
		Status:     status,
		WeekNumber: week,
	}
}

func newGate(records []domain.WorkoutRecord, rows []domain.TrainerClientAssignment) (WorkoutAccessService, *fakeWorkoutRepo, *fakeAssignmentRepo) {
	workouts := &fakeWorkoutRepo{records: records}
	assignments := &fakeAssignmentRepo{rows: rows}
	return NewWorkoutAccessService(workouts, NewAssignmentResolver(assignments)), workouts, assignments
}

func actorOf(id string, role domain.Role) domain.Actor {
	return domain.Actor{MemberID: id, Role: role}
}

func activeRow(trainerID, clientID string) domain.TrainerClientAssignment {
	return domain.TrainerClientAssignment{
		ID:        primitive.NewObjectID(),
		TrainerID: trainerID,
		ClientID:  clientID,
		Status:    domain.AssignmentStatusActive,
	}
}

// --- ListWorkouts ---

func TestListWorkoutsClientIsolation(t *testing.T) {
	w1 := record(clientA, trainer1, "squat", domain.WorkoutStatusActive, 1)
	w2 := record(clientA, trainer1, "bench", domain.WorkoutStatusPending, 2)
	w3 := record(clientB, trainer1, "deadlift", domain.WorkoutStatusActive, 1)
	gate, _, _ := newGate([]domain.WorkoutRecord{w1, w2, w3}, nil)

	got, err := gate.ListWorkouts(context.Background(), clientA, actorOf(clientA, domain.RoleClient), WorkoutFilter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, rec := range got {
		assert.Equal(t, clientA, rec.ClientID)
	}
}

func TestListWorkoutsClientNamingOtherClientFailsLoudly(t *testing.T) {
	w3 := record(clientB, trainer1, "deadlift", domain.WorkoutStatusActive, 1)
	gate, _, _ := newGate([]domain.WorkoutRecord{w3}, nil)

	_, err := gate.ListWorkouts(context.Background(), clientB, actorOf(clientA, domain.RoleClient), WorkoutFilter{})
	require.ErrorIs(t, err, ErrClientScopeViolation)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestListWorkoutsTrainerScoping(t *testing.T) {
	w1 := record(clientA, trainer1, "squat", domain.WorkoutStatusActive, 1)
	w2 := record(clientA, trainer1, "bench", domain.WorkoutStatusPending, 2)
	gate, _, _ := newGate(
		[]domain.WorkoutRecord{w1, w2},
		[]domain.TrainerClientAssignment{activeRow(trainer1, clientA)},
	)

	got, err := gate.ListWorkouts(context.Background(), clientA, actorOf(trainer1, domain.RoleTrainer), WorkoutFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = gate.ListWorkouts(context.Background(), clientA, actorOf(trainer2, domain.RoleTrainer), WorkoutFilter{})
	require.ErrorIs(t, err, ErrTrainerNotAssigned)
}

func TestListWorkoutsRevocationIsImmediate(t *testing.T) {
	w1 := record(clientA, trainer1, "squat", domain.WorkoutStatusActive, 1)
	gate, _, assignments := newGate(
		[]domain.WorkoutRecord{w1},
		[]domain.TrainerClientAssignment{activeRow(trainer1, clientA)},
	)
	trainer := actorOf(trainer1, domain.RoleTrainer)

	_, err := gate.ListWorkouts(context.Background(), clientA, trainer, WorkoutFilter{})
	require.NoError(t, err)

	require.NoError(t, assignments.SetStatus(context.Background(), trainer1, clientA, domain.AssignmentStatusInactive))

	_, err = gate.ListWorkouts(context.Background(), clientA, trainer, WorkoutFilter{})
	require.ErrorIs(t, err, ErrTrainerNotAssigned)
	// Two authorization decisions, two reads of the assignment rows: no caching.
	assert.GreaterOrEqual(t, assignments.fetchCalls, 2)
}

func TestListWorkoutsContentFiltersOnlyNarrow(t *testing.T) {
	w1 := record(clientA, trainer1, "squat", domain.WorkoutStatusActive, 1)
	w2 := record(clientA, trainer1, "bench", domain.WorkoutStatusPending, 2)
	w3 := record(clientB, trainer1, "deadlift", domain.WorkoutStatusActive, 1)
	gate, _, _ := newGate([]domain.WorkoutRecord{w1, w2, w3}, nil)
	client := actorOf(clientA, domain.RoleClient)

	unfiltered, err := gate.ListWorkouts(context.Background(), clientA, client, WorkoutFilter{})
	require.NoError(t, err)

	status := domain.WorkoutStatusActive
	week := 1
	tests := []struct {
		name   string
		filter WorkoutFilter
	}{
		{"status only", WorkoutFilter{Status: &status}},
		{"week only", WorkoutFilter{WeekNumber: &week}},
		{"status and week", WorkoutFilter{Status: &status, WeekNumber: &week}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered, err := gate.ListWorkouts(context.Background(), clientA, client, tt.filter)
			require.NoError(t, err)
			assert.Subset(t, unfiltered, filtered)
			for _, rec := range filtered {
				assert.Equal(t, clientA, rec.ClientID)
			}
		})
	}
}

func TestListWorkoutsOwnerlessRecordNeverAppears(t *testing.T) {
	orphan := record("", trainer1, "mystery", domain.WorkoutStatusActive, 1)
	owned := record(clientA, trainer1, "squat", domain.WorkoutStatusActive, 1)
	gate, _, _ := newGate([]domain.WorkoutRecord{orphan, owned}, nil)

	got, err := gate.ListWorkouts(context.Background(), clientA, actorOf(clientA, domain.RoleClient), WorkoutFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, clientA, got[0].ClientID)
}

func TestListWorkoutsEmptyActorFailsClosed(t *testing.T) {
	w1 := record(clientA, trainer1, "squat", domain.WorkoutStatusActive, 1)
	gate, _, _ := newGate([]domain.WorkoutRecord{w1}, nil)

	got, err := gate.ListWorkouts(context.Background(), clientA, actorOf("", domain.RoleClient), WorkoutFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListWorkoutsUnknownRoleIsDenied(t *testing.T) {
	gate, _, _ := newGate(nil, nil)

	_, err := gate.ListWorkouts(context.Background(), clientA, actorOf(clientA, domain.Role("admin")), WorkoutFilter{})
	require.ErrorIs(t, err, ErrUnknownRole)
}

// --- ListAuthorizedWorkouts ---

func TestListAuthorizedWorkoutsClientSeesOnlyOwn(t *testing.T) {
	w1 := record(clientA, trainer1, "squat", domain.WorkoutStatusActive, 1)
	w3 := record(clientB, trainer1, "deadlift", domain.WorkoutStatusActive, 1)
	orphan := record("", trainer1, "mystery", domain.WorkoutStatusActive, 1)
	gate, _, _ := newGate([]domain.WorkoutRecord{w1, w3, orphan}, nil)

	got, err := gate.ListAuthorizedWorkouts(context.Background(), actorOf(clientA, domain.RoleClient), WorkoutFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, clientA, got[0].ClientID)
}

func TestListAuthorizedWorkoutsTrainerUnion(t *testing.T) {
	assigned := record(clientA, trainer2, "squat", domain.WorkoutStatusActive, 1)   // via assignment
	authored := record(clientB, trainer1, "bench", domain.WorkoutStatusActive, 1)   // via authorship safety net
	unrelated := record(clientB, trainer2, "deadlift", domain.WorkoutStatusActive, 1)
	gate, _, _ := newGate(
		[]domain.WorkoutRecord{assigned, authored, unrelated},
		[]domain.TrainerClientAssignment{activeRow(trainer1, clientA)},
	)

	got, err := gate.ListAuthorizedWorkouts(context.Background(), actorOf(trainer1, domain.RoleTrainer), WorkoutFilter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	exercises := []string{got[0].Exercise, got[1].Exercise}
	assert.ElementsMatch(t, []string{"squat", "bench"}, exercises)
}

func TestListAuthorizedWorkoutsEmptyActorReturnsEmpty(t *testing.T) {
	w1 := record(clientA, trainer1, "squat", domain.WorkoutStatusActive, 1)
	gate, _, _ := newGate([]domain.WorkoutRecord{w1}, nil)

	for _, role := range []domain.Role{domain.RoleClient, domain.RoleTrainer} {
		got, err := gate.ListAuthorizedWorkouts(context.Background(), actorOf("", role), WorkoutFilter{})
		require.NoError(t, err)
		assert.Empty(t, got)
	}
}

func TestListAuthorizedWorkoutsTrainerWithNoAssignmentsSeesOnlyAuthored(t *testing.T) {
	authored := record(clientA, trainer1, "squat", domain.WorkoutStatusActive, 1)
	foreign := record(clientB, trainer2, "bench", domain.WorkoutStatusActive, 1)
	gate, _, _ := newGate([]domain.WorkoutRecord{authored, foreign}, nil)

	got, err := gate.ListAuthorizedWorkouts(context.Background(), actorOf(trainer1, domain.RoleTrainer), WorkoutFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "squat", got[0].Exercise)
}

// --- GetWorkout ---

func TestGetWorkoutExistenceNonDisclosure(t *testing.T) {
	w3 := record(clientB, trainer1, "deadlift", domain.WorkoutStatusActive, 1)
	gate, _, _ := newGate([]domain.WorkoutRecord{w3}, nil)
	client := actorOf(clientA, domain.RoleClient)

	// Exists but belongs to someone else.
	got, err := gate.GetWorkout(context.Background(), w3.ID, client)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Does not exist at all. Must be indistinguishable from the above.
	got, err = gate.GetWorkout(context.Background(), primitive.NewObjectID(), client)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetWorkoutOwnerAndAssignedTrainerSucceed(t *testing.T) {
	w1 := record(clientA, trainer1, "squat", domain.WorkoutStatusActive, 1)
	gate, _, _ := newGate(
		[]domain.WorkoutRecord{w1},
		[]domain.TrainerClientAssignment{activeRow(trainer1, clientA)},
	)

	got, err := gate.GetWorkout(context.Background(), w1.ID, actorOf(clientA, domain.RoleClient))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, w1.ID, got.ID)

	got, err = gate.GetWorkout(context.Background(), w1.ID, actorOf(trainer1, domain.RoleTrainer))
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestGetWorkoutAuthorshipIsNotAGrant(t *testing.T) {
	// The safety-net union exists only on the bulk list; the single-record
	// read demands an active assignment even for the authoring trainer.
	w1 := record(clientA, trainer1, "squat", domain.WorkoutStatusActive, 1)
	gate, _, _ := newGate([]domain.WorkoutRecord{w1}, nil)

	got, err := gate.GetWorkout(context.Background(), w1.ID, actorOf(trainer1, domain.RoleTrainer))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetWorkoutOwnerlessRecordFailsClosed(t *testing.T) {
	orphan := record("", trainer1, "mystery", domain.WorkoutStatusActive, 1)
	gate, _, _ := newGate([]domain.WorkoutRecord{orphan}, nil)

	got, err := gate.GetWorkout(context.Background(), orphan.ID, actorOf(clientA, domain.RoleClient))
	require.NoError(t, err)
	assert.Nil(t, got)
}

// --- UpdateWorkout ---

func TestUpdateWorkoutForeignClientRejectedLoudly(t *testing.T) {
	w3 := record(clientB, trainer1, "deadlift", domain.WorkoutStatusActive, 1)
	gate, workouts, _ := newGate([]domain.WorkoutRecord{w3}, nil)

	status := domain.WorkoutStatusCompleted
	err := gate.UpdateWorkout(context.Background(), w3.ID, domain.WorkoutPatch{Status: &status}, actorOf(clientA, domain.RoleClient))
	require.ErrorIs(t, err, ErrClientUpdateDenied)
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, workouts.patches, "rejected write must not reach the store")
}

func TestUpdateWorkoutOwnerSucceeds(t *testing.T) {
	w1 := record(clientA, trainer1, "squat", domain.WorkoutStatusActive, 1)
	gate, workouts, _ := newGate([]domain.WorkoutRecord{w1}, nil)

	status := domain.WorkoutStatusCompleted
	err := gate.UpdateWorkout(context.Background(), w1.ID, domain.WorkoutPatch{Status: &status}, actorOf(clientA, domain.RoleClient))
	require.NoError(t, err)
	require.Contains(t, workouts.patches, w1.ID.Hex())
	assert.Equal(t, domain.WorkoutStatusCompleted, workouts.records[0].Status)
}

func TestUpdateWorkoutTrainerNeedsActiveAssignment(t *testing.T) {
	w1 := record(clientA, trainer1, "squat", domain.WorkoutStatusActive, 1)
	comment := "depth looked good"
	patch := domain.WorkoutPatch{TrainerComment: &comment}

	t.Run("assigned", func(t *testing.T) {
		gate, _, _ := newGate(
			[]domain.WorkoutRecord{w1},
			[]domain.TrainerClientAssignment{activeRow(trainer1, clientA)},
		)
		require.NoError(t, gate.UpdateWorkout(context.Background(), w1.ID, patch, actorOf(trainer1, domain.RoleTrainer)))
	})

	t.Run("not assigned", func(t *testing.T) {
		gate, _, _ := newGate([]domain.WorkoutRecord{w1}, nil)
		err := gate.UpdateWorkout(context.Background(), w1.ID, patch, actorOf(trainer1, domain.RoleTrainer))
		require.ErrorIs(t, err, ErrTrainerNotAssigned)
	})

	t.Run("revoked", func(t *testing.T) {
		row := activeRow(trainer1, clientA)
		row.Status = domain.AssignmentStatusInactive
		gate, _, _ := newGate([]domain.WorkoutRecord{w1}, []domain.TrainerClientAssignment{row})
		err := gate.UpdateWorkout(context.Background(), w1.ID, patch, actorOf(trainer1, domain.RoleTrainer))
		require.ErrorIs(t, err, ErrTrainerNotAssigned)
	})
}

func TestUpdateWorkoutMissingRecord(t *testing.T) {
	gate, _, _ := newGate(nil, nil)

	status := domain.WorkoutStatusCompleted
	err := gate.UpdateWorkout(context.Background(), primitive.NewObjectID(), domain.WorkoutPatch{Status: &status}, actorOf(clientA, domain.RoleClient))
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateWorkoutEmptyActorIsUnauthorized(t *testing.T) {
	w1 := record(clientA, trainer1, "squat", domain.WorkoutStatusActive, 1)
	gate, _, _ := newGate([]domain.WorkoutRecord{w1}, nil)

	status := domain.WorkoutStatusCompleted
	err := gate.UpdateWorkout(context.Background(), w1.ID, domain.WorkoutPatch{Status: &status}, actorOf("", domain.RoleClient))
	require.ErrorIs(t, err, ErrUnauthorized)
}

// --- CreateWorkout ---

func TestCreateWorkoutRequiresAssignment(t *testing.T) {
	gate, _, _ := newGate(nil, []domain.TrainerClientAssignment{activeRow(trainer1, clientA)})

	rec := record(clientA, "", "squat", domain.WorkoutStatusPending, 1)
	id, err := gate.CreateWorkout(context.Background(), &rec, actorOf(trainer1, domain.RoleTrainer))
	require.NoError(t, err)
	assert.False(t, id.IsZero())
	assert.Equal(t, trainer1, rec.TrainerID, "author is stamped from the actor, not the payload")

	other := record(clientB, "", "bench", domain.WorkoutStatusPending, 1)
	_, err = gate.CreateWorkout(context.Background(), &other, actorOf(trainer1, domain.RoleTrainer))
	require.ErrorIs(t, err, ErrTrainerNotAssigned)
}

func TestCreateWorkoutClientRejected(t *testing.T) {
	gate, _, _ := newGate(nil, nil)

	rec := record(clientA, "", "squat", domain.WorkoutStatusPending, 1)
	_, err := gate.CreateWorkout(context.Background(), &rec, actorOf(clientA, domain.RoleClient))
	require.ErrorIs(t, err, ErrNotTrainer)
}
