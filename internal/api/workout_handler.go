package api

import (
	"coachdesk/portal/internal/domain"
	"coachdesk/portal/internal/repository"
	"coachdesk/portal/internal/service"
	"coachdesk/portal/internal/storage"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutHandler exposes the guarded workout operations. Every method builds
// the actor from the verified token context and hands it to the access
// service; no authorization decision is made here.
type WorkoutHandler struct {
	accessService service.WorkoutAccessService
	fileStorage   storage.FileStorage
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(accessService service.WorkoutAccessService, fileStorage storage.FileStorage) *WorkoutHandler {
	return &WorkoutHandler{
		accessService: accessService,
		fileStorage:   fileStorage,
	}
}

// --- DTOs ---

type WorkoutResponse struct {
	ID             string               `json:"id"`
	ClientID       string               `json:"clientId"`
	TrainerID      string               `json:"trainerId"`
	Exercise       string               `json:"exercise"`
	Sets           int                  `json:"sets"`
	Reps           int                  `json:"reps"`
	Status         domain.WorkoutStatus `json:"status"`
	WeekNumber     int                  `json:"weekNumber"`
	TrainerComment string               `json:"trainerComment,omitempty"`
	HasVideo       bool                 `json:"hasVideo"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

type CreateWorkoutRequest struct {
	ClientID   string `json:"clientId" binding:"required"`
	Exercise   string `json:"exercise" binding:"required"`
	Sets       int    `json:"sets" binding:"required,min=1"`
	Reps       int    `json:"reps" binding:"required,min=1"`
	WeekNumber int    `json:"weekNumber" binding:"required,min=1"`
}

type UpdateWorkoutRequest struct {
	Status         *string `json:"status" binding:"omitempty,oneof=active completed pending"`
	Sets           *int    `json:"sets" binding:"omitempty,min=0"`
	Reps           *int    `json:"reps" binding:"omitempty,min=0"`
	TrainerComment *string `json:"trainerComment" binding:"omitempty"`
	VideoObjectKey *string `json:"videoObjectKey" binding:"omitempty"`
}

type UploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

type DownloadURLResponse struct {
	DownloadURL string `json:"downloadUrl"`
}

// --- Handler Methods ---

// ListMyWorkouts returns every workout record visible to the authenticated
// actor, optionally narrowed by status and week.
// GET /workouts?status=&week=
func (h *WorkoutHandler) ListMyWorkouts(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify caller.")
		return
	}

	filter, err := filterFromQuery(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.accessService.ListAuthorizedWorkouts(c.Request.Context(), actor, filter)
	if err != nil {
		respondAccessError(c, err, "Failed to retrieve workouts.")
		return
	}
	c.JSON(http.StatusOK, MapWorkoutsToResponse(records))
}

// ListClientWorkouts returns the workout records of one explicitly named
// client. Naming a client outside the actor's scope is a 403.
// GET /clients/:clientId/workouts?status=&week=
func (h *WorkoutHandler) ListClientWorkouts(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify caller.")
		return
	}
	targetClientID := c.Param("clientId")

	filter, err := filterFromQuery(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.accessService.ListWorkouts(c.Request.Context(), targetClientID, actor, filter)
	if err != nil {
		respondAccessError(c, err, "Failed to retrieve workouts.")
		return
	}
	c.JSON(http.StatusOK, MapWorkoutsToResponse(records))
}

// GetWorkout returns a single workout record. Absent and forbidden both
// answer 404; the response never reveals which one it was.
// GET /workouts/:id
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify caller.")
		return
	}
	recordID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format.")
		return
	}

	rec, err := h.accessService.GetWorkout(c.Request.Context(), recordID, actor)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve workout.")
		return
	}
	if rec == nil {
		abortWithError(c, http.StatusNotFound, "Workout not found.")
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(rec))
}

// UpdateWorkout applies a partial update to a workout record.
// PATCH /workouts/:id
func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify caller.")
		return
	}
	recordID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format.")
		return
	}

	var req UpdateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	patch := domain.WorkoutPatch{
		Sets:           req.Sets,
		Reps:           req.Reps,
		TrainerComment: req.TrainerComment,
		VideoObjectKey: req.VideoObjectKey,
	}
	if req.Status != nil {
		status := domain.WorkoutStatus(*req.Status)
		patch.Status = &status
	}
	if patch.IsEmpty() {
		abortWithError(c, http.StatusBadRequest, "Patch must change at least one field.")
		return
	}

	if err := h.accessService.UpdateWorkout(c.Request.Context(), recordID, patch, actor); err != nil {
		respondAccessError(c, err, "Failed to update workout.")
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateWorkout lets a trainer author a record for an assigned client.
// POST /trainer/workouts
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify caller.")
		return
	}

	var req CreateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	rec := &domain.WorkoutRecord{
		ClientID:   req.ClientID,
		Exercise:   req.Exercise,
		Sets:       req.Sets,
		Reps:       req.Reps,
		WeekNumber: req.WeekNumber,
		Status:     domain.WorkoutStatusPending,
	}
	id, err := h.accessService.CreateWorkout(c.Request.Context(), rec, actor)
	if err != nil {
		respondAccessError(c, err, "Failed to create workout.")
		return
	}
	rec.ID = id
	c.JSON(http.StatusCreated, MapWorkoutToResponse(rec))
}

// RequestVideoUploadURL issues a presigned PUT URL for attaching a video to
// a workout record. The write check runs first; the URL is only minted for
// an actor that could also patch the record.
// POST /workouts/:id/video-upload-url
func (h *WorkoutHandler) RequestVideoUploadURL(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify caller.")
		return
	}
	recordID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format.")
		return
	}

	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	if !strings.HasPrefix(strings.ToLower(req.ContentType), "video/") {
		abortWithError(c, http.StatusBadRequest, "Content type must be a video type.")
		return
	}

	rec, err := h.accessService.AuthorizeWrite(c.Request.Context(), recordID, actor)
	if err != nil {
		respondAccessError(c, err, "Failed to authorize upload.")
		return
	}

	ext := ""
	if parts := strings.Split(req.ContentType, "/"); len(parts) == 2 {
		ext = parts[1]
	}
	objectKey := path.Join("workout-videos", rec.ClientID, recordID.Hex(), fmt.Sprintf("%s.%s", uuid.NewString(), ext))

	uploadURL, err := h.fileStorage.GeneratePresignedUploadURL(c.Request.Context(), objectKey, req.ContentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to generate upload URL.")
		return
	}
	c.JSON(http.StatusOK, UploadURLResponse{UploadURL: uploadURL, ObjectKey: objectKey})
}

// GetVideoDownloadURL issues a presigned GET URL for a workout's attached
// video. Goes through the single-record read check, so forbidden and absent
// are both 404.
// GET /workouts/:id/video-url
func (h *WorkoutHandler) GetVideoDownloadURL(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify caller.")
		return
	}
	recordID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format.")
		return
	}

	rec, err := h.accessService.GetWorkout(c.Request.Context(), recordID, actor)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve workout.")
		return
	}
	if rec == nil || rec.VideoObjectKey == "" {
		abortWithError(c, http.StatusNotFound, "Workout video not found.")
		return
	}

	downloadURL, err := h.fileStorage.GeneratePresignedDownloadURL(c.Request.Context(), rec.VideoObjectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to generate download URL.")
		return
	}
	c.JSON(http.StatusOK, DownloadURLResponse{DownloadURL: downloadURL})
}

// --- Helpers ---

// filterFromQuery parses the optional status and week query parameters.
func filterFromQuery(c *gin.Context) (service.WorkoutFilter, error) {
	var filter service.WorkoutFilter

	if raw := c.Query("status"); raw != "" {
		status := domain.WorkoutStatus(raw)
		filter.Status = &status
	}
	if raw := c.Query("week"); raw != "" {
		week, err := strconv.Atoi(raw)
		if err != nil {
			return filter, errors.New("week must be an integer")
		}
		filter.WeekNumber = &week
	}
	return filter, nil
}

// respondAccessError maps service errors onto HTTP statuses: the
// Unauthorized family is 403, a missing record is 404, anything else 500.
func respondAccessError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		abortWithError(c, http.StatusNotFound, "Workout not found.")
	default:
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}

// MapWorkoutToResponse converts a domain WorkoutRecord to its DTO.
func MapWorkoutToResponse(rec *domain.WorkoutRecord) WorkoutResponse {
	if rec == nil {
		return WorkoutResponse{}
	}
	return WorkoutResponse{
		ID:             rec.ID.Hex(),
		ClientID:       rec.ClientID,
		TrainerID:      rec.TrainerID,
		Exercise:       rec.Exercise,
		Sets:           rec.Sets,
		Reps:           rec.Reps,
		Status:         rec.Status,
		WeekNumber:     rec.WeekNumber,
		TrainerComment: rec.TrainerComment,
		HasVideo:       rec.VideoObjectKey != "",
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
}

// MapWorkoutsToResponse converts a slice of records, never returning nil.
func MapWorkoutsToResponse(records []domain.WorkoutRecord) []WorkoutResponse {
	out := make([]WorkoutResponse, 0, len(records))
	for i := range records {
		out = append(out, MapWorkoutToResponse(&records[i]))
	}
	return out
}
