package api

import (
	"coachdesk/portal/internal/domain"
	"coachdesk/portal/internal/repository"
	"coachdesk/portal/internal/service"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RosterHandler exposes the trainer-management flows that feed the
// assignment resolver: granting, revoking, and listing client access.
type RosterHandler struct {
	rosterService service.RosterService
	resolver      service.AssignmentResolver
}

// NewRosterHandler creates a new RosterHandler.
func NewRosterHandler(rosterService service.RosterService, resolver service.AssignmentResolver) *RosterHandler {
	return &RosterHandler{
		rosterService: rosterService,
		resolver:      resolver,
	}
}

// --- DTOs ---

type AddClientRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type AssignmentResponse struct {
	ID        string                  `json:"id"`
	TrainerID string                  `json:"trainerId"`
	ClientID  string                  `json:"clientId"`
	Status    domain.AssignmentStatus `json:"status"`
	CreatedAt time.Time               `json:"createdAt"`
}

type ActiveClientsResponse struct {
	ClientIDs []string `json:"clientIds"`
}

// --- Handler Methods ---

// AddClient grants the authenticated trainer access to the client with the
// given email.
// POST /trainer/clients
func (h *RosterHandler) AddClient(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainer.")
		return
	}

	var req AddClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	assignment, err := h.rosterService.AddClientByEmail(c.Request.Context(), actor.MemberID, req.Email)
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrClientNotRole) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to add client.")
		}
		return
	}

	c.JSON(http.StatusCreated, AssignmentResponse{
		ID:        assignment.ID.Hex(),
		TrainerID: assignment.TrainerID,
		ClientID:  assignment.ClientID,
		Status:    assignment.Status,
		CreatedAt: assignment.CreatedAt,
	})
}

// RemoveClient revokes the authenticated trainer's access to a client. The
// revocation is effective for the very next request.
// DELETE /trainer/clients/:clientId
func (h *RosterHandler) RemoveClient(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainer.")
		return
	}
	clientID := c.Param("clientId")

	if err := h.rosterService.RemoveClient(c.Request.Context(), actor.MemberID, clientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "No assignment for this client.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to remove client.")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// ListActiveClients returns the ids of the clients the authenticated trainer
// currently manages.
// GET /trainer/clients
func (h *RosterHandler) ListActiveClients(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainer.")
		return
	}

	clients, err := h.resolver.ActiveClientsOf(c.Request.Context(), actor.MemberID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list clients.")
		return
	}

	ids := make([]string, 0, len(clients))
	for id := range clients {
		ids = append(ids, id)
	}
	c.JSON(http.StatusOK, ActiveClientsResponse{ClientIDs: ids})
}
