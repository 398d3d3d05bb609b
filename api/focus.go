package api

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/focusflow-app/focusflow/db"
	"github.com/focusflow-app/focusflow/log"
)

type startFocusRequest struct {
	TaskID         *string `json:"taskId"`
	PlannedMinutes int     `json:"plannedMinutes"`
}

// StartFocusSession handles POST /api/focus. At most one session can be
// running per user; starting a second one returns 409.
func (h *Handlers) StartFocusSession(c *gin.Context) {
	var req startFocusRequest
	// Body is optional: an empty request starts a default-length session
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		RespondBadRequest(c, "invalid request body")
		return
	}
	if req.PlannedMinutes < 0 || req.PlannedMinutes > 240 {
		RespondValidationError(c, "plannedMinutes must be between 1 and 240")
		return
	}

	userID := currentUserID(c)
	if req.TaskID != nil {
		task, err := h.server.DB().GetTask(userID, *req.TaskID)
		if err != nil {
			RespondInternalError(c, "failed to start focus session")
			return
		}
		if task == nil {
			RespondNotFound(c, "task not found")
			return
		}
	}

	session, err := h.server.DB().StartFocusSession(userID, req.TaskID, req.PlannedMinutes)
	if err != nil {
		if errors.Is(err, db.ErrFocusSessionRunning) {
			RespondConflict(c, "a focus session is already running")
			return
		}
		log.Error().Err(err).Msg("Failed to start focus session")
		RespondInternalError(c, "failed to start focus session")
		return
	}

	h.server.Notifications().NotifyFocusChanged(userID, session.ID, "started")
	RespondCreated(c, session)
}

// ActiveFocusSession handles GET /api/focus/active
func (h *Handlers) ActiveFocusSession(c *gin.Context) {
	session, err := h.server.DB().ActiveFocusSession(currentUserID(c))
	if err != nil {
		log.Error().Err(err).Msg("Failed to load active focus session")
		RespondInternalError(c, "failed to load focus session")
		return
	}
	if session == nil {
		RespondNotFound(c, "no focus session is running")
		return
	}
	RespondData(c, session)
}

// CompleteFocusSession handles POST /api/focus/:id/complete
func (h *Handlers) CompleteFocusSession(c *gin.Context) {
	h.finishFocusSession(c, db.FocusStatusCompleted, "completed")
}

// AbandonFocusSession handles POST /api/focus/:id/abandon
func (h *Handlers) AbandonFocusSession(c *gin.Context) {
	h.finishFocusSession(c, db.FocusStatusAbandoned, "abandoned")
}

func (h *Handlers) finishFocusSession(c *gin.Context, status, operation string) {
	userID := currentUserID(c)
	id := c.Param("id")

	session, err := h.server.DB().GetFocusSession(userID, id)
	if err != nil {
		RespondInternalError(c, "failed to load focus session")
		return
	}
	if session == nil {
		RespondNotFound(c, "focus session not found")
		return
	}

	ok, err := h.server.DB().FinishFocusSession(userID, id, status)
	if err != nil {
		log.Error().Err(err).Msg("Failed to finish focus session")
		RespondInternalError(c, "failed to finish focus session")
		return
	}
	// Only a running session can transition
	if !ok {
		RespondConflict(c, "focus session is not running")
		return
	}

	session, err = h.server.DB().GetFocusSession(userID, id)
	if err != nil || session == nil {
		RespondInternalError(c, "failed to load focus session")
		return
	}

	h.server.Notifications().NotifyFocusChanged(userID, id, operation)
	RespondData(c, session)
}

// ListFocusSessions handles GET /api/focus
func (h *Handlers) ListFocusSessions(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			RespondValidationError(c, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	sessions, err := h.server.DB().ListFocusSessions(currentUserID(c), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list focus sessions")
		RespondInternalError(c, "failed to list focus sessions")
		return
	}
	RespondList(c, sessions)
}
