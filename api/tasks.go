package api

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/focusflow-app/focusflow/db"
	"github.com/focusflow-app/focusflow/log"
)

type createTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     *int64 `json:"dueDate"`
}

// CreateTask handles POST /api/tasks
func (h *Handlers) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "title is required")
		return
	}
	if req.Status != "" && !db.ValidTaskStatus(req.Status) {
		RespondValidationError(c, "invalid status")
		return
	}
	if req.Priority != "" && !db.ValidTaskPriority(req.Priority) {
		RespondValidationError(c, "invalid priority")
		return
	}

	userID := currentUserID(c)
	task, err := h.server.DB().CreateTask(userID, db.NewTask{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to create task")
		RespondInternalError(c, "failed to create task")
		return
	}

	h.server.Notifications().NotifyTaskChanged(userID, task.ID, "created")
	RespondCreated(c, task)
}

// ListTasks handles GET /api/tasks with optional status/priority filters
func (h *Handlers) ListTasks(c *gin.Context) {
	filter := db.TaskFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
	}
	if raw := c.Query("due_before"); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			RespondValidationError(c, "due_before must be epoch milliseconds")
			return
		}
		filter.DueBefore = &ms
	}
	if raw := c.Query("due_after"); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			RespondValidationError(c, "due_after must be epoch milliseconds")
			return
		}
		filter.DueAfter = &ms
	}
	if filter.Status != "" && !db.ValidTaskStatus(filter.Status) {
		RespondValidationError(c, "invalid status filter")
		return
	}
	if filter.Priority != "" && !db.ValidTaskPriority(filter.Priority) {
		RespondValidationError(c, "invalid priority filter")
		return
	}

	tasks, err := h.server.DB().ListTasks(currentUserID(c), filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list tasks")
		RespondInternalError(c, "failed to list tasks")
		return
	}
	RespondList(c, tasks)
}

// GetTask handles GET /api/tasks/:id
func (h *Handlers) GetTask(c *gin.Context) {
	task, err := h.server.DB().GetTask(currentUserID(c), c.Param("id"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to load task")
		RespondInternalError(c, "failed to load task")
		return
	}
	if task == nil {
		RespondNotFound(c, "task not found")
		return
	}
	RespondData(c, task)
}

// nullableInt64 distinguishes an absent field from an explicit null.
// UnmarshalJSON only runs when the key is present, so Set marks presence
// and a null body leaves Value nil.
type nullableInt64 struct {
	Set   bool
	Value *int64
}

func (n *nullableInt64) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, &n.Value)
}

type updateTaskRequest struct {
	Title       *string       `json:"title"`
	Description *string       `json:"description"`
	Status      *string       `json:"status"`
	Priority    *string       `json:"priority"`
	DueDate     nullableInt64 `json:"dueDate"`
}

// UpdateTask handles PATCH /api/tasks/:id. Absent fields are left unchanged;
// an explicit null dueDate clears the date.
func (h *Handlers) UpdateTask(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	if req.Title != nil && *req.Title == "" {
		RespondValidationError(c, "title cannot be empty")
		return
	}
	if req.Status != nil && !db.ValidTaskStatus(*req.Status) {
		RespondValidationError(c, "invalid status")
		return
	}
	if req.Priority != nil && !db.ValidTaskPriority(*req.Priority) {
		RespondValidationError(c, "invalid priority")
		return
	}

	upd := db.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	}
	if req.DueDate.Set {
		upd.DueDate = &req.DueDate.Value
	}

	userID := currentUserID(c)
	task, err := h.server.DB().UpdateTask(userID, c.Param("id"), upd)
	if err != nil {
		log.Error().Err(err).Msg("Failed to update task")
		RespondInternalError(c, "failed to update task")
		return
	}
	if task == nil {
		RespondNotFound(c, "task not found")
		return
	}

	h.server.Notifications().NotifyTaskChanged(userID, task.ID, "updated")
	if req.Status != nil {
		h.server.Notifications().NotifyBoardChanged(userID)
	}
	RespondData(c, task)
}

// DeleteTask handles DELETE /api/tasks/:id
func (h *Handlers) DeleteTask(c *gin.Context) {
	userID := currentUserID(c)
	id := c.Param("id")

	deleted, err := h.server.DB().DeleteTask(userID, id)
	if err != nil {
		log.Error().Err(err).Msg("Failed to delete task")
		RespondInternalError(c, "failed to delete task")
		return
	}
	if !deleted {
		RespondNotFound(c, "task not found")
		return
	}

	h.server.Notifications().NotifyTaskChanged(userID, id, "deleted")
	RespondNoContent(c)
}

type moveTaskRequest struct {
	Status   string `json:"status" binding:"required"`
	BeforeID string `json:"beforeId"`
	AfterID  string `json:"afterId"`
}

// MoveTask handles POST /api/tasks/:id/move. The task is placed in the given
// column between its beforeId and afterId neighbors; either neighbor may be
// omitted to drop at the head or tail.
func (h *Handlers) MoveTask(c *gin.Context) {
	var req moveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "status is required")
		return
	}
	if !db.ValidTaskStatus(req.Status) {
		RespondValidationError(c, "invalid status")
		return
	}

	userID := currentUserID(c)
	task, err := h.server.DB().MoveTask(userID, c.Param("id"), req.Status, req.BeforeID, req.AfterID)
	if err != nil {
		if errors.Is(err, db.ErrNeighborMismatch) {
			RespondValidationError(c, "neighbor task is not in the target column")
			return
		}
		log.Error().Err(err).Msg("Failed to move task")
		RespondInternalError(c, "failed to move task")
		return
	}
	if task == nil {
		RespondNotFound(c, "task not found")
		return
	}

	h.server.Notifications().NotifyBoardChanged(userID)
	RespondData(c, task)
}
