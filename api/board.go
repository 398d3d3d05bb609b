package api

import (
	"github.com/gin-gonic/gin"

	"github.com/focusflow-app/focusflow/db"
	"github.com/focusflow-app/focusflow/log"
)

// BoardResponse groups tasks into kanban columns in display order
type BoardResponse struct {
	Todo       []db.Task `json:"todo"`
	InProgress []db.Task `json:"inProgress"`
	Completed  []db.Task `json:"completed"`
}

// GetBoard handles GET /api/board. Tasks come back grouped by column, each
// column sorted by rank.
func (h *Handlers) GetBoard(c *gin.Context) {
	tasks, err := h.server.DB().ListTasks(currentUserID(c), db.TaskFilter{})
	if err != nil {
		log.Error().Err(err).Msg("Failed to load board")
		RespondInternalError(c, "failed to load board")
		return
	}

	board := BoardResponse{
		Todo:       []db.Task{},
		InProgress: []db.Task{},
		Completed:  []db.Task{},
	}
	for _, t := range tasks {
		switch t.Status {
		case db.TaskStatusTodo:
			board.Todo = append(board.Todo, t)
		case db.TaskStatusInProgress:
			board.InProgress = append(board.InProgress, t)
		case db.TaskStatusCompleted:
			board.Completed = append(board.Completed, t)
		}
	}
	RespondData(c, board)
}
