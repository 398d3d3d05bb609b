package api

import (
	"github.com/gin-gonic/gin"

	"github.com/focusflow-app/focusflow/log"
)

// GetStats handles GET /api/stats with lightweight counters for the header
// bar: open task counts plus lifetime focus totals.
func (h *Handlers) GetStats(c *gin.Context) {
	userID := currentUserID(c)

	counts, err := h.server.DB().CountTasks(userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to count tasks")
		RespondInternalError(c, "failed to load stats")
		return
	}
	total, completed, minutes, err := h.server.DB().FocusSessionCounts(userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load focus counts")
		RespondInternalError(c, "failed to load stats")
		return
	}

	RespondData(c, gin.H{
		"tasks": gin.H{
			"todo":       counts.Todo,
			"inProgress": counts.InProgress,
			"completed":  counts.Completed,
			"overdue":    counts.Overdue,
		},
		"focus": gin.H{
			"totalSessions":     total,
			"completedSessions": completed,
			"totalMinutes":      minutes,
		},
		"subscribers": h.server.Notifications().SubscriberCount(),
	})
}
