package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/focusflow-app/focusflow/log"
)

// AnalyticsSummaryResponse is the aggregate productivity overview
type AnalyticsSummaryResponse struct {
	Tasks struct {
		Todo       int64 `json:"todo"`
		InProgress int64 `json:"inProgress"`
		Completed  int64 `json:"completed"`
		Overdue    int64 `json:"overdue"`
	} `json:"tasks"`
	// CompletionRate is completed tasks over all tasks, in [0, 1]
	CompletionRate        float64        `json:"completionRate"`
	CompletionsByPriority map[string]int `json:"completionsByPriority"`
	Streak                struct {
		Current int `json:"current"`
		Longest int `json:"longest"`
	} `json:"streak"`
	Focus struct {
		TotalSessions     int64 `json:"totalSessions"`
		CompletedSessions int64 `json:"completedSessions"`
		TotalMinutes      int64 `json:"totalMinutes"`
	} `json:"focus"`
}

// AnalyticsSummary handles GET /api/analytics/summary
func (h *Handlers) AnalyticsSummary(c *gin.Context) {
	userID := currentUserID(c)

	counts, err := h.server.DB().CountTasks(userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to count tasks")
		RespondInternalError(c, "failed to load analytics")
		return
	}
	byPriority, err := h.server.DB().CompletionsByPriority(userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load completions by priority")
		RespondInternalError(c, "failed to load analytics")
		return
	}
	currentStreak, longestStreak, err := h.server.DB().CompletionStreaks(userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load completion streaks")
		RespondInternalError(c, "failed to load analytics")
		return
	}
	total, completed, minutes, err := h.server.DB().FocusSessionCounts(userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load focus session counts")
		RespondInternalError(c, "failed to load analytics")
		return
	}

	var resp AnalyticsSummaryResponse
	resp.Tasks.Todo = counts.Todo
	resp.Tasks.InProgress = counts.InProgress
	resp.Tasks.Completed = counts.Completed
	resp.Tasks.Overdue = counts.Overdue
	if all := counts.Todo + counts.InProgress + counts.Completed; all > 0 {
		resp.CompletionRate = float64(counts.Completed) / float64(all)
	}
	resp.CompletionsByPriority = byPriority
	resp.Streak.Current = currentStreak
	resp.Streak.Longest = longestStreak
	resp.Focus.TotalSessions = total
	resp.Focus.CompletedSessions = completed
	resp.Focus.TotalMinutes = minutes
	RespondData(c, resp)
}

// DailyPoint is one day of completion and focus activity
type DailyPoint struct {
	Date           string `json:"date"` // YYYY-MM-DD
	TasksCompleted int    `json:"tasksCompleted"`
	FocusMinutes   int    `json:"focusMinutes"`
}

// AnalyticsDaily handles GET /api/analytics/daily?days=N. The series covers
// the last N days up to today with zero-filled gaps; N is clamped to [1, 90].
func (h *Handlers) AnalyticsDaily(c *gin.Context) {
	days := 14
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			RespondValidationError(c, "days must be a number")
			return
		}
		days = clampDays(n)
	}

	userID := currentUserID(c)
	completions, err := h.server.DB().CompletionsByDay(userID, days)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load completions by day")
		RespondInternalError(c, "failed to load analytics")
		return
	}
	focusMinutes, err := h.server.DB().FocusMinutesByDay(userID, days)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load focus minutes by day")
		RespondInternalError(c, "failed to load analytics")
		return
	}

	series := make([]DailyPoint, 0, days)
	today := time.Now()
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format("2006-01-02")
		series = append(series, DailyPoint{
			Date:           day,
			TasksCompleted: completions[day],
			FocusMinutes:   focusMinutes[day],
		})
	}
	RespondList(c, series)
}

func clampDays(n int) int {
	if n < 1 {
		return 1
	}
	if n > 90 {
		return 90
	}
	return n
}
