// Package reminders runs the background loops: due-task reminders and the
// session janitor.
package reminders

import (
	"sync"
	"time"

	"github.com/focusflow-app/focusflow/db"
	"github.com/focusflow-app/focusflow/log"
	"github.com/focusflow-app/focusflow/notifications"
)

var logger = log.GetLogger("Reminders")

// Config holds worker configuration
type Config struct {
	// ScanInterval is how often due tasks are scanned
	ScanInterval time.Duration
	// Lookahead is how far ahead of the due date a reminder fires
	Lookahead time.Duration
	// JanitorInterval is how often expired sessions are cleaned up
	JanitorInterval time.Duration
	// StaleFocusAfter is how long a running focus session may live before
	// the janitor abandons it
	StaleFocusAfter time.Duration
}

// Worker scans for due tasks and emits reminder events
type Worker struct {
	cfg   Config
	db    *db.DB
	notif *notifications.Service

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewWorker creates a reminders worker with dependencies
func NewWorker(cfg Config, database *db.DB, notifService *notifications.Service) *Worker {
	if cfg.ScanInterval == 0 {
		cfg.ScanInterval = time.Minute
	}
	if cfg.Lookahead == 0 {
		cfg.Lookahead = 24 * time.Hour
	}
	if cfg.JanitorInterval == 0 {
		cfg.JanitorInterval = 10 * time.Minute
	}
	if cfg.StaleFocusAfter == 0 {
		cfg.StaleFocusAfter = 6 * time.Hour
	}

	return &Worker{
		cfg:      cfg,
		db:       database,
		notif:    notifService,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scan and janitor loops
func (w *Worker) Start() {
	logger.Info().
		Dur("scanInterval", w.cfg.ScanInterval).
		Dur("lookahead", w.cfg.Lookahead).
		Msg("starting reminders worker")

	w.wg.Add(2)
	go w.scanLoop()
	go w.janitorLoop()
}

// Stop stops the worker and waits for the loops to exit
func (w *Worker) Stop() {
	close(w.stopChan)
	w.wg.Wait()
	logger.Info().Msg("reminders worker stopped")
}

func (w *Worker) scanLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.ScanInterval)
	defer ticker.Stop()

	// Run once at startup so restarts don't delay overdue reminders
	w.ScanOnce()

	for {
		select {
		case <-ticker.C:
			w.ScanOnce()
		case <-w.stopChan:
			return
		}
	}
}

// ScanOnce finds tasks due within the lookahead window and emits one
// reminder event per task
func (w *Worker) ScanOnce() {
	horizon := time.Now().Add(w.cfg.Lookahead).UnixMilli()

	tasks, err := w.db.TasksDueForReminder(horizon)
	if err != nil {
		logger.Error().Err(err).Msg("due-task scan failed")
		return
	}

	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}

		w.notif.NotifyReminderDue(t.UserID, t.ID, t.Title, *t.DueDate)

		if err := w.db.MarkTaskReminded(t.ID); err != nil {
			logger.Error().Err(err).Str("taskId", t.ID).Msg("failed to mark task reminded")
			continue
		}

		logger.Debug().
			Str("taskId", t.ID).
			Str("title", t.Title).
			Msg("reminder emitted")
	}

	if len(tasks) > 0 {
		logger.Info().Int("count", len(tasks)).Msg("reminders emitted")
	}
}

func (w *Worker) janitorLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.JanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.janitorOnce()
		case <-w.stopChan:
			return
		}
	}
}

func (w *Worker) janitorOnce() {
	if n, err := w.db.DeleteExpiredSessions(); err != nil {
		logger.Error().Err(err).Msg("expired session cleanup failed")
	} else if n > 0 {
		logger.Info().Int64("count", n).Msg("expired sessions deleted")
	}

	cutoff := time.Now().Add(-w.cfg.StaleFocusAfter).UnixMilli()
	if n, err := w.db.AbandonStaleFocusSessions(cutoff); err != nil {
		logger.Error().Err(err).Msg("stale focus session cleanup failed")
	} else if n > 0 {
		logger.Info().Int64("count", n).Msg("stale focus sessions abandoned")
	}
}
