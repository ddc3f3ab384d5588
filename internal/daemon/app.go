// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Task is a background loop owned by the App. It must return when ctx is done.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// App owns the long-lived background tasks and delegates server management
// to Manager.
type App struct {
	logger  zerolog.Logger
	manager Manager
	tasks   []Task
}

// NewApp creates a new App orchestrator.
func NewApp(logger zerolog.Logger, manager Manager, tasks ...Task) *App {
	return &App{logger: logger, manager: manager, tasks: tasks}
}

// Run starts the tasks and the manager and blocks until ctx is cancelled or
// the manager fails. Tasks are cancelled once the manager returns.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, gctx := errgroup.WithContext(ctx)
	taskCtx, cancelTasks := context.WithCancel(gctx)
	defer cancelTasks()

	for _, t := range a.tasks {
		g.Go(func() error {
			a.logger.Debug().Str("task", t.Name).Msg("background task started")
			if err := t.Run(taskCtx); err != nil && taskCtx.Err() == nil {
				// Task failures are logged; serving continues.
				a.logger.Error().Err(err).Str("task", t.Name).Str("event", "task.failed").Msg("background task failed")
			}
			return nil
		})
	}

	g.Go(func() error {
		defer cancelTasks()
		return a.manager.Start(ctx)
	})

	return g.Wait()
}
