package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rpggio/codepad/internal/clock"
	"github.com/rpggio/codepad/internal/config"
	"github.com/rpggio/codepad/internal/domain/activity"
	"github.com/rpggio/codepad/internal/domain/assistant"
	"github.com/rpggio/codepad/internal/domain/project"
	"github.com/rpggio/codepad/internal/domain/workspace"
	"github.com/rpggio/codepad/internal/filestore"
	"github.com/rpggio/codepad/internal/mcp"
	"github.com/rpggio/codepad/internal/sqlite"
)

// app holds the services behind one command table.
type app struct {
	handler   *mcp.Handler
	workspace *workspace.Service
	db        *sqlite.DB
}

// newApp opens storage, restores the workspace and builds the command
// table. onMessage, when set, observes every transcript append.
func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger, onMessage func(assistant.Message)) (*app, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := ensureDir(cfg.Storage.Path); err != nil {
		return nil, fmt.Errorf("preparing storage path: %w", err)
	}

	a := &app{}
	var repo project.Repository
	var activitySvc mcp.ActivityService
	var wsOpts []workspace.Option

	switch cfg.Storage.Driver {
	case config.DriverFile:
		repo = filestore.NewProjectRepository(cfg.Storage.Path, cfg.Storage.Key, logger)
	default:
		db, err := sqlite.New(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		if err := db.RunMigrations(); err != nil {
			db.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		a.db = db
		repo = sqlite.NewProjectRepository(db, cfg.Storage.Key, logger)
		journal := activity.NewService(sqlite.NewActivityRepository(db), logger)
		activitySvc = journal
		wsOpts = append(wsOpts, workspace.WithActivity(journal))
	}

	ids := project.UUIDs()
	if cfg.IDs.Scheme == config.IDSchemeTimestamp {
		ids = project.Timestamps(clock.Real())
	}
	store := project.NewService(repo, logger, project.WithIDs(ids))

	wsOpts = append(wsOpts, workspace.WithResetOnProjectSwitch(cfg.Workspace.ResetOnProjectSwitch))
	a.workspace = workspace.NewService(store, logger, wsOpts...)
	a.workspace.Subscribe(func(ev workspace.Event) {
		logger.Debug("workspace event", "type", ev.Type, "project_id", ev.ProjectID, "file_id", ev.FileID)
	})
	if opened := a.workspace.Restore(ctx); opened != nil {
		logger.Info("workspace restored", "project", opened.Name, "projects", len(store.Projects()))
	}

	asstOpts := []assistant.Option{
		assistant.WithReplyDelay(cfg.Assistant.ReplyDelay),
		assistant.WithVisible(cfg.Assistant.Visible),
	}
	if onMessage != nil {
		asstOpts = append(asstOpts, assistant.WithOnMessage(onMessage))
	}
	asst := assistant.NewService(logger, asstOpts...)

	a.handler = mcp.NewHandler(a.workspace, asst, activitySvc, logger)
	return a, nil
}

func (a *app) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
