package main

import (
	"fmt"
	"log/slog"

	"modelarena/internal/arena"
	"modelarena/internal/chat"
	"modelarena/internal/config"
	"modelarena/internal/db"
	"modelarena/internal/events"
	"modelarena/internal/models"
	"modelarena/internal/orchestrator"
	"modelarena/internal/rating"
)

// app is the wired set of services shared by every command.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	catalog *models.Registry
	orch    *orchestrator.Orchestrator
	ladder  *rating.Ladder
	session *chat.Session
	arena   *arena.Arena
	store   *db.Store       // nil when storage is disabled
	webhook *events.Webhook // nil without events.webhook_url
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	a.catalog = models.NewRegistry(models.Builtin(), models.WithDelayScale(cfg.Simulation.DelayScale))
	a.orch = orchestrator.New(a.catalog, cfg.Simulation.Timeout).
		WithLogger(logger).
		WithSimOptions(models.WithDelayScale(cfg.Simulation.DelayScale))
	a.ladder = rating.NewLadder(rating.BuiltinRatings(),
		rating.WithK(cfg.Ratings.KFactor),
		rating.WithDefault(cfg.Ratings.Default),
		rating.Strict(cfg.Ratings.Strict))

	sessionOpts := []chat.Option{
		chat.WithLogger(logger),
		chat.WithDefaultModels(cfg.Defaults.Models...),
	}
	arenaOpts := []arena.Option{
		arena.WithLogger(logger),
		arena.WithHistory(cfg.Arena.HistorySize),
	}

	if cfg.Events.WebhookURL != "" {
		a.webhook = events.NewWebhook(cfg.Events.WebhookURL, logger)
		arenaOpts = append(arenaOpts, arena.WithNotifier(a.webhook))
	}

	if cfg.Storage.Enabled {
		store, err := db.Open(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		a.store = store
		sessionOpts = append(sessionOpts, chat.WithStore(store))
		arenaOpts = append(arenaOpts, arena.WithStore(store))
	}

	a.session = chat.NewSession(a.catalog, a.orch, sessionOpts...)
	a.arena = arena.New(a.catalog, a.orch, a.ladder, arenaOpts...)

	if a.store != nil {
		if err := a.restore(); err != nil {
			a.close()
			return nil, err
		}
	}
	return a, nil
}

// restore loads saved conversations and, when enabled, replays stored votes
// into the ladder.
func (a *app) restore() error {
	convs, err := a.store.Conversations()
	if err != nil {
		return fmt.Errorf("load conversations: %w", err)
	}
	a.session.Restore(convs)

	if !a.cfg.Ratings.ReplayVotes {
		return nil
	}
	outcomes, err := a.store.Outcomes()
	if err != nil {
		return fmt.Errorf("load votes: %w", err)
	}
	for _, o := range outcomes {
		if _, err := a.ladder.Record(o); err != nil {
			a.logger.Warn("skipping stored vote",
				slog.String("winner", o.WinnerID),
				slog.String("loser", o.LoserID),
				slog.Any("error", err))
		}
	}
	a.logger.Info("ratings restored", slog.Int("votes", a.ladder.Recorded()))
	return nil
}

// close waits for pending webhook deliveries, then closes storage.
func (a *app) close() {
	if a.webhook != nil {
		a.webhook.Wait()
	}
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing storage", slog.Any("error", err))
	}
}
