// Package app wires storage, the GitHub provider, the classifier, the
// commit pipeline and the HTTP server into one running service.
package app

import (
	"context"

	"github.com/maxbolgarin/contem"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"

	"github.com/onecommit/onecommit/internal/classifier"
	"github.com/onecommit/onecommit/internal/config"
	"github.com/onecommit/onecommit/internal/events"
	"github.com/onecommit/onecommit/internal/model"
	"github.com/onecommit/onecommit/internal/notify"
	"github.com/onecommit/onecommit/internal/pipeline"
	"github.com/onecommit/onecommit/internal/provider/github"
	"github.com/onecommit/onecommit/internal/scoring"
	"github.com/onecommit/onecommit/internal/server"
	"github.com/onecommit/onecommit/internal/storage"
)

// OneCommit is the main service that orchestrates all components.
type OneCommit struct {
	storage  model.Storage
	host     model.CodeHost
	notifier model.Notifier
	pipeline *pipeline.Pipeline
	service  *events.Service
	watcher  *events.Watcher
	server   *server.Server

	cfg config.Config
	log logze.Logger
}

// New creates the service with every component initialized and shutdown
// hooks registered on the context.
func New(ctx contem.Context, cfg config.Config) (*OneCommit, error) {
	service := &OneCommit{
		cfg: cfg,
		log: logze.With("component", "app"),
	}

	if err := service.init(ctx, cfg); err != nil {
		return nil, errm.Wrap(err, "failed to initialize service")
	}

	return service, nil
}

// Start launches the expiry watcher and the HTTP server. It returns after
// the server starts listening.
func (s *OneCommit) Start(ctx context.Context) error {
	go s.watcher.Run(ctx)

	if err := s.server.Start(ctx); err != nil {
		return errm.Wrap(err, "failed to start server")
	}

	s.log.Info("service started", "address", s.cfg.Server.Address)
	return nil
}

func (s *OneCommit) init(ctx contem.Context, cfg config.Config) (err error) {
	switch cfg.Storage.Type {
	case config.StorageMemory:
		s.storage = storage.NewMemory()
	default:
		s.storage, err = storage.NewMongo(ctx, cfg.Storage)
		if err != nil {
			return errm.Wrap(err, "failed to connect storage")
		}
	}
	ctx.Add(s.storage.Close)

	s.host, err = github.New(cfg.Github)
	if err != nil {
		return errm.Wrap(err, "failed to create github provider")
	}

	cls, err := classifier.New(ctx, cfg.Classifier)
	if err != nil {
		return errm.Wrap(err, "failed to create classifier")
	}

	if cfg.Discord.Token != "" {
		discord, err := notify.NewDiscord(cfg.Discord)
		if err != nil {
			return errm.Wrap(err, "failed to connect discord")
		}
		ctx.Add(func(context.Context) error { return discord.Close() })
		s.notifier = discord
	} else {
		s.notifier = notify.Noop{}
	}

	agg := scoring.NewAggregator(s.storage)

	s.pipeline, err = pipeline.New(cfg.Pipeline, s.storage, s.host, cls, agg, s.notifier)
	if err != nil {
		return errm.Wrap(err, "failed to create pipeline")
	}
	ctx.Add(func(context.Context) error {
		s.pipeline.Close()
		return nil
	})

	s.service = events.NewService(s.storage, s.host, agg, s.notifier, cfg.Github.WebhookURL)
	s.watcher = events.NewWatcher(s.storage, s.service, cfg.Watcher.Interval)

	s.server, err = server.New(cfg.Server, s.host, s.service, s.pipeline)
	if err != nil {
		return errm.Wrap(err, "failed to create server")
	}
	ctx.Add(s.server.Stop)

	return nil
}
