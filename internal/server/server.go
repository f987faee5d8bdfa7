// Package server exposes the webhook endpoint and the event management API.
package server

import (
	"context"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/servex/v2"

	"github.com/onecommit/onecommit/internal/config"
	"github.com/onecommit/onecommit/internal/events"
	"github.com/onecommit/onecommit/internal/model"
	"github.com/onecommit/onecommit/internal/pipeline"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const eventsPrefix = "/api/events"

// Server handles GitHub webhook deliveries and the event API.
type Server struct {
	host     model.CodeHost
	service  *events.Service
	pipeline *pipeline.Pipeline
	config   config.ServerConfig
	log      logze.Logger
	server   *servex.Server
}

// New creates the HTTP server with all routes registered.
func New(cfg config.ServerConfig, host model.CodeHost, service *events.Service, pl *pipeline.Pipeline) (*Server, error) {
	log := logze.With("component", "server")

	server, err := servex.NewServer(
		servex.WithReadTimeout(cfg.Timeout),
		servex.WithIdleTimeout(cfg.Timeout*2),
		servex.WithLogger(log),
		servex.WithHealthEndpoint(),
		servex.WithDefaultMetrics(),
	)
	if err != nil {
		return nil, erro.Wrap(err, "failed to create server")
	}

	s := &Server{
		host:     host,
		service:  service,
		pipeline: pl,
		config:   cfg,
		log:      log,
		server:   server,
	}

	server.HandleFunc(cfg.WebhookEndpoint, s.handleWebhook)
	server.HandleFunc(eventsPrefix, s.handleEvents)
	server.HandleFunc(eventsPrefix+"/", s.handleEvent)

	return s, nil
}

// Start starts listening on the configured address.
func (s *Server) Start(ctx context.Context) error {
	return s.server.StartHTTP(s.config.Address)
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// handleWebhook receives GitHub webhook deliveries. Ping events answer
// immediately, push events run through the commit pipeline.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := servex.NewContext(w, r)

	body, err := ctx.Read()
	if err != nil {
		ctx.BadRequest(err, "failed to read webhook body")
		return
	}

	signature := r.Header.Get("X-Hub-Signature-256")
	if err := s.host.ValidateWebhook(body, signature); err != nil {
		ctx.Unauthorized(err, "webhook validation failed")
		return
	}

	eventType := model.WebhookEventType(r.Header.Get("X-GitHub-Event"))
	switch eventType {
	case model.WebhookPing:
		ctx.Response(http.StatusOK)
		return
	case model.WebhookPush:
	default:
		s.log.Debug("ignoring webhook event", "type", string(eventType))
		ctx.Response(http.StatusOK)
		return
	}

	push, err := s.host.ParsePushEvent(body)
	if err != nil {
		ctx.BadRequest(err, "failed to parse push event")
		return
	}

	s.log.Info("received push", "repo", push.RepoFullName, "commits", len(push.Commits))

	res, err := s.pipeline.ProcessPush(ctx, push)
	if err != nil {
		ctx.InternalServerError(err, "failed to process push")
		return
	}

	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to write response", "error", err)
	}
}
