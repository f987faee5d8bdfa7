package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/servex/v2"

	"github.com/onecommit/onecommit/internal/events"
	"github.com/onecommit/onecommit/internal/model"
)

const defaultCommitsLimit = 50

type errorResponse struct {
	Error string `json:"error"`
}

// handleEvents serves the event collection: create and list.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := servex.NewContext(w, r)

	switch r.Method {
	case http.MethodGet:
		list, err := s.service.List(r.Context())
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, list)

	case http.MethodPost:
		var in events.CreateEventInput
		if err := readJSON(ctx, &in); err != nil {
			ctx.BadRequest(err, "invalid request body")
			return
		}
		event, err := s.service.Create(r.Context(), in)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, event)

	default:
		s.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	}
}

// handleEvent serves one event and its sub-resources. Routes are parsed
// from the path suffix: /api/events/{id}[/action].
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	ctx := servex.NewContext(w, r)

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, eventsPrefix+"/"), "/")
	parts := strings.SplitN(rest, "/", 2)
	eventID := parts[0]
	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}
	if eventID == "" {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "event id is required"})
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		event, err := s.service.Get(r.Context(), eventID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, event)

	case action == "" && r.Method == http.MethodDelete:
		if err := s.service.Delete(r.Context(), eventID); err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})

	case action == "join" && r.Method == http.MethodPost:
		var in events.JoinInput
		if err := readJSON(ctx, &in); err != nil {
			ctx.BadRequest(err, "invalid request body")
			return
		}
		repo, err := s.service.Join(r.Context(), eventID, in)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, repo)

	case action == "start" && r.Method == http.MethodPost:
		event, err := s.service.Start(r.Context(), eventID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, event)

	case action == "finish" && r.Method == http.MethodPost:
		event, err := s.service.Finish(r.Context(), eventID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, event)

	case action == "cancel" && r.Method == http.MethodPost:
		event, err := s.service.Cancel(r.Context(), eventID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, event)

	case action == "sync" && r.Method == http.MethodPost:
		s.handleSync(ctx, w, r, eventID)

	case action == "leaderboard" && r.Method == http.MethodGet:
		scores, err := s.service.Leaderboard(r.Context(), eventID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, scores)

	case action == "commits" && r.Method == http.MethodGet:
		limit := defaultCommitsLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				limit = n
			}
		}
		commits, err := s.service.Commits(r.Context(), eventID, limit)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, commits)

	default:
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown route"})
	}
}

type syncRequest struct {
	GithubURL string `json:"github_url"`
}

// handleSync pulls missed commits for one registered repo from GitHub and
// runs them through regular intake.
func (s *Server) handleSync(ctx *servex.Context, w http.ResponseWriter, r *http.Request, eventID string) {
	var in syncRequest
	if err := readJSON(ctx, &in); err != nil {
		ctx.BadRequest(err, "invalid request body")
		return
	}

	event, err := s.service.Get(r.Context(), eventID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	repo, err := s.service.Repo(r.Context(), eventID, in.GithubURL)
	if err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.pipeline.Sync(r.Context(), event, repo)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// writeError maps domain errors to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errm.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errm.Is(err, events.ErrInvalidName),
		errm.Is(err, events.ErrInvalidDuration),
		errm.Is(err, events.ErrInvalidMaxParticipants),
		errm.Is(err, events.ErrInvalidRepoURL):
		status = http.StatusBadRequest
	case errm.Is(err, events.ErrEventNotWaiting),
		errm.Is(err, events.ErrEventNotRunning),
		errm.Is(err, events.ErrEventRunning),
		errm.Is(err, events.ErrEventFull),
		errm.Is(err, events.ErrAlreadyJoined),
		errm.Is(err, events.ErrRepoTaken),
		errm.Is(err, events.ErrNoParticipants),
		errm.Is(err, model.ErrScoreLocked),
		errm.Is(err, model.ErrDuplicate):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func readJSON(ctx *servex.Context, v any) error {
	body, err := ctx.Read()
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}
