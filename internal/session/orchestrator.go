package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/taratriia/market-analyzer/internal/collector"
	"github.com/taratriia/market-analyzer/internal/config"
	"github.com/taratriia/market-analyzer/internal/domain"
	"github.com/taratriia/market-analyzer/internal/summarizer"
)

type state string

const (
	stateAwaitingStart state = "awaiting_start"
	stateValidating    state = "validating"
	stateCollecting    state = "collecting"
	stateSummarizing   state = "summarizing"
	stateDone          state = "done"
	stateFailed        state = "failed"
	stateTerminated    state = "terminated"
)

// Collaborators hands out the process-wide external clients.
type Collaborators interface {
	Source() (domain.Source, error)
	Completer() (domain.Completer, error)
}

// Orchestrator sequences one session per Run call: start request, collection,
// summarization, final data. Shared across sessions; all mutable state is
// local to Run.
type Orchestrator struct {
	cfg     config.Config
	clients Collaborators
	logger  *slog.Logger
}

func NewOrchestrator(cfg config.Config, clients Collaborators, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{cfg: cfg, clients: clients, logger: logger}
}

// Run drives the session to a terminal state. It never panics outward: an
// unexpected failure is logged in full and reported as a generic error so
// one broken session cannot take down its siblings.
func (o *Orchestrator) Run(ctx context.Context, t Transport) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("session panic", "panic", r, "stack", string(debug.Stack()))
			_ = t.Send(domain.ErrorEvent("Internal server error."))
		}
	}()

	final := o.run(ctx, t)
	o.logger.Info("session finished", "state", string(final))
}

func (o *Orchestrator) run(ctx context.Context, t Transport) state {
	st := stateAwaitingStart
	step := func(next state) {
		st = next
		o.logger.Debug("session state", "state", string(st))
	}

	raw, err := t.ReadMessage()
	if err != nil {
		return stateTerminated
	}

	step(stateValidating)
	var req domain.SearchRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		o.logger.Error("start message is not valid JSON", "error", err)
		o.send(t, domain.ErrorEvent("Initial message must be valid JSON."))
		return stateFailed
	}
	if req.Action != "start" || strings.TrimSpace(req.Term) == "" {
		o.send(t, domain.ErrorEvent(`Invalid initial message. Send {"action": "start", "term": "your_term"}.`))
		return stateFailed
	}
	o.logger.Info("starting analysis", "term", req.Term)

	if err := t.Send(domain.StatusEvent("Initializing...")); err != nil {
		return stateTerminated
	}

	source, err := o.clients.Source()
	if err != nil {
		o.logger.Error("reddit client init failed", "error", err)
		o.send(t, domain.ErrorEvent("Failed to connect to Reddit. Check the credentials."))
		return stateFailed
	}
	completer, err := o.clients.Completer()
	if err != nil {
		o.logger.Error("openrouter client init failed", "error", err)
		o.send(t, domain.ErrorEvent("Failed to connect to OpenRouter. Check the API key."))
		return stateFailed
	}

	// Watch for a peer disconnect while collaborator work is in flight. The
	// pump is the sole reader after the start frame; it exits once the
	// connection errors, which the deferred close in the handler guarantees.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		for {
			if _, err := t.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	emit := func(ev domain.Event) error {
		if ctx.Err() != nil {
			return ErrPeerClosed
		}
		return t.Send(ev)
	}

	step(stateCollecting)
	col := collector.New(source, collector.Limits{
		PostsLimit:  o.cfg.SearchLimitPosts,
		SortOrder:   o.cfg.SortPostsBy,
		TotalTarget: o.cfg.TotalCommentsTarget,
		MaxPerPost:  o.cfg.MaxCommentsPerPost,
		MinWords:    o.cfg.MinCommentWords,
		MinScore:    o.cfg.MinCommentScore,
	}, o.logger)

	collected, err := col.Collect(ctx, req.Term, emit)
	if err != nil {
		if peerGone(err) {
			return stateTerminated
		}
		o.logger.Error("collection failed", "term", req.Term, "error", err)
		o.send(t, domain.ErrorEvent(fmt.Sprintf("Reddit error: %v", err)))
		return stateFailed
	}

	if err := emit(domain.StatusEvent(fmt.Sprintf("Collection finished. %d valid comments found.", len(collected)))); err != nil {
		return stateTerminated
	}

	step(stateSummarizing)
	sum := summarizer.New(completer, o.cfg.AIModel, o.cfg.MaxInputChars, o.logger)
	if err := sum.Summarize(ctx, collected, req.Term, emit); err != nil {
		if peerGone(err) {
			return stateTerminated
		}
		// Collection results are never discarded because summarization broke.
		o.logger.Error("summarization failed", "term", req.Term, "error", err)
		if err := emit(domain.ErrorEvent(fmt.Sprintf("AI analysis error: %v", err))); err != nil {
			return stateTerminated
		}
	}

	if err := emit(domain.FinalDataEvent(collected)); err != nil {
		return stateTerminated
	}
	step(stateDone)
	return st
}

// send delivers an event on a best-effort basis; a failure only means the
// peer is already gone.
func (o *Orchestrator) send(t Transport, ev domain.Event) {
	_ = t.Send(ev)
}

func peerGone(err error) bool {
	return errors.Is(err, ErrPeerClosed) || errors.Is(err, context.Canceled)
}
