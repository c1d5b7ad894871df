package daemon

import (
	"context"
	"fmt"
	"sync"

	"github.com/jurybox/jurybox/internal/inference"
	"github.com/rs/zerolog"
)

// Session readiness states reported by ping.
const (
	StatusLoading = "loading"
	StatusReady   = "ready"
	StatusError   = "error"
)

// conversation is the single persistent generation context: the continuation
// tokens of the primed exchange plus a cursor for observability.
type conversation struct {
	tokens []int
	cursor int
}

// Session owns the resident model and at most one conversation context.
//
// Readiness is latched: loading until the one-time load finishes, then
// permanently ready, or permanently error if the load failed. The
// conversation is guarded by a mutex so continuation calls are serialized;
// stateless generations run concurrently on independent per-call contexts.
type Session struct {
	engine inference.Engine
	cfg    Config
	log    zerolog.Logger

	stateMu sync.Mutex
	loading bool
	loaded  bool
	loadErr string

	convMu sync.Mutex
	conv   *conversation
}

// NewSession creates a Session over the given engine. Call LoadAsync once to
// begin making the model resident.
func NewSession(engine inference.Engine, cfg Config, log zerolog.Logger) *Session {
	return &Session{engine: engine, cfg: cfg, log: log}
}

// LoadAsync starts the one-time model load in the background. Subsequent
// calls are no-ops.
func (s *Session) LoadAsync(ctx context.Context) {
	s.stateMu.Lock()
	if s.loading || s.loaded || s.loadErr != "" {
		s.stateMu.Unlock()
		return
	}
	s.loading = true
	s.stateMu.Unlock()

	go func() {
		err := s.engine.Load(ctx)

		s.stateMu.Lock()
		defer s.stateMu.Unlock()
		s.loading = false
		if err != nil {
			// Terminal: readiness never recovers without a process restart.
			s.loadErr = err.Error()
			s.log.Error().Err(err).Msg("model load failed")
			return
		}
		s.loaded = true
		s.log.Info().Msg("model loaded and ready")
	}()
}

// Status reports readiness with the latched precedence rule: ready once
// loaded, error only when loading has stopped without success, otherwise
// loading regardless of elapsed time.
func (s *Session) Status() PingResponse {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	resp := PingResponse{
		ModelLoaded:  s.loaded,
		ModelLoading: s.loading,
		Error:        s.loadErr,
	}
	switch {
	case s.loaded:
		resp.Status = StatusReady
	case !s.loading && s.loadErr != "":
		resp.Status = StatusError
	default:
		resp.Status = StatusLoading
	}
	return resp
}

// Validate runs the bounded binary judgment for a statement.
func (s *Session) Validate(ctx context.Context, statement string) (ValidateResponse, error) {
	if statement == "" {
		return ValidateResponse{}, fmt.Errorf("no statement provided for validation")
	}

	res, err := s.engine.Generate(ctx, inference.Request{
		Prompt:      validatePrompt(statement),
		MaxTokens:   s.cfg.ValidateMaxTokens,
		MaxBytes:    s.cfg.ValidateMaxBytes,
		Stop:        validateStopKeywords,
		Temperature: 0.01,
		TopK:        2,
	})
	if err != nil && (res == nil || res.Text == "") {
		return ValidateResponse{}, fmt.Errorf("validation generation failed: %w", err)
	}
	if err != nil {
		// Degraded: classify whatever was produced before the failure.
		s.log.Warn().Err(err).Msg("validation generation aborted; classifying partial output")
	}

	valid, confidence := Classify(res.Text)
	return ValidateResponse{Valid: valid, Confidence: confidence, RawResponse: res.Text}, nil
}

// CreateWorld generates long-form world text against the fixed template.
func (s *Session) CreateWorld(ctx context.Context, prompt string) (CreateResponse, error) {
	if prompt == "" {
		return CreateResponse{}, fmt.Errorf("no prompt provided for world creation")
	}

	res, err := s.engine.Generate(ctx, inference.Request{
		Prompt:      createPrompt(prompt),
		MaxTokens:   s.cfg.WorldMaxTokens,
		Temperature: 0.3,
		TopK:        20,
		TopP:        0.7,
	})
	if err != nil && (res == nil || res.Text == "") {
		return CreateResponse{}, fmt.Errorf("world generation failed: %w", err)
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("world generation aborted; returning partial output")
	}
	return CreateResponse{Text: res.Text}, nil
}

// Advance processes a player action and returns the updated state block.
//
// Continuation mode requires a primed conversation; any continuation failure
// falls back to initial mode for this one call instead of erroring out.
// Initial mode generates against a fresh context and, when continuation was
// requested, primes the conversation from the completed exchange so future
// turns can skip re-sending the world.
func (s *Session) Advance(ctx context.Context, action, priorState, world string, cont bool) (AdvanceResponse, error) {
	if action == "" {
		return AdvanceResponse{}, fmt.Errorf("no action provided")
	}

	if cont {
		resp, err := s.advanceContinuation(ctx, action)
		if err == nil {
			return resp, nil
		}
		s.log.Warn().Err(err).Msg("continuation failed; falling back to initial mode")
	}

	return s.advanceInitial(ctx, action, priorState, world, cont)
}

// advanceInitial runs the full-prompt generation on a fresh context and, when
// requested, primes the conversation from the result.
func (s *Session) advanceInitial(ctx context.Context, action, priorState, world string, prime bool) (AdvanceResponse, error) {
	res, err := s.engine.Generate(ctx, inference.Request{
		Prompt:      advancePrompt(action, priorState, world),
		MaxTokens:   s.cfg.StateMaxTokens,
		Temperature: 0.3,
		TopK:        20,
		TopP:        0.7,
	})
	if err != nil && (res == nil || res.Text == "") {
		return AdvanceResponse{}, fmt.Errorf("state generation failed: %w", err)
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("state generation aborted; returning partial output")
	}

	if prime {
		s.convMu.Lock()
		if len(res.Context) > 0 {
			s.conv = &conversation{tokens: res.Context, cursor: len(res.Context)}
			s.log.Info().Int("cursor", len(res.Context)).Msg("conversation context primed")
		} else {
			// Loud invalidation rather than silently degrading: the next
			// continuation call will fall back and re-prime.
			s.conv = nil
			s.log.Error().Msg("conversation priming failed: no continuation state from engine")
		}
		s.convMu.Unlock()
	}

	state, ok := ExtractState(res.Text)
	return AdvanceResponse{State: state, Mode: ModeInitial, Degraded: !ok}, nil
}

// advanceContinuation appends the action at the conversation cursor and
// generates in place.
func (s *Session) advanceContinuation(ctx context.Context, action string) (AdvanceResponse, error) {
	s.convMu.Lock()
	defer s.convMu.Unlock()

	if s.conv == nil {
		return AdvanceResponse{}, fmt.Errorf("no active conversation context")
	}

	res, err := s.engine.Generate(ctx, inference.Request{
		Prompt:      continuePrompt(action),
		MaxTokens:   s.cfg.StateMaxTokens,
		Context:     s.conv.tokens,
		Temperature: 0.8,
		TopK:        40,
		TopP:        0.9,
	})
	if err != nil {
		s.conv = nil
		return AdvanceResponse{}, fmt.Errorf("continuation generation failed: %w", err)
	}
	if len(res.Context) == 0 {
		s.conv = nil
		return AdvanceResponse{}, fmt.Errorf("continuation lost conversation state")
	}

	s.conv.tokens = res.Context
	s.conv.cursor = len(res.Context)

	state, ok := ExtractState(res.Text)
	return AdvanceResponse{State: state, Mode: ModeContinuation, Degraded: !ok}, nil
}

// ResetConversation tears down the conversation context. Continuation calls
// fall back to initial mode until re-primed.
func (s *Session) ResetConversation() ResetResponse {
	s.convMu.Lock()
	defer s.convMu.Unlock()
	s.conv = nil
	s.log.Info().Msg("conversation context reset")
	return ResetResponse{Status: "conversation_reset"}
}

// ConversationActive reports whether a primed conversation exists.
func (s *Session) ConversationActive() bool {
	s.convMu.Lock()
	defer s.convMu.Unlock()
	return s.conv != nil
}

// ConversationCursor returns the current cursor, 0 when inactive.
func (s *Session) ConversationCursor() int {
	s.convMu.Lock()
	defer s.convMu.Unlock()
	if s.conv == nil {
		return 0
	}
	return s.conv.cursor
}
