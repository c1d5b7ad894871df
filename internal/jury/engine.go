package jury

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds the fixed parameters of one jury node.
type Config struct {
	// JurorID identifies this node's votes. Empty generates a random id.
	JurorID string

	// PeerCount is the size of the fixed peer set; a request resolves once
	// that many votes have been ingested.
	PeerCount int

	// CountSelfVote, when true, ingests the node's own vote locally at
	// submit time. Leave false when the peer transport loops broadcasts
	// back to the sender, or each vote would be counted twice.
	CountSelfVote bool

	// ReceiveTimeout bounds each peer-channel poll in Pump. Defaults to
	// 100ms.
	ReceiveTimeout time.Duration
}

// Request is a caller-submitted judgment request. The payload and context
// round-trip through the engine to the result callback so the caller can act
// on the outcome.
type Request struct {
	ID      int
	Kind    string
	Payload string
	Context string
}

// requestState tracks one request from Open to Resolved. Entries are never
// evicted mid-round; identifiers must not be reused within a round.
type requestState struct {
	original Request

	received      int
	tally         [2]int
	confidenceSum [2]float64

	resolved bool
	verdict  Verdict
	done     chan struct{}
}

// Engine is one node's consensus engine. Each instance owns its request
// store; nothing is process-global, so tests run many engines side by side.
type Engine struct {
	cfg     Config
	decider Decider
	peers   PeerChannel
	log     zerolog.Logger

	// onResult is invoked exactly once per request, at resolution, with the
	// original request and the verdict.
	onResult func(Request, Verdict)

	mu       sync.Mutex
	requests map[int]*requestState
}

// New creates an Engine. onResult may be nil.
func New(cfg Config, decider Decider, peers PeerChannel, log zerolog.Logger, onResult func(Request, Verdict)) *Engine {
	if cfg.JurorID == "" {
		cfg.JurorID = generateJurorID()
	}
	if cfg.ReceiveTimeout <= 0 {
		cfg.ReceiveTimeout = 100 * time.Millisecond
	}
	return &Engine{
		cfg:      cfg,
		decider:  decider,
		peers:    peers,
		log:      log,
		onResult: onResult,
		requests: make(map[int]*requestState),
	}
}

// JurorID returns this node's juror identity.
func (e *Engine) JurorID() string { return e.cfg.JurorID }

// Submit obtains the local judgment for a request, records the request as
// Open, and broadcasts this node's vote. It returns immediately; resolution
// happens as peer votes are ingested.
func (e *Engine) Submit(req Request) (*Vote, error) {
	decision := e.decider.Decide(req.Kind, req.Payload, req.Context)

	vote := &Vote{
		RequestID:  req.ID,
		Valid:      decision.Valid,
		Confidence: decision.Confidence,
		Reason:     decision.Reason,
		JurorID:    e.cfg.JurorID,
		Context:    req.Context,
	}
	data, err := EncodeVote(vote)
	if err != nil {
		return nil, fmt.Errorf("encoding local vote: %w", err)
	}

	e.mu.Lock()
	if _, exists := e.requests[req.ID]; exists {
		e.mu.Unlock()
		return nil, fmt.Errorf("request id %d already submitted this round", req.ID)
	}
	e.requests[req.ID] = &requestState{
		original: req,
		done:     make(chan struct{}),
	}
	e.mu.Unlock()

	// State exists before the broadcast so a loopback delivery always finds
	// its request.
	if err := e.peers.Broadcast(data); err != nil {
		return nil, fmt.Errorf("broadcasting vote: %w", err)
	}
	e.log.Info().Int("request", req.ID).Bool("valid", vote.Valid).
		Float64("confidence", vote.Confidence).Msg("vote broadcast")

	if e.cfg.CountSelfVote {
		e.IngestVote(data)
	}
	return vote, nil
}

// IngestVote tallies one received vote. Votes for unknown or already
// resolved requests are logged and dropped; they never mutate state or
// escalate. Once the peer-count-th vote arrives the request resolves exactly
// once: strict majority of valid votes (a tie is invalid) and the arithmetic
// mean of all ingested confidences.
func (e *Engine) IngestVote(data []byte) {
	vote, err := DecodeVote(data)
	if err != nil {
		e.log.Warn().Err(err).Msg("dropping malformed vote")
		return
	}

	e.mu.Lock()
	state, ok := e.requests[vote.RequestID]
	if !ok {
		e.mu.Unlock()
		e.log.Warn().Int("request", vote.RequestID).Str("juror", vote.JurorID).
			Msg("dropping vote for unknown request")
		return
	}
	if state.resolved {
		e.mu.Unlock()
		e.log.Warn().Int("request", vote.RequestID).Str("juror", vote.JurorID).
			Msg("dropping vote for resolved request")
		return
	}

	idx := 0
	if vote.Valid {
		idx = 1
	}
	state.received++
	state.tally[idx]++
	state.confidenceSum[idx] += vote.Confidence

	e.log.Debug().Int("request", vote.RequestID).Str("juror", vote.JurorID).
		Int("received", state.received).Int("peers", e.cfg.PeerCount).Msg("vote ingested")

	if state.received < e.cfg.PeerCount {
		e.mu.Unlock()
		return
	}

	validVotes := state.tally[1]
	invalidVotes := state.tally[0]
	state.verdict = Verdict{
		RequestID:     vote.RequestID,
		MajorityValid: validVotes > invalidVotes,
		AvgConfidence: (state.confidenceSum[0] + state.confidenceSum[1]) / float64(state.received),
		ValidVotes:    validVotes,
		InvalidVotes:  invalidVotes,
		TotalVotes:    state.received,
	}
	state.resolved = true
	close(state.done)
	original, verdict := state.original, state.verdict
	e.mu.Unlock()

	e.log.Info().Int("request", verdict.RequestID).Bool("majorityValid", verdict.MajorityValid).
		Int("valid", verdict.ValidVotes).Int("total", verdict.TotalVotes).Msg("consensus reached")

	if e.onResult != nil {
		e.onResult(original, verdict)
	}
}

// IsResolved reports whether a request has resolved. An id the engine has no
// record of counts as resolved: callers must never block on a request the
// engine lost track of.
func (e *Engine) IsResolved(id int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	state, ok := e.requests[id]
	if !ok {
		return true
	}
	return state.resolved
}

// VerdictFor returns the verdict for a resolved request.
func (e *Engine) VerdictFor(id int) (Verdict, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	state, ok := e.requests[id]
	if !ok || !state.resolved {
		return Verdict{}, false
	}
	return state.verdict, true
}

// Wait blocks until the request resolves or ctx expires. An abandoned
// request leaves its state allocated but inert; state lifetime is bounded by
// the round.
func (e *Engine) Wait(ctx context.Context, id int) (Verdict, error) {
	e.mu.Lock()
	state, ok := e.requests[id]
	e.mu.Unlock()
	if !ok {
		return Verdict{}, fmt.Errorf("unknown request id %d", id)
	}

	select {
	case <-state.done:
		e.mu.Lock()
		defer e.mu.Unlock()
		return state.verdict, nil
	case <-ctx.Done():
		return Verdict{}, ctx.Err()
	}
}

// Pump drives the peer channel for a request: receive with a bounded
// timeout, ingest, repeat until the request resolves or ctx expires. For
// transports that only offer polling this is the message loop; Wait stays
// event-driven on top of it.
func (e *Engine) Pump(ctx context.Context, id int) {
	for {
		if e.IsResolved(id) || ctx.Err() != nil {
			return
		}
		if data, ok := e.peers.Receive(e.cfg.ReceiveTimeout); ok {
			e.IngestVote(data)
		}
	}
}

// generateJurorID returns a random juror identity in the jury_NNNNNN form.
func generateJurorID() string {
	return fmt.Sprintf("jury_%06d", 100000+rand.Intn(900000)) //nolint:gosec // identity, not secret
}
