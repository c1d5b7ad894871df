package jury

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Decider produces this node's local judgment for a request. The engine is
// agnostic about where the judgment comes from; in production it is the
// inference daemon, in tests a scripted fake.
type Decider interface {
	Decide(kind, payload, reqContext string) Decision
}

// JudgeClient is the slice of the daemon client a ServiceDecider needs.
type JudgeClient interface {
	// Ready reports whether the daemon can serve judgments right now.
	Ready() bool

	// Judge asks the daemon whether a statement is valid.
	Judge(ctx context.Context, statement string) (valid bool, confidence float64, raw string, err error)
}

// ServiceDecider judges requests through the inference daemon. When the
// daemon is unreachable or not ready it does not block the round: it votes
// valid at rock-bottom confidence so that healthy peers decide the outcome.
type ServiceDecider struct {
	client  JudgeClient
	timeout time.Duration
	log     zerolog.Logger
}

// NewServiceDecider creates a ServiceDecider. timeout bounds each judgment
// call.
func NewServiceDecider(client JudgeClient, timeout time.Duration, log zerolog.Logger) *ServiceDecider {
	return &ServiceDecider{client: client, timeout: timeout, log: log}
}

// Decide implements Decider.
func (d *ServiceDecider) Decide(kind, payload, reqContext string) Decision {
	if !d.client.Ready() {
		d.log.Warn().Str("kind", kind).Msg("inference daemon not ready, voting valid at low confidence")
		return Decision{Valid: true, Confidence: 0.1, Reason: "inference service not ready"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	valid, confidence, raw, err := d.client.Judge(ctx, payload)
	if err != nil {
		d.log.Warn().Err(err).Str("kind", kind).Msg("judgment call failed, voting valid at low confidence")
		return Decision{Valid: true, Confidence: 0.1, Reason: "inference service unavailable"}
	}
	return Decision{Valid: valid, Confidence: confidence, Reason: raw}
}

// FakeDecider returns a fixed Decision and records every call. Exported so
// other packages can wire engines without a live daemon.
type FakeDecider struct {
	Decision Decision

	mu    sync.Mutex
	calls []string
}

// NewFakeDecider creates a FakeDecider returning the given decision.
func NewFakeDecider(d Decision) *FakeDecider {
	return &FakeDecider{Decision: d}
}

// Decide implements Decider.
func (f *FakeDecider) Decide(kind, payload, reqContext string) Decision {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, payload)
	return f.Decision
}

// Calls returns the payloads judged so far.
func (f *FakeDecider) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
