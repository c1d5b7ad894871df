// Package client is the caller side of the daemon protocol: one short-lived
// loopback connection per call, a JSON request out, a JSON response back.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/jurybox/jurybox/internal/daemon"
)

// Readiness is the caller's view of the daemon, collapsed from the ping
// response. Unavailable covers both an unreachable daemon and one that
// failed its model load; neither will serve judgments.
type Readiness int

const (
	ReadinessUnavailable Readiness = iota
	ReadinessLoading
	ReadinessReady
)

func (r Readiness) String() string {
	switch r {
	case ReadinessReady:
		return "ready"
	case ReadinessLoading:
		return "loading"
	default:
		return "unavailable"
	}
}

const (
	// DefaultCallTimeout bounds generation calls. Model inference on CPU
	// hosts is slow; match the daemon's own request deadline.
	DefaultCallTimeout = 120 * time.Second

	// DefaultProbeTimeout bounds readiness pings, which never touch the
	// model.
	DefaultProbeTimeout = 2 * time.Second
)

// Client talks to one inference daemon.
type Client struct {
	addr         string
	callTimeout  time.Duration
	probeTimeout time.Duration
}

// New creates a Client for the daemon at addr with default timeouts.
func New(addr string) *Client {
	return &Client{
		addr:         addr,
		callTimeout:  DefaultCallTimeout,
		probeTimeout: DefaultProbeTimeout,
	}
}

// WithTimeouts overrides the call and probe timeouts. Zero keeps the
// current value.
func (c *Client) WithTimeouts(call, probe time.Duration) *Client {
	if call > 0 {
		c.callTimeout = call
	}
	if probe > 0 {
		c.probeTimeout = probe
	}
	return c
}

// Addr returns the daemon address this client targets.
func (c *Client) Addr() string { return c.addr }

// call performs one request/response exchange over a fresh connection and
// surfaces daemon error payloads as errors.
func (c *Client) call(ctx context.Context, timeout time.Duration, req daemon.Request, out any) error {
	resp, err := c.exchange(ctx, timeout, req)
	if err != nil {
		return err
	}

	var probe daemon.ErrorResponse
	if err := json.Unmarshal(resp, &probe); err != nil {
		return fmt.Errorf("decoding response %q: %w", resp, err)
	}
	if probe.Error != "" {
		return fmt.Errorf("daemon: %s", probe.Error)
	}
	if err := json.Unmarshal(resp, out); err != nil {
		return fmt.Errorf("decoding response %q: %w", resp, err)
	}
	return nil
}

// exchange sends one request and returns the raw response frame.
func (c *Client) exchange(ctx context.Context, timeout time.Duration, req daemon.Request) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return nil, fmt.Errorf("dialing daemon at %s: %w", c.addr, err)
	}
	defer conn.Close() //nolint:errcheck // best-effort close

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	if _, err := conn.Write(body); err != nil {
		return nil, fmt.Errorf("writing request: %w", err)
	}
	// Half-close signals end of request; the daemon replies and closes.
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.CloseWrite()
	}

	resp, err := io.ReadAll(io.LimitReader(conn, daemon.MaxFrame))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if len(resp) == 0 {
		return nil, fmt.Errorf("daemon at %s closed the connection without a response", c.addr)
	}
	return resp, nil
}

// Ping returns the daemon's readiness payload. It decodes directly because
// a failed load legitimately reports its error inside the payload; that is
// a successful ping, not a failed call.
func (c *Client) Ping(ctx context.Context) (daemon.PingResponse, error) {
	resp, err := c.exchange(ctx, c.probeTimeout, daemon.Request{Type: daemon.TypePing})
	if err != nil {
		return daemon.PingResponse{}, err
	}
	var pr daemon.PingResponse
	if err := json.Unmarshal(resp, &pr); err != nil {
		return daemon.PingResponse{}, fmt.Errorf("decoding ping response %q: %w", resp, err)
	}
	return pr, nil
}

// Probe collapses a ping into a Readiness. Errors of any kind read as
// Unavailable.
func (c *Client) Probe(ctx context.Context) Readiness {
	resp, err := c.Ping(ctx)
	if err != nil {
		return ReadinessUnavailable
	}
	switch resp.Status {
	case daemon.StatusReady:
		return ReadinessReady
	case daemon.StatusLoading:
		return ReadinessLoading
	default:
		return ReadinessUnavailable
	}
}

// Ready reports whether the daemon can serve judgments right now.
func (c *Client) Ready() bool {
	return c.Probe(context.Background()) == ReadinessReady
}

// Judge asks the daemon whether a statement is valid.
func (c *Client) Judge(ctx context.Context, statement string) (bool, float64, string, error) {
	var resp daemon.ValidateResponse
	req := daemon.Request{Type: daemon.TypeValidate, Statement: statement}
	if err := c.call(ctx, c.callTimeout, req, &resp); err != nil {
		return false, 0, "", err
	}
	return resp.Valid, resp.Confidence, resp.RawResponse, nil
}

// CreateWorld asks the daemon to generate a world description.
func (c *Client) CreateWorld(ctx context.Context, prompt string) (string, error) {
	var resp daemon.CreateResponse
	req := daemon.Request{Type: daemon.TypeCreate, Prompt: prompt}
	if err := c.call(ctx, c.callTimeout, req, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Advance asks the daemon to compute the next state for a player action.
func (c *Client) Advance(ctx context.Context, action, state, world string, continueConversation bool) (daemon.AdvanceResponse, error) {
	var resp daemon.AdvanceResponse
	req := daemon.Request{
		Type:                 daemon.TypeAdvance,
		Action:               action,
		GameState:            state,
		GameWorld:            world,
		ContinueConversation: continueConversation,
	}
	err := c.call(ctx, c.callTimeout, req, &resp)
	return resp, err
}

// Reset discards the daemon's conversation state.
func (c *Client) Reset(ctx context.Context) error {
	var resp daemon.ResetResponse
	return c.call(ctx, c.probeTimeout, daemon.Request{Type: daemon.TypeReset}, &resp)
}
