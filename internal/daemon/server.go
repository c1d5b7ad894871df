package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
)

// Server accepts loopback TCP connections and serves one JSON exchange per
// connection. Workers run independently; only conversation continuations are
// serialized, inside the Session.
type Server struct {
	session *Session
	cfg     Config
	log     zerolog.Logger

	ln net.Listener
}

// NewServer creates a Server for the given session.
func NewServer(session *Session, cfg Config, log zerolog.Logger) *Server {
	return &Server{session: session, cfg: cfg, log: log}
}

// ListenAndServe binds the configured loopback address, kicks off the model
// load, and accepts connections until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("binding %s: %w", s.cfg.Addr, err)
	}
	s.ln = ln
	s.log.Info().Str("addr", ln.Addr().String()).Msg("daemon listening")

	s.session.LoadAsync(ctx)

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Warn().Err(err).Msg("accept failed")
			continue
		}
		go s.handleConn(ctx, conn)
	}
}

// Addr returns the bound listen address, valid after ListenAndServe starts.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// handleConn performs a single bounded request/response exchange.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close() //nolint:errcheck // best-effort close
	defer func() {
		if r := recover(); r != nil {
			sentry.CurrentHub().Recover(r)
			s.log.Error().Interface("panic", r).Msg("connection worker panicked")
		}
	}()

	_ = conn.SetDeadline(time.Now().Add(s.cfg.RequestTimeout))

	// Accumulate until the frame holds a complete JSON object, the client
	// half-closes, or the frame limit is hit. One request per connection.
	buf := make([]byte, MaxFrame)
	n := 0
	for n < len(buf) {
		m, err := conn.Read(buf[n:])
		n += m
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.log.Warn().Err(err).Msg("read failed")
			}
			if n == 0 {
				// Port probes and health checks close without sending
				// anything; a clean empty EOF is not worth a log line.
				return
			}
			break
		}
		if json.Valid(buf[:n]) {
			break
		}
	}

	// The socket deadline alone cannot interrupt a hung generation; the
	// request context must carry the same bound or a stalled engine wedges
	// the worker (and, in continuation mode, the conversation lock).
	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	resp := s.handleRequest(reqCtx, buf[:n])

	// A timed-out generation spends the whole request bound; extend the
	// write deadline so the error payload still reaches the client.
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := conn.Write(resp); err != nil {
		s.log.Warn().Err(err).Msg("write failed")
	}
}

// handleRequest dispatches one decoded request. Every failure path returns a
// structured error payload; nothing escapes as a fault.
func (s *Server) handleRequest(ctx context.Context, data []byte) []byte {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return mustMarshal(ErrorResponse{Error: fmt.Sprintf("failed to parse request: %v", err)})
	}

	s.log.Debug().Str("type", req.Type).Int("bytes", len(data)).Msg("request")

	switch req.Type {
	case TypePing:
		return mustMarshal(s.session.Status())

	case TypeValidate:
		resp, err := s.session.Validate(ctx, req.Statement)
		if err != nil {
			return mustMarshal(ErrorResponse{Error: err.Error()})
		}
		return mustMarshal(resp)

	case TypeCreate:
		resp, err := s.session.CreateWorld(ctx, req.Prompt)
		if err != nil {
			return mustMarshal(ErrorResponse{Error: err.Error()})
		}
		return mustMarshal(resp)

	case TypeAdvance:
		resp, err := s.session.Advance(ctx, req.Action, req.GameState, req.GameWorld, req.ContinueConversation)
		if err != nil {
			return mustMarshal(ErrorResponse{Error: err.Error()})
		}
		return mustMarshal(resp)

	case TypeReset:
		return mustMarshal(s.session.ResetConversation())

	default:
		return mustMarshal(ErrorResponse{Error: fmt.Sprintf("unknown request type %q", req.Type)})
	}
}

// mustMarshal encodes a response value. The response shapes contain no
// unmarshalable types, so failure here is a programming error; it still
// degrades to an error payload rather than panicking the worker.
func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte(`{"error":"internal: failed to encode response"}`)
	}
	if len(b) > MaxFrame {
		return []byte(`{"error":"response exceeds frame limit"}`)
	}
	return b
}
