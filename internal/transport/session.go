package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// ErrConnect marks a failure during the initial handshake, before any frame
// was received. Mid-stream failures are reported through Session.Err instead.
var ErrConnect = errors.New("connect failed")

// Endpoint identifies the Titan websocket feed.
type Endpoint struct {
	Host string
	Port int
}

// URL returns the ws:// dial target.
func (e Endpoint) URL() string {
	return fmt.Sprintf("ws://%s:%d", e.Host, e.Port)
}

// Session owns a single connection to the feed. Frames may be consumed once;
// the session is done when the frame channel closes.
type Session struct {
	conn   *websocket.Conn
	logger zerolog.Logger

	done      chan struct{}
	closeOnce sync.Once

	mu  sync.Mutex
	err error
}

// Dial performs one connection attempt against the endpoint. Any error here
// is a connection-phase failure wrapped with ErrConnect, so callers never
// confuse a refused handshake with a mid-stream drop.
func Dial(ctx context.Context, ep Endpoint, logger zerolog.Logger) (*Session, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, ep.URL(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConnect, ep.URL(), err)
	}

	return &Session{
		conn:   conn,
		logger: logger.With().Str("component", "transport").Str("endpoint", ep.URL()).Logger(),
		done:   make(chan struct{}),
	}, nil
}

// Frames starts the reader and returns the frame sequence. The channel is
// unbuffered, so at most one frame is ever in flight and arrival order is
// preserved. It closes when the peer closes the stream, the connection drops,
// or ctx is cancelled; Err distinguishes the abnormal case afterwards.
func (s *Session) Frames(ctx context.Context) <-chan []byte {
	out := make(chan []byte)

	// Unblock the pending read when the caller is cancelled.
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()

	go func() {
		defer close(out)
		defer close(s.done)
		defer s.Close()

		for {
			_, data, err := s.conn.ReadMessage()
			if err != nil {
				s.setErr(s.classifyRead(ctx, err))
				return
			}

			select {
			case out <- data:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// Err reports how the frame sequence ended: nil for an orderly close or
// cancellation, a transport error for an abnormal drop. Valid once the
// channel returned by Frames has closed.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close releases the underlying connection. Safe to call from any exit path;
// the socket is closed exactly once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		_ = s.conn.Close()
	})
}

func (s *Session) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *Session) classifyRead(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		s.logger.Debug().Msg("receive interrupted by cancellation")
		return nil
	}
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	) || errors.Is(err, io.EOF) {
		s.logger.Debug().Msg("stream closed by peer")
		return nil
	}
	s.logger.Error().Err(err).Msg("abnormal transport failure")
	return fmt.Errorf("receive frame: %w", err)
}
