package app

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"titanwatch/internal/config"
	"titanwatch/internal/feed"
	"titanwatch/internal/render"
	"titanwatch/internal/transport"
)

// ErrConnectFailed signals that the connection was refused and the
// diagnostics are already on the console. The CLI maps it to exit code 1
// without printing anything further.
var ErrConnectFailed = errors.New("could not connect")

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Out    io.Writer
}

// NewApp constructs an application handle rendering the feed to stdout.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{
		Config: cfg,
		Logger: logger.With().Str("component", "app").Logger(),
		Out:    os.Stdout,
	}
}

// Run executes the streaming client until the peer closes the stream, the
// user interrupts, or the transport fails. With reconnect enabled, dial
// failures and stream drops retry with backoff up to the attempt budget.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ep := transport.Endpoint{Host: a.Config.Server.Host, Port: a.Config.Server.Port}
	view := render.NewConsole(a.Out)
	backoff := transport.NewBackoff(
		a.Config.Reconnect.BaseDelay,
		a.Config.Reconnect.MaxDelay,
		a.Config.Reconnect.Multiplier,
		a.Config.Reconnect.Jitter,
	)

	for {
		view.Connecting(ep.URL())

		sess, err := transport.Dial(ctx, ep, a.Logger)
		if err != nil {
			if ctx.Err() != nil {
				view.Disconnected()
				return nil
			}
			a.Logger.Error().Err(err).Msg("connection failed")
			if a.retryDelay(ctx, backoff) {
				continue
			}
			if ctx.Err() != nil {
				view.Disconnected()
				return nil
			}
			view.ConnectFailed(ep.URL())
			return ErrConnectFailed
		}

		backoff.Reset()
		view.Connected()

		streamErr := a.stream(ctx, sess, view)

		if ctx.Err() != nil {
			view.Disconnected()
			return nil
		}

		if streamErr != nil {
			a.Logger.Error().Err(streamErr).Msg("stream terminated abnormally")
			if a.retryDelay(ctx, backoff) {
				continue
			}
			if ctx.Err() != nil {
				view.Disconnected()
				return nil
			}
			return streamErr
		}

		// An orderly peer close is a normal end, not a failure; reconnect
		// only re-enters Connecting from the error states.
		a.Logger.Info().Msg("stream closed by peer")
		view.Disconnected()
		return nil
	}
}

// stream consumes frames until the session ends, dispatching each one. The
// session is released on every exit path.
func (a *App) stream(ctx context.Context, sess *transport.Session, view *render.Console) error {
	defer sess.Close()

	disp := feed.NewDispatcher(view, a.Logger)
	for frame := range sess.Frames(ctx) {
		disp.Dispatch(frame)
	}

	st := disp.Stats()
	a.Logger.Info().
		Int("frames", st.Frames).
		Int("metrics", st.Metrics).
		Int("alerts", st.Alerts).
		Int("invalid", st.Invalid).
		Int("skipped", st.Skipped).
		Msg("session finished")

	return sess.Err()
}

// retryDelay waits out the next backoff delay. It reports false when
// reconnect is disabled, the attempt budget is spent, or ctx was cancelled
// during the wait.
func (a *App) retryDelay(ctx context.Context, b *transport.Backoff) bool {
	rc := a.Config.Reconnect
	if !rc.Enabled || b.Attempts() >= rc.MaxAttempts {
		return false
	}

	delay := b.Next()
	a.Logger.Info().Dur("delay", delay).Int("attempt", b.Attempts()).Msg("reconnecting after delay")

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
