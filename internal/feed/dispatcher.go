package feed

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"titanwatch/internal/render"
)

// Stats counts what the dispatcher saw over one session.
type Stats struct {
	Frames  int
	Metrics int
	Alerts  int
	Invalid int
	Skipped int
}

// Dispatcher decodes raw frames and routes them to the console view by their
// type field. Decode failures are local: the offending frame is echoed and
// the loop moves on. At most one decoded event is held at a time.
type Dispatcher struct {
	view   *render.Console
	logger zerolog.Logger
	stats  Stats
}

// NewDispatcher constructs a dispatcher rendering to view.
func NewDispatcher(view *render.Console, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		view:   view,
		logger: logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Dispatch classifies one raw frame and renders it. Unrecognized types stay
// silent on the console and only show up in debug logs.
func (d *Dispatcher) Dispatch(frame []byte) {
	d.stats.Frames++

	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		d.invalid(frame, err)
		return
	}

	switch env.Type {
	case TypeMetrics:
		var evt MetricsEvent
		if err := json.Unmarshal(frame, &evt); err != nil {
			d.invalid(frame, err)
			return
		}
		d.stats.Metrics++
		d.view.Metrics(evt.Book.BestBid, evt.Book.BestAsk, evt.Book.SpreadBps, evt.Trade.VWAP)
	case TypeAlert:
		var evt AlertEvent
		if err := json.Unmarshal(frame, &evt); err != nil {
			d.invalid(frame, err)
			return
		}
		d.stats.Alerts++
		d.view.Alert(evt.SideLabel(), evt.Quantity, evt.Price, evt.SigmaValue())
	case TypeStatus:
		var evt StatusEvent
		if err := json.Unmarshal(frame, &evt); err != nil {
			d.invalid(frame, err)
			return
		}
		d.stats.Skipped++
		d.logger.Debug().
			Bool("connected", evt.Connected).
			Str("state", evt.State).
			Msg("engine status")
	default:
		d.stats.Skipped++
		d.logger.Debug().Str("type", env.Type).Msg("skipping unrecognized event")
	}
}

func (d *Dispatcher) invalid(frame []byte, err error) {
	d.stats.Invalid++
	d.view.InvalidFrame(string(frame))
	d.logger.Debug().Err(err).Msg("frame failed to decode")
}

// Stats returns the session counters.
func (d *Dispatcher) Stats() Stats {
	return d.stats
}
