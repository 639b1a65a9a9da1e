// Package monitor runs the poll-parse-notify loop.
//
// Each cycle fetches status changes since the cursor, validates the answer,
// announces the newest homework and then sleeps for the retry interval.
// Failures inside a cycle are reported to the chat and never stop the loop.
package monitor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/erkineren/homework-monitor/internal/errors"
	"github.com/erkineren/homework-monitor/internal/models"
	"github.com/erkineren/homework-monitor/internal/practicum"
)

// State is the loop's position within a cycle.
type State int32

const (
	StateIdle State = iota
	StatePolling
	StateValidating
	StateNotifying
	StateSleeping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StateValidating:
		return "validating"
	case StateNotifying:
		return "notifying"
	case StateSleeping:
		return "sleeping"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Fetcher polls the homework API. Implemented by practicum.Client.
type Fetcher interface {
	Fetch(ctx context.Context, fromDate int64) (models.RawResponse, error)
}

// Notifier delivers chat messages. Implemented by bot.Bot.
type Notifier interface {
	SendMessage(ctx context.Context, text string) error
}

// Monitor owns the cursor and drives the cycles.
type Monitor struct {
	fetcher  Fetcher
	notifier Notifier
	interval time.Duration
	log      zerolog.Logger

	cursor atomic.Int64
	state  atomic.Int32
}

// New returns a Monitor whose cursor starts at now.
func New(fetcher Fetcher, notifier Notifier, interval time.Duration, now time.Time, log zerolog.Logger) *Monitor {
	m := &Monitor{
		fetcher:  fetcher,
		notifier: notifier,
		interval: interval,
		log:      log.With().Str("component", "monitor").Logger(),
	}
	m.cursor.Store(now.Unix())
	return m
}

// Cursor returns the lower bound of the next poll window.
func (m *Monitor) Cursor() int64 { return m.cursor.Load() }

// State returns the current position within a cycle.
func (m *Monitor) State() State { return State(m.state.Load()) }

func (m *Monitor) setState(s State) {
	m.state.Store(int32(s))
	m.log.Trace().Stringer("state", s).Msg("state changed")
}

// Run repeats cycles until ctx is cancelled. The retry interval is slept
// after every cycle, failed or not.
func (m *Monitor) Run(ctx context.Context) error {
	m.log.Info().Dur("interval", m.interval).Int64("from_date", m.Cursor()).Msg("monitor started")

	for {
		m.cycle(ctx)
		if ctx.Err() != nil {
			m.log.Info().Msg("monitor shutting down")
			return nil
		}
	}
}

func (m *Monitor) cycle(ctx context.Context) {
	defer m.sleep(ctx)
	_ = m.RunOnce(ctx)
}

func (m *Monitor) sleep(ctx context.Context) {
	m.setState(StateSleeping)
	timer := time.NewTimer(m.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
	m.setState(StateIdle)
}

// RunOnce performs a single cycle without the trailing sleep. A failure is
// reported to the chat before being returned; the returned error is
// informational only.
func (m *Monitor) RunOnce(ctx context.Context) error {
	err := m.poll(ctx)
	if err != nil {
		if ctx.Err() != nil {
			m.log.Debug().Err(err).Msg("cycle interrupted by shutdown")
			return err
		}
		m.reportFailure(ctx, err)
	}
	return err
}

func (m *Monitor) poll(ctx context.Context) error {
	m.setState(StatePolling)
	raw, err := m.fetcher.Fetch(ctx, m.Cursor())
	if err != nil {
		return err
	}

	m.setState(StateValidating)
	homeworks, err := practicum.ExtractHomeworks(raw)
	if err != nil {
		return err
	}
	m.log.Debug().Int("homeworks", len(homeworks)).Msg("homeworks extracted")

	if len(homeworks) > 0 {
		m.setState(StateNotifying)
		message, err := practicum.ParseStatus(homeworks[0])
		if err != nil {
			return err
		}
		if err := m.notifier.SendMessage(ctx, message); err != nil {
			return err
		}
	} else {
		m.log.Debug().Msg("no new statuses in response")
	}

	if ts, ok := practicum.CurrentDate(raw); ok {
		m.cursor.Store(ts)
		m.log.Debug().Int64("from_date", ts).Msg("cursor advanced")
	} else {
		m.log.Warn().Int64("from_date", m.Cursor()).Msg("response has no current_date, cursor unchanged")
	}
	return nil
}

func (m *Monitor) reportFailure(ctx context.Context, err error) {
	m.log.Error().
		Err(err).
		Str("kind", string(apperrors.KindOf(err))).
		Msg("program failure")

	message := fmt.Sprintf("Program failure: %v", err)
	if sendErr := m.notifier.SendMessage(ctx, message); sendErr != nil {
		m.log.Error().Err(sendErr).Msg("failed to report program failure")
	}
}
