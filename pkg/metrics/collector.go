// Package metrics exposes Prometheus instrumentation for game operations.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nanocoin-game/nanocoin-bot/internal/state"
)

var (
	gameActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_actions_total",
			Help: "Total number of game actions labeled by action and status",
		},
		[]string{"action", "status"},
	)
	actionDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "game_action_duration_seconds",
			Help:    "Duration of game actions in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)
	coinsEarnedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coins_earned_total",
			Help: "Coins minted by the economy engine, labeled by source",
		},
		[]string{"source"},
	)
	diamondsFoundTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diamonds_found_total",
			Help: "Diamonds dropped by engine rolls, labeled by source",
		},
		[]string{"source"},
	)
	engineRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_rejections_total",
			Help: "Expected engine failures labeled by error kind",
		},
		[]string{"kind"},
	)
	levelUpsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "level_ups_total",
			Help: "Total click level-ups granted",
		},
	)
	stateTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "state_transitions_total",
			Help: "Total number of conversation state transitions",
		},
		[]string{"from", "to"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by type and severity",
		},
		[]string{"type", "severity"},
	)
	activePlayers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_players",
			Help: "Players with a live conversation state",
		},
	)
	playersByState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "players_by_state",
			Help: "Number of players per conversation state",
		},
		[]string{"state"},
	)
)

var trackedStates = []state.State{
	state.StateIdle,
	state.StateMarketSelectItem,
	state.StateMarketSetPrice,
	state.StateMarketConfirm,
	state.StateError,
}

func init() {
	state.RegisterTransitionRecorder(RecordStateTransition)
}

// RecordAction increments game action counters and records duration.
func RecordAction(action, status string, duration time.Duration) {
	if action == "" {
		action = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	gameActionsTotal.WithLabelValues(action, status).Inc()
	actionDurationSeconds.WithLabelValues(action).Observe(duration.Seconds())
}

// RecordCoinsEarned tracks coins minted by source ("click", "mine", "daily", "quest").
func RecordCoinsEarned(source string, amount int64) {
	if amount <= 0 {
		return
	}
	coinsEarnedTotal.WithLabelValues(source).Add(float64(amount))
}

// RecordDiamondFound tracks a diamond drop by source.
func RecordDiamondFound(source string) {
	diamondsFoundTotal.WithLabelValues(source).Inc()
}

// RecordEngineRejection counts an expected engine failure by kind.
func RecordEngineRejection(kind string) {
	if kind == "" {
		kind = "unknown"
	}
	engineRejectionsTotal.WithLabelValues(kind).Inc()
}

// RecordLevelUp counts a granted level-up.
func RecordLevelUp() {
	levelUpsTotal.Inc()
}

// RecordStateTransition tracks conversation FSM transitions.
func RecordStateTransition(from, to string) {
	if from == "" {
		from = "unknown"
	}
	if to == "" {
		to = "unknown"
	}

	stateTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordError increments error counters with metadata.
func RecordError(errType, severity string) {
	if errType == "" {
		errType = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	errorsTotal.WithLabelValues(errType, severity).Inc()
}

// StateCollector periodically gathers conversation state counts into gauges.
type StateCollector struct {
	fsm state.StateMachine
}

// NewStateCollector builds a metrics collector bound to the provided FSM.
func NewStateCollector(fsm state.StateMachine) *StateCollector {
	return &StateCollector{fsm: fsm}
}

// Run polls the FSM every 10 seconds until ctx is cancelled.
func (c *StateCollector) Run(ctx context.Context) {
	if c == nil || c.fsm == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		_ = c.collect(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(10 * time.Second):
		}
	}
}

func (c *StateCollector) collect(ctx context.Context) error {
	states, err := c.fsm.GetAllStates(ctx)
	if err != nil {
		return err
	}

	activePlayers.Set(float64(len(states)))

	stateCounts := make(map[string]int, len(states))
	for _, st := range states {
		label := "unknown"
		if st != nil && st.CurrentState != "" {
			label = string(st.CurrentState)
		}
		stateCounts[label]++
	}

	playersByState.Reset()

	for _, tracked := range trackedStates {
		label := string(tracked)
		playersByState.WithLabelValues(label).Set(float64(stateCounts[label]))
		delete(stateCounts, label)
	}

	for label, count := range stateCounts {
		playersByState.WithLabelValues(label).Set(float64(count))
	}

	return nil
}
