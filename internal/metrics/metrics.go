package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Business Metrics
var (
	BattlesStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameBattlesStarted,
			Help: HelpTextBattlesStarted,
		},
		[]string{LabelTier},
	)

	BattlesFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameBattlesFinished,
			Help: HelpTextBattlesFinished,
		},
		[]string{LabelOutcome},
	)

	RoundsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameRoundsProcessed,
			Help: HelpTextRoundsProcessed,
		},
	)

	LootRolls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameLootRolls,
			Help: HelpTextLootRolls,
		},
		[]string{LabelKind},
	)

	LootDistributed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameLootDistributed,
			Help: HelpTextLootDistributed,
		},
	)

	RuinsEntered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRuinsEntered,
			Help: HelpTextRuinsEntered,
		},
		[]string{LabelType},
	)

	RuinsRoomsCleared = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameRuinsRoomsCleared,
			Help: HelpTextRuinsRoomsCleared,
		},
	)

	ChestsOpened = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameChestsOpened,
			Help: HelpTextChestsOpened,
		},
		[]string{LabelType},
	)

	QuestsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameQuestsCompleted,
			Help: HelpTextQuestsCompleted,
		},
	)

	CommandsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCommandsProcessed,
			Help: HelpTextCommandsProcessed,
		},
		[]string{LabelCommand},
	)
)
