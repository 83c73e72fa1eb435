package triage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/andrewdunn358-dev/Veteran-sub000/internal/audit"
	"github.com/andrewdunn358-dev/Veteran-sub000/internal/observability/metrics"
	"github.com/andrewdunn358-dev/Veteran-sub000/pkg/logging"
)

// AuditEmitter accepts the assessment's audit record and returns the record
// id. Implementations must never block the assessment path on sink failures.
type AuditEmitter interface {
	Emit(ctx context.Context, rec audit.Record) string
}

// EngineConfig carries the tunable policy knobs. Thresholds and TTLs live
// in configuration, not code.
type EngineConfig struct {
	LexiconPath  string
	ResourcePath string

	ThresholdAmber  float64
	ThresholdRed    float64
	EscalationBonus float64
	TrendMinDelta   float64

	// TrendOnlyFloor keeps a zero-signal message flagged at AMBER when the
	// session was already escalating. See DESIGN.md for the policy choice.
	TrendOnlyFloor bool

	WindowSize int
	SessionTTL time.Duration
}

// Engine runs the full triage pipeline for one inbound message: match,
// score, track, decide, localize, audit. Assess always returns a usable
// result; internal faults degrade to AMBER with the degraded flag set,
// never to NONE.
type Engine struct {
	cfg     EngineConfig
	scorer  *Scorer
	tracker *Tracker

	lexicons  atomic.Pointer[LexiconSet]
	resources atomic.Pointer[RegionResourceTable]

	emitter AuditEmitter
	metrics *metrics.TriageMetrics
	logger  *logging.Logger
	tracer  trace.Tracer

	now func() time.Time
}

// NewEngine loads and validates the lexicon and resource tables, then wires
// the pipeline. A malformed table is a configuration error: the process
// must not start.
func NewEngine(cfg EngineConfig, emitter AuditEmitter, m *metrics.TriageMetrics, logger *logging.Logger) (*Engine, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.ThresholdAmber <= 0 || cfg.ThresholdRed <= cfg.ThresholdAmber {
		return nil, fmt.Errorf("triage: invalid thresholds: amber=%v red=%v", cfg.ThresholdAmber, cfg.ThresholdRed)
	}
	if emitter == nil {
		return nil, fmt.Errorf("triage: audit emitter is required")
	}

	lexicons, err := LoadLexicons(cfg.LexiconPath)
	if err != nil {
		return nil, err
	}
	resources, err := LoadResources(cfg.ResourcePath)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:     cfg,
		scorer:  NewScorer(cfg.ThresholdAmber, cfg.ThresholdRed, cfg.EscalationBonus),
		tracker: NewTracker(cfg.WindowSize, cfg.SessionTTL, cfg.TrendMinDelta),
		emitter: emitter,
		metrics: m,
		logger:  logger,
		tracer:  otel.Tracer("vetsupport/triage"),
		now:     time.Now,
	}
	e.lexicons.Store(lexicons)
	e.resources.Store(resources)

	logger.Info("triage engine ready",
		"lexicon_version", lexicons.Version,
		"resource_version", resources.Version,
		"categories", len(lexicons.categories),
	)
	return e, nil
}

// Tracker exposes the conversation state tracker for lifecycle management
// (background sweeping) by the caller.
func (e *Engine) Tracker() *Tracker {
	return e.tracker
}

// Reload re-reads the lexicon and resource files and swaps them atomically.
// On any validation failure the previous tables stay in place.
func (e *Engine) Reload() error {
	lexicons, err := LoadLexicons(e.cfg.LexiconPath)
	if err != nil {
		return err
	}
	resources, err := LoadResources(e.cfg.ResourcePath)
	if err != nil {
		return err
	}
	e.lexicons.Store(lexicons)
	e.resources.Store(resources)
	e.logger.Info("triage tables reloaded",
		"lexicon_version", lexicons.Version,
		"resource_version", resources.Version,
	)
	return nil
}

// Assess runs one synchronous assessment. It never returns an error: a
// thrown error on a real crisis message is worse than a false AMBER.
func (e *Engine) Assess(ctx context.Context, req Request) Result {
	start := e.now()
	ctx, span := e.tracer.Start(ctx, "triage.assess")
	defer span.End()

	result := e.evaluate(ctx, req)

	signalsJSON, err := json.Marshal(result.MatchedSignals)
	if err != nil {
		// The audit record is the safeguarding ground truth: an encoding
		// fault must leave a visible marker, not silently empty signals.
		e.logger.Error("triage: failed to encode signals for audit",
			"error", err,
			"session_id", req.SessionID,
		)
		signalsJSON = []byte(`[{"category":"encoding-fault"}]`)
	}
	rec := audit.Record{
		SessionID:    req.SessionID,
		CharacterID:  req.CharacterID,
		Region:       req.RegionHint,
		MessageText:  req.MessageText,
		Signals:      signalsJSON,
		RiskScore:    result.RiskScore,
		RiskLevel:    string(result.RiskLevel),
		Trend:        string(result.Trend),
		Intervention: string(result.Intervention),
		Degraded:     result.Degraded,
		Escalation:   result.RiskLevel == LevelRed,
		CreatedAt:    result.Timestamp,
	}
	result.AuditID = e.emitter.Emit(ctx, rec)

	span.SetAttributes(
		attribute.String("triage.risk_level", string(result.RiskLevel)),
		attribute.String("triage.intervention", string(result.Intervention)),
		attribute.String("triage.trend", string(result.Trend)),
		attribute.Bool("triage.degraded", result.Degraded),
	)
	e.metrics.ObserveAssessment(string(result.RiskLevel), string(result.Intervention), result.Degraded, e.now().Sub(start).Seconds())
	e.metrics.SetActiveSessions(e.tracker.ActiveSessions())

	return result
}

// evaluate contains the fallible part of the pipeline. Any panic is caught
// here and converted to the fail-safe degraded result.
func (e *Engine) evaluate(ctx context.Context, req Request) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("triage: assessment fault, failing safe",
				"panic", r,
				"session_id", req.SessionID,
			)
			result = e.failSafe(req)
		}
	}()

	set := e.lexicons.Load()
	signals := Match(req.MessageText, set)

	history := e.tracker.Snapshot(req.SessionID)
	score, level := e.scorer.Score(signals, history)

	// A quiet message does not clear an escalating session on its own: when
	// the history trend is ESCALATING and the previous score had already
	// reached the AMBER threshold, the level floors at AMBER.
	if level == LevelNone && e.cfg.TrendOnlyFloor && trendOf(history, e.cfg.TrendMinDelta) == TrendEscalating &&
		len(history) > 0 && history[len(history)-1] >= e.cfg.ThresholdAmber {
		level = LevelAmber
	}

	trend := e.tracker.Update(req.SessionID, score)
	intervention := Decide(level)

	result = Result{
		RiskLevel:      level,
		RiskScore:      score,
		Trend:          trend,
		MatchedSignals: signals,
		Intervention:   intervention,
		Timestamp:      e.now().UTC(),
	}
	if signals == nil {
		result.MatchedSignals = []Signal{}
	}

	if intervention != InterventionContinue {
		contacts := e.resources.Load().ResourcesFor(req.RegionHint)
		result.Resources = contacts
		if intervention == InterventionIntervene {
			result.CrisisMessage = FormatCrisisMessage(contacts)
		} else {
			result.SupportNotice = FormatSupportNotice(contacts)
		}
	}
	return result
}

// failSafe is the degraded result on an internal fault: at least AMBER,
// resources attached, never NONE.
func (e *Engine) failSafe(req Request) Result {
	contacts := e.resources.Load().ResourcesFor(req.RegionHint)
	return Result{
		RiskLevel:      LevelAmber,
		Trend:          TrendStable,
		MatchedSignals: []Signal{},
		Intervention:   InterventionAdvise,
		Resources:      contacts,
		SupportNotice:  FormatSupportNotice(contacts),
		Degraded:       true,
		Timestamp:      e.now().UTC(),
	}
}
