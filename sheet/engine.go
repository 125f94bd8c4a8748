// Package sheet resolves the fields of a calculation sheet.
package sheet

import (
	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/influxdata/calcsheet/ast"
	"github.com/influxdata/calcsheet/eval"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Engine is one sheet session. It caches parsed formulas and evaluation
// plans across recalculations and is safe for concurrent use.
type Engine struct {
	id      string
	es      eval.ExecutionState
	clock   clock.Clock
	logger  *zap.Logger
	metrics *metrics
	reg     prometheus.Registerer
	parses  *parseCache
	plans   *planCache
	scopes  *eval.ScopePool
}

type Option func(*Engine)

// WithLogger sets the logger, zap.NewNop by default.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithClock sets the clock read by TODAY() and used to time recalculations.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithRegisterer registers the engine metrics with r.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(e *Engine) {
		e.reg = r
	}
}

func NewEngine(c Config, opts ...Option) (*Engine, error) {
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid sheet config")
	}
	loc, err := c.location()
	if err != nil {
		return nil, err
	}
	e := &Engine{
		id:      uuid.New().String(),
		clock:   clock.New(),
		logger:  zap.NewNop(),
		metrics: newMetrics(),
		scopes:  eval.NewScopePool(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(zap.String("session", e.id))
	e.es = eval.ExecutionState{
		Funcs:    eval.NewFunctions(),
		Clock:    e.clock,
		Location: loc,
	}

	if e.reg != nil {
		if err := e.metrics.register(e.reg); err != nil {
			return nil, errors.Wrap(err, "failed to register sheet metrics")
		}
	}
	if e.parses, err = newParseCache(c.ParseCacheSize, e.es, e.metrics); err != nil {
		return nil, errors.Wrap(err, "failed to create parse cache")
	}
	if e.plans, err = newPlanCache(c.PlanCacheSize, e.metrics); err != nil {
		return nil, errors.Wrap(err, "failed to create plan cache")
	}
	return e, nil
}

// ID identifies the session in logs.
func (e *Engine) ID() string {
	return e.id
}

// Calculate is CalculateAllValues using the engine caches.
func (e *Engine) Calculate(fields []FieldSpec, raw map[string]interface{}) map[string]eval.Value {
	start := e.clock.Now()
	fields = dedupe(fields)
	p := e.plans.get(fields, e.parses)

	scope := e.scopes.Get()
	defer e.scopes.Put(scope)
	values := p.run(fields, raw, e.parses, scope)

	for _, i := range p.order {
		e.metrics.observeEvaluation(values[fields[i].Name])
	}
	for range p.cyclic {
		e.metrics.observeEvaluation(eval.NewError(eval.ErrRef))
	}
	if len(p.cyclic) > 0 {
		e.metrics.cyclicFields.Add(float64(len(p.cyclic)))
		e.logger.Warn("cyclic fields detected", zap.Strings("fields", p.deps.Cyclic))
	}

	elapsed := e.clock.Since(start)
	e.metrics.recalcDuration.Observe(elapsed.Seconds())
	e.logger.Debug("recalculated",
		zap.Int("fields", len(fields)),
		zap.Int("passes", p.passes),
		zap.Duration("duration", elapsed),
	)
	return values
}

// Parse returns the parsed form of source, served from the parse cache.
// The node is a copy the caller may modify. On failure it is an ErrorNode.
func (e *Engine) Parse(source string) (ast.Node, error) {
	p := e.parses.lookup(source)
	return ast.Copy(p.node), p.err
}

// Evaluate parses source through the cache and evaluates it against scope.
func (e *Engine) Evaluate(source string, scope map[string]interface{}) eval.EvalResult {
	p := e.parses.lookup(source)
	if p.err != nil {
		e.logger.Debug("failed to parse formula", zap.String("formula", source), zap.Error(p.err))
	}
	v := p.eval(eval.NewScopeFrom(scope))
	e.metrics.observeEvaluation(v)
	return eval.EvalResult{Value: v, IsError: v.IsError()}
}

// Dependencies returns the evaluation plan of fields.
func (e *Engine) Dependencies(fields []FieldSpec) Dependencies {
	return e.plans.get(dedupe(fields), e.parses).dependencies()
}
