// Package engine assembles the expression pipeline into a single object.
//
// An Engine owns its own compiled-expression cache, rate limiter, and
// metrics; nothing in the pipeline is process-global. An embedding host
// creates one Engine per trust domain and passes it explicitly to whatever
// drives evaluation (the interpolator, a command dispatcher, tests).
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"hexbind/enclave/pkg/expr"
	"hexbind/enclave/pkg/expr/ast"
	"hexbind/enclave/pkg/expr/cache"
	exprErrors "hexbind/enclave/pkg/expr/errors"
	"hexbind/enclave/pkg/expr/eval"
	"hexbind/enclave/pkg/expr/lexer"
	"hexbind/enclave/pkg/expr/parser"
	"hexbind/enclave/pkg/expr/ratelimit"
	"hexbind/enclave/pkg/expr/sanitize"
	"hexbind/enclave/pkg/expr/value"
)

// Config contains configuration for an expression engine.
type Config struct {
	// Limits are the resource ceilings applied to every evaluation.
	Limits expr.Limits

	// Registerer receives the engine's Prometheus metrics. Nil leaves the
	// collectors unregistered but still functional.
	Registerer prometheus.Registerer
}

// DefaultConfig returns an engine configuration with default limits and no
// metrics registration.
func DefaultConfig() *Config {
	return &Config{Limits: expr.DefaultLimits()}
}

// Engine evaluates sandboxed expressions against caller-supplied contexts.
// It is safe for concurrent use; the cache and rate limiter carry their own
// locks and everything else is per-call state.
type Engine struct {
	limits  expr.Limits
	lexer   *lexer.Lexer
	cache   *cache.LRU
	limiter *ratelimit.SlidingWindow
	metrics *Metrics
	logger  *slog.Logger
}

// New creates an expression engine.
func New(cfg *Config, logger *slog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Limits.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine limits: %w", err)
	}

	if logger == nil {
		logger = slog.Default().With("component", "expr.engine")
	}

	window := time.Duration(cfg.Limits.RateLimitWindowMillis) * time.Millisecond

	return &Engine{
		limits:  cfg.Limits,
		lexer:   lexer.New(cfg.Limits),
		cache:   cache.New(cfg.Limits.CacheCapacity),
		limiter: ratelimit.New(cfg.Limits.MaxEvaluationsPerWindow, window),
		metrics: NewMetrics(cfg.Registerer),
		logger:  logger,
	}, nil
}

// Limits returns the engine's resource ceilings.
func (e *Engine) Limits() expr.Limits {
	return e.limits
}

// Metrics returns the engine's metric collectors.
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// Compile returns the AST for an expression, consulting the cache first and
// compiling through the lexer and parser on a miss.
func (e *Engine) Compile(expression string) (ast.Node, error) {
	node, _, err := e.compile(expression)
	return node, err
}

func (e *Engine) compile(expression string) (ast.Node, bool, error) {
	if node, ok := e.cache.Get(expression); ok {
		e.metrics.RecordCacheLookup(true)
		return node, true, nil
	}
	e.metrics.RecordCacheLookup(false)

	tokens, err := e.lexer.Tokenize(expression)
	if err != nil {
		return nil, false, err
	}

	node, err := parser.Parse(tokens)
	if err != nil {
		return nil, false, err
	}

	e.metrics.RecordParse()
	e.cache.Put(expression, node)
	return node, false, nil
}

// Stats describes one finished evaluation for callers that record their own
// telemetry, such as an audit trail.
type Stats struct {
	// CacheHit reports whether the compiled expression came from the cache.
	CacheHit bool

	// Duration is the total evaluation time including compilation.
	Duration time.Duration
}

// Evaluate evaluates an expression against a context.
//
// It returns a typed error for syntax, security, resource limit, and
// division-by-zero failures. A rate-limit denial is not an error: the
// evaluation is skipped silently and the soft no-value result is returned.
// The context map is never mutated.
func (e *Engine) Evaluate(expression string, context map[string]any) (value.Value, error) {
	result, _, err := e.EvaluateWithStats(expression, context)
	return result, err
}

// EvaluateWithStats evaluates an expression like Evaluate and additionally
// reports per-call stats.
func (e *Engine) EvaluateWithStats(expression string, context map[string]any) (value.Value, Stats, error) {
	start := time.Now()

	if !e.limiter.Allow() {
		e.metrics.RecordRateLimitDenial()
		e.logger.Debug("evaluation skipped by rate limiter",
			"expression_length", len(expression),
		)
		return value.NoValue(), Stats{Duration: time.Since(start)}, nil
	}

	node, hit, err := e.compile(expression)

	result := value.NoValue()
	if err == nil {
		sanitized := sanitize.Context(context, e.limits)
		result, err = eval.New(sanitized, e.limits).Evaluate(node)
	}

	outcome := "ok"
	if err != nil {
		outcome = string(exprErrors.TypeOf(err))
		if outcome == "" {
			outcome = "error"
		}
	}
	stats := Stats{CacheHit: hit, Duration: time.Since(start)}
	e.metrics.RecordEvaluation(outcome, stats.Duration)

	return result, stats, err
}

// PurgeCache drops all compiled expressions, forcing fresh parses. Intended
// for hosts that change limits at runtime or run scheduled maintenance.
func (e *Engine) PurgeCache() {
	e.cache.Purge()
}

// CacheLen returns the number of cached compiled expressions.
func (e *Engine) CacheLen() int {
	return e.cache.Len()
}

// ResetRateLimiter clears the rate-limit window.
func (e *Engine) ResetRateLimiter() {
	e.limiter.Reset()
}
