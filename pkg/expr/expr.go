// Package expr defines the shared configuration surface for the sandboxed
// expression engine: the resource ceilings every component enforces.
//
// The engine evaluates small arithmetic/logical/member-access expressions
// against a caller-supplied context. All input is treated as untrusted, so
// every stage is bounded: expression length, token count, recursion depth,
// sanitization depth, placeholder count, and evaluation rate. The ceilings
// live here so that an embedding host can tune them in one place.
package expr

import "fmt"

// Default ceilings. These are deliberately conservative; expressions written
// for declarative templates are short, and anything approaching these limits
// is either generated or hostile.
const (
	// DefaultMaxExpressionLength is the maximum expression source length in
	// characters.
	DefaultMaxExpressionLength = 10000

	// DefaultMaxTokenCount is the maximum number of tokens a single
	// expression may produce.
	DefaultMaxTokenCount = 1000

	// DefaultMaxRecursionDepth is the maximum evaluator recursion depth.
	DefaultMaxRecursionDepth = 100

	// DefaultCacheCapacity is the number of compiled expressions retained
	// by the LRU cache.
	DefaultCacheCapacity = 100

	// DefaultMaxEvaluationsPerWindow is the number of evaluations permitted
	// per rate-limit window.
	DefaultMaxEvaluationsPerWindow = 1000

	// DefaultRateLimitWindowMillis is the rate-limit window in milliseconds.
	DefaultRateLimitWindowMillis = 1000

	// DefaultMaxTemplateLength is the maximum template length for
	// interpolation; longer templates are truncated.
	DefaultMaxTemplateLength = 10000

	// DefaultMaxPlaceholders is the maximum number of placeholders resolved
	// per template; further placeholders render as empty strings.
	DefaultMaxPlaceholders = 50

	// DefaultMaxSanitizeDepth is how deep context sanitization recurses into
	// nested arrays and objects.
	DefaultMaxSanitizeDepth = 50

	// DefaultMaxSanitizeKeys is the maximum number of keys retained per
	// object level during sanitization.
	DefaultMaxSanitizeKeys = 50

	// DefaultMaxArrayIndex is the largest integer index accepted by bracket
	// access.
	DefaultMaxArrayIndex = 10000

	// DefaultMaxPropertyNameLength is the longest property name accepted in
	// a sanitized context.
	DefaultMaxPropertyNameLength = 50
)

// Limits bundles all resource ceilings used by the lexer, evaluator,
// sanitizer, cache, rate limiter, and interpolator.
type Limits struct {
	// MaxExpressionLength is the maximum expression source length.
	MaxExpressionLength int `yaml:"max_expression_length" json:"max_expression_length"`

	// MaxTokenCount is the maximum token count per expression.
	MaxTokenCount int `yaml:"max_token_count" json:"max_token_count"`

	// MaxRecursionDepth is the maximum evaluator recursion depth.
	MaxRecursionDepth int `yaml:"max_recursion_depth" json:"max_recursion_depth"`

	// CacheCapacity is the compiled-expression cache capacity.
	CacheCapacity int `yaml:"cache_capacity" json:"cache_capacity"`

	// MaxEvaluationsPerWindow caps evaluations per rate-limit window.
	MaxEvaluationsPerWindow int `yaml:"max_evaluations_per_window" json:"max_evaluations_per_window"`

	// RateLimitWindowMillis is the rate-limit window in milliseconds.
	RateLimitWindowMillis int `yaml:"rate_limit_window_millis" json:"rate_limit_window_millis"`

	// MaxTemplateLength is the maximum interpolation template length.
	MaxTemplateLength int `yaml:"max_template_length" json:"max_template_length"`

	// MaxPlaceholders caps placeholders resolved per template.
	MaxPlaceholders int `yaml:"max_placeholders" json:"max_placeholders"`

	// MaxSanitizeDepth bounds sanitization recursion into nested values.
	MaxSanitizeDepth int `yaml:"max_sanitize_depth" json:"max_sanitize_depth"`

	// MaxSanitizeKeys bounds keys retained per object level.
	MaxSanitizeKeys int `yaml:"max_sanitize_keys" json:"max_sanitize_keys"`

	// MaxArrayIndex is the largest accepted bracket-access integer index.
	MaxArrayIndex int `yaml:"max_array_index" json:"max_array_index"`

	// MaxPropertyNameLength is the longest accepted property name.
	MaxPropertyNameLength int `yaml:"max_property_name_length" json:"max_property_name_length"`
}

// DefaultLimits returns the default resource ceilings.
func DefaultLimits() Limits {
	return Limits{
		MaxExpressionLength:     DefaultMaxExpressionLength,
		MaxTokenCount:           DefaultMaxTokenCount,
		MaxRecursionDepth:       DefaultMaxRecursionDepth,
		CacheCapacity:           DefaultCacheCapacity,
		MaxEvaluationsPerWindow: DefaultMaxEvaluationsPerWindow,
		RateLimitWindowMillis:   DefaultRateLimitWindowMillis,
		MaxTemplateLength:       DefaultMaxTemplateLength,
		MaxPlaceholders:         DefaultMaxPlaceholders,
		MaxSanitizeDepth:        DefaultMaxSanitizeDepth,
		MaxSanitizeKeys:         DefaultMaxSanitizeKeys,
		MaxArrayIndex:           DefaultMaxArrayIndex,
		MaxPropertyNameLength:   DefaultMaxPropertyNameLength,
	}
}

// Validate checks that every ceiling is positive.
func (l Limits) Validate() error {
	checks := []struct {
		name  string
		value int
	}{
		{"max_expression_length", l.MaxExpressionLength},
		{"max_token_count", l.MaxTokenCount},
		{"max_recursion_depth", l.MaxRecursionDepth},
		{"cache_capacity", l.CacheCapacity},
		{"max_evaluations_per_window", l.MaxEvaluationsPerWindow},
		{"rate_limit_window_millis", l.RateLimitWindowMillis},
		{"max_template_length", l.MaxTemplateLength},
		{"max_placeholders", l.MaxPlaceholders},
		{"max_sanitize_depth", l.MaxSanitizeDepth},
		{"max_sanitize_keys", l.MaxSanitizeKeys},
		{"max_array_index", l.MaxArrayIndex},
		{"max_property_name_length", l.MaxPropertyNameLength},
	}

	for _, c := range checks {
		if c.value <= 0 {
			return fmt.Errorf("limit %s must be positive, got %d", c.name, c.value)
		}
	}

	return nil
}
