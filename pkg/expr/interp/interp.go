// Package interp substitutes evaluated expressions into template strings.
//
// Templates embed expressions as "{{ expr }}" placeholders. Interpolation
// never fails: any error inside one placeholder degrades that placeholder to
// an empty string and the rest of the template still renders. The reserved
// placeholder body "__uid" bypasses evaluation and yields a freshly
// generated unique identifier per occurrence.
package interp

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"hexbind/enclave/pkg/expr/engine"
	"hexbind/enclave/pkg/telemetry/logging"
)

// UIDPlaceholder is the reserved placeholder body that produces a unique
// identifier instead of evaluating an expression. Element wiring in
// declarative templates uses it to mint ids that link attributes together.
const UIDPlaceholder = "__uid"

// placeholderPattern matches one non-nesting "{{ ... }}" placeholder.
var placeholderPattern = regexp.MustCompile(`\{\{(.*?)\}\}`)

// Interpolator renders templates through an expression engine. The engine is
// passed in explicitly; the interpolator owns no evaluation state of its
// own.
type Interpolator struct {
	engine *engine.Engine
	logger *slog.Logger

	// newUID is the identifier source, replaceable in tests.
	newUID func() string
}

// New creates an interpolator backed by the given engine.
func New(eng *engine.Engine, logger *slog.Logger) *Interpolator {
	if logger == nil {
		logger = slog.Default().With("component", "expr.interp")
	}

	return &Interpolator{
		engine: eng,
		logger: logger,
		newUID: func() string { return "uid-" + uuid.NewString() },
	}
}

// Interpolate renders a template against a context. It never returns an
// error: placeholders that fail to evaluate for any reason render as empty
// strings, templates past the length ceiling are truncated with a warning,
// and placeholders past the per-template ceiling render as empty strings.
func (i *Interpolator) Interpolate(template string, context map[string]any) string {
	limits := i.engine.Limits()

	truncated := false
	if len(template) > limits.MaxTemplateLength {
		i.logger.Warn("template exceeds maximum length, truncating",
			"length", len(template),
			"max_length", limits.MaxTemplateLength,
		)
		template = template[:limits.MaxTemplateLength]
		truncated = true
	}

	count := 0

	// An opening "{{" with no closing "}}" is a malformed placeholder
	// running to the end of the template; it degrades to nothing, like any
	// other failed placeholder.
	if open := strings.LastIndex(template, "{{"); open >= 0 && !strings.Contains(template[open:], "}}") {
		template = template[:open]
		count++
	}

	result := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		count++
		if count > limits.MaxPlaceholders {
			return ""
		}

		body := strings.TrimSpace(match[2 : len(match)-2])
		return i.resolve(body, context)
	})

	i.engine.Metrics().RecordInterpolation(count, truncated)
	return result
}

// resolve evaluates one placeholder body, degrading every failure to an
// empty string.
func (i *Interpolator) resolve(body string, context map[string]any) string {
	if body == UIDPlaceholder {
		return i.newUID()
	}

	if body == "" {
		return ""
	}

	result, err := i.engine.Evaluate(body, context)
	if err != nil {
		// One bad placeholder must not corrupt the whole render. The error
		// class is still worth logging; security errors in particular are
		// attempted sandbox escapes.
		i.logger.Debug("placeholder evaluation failed",
			"expression", logging.RedactExpression(body),
			"error", err,
		)
		return ""
	}

	return result.Render()
}
