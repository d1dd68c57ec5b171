// Enclave is a sandboxed expression engine for untrusted template
// expressions.
//
// It evaluates small arithmetic, logical, and member-access expressions
// against a caller-supplied context, with a hard sandbox boundary: no host
// globals, no function calls, bounded recursion, bounded rate, and a cached
// compile step.
//
// Usage:
//
//	# Evaluate an expression against a JSON context
//	enclave eval "user.score + 10" --context '{"user": {"score": 32}}'
//
//	# Render a template with {{ expr }} placeholders
//	enclave render "Hello {{ user.name || 'anonymous' }}!" --context ctx.json
//
//	# Check expressions for syntax and sandbox violations
//	enclave lint "a.b[0] === 'x'"
//
//	# Query the evaluation audit trail
//	enclave audit query --outcome security --limit 20
//
//	# Show version information
//	enclave version
package main

func main() {
	Execute()
}
