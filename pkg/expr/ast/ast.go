// Package ast defines the abstract syntax tree produced by the expression
// parser. Nodes are immutable once built; a tree is owned exclusively by
// whoever holds it (the expression cache or a transient evaluation call)
// and is safe to walk concurrently.
package ast

import "hexbind/enclave/pkg/expr/value"

// Node is an expression AST node. The concrete types form a closed set:
// Literal, Identifier, Binary, Unary, Member, Index, and Conditional.
type Node interface {
	// Pos returns the byte offset of the node in the source expression.
	Pos() int

	node()
}

// Literal is a number, string, boolean, or null literal.
type Literal struct {
	Value    value.Value
	Position int
}

// Identifier is a bare name resolved against the evaluation context.
type Identifier struct {
	Name     string
	Position int
}

// Binary is a binary operation. Op is the operator text as written
// ("+", "===", "&&", ...).
type Binary struct {
	Op    string
	Left  Node
	Right Node
	// Position is the offset of the operator.
	Position int
}

// Unary is a prefix operation: logical negation "!" or numeric negation "-".
type Unary struct {
	Op       string
	Right    Node
	Position int
}

// Member is a dotted property access: object.property.
type Member struct {
	Object   Node
	Property string
	// Position is the offset of the property name.
	Position int
}

// Index is a bracketed access: object[index].
type Index struct {
	Object Node
	Key    Node
	// Position is the offset of the opening bracket.
	Position int
}

// Conditional is a ternary expression: test ? consequent : alternate.
// Exactly one branch is evaluated.
type Conditional struct {
	Test       Node
	Consequent Node
	Alternate  Node
	// Position is the offset of the "?" operator.
	Position int
}

func (n *Literal) Pos() int     { return n.Position }
func (n *Identifier) Pos() int  { return n.Position }
func (n *Binary) Pos() int      { return n.Position }
func (n *Unary) Pos() int       { return n.Position }
func (n *Member) Pos() int      { return n.Position }
func (n *Index) Pos() int       { return n.Position }
func (n *Conditional) Pos() int { return n.Position }

func (*Literal) node()     {}
func (*Identifier) node()  {}
func (*Binary) node()      {}
func (*Unary) node()       {}
func (*Member) node()      {}
func (*Index) node()       {}
func (*Conditional) node() {}
