// Package expr implements the shared expression-tree data model of spec.md
// §4.4/§3 (C8): literals, columns, arithmetic, comparison, aggregate
// function calls, and star, used by both LQP nodes (internal/lqp) and
// physical operators (internal/operator). The two consumers share
// structure but not identity (spec.md §4.5): Expression is generic over
// the column-reference type, instantiated as Expression[lqp.ColumnOrigin]
// in the plan and Expression[operator.ColumnID] in the operator tree.
package expr

import (
	"fmt"
	"strings"

	"chunkdb/internal/types"
)

// Kind tags the closed set of expression node kinds.
type Kind uint8

const (
	KindLiteral Kind = iota
	KindColumn
	KindStar
	KindFunction
	KindArithmetic
	KindComparison
	KindLogical
	KindPlaceholder
)

// ArithmeticOp is the closed set of arithmetic operators.
type ArithmeticOp uint8

const (
	Add ArithmeticOp = iota
	Sub
	Mul
	Div
	Mod
	Pow
)

func (o ArithmeticOp) String() string {
	return [...]string{"+", "-", "*", "/", "%", "^"}[o]
}

// ComparisonOp is the closed set of comparison (scan-type) operators.
type ComparisonOp uint8

const (
	Eq ComparisonOp = iota
	Ne
	Lt
	Le
	Gt
	Ge
	Like
	NotLike
	Between
)

func (o ComparisonOp) String() string {
	return [...]string{"=", "!=", "<", "<=", ">", ">=", "LIKE", "NOT LIKE", "BETWEEN"}[o]
}

// Inverse returns the operator obtained by swapping operand order, used by
// the translator to normalize "literal <op> column" into "column <op>
// literal" (spec.md §4.6): > <-> <, >= <-> <=, = and != unchanged.
func (o ComparisonOp) Inverse() ComparisonOp {
	switch o {
	case Lt:
		return Gt
	case Gt:
		return Lt
	case Le:
		return Ge
	case Ge:
		return Le
	default:
		return o
	}
}

// LogicalOp is the closed set of logical connectives.
type LogicalOp uint8

const (
	And LogicalOp = iota
	Or
	Not
	Exists
)

func (o LogicalOp) String() string {
	return [...]string{"AND", "OR", "NOT", "EXISTS"}[o]
}

// AggregateKind is the closed set of aggregate function kinds.
type AggregateKind uint8

const (
	Count AggregateKind = iota
	Sum
	Min
	Max
	Avg
)

func (k AggregateKind) String() string {
	return [...]string{"COUNT", "SUM", "MIN", "MAX", "AVG"}[k]
}

// Expression is a small tree node (spec.md §3 "Expression"). C is the
// column-reference type the two consumer packages (lqp, operator)
// instantiate independently.
type Expression[C comparable] struct {
	Kind          Kind
	Literal       types.Value
	Column        C
	Alias         *string
	Aggregate     AggregateKind
	Arithmetic    ArithmeticOp
	Comparison    ComparisonOp
	Logical       LogicalOp
	PlaceholderID int
	Children      []*Expression[C]
}

func NewLiteral[C comparable](v types.Value) *Expression[C] {
	return &Expression[C]{Kind: KindLiteral, Literal: v}
}

func NewColumn[C comparable](ref C) *Expression[C] {
	return &Expression[C]{Kind: KindColumn, Column: ref}
}

func NewStar[C comparable]() *Expression[C] {
	return &Expression[C]{Kind: KindStar}
}

func NewFunction[C comparable](agg AggregateKind, args ...*Expression[C]) *Expression[C] {
	return &Expression[C]{Kind: KindFunction, Aggregate: agg, Children: args}
}

func NewArithmetic[C comparable](op ArithmeticOp, left, right *Expression[C]) *Expression[C] {
	return &Expression[C]{Kind: KindArithmetic, Arithmetic: op, Children: []*Expression[C]{left, right}}
}

func NewComparison[C comparable](op ComparisonOp, operands ...*Expression[C]) *Expression[C] {
	return &Expression[C]{Kind: KindComparison, Comparison: op, Children: operands}
}

func NewLogical[C comparable](op LogicalOp, operands ...*Expression[C]) *Expression[C] {
	return &Expression[C]{Kind: KindLogical, Logical: op, Children: operands}
}

func NewPlaceholder[C comparable](id int) *Expression[C] {
	return &Expression[C]{Kind: KindPlaceholder, PlaceholderID: id}
}

// WithAlias sets the expression's alias and returns it, for fluent
// construction in the translator.
func (e *Expression[C]) WithAlias(alias string) *Expression[C] {
	e.Alias = &alias
	return e
}

// DeepCopy returns a structurally independent copy. Implemented by
// constructing a fresh node and field-assigning children (spec.md §9
// "Deep-copy that avoids a self-referential constructor"), recursing into
// children rather than sharing child pointers.
func (e *Expression[C]) DeepCopy() *Expression[C] {
	if e == nil {
		return nil
	}
	cp := *e
	if e.Alias != nil {
		alias := *e.Alias
		cp.Alias = &alias
	}
	if e.Children != nil {
		cp.Children = make([]*Expression[C], len(e.Children))
		for i, c := range e.Children {
			cp.Children[i] = c.DeepCopy()
		}
	}
	return &cp
}

// Equal is structural equality: kind, value, aggregate, alias, children,
// and (via Children) aggregate arguments.
func (e *Expression[C]) Equal(o *Expression[C]) bool {
	if e == nil || o == nil {
		return e == o
	}
	if e.Kind != o.Kind {
		return false
	}
	if !aliasEqual(e.Alias, o.Alias) {
		return false
	}
	switch e.Kind {
	case KindLiteral:
		if e.Literal.IsNull() != o.Literal.IsNull() {
			return false
		}
		if !e.Literal.IsNull() && (e.Literal.Type() != o.Literal.Type() || e.Literal.Compare(o.Literal) != 0) {
			return false
		}
	case KindColumn:
		if e.Column != o.Column {
			return false
		}
	case KindFunction:
		if e.Aggregate != o.Aggregate {
			return false
		}
	case KindArithmetic:
		if e.Arithmetic != o.Arithmetic {
			return false
		}
	case KindComparison:
		if e.Comparison != o.Comparison {
			return false
		}
	case KindLogical:
		if e.Logical != o.Logical {
			return false
		}
	case KindPlaceholder:
		if e.PlaceholderID != o.PlaceholderID {
			return false
		}
	}
	if len(e.Children) != len(o.Children) {
		return false
	}
	for i := range e.Children {
		if !e.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

func aliasEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// IsOperator reports whether e combines operands via an arithmetic,
// comparison, or logical operator.
func (e *Expression[C]) IsOperator() bool {
	switch e.Kind {
	case KindArithmetic, KindComparison, KindLogical:
		return true
	default:
		return false
	}
}

func (e *Expression[C]) IsArithmeticOperator() bool { return e.Kind == KindArithmetic }
func (e *Expression[C]) IsLogicalOperator() bool     { return e.Kind == KindLogical }

// IsBinaryOperator reports whether e is an operator with exactly two
// operands.
func (e *Expression[C]) IsBinaryOperator() bool {
	return e.IsOperator() && len(e.Children) == 2
}

// IsUnaryOperator reports whether e is an operator with exactly one
// operand (NOT, EXISTS).
func (e *Expression[C]) IsUnaryOperator() bool {
	return e.IsOperator() && len(e.Children) == 1
}

// IsNullLiteral reports whether e is the literal NULL.
func (e *Expression[C]) IsNullLiteral() bool {
	return e.Kind == KindLiteral && e.Literal.IsNull()
}

// IsOperand reports whether e can stand as a leaf operand (as opposed to a
// combinator): literal, column, star, placeholder, or function call.
func (e *Expression[C]) IsOperand() bool {
	switch e.Kind {
	case KindLiteral, KindColumn, KindStar, KindPlaceholder, KindFunction:
		return true
	default:
		return false
	}
}

// String pretty-prints the expression, parenthesizing non-root binary
// operators (spec.md §4.4).
func (e *Expression[C]) String() string {
	return e.toString(true)
}

func (e *Expression[C]) toString(root bool) string {
	switch e.Kind {
	case KindLiteral:
		return e.Literal.String()
	case KindColumn:
		return fmt.Sprintf("%v", e.Column)
	case KindStar:
		return "*"
	case KindPlaceholder:
		return fmt.Sprintf("?%d", e.PlaceholderID)
	case KindFunction:
		args := make([]string, len(e.Children))
		for i, c := range e.Children {
			args[i] = c.toString(true)
		}
		return fmt.Sprintf("%s(%s)", e.Aggregate, strings.Join(args, ", "))
	case KindArithmetic:
		s := binaryString(e.Arithmetic.String(), e.Children)
		return parenthesizeUnlessRoot(root, s)
	case KindComparison:
		if e.Comparison == Between {
			return fmt.Sprintf("%s BETWEEN %s AND %s",
				e.Children[0].toString(true), e.Children[1].toString(true), e.Children[2].toString(true))
		}
		s := binaryString(e.Comparison.String(), e.Children)
		return parenthesizeUnlessRoot(root, s)
	case KindLogical:
		if e.Logical == Not || e.Logical == Exists {
			return fmt.Sprintf("%s %s", e.Logical, e.Children[0].toString(true))
		}
		s := binaryString(e.Logical.String(), e.Children)
		return parenthesizeUnlessRoot(root, s)
	default:
		return "<?>"
	}
}

func binaryString[C comparable](op string, children []*Expression[C]) string {
	return fmt.Sprintf("%s %s %s", children[0].toString(false), op, children[1].toString(false))
}

func parenthesizeUnlessRoot(root bool, s string) string {
	if root {
		return s
	}
	return "(" + s + ")"
}
