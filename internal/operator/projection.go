package operator

import (
	"fmt"

	"chunkdb/internal/expr"
	"chunkdb/internal/table"
	"chunkdb/internal/types"
)

// ProjectionOp evaluates each expression row-wise over its child's output
// (spec.md §4.7 "Projection"). Pass-through reference-column sharing is
// not implemented: every Projection materializes a fresh Data table.
// DESIGN.md documents this as a scoped simplification, since none of the
// Testable Properties scenarios require a Projection's output to share the
// input's position list.
type ProjectionOp struct {
	child       Operator
	expressions []*Expression
	names       []string
	elemTypes   []types.ElementType
}

// NewProjection builds a ProjectionOp. names/elemTypes declare the output
// schema Build computed statically for expressions.
func NewProjection(child Operator, expressions []*Expression, names []string, elemTypes []types.ElementType) *ProjectionOp {
	return &ProjectionOp{child: child, expressions: expressions, names: names, elemTypes: elemTypes}
}

func (p *ProjectionOp) NumInTables() int  { return 1 }
func (p *ProjectionOp) NumOutTables() int { return 1 }
func (p *ProjectionOp) Name() string      { return "Projection" }
func (p *ProjectionOp) Description() string {
	return fmt.Sprintf("projects %d expression(s)", len(p.expressions))
}

func (p *ProjectionOp) Recreate(params map[int]types.Value) Operator {
	return &ProjectionOp{
		child:       p.child.Recreate(params),
		expressions: bindExprs(p.expressions, params),
		names:       p.names,
		elemTypes:   p.elemTypes,
	}
}

func (p *ProjectionOp) Execute(ctx *Context) (*table.Table, error) {
	out, err := table.New(p.names, p.elemTypes, 0, table.Data)
	if err != nil {
		return nil, err
	}

	if dummy, ok := p.child.(*DummyTableOp); ok {
		if err := ctx.Cancelled(); err != nil {
			return nil, err
		}
		for i := 0; i < dummy.rowCount; i++ {
			values, err := evalRow(p.expressions, nil, types.RowID{}, nil)
			if err != nil {
				return nil, err
			}
			if err := out.AppendRow(values); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	src, err := p.child.Execute(ctx)
	if err != nil {
		return nil, err
	}
	for c := 0; c < src.ChunkCount(); c++ {
		if err := ctx.Cancelled(); err != nil {
			return nil, err
		}
		chunk := src.Chunk(c)
		for r := 0; r < chunk.RowCount(); r++ {
			row := types.RowID{ChunkIndex: uint32(c), Offset: uint32(r)}
			values, err := evalRow(p.expressions, src, row, nil)
			if err != nil {
				return nil, err
			}
			if err := out.AppendRow(values); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// typeOf statically infers an expression's result element type from its
// child schema, mirroring applyArithmetic's own type-promotion rule
// (integer family stays Int64; any Float/Double operand promotes to
// Double). Used by Build to declare a Projection/Aggregate's output schema
// ahead of execution, since table.New requires element types upfront.
func typeOf(e *Expression, childTypes []types.ElementType) types.ElementType {
	switch e.Kind {
	case expr.KindLiteral:
		if e.Literal.IsNull() {
			return types.Int64
		}
		return e.Literal.Type()
	case expr.KindColumn:
		return childTypes[int(e.Column)]
	case expr.KindArithmetic:
		l := typeOf(e.Children[0], childTypes)
		r := typeOf(e.Children[1], childTypes)
		if isFloatFamily(l) || isFloatFamily(r) {
			return types.Double
		}
		return types.Int64
	case expr.KindFunction:
		return aggregateResultType(e.Aggregate, e.Children, childTypes)
	default:
		return types.Int64
	}
}

// aggregateResultType infers an aggregate call's result element type:
// Count is always Int64, Avg is always Double (it divides). Sum widens its
// argument's type the way AggregateOp.finalizeAccum actually accumulates
// it (a running float64, emitted as Double for any float-family input and
// Int64 otherwise); Min/Max keep their argument's type unchanged.
func aggregateResultType(k expr.AggregateKind, children []*Expression, childTypes []types.ElementType) types.ElementType {
	switch k {
	case expr.Count:
		return types.Int64
	case expr.Avg:
		return types.Double
	case expr.Sum:
		if len(children) == 0 {
			return types.Int64
		}
		if isFloatFamily(typeOf(children[0], childTypes)) {
			return types.Double
		}
		return types.Int64
	default:
		if len(children) == 0 {
			return types.Int64
		}
		return typeOf(children[0], childTypes)
	}
}
