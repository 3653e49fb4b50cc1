package operator

import (
	"fmt"
	"strings"

	"chunkdb/internal/expr"
	"chunkdb/internal/table"
	"chunkdb/internal/types"
)

// AggregateOp hashes its input by group-by tuple and accumulates
// Count/Sum/Min/Max/Avg per group (spec.md §4.7 "Aggregate"). Row order
// across groups is unspecified but deterministic: groups are emitted in
// first-seen order.
type AggregateOp struct {
	child      Operator
	groupBy    []ColumnID
	aggregates []*Expression
	names      []string
	elemTypes  []types.ElementType
}

// NewAggregate builds an AggregateOp. names/elemTypes are the dense
// group-by-then-aggregate output schema Build computed statically.
func NewAggregate(child Operator, groupBy []ColumnID, aggregates []*Expression, names []string, elemTypes []types.ElementType) *AggregateOp {
	return &AggregateOp{child: child, groupBy: groupBy, aggregates: aggregates, names: names, elemTypes: elemTypes}
}

func (a *AggregateOp) NumInTables() int  { return 1 }
func (a *AggregateOp) NumOutTables() int { return 1 }
func (a *AggregateOp) Name() string      { return "Aggregate" }
func (a *AggregateOp) Description() string {
	return fmt.Sprintf("%d group key(s), %d aggregate(s)", len(a.groupBy), len(a.aggregates))
}

func (a *AggregateOp) Recreate(params map[int]types.Value) Operator {
	return &AggregateOp{
		child:      a.child.Recreate(params),
		groupBy:    a.groupBy,
		aggregates: bindExprs(a.aggregates, params),
		names:      a.names,
		elemTypes:  a.elemTypes,
	}
}

// aggAccum is one group's running accumulator for one aggregate
// expression.
type aggAccum struct {
	count   int64 // Count, and Sum/Avg's non-null input count
	sawAny  bool  // Sum/Min/Max/Avg saw at least one non-null input
	sum     float64
	isFloat bool
	min     types.Value
	max     types.Value
}

type groupState struct {
	keyValues []types.Value
	accums    []aggAccum
}

func (a *AggregateOp) Execute(ctx *Context) (*table.Table, error) {
	src, err := a.child.Execute(ctx)
	if err != nil {
		return nil, err
	}
	_, childTypes := schemaOf(src)

	var order []string
	groups := make(map[string]*groupState)
	rowCount := 0

	for c := 0; c < src.ChunkCount(); c++ {
		if err := ctx.Cancelled(); err != nil {
			return nil, err
		}
		chunk := src.Chunk(c)
		for r := 0; r < chunk.RowCount(); r++ {
			rowCount++
			row := types.RowID{ChunkIndex: uint32(c), Offset: uint32(r)}

			key := make([]types.Value, len(a.groupBy))
			for i, col := range a.groupBy {
				key[i] = src.ValueAt(int(col), row)
			}
			k := groupKey(key)
			g, ok := groups[k]
			if !ok {
				g = &groupState{keyValues: key, accums: make([]aggAccum, len(a.aggregates))}
				for i, e := range a.aggregates {
					g.accums[i].isFloat = isFloatFamily(typeOf(e, childTypes))
				}
				groups[k] = g
				order = append(order, k)
			}
			for i, e := range a.aggregates {
				if err := accumulate(&g.accums[i], e, src, row); err != nil {
					return nil, err
				}
			}
		}
	}

	out, err := table.New(a.names, a.elemTypes, 0, table.Data)
	if err != nil {
		return nil, err
	}

	if rowCount == 0 {
		if len(a.groupBy) > 0 {
			return out, nil
		}
		row := make([]types.Value, len(a.aggregates))
		for i, e := range a.aggregates {
			row[i] = identityValue(e)
		}
		if err := out.AppendRow(row); err != nil {
			return nil, err
		}
		return out, nil
	}

	for _, k := range order {
		g := groups[k]
		row := make([]types.Value, 0, len(a.groupBy)+len(a.aggregates))
		row = append(row, g.keyValues...)
		for i, e := range a.aggregates {
			row = append(row, finalizeAccum(e, &g.accums[i]))
		}
		if err := out.AppendRow(row); err != nil {
			return nil, err
		}
	}
	if ctx.Log != nil {
		ctx.Log.Debugw("Aggregate", "in", rowCount, "groups", len(order))
	}
	return out, nil
}

// accumulate folds one row's contribution to a single aggregate's
// accumulator. COUNT(*) (no children) counts every row unconditionally;
// every other aggregate skips a NULL input (spec.md §4.7 "Avg over only
// non-null inputs" generalizes to the other aggregates here).
func accumulate(acc *aggAccum, e *Expression, src rowSource, row types.RowID) error {
	if e.Kind != expr.KindFunction {
		return fmt.Errorf("operator: aggregate expression must be a function call")
	}
	if e.Aggregate == expr.Count && len(e.Children) == 0 {
		acc.count++
		return nil
	}
	v, err := evalExpr(e.Children[0], src, row, nil)
	if err != nil {
		return err
	}
	if v.IsNull() {
		return nil
	}
	acc.sawAny = true
	switch e.Aggregate {
	case expr.Count:
		acc.count++
	case expr.Sum, expr.Avg:
		acc.count++
		acc.sum += v.AsFloat64()
	case expr.Min:
		if acc.min.IsNull() || compareValues(v, acc.min) < 0 {
			acc.min = v
		}
	case expr.Max:
		if acc.max.IsNull() || compareValues(v, acc.max) > 0 {
			acc.max = v
		}
	}
	return nil
}

// finalizeAccum reads out a group's accumulated result for one aggregate
// expression. Sum/Min/Max/Avg over a group with no non-null input are
// NULL; Count is always a concrete number.
func finalizeAccum(e *Expression, acc *aggAccum) types.Value {
	switch e.Aggregate {
	case expr.Count:
		return types.NewInt64(acc.count)
	case expr.Sum:
		if !acc.sawAny {
			return types.Null
		}
		if acc.isFloat {
			return types.NewDouble(acc.sum)
		}
		return types.NewInt64(int64(acc.sum))
	case expr.Avg:
		if !acc.sawAny || acc.count == 0 {
			return types.Null
		}
		return types.NewDouble(acc.sum / float64(acc.count))
	case expr.Min:
		if !acc.sawAny {
			return types.Null
		}
		return acc.min
	case expr.Max:
		if !acc.sawAny {
			return types.Null
		}
		return acc.max
	default:
		return types.Null
	}
}

// identityValue is an aggregate's result over zero input rows, for the
// ungrouped case (spec.md §4.7 "empty input yields ... the identity for
// count-only").
func identityValue(e *Expression) types.Value {
	if e.Aggregate == expr.Count {
		return types.NewInt64(0)
	}
	return types.Null
}

// groupKey renders a group-by tuple as a map key, distinguishing NULL from
// any possible string rendering of a concrete value.
func groupKey(values []types.Value) string {
	var b strings.Builder
	for _, v := range values {
		if v.IsNull() {
			b.WriteString("\x00N\x1f")
			continue
		}
		b.WriteString(v.Type().String())
		b.WriteByte(':')
		b.WriteString(v.String())
		b.WriteByte(0x1f)
	}
	return b.String()
}
