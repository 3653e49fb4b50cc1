package lqp

import (
	"fmt"

	"chunkdb/internal/expr"
)

// ColumnInfo is one entry of a node's dense output column list: its
// display name, the table it is qualified by (empty if none, e.g. a
// computed expression), and its provenance.
type ColumnInfo struct {
	Name      string
	Qualifier string
	Origin    ColumnOrigin
}

// OutputColumns computes id's dense output column list (spec.md §3/§4.5
// "output column names, output column ids ... provenance"). Pass-through
// node kinds (Predicate, Validate, Sort, Limit, Union) forward their
// child's columns unchanged, including origin, since they do not
// introduce new columns.
func (p *Plan) OutputColumns(id NodeID) []ColumnInfo {
	n := &p.nodes[id]
	switch n.Kind {
	case KindStoredTable:
		cols := make([]ColumnInfo, len(n.names))
		for i, name := range n.names {
			cols[i] = ColumnInfo{Name: name, Qualifier: n.TableName, Origin: ColumnOrigin{Node: id, Column: i}}
		}
		return cols

	case KindDummyTable:
		return nil

	case KindPredicate, KindValidate, KindSort, KindLimit:
		return p.OutputColumns(n.Left)

	case KindUnion:
		return p.OutputColumns(n.Left)

	case KindProjection:
		cols := make([]ColumnInfo, len(n.Expressions))
		for i, e := range n.Expressions {
			cols[i] = p.projectedColumn(id, i, e)
		}
		return cols

	case KindAggregate:
		cols := make([]ColumnInfo, 0, len(n.GroupBy)+len(n.Expressions))
		for _, origin := range n.GroupBy {
			cols = append(cols, ColumnInfo{Name: p.nameOf(origin), Qualifier: p.qualifierOf(origin), Origin: origin})
		}
		for i, e := range n.Expressions {
			cols = append(cols, ColumnInfo{Name: exprDisplayName(e), Origin: ColumnOrigin{Node: id, Column: len(n.GroupBy) + i}})
		}
		return cols

	case KindJoin:
		left := p.OutputColumns(n.Left)
		right := p.OutputColumns(n.Right)
		if n.JoinMode != JoinNatural {
			return append(append([]ColumnInfo(nil), left...), right...)
		}
		shared := make(map[string]bool)
		for _, c := range left {
			shared[c.Name] = true
		}
		out := append([]ColumnInfo(nil), left...)
		for _, c := range right {
			if !shared[c.Name] {
				out = append(out, c)
			}
		}
		return out

	case KindInsert, KindUpdate, KindDelete, KindShow:
		return nil

	default:
		return nil
	}
}

// projectedColumn computes the ColumnInfo for a single Projection
// expression at position i: a bare column reference forwards its source's
// name, qualifier, and origin unchanged; anything else originates a new
// column at this node.
func (p *Plan) projectedColumn(id NodeID, i int, e *Expression) ColumnInfo {
	if e.Kind == expr.KindColumn {
		name := p.nameOf(e.Column)
		if e.Alias != nil {
			name = *e.Alias
		}
		return ColumnInfo{Name: name, Qualifier: p.qualifierOf(e.Column), Origin: e.Column}
	}
	if e.Alias != nil {
		return ColumnInfo{Name: *e.Alias, Origin: ColumnOrigin{Node: id, Column: i}}
	}
	return ColumnInfo{Name: exprDisplayName(e), Origin: ColumnOrigin{Node: id, Column: i}}
}

func (p *Plan) nameOf(origin ColumnOrigin) string {
	cols := p.OutputColumns(origin.Node)
	if origin.Column < 0 || origin.Column >= len(cols) {
		return ""
	}
	return cols[origin.Column].Name
}

func (p *Plan) qualifierOf(origin ColumnOrigin) string {
	cols := p.OutputColumns(origin.Node)
	if origin.Column < 0 || origin.Column >= len(cols) {
		return ""
	}
	return cols[origin.Column].Qualifier
}

// OutputColumnNames returns id's dense output column names.
func (p *Plan) OutputColumnNames(id NodeID) []string {
	cols := p.OutputColumns(id)
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// OutputColumnCount returns the number of dense output columns id exposes.
func (p *Plan) OutputColumnCount(id NodeID) int {
	return len(p.OutputColumns(id))
}

// ColumnOriginAt returns the provenance of id's output column col.
func (p *Plan) ColumnOriginAt(id NodeID, col int) ColumnOrigin {
	return p.OutputColumns(id)[col].Origin
}

// FindColumnOriginByName resolves name (optionally qualified by
// tablePrefix) against id's output columns. Ambiguity is reported as an
// error, matching spec.md §3's "unambiguous or returns none; ambiguity is
// a hard error at translation time".
func (p *Plan) FindColumnOriginByName(id NodeID, name, tablePrefix string) (ColumnOrigin, error) {
	var found *ColumnOrigin
	for _, c := range p.OutputColumns(id) {
		if c.Name != name {
			continue
		}
		if tablePrefix != "" && c.Qualifier != tablePrefix {
			continue
		}
		if found != nil {
			return ColumnOrigin{}, fmt.Errorf("lqp: ambiguous column reference %q", qualifiedName(tablePrefix, name))
		}
		origin := c.Origin
		found = &origin
	}
	if found == nil {
		return ColumnOrigin{}, fmt.Errorf("lqp: no column named %q", qualifiedName(tablePrefix, name))
	}
	return *found, nil
}

func qualifiedName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// AggregateColumnOrigin implements spec.md §4.5's "Exposes
// get_column_origin_for_expression(expr) so HAVING can bind": it reports
// the ColumnOrigin of an aggregate expression already present in id's
// expression list (id must be a KindAggregate node), found by structural
// equality rather than identity, since the translator may build a fresh
// Expression tree for the same aggregate referenced a second time in
// HAVING.
func (p *Plan) AggregateColumnOrigin(id NodeID, e *Expression) (ColumnOrigin, bool) {
	n := &p.nodes[id]
	for i, agg := range n.Expressions {
		if agg.Equal(e) {
			return ColumnOrigin{Node: id, Column: len(n.GroupBy) + i}, true
		}
	}
	return ColumnOrigin{}, false
}

// AppendAggregateExpression adds e to id's (a KindAggregate node's)
// expression list and returns its new ColumnOrigin, used when a HAVING
// clause references an aggregate absent from the SELECT list (spec.md
// §4.6 "A HAVING clause may reference aggregates not in the select list;
// those are appended to the aggregate list but hidden from the final
// projection").
func (p *Plan) AppendAggregateExpression(id NodeID, e *Expression) ColumnOrigin {
	n := &p.nodes[id]
	n.Expressions = append(n.Expressions, e)
	return ColumnOrigin{Node: id, Column: len(n.GroupBy) + len(n.Expressions) - 1}
}

// ManagesTable reports whether the subtree rooted at id reads from a
// StoredTable node named name (spec.md §4.5's "test whether it manages a
// named table").
func (p *Plan) ManagesTable(id NodeID, name string) bool {
	if id == NoNode {
		return false
	}
	n := &p.nodes[id]
	if n.Kind == KindStoredTable {
		return n.TableName == name
	}
	return p.ManagesTable(n.Left, name) || p.ManagesTable(n.Right, name)
}

// Describe renders a short one-line description of a node, for plan
// diagnostics.
func (p *Plan) Describe(id NodeID) string {
	n := &p.nodes[id]
	switch n.Kind {
	case KindStoredTable:
		return fmt.Sprintf("StoredTable(%s)", n.TableName)
	case KindPredicate:
		return fmt.Sprintf("Predicate(col=%v, op=%d)", n.PredicateColumn, n.ScanType)
	case KindJoin:
		return fmt.Sprintf("Join(%d)", n.JoinMode)
	case KindLimit:
		return fmt.Sprintf("Limit(%d, offset=%d)", n.Limit, n.Offset)
	case KindInsert, KindUpdate, KindDelete:
		return fmt.Sprintf("%s(%s)", n.Kind, n.TargetTable)
	default:
		return n.Kind.String()
	}
}

func exprDisplayName(e *Expression) string {
	return e.String()
}
