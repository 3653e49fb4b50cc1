package translate

import (
	"github.com/pingcap/tidb/pkg/parser/ast"

	"chunkdb/internal/expr"
	"chunkdb/internal/lqp"
	"chunkdb/internal/table"
)

// translateInsert builds Insert(source) per spec.md §4.6: source is either
// a translated SELECT (INSERT ... SELECT) or a DummyTable fed by a
// Projection of literal expressions (INSERT ... VALUES).
//
// Only a single-row VALUES list is supported: the DummyTable/Projection
// shape this translator builds for a literal row has no way to carry N
// independently-valued rows through one Projection, and chaining N
// Projection-over-DummyTable(1) branches through Union for every
// multi-row INSERT was judged not worth the added plan complexity it
// would impose on every other DummyTable consumer. INSERT ... SELECT is
// unaffected and carries arbitrarily many rows.
func (tr *translator) translateInsert(ins *ast.InsertStmt) (lqp.NodeID, error) {
	tableName, err := singleTableName(ins.Table)
	if err != nil {
		return lqp.NoNode, err
	}
	tbl, err := tr.storage.GetTable(tableName)
	if err != nil {
		return lqp.NoNode, wrapTranslation("translateInsert", err)
	}

	if ins.Select != nil {
		selStmt, ok := ins.Select.(*ast.SelectStmt)
		if !ok {
			return lqp.NoNode, errTranslation("translateInsert", "INSERT ... SELECT source must be a plain SELECT")
		}
		source, err := tr.translateSelect(selStmt)
		if err != nil {
			return lqp.NoNode, err
		}
		cols, err := resolveInsertColumns(ins.Columns, tbl, tr.plan.OutputColumnCount(source))
		if err != nil {
			return lqp.NoNode, err
		}
		source, err = tr.reorderForInsert(source, cols, tbl.ColumnCount())
		if err != nil {
			return lqp.NoNode, err
		}
		return tr.plan.NewInsert(source, tableName), nil
	}

	if len(ins.Lists) != 1 {
		return lqp.NoNode, errTranslation("translateInsert", "only a single-row INSERT ... VALUES is supported")
	}
	row := ins.Lists[0]
	cols, err := resolveInsertColumns(ins.Columns, tbl, len(row))
	if err != nil {
		return lqp.NoNode, err
	}

	dummy := tr.plan.NewDummyTable(1)
	exprs := make([]*lqp.Expression, tbl.ColumnCount())
	for i, valExpr := range row {
		e, err := tr.translateScalarExpr(dummy, valExpr)
		if err != nil {
			return lqp.NoNode, err
		}
		exprs[cols[i]] = e
	}
	for i, e := range exprs {
		if e == nil {
			return lqp.NoNode, errTranslation("translateInsert", "column %q has no value", tbl.ColumnName(i))
		}
	}
	source := tr.plan.NewProjection(dummy, exprs)
	return tr.plan.NewInsert(source, tableName), nil
}

// resolveInsertColumns validates the INSERT column list (if any) against
// tbl and width, returning, for each source position i, the target table
// column index. An omitted column list is the table's natural order; a
// given one must name every column exactly once (spec.md §4.6's Insert
// translation assumes a full-width row).
func resolveInsertColumns(cols []*ast.ColumnName, tbl *table.Table, width int) ([]int, error) {
	if len(cols) == 0 {
		if width != tbl.ColumnCount() {
			return nil, errTranslation("resolveInsertColumns", "INSERT value count %d does not match table width %d", width, tbl.ColumnCount())
		}
		out := make([]int, width)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}
	if len(cols) != width {
		return nil, errTranslation("resolveInsertColumns", "INSERT column count %d does not match value count %d", len(cols), width)
	}
	if len(cols) != tbl.ColumnCount() {
		return nil, errTranslation("resolveInsertColumns", "INSERT column list must name every table column")
	}
	out := make([]int, len(cols))
	seen := make(map[int]bool, len(cols))
	for i, c := range cols {
		idx, ok := tbl.ColumnNameIndex(c.Name.O)
		if !ok {
			return nil, errTranslation("resolveInsertColumns", "unknown column %q", c.Name.O)
		}
		if seen[idx] {
			return nil, errTranslation("resolveInsertColumns", "column %q specified twice", c.Name.O)
		}
		seen[idx] = true
		out[i] = idx
	}
	return out, nil
}

// reorderForInsert wraps source in a Projection that places its columns in
// table-column order when cols is not already the identity permutation.
func (tr *translator) reorderForInsert(source lqp.NodeID, cols []int, width int) (lqp.NodeID, error) {
	identity := true
	for i, c := range cols {
		if i != c {
			identity = false
			break
		}
	}
	if identity {
		return source, nil
	}
	sourceCols := tr.plan.OutputColumns(source)
	inverse := make([]int, width)
	for i, t := range cols {
		inverse[t] = i
	}
	exprs := make([]*lqp.Expression, width)
	for j := 0; j < width; j++ {
		exprs[j] = expr.NewColumn[lqp.ColumnOrigin](sourceCols[inverse[j]].Origin)
	}
	return tr.plan.NewProjection(source, exprs), nil
}

// translateUpdate builds Update(target) per spec.md §4.6: a width-matching
// assignment list, one expression per table column, defaulting to a
// pass-through reference to the row's current value.
func (tr *translator) translateUpdate(upd *ast.UpdateStmt) (lqp.NodeID, error) {
	tableName, err := singleTableName(upd.TableRefs)
	if err != nil {
		return lqp.NoNode, err
	}
	from, err := tr.translateTableRef(upd.TableRefs)
	if err != nil {
		return lqp.NoNode, err
	}
	// tr.validate is always true for UPDATE (set by Translate), so `from`
	// is already a Validate node over the named StoredTable; this check
	// documents that invariant rather than depending on it holding by
	// construction alone.
	if !tr.plan.ManagesTable(from, tableName) {
		return lqp.NoNode, errTranslation("translateUpdate", "UPDATE target %q does not match its FROM source", tableName)
	}

	filtered, err := tr.translateWhere(from, upd.Where)
	if err != nil {
		return lqp.NoNode, err
	}

	tbl, err := tr.storage.GetTable(tableName)
	if err != nil {
		return lqp.NoNode, wrapTranslation("translateUpdate", err)
	}

	cols := tr.plan.OutputColumns(filtered)
	assignments := make([]*lqp.Expression, tbl.ColumnCount())
	for i, c := range cols {
		assignments[i] = expr.NewColumn[lqp.ColumnOrigin](c.Origin)
	}
	for _, a := range upd.List {
		idx, ok := tbl.ColumnNameIndex(a.Column.Name.O)
		if !ok {
			return lqp.NoNode, errTranslation("translateUpdate", "unknown column %q", a.Column.Name.O)
		}
		e, err := tr.translateScalarExpr(filtered, a.Expr)
		if err != nil {
			return lqp.NoNode, err
		}
		assignments[idx] = e
	}
	return tr.plan.NewUpdate(filtered, tableName, assignments), nil
}

// translateDelete builds Delete(target) per spec.md §4.6.
func (tr *translator) translateDelete(del *ast.DeleteStmt) (lqp.NodeID, error) {
	tableName, err := singleTableName(del.TableRefs)
	if err != nil {
		return lqp.NoNode, err
	}
	from, err := tr.translateTableRef(del.TableRefs)
	if err != nil {
		return lqp.NoNode, err
	}
	filtered, err := tr.translateWhere(from, del.Where)
	if err != nil {
		return lqp.NoNode, err
	}
	return tr.plan.NewDelete(filtered, tableName), nil
}
