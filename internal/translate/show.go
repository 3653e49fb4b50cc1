package translate

import (
	"github.com/pingcap/tidb/pkg/parser/ast"

	"chunkdb/internal/lqp"
)

// translateShow builds a Show node for SHOW TABLES / SHOW COLUMNS FROM
// (spec.md §4.5 "Show").
func (tr *translator) translateShow(s *ast.ShowStmt) (lqp.NodeID, error) {
	switch s.Tp {
	case ast.ShowTables:
		return tr.plan.NewShow(lqp.ShowTables, ""), nil
	case ast.ShowColumns:
		return tr.plan.NewShow(lqp.ShowColumns, s.Table.Name.O), nil
	default:
		return lqp.NoNode, errTranslation("translateShow", "unsupported SHOW statement")
	}
}
