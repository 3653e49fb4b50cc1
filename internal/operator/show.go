package operator

import (
	"sort"

	"chunkdb/internal/lqp"
	"chunkdb/internal/storage"
	"chunkdb/internal/table"
	"chunkdb/internal/types"
)

// ShowOp materializes the result of SHOW TABLES / SHOW COLUMNS as a small
// Data table (spec.md §4.5 "Show"), reading the storage manager's registry
// directly rather than going through a child operator.
type ShowOp struct {
	kind lqp.ShowKind
	name string // table name, only for ShowColumns
	mgr  *storage.Manager
}

// NewShow builds a ShowOp.
func NewShow(kind lqp.ShowKind, name string, mgr *storage.Manager) *ShowOp {
	return &ShowOp{kind: kind, name: name, mgr: mgr}
}

func (s *ShowOp) NumInTables() int  { return 0 }
func (s *ShowOp) NumOutTables() int { return 1 }
func (s *ShowOp) Name() string      { return "Show" }
func (s *ShowOp) Description() string {
	if s.kind == lqp.ShowColumns {
		return "show columns " + s.name
	}
	return "show tables"
}

func (s *ShowOp) Recreate(params map[int]types.Value) Operator {
	return &ShowOp{kind: s.kind, name: s.name, mgr: s.mgr}
}

func (s *ShowOp) Execute(ctx *Context) (*table.Table, error) {
	if s.kind == lqp.ShowColumns {
		return s.showColumns()
	}
	return s.showTables()
}

func (s *ShowOp) showTables() (*table.Table, error) {
	names := s.mgr.TableNames()
	sort.Strings(names)
	out, err := table.New([]string{"table_name"}, []types.ElementType{types.String}, 0, table.Data)
	if err != nil {
		return nil, err
	}
	for _, n := range names {
		if err := out.AppendRow([]types.Value{types.NewString(n)}); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *ShowOp) showColumns() (*table.Table, error) {
	target, err := s.mgr.GetTable(s.name)
	if err != nil {
		return nil, err
	}
	out, err := table.New([]string{"column_name", "column_type"}, []types.ElementType{types.String, types.String}, 0, table.Data)
	if err != nil {
		return nil, err
	}
	for i := 0; i < target.ColumnCount(); i++ {
		row := []types.Value{types.NewString(target.ColumnName(i)), types.NewString(target.ColumnType(i).String())}
		if err := out.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return out, nil
}
