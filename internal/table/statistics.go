package table

import "chunkdb/internal/types"

// ColumnStatistics summarizes one column: distinct-value count and
// observed bounds (spec.md §3 "Statistics").
type ColumnStatistics struct {
	Distinct int
	Min, Max types.Value
}

// Statistics is the external collaborator spec.md §3/§6 describes: the core
// calls it only through these methods and never reaches inside. Populating
// it is the optimizer layer's job, out of scope here (spec.md §1).
type Statistics interface {
	RowCount() int
	ColumnStats(columnID int) ColumnStatistics
}

// NopStatistics is the zero-value Statistics implementation installed on
// every table until an optimizer layer supplies a real one.
type NopStatistics struct{}

func (NopStatistics) RowCount() int                            { return 0 }
func (NopStatistics) ColumnStats(int) ColumnStatistics { return ColumnStatistics{} }

var _ Statistics = NopStatistics{}
