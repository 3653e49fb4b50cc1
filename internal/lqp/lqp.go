// Package lqp implements the logical query plan (C5): a DAG of nodes with
// up to two children, column provenance, and the concrete node kinds
// spec.md §4.5 lists. Per spec.md §9's Design Notes, the plan is modeled
// as an arena (Plan holding []Node, addressed by NodeID) rather than
// shared or weak pointers, so parent back-edges are plain indices computed
// from stored child links instead of requiring a garbage collector.
package lqp

import (
	"fmt"

	"chunkdb/internal/expr"
	"chunkdb/internal/table"
	"chunkdb/internal/types"
)

// NodeID addresses a node within a Plan's arena. The zero value is never a
// valid id (node 0 is reserved as "no node"); NoNode makes that explicit.
type NodeID uint32

// NoNode is the distinguished "absent" id, returned by ParentOf for roots
// and usable as a child-slot zero value.
const NoNode NodeID = 0

// ColumnOrigin is the stable identity of a column across plan rewrites
// (spec.md §3 "LQP node"): the node that introduced the column and its
// column id within that node's own output.
type ColumnOrigin struct {
	Node   NodeID
	Column int
}

// Expression is the LQP specialization of the shared expression tree
// (spec.md §4.4), carrying ColumnOrigin at its Column leaves.
type Expression = expr.Expression[ColumnOrigin]

// Kind tags the closed set of LQP node kinds (spec.md §4.5).
type Kind uint8

const (
	KindStoredTable Kind = iota
	KindDummyTable
	KindPredicate
	KindProjection
	KindAggregate
	KindJoin
	KindSort
	KindLimit
	KindUnion
	KindValidate
	KindInsert
	KindUpdate
	KindDelete
	KindShow
)

func (k Kind) String() string {
	switch k {
	case KindStoredTable:
		return "StoredTable"
	case KindDummyTable:
		return "DummyTable"
	case KindPredicate:
		return "Predicate"
	case KindProjection:
		return "Projection"
	case KindAggregate:
		return "Aggregate"
	case KindJoin:
		return "Join"
	case KindSort:
		return "Sort"
	case KindLimit:
		return "Limit"
	case KindUnion:
		return "Union"
	case KindValidate:
		return "Validate"
	case KindInsert:
		return "Insert"
	case KindUpdate:
		return "Update"
	case KindDelete:
		return "Delete"
	case KindShow:
		return "Show"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// ScanType is the closed set of Predicate/Join comparison operators
// (spec.md §4.5).
type ScanType uint8

const (
	ScanEq ScanType = iota
	ScanNe
	ScanLt
	ScanLe
	ScanGt
	ScanGe
	ScanLike
	ScanNotLike
	ScanBetween
)

func (s ScanType) String() string {
	switch s {
	case ScanEq:
		return "="
	case ScanNe:
		return "!="
	case ScanLt:
		return "<"
	case ScanLe:
		return "<="
	case ScanGt:
		return ">"
	case ScanGe:
		return ">="
	case ScanLike:
		return "LIKE"
	case ScanNotLike:
		return "NOT LIKE"
	case ScanBetween:
		return "BETWEEN"
	default:
		return fmt.Sprintf("ScanType(%d)", s)
	}
}

// Swap returns the scan type obtained by swapping operand order (spec.md
// §4.6 "Predicate translation": "if it is the right side, swap and remap
// the scan type"). > <-> <, >= <-> <=; = and != are self-inverse, and so
// are Like/NotLike/Between (translate.go never swaps those operators, but
// Swap stays total so callers never need a second check).
func (s ScanType) Swap() ScanType {
	switch s {
	case ScanLt:
		return ScanGt
	case ScanGt:
		return ScanLt
	case ScanLe:
		return ScanGe
	case ScanGe:
		return ScanLe
	default:
		return s
	}
}

// JoinMode is the closed set of join kinds (spec.md §4.5).
type JoinMode uint8

const (
	JoinInner JoinMode = iota
	JoinOuter
	JoinLeft
	JoinRight
	JoinNatural
	JoinCross
)

// SortMode is the sort direction for one Sort key.
type SortMode uint8

const (
	SortAscending SortMode = iota
	SortDescending
)

// SortKey pairs a column with its sort direction (spec.md §4.5 "Sort").
type SortKey struct {
	Column ColumnOrigin
	Mode   SortMode
}

// ShowKind is the closed set of Show targets (spec.md §4.5 "Show").
type ShowKind uint8

const (
	ShowTables ShowKind = iota
	ShowColumns
)

// Node is a single LQP node. Exactly the fields relevant to its Kind are
// populated; callers switch on Kind before reading kind-specific fields.
// Children are stored as NoNode when absent.
type Node struct {
	Kind   Kind
	Left   NodeID
	Right  NodeID
	parent NodeID // 0 (NoNode) if this node is a plan root

	// StoredTable
	TableName string
	Stats     table.Statistics

	// DummyTable: zero columns, DummyRowCount virtual rows (one per
	// `INSERT ... VALUES` tuple, or 1 for a FROM-less SELECT).
	DummyRowCount int

	// Predicate
	PredicateColumn ColumnOrigin
	ScanType        ScanType
	Value           types.ParameterValue // typed value, column reference, or placeholder (spec.md §3)
	Value2          types.Value          // engaged only for Between
	SubPlan         *Plan                // engaged only for an EXISTS/NOT EXISTS predicate
	SubPlanNegate   bool                 // true for NOT EXISTS

	// Projection / Aggregate.Aggregates
	Expressions []*Expression

	// Aggregate
	GroupBy []ColumnOrigin

	// Join
	JoinMode        JoinMode
	JoinLeftOrigin  ColumnOrigin
	JoinRightOrigin ColumnOrigin
	JoinScanType    ScanType

	// Sort
	SortKeys []SortKey

	// Limit
	Limit  int64
	Offset int64

	// Insert/Update/Delete
	TargetTable string
	Assignments []*Expression // Update: width-matching projection list

	// Show
	Show     ShowKind
	ShowName string

	names []string
}

// Plan is the arena: node 0 is reserved (NoNode); real nodes start at id 1.
type Plan struct {
	nodes []Node
	roots []NodeID
}

// NewPlan returns an empty plan.
func NewPlan() *Plan {
	return &Plan{nodes: make([]Node, 1)} // index 0 reserved
}

// addNode appends a node and returns its id.
func (p *Plan) addNode(n Node) NodeID {
	id := NodeID(len(p.nodes))
	p.nodes = append(p.nodes, n)
	return id
}

// Node returns a pointer to the node addressed by id, for in-place field
// population after construction (e.g. setting Expressions on a
// freshly-added Projection node).
func (p *Plan) Node(id NodeID) *Node {
	return &p.nodes[id]
}

// SetLeft sets id's left child, updating both the child pointer and the
// child's parent back-edge (spec.md §3 "Setting a child sets the parent
// back-pointer; clearing resets it").
func (p *Plan) SetLeft(id, child NodeID) {
	if old := p.nodes[id].Left; old != NoNode {
		p.nodes[old].parent = NoNode
	}
	p.nodes[id].Left = child
	if child != NoNode {
		p.nodes[child].parent = id
	}
}

// SetRight is SetLeft's counterpart for the right child.
func (p *Plan) SetRight(id, child NodeID) {
	if old := p.nodes[id].Right; old != NoNode {
		p.nodes[old].parent = NoNode
	}
	p.nodes[id].Right = child
	if child != NoNode {
		p.nodes[child].parent = id
	}
}

// ParentOf returns id's parent, or (NoNode, false) if id is a root.
func (p *Plan) ParentOf(id NodeID) (NodeID, bool) {
	parent := p.nodes[id].parent
	return parent, parent != NoNode
}

// AddRoot registers id as one of the plan's output roots (a plan built for
// a single statement normally has exactly one).
func (p *Plan) AddRoot(id NodeID) {
	p.roots = append(p.roots, id)
}

// Roots returns the plan's registered root node ids.
func (p *Plan) Roots() []NodeID {
	return append([]NodeID(nil), p.roots...)
}

// NewStoredTable creates a StoredTable leaf node.
func (p *Plan) NewStoredTable(tableName string, columnNames []string) NodeID {
	return p.addNode(Node{Kind: KindStoredTable, TableName: tableName, names: append([]string(nil), columnNames...)})
}

// NewDummyTable creates a zero-column DummyTable leaf (spec.md §4.5), the
// placeholder source for `INSERT ... VALUES` and FROM-less SELECTs.
// rowCount is the number of virtual rows it offers (the number of VALUES
// tuples, or 1 for `SELECT <expr-list>` with no FROM).
func (p *Plan) NewDummyTable(rowCount int) NodeID {
	return p.addNode(Node{Kind: KindDummyTable, DummyRowCount: rowCount})
}

// NewPredicate creates a Predicate scan node over child. value2 is only
// meaningful when scanType is ScanBetween.
func (p *Plan) NewPredicate(child NodeID, column ColumnOrigin, scanType ScanType, value types.ParameterValue, value2 types.Value) NodeID {
	id := p.addNode(Node{Kind: KindPredicate, PredicateColumn: column, ScanType: scanType, Value: value, Value2: value2})
	p.SetLeft(id, child)
	return id
}

// NewExistsPredicate creates a Predicate node whose value is a nested
// sub-plan evaluated as a semi-join existence check, the EXISTS/NOT EXISTS
// translation SPEC_FULL.md adds (the distilled spec names Exists as a
// Logical expression kind but never wires a translation path for it).
func (p *Plan) NewExistsPredicate(child NodeID, subPlan *Plan, negate bool) NodeID {
	id := p.addNode(Node{Kind: KindPredicate, ScanType: ScanEq, SubPlan: subPlan, SubPlanNegate: negate})
	p.SetLeft(id, child)
	return id
}

// NewProjection creates a Projection node with the given ordered
// expression list; output column names are each expression's alias or a
// derived name (spec.md §4.5).
func (p *Plan) NewProjection(child NodeID, expressions []*Expression) NodeID {
	id := p.addNode(Node{Kind: KindProjection, Expressions: expressions})
	p.SetLeft(id, child)
	return id
}

// NewAggregate creates an Aggregate node: group-by columns first, then
// aggregate expressions, in the node's output order (spec.md §4.5).
func (p *Plan) NewAggregate(child NodeID, aggregates []*Expression, groupBy []ColumnOrigin) NodeID {
	id := p.addNode(Node{Kind: KindAggregate, Expressions: aggregates, GroupBy: append([]ColumnOrigin(nil), groupBy...)})
	p.SetLeft(id, child)
	return id
}

// NewJoin creates a Join node. For Natural and Cross joins, leftOrigin/
// rightOrigin/scanType are ignored.
func (p *Plan) NewJoin(left, right NodeID, mode JoinMode, leftOrigin, rightOrigin ColumnOrigin, scanType ScanType) NodeID {
	id := p.addNode(Node{Kind: KindJoin, JoinMode: mode, JoinLeftOrigin: leftOrigin, JoinRightOrigin: rightOrigin, JoinScanType: scanType})
	p.SetLeft(id, left)
	p.SetRight(id, right)
	return id
}

// NewSort creates a Sort node with the given stable-order key list.
func (p *Plan) NewSort(child NodeID, keys []SortKey) NodeID {
	id := p.addNode(Node{Kind: KindSort, SortKeys: append([]SortKey(nil), keys...)})
	p.SetLeft(id, child)
	return id
}

// NewLimit creates a Limit node.
func (p *Plan) NewLimit(child NodeID, limit, offset int64) NodeID {
	id := p.addNode(Node{Kind: KindLimit, Limit: limit, Offset: offset})
	p.SetLeft(id, child)
	return id
}

// NewUnion creates a Positions-mode Union node over two inputs of
// identical schema (spec.md §4.5).
func (p *Plan) NewUnion(left, right NodeID) NodeID {
	id := p.addNode(Node{Kind: KindUnion})
	p.SetLeft(id, left)
	p.SetRight(id, right)
	return id
}

// NewValidate creates a Validate node, the MVCC-style read filter
// (spec.md §4.5).
func (p *Plan) NewValidate(child NodeID) NodeID {
	id := p.addNode(Node{Kind: KindValidate})
	p.SetLeft(id, child)
	return id
}

// NewInsert creates an Insert node targeting targetTable.
func (p *Plan) NewInsert(source NodeID, targetTable string) NodeID {
	id := p.addNode(Node{Kind: KindInsert, TargetTable: targetTable})
	p.SetLeft(id, source)
	return id
}

// NewUpdate creates an Update node with a full, width-matching assignment
// list (spec.md §4.5).
func (p *Plan) NewUpdate(source NodeID, targetTable string, assignments []*Expression) NodeID {
	id := p.addNode(Node{Kind: KindUpdate, TargetTable: targetTable, Assignments: assignments})
	p.SetLeft(id, source)
	return id
}

// NewDelete creates a Delete node.
func (p *Plan) NewDelete(source NodeID, targetTable string) NodeID {
	id := p.addNode(Node{Kind: KindDelete, TargetTable: targetTable})
	p.SetLeft(id, source)
	return id
}

// NewShow creates a Show node.
func (p *Plan) NewShow(kind ShowKind, name string) NodeID {
	return p.addNode(Node{Kind: KindShow, Show: kind, ShowName: name})
}
