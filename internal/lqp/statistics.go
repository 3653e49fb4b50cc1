package lqp

import "chunkdb/internal/table"

// Stats returns the statistics collaborator for id's output (spec.md §3
// "Statistics ... the core calls it only through the named methods on
// leaves"). StoredTable nodes carry the table's own Statistics, captured
// at build time by the translator; every other kind forwards its left
// child's, since the optimizer layer that would derive new estimates is
// out of scope (spec.md §1 Non-goals).
func (p *Plan) Stats(id NodeID) table.Statistics {
	n := &p.nodes[id]
	if n.Kind == KindStoredTable {
		if n.Stats != nil {
			return n.Stats
		}
		return table.NopStatistics{}
	}
	if n.Left != NoNode {
		return p.Stats(n.Left)
	}
	return table.NopStatistics{}
}

// SetStats attaches a Statistics collaborator to a StoredTable node,
// called by the translator when it resolves the node via the storage
// manager.
func (p *Plan) SetStats(id NodeID, stats table.Statistics) {
	p.nodes[id].Stats = stats
}
