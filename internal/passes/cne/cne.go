// Package cne implements common-node elimination (C8): congruence
// closure over node outputs, redirecting every congruent duplicate's
// users to the one surviving representative (the smallest creation
// index). Grounded on a reference CommonSubexpressionElimination pass,
// generalized from "dedupe one hardcoded instruction kind within a basic
// block" to full congruence closure over regions. A merged duplicate is
// left in place with no users; a subsequent dead-node-elimination pass
// physically removes it, leaving two nodes where there were three.
package cne

import "jlmgo/internal/rvsdg"

type Pass struct{}

func (Pass) Name() string { return "common-node-elimination" }

func (Pass) Description() string {
	return "merges nodes with congruent operations and congruent operands"
}

func (Pass) Run(g *rvsdg.Graph) bool {
	nodes := allNodes(g.Root(), nil)
	if len(nodes) < 2 {
		return false
	}
	classOf := refine(nodes)

	buckets := map[uint64][]*rvsdg.Node{}
	for _, n := range nodes {
		cls := classOf[n]
		buckets[cls] = append(buckets[cls], n)
	}

	changed := false
	for _, members := range buckets {
		if len(members) < 2 {
			continue
		}
		rep := members[0]
		for _, m := range members[1:] {
			if m.ID() < rep.ID() {
				rep = m
			}
		}
		for _, m := range members {
			if m == rep {
				continue
			}
			for i := 0; i < m.NOutputs(); i++ {
				if len(m.Output(i).Users()) == 0 {
					continue
				}
				g.DivertUsers(m.Output(i), rep.Output(i))
				changed = true
			}
		}
	}
	return changed
}
