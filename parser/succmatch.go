package parser

import (
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
)

// succMatch is the per-rule memo of successful matches. It is a two-level
// structure: keyed by start token, each entry holds the appeal nodes which
// succeeded there, the ordered set of end positions, and a done flag. A
// done entry is frozen — the fixed point has been reached and no further
// matches are admissible.
//
// Clients locate an entry first and then operate on the returned handle;
// there is no hidden located-key state.
type succMatch struct {
	entries map[int]*succEntry
}

type succEntry struct {
	start   int
	nodes   []*appealNode
	matches *treeset.Set // end token indices, ascending
	isDone  bool
}

func newSuccMatch() *succMatch {
	return &succMatch{entries: make(map[int]*succEntry)}
}

// locate returns the entry for a start token, nil if the rule never
// succeeded there.
func (s *succMatch) locate(start int) *succEntry {
	return s.entries[start]
}

// entry returns the entry for a start token, creating it on first use.
func (s *succMatch) entry(start int) *succEntry {
	if e, ok := s.entries[start]; ok {
		return e
	}
	e := &succEntry{start: start, matches: treeset.NewWith(utils.IntComparator)}
	s.entries[start] = e
	return e
}

func (s *succMatch) clear() {
	s.entries = make(map[int]*succEntry)
}

// addNode records an appeal node which succeeded at the entry's start.
func (e *succEntry) addNode(n *appealNode) {
	for _, have := range e.nodes {
		if have == n {
			return
		}
	}
	e.nodes = append(e.nodes, n)
}

func (e *succEntry) removeNode(n *appealNode) {
	for i, have := range e.nodes {
		if have == n {
			e.nodes = append(e.nodes[:i], e.nodes[i+1:]...)
			return
		}
	}
}

// addMatch records an end position. Ends < start-1 violate the data
// model ('start-1' means the rule matched nothing); a done entry is
// frozen — re-recording known ends is tolerated, new ones are not.
func (e *succEntry) addMatch(m int) {
	must(m >= e.start-1, "end %d before start %d", m, e.start)
	if e.isDone {
		must(e.matches.Contains(m), "new match %d on a done entry", m)
		return
	}
	e.matches.Add(m)
}

func (e *succEntry) hasMatch(m int) bool {
	return e.matches.Contains(m)
}

func (e *succEntry) matchCount() int {
	return e.matches.Size()
}

// matchSlice returns the end positions in ascending order.
func (e *succEntry) matchSlice() []int {
	vals := e.matches.Values()
	ends := make([]int, len(vals))
	for i, v := range vals {
		ends[i] = v.(int)
	}
	return ends
}

// longest returns the largest recorded end position.
func (e *succEntry) longest() int {
	must(e.matches.Size() > 0, "no matches recorded")
	vals := e.matches.Values()
	return vals[len(vals)-1].(int)
}

func (e *succEntry) markDone() { e.isDone = true }
func (e *succEntry) done() bool { return e.isDone }
