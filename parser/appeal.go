package parser

import (
	"fmt"

	"github.com/npillmayer/ladon"
	"github.com/npillmayer/ladon/ast"
	"github.com/npillmayer/ladon/rules"
)

// status records the outcome of one rule-table (or token) attempt.
type status int8

const (
	statusNA status = iota
	succ
	succWasSucc      // satisfied from the match cache, no descent
	succStillWasSucc // re-traversal did not exceed the cached longest end
	failWasFailed
	failChildrenFailed
	failLookAhead
	failNotIdentifier
	failNotLiteral
	fail2ndOf1stInstance
)

func (s status) isSucc() bool {
	return s == succ || s == succWasSucc || s == succStillWasSucc
}

func (s status) String() string {
	switch s {
	case succ:
		return "succ"
	case succWasSucc:
		return "succ@WasSucc"
	case succStillWasSucc:
		return "succ@StillWasSucc"
	case failWasFailed:
		return "fail@WasFailed"
	case failChildrenFailed:
		return "fail@ChildrenFailed"
	case failLookAhead:
		return "fail@LookAhead"
	case failNotIdentifier:
		return "fail@NotIdentifier"
	case failNotLiteral:
		return "fail@NotLiteral"
	case fail2ndOf1stInstance:
		return "fail@2ndOf1st"
	}
	return "NA"
}

// appealNode records one attempt to match one rule table (or one token)
// at some token index. The nodes of one top-level parse form the appeal
// tree; they are owned by the per-construct arena and discarded together.
// Parent links are weak.
type appealNode struct {
	table  *rules.Table // either table or token is set
	token  *ladon.Token
	start  int
	matches []int // end token indices, deduplicated
	status status

	parent          *appealNode
	children        []*appealNode // all attempts made below this node
	sortedChildren  []*appealNode // post-sort selection, one winning path
	finalMatch      int           // chosen end index after sort-out
	sorted          bool
	simplifiedIndex int // original slot index recorded by edge shrinking

	astNode *ast.Node
}

func (n *appealNode) isTable() bool { return n.table != nil && n.token == nil }
func (n *appealNode) isToken() bool { return n.token != nil }
func (n *appealNode) isSucc() bool  { return n.status.isSucc() }
func (n *appealNode) isFail() bool  { return n.status != statusNA && !n.status.isSucc() }

// setToken turns the node into a token leaf. Used by the Identifier and
// Literal pseudo tables, whose appeal nodes carry the matched token.
func (n *appealNode) setToken(t *ladon.Token) {
	n.token = t
	n.table = nil
}

func (n *appealNode) addChild(c *appealNode) {
	n.children = append(n.children, c)
}

func (n *appealNode) addSortedChild(c *appealNode) {
	n.sortedChildren = append(n.sortedChildren, c)
}

func (n *appealNode) findMatch(m int) bool {
	for _, have := range n.matches {
		if have == m {
			return true
		}
	}
	return false
}

func (n *appealNode) addMatch(m int) {
	if !n.findMatch(m) {
		n.matches = append(n.matches, m)
	}
}

func (n *appealNode) matchCount() int { return len(n.matches) }

func (n *appealNode) longestMatch() int {
	must(len(n.matches) > 0, "longestMatch on node without matches")
	longest := n.matches[0]
	for _, m := range n.matches[1:] {
		if m > longest {
			longest = m
		}
	}
	return longest
}

// descendantOf returns true if parent is an ancestor of n.
func (n *appealNode) descendantOf(parent *appealNode) bool {
	for node := n.parent; node != nil; node = node.parent {
		if node == parent {
			return true
		}
	}
	return false
}

// replaceSortedChild swaps a sorted child for a replacement node. Used by
// edge shrinking.
func (n *appealNode) replaceSortedChild(existing, replacement *appealNode) {
	for i, c := range n.sortedChildren {
		if c == existing {
			n.sortedChildren[i] = replacement
			replacement.parent = n
			return
		}
	}
	must(false, "replaceSortedChild could not find existing node")
}

// sortedChildIndex returns the 1-based grammar slot index of a child, by
// looking into the node's rule table. Edge shrinking may have recorded an
// index on the child already.
func (n *appealNode) sortedChildIndex(g *rules.Grammar, child *appealNode) (int, bool) {
	must(n.isTable(), "parent node is not a rule table")
	if child.simplifiedIndex != 0 {
		return child.simplifiedIndex, true
	}
	for i, data := range n.table.Children {
		if data.Tok != nil {
			if child.isToken() && child.token == data.Tok {
				return i + 1, true
			}
			continue
		}
		switch data.Sub {
		case g.Identifier():
			if child.isToken() && child.token.IsIdentifier() {
				return i + 1, true
			}
		case g.Literal():
			if child.isToken() && child.token.IsLiteral() {
				return i + 1, true
			}
		default:
			if child.isTable() && child.table == data.Sub {
				return i + 1, true
			}
		}
	}
	return 0, false
}

// sortedChildByIndex finds the sorted child sitting in the 1-based
// grammar slot index, nil if the slot has none.
func (n *appealNode) sortedChildByIndex(g *rules.Grammar, index int) *appealNode {
	for _, child := range n.sortedChildren {
		if id, ok := n.sortedChildIndex(g, child); ok && id == index {
			return child
		}
	}
	return nil
}

// findSpecChild looks for an un-sorted child matching a grammar slot and
// an end position. There could be multiple; the first good one wins.
func (n *appealNode) findSpecChild(g *rules.Grammar, data rules.Child, match int) *appealNode {
	for _, child := range n.children {
		if !child.isSucc() || !child.findMatch(match) {
			continue
		}
		if data.Tok != nil {
			if child.isToken() && child.token == data.Tok {
				return child
			}
			continue
		}
		switch data.Sub {
		case g.Identifier(), g.Literal():
			// the pseudo leaves leave token nodes behind
			if child.isToken() {
				return child
			}
		default:
			if child.isTable() && child.table == data.Sub {
				return child
			}
		}
	}
	return nil
}

func (n *appealNode) String() string {
	if n.isToken() {
		return fmt.Sprintf("token:%v@%d", n.token, n.start)
	}
	if n.table != nil {
		return fmt.Sprintf("%s@%d[%s]", n.table.Name, n.start, n.status)
	}
	return "pseudo-root"
}
