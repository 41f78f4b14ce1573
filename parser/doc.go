/*
Package parser implements the matching engine of ladon.

The parser matches a token stream against the rule tables of a grammar.
Matching is a memoised traversal of the tables: for every (rule, start
token) pair the engine records the set of end positions at which the rule
succeeds, and every attempt is logged as a node of the appeal tree. Rule
groups containing left-recursive cycles are matched by fixed-point
iteration (see leadnode.go). After matching, the ambiguous appeal tree is
reduced to a single parse tree (sortout.go), cache-satisfied subtrees are
patched in and chainless edges collapsed (simplify.go), and finally the
rule actions attached to the tables synthesize the AST (astbuild.go).

A Parser processes one file, single-threaded. Per top-level construct the
match caches, the appeal arena and the token buffer are reset; the ASTs
survive in the module collection.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package parser

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ladon.parser'.
func tracer() tracing.Trace {
	return tracing.Select("ladon.parser")
}
