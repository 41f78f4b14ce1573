/*
Package ast implements the abstract syntax tree of the ladon parsing
engine.

AST nodes belong to a closed set of kinds and are arena-allocated, owned
by a Tree whose lifetime is the enclosing Module. The package also hosts
the rule-action layer: actions are identified by a dense integer id and
dispatched through a static table provided by the embedding front-end;
the parser invokes them by id while walking the sorted match tree.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package ast

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ladon.ast'.
func tracer() tracing.Trace {
	return tracing.Select("ladon.ast")
}
