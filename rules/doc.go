/*
Package rules implements the grammar model for the ladon parsing engine.

A grammar is a set of immutable rule tables. Each table has a kind which
determines how its children compose (OneOf, Concat, ZeroOrMore, ZeroOrOne,
Data), a dense index, a property bit-set and an ordered list of rule
actions consumed during AST construction.

Building a Grammar

Grammars are specified using a grammar builder object. Clients add rules,
consisting of references to other rules and of terminal lexemes. Example:

    b := rules.NewGrammarBuilder("Expressions")
    b.OneOf("Add").N("Id").N("AddMore").End()        // Add  : Id | AddMore
    b.Concat("AddMore").N("Add").T("+").N("Id").End()// AddMore : Add '+' Id
    b.Data("Id").Ident().End()                       // Id   : Identifier
    g, err := b.Grammar()

Top rules carry the Top property (RuleBuilder.Top()), OneOf rules which
take the first matching alternative carry Single.

Static Grammar Analysis

Grammar() runs the offline analyses the parser feeds on: lookahead sets
per table, and the left-recursion descriptors — rule groups containing
cycles, the designated lead node per recursion, the FronNodes of each
circle and the LeadFronNodes of each lead. The analyses correspond to
what a generator would precompute at build time; the parser treats their
results as read-only.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package rules

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ladon.rules'.
func tracer() tracing.Trace {
	return tracing.Select("ladon.rules")
}
