/*
Package ladon is a table-driven top-down parsing engine.

Ladon parses token streams against a grammar given as a set of precomputed
rule tables, and supports direct and indirect left recursion by iterating
rule groups to a fixed point. The engine is language-agnostic: the grammar
of any target source language is supplied as rule tables, and the same
driver parses any such grammar. Package structure is as follows:

■ rules: Package rules holds the in-memory grammar model — rule tables,
lookahead sets and the left-recursion descriptors — together with a builder
for assembling grammars and the offline analyses feeding the parser.

■ scanner: Package scanner defines the tokenizer interface consumed by the
parser, with a default implementation over text/scanner and an adapter for
lexmachine.

■ parser: Package parser implements the matching engine: the memoised
rule-table traversal, the recursion engine, and the sort-out/simplify/build
pipeline which reduces the ambiguous match record to a single AST.

■ ast: Package ast defines the abstract syntax tree node set, the module
collection, and the rule-action layer invoked during AST construction.

The base package contains data types which are used throughout all the
other packages.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package ladon
