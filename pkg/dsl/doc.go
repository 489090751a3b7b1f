/*
Package dsl provides a fluent Go builder for programmatically constructing
node graphs.

It lets developers wire scenes in type-checked Go instead of loading a saved
document, which is useful for generated graphs, examples, and tests. Problems
are collected while declaring and reported together by Build, so a graph
definition reads straight through without per-call error handling.

Example usage:

	b := dsl.New(reg)

	b.Node("src", "number-source").At(40, 80)
	b.Node("dst", "text-display").At(320, 80)
	b.Connect("src", 0, "dst", 0)

	sc, err := b.Build()
	if err != nil {
		// every declaration problem, joined
	}
*/
package dsl
