package espalier

import _ "embed"

// Version is the current release of the library, embedded from version.txt
// so release tooling can bump it without touching Go sources. It carries the
// file's trailing newline; trim before displaying.
//
//go:embed version.txt
var Version string
