package flowbuilder

import _ "embed"

// Version is the release of the flow builder, embedded from the VERSION file.
//
//go:embed VERSION
var Version string
