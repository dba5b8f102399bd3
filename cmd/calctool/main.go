// Command calctool analyzes single-variable functions: limits and
// continuity, derivatives and tangents, critical points, and definite
// integrals with Riemann sums.
//
// Usage:
//
//	calctool analyze "sin(x)/x" --mode limit --point 0
//	calctool serve --config calctool.yaml
//	calctool schema
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
