// Picopala: plan validation and wave scheduling for parallel agent teams.
//
// Usage:
//
//	picopala validate plan.md     # Check fields and the dependency graph
//	picopala waves plan.md        # Print the parallel execution waves
//	picopala serve                # Start the MCP server (stdio transport)
package main

import (
	"os"

	"github.com/JairoTorregrosa/picopala/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
