// Command authctl administers the auth store: schema migrations, user
// provisioning, device listing and revocation, and session revocation.
package main

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/sidhilynx/internal/server/repositories/repomanager"
)

func main() {
	root := newRootCommand(rootOptions{open: repomanager.Open})
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
