package main

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/sidhilynx/internal/client/cli"
)

func main() {
	if err := cli.NewRootCommand(cli.Options{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
