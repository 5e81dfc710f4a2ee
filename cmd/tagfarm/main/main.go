package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/tagfarm/cmd/tagfarm"
)

func main() {
	rootCmd := tagfarm.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
