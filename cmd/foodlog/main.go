// Command foodlog is the local command-line client for the food log:
// catalog lookups, meal and activity logging, reports and challenges,
// all against the same SQLite file the server uses.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
