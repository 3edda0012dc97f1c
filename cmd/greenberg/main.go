// Package main provides the greenberg CLI: evaluate typological universals
// over a language feature table and report where violations fall.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
