// Package main provides the entry point for the seoulmate CLI.
package main

import (
	"os"

	"github.com/hanbit/seoulmate/cmd/seoulmate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
