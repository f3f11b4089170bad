// Package main is the entry point for the buying-list server.
package main

import (
	"os"

	"github.com/donaldgifford/buying-list/cmd/buying-list/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
