// Package main is the entry point for the bl CLI client.
package main

import (
	"github.com/donaldgifford/buying-list/cmd/bl/cmd"
)

func main() {
	cmd.Execute()
}
