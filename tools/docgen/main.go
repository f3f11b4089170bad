// Package main generates reference documentation for both command trees:
// the bl client and the buying-list server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	client "github.com/donaldgifford/buying-list/cmd/bl/cmd"
	server "github.com/donaldgifford/buying-list/cmd/buying-list/cmd"
)

func main() {
	output := flag.String("output", "docs/cli", "output directory")
	format := flag.String("format", "markdown", "markdown or man")
	flag.Parse()

	trees := map[string]*cobra.Command{
		"bl":          client.Root(),
		"buying-list": server.Root(),
	}

	for name, root := range trees {
		dir := filepath.Join(*output, name)
		if err := generate(root, dir, *format); err != nil {
			log.Fatalf("generating %s docs: %v", name, err)
		}
		fmt.Printf("%s docs generated in %s/\n", name, dir)
	}
}

func generate(root *cobra.Command, dir, format string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	root.DisableAutoGenTag = true

	switch format {
	case "markdown":
		return doc.GenMarkdownTree(root, dir)
	case "man":
		return doc.GenManTree(root, &doc.GenManHeader{Section: "1", Source: "buying-list"}, dir)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
