// Package main generates a single markdown reference of every n8nctl command.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/n8n-self-host/n8n-gcp/cmd/n8nctl/cmd"
	"github.com/n8n-self-host/n8n-gcp/internal/constants"
)

func main() {
	var outFile string
	flag.StringVar(&outFile, "out", "./docs/CLI.md", "output file for generated markdown")
	flag.Parse()

	if outFile == "" {
		log.Fatal("error: output file is required")
	}

	if err := writeFile(outFile); err != nil {
		log.Fatalf("error: %s", err)
	}
	log.Printf("generated CLI documentation in %s", outFile)
}

func writeFile(outFile string) error {
	if err := os.MkdirAll(filepath.Dir(outFile), 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	var buf bytes.Buffer
	root := cmd.RootCmd()
	root.DisableAutoGenTag = true

	fmt.Fprintf(&buf, "# %s CLI reference\n\n", constants.CLIName)
	if err := writeCommand(&buf, root, 2); err != nil {
		return err
	}

	return os.WriteFile(filepath.Clean(outFile), buf.Bytes(), 0o600)
}

// writeCommand writes the heading, descriptions and options of c, then recurses into its
// subcommands in name order.
func writeCommand(w io.Writer, c *cobra.Command, level int) error {
	if !c.IsAvailableCommand() && c.HasParent() {
		return nil
	}

	fmt.Fprintf(w, "%s %s\n\n", strings.Repeat("#", min(level, 6)), c.CommandPath())
	if c.Short != "" {
		fmt.Fprintf(w, "%s\n\n", c.Short)
	}
	if c.Long != "" && c.Long != c.Short {
		fmt.Fprintf(w, "%s\n\n", c.Long)
	}

	var generated bytes.Buffer
	if err := doc.GenMarkdown(c, &generated); err != nil {
		return fmt.Errorf("generating markdown for %s: %w", c.CommandPath(), err)
	}
	if options := optionsSection(generated.String()); options != "" {
		fmt.Fprintf(w, "%s\n\n", options)
	}

	subcommands := c.Commands()
	slices.SortFunc(subcommands, func(a, b *cobra.Command) int {
		return strings.Compare(a.Name(), b.Name())
	})
	for _, sub := range subcommands {
		if err := writeCommand(w, sub, level+1); err != nil {
			return err
		}
	}
	return nil
}

// optionsSection extracts the "### Options" block of cobra's generated markdown.
func optionsSection(markdown string) string {
	_, rest, ok := strings.Cut(markdown, "### Options")
	if !ok {
		return ""
	}
	for _, marker := range []string{"### Options inherited", "### SEE ALSO"} {
		if before, _, found := strings.Cut(rest, marker); found {
			rest = before
		}
	}
	return "**Options**" + strings.TrimRight(rest, "\n")
}
