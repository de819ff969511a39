package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/KaramelBytes/datadeck/internal/utils"
)

// outputOptions control how a command result is rendered and where it goes.
type outputOptions struct {
	Format     string // md | json | yaml
	OutputPath string
	Quiet      bool
	Writer     io.Writer
}

// render encodes v in the requested format. markdown supplies the md form;
// nil means md is not offered for this result.
func render(format string, v any, markdown func() string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "md", "markdown":
		if markdown == nil {
			return nil, fmt.Errorf("unsupported --format: %s (use json|yaml)", format)
		}
		return []byte(markdown()), nil
	case "json":
		return utils.PrettyJSON(v)
	case "yaml", "yml":
		return utils.YAML(v)
	}
	if markdown == nil {
		return nil, fmt.Errorf("unsupported --format: %s (use json|yaml)", format)
	}
	return nil, fmt.Errorf("unsupported --format: %s (use md|json|yaml)", format)
}

// writeOutput prints the rendered result, or saves it when OutputPath is set.
func writeOutput(v any, markdown func() string, opts outputOptions) error {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	b, err := render(opts.Format, v, markdown)
	if err != nil {
		return err
	}
	if opts.OutputPath == "" {
		fmt.Fprintln(w, strings.TrimRight(string(b), "\n"))
		return nil
	}
	if err := utils.SafeWriteFile(opts.OutputPath, b); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if !opts.Quiet {
		fmt.Fprintf(w, "✓ Wrote %s\n", opts.OutputPath)
	}
	return nil
}
