// Package cli implements seatctl, the operator tool for inspecting layout
// and discount files offline.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Dependencies wires the runtime environment.
type Dependencies struct {
	Version string
	Getenv  func(string) string // defaults to os.Getenv
}

func (d Dependencies) getenv(key string) string {
	if d.Getenv != nil {
		return d.Getenv(key)
	}
	return os.Getenv(key)
}

// NewRootCommand builds the complete command tree.
func NewRootCommand(deps Dependencies) *cobra.Command {
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	root := &cobra.Command{
		Use:           "seatctl",
		Short:         "Normalize seating layouts, count seats and try discount rules.",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.AddCommand(newLayoutCommand())
	root.AddCommand(newDiscountCommand())
	root.AddCommand(newTokenCommand(deps))
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context, args []string, deps Dependencies, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := NewRootCommand(deps)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(stderr, "seatctl: %v\n", err)
		return 1
	}
	return 0
}
