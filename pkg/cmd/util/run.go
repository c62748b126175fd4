package util

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type RunFunc func(ctx context.Context, env *Env, args []string) error

// WithEnv creates the services before fn is called and releases them afterwards.
func WithEnv(fn RunFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		env, err := NewEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()
		return fn(ctx, env, args)
	}
}

// PrintTable writes tab aligned rows to w
func PrintTable(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
