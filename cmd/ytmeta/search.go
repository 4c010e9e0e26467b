package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/famomatic/ytmeta/internal/types"
)

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search videos and list the top results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.buildClient(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			results, err := c.Search(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if limit > 0 && len(results) > limit {
				results = results[:limit]
			}
			fmt.Fprint(cmd.OutOrStdout(), renderSearchTable(results))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum results to print")

	return cmd
}

const searchRowLayout = "%-11s  %-52s  %-24s  %8s  %14s"

func renderSearchTable(results []types.SearchResult) string {
	if len(results) == 0 {
		return dimStyle.Render("no results") + "\n"
	}
	var b strings.Builder
	header := fmt.Sprintf(searchRowLayout, "VIDEO ID", "TITLE", "CHANNEL", "LENGTH", "VIEWS")
	b.WriteString(headerStyle.Render(strings.TrimRight(header, " ")) + "\n")
	for _, r := range results {
		row := fmt.Sprintf(searchRowLayout,
			r.VideoID,
			truncate(r.Title, 52),
			truncate(r.Author, 24),
			orDash(r.LengthText),
			orDash(r.ViewCountText),
		)
		b.WriteString(strings.TrimRight(row, " ") + "\n")
	}
	return b.String()
}
