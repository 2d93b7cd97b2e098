package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/recera/nodeflow/pkg/editor"
	"github.com/recera/nodeflow/pkg/palette"
)

var (
	brand  = color.New(color.FgHiCyan, color.Bold)
	subtle = color.New(color.FgHiBlack)
)

func newCatalogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog [query]",
		Short: "List the nodes the palette offers",
		Long: `Prints the palette catalog grouped the way the editor shows it. A query
filters by label, group or id, case-insensitively.

  nodeflow catalog          # everything
  nodeflow catalog list     # the list constants`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			cat := editor.New(nil).Palette().Catalog()
			printRows(cmd.OutOrStdout(), palette.BuildRows(cat.Filter(query)))
			return nil
		},
	}
}

func printRows(w io.Writer, rows []palette.Row) {
	for _, row := range rows {
		switch row.Kind {
		case palette.RowGroup:
			fmt.Fprintf(w, "%s\n", brand.Sprint(strings.ToUpper(row.Group)))
		case palette.RowEmpty:
			fmt.Fprintf(w, "  %s\n", subtle.Sprint(palette.NoMatches))
		case palette.RowItem:
			fmt.Fprintf(w, "  %-14s %-16s %s\n", row.Item.ID, row.Item.Label, subtle.Sprint(row.Item.Badge))
		}
	}
}
