package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tngrm/tngrm/internal/config"
)

func newPiecesCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "pieces",
		Short: "Print the piece templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			table, err := cfg.LoadPieces()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCOLOR\tVERTICES\tPIVOT")
			for _, id := range table.IDs() {
				tpl := table.MustLookup(id)
				p := tpl.ScaledPivot()
				fmt.Fprintf(w, "%s\t%s\t%d\t(%g, %g)\n", tpl.ID(), tpl.Color(), tpl.VertexCount(), p.X, p.Y)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	return cmd
}
