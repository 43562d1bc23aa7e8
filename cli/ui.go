package cli

import (
	"book-catalog/tui"

	"github.com/spf13/cobra"
)

func newUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the full-screen catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(cmd.Context(), a.mgr, a.cfg.Database.QueryTimeout)
		},
	}
}
