package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brogergvhs/noveld/internal/config"
	"github.com/brogergvhs/noveld/internal/ui"
)

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available configs",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := config.DefaultStore().List()
		if err != nil {
			return fmt.Errorf("cannot read configs directory: %w", err)
		}
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No configs yet. Run `noveld config init` to create one.")
			return nil
		}

		rows := make([][]string, len(list))
		for i, c := range list {
			active := ""
			if c.Active {
				active = "yes"
			}
			rows[i] = []string{c.Label, c.Path, active}
		}

		return ui.WriteTable(cmd.OutOrStdout(), []string{"LABEL", "PATH", "ACTIVE"}, rows)
	},
}

func init() {
	configCmd.AddCommand(configListCmd)
}
