package cmd

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/brogergvhs/noveld/internal/config"
)

var forceRemove bool

var configRemoveCmd = &cobra.Command{
	Use:   "remove [label]",
	Short: "Remove a config profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := config.DefaultStore()
		out := cmd.OutOrStdout()

		var label string
		if len(args) == 1 {
			label = args[0]
		} else {
			picked, err := pickConfig(store, "Select config to remove")
			if err != nil {
				return err
			}
			label = picked
		}

		active, _ := store.CurrentLabel()
		if label == active && !forceRemove {
			prompt := promptui.Prompt{
				Label:     fmt.Sprintf("Config %q is currently active. Remove it anyway", label),
				IsConfirm: true,
			}
			if _, err := prompt.Run(); err != nil {
				fmt.Fprintln(out, "Aborted.")
				return nil
			}
		}

		if err := store.Remove(label); err != nil {
			return err
		}

		fmt.Fprintf(out, "Removed configuration %q\n", label)
		return nil
	},
}

func init() {
	configRemoveCmd.Flags().BoolVarP(&forceRemove, "force", "f", false, "remove without confirmation")
	configCmd.AddCommand(configRemoveCmd)
}
