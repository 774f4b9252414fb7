package cmd

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/brogergvhs/noveld/internal/config"
)

var configSwitchCmd = &cobra.Command{
	Use:   "switch [label]",
	Short: "Switch to a different configuration profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := config.DefaultStore()

		var label string
		if len(args) == 1 {
			label = args[0]
		} else {
			picked, err := pickConfig(store, "Select config")
			if err != nil {
				return err
			}
			label = picked
		}

		if err := store.Switch(label); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Switched to:", label)
		return nil
	},
}

// pickConfig lets the user choose a profile interactively.
func pickConfig(store *config.Store, label string) (string, error) {
	list, err := store.List()
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "", errors.New("no configs available")
	}

	items := make([]string, len(list))
	for i, c := range list {
		items[i] = c.Label
		if c.Active {
			items[i] += "  (active)"
		}
	}

	prompt := promptui.Select{
		Label: label,
		Items: items,
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return "", errors.New("selection cancelled")
	}

	return list[idx].Label, nil
}

func init() {
	configCmd.AddCommand(configSwitchCmd)
}
