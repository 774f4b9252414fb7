package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/brogergvhs/noveld/internal/config"
)

var flagInitYes bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the Default config and make it active",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := config.DefaultStore()
		out := cmd.OutOrStdout()
		path := store.Path(config.DefaultLabel)

		if _, err := os.Stat(path); err == nil {
			fmt.Fprintln(out, "Configuration already exists at:")
			fmt.Fprintln(out, "  ", path)
			return nil
		}

		fmt.Fprintln(out, "Default configuration:")
		config.DefaultConfig().Print(out)
		fmt.Fprintln(out)

		if !flagInitYes {
			prompt := promptui.Prompt{
				Label:     fmt.Sprintf("Create Default config at %s", path),
				IsConfirm: true,
			}
			if _, err := prompt.Run(); err != nil {
				fmt.Fprintln(out, "Aborted.")
				return nil
			}
		}

		created, err := store.Init()
		if err != nil && !errors.Is(err, os.ErrExist) {
			return fmt.Errorf("failed to create config: %w", err)
		}

		fmt.Fprintln(out, "Config created at:", created)
		fmt.Fprintln(out, "This config is now active (label: Default).")
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&flagInitYes, "yes", "y", false, "do not ask for confirmation")
	configCmd.AddCommand(configInitCmd)
}
