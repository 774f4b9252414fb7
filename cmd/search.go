package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brogergvhs/noveld/internal/config"
	"github.com/brogergvhs/noveld/internal/ui"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the catalog and list matching novels",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(config.Options{})
		if err != nil {
			return err
		}

		log := ui.NewLogger(cfg.Debug)
		cat, err := newCatalog(cfg, log)
		if err != nil {
			return err
		}

		query := strings.Join(args, " ")
		records, err := cat.Search(cmd.Context(), query)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintf(out, "No results for %q.\n", query)
			return nil
		}

		rows := make([][]string, len(records))
		for i, r := range records {
			rows[i] = []string{r.Title, r.Author, r.LatestChapter, r.LastUpdated}
		}
		return ui.WriteTable(out, []string{"TITLE", "AUTHOR", "LATEST", "UPDATED"}, rows)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
