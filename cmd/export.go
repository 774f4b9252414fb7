package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brogergvhs/noveld/internal/export"
)

var (
	flagExportFormat string
	flagExportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export <novel.txt>",
	Short: "Convert a downloaded novel to docx or html",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src := args[0]
		dst := flagExportOut
		if dst == "" {
			dst = export.OutputPath(src, flagExportFormat)
		}

		if err := export.File(src, dst, flagExportFormat); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Written:", dst)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&flagExportFormat, "format", export.FormatDOCX, "output format: docx or html")
	exportCmd.Flags().StringVar(&flagExportOut, "out", "", "output path (default: input path with the new extension)")
	rootCmd.AddCommand(exportCmd)
}
