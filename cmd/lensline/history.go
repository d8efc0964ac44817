package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Veraticus/lensline/internal/analysis"
	"github.com/Veraticus/lensline/internal/cli"
	"github.com/Veraticus/lensline/internal/common"
	"github.com/Veraticus/lensline/internal/config"
	"github.com/Veraticus/lensline/internal/export"
	"github.com/Veraticus/lensline/internal/model"
	"github.com/spf13/cobra"
)

// Export formats.
const (
	formatCSV    = "csv"
	formatSheets = "sheets"
)

func historyCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse and manage past analyses",
	}

	cmd.AddCommand(historyListCmd(g))
	cmd.AddCommand(historyShowCmd(g))
	cmd.AddCommand(historyDeleteCmd(g))
	cmd.AddCommand(historyClearCmd(g))
	cmd.AddCommand(historySyncCmd(g))
	cmd.AddCommand(historyExportCmd(g))

	return cmd
}

func historyListCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List analyses, most recent first",
		Args:  cobra.NoArgs,
		RunE: withApp(g, func(cmd *cobra.Command, _ []string, a *app) error {
			query, err := queryFromFlags(cmd)
			if err != nil {
				return err
			}

			if sync, _ := cmd.Flags().GetBool("sync"); sync && !a.analyses.FetchHistory(cmd.Context()) {
				printLine(cmd.ErrOrStderr(), cli.FormatWarning("Could not reach the detection service, showing local history"))
			}

			records := analysis.FilterRecords(a.analyses.Analyses(), query)
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				printLine(out, cli.FormatInfo("No analyses found"))
				return nil
			}
			for _, r := range records {
				printLine(out, formatRecordLine(r))
			}
			printf(out, "\n%d of %d analyses\n", len(records), len(a.analyses.Analyses()))
			return nil
		}),
	}

	cmd.Flags().String("verdict", "", "only show this verdict (authentic, suspicious, fake)")
	cmd.Flags().String("search", "", "only show ids containing this text")
	cmd.Flags().String("sort", string(analysis.SortNewest), "sort order (newest, oldest, confidence-high, confidence-low)")
	cmd.Flags().Bool("sync", false, "refresh from the detection service first")

	return cmd
}

func queryFromFlags(cmd *cobra.Command) (analysis.Query, error) {
	verdictStr, _ := cmd.Flags().GetString("verdict")
	search, _ := cmd.Flags().GetString("search")
	sortStr, _ := cmd.Flags().GetString("sort")

	q := analysis.Query{Search: search}
	if verdictStr != "" {
		v, err := model.ParseVerdict(verdictStr)
		if err != nil {
			return analysis.Query{}, fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
		}
		q.Verdict = v
	}

	order, err := analysis.ParseSortOrder(sortStr)
	if err != nil {
		return analysis.Query{}, fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
	}
	q.Sort = order
	return q, nil
}

func historyShowCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one analysis in detail",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(g, func(cmd *cobra.Command, args []string, a *app) error {
			record, ok := a.analyses.GetAnalysis(cmd.Context(), args[0])
			if !ok {
				return fmt.Errorf("analysis %s: %w", args[0], common.ErrNotFound)
			}
			printLine(cmd.OutOrStdout(), cli.RenderBox("Analysis", cli.FormatRecord(record)))
			return nil
		}),
	}
}

func historyDeleteCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete analyses from your history",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(g, func(cmd *cobra.Command, args []string, a *app) error {
			for _, id := range args {
				a.analyses.DeleteAnalysis(cmd.Context(), id)
			}
			printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted %d analyses", len(args))))
			return nil
		}),
	}
}

func historyClearCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every analysis from the local history",
		Long: `Remove every analysis from the local history. Analyses stored by the
detection service are not deleted and come back on the next sync.`,
		Args: cobra.NoArgs,
		RunE: withApp(g, func(cmd *cobra.Command, _ []string, a *app) error {
			force, _ := cmd.Flags().GetBool("force")
			count := len(a.analyses.Analyses())
			if count == 0 {
				printLine(cmd.OutOrStdout(), cli.FormatInfo("History is already empty"))
				return nil
			}

			if !force {
				printf(cmd.OutOrStdout(), "This will remove %d analyses from your local history.\nAre you sure? [y/N]: ", count)
				answer, err := readLine(cmd.InOrStdin())
				if err != nil || (answer != "y" && answer != "Y") {
					printLine(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
			}

			a.analyses.ClearHistory(cmd.Context())
			printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Cleared %d analyses", count)))
			return nil
		}),
	}

	cmd.Flags().BoolP("force", "f", false, "skip confirmation prompt")

	return cmd
}

func historySyncCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replace the local history with the detection service's",
		Args:  cobra.NoArgs,
		RunE: withApp(g, func(cmd *cobra.Command, _ []string, a *app) error {
			if !a.analyses.FetchHistory(cmd.Context()) {
				printLine(cmd.OutOrStdout(), cli.FormatWarning("Could not reach the detection service, local history kept"))
				return nil
			}
			printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Synced %d analyses", len(a.analyses.Analyses()))))
			return nil
		}),
	}
}

func historyExportCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the history as CSV or to Google Sheets",
		Long: `Export the (optionally filtered) history.

CSV is written to stdout unless --output is given. The Sheets export needs
either a service account (sheets.service_account_path) or OAuth credentials
(sheets.client_id, sheets.client_secret, sheets.refresh_token).`,
		Args: cobra.NoArgs,
		RunE: withApp(g, func(cmd *cobra.Command, _ []string, a *app) error {
			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")

			query, err := queryFromFlags(cmd)
			if err != nil {
				return err
			}
			records := analysis.FilterRecords(a.analyses.Analyses(), query)

			switch format {
			case formatCSV:
				return exportCSV(cmd, records, output)
			case formatSheets:
				sheetsCfg, err := config.LoadSheetsConfig(g.v)
				if err != nil {
					return err
				}
				writer, err := export.NewSheetsWriter(cmd.Context(), *sheetsCfg, slog.Default())
				if err != nil {
					return err
				}
				spreadsheetID, err := writer.Write(cmd.Context(), records, analysis.ComputeStats(records))
				if err != nil {
					return err
				}
				printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %d analyses to spreadsheet %s", len(records), spreadsheetID)))
				return nil
			default:
				return fmt.Errorf("%w: unknown export format %q (want csv or sheets)", common.ErrInvalidInput, format)
			}
		}),
	}

	cmd.Flags().String("format", formatCSV, "export format (csv, sheets)")
	cmd.Flags().StringP("output", "o", "", "CSV output file (default: stdout)")
	cmd.Flags().String("verdict", "", "only export this verdict")
	cmd.Flags().String("search", "", "only export ids containing this text")
	cmd.Flags().String("sort", string(analysis.SortNewest), "sort order")

	return cmd
}

func exportCSV(cmd *cobra.Command, records []model.AnalysisRecord, output string) error {
	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(config.ExpandPath(output))
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", output, err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				slog.Warn("Failed to close export file", "path", output, "error", err)
			}
		}()
		w = f
	}

	if err := export.WriteCSV(w, records); err != nil {
		return err
	}
	if output != "" {
		printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %d analyses to %s", len(records), output)))
	}
	return nil
}
