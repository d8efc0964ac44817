package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/lensline/internal/analysis"
	"github.com/Veraticus/lensline/internal/cli"
	"github.com/Veraticus/lensline/internal/model"
	"github.com/spf13/cobra"
)

func statsCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show detection statistics and achievements",
		Args:  cobra.NoArgs,
		RunE: withApp(g, func(cmd *cobra.Command, _ []string, a *app) error {
			if sync, _ := cmd.Flags().GetBool("sync"); sync && !a.analyses.FetchHistory(cmd.Context()) {
				printLine(cmd.ErrOrStderr(), cli.FormatWarning("Could not reach the detection service, using local history"))
			}

			records := a.analyses.Analyses()
			stats := a.analyses.Stats()
			out := cmd.OutOrStdout()
			printLine(out, cli.RenderBox(cli.ChartIcon+" Detection Statistics", formatStats(stats)))
			printLine(out, cli.RenderBox(cli.TrophyIcon+" Achievements", formatAchievements(analysis.Achievements(records, stats))))
			return nil
		}),
	}

	cmd.Flags().Bool("sync", false, "refresh from the detection service first")

	return cmd
}

func formatStats(stats model.Stats) string {
	lines := []string{
		cli.KeyValue("Total scans", fmt.Sprintf("%d", stats.TotalScans)),
		cli.KeyValue("Avg confidence", fmt.Sprintf("%d%%", stats.AvgConfidence)),
		"",
	}
	for _, v := range model.Verdicts {
		share := int(stats.Share(v)*100 + 0.5)
		lines = append(lines, cli.KeyValue(cli.VerdictLabel(v),
			fmt.Sprintf("%s %4d  %3d%%", cli.VerdictStyle(v).Render(cli.Meter(share, 20)), stats.Count(v), share)))
	}
	return strings.Join(lines, "\n")
}

func formatAchievements(achievements []analysis.Achievement) string {
	lines := make([]string, 0, len(achievements))
	for _, a := range achievements {
		mark := cli.SubtleStyle.Render(cli.LockIcon)
		name := cli.SubtleStyle.Render(a.Name)
		if a.Unlocked {
			mark = cli.SuccessStyle.Render(cli.SuccessIcon)
			name = cli.BoldStyle.Render(a.Name)
		}
		lines = append(lines, fmt.Sprintf("%s %s  %s", mark, name, cli.SubtleStyle.Render(a.Description)))
	}
	return strings.Join(lines, "\n")
}
