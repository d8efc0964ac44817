package main

import (
	"github.com/Veraticus/lensline/internal/tui"
	"github.com/Veraticus/lensline/internal/tui/themes"
	"github.com/spf13/cobra"
)

func dashboardCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive statistics dashboard",
		Long: `Open a full-screen dashboard with your detection statistics, verdict
distribution, recent activity and achievements.

Keys: r refreshes from the detection service, ↑/↓ scroll, ? help, q quits.`,
		Args: cobra.NoArgs,
		RunE: withApp(g, func(cmd *cobra.Command, _ []string, a *app) error {
			themeName, _ := cmd.Flags().GetString("theme")
			if themeName == "" {
				themeName = a.prefs.Appearance.Theme
			}
			sync, _ := cmd.Flags().GetBool("sync")

			<-a.sessionReady
			return tui.Run(cmd.Context(), a.analyses,
				tui.WithTheme(themes.ByName(themeName)),
				tui.WithUser(a.sessions.State().User),
				tui.WithSyncOnStart(sync))
		}),
	}

	cmd.Flags().String("theme", "", "color theme (dark, light, system); defaults to your appearance setting")
	cmd.Flags().Bool("sync", false, "refresh from the detection service when the dashboard opens")

	return cmd
}
