package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/lensline/internal/cli"
	"github.com/Veraticus/lensline/internal/preferences"
	"github.com/spf13/cobra"
)

func settingsCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "View and change your preferences",
		Long: `View and change notification, privacy, appearance and extension
preferences. Keys are written as category.name, for example
privacy.autoDelete or appearance.theme.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show every setting",
		Args:  cobra.NoArgs,
		RunE: withApp(g, func(cmd *cobra.Command, _ []string, a *app) error {
			printLine(cmd.OutOrStdout(), formatSettings(&a.prefs))
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a setting",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(g, func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.prefs.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := preferences.Save(cmd.Context(), a.db, a.prefs); err != nil {
				return err
			}
			printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s = %s", args[0], args[1])))
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <key>",
		Short: "Flip an on/off setting",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(g, func(cmd *cobra.Command, args []string, a *app) error {
			on, err := a.prefs.Toggle(args[0])
			if err != nil {
				return err
			}
			if err := preferences.Save(cmd.Context(), a.db, a.prefs); err != nil {
				return err
			}
			printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s = %t", args[0], on)))
			return nil
		}),
	})

	return cmd
}

func formatSettings(s *preferences.Settings) string {
	var (
		lines   []string
		section string
	)
	for _, key := range preferences.Keys() {
		category, _, _ := strings.Cut(key, ".")
		if category != section {
			if section != "" {
				lines = append(lines, "")
			}
			lines = append(lines, cli.BoldStyle.Render(category))
			section = category
		}
		value, err := s.Get(key)
		if err != nil {
			continue
		}
		lines = append(lines, "  "+cli.SubtleStyle.Render(fmt.Sprintf("%-32s", key))+" "+value)
	}
	return cli.RenderBox("Settings", strings.Join(lines, "\n"))
}
