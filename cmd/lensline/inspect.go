package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Veraticus/lensline/internal/cli"
	"github.com/Veraticus/lensline/internal/exifscan"
	"github.com/Veraticus/lensline/internal/model"
	"github.com/spf13/cobra"
)

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>...",
		Short: "Inspect image EXIF metadata for signs of editing",
		Long: `Read the EXIF metadata of local images and flag what looks off: stripped
metadata, missing camera details, editing or generator software, and
capture dates in the future. Nothing is sent to the detection service.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for i, path := range args {
				items, err := inspectFile(path)
				if err != nil {
					return err
				}
				if i > 0 {
					printLine(out, "")
				}
				printLine(out, cli.RenderBox(path, formatMetadata(items)))
			}
			return nil
		},
	}
}

func inspectFile(path string) ([]model.MetadataItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("Failed to close image", "path", path, "error", err)
		}
	}()

	items, err := exifscan.Inspect(f)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s: %w", path, err)
	}
	return items, nil
}

var metadataIcons = map[string]string{
	exifscan.IconCamera:   "📷",
	exifscan.IconDate:     "📅",
	exifscan.IconLocation: "📍",
	exifscan.IconSettings: "⚙️",
}

func formatMetadata(items []model.MetadataItem) string {
	lines := make([]string, 0, len(items))
	anomalies := 0
	for _, item := range items {
		if item.Status == model.MetadataAnomaly {
			anomalies++
		}
		line := fmt.Sprintf("%s %s  %s",
			metadataIcons[item.Icon],
			cli.KeyValue(item.Field, item.Value),
			cli.FormatMetadataStatus(item.Status))
		if item.Tooltip != "" {
			line += "\n    " + cli.SubtleStyle.Render(item.Tooltip)
		}
		lines = append(lines, line)
	}

	lines = append(lines, "")
	if anomalies > 0 {
		lines = append(lines, cli.FormatWarning(fmt.Sprintf("%d anomalies found", anomalies)))
	} else {
		lines = append(lines, cli.FormatSuccess("No anomalies found"))
	}
	return strings.Join(lines, "\n")
}
