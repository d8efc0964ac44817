package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Veraticus/lensline/internal/analysis"
	"github.com/Veraticus/lensline/internal/cli"
	"github.com/Veraticus/lensline/internal/model"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// analyzeConcurrency caps in-flight analyses for a batch.
const analyzeConcurrency = 4

func analyzeCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <file|url>...",
		Short: "Analyze one or more images for manipulation",
		Long: `Analyze images for signs of deepfake manipulation.

Each argument is either a local JPEG, PNG, GIF or WebP file or an http(s)
image URL. Every analysis is added to your history. When the detection
service cannot be reached a placeholder result is recorded and clearly
labeled as such.

Examples:
  # Analyze a local photo
  lensline analyze portrait.jpg

  # Analyze several images at once
  lensline analyze a.png b.jpg https://example.com/c.webp`,
		Args: cobra.MinimumNArgs(1),
		RunE: withApp(g, runAnalyze),
	}

	cmd.Flags().Bool("quiet", false, "print one summary line per image instead of the full report")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, a *app) error {
	quiet, _ := cmd.Flags().GetBool("quiet")

	inputs, err := parseInputs(args, os.ReadFile)
	if err != nil {
		return err
	}

	interruptHandler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, stop := interruptHandler.HandleInterrupts(cmd.Context(), len(inputs) > 1)
	defer stop()

	records, err := analyzeAll(ctx, a.analyses, inputs, cli.NewProgress(cmd.ErrOrStderr(), len(inputs), "Analyzing"))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, r := range records {
		if r.ID == "" {
			continue
		}
		if quiet {
			printLine(out, formatRecordLine(r))
			continue
		}
		if i > 0 {
			printLine(out, "")
		}
		printLine(out, cli.RenderBox(inputs[i].Label(), cli.FormatRecord(r)))
	}

	if interruptHandler.WasInterrupted() {
		return context.Canceled
	}
	return nil
}

// parseInputs turns arguments into validated inputs. Anything with an
// http(s) scheme is a URL; everything else is read as a file.
func parseInputs(args []string, readFile func(string) ([]byte, error)) ([]analysis.Input, error) {
	inputs := make([]analysis.Input, 0, len(args))
	for _, arg := range args {
		var (
			in  analysis.Input
			err error
		)
		if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
			in, err = analysis.NewURLInput(arg)
		} else {
			data, readErr := readFile(arg)
			if readErr != nil {
				return nil, fmt.Errorf("failed to read %s: %w", arg, readErr)
			}
			in, err = analysis.NewFileInput(arg, data)
		}
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// analyzeAll runs the inputs through the store concurrently and returns the
// records in input order. Inputs not started before ctx is canceled are
// left as zero records.
func analyzeAll(ctx context.Context, store *analysis.Store, inputs []analysis.Input, progress *cli.Progress) ([]model.AnalysisRecord, error) {
	records := make([]model.AnalysisRecord, len(inputs))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(analyzeConcurrency)

	for i, in := range inputs {
		group.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			record, err := store.Analyze(gctx, in)
			if err != nil {
				return fmt.Errorf("%s: %w", in.Label(), err)
			}
			records[i] = record
			progress.Step()
			slog.Debug("Analyzed image", "input", in.Label(), "analysis_id", record.ID)
			return nil
		})
	}

	err := group.Wait()
	progress.Finish()
	return records, err
}

func formatRecordLine(r model.AnalysisRecord) string {
	line := fmt.Sprintf("%-28s %s  %s",
		r.ID,
		r.Timestamp.Local().Format("2006-01-02 15:04"),
		cli.FormatVerdict(r.Verdict, r.Confidence))
	if r.Synthetic {
		line += " " + cli.SubtleStyle.Render("(placeholder)")
	}
	return line
}
