// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"fmt"
	"strings"

	"github.com/Veraticus/lensline/internal/model"
	"github.com/charmbracelet/lipgloss"
)

var (
	// PrimaryColor is the main theme color (lens violet).
	PrimaryColor = lipgloss.Color("#8B5CF6")
	// SuccessColor indicates successful operations and authentic images.
	SuccessColor = lipgloss.Color("#22C55E") // Green
	// WarningColor indicates warnings and suspicious images.
	WarningColor = lipgloss.Color("#EAB308") // Yellow
	// ErrorColor indicates errors and fake images.
	ErrorColor = lipgloss.Color("#EF4444") // Red
	// InfoColor indicates informational messages.
	InfoColor = lipgloss.Color("#38BDF8") // Sky
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666") // Gray

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// InfoStyle formats informational messages.
	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// BoldStyle makes text bold.
	BoldStyle = lipgloss.NewStyle().
			Bold(true)

	// BoxStyle is used for bordered content boxes.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(1, 2)

	// TableHeaderStyle is used for table headers.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(lipgloss.Color("#333"))

	// LabelStyle formats the left column of key/value blocks.
	LabelStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Width(18)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	LensIcon    = "🔍"
	ChartIcon   = "📊"
	TrophyIcon  = "🏆"
	LockIcon    = "🔒"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle formats a title with the lens icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(LensIcon + " " + title)
}

// RenderBox renders content in a styled box.
func RenderBox(title, content string) string {
	boxTitle := TitleStyle.
		UnsetMargins().
		Render(title)

	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, boxTitle, content))
}

// VerdictStyle returns the style a verdict is rendered in.
func VerdictStyle(v model.Verdict) lipgloss.Style {
	switch v {
	case model.VerdictAuthentic:
		return SuccessStyle
	case model.VerdictSuspicious:
		return WarningStyle
	case model.VerdictFake:
		return ErrorStyle
	default:
		return SubtleStyle
	}
}

// VerdictLabel is the display label of a verdict.
func VerdictLabel(v model.Verdict) string {
	switch v {
	case model.VerdictAuthentic:
		return "Authentic"
	case model.VerdictSuspicious:
		return "Suspicious"
	case model.VerdictFake:
		return "Likely Fake"
	default:
		return string(v)
	}
}

// FormatVerdict renders a verdict with its confidence.
func FormatVerdict(v model.Verdict, confidence int) string {
	return VerdictStyle(v).Bold(true).Render(fmt.Sprintf("%s (%d%%)", VerdictLabel(v), confidence))
}

// Meter renders a 0-100 score as a fixed-width bar.
func Meter(score, width int) string {
	score = min(max(score, 0), 100)
	filled := score * width / 100
	return strings.Repeat("█", filled) + SubtleStyle.Render(strings.Repeat("░", width-filled))
}

// KeyValue renders one aligned label/value line.
func KeyValue(label, value string) string {
	return LabelStyle.Render(label) + value
}

// FormatRecord renders one analysis as a detail block.
func FormatRecord(r model.AnalysisRecord) string {
	lines := []string{
		KeyValue("ID", r.ID),
		KeyValue("Verdict", FormatVerdict(r.Verdict, r.Confidence)),
		KeyValue("Analyzed", r.Timestamp.Local().Format("2006-01-02 15:04:05")),
		KeyValue("Image", r.ImageURL),
		KeyValue("Processing", fmt.Sprintf("%d ms", r.ProcessingTime)),
		"",
		KeyValue("Face analysis", fmt.Sprintf("%s %3d", Meter(r.Details.FaceAnalysis.Score, 20), r.Details.FaceAnalysis.Score)),
		KeyValue("Metadata", fmt.Sprintf("%s %3d", Meter(r.Details.MetadataAnalysis.Score, 20), r.Details.MetadataAnalysis.Score)),
		KeyValue("AI detection", fmt.Sprintf("%s %3d", Meter(r.Details.AIDetection.Score, 20), r.Details.AIDetection.Score)),
	}

	if r.Details.AIDetection.Model != "" {
		lines = append(lines, KeyValue("Model", r.Details.AIDetection.Model))
	}

	var findings []string
	findings = append(findings, r.Details.FaceAnalysis.Inconsistencies...)
	findings = append(findings, r.Details.MetadataAnalysis.Flags...)
	findings = append(findings, r.Details.AIDetection.Patterns...)
	if len(findings) > 0 {
		lines = append(lines, "", BoldStyle.Render("Findings"))
		for _, f := range findings {
			lines = append(lines, "  "+WarningStyle.Render("•")+" "+f)
		}
	}

	if r.Synthetic {
		lines = append(lines, "", FormatWarning("Placeholder result: the detection service was unavailable"))
	}

	return strings.Join(lines, "\n")
}

// FormatMetadataStatus renders an EXIF row status.
func FormatMetadataStatus(s model.MetadataStatus) string {
	switch s {
	case model.MetadataAnomaly:
		return ErrorStyle.Render("anomaly")
	case model.MetadataWarning:
		return WarningStyle.Render("warning")
	default:
		return SuccessStyle.Render("normal")
	}
}
