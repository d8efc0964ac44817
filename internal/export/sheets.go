package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Veraticus/lensline/internal/common"
	"github.com/Veraticus/lensline/internal/model"
	"github.com/Veraticus/lensline/internal/service"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsWriter writes analysis history to a Google spreadsheet.
type SheetsWriter struct {
	service *sheets.Service
	logger  *slog.Logger
	config  SheetsConfig
}

// NewSheetsWriter authenticates and creates a writer.
func NewSheetsWriter(ctx context.Context, config SheetsConfig, logger *slog.Logger) (*SheetsWriter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	svc, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return newSheetsWriter(svc, config, logger), nil
}

func newSheetsWriter(svc *sheets.Service, config SheetsConfig, logger *slog.Logger) *SheetsWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SheetsWriter{service: svc, config: config, logger: logger}
}

// Write replaces the sheet contents with a summary block and one row per
// record. It returns the spreadsheet id written to.
func (w *SheetsWriter) Write(ctx context.Context, records []model.AnalysisRecord, stats model.Stats) (string, error) {
	w.logger.Info("starting history export", "records", len(records))

	spreadsheetID, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	if err := common.WithRetry(ctx, retryOpts, func(ctx context.Context) error {
		return classifyError(w.clearSheet(ctx, spreadsheetID))
	}); err != nil {
		return "", fmt.Errorf("failed to clear sheet: %w", err)
	}

	values := prepareHistoryData(records, stats)

	if err := common.WithRetry(ctx, retryOpts, func(ctx context.Context) error {
		return classifyError(w.writeData(ctx, spreadsheetID, values))
	}); err != nil {
		return "", fmt.Errorf("failed to write data: %w", err)
	}

	if w.config.EnableFormatting {
		if err := common.WithRetry(ctx, retryOpts, func(ctx context.Context) error {
			return classifyError(w.applyFormatting(ctx, spreadsheetID))
		}); err != nil {
			// Formatting is cosmetic; the data is already written.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("history export completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(values))
	return spreadsheetID, nil
}

// classifyError stops retries on client errors other than rate limiting.
func classifyError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case apiErr.Code >= 400 && apiErr.Code < 500:
		return common.Permanent(err)
	}
	return err
}

func createSheetsService(ctx context.Context, config SheetsConfig) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}
		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}
		tokenSource = client.TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}

func (w *SheetsWriter) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		if _, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do(); err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		return w.config.SpreadsheetID, nil
	}

	created, err := w.service.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: "History"}},
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)
	return created.SpreadsheetId, nil
}

func (w *SheetsWriter) clearSheet(ctx context.Context, spreadsheetID string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, "A:Z", &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// detailsHeaderRow is the zero-based row of the column header line.
const detailsHeaderRow = 10

func prepareHistoryData(records []model.AnalysisRecord, stats model.Stats) [][]any {
	values := make([][]any, 0, detailsHeaderRow+1+len(records))

	title := []any{"LensLine History"}
	if len(records) > 0 {
		oldest, newest := records[0].Timestamp, records[0].Timestamp
		for _, r := range records[1:] {
			if r.Timestamp.Before(oldest) {
				oldest = r.Timestamp
			}
			if r.Timestamp.After(newest) {
				newest = r.Timestamp
			}
		}
		title = append(title, fmt.Sprintf("%s - %s", oldest.Format("Jan 2, 2006"), newest.Format("Jan 2, 2006")))
	}

	values = append(values,
		title,
		[]any{},
		[]any{"Summary"},
		[]any{"Total Scans", stats.TotalScans},
		[]any{"Authentic", stats.AuthenticCount},
		[]any{"Suspicious", stats.SuspiciousCount},
		[]any{"Fake", stats.FakeCount},
		[]any{"Average Confidence", stats.AvgConfidence},
		[]any{},
		[]any{"Analysis Details"},
	)

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	values = append(values, header)

	for _, r := range records {
		row := Row(r)
		cells := make([]any, len(row))
		for i, c := range row {
			cells[i] = c
		}
		// Numeric columns go out as numbers so the sheet can chart them.
		cells[3] = r.Confidence
		cells[4] = r.Details.FaceAnalysis.Score
		cells[5] = r.Details.MetadataAnalysis.Score
		cells[6] = r.Details.AIDetection.Score
		cells[7] = r.ProcessingTime
		values = append(values, cells)
	}
	return values
}

func (w *SheetsWriter) writeData(ctx context.Context, spreadsheetID string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))

		batch := values[i:end]
		rangeStr := fmt.Sprintf("A%d", i+1)
		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, rangeStr, &sheets.ValueRange{Values: batch}).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "start_row", i+1, "rows", len(batch))
	}
	return nil
}

func (w *SheetsWriter) applyFormatting(ctx context.Context, spreadsheetID string) error {
	bold := func(startRow, endRow, endCol int64, size int64) *sheets.Request {
		return &sheets.Request{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          0,
					StartRowIndex:    startRow,
					EndRowIndex:      endRow,
					StartColumnIndex: 0,
					EndColumnIndex:   endCol,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true, FontSize: size},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		}
	}

	requests := []*sheets.Request{
		bold(0, 1, 2, 16),
		bold(detailsHeaderRow, detailsHeaderRow+1, int64(len(Header)), 10),
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    0,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   int64(len(Header)),
				},
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId:        0,
					GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}

	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}
