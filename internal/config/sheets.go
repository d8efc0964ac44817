package config

import (
	"os"

	"github.com/Veraticus/lensline/internal/export"
	"github.com/spf13/viper"
)

// LoadSheetsConfig loads Google Sheets export settings.
// Precedence: viper keys (config file or LENSLINE_SHEETS_* env), then
// GOOGLE_SHEETS_* environment variables, then defaults.
func LoadSheetsConfig(v *viper.Viper) (*export.SheetsConfig, error) {
	cfg := export.DefaultSheetsConfig()

	if s := v.GetString("sheets.service_account_path"); s != "" {
		cfg.ServiceAccountPath = ExpandPath(s)
	}
	if s := v.GetString("sheets.client_id"); s != "" {
		cfg.ClientID = s
	}
	if s := v.GetString("sheets.client_secret"); s != "" {
		cfg.ClientSecret = s
	}
	if s := v.GetString("sheets.refresh_token"); s != "" {
		cfg.RefreshToken = s
	}
	if s := v.GetString("sheets.spreadsheet_id"); s != "" {
		cfg.SpreadsheetID = s
	}
	if s := v.GetString("sheets.spreadsheet_name"); s != "" {
		cfg.SpreadsheetName = s
	}

	if cfg.ServiceAccountPath == "" {
		cfg.ServiceAccountPath = ExpandPath(os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"))
	}
	if cfg.ClientID == "" {
		cfg.ClientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if cfg.ClientSecret == "" {
		cfg.ClientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}
	if cfg.RefreshToken == "" {
		cfg.RefreshToken = os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN")
	}
	if cfg.SpreadsheetID == "" {
		cfg.SpreadsheetID = os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID")
	}
	if s := os.Getenv("GOOGLE_SHEETS_SPREADSHEET_NAME"); s != "" && v.GetString("sheets.spreadsheet_name") == "" {
		cfg.SpreadsheetName = s
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
