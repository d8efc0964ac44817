// Package preferences holds the user's settings and persists them as a
// single JSON entry in the key/value store.
package preferences

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/Veraticus/lensline/internal/common"
	"github.com/Veraticus/lensline/internal/service"
)

// Key is the key/value entry holding the settings.
const Key = "lensline-settings"

// Retention windows for Privacy.AutoDelete.
const (
	AutoDeleteNever  = "never"
	AutoDelete7Days  = "7days"
	AutoDelete30Days = "30days"
	AutoDelete90Days = "90days"
)

// Themes for Appearance.Theme.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// Notifications controls which notices are sent.
type Notifications struct {
	Email            bool `json:"email"`
	Push             bool `json:"push"`
	AnalysisComplete bool `json:"analysisComplete"`
	WeeklyReport     bool `json:"weeklyReport"`
	SecurityAlerts   bool `json:"securityAlerts"`
}

// Privacy controls what is kept locally.
type Privacy struct {
	AutoDelete     string `json:"autoDelete"`
	StoreHistory   bool   `json:"storeHistory"`
	ShareAnalytics bool   `json:"shareAnalytics"`
}

// Appearance controls rendering.
type Appearance struct {
	Theme       string `json:"theme"`
	CompactMode bool   `json:"compactMode"`
	Animations  bool   `json:"animations"`
}

// Extension holds the browser extension options.
type Extension struct {
	AutoAnalyze    bool `json:"autoAnalyze"`
	ContextMenu    bool `json:"contextMenu"`
	FloatingButton bool `json:"floatingButton"`
	SocialMedia    bool `json:"socialMedia"`
}

// Settings is the full set of user preferences.
type Settings struct {
	Notifications Notifications `json:"notifications"`
	Privacy       Privacy       `json:"privacy"`
	Appearance    Appearance    `json:"appearance"`
	Extension     Extension     `json:"extension"`
}

// Defaults returns the settings of a fresh install.
func Defaults() Settings {
	return Settings{
		Notifications: Notifications{
			Email:            true,
			Push:             true,
			AnalysisComplete: true,
			WeeklyReport:     false,
			SecurityAlerts:   true,
		},
		Privacy: Privacy{
			StoreHistory:   true,
			ShareAnalytics: false,
			AutoDelete:     AutoDelete30Days,
		},
		Appearance: Appearance{
			Theme:       ThemeDark,
			CompactMode: false,
			Animations:  true,
		},
		Extension: Extension{
			AutoAnalyze:    false,
			ContextMenu:    true,
			FloatingButton: true,
			SocialMedia:    true,
		},
	}
}

type boolField func(*Settings) *bool

type enumField struct {
	ptr     func(*Settings) *string
	allowed []string
}

var boolFields = map[string]boolField{
	"notifications.email":            func(s *Settings) *bool { return &s.Notifications.Email },
	"notifications.push":             func(s *Settings) *bool { return &s.Notifications.Push },
	"notifications.analysisComplete": func(s *Settings) *bool { return &s.Notifications.AnalysisComplete },
	"notifications.weeklyReport":     func(s *Settings) *bool { return &s.Notifications.WeeklyReport },
	"notifications.securityAlerts":   func(s *Settings) *bool { return &s.Notifications.SecurityAlerts },
	"privacy.storeHistory":           func(s *Settings) *bool { return &s.Privacy.StoreHistory },
	"privacy.shareAnalytics":         func(s *Settings) *bool { return &s.Privacy.ShareAnalytics },
	"appearance.compactMode":         func(s *Settings) *bool { return &s.Appearance.CompactMode },
	"appearance.animations":          func(s *Settings) *bool { return &s.Appearance.Animations },
	"extension.autoAnalyze":          func(s *Settings) *bool { return &s.Extension.AutoAnalyze },
	"extension.contextMenu":          func(s *Settings) *bool { return &s.Extension.ContextMenu },
	"extension.floatingButton":       func(s *Settings) *bool { return &s.Extension.FloatingButton },
	"extension.socialMedia":          func(s *Settings) *bool { return &s.Extension.SocialMedia },
}

var enumFields = map[string]enumField{
	"privacy.autoDelete": {
		ptr:     func(s *Settings) *string { return &s.Privacy.AutoDelete },
		allowed: []string{AutoDeleteNever, AutoDelete7Days, AutoDelete30Days, AutoDelete90Days},
	},
	"appearance.theme": {
		ptr:     func(s *Settings) *string { return &s.Appearance.Theme },
		allowed: []string{ThemeLight, ThemeDark, ThemeSystem},
	},
}

// Keys lists every settable key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(boolFields)+len(enumFields))
	for k := range boolFields {
		keys = append(keys, k)
	}
	for k := range enumFields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Get returns the value of key formatted for display.
func (s *Settings) Get(key string) (string, error) {
	if f, ok := boolFields[key]; ok {
		return strconv.FormatBool(*f(s)), nil
	}
	if f, ok := enumFields[key]; ok {
		return *f.ptr(s), nil
	}
	return "", unknownKey(key)
}

// Toggle flips a boolean setting and returns its new value.
func (s *Settings) Toggle(key string) (bool, error) {
	f, ok := boolFields[key]
	if !ok {
		if _, isEnum := enumFields[key]; isEnum {
			return false, fmt.Errorf("%w: %s is not a toggle", common.ErrInvalidInput, key)
		}
		return false, unknownKey(key)
	}
	p := f(s)
	*p = !*p
	return *p, nil
}

// Set assigns value to key. Booleans accept the forms strconv.ParseBool
// does; enumerated strings must be one of their allowed values.
func (s *Settings) Set(key, value string) error {
	if f, ok := boolFields[key]; ok {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s wants true or false, got %q", common.ErrInvalidInput, key, value)
		}
		*f(s) = b
		return nil
	}
	if f, ok := enumFields[key]; ok {
		if !slices.Contains(f.allowed, value) {
			return fmt.Errorf("%w: %s must be one of %v, got %q", common.ErrInvalidInput, key, f.allowed, value)
		}
		*f.ptr(s) = value
		return nil
	}
	return unknownKey(key)
}

// Retention returns how long records are kept. ok is false when records
// are kept forever.
func (s *Settings) Retention() (time.Duration, bool) {
	const day = 24 * time.Hour
	switch s.Privacy.AutoDelete {
	case AutoDelete7Days:
		return 7 * day, true
	case AutoDelete30Days:
		return 30 * day, true
	case AutoDelete90Days:
		return 90 * day, true
	default:
		return 0, false
	}
}

func unknownKey(key string) error {
	return fmt.Errorf("%w: unknown setting %q", common.ErrInvalidInput, key)
}

// Load reads the settings. A missing entry yields the defaults; so does an
// unreadable one, which is logged. Fields absent from a stored entry keep
// their default values.
func Load(ctx context.Context, kv service.KeyValueStore) (Settings, error) {
	s := Defaults()

	raw, found, err := kv.Get(ctx, Key)
	if err != nil {
		return s, fmt.Errorf("failed to read settings: %w", err)
	}
	if !found {
		return s, nil
	}

	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		slog.Warn("Ignoring unreadable settings", "key", Key, "error", err)
		return Defaults(), nil
	}
	return s, nil
}

// Save writes the settings.
func Save(ctx context.Context, kv service.KeyValueStore, s Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := kv.Set(ctx, Key, string(raw)); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
