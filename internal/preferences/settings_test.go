package preferences

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/lensline/internal/common"
	"github.com/Veraticus/lensline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	s := Defaults()
	assert.True(t, s.Privacy.StoreHistory)
	assert.Equal(t, AutoDelete30Days, s.Privacy.AutoDelete)
	assert.Equal(t, ThemeDark, s.Appearance.Theme)
	assert.False(t, s.Notifications.WeeklyReport)
	assert.False(t, s.Extension.AutoAnalyze)
}

func TestLoadSave(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	s, err := Load(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), s)

	s.Privacy.StoreHistory = false
	s.Appearance.Theme = ThemeLight
	require.NoError(t, Save(ctx, db, s))

	loaded, err := Load(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)

	t.Run("partial entry keeps defaults", func(t *testing.T) {
		require.NoError(t, db.Set(ctx, Key, `{"privacy":{"autoDelete":"7days"}}`))
		s, err := Load(ctx, db)
		require.NoError(t, err)
		assert.Equal(t, AutoDelete7Days, s.Privacy.AutoDelete)
		assert.True(t, s.Notifications.Email)
		assert.Equal(t, ThemeDark, s.Appearance.Theme)
	})

	t.Run("corrupt entry falls back to defaults", func(t *testing.T) {
		require.NoError(t, db.Set(ctx, Key, `{"privacy":`))
		s, err := Load(ctx, db)
		require.NoError(t, err)
		assert.Equal(t, Defaults(), s)
	})
}

func TestToggle(t *testing.T) {
	s := Defaults()

	got, err := s.Toggle("notifications.weeklyReport")
	require.NoError(t, err)
	assert.True(t, got)
	assert.True(t, s.Notifications.WeeklyReport)

	got, err = s.Toggle("notifications.weeklyReport")
	require.NoError(t, err)
	assert.False(t, got)

	_, err = s.Toggle("appearance.theme")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = s.Toggle("privacy.nonsense")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestSet(t *testing.T) {
	tests := []struct {
		check   func(t *testing.T, s Settings)
		name    string
		key     string
		value   string
		wantErr bool
	}{
		{
			name: "enum", key: "privacy.autoDelete", value: "never",
			check: func(t *testing.T, s Settings) { assert.Equal(t, AutoDeleteNever, s.Privacy.AutoDelete) },
		},
		{
			name: "theme", key: "appearance.theme", value: "system",
			check: func(t *testing.T, s Settings) { assert.Equal(t, ThemeSystem, s.Appearance.Theme) },
		},
		{
			name: "bool", key: "extension.autoAnalyze", value: "true",
			check: func(t *testing.T, s Settings) { assert.True(t, s.Extension.AutoAnalyze) },
		},
		{name: "bad enum", key: "appearance.theme", value: "neon", wantErr: true},
		{name: "bad bool", key: "privacy.storeHistory", value: "maybe", wantErr: true},
		{name: "unknown", key: "appearance.font", value: "mono", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			err := s.Set(tt.key, tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidInput)
				assert.Equal(t, Defaults(), s, "failed set must not modify settings")
				return
			}
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestGetAndKeys(t *testing.T) {
	s := Defaults()
	keys := Keys()
	assert.Len(t, keys, 15)
	assert.IsIncreasing(t, keys)

	for _, k := range keys {
		_, err := s.Get(k)
		assert.NoError(t, err, k)
	}

	v, err := s.Get("privacy.autoDelete")
	require.NoError(t, err)
	assert.Equal(t, "30days", v)

	_, err = s.Get("nope")
	assert.Error(t, err)
}

func TestRetention(t *testing.T) {
	tests := []struct {
		value  string
		want   time.Duration
		wantOK bool
	}{
		{value: AutoDeleteNever},
		{value: AutoDelete7Days, want: 7 * 24 * time.Hour, wantOK: true},
		{value: AutoDelete30Days, want: 30 * 24 * time.Hour, wantOK: true},
		{value: AutoDelete90Days, want: 90 * 24 * time.Hour, wantOK: true},
		{value: ""},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			s := Settings{Privacy: Privacy{AutoDelete: tt.value}}
			got, ok := s.Retention()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
