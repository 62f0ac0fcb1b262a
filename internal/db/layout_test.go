package db

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutConfigKeepsExtraKeys(t *testing.T) {
	raw := `{"layout_type":"cards","card_style":"elevated","questions_per_page":1,"font_family":"Inter","custom":{"a":1}}`
	var cfg LayoutConfig
	require.NoError(t, json.Unmarshal([]byte(raw), &cfg))

	assert.Equal(t, LayoutCards, cfg.LayoutType)
	assert.Equal(t, 1, cfg.QuestionsPerPage)
	assert.Equal(t, "Inter", cfg.Extra["font_family"])
	assert.NotContains(t, cfg.Extra, "layout_type")

	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	var roundTrip map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &roundTrip))
	assert.Equal(t, "Inter", roundTrip["font_family"])
	assert.Equal(t, "elevated", roundTrip["card_style"])
	assert.Equal(t, map[string]interface{}{"a": float64(1)}, roundTrip["custom"])
}

func TestLayoutConfigKnownFieldsWinOverExtra(t *testing.T) {
	cfg := LayoutConfig{LayoutType: LayoutGrid, Extra: map[string]interface{}{"layout_type": "wizard"}}
	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	var back LayoutConfig
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, LayoutGrid, back.LayoutType)
	assert.Nil(t, back.Extra)
}

func TestLayoutConfigScan(t *testing.T) {
	var cfg LayoutConfig
	require.NoError(t, cfg.Scan([]byte(`{"spacing":"relaxed"}`)))
	assert.Equal(t, SpacingRelaxed, cfg.Spacing)

	require.NoError(t, cfg.Scan(nil))
	assert.Equal(t, LayoutConfig{}, cfg)

	assert.Error(t, cfg.Scan(42))

	value, err := LayoutConfig{ShowProgressBar: true}.Value()
	require.NoError(t, err)
	assert.Contains(t, value, `"show_progress_bar":true`)
}

func TestModulesAndEventTypes(t *testing.T) {
	assert.True(t, ModulePdi.Valid())
	assert.False(t, TargetModule("payroll").Valid())
	assert.True(t, EventSatisfactionRating.Valid())
	assert.False(t, EventType("click").Valid())
}
