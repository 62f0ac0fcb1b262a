package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type LayoutType string

const (
	LayoutControl LayoutType = "control"
	LayoutCards   LayoutType = "cards"
	LayoutGrid    LayoutType = "grid"
	LayoutWizard  LayoutType = "wizard"
	LayoutMinimal LayoutType = "minimal"
)

type Spacing string

const (
	SpacingCompact Spacing = "compact"
	SpacingNormal  Spacing = "normal"
	SpacingRelaxed Spacing = "relaxed"
)

// LayoutConfig is the presentation payload attached to a variant. Keys outside the known fields are kept in
// Extra and written back at the top level of the JSON document.
type LayoutConfig struct {
	LayoutType        LayoutType `json:"layout_type"`
	CardStyle         string     `json:"card_style"`
	ShowProgressBar   bool       `json:"show_progress_bar"`
	ShowStepNumbers   bool       `json:"show_step_numbers"`
	QuestionsPerPage  int        `json:"questions_per_page"`
	ColorScheme       string     `json:"color_scheme"`
	Spacing           Spacing    `json:"spacing"`
	AnimationsEnabled bool       `json:"animations_enabled"`
	ShowHelpTooltips  bool       `json:"show_help_tooltips"`

	Extra map[string]interface{} `json:"-"`
}

type layoutConfigFields LayoutConfig

var layoutConfigKeys = map[string]struct{}{
	"layout_type":        {},
	"card_style":         {},
	"show_progress_bar":  {},
	"show_step_numbers":  {},
	"questions_per_page": {},
	"color_scheme":       {},
	"spacing":            {},
	"animations_enabled": {},
	"show_help_tooltips": {},
}

func (c LayoutConfig) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(layoutConfigFields(c))
	if err != nil {
		return nil, err
	}
	if len(c.Extra) == 0 {
		return known, nil
	}
	merged := make(map[string]interface{}, len(c.Extra)+len(layoutConfigKeys))
	for k, v := range c.Extra {
		merged[k] = v
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

func (c *LayoutConfig) UnmarshalJSON(data []byte) error {
	var fields layoutConfigFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var all map[string]interface{}
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for k := range layoutConfigKeys {
		delete(all, k)
	}
	*c = LayoutConfig(fields)
	if len(all) > 0 {
		c.Extra = all
	}
	return nil
}

func (c LayoutConfig) Value() (driver.Value, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (c *LayoutConfig) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*c = LayoutConfig{}
		return nil
	case string:
		return json.Unmarshal([]byte(v), c)
	case []byte:
		return json.Unmarshal(v, c)
	default:
		return fmt.Errorf("unsupported layout config column type %T", src)
	}
}
