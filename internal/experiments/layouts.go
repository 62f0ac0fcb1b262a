package experiments

import "github.com/avdrh/abtest/internal/db"

// BaselineLayout is served to the control variant and to every subject outside an experiment.
func BaselineLayout() db.LayoutConfig {
	return db.LayoutConfig{
		LayoutType:        db.LayoutControl,
		CardStyle:         "classic",
		ShowProgressBar:   true,
		ShowStepNumbers:   true,
		QuestionsPerPage:  0,
		ColorScheme:       "default",
		Spacing:           db.SpacingNormal,
		AnimationsEnabled: false,
		ShowHelpTooltips:  false,
	}
}

// AlternateLayout is the treatment of a newly created experiment: one question per card.
func AlternateLayout() db.LayoutConfig {
	return db.LayoutConfig{
		LayoutType:        db.LayoutCards,
		CardStyle:         "elevated",
		ShowProgressBar:   true,
		ShowStepNumbers:   true,
		QuestionsPerPage:  1,
		ColorScheme:       "vibrant",
		Spacing:           db.SpacingRelaxed,
		AnimationsEnabled: true,
		ShowHelpTooltips:  true,
	}
}
