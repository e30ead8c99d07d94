package rules

import "log/slog"

// DefaultRules returns the built-in roster in reporting order.
func DefaultRules(namer Namer, logger *slog.Logger) []Rule {
	return []Rule{
		NewContrastRule(namer, logger),
		NewAltTextRule(namer),
		NewFormLabelsRule(namer),
		NewKeyboardRule(namer),
		NewMediaRule(namer),
		NewSensoryRule(namer),
		NewLayoutRule(namer),
	}
}
