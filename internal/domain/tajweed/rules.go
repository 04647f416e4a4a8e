// Package tajweed provides the tajweed rule catalogue, highlighting settings
// and conversion of the remote tajweed markup into displayable spans.
package tajweed

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Rule is a recitation rule rendered as a colored CSS class.
type Rule struct {
	ID      string // CSS class used in the markup (e.g. "ghunnah")
	Name    string // Display name
	Color   string // CSS color value
	Enabled bool   // Highlighted when true
}

// DefaultRules returns the rule catalogue with every rule enabled.
func DefaultRules() []Rule {
	return []Rule{
		{ID: "ham_wasl", Name: "Hamzat Wasl", Color: "rgb(177, 177, 177)", Enabled: true},
		{ID: "idgham_wo_ghunnah", Name: "Idgham without Ghunnah", Color: "rgb(177, 177, 177)", Enabled: true},
		{ID: "slnt", Name: "Silent", Color: "rgb(177, 177, 177)", Enabled: true},
		{ID: "idgham_ghunnah", Name: "Idgham with Ghunnah", Color: "rgb(177, 177, 177)", Enabled: true},
		{ID: "laam_shamsiyah", Name: "Laam Shamsiyyah", Color: "orange", Enabled: true},
		{ID: "madda_normal", Name: "Normal Medd", Color: "rgb(255, 157, 234)", Enabled: true},
		{ID: "madda_permissible", Name: "Permissible Medd", Color: "orange", Enabled: true},
		{ID: "madda_necessary", Name: "Necessary Medd", Color: "red", Enabled: true},
		{ID: "ghunnah", Name: "Ghunnah", Color: "green", Enabled: true},
		{ID: "ikhafa", Name: "Ikhafa", Color: "green", Enabled: true},
		{ID: "idgham_shafawi", Name: "Idgham Shafawi", Color: "green", Enabled: true},
		{ID: "qalaqah", Name: "Qalqalah", Color: "rgb(0, 155, 155)", Enabled: true},
		{ID: "madda_obligatory", Name: "Obligatory Medd", Color: "rgb(252, 104, 104)", Enabled: true},
	}
}

var namedColors = map[string]string{
	"orange": "#ffa500",
	"red":    "#ff0000",
	"green":  "#008000",
	"gray":   "#808080",
	"grey":   "#808080",
	"black":  "#000000",
	"white":  "#ffffff",
	"blue":   "#0000ff",
}

// Hex returns the rule color as "#rrggbb". Supports "#rrggbb", "rgb(r, g, b)"
// and a small set of CSS color names.
func (r Rule) Hex() (string, bool) {
	c := strings.ToLower(strings.TrimSpace(r.Color))

	if strings.HasPrefix(c, "#") && len(c) == 7 {
		return c, true
	}
	if hex, ok := namedColors[c]; ok {
		return hex, true
	}

	inner, ok := strings.CutPrefix(c, "rgb(")
	if !ok {
		return "", false
	}
	inner, ok = strings.CutSuffix(inner, ")")
	if !ok {
		return "", false
	}

	parts := strings.Split(inner, ",")
	if len(parts) != 3 {
		return "", false
	}
	var rgb [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 || v > 255 {
			return "", false
		}
		rgb[i] = v
	}
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2]), true
}

// Settings holds the highlighting state of every rule, in catalogue order.
type Settings struct {
	rules []Rule
}

// NewSettings creates settings from the given rules.
func NewSettings(rules []Rule) *Settings {
	copied := make([]Rule, len(rules))
	copy(copied, rules)
	return &Settings{rules: copied}
}

// Rules returns a copy of the rules.
func (s *Settings) Rules() []Rule {
	copied := make([]Rule, len(s.rules))
	copy(copied, s.rules)
	return copied
}

// Rule returns the rule with the given id.
func (s *Settings) Rule(id string) (Rule, bool) {
	return lo.Find(s.rules, func(r Rule) bool { return r.ID == id })
}

// Toggle flips a single rule. Returns false for unknown ids.
func (s *Settings) Toggle(id string) bool {
	found := false
	s.rules = lo.Map(s.rules, func(r Rule, _ int) Rule {
		if r.ID == id {
			r.Enabled = !r.Enabled
			found = true
		}
		return r
	})
	return found
}

// SetAll enables or disables every rule.
func (s *Settings) SetAll(enabled bool) {
	s.rules = lo.Map(s.rules, func(r Rule, _ int) Rule {
		r.Enabled = enabled
		return r
	})
}

// SetEnabled sets a single rule. Returns false for unknown ids.
func (s *Settings) SetEnabled(id string, enabled bool) bool {
	for i := range s.rules {
		if s.rules[i].ID == id {
			s.rules[i].Enabled = enabled
			return true
		}
	}
	return false
}

// SetColor overrides a rule color. Returns false for unknown ids.
func (s *Settings) SetColor(id, color string) bool {
	for i := range s.rules {
		if s.rules[i].ID == id {
			s.rules[i].Color = color
			return true
		}
	}
	return false
}

// EnabledIDs returns the ids of all enabled rules.
func (s *Settings) EnabledIDs() []string {
	enabled := lo.Filter(s.rules, func(r Rule, _ int) bool { return r.Enabled })
	return lo.Map(enabled, func(r Rule, _ int) string { return r.ID })
}

// Stylesheet renders one CSS line per rule. Disabled rules inherit the
// surrounding text color.
func (s *Settings) Stylesheet() string {
	return Stylesheet(s.rules)
}

// Stylesheet renders CSS for the given rules.
func Stylesheet(rules []Rule) string {
	lines := lo.Map(rules, func(r Rule, _ int) string {
		if r.Enabled {
			return fmt.Sprintf(".%s { color: %s; }", r.ID, r.Color)
		}
		return fmt.Sprintf(".%s { color: inherit; }", r.ID)
	})
	return strings.Join(lines, "\n")
}
