// Package terminal renders reader pages, catalogues and playback status for
// the terminal, and parses interactive player commands.
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/BadrElyatim/quran-app/internal/app/playback"
	"github.com/BadrElyatim/quran-app/internal/domain/tajweed"
	"github.com/BadrElyatim/quran-app/internal/domain/verse"
	"github.com/BadrElyatim/quran-app/internal/infra/quran"
)

const bismillah = "بِسْمِ ٱللَّهِ ٱلرَّحْمَٰنِ ٱلرَّحِيمِ"

var (
	titleStyle       = lipgloss.NewStyle().Bold(true)
	translationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	activeStyle      = lipgloss.NewStyle().Bold(true).Reverse(true)
)

// VerseText renders tajweed markup with each enabled rule in its color.
func VerseText(markup string, settings *tajweed.Settings) (string, error) {
	segments, err := tajweed.Segments(markup)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(colorize(seg, settings))
	}
	return b.String(), nil
}

func colorize(seg tajweed.Segment, settings *tajweed.Settings) string {
	if seg.Rule == "" {
		return seg.Text
	}
	rule, ok := settings.Rule(seg.Rule)
	if !ok || !rule.Enabled {
		return seg.Text
	}
	hex, ok := rule.Hex()
	if !ok {
		return seg.Text
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(seg.Text)
}

// VerseMarker returns the ornate verse number marker.
func VerseMarker(number int) string {
	return "﴿" + verse.ArabicNumerals(number) + "﴾"
}

// WritePage renders a chapter page. activeVerse is highlighted when
// positive.
func WritePage(w io.Writer, page *verse.Page, settings *tajweed.Settings, activeVerse int) error {
	ch := page.Chapter
	if _, err := fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%d. %s  %s (%d verses)", ch.Number, ch.NameArabic, ch.NameTranslated, ch.VerseCount))); err != nil {
		return err
	}
	if verse.ShowsBismillah(ch.Number) {
		if _, err := fmt.Fprintln(w, bismillah); err != nil {
			return err
		}
	}

	for _, v := range page.Verses {
		text, err := VerseText(v.TajweedHTML, settings)
		if err != nil {
			return err
		}
		line := text + " " + VerseMarker(v.Number)
		if v.Number == activeVerse {
			line = activeStyle.Render(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		if v.HasTranslation() {
			if _, err := fmt.Fprintln(w, translationStyle.Render(fmt.Sprintf("%d. %s", v.Number, v.Translation))); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteReciters renders the reciter catalogue as a table.
func WriteReciters(w io.Writer, reciters []quran.Reciter) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Reciter", "Style"})
	for _, r := range reciters {
		t.AppendRow(table.Row{r.ID, r.Name, r.Style})
	}
	t.Render()
}

// WriteTranslations renders the translation catalogue as a table.
func WriteTranslations(w io.Writer, translations []quran.TranslationResource) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "Author", "Language"})
	for _, tr := range translations {
		t.AppendRow(table.Row{tr.ID, tr.Name, tr.AuthorName, tr.LanguageName})
	}
	t.Render()
}

// WriteRules renders the tajweed rules with a color swatch.
func WriteRules(w io.Writer, rules []tajweed.Rule) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Rule", "Color", "Enabled"})
	for _, r := range rules {
		swatch := r.Color
		if hex, ok := r.Hex(); ok {
			swatch = lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("■ " + r.Color)
		}
		t.AppendRow(table.Row{r.ID, r.Name, swatch, r.Enabled})
	}
	t.Render()
}

// Status renders a one-line playback status.
func Status(state playback.State, mode playback.Mode, selectedVerse int) string {
	icon := "⏸"
	switch {
	case state.IsLoading:
		icon = "…"
	case state.IsPlaying:
		icon = "▶"
	}

	parts := []string{
		fmt.Sprintf("%s %s / %s", icon, Clock(state.DisplayPosition()), Clock(state.Duration)),
	}
	if state.HasActiveVerse() {
		parts = append(parts, fmt.Sprintf("verse %d", state.ActiveVerse))
	}
	if mode == playback.ModeVersePlaying && selectedVerse > 0 {
		parts = append(parts, fmt.Sprintf("playing verse %d", selectedVerse))
	}
	parts = append(parts, fmt.Sprintf("vol %d%%", int(state.Volume*100+0.5)))
	return strings.Join(parts, "  ")
}

// Clock formats seconds as m:ss, or h:mm:ss from one hour on.
func Clock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
