package tajweed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToSpanMarkup(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "tajweed tags become spans",
			input: `<tajweed class=ham_wasl>ٱ</tajweed>لْحَمْدُ`,
			want:  `<span class="ham_wasl">ٱ</span>لْحَمْدُ`,
		},
		{
			name:  "verse end marker removed",
			input: `بِسْمِ <tajweed class=laam_shamsiyah>ل</tajweed>لَّهِ<span class=end>١</span>`,
			want:  `بِسْمِ <span class="laam_shamsiyah">ل</span>لَّهِ`,
		},
		{
			name:  "plain text untouched",
			input: `قُلْ هُوَ`,
			want:  `قُلْ هُوَ`,
		},
		{
			name:  "empty input",
			input: ``,
			want:  ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToSpanMarkup(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSegments(t *testing.T) {
	input := `<tajweed class=ham_wasl>ٱ</tajweed>لْ<tajweed class=ghunnah>نّ</tajweed>اسِ<span class=end>٦</span>`

	segments, err := Segments(input)
	require.NoError(t, err)

	assert.Equal(t, []Segment{
		{Text: "ٱ", Rule: "ham_wasl"},
		{Text: "لْ"},
		{Text: "نّ", Rule: "ghunnah"},
		{Text: "اسِ"},
	}, segments)

	plain, err := PlainText(input)
	require.NoError(t, err)
	assert.Equal(t, "ٱلْنّاسِ", plain)
}

func TestSegments_SpanMarkupRoundTrip(t *testing.T) {
	raw := `<tajweed class=madda_normal>وَا</tajweed>لضَّ<span class=end>٧</span>`
	spans, err := ToSpanMarkup(raw)
	require.NoError(t, err)

	fromRaw, err := Segments(raw)
	require.NoError(t, err)
	fromSpans, err := Segments(spans)
	require.NoError(t, err)

	assert.Equal(t, fromRaw, fromSpans)
}

func TestSettings_Toggle(t *testing.T) {
	s := NewSettings(DefaultRules())

	assert.True(t, s.Toggle("ghunnah"))
	r, ok := s.Rule("ghunnah")
	require.True(t, ok)
	assert.False(t, r.Enabled)

	assert.True(t, s.Toggle("ghunnah"))
	r, _ = s.Rule("ghunnah")
	assert.True(t, r.Enabled)

	assert.False(t, s.Toggle("no_such_rule"))
}

func TestSettings_SetAll(t *testing.T) {
	s := NewSettings(DefaultRules())

	s.SetAll(false)
	assert.Empty(t, s.EnabledIDs())

	s.SetAll(true)
	assert.Len(t, s.EnabledIDs(), len(DefaultRules()))
}

func TestSettings_DoesNotShareCatalogue(t *testing.T) {
	rules := DefaultRules()
	s := NewSettings(rules)
	s.SetAll(false)

	assert.True(t, rules[0].Enabled)
}

func TestStylesheet(t *testing.T) {
	s := NewSettings([]Rule{
		{ID: "ghunnah", Color: "green", Enabled: true},
		{ID: "slnt", Color: "rgb(177, 177, 177)", Enabled: false},
	})

	css := s.Stylesheet()
	lines := strings.Split(css, "\n")
	assert.Equal(t, []string{
		".ghunnah { color: green; }",
		".slnt { color: inherit; }",
	}, lines)
}

func TestRule_Hex(t *testing.T) {
	tests := []struct {
		color  string
		want   string
		wantOK bool
	}{
		{color: "rgb(177, 177, 177)", want: "#b1b1b1", wantOK: true},
		{color: "rgb(0,155,155)", want: "#009b9b", wantOK: true},
		{color: "orange", want: "#ffa500", wantOK: true},
		{color: "#123abc", want: "#123abc", wantOK: true},
		{color: "rgb(300, 0, 0)", wantOK: false},
		{color: "hsl(0, 0%, 0%)", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.color, func(t *testing.T) {
			got, ok := Rule{Color: tt.color}.Hex()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDefaultRules_AllHaveHexColors(t *testing.T) {
	for _, r := range DefaultRules() {
		_, ok := r.Hex()
		assert.True(t, ok, "rule %s color %q", r.ID, r.Color)
	}
}
