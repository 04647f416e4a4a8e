package verse

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Key
		wantErr bool
	}{
		{name: "simple key", input: "2:255", want: Key{Chapter: 2, Verse: 255}},
		{name: "surrounding whitespace", input: " 1:7 ", want: Key{Chapter: 1, Verse: 7}},
		{name: "missing separator", input: "2255", wantErr: true},
		{name: "chapter out of range", input: "115:1", wantErr: true},
		{name: "zero verse", input: "1:0", wantErr: true},
		{name: "not a number", input: "a:b", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKey(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidKey))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.String(), got.String())
		})
	}
}

func TestClampChapter(t *testing.T) {
	assert.Equal(t, 1, ClampChapter(0))
	assert.Equal(t, 1, ClampChapter(-5))
	assert.Equal(t, 57, ClampChapter(57))
	assert.Equal(t, TotalChapters, ClampChapter(200))
}

func TestShowsBismillah(t *testing.T) {
	assert.False(t, ShowsBismillah(1))
	assert.False(t, ShowsBismillah(9))
	assert.True(t, ShowsBismillah(2))
	assert.True(t, ShowsBismillah(114))
}

func TestArabicNumerals(t *testing.T) {
	tests := []struct {
		input int
		want  string
	}{
		{input: 1, want: "١"},
		{input: 10, want: "١٠"},
		{input: 286, want: "٢٨٦"},
		{input: 0, want: ""},
		{input: -3, want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ArabicNumerals(tt.input), "input=%d", tt.input)
	}
}

func TestPage_Find(t *testing.T) {
	page := Page{
		Chapter: Chapter{Number: 1, VerseCount: 2},
		Verses: []Verse{
			{Number: 1, Key: "1:1", Translation: "In the name of Allah"},
			{Number: 2, Key: "1:2"},
		},
	}

	v, ok := page.Find(2)
	assert.True(t, ok)
	assert.Equal(t, "1:2", v.Key)

	_, ok = page.Find(3)
	assert.False(t, ok)

	assert.Equal(t, []int{1, 2}, page.VerseNumbers())
	assert.Equal(t, 1, page.TranslatedCount())
}
