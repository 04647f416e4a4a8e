package verse

// Page represents a processed chapter page: metadata plus display verses.
type Page struct {
	Chapter Chapter
	Verses  []Verse
}

// VerseNumbers returns all verse numbers on the page.
func (p *Page) VerseNumbers() []int {
	numbers := make([]int, len(p.Verses))
	for i, v := range p.Verses {
		numbers[i] = v.Number
	}
	return numbers
}

// Find returns the verse with the given number.
func (p *Page) Find(number int) (*Verse, bool) {
	for i := range p.Verses {
		if p.Verses[i].Number == number {
			return &p.Verses[i], true
		}
	}
	return nil, false
}

// TranslatedCount returns how many verses carry a translation.
func (p *Page) TranslatedCount() int {
	var n int
	for _, v := range p.Verses {
		if v.HasTranslation() {
			n++
		}
	}
	return n
}
