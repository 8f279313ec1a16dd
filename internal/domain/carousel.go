package domain

// Carousel tracks which photo of an entry card is on display.
// Count must be at least 1; entries are never created without a photo.
type Carousel struct {
	Index int
	Count int
}

// NewCarousel starts at the first photo. An out-of-range start index is
// wrapped into range so links built from stale pages stay usable.
func NewCarousel(count, start int) Carousel {
	c := Carousel{Count: count}
	if count > 0 {
		c.Index = mod(start, count)
	}
	return c
}

// Next moves one photo forward, wrapping to the first.
func (c Carousel) Next() Carousel {
	if c.Count == 0 {
		return c
	}
	return Carousel{Index: mod(c.Index+1, c.Count), Count: c.Count}
}

// Prev moves one photo back, wrapping to the last.
func (c Carousel) Prev() Carousel {
	if c.Count == 0 {
		return c
	}
	return Carousel{Index: mod(c.Index-1, c.Count), Count: c.Count}
}

// Dots reports one flag per photo, true for the current one.
func (c Carousel) Dots() []bool {
	dots := make([]bool, c.Count)
	if c.Count > 0 {
		dots[c.Index] = true
	}
	return dots
}

// Single is true when prev/next would land on the same photo.
func (c Carousel) Single() bool { return c.Count <= 1 }

func mod(a, n int) int {
	return ((a % n) + n) % n
}

// Card is the display model of one entry in the listing.
type Card struct {
	Entry
	Carousel Carousel
}

// NewCard builds a card showing the photo at index start.
func NewCard(e Entry, start int) Card {
	return Card{Entry: e, Carousel: NewCarousel(len(e.Photos), start)}
}

// CurrentPhoto is the URL of the photo on display.
func (c Card) CurrentPhoto() string {
	if len(c.Photos) == 0 {
		return ""
	}
	return c.Photos[c.Carousel.Index]
}
