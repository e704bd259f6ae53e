package breakdown

// Pager navigates an idea's breakdown as an ordered sequence of text pages.
// Pages are 0-indexed internally and 1-indexed for display. A Pager always
// holds at least one page and its current index always stays in range;
// out-of-range operations are guarded no-ops rather than errors.
type Pager struct {
	pages   []string
	current int
}

// NewPager creates a Pager over the given pages. A nil or empty slice
// yields a single empty page.
func NewPager(pages []string) *Pager {
	if len(pages) == 0 {
		pages = []string{""}
	}
	copied := make([]string, len(pages))
	copy(copied, pages)
	return &Pager{pages: copied}
}

// Len returns the number of pages.
func (p *Pager) Len() int {
	return len(p.pages)
}

// Current returns the active page index and its content.
func (p *Pager) Current() (int, string) {
	return p.current, p.pages[p.current]
}

// Pages returns a copy of all pages in order.
func (p *Pager) Pages() []string {
	out := make([]string, len(p.pages))
	copy(out, p.pages)
	return out
}

// Next advances to the following page. No-op at the last page.
func (p *Pager) Next() {
	if p.current < len(p.pages)-1 {
		p.current++
	}
}

// Previous moves back one page. No-op at the first page.
func (p *Pager) Previous() {
	if p.current > 0 {
		p.current--
	}
}

// GoTo moves to the given page index, clamped to the valid range.
func (p *Pager) GoTo(index int) {
	if index < 0 {
		index = 0
	}
	if index > len(p.pages)-1 {
		index = len(p.pages) - 1
	}
	p.current = index
}

// AddPage appends an empty page and moves focus to it.
func (p *Pager) AddPage() {
	p.pages = append(p.pages, "")
	p.current = len(p.pages) - 1
}

// RemovePage deletes the page at index. Removing the only remaining page is
// a guarded no-op. When the removed page is at or before the current index,
// the current index is decremented so it stays in range.
func (p *Pager) RemovePage(index int) {
	if len(p.pages) <= 1 || index < 0 || index >= len(p.pages) {
		return
	}
	p.pages = append(p.pages[:index], p.pages[index+1:]...)
	if index <= p.current && p.current > 0 {
		p.current--
	}
}

// SetContent replaces the content of the active page. Editing operates only
// on the current page.
func (p *Pager) SetContent(content string) {
	p.pages[p.current] = content
}
