package store

import "sync"

// Pager derives paging state from a fetched total count and a fixed page
// size. Page 1 is the first page; transitions clamp at both boundaries.
type Pager struct {
	mu       sync.Mutex
	page     int
	pageSize int
	count    int
	search   string
	category string
}

// NewPager creates a pager at page 1.
func NewPager(pageSize int) *Pager {
	if pageSize < 1 {
		pageSize = 1
	}
	return &Pager{page: 1, pageSize: pageSize}
}

// SetCount records the total item count from the latest fetch and clamps the
// current page back into range, so a page requested beyond the last lands on
// the last.
func (p *Pager) SetCount(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n < 0 {
		n = 0
	}
	p.count = n
	if tp := p.totalPagesLocked(); p.page > tp {
		p.page = tp
	}
}

// TotalPages reports the page count for the held total.
func (p *Pager) TotalPages() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalPagesLocked()
}

func (p *Pager) totalPagesLocked() int {
	return TotalPages(p.count, p.pageSize)
}

// TotalPages is ceil(count/pageSize), never below 1 even for an empty set.
// The Pager uses it internally; callers paging without held state share the
// same math.
func TotalPages(count, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	tp := (count + pageSize - 1) / pageSize
	if tp < 1 {
		tp = 1
	}
	return tp
}

// Page returns the current page.
func (p *Pager) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// PageSize returns the fixed page size.
func (p *Pager) PageSize() int {
	return p.pageSize
}

// SetPage jumps to a page, clamped to [1, TotalPages].
func (p *Pager) SetPage(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n < 1 {
		n = 1
	}
	if tp := p.totalPagesLocked(); n > tp {
		n = tp
	}
	p.page = n
	return p.page
}

// Next advances one page, a no-op on the last page.
func (p *Pager) Next() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.page < p.totalPagesLocked() {
		p.page++
	}
	return p.page
}

// Prev steps back one page, a no-op on page 1.
func (p *Pager) Prev() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.page > 1 {
		p.page--
	}
	return p.page
}

// SetFilter records the search term and category selector. When either
// actually changes the page resets to 1, so a narrowed result set is never
// requested at a page it no longer has. Returns whether a change occurred.
func (p *Pager) SetFilter(search, category string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.search == search && p.category == category {
		return false
	}
	p.search = search
	p.category = category
	p.page = 1
	return true
}

// Filter returns the current search term and category selector.
func (p *Pager) Filter() (search, category string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.search, p.category
}
