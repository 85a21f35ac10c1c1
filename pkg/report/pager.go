package report

import "github.com/srodi/proctop/pkg/types"

// Pager slices a sorted list into fixed-size pages.
type Pager struct {
	Size int
}

// NewPager falls back to the default page size for non-positive sizes.
func NewPager(size int) Pager {
	if size <= 0 {
		size = types.DefaultPageSize
	}
	return Pager{Size: size}
}

// MaxPage is the highest valid zero-based page index for n items.
func (p Pager) MaxPage(n int) int {
	if n <= 0 {
		return 0
	}
	return n / p.Size
}

// Page returns at most Size items starting at index*Size.
func (p Pager) Page(seq []types.Process, index int) []types.Process {
	if index < 0 {
		return nil
	}
	start := index * p.Size
	if start >= len(seq) {
		return nil
	}
	end := min(start+p.Size, len(seq))
	return seq[start:end]
}

// Next advances one page, clamped to the last page.
func (p Pager) Next(index, n int) int {
	return min(index+1, p.MaxPage(n))
}

// Prev goes back one page, clamped to the first page.
func (p Pager) Prev(index int) int {
	return max(index-1, 0)
}

// Row returns the process shown on visible row (1-based) of page index.
func (p Pager) Row(seq []types.Process, index, row int) (types.Process, bool) {
	page := p.Page(seq, index)
	if row < 1 || row > len(page) {
		return types.Process{}, false
	}
	return page[row-1], true
}
