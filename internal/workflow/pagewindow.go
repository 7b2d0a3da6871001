package workflow

import "slices"

// PageItem is one pagination control: a page button or an ellipsis marker.
type PageItem struct {
	Page     int  `json:"page,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// PageWindow returns the visible controls for current page c out of t pages:
// pages 1, t, c-1, c, c+1 in order, with one ellipsis in each gap.
func PageWindow(c, t int) []PageItem {
	if t <= 0 {
		return nil
	}
	if c < 1 {
		c = 1
	}
	if c > t {
		c = t
	}
	// 只看可能出现的页码，t 再大也是常数步
	cand := []int{1, 2, c - 1, c, c + 1, t - 1, t}
	slices.Sort(cand)
	var out []PageItem
	last := 0
	for _, p := range cand {
		if p < 1 || p > t || p == last {
			continue
		}
		last = p
		switch {
		case p == 1 || p == t || (p >= c-1 && p <= c+1):
			out = append(out, PageItem{Page: p})
		case p == 2 && c > 3, p == t-1 && c < t-2:
			out = append(out, PageItem{Ellipsis: true})
		}
	}
	return out
}
