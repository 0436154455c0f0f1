package feed

import (
	"slices"
)

// Merge combines freshly admitted items with the previously persisted feed,
// collapsing by URL. A URL present in both keeps the fresh version. Within each
// input the first occurrence wins. Order is fresh items first, then previous.
func Merge(fresh, previous []FeedItem) []FeedItem {
	merged := make([]FeedItem, 0, len(fresh)+len(previous))
	index := make(map[string]struct{}, len(fresh)+len(previous))

	for _, batch := range [][]FeedItem{fresh, previous} {
		for _, item := range batch {
			if item.URL == "" {
				continue
			}
			if _, ok := index[item.URL]; ok {
				continue
			}
			index[item.URL] = struct{}{}
			merged = append(merged, item)
		}
	}

	return merged
}

// Rank sorts items newest first. Undated items go after every dated item;
// ties keep their input order.
func Rank(items []FeedItem) []FeedItem {
	ranked := slices.Clone(items)
	slices.SortStableFunc(ranked, func(a, b FeedItem) int {
		switch {
		case a.Published == nil && b.Published == nil:
			return 0
		case a.Published == nil:
			return 1
		case b.Published == nil:
			return -1
		}
		return b.Published.Compare(a.Published.Time)
	})
	return ranked
}

// Cap truncates items to at most max entries.
func Cap(items []FeedItem, max int) []FeedItem {
	if max < 0 {
		max = 0
	}
	if len(items) <= max {
		return items
	}
	return items[:max]
}
