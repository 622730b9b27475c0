package search

import (
	"sort"
	"strings"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/vidshare/internal/domain"
)

// entryIndex implements sahilm/fuzzy.Source over entry titles and sharers
type entryIndex struct {
	keys []string // Pre-computed lowercase "title sharer"
}

// String returns the search key at index i (implements fuzzy.Source)
func (idx entryIndex) String(i int) string { return idx.keys[i] }

// Len returns the number of items (implements fuzzy.Source)
func (idx entryIndex) Len() int { return len(idx.keys) }

func newEntryIndex(entries []domain.RecentlyViewedEntry) entryIndex {
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = strings.ToLower(e.DisplayTitle() + " " + e.Sharer())
	}
	return entryIndex{keys: keys}
}

// Filter returns the indexes of entries matching query, best match first.
// An empty query returns nil, meaning no filter is applied.
func Filter(entries []domain.RecentlyViewedEntry, query string) []int {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	matches := fuzzy.FindFrom(strings.ToLower(query), newEntryIndex(entries))
	out := make([]int, len(matches))
	for i, m := range matches {
		out[i] = m.Index
	}
	return out
}

// Rank returns entries whose title contains the query characters in order,
// closest title first. Ties keep the input order.
func Rank(entries []domain.RecentlyViewedEntry, query string) []domain.RecentlyViewedEntry {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	titles := make([]string, len(entries))
	for i, e := range entries {
		titles[i] = e.DisplayTitle()
	}

	ranks := lfuzzy.RankFindFold(query, titles)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	out := make([]domain.RecentlyViewedEntry, len(ranks))
	for i, r := range ranks {
		out[i] = entries[r.OriginalIndex]
	}
	return out
}
