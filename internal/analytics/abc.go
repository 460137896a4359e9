package analytics

import (
	"sort"
)

// ABCClass is a Pareto segmentation tier.
type ABCClass string

const (
	ClassA ABCClass = "A"
	ClassB ABCClass = "B"
	ClassC ABCClass = "C"
)

// ABCItem is one classified item with its contribution and running
// cumulative share.
type ABCItem struct {
	ID              int      `json:"id"`
	Label           string   `json:"label"`
	Contribution    float64  `json:"contribution"`
	Share           float64  `json:"share"`
	CumulativeShare float64  `json:"cumulative_share"`
	Class           ABCClass `json:"class"`
}

// ABCResult is the full classification, ordered by contribution
// descending.
type ABCResult struct {
	Items []ABCItem `json:"items"`
}

// Counts returns the number of items per class.
func (r *ABCResult) Counts() map[ABCClass]int {
	counts := make(map[ABCClass]int, 3)
	for _, item := range r.Items {
		counts[item.Class]++
	}
	return counts
}

// ClassifyABC segments items by cumulative contribution share. Items
// are sorted by contribution descending (ties broken by label, then
// ID, for stable output); an item whose running cumulative share stays
// at or below cutA is class A, at or below cutB class B, class C above.
//
// Edge cases: an empty input yields an empty result; with a zero total
// contribution every item is class C; a single item with positive
// contribution is always class A (its cumulative share is 1 but it is
// the head of the curve).
func ClassifyABC(items []ABCItem, cutA, cutB float64) *ABCResult {
	result := &ABCResult{Items: make([]ABCItem, len(items))}
	copy(result.Items, items)

	sort.SliceStable(result.Items, func(i, j int) bool {
		a, b := result.Items[i], result.Items[j]
		if a.Contribution != b.Contribution {
			return a.Contribution > b.Contribution
		}
		if a.Label != b.Label {
			return a.Label < b.Label
		}
		return a.ID < b.ID
	})

	total := 0.0
	for _, item := range result.Items {
		total += item.Contribution
	}

	if total <= 0 {
		for i := range result.Items {
			result.Items[i].Share = 0
			result.Items[i].CumulativeShare = 0
			result.Items[i].Class = ClassC
		}
		return result
	}

	cumulative := 0.0
	for i := range result.Items {
		item := &result.Items[i]
		item.Share = item.Contribution / total
		cumulative += item.Share
		item.CumulativeShare = cumulative

		switch {
		case i == 0:
			// The largest contributor is always A even when it alone
			// exceeds the class A cut.
			item.Class = ClassA
		case cumulative <= cutA:
			item.Class = ClassA
		case cumulative <= cutB:
			item.Class = ClassB
		default:
			item.Class = ClassC
		}

		if item.Contribution <= 0 {
			item.Class = ClassC
		}
	}

	return result
}
