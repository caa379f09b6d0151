package updates

import "time"

// Group is one named date bucket of the feed.
type Group struct {
	Label string          `json:"label"`
	Items []ServiceUpdate `json:"items"`
}

// GroupByDay partitions updates into date buckets by comparing each
// record's calendar day against now: "Today", "Yesterday", then the
// absolute date. Relative order is preserved inside a bucket and bucket
// order follows first appearance in the input.
func GroupByDay(items []ServiceUpdate, now time.Time) []Group {
	groups := []Group{}
	index := map[string]int{}
	for _, item := range items {
		label := dayLabel(item.OccurredOn, now)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, Group{Label: label})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

func dayLabel(d, now time.Time) string {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, now.Location())
	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday"
	default:
		return day.Format("2 Jan 2006")
	}
}
