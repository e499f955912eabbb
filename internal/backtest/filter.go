package backtest

import (
	"sort"
	"strings"

	"github.com/mankiwan/news-algo/internal/types"
)

// FilterEvents selects the news events relevant to an asset: the token field
// must contain one of the asset's patterns (case-insensitive substring match)
// and the event must carry a timestamp. The result is sorted ascending by
// timestamp with a stable sort, so events sharing a timestamp keep their input
// order. An empty result is a normal outcome, not an error; only an
// unsupported asset fails.
func FilterEvents(events []types.NewsEvent, asset types.Asset) ([]types.NewsEvent, error) {
	patterns, err := asset.Patterns()
	if err != nil {
		return nil, err
	}

	filtered := make([]types.NewsEvent, 0, len(events))

	for _, event := range events {
		if event.Timestamp.IsNone() {
			continue
		}

		token := strings.ToUpper(event.Token)
		for _, pattern := range patterns {
			if strings.Contains(token, pattern) {
				filtered = append(filtered, event)

				break
			}
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Timestamp.Unwrap() < filtered[j].Timestamp.Unwrap()
	})

	return filtered, nil
}
