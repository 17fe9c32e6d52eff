package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/newthinker/macross/internal/core"
)

// HistoryProvider fetches a chronological daily price series. Providers
// return clean data: strictly increasing timestamps, positive prices,
// missing bars dropped.
type HistoryProvider interface {
	Name() string
	FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]core.PricePoint, error)
}

// ValidateSeries checks the contract every provider must deliver.
func ValidateSeries(series []core.PricePoint) error {
	if len(series) == 0 {
		return core.ErrNoData
	}
	for i, p := range series {
		if !p.IsValid() {
			return core.WrapError(core.ErrNoData,
				fmt.Errorf("index %d: invalid price point (price=%f)", i, p.Price))
		}
		if i > 0 && !p.Timestamp.After(series[i-1].Timestamp) {
			return core.WrapError(core.ErrNonMonotonicInput,
				fmt.Errorf("index %d: %s does not follow %s",
					i,
					p.Timestamp.Format(time.RFC3339),
					series[i-1].Timestamp.Format(time.RFC3339)))
		}
	}
	return nil
}
