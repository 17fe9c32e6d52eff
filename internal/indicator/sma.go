package indicator

import (
	"fmt"
	"time"

	"github.com/newthinker/macross/internal/core"
)

// SMA calculates Simple Moving Average
// Returns slice of length: len(prices) - period + 1
func SMA(prices []float64, period int) []float64 {
	if len(prices) < period {
		return []float64{}
	}

	result := make([]float64, 0, len(prices)-period+1)

	// Calculate first SMA
	var sum float64
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	result = append(result, sum/float64(period))

	// Rolling calculation
	for i := period; i < len(prices); i++ {
		sum = sum - prices[i-period] + prices[i]
		result = append(result, sum/float64(period))
	}

	return result
}

// Point is one period of the aligned short/long moving average pair.
// Short and Long are only meaningful when the matching Has flag is set;
// a window is undefined until `window` prices of history exist.
type Point struct {
	Timestamp time.Time
	Short     float64
	Long      float64
	HasShort  bool
	HasLong   bool
}

// Defined reports whether both moving averages exist at this period.
func (p Point) Defined() bool {
	return p.HasShort && p.HasLong
}

// ValidateWindows checks the short/long window pair. Both must be
// positive and short must be strictly less than long.
func ValidateWindows(short, long int) error {
	if short <= 0 || long <= 0 {
		return core.WrapError(core.ErrInvalidWindow,
			fmt.Errorf("windows must be positive, got short=%d long=%d", short, long))
	}
	if short >= long {
		return core.WrapError(core.ErrInvalidWindow,
			fmt.Errorf("short window must be less than long window, got short=%d long=%d", short, long))
	}
	return nil
}

// CheckLength reports ErrInsufficientData when the series is shorter
// than the long window. Callers may treat this as a warning: the pair
// calculation still succeeds, the long average just never defines.
func CheckLength(n, long int) error {
	if n < long {
		return core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("series has %d points, long window needs %d", n, long))
	}
	return nil
}

// Pair computes the trailing short- and long-window arithmetic means for
// every index of the series, aligned to the input. points[i].Short is
// defined starting at index short-1, points[i].Long at index long-1.
func Pair(series []core.PricePoint, short, long int) ([]Point, error) {
	if err := ValidateWindows(short, long); err != nil {
		return nil, err
	}

	prices := make([]float64, len(series))
	for i, p := range series {
		prices[i] = p.Price
	}

	shortMA := SMA(prices, short)
	longMA := SMA(prices, long)

	points := make([]Point, len(series))
	for i := range series {
		points[i].Timestamp = series[i].Timestamp
		if i >= short-1 {
			points[i].Short = shortMA[i-(short-1)]
			points[i].HasShort = true
		}
		if i >= long-1 {
			points[i].Long = longMA[i-(long-1)]
			points[i].HasLong = true
		}
	}

	return points, nil
}
