package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/newthinker/macross/internal/collector"
	"github.com/newthinker/macross/internal/core"
)

const dateLayout = "2006-01-02"

// Loader reads a daily price series from a local CSV file with columns
// date,close[,volume] and an optional header row. It exists for
// reproducible offline runs: the same file always yields the same
// series.
type Loader struct {
	path string
}

// New creates a Loader for the given file path
func New(path string) *Loader {
	return &Loader{path: path}
}

func (l *Loader) Name() string {
	return "csvfile"
}

// FetchDaily loads the series and filters it to [start, end] inclusive.
// The symbol argument is ignored; a CSV file holds one series.
func (l *Loader) FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]core.PricePoint, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", l.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // allow 2 or 3 columns

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", l.path, err)
	}

	series := make([]core.PricePoint, 0, len(records))
	for i, rec := range records {
		if len(rec) < 2 {
			return nil, fmt.Errorf("%s line %d: expected date,close[,volume]", l.path, i+1)
		}

		ts, err := time.Parse(dateLayout, rec[0])
		if err != nil {
			if i == 0 {
				continue // header row
			}
			return nil, fmt.Errorf("%s line %d: bad date %q: %w", l.path, i+1, rec[0], err)
		}

		price, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad price %q: %w", l.path, i+1, rec[1], err)
		}

		point := core.PricePoint{Timestamp: ts.UTC(), Price: price}
		if len(rec) >= 3 && rec[2] != "" {
			volume, err := strconv.ParseUint(rec[2], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: bad volume %q: %w", l.path, i+1, rec[2], err)
			}
			point.Volume = volume
		}

		if point.Timestamp.Before(start) || point.Timestamp.After(end) {
			continue
		}
		series = append(series, point)
	}

	if err := collector.ValidateSeries(series); err != nil {
		return nil, err
	}

	return series, nil
}
