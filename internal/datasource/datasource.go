package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/swing-backtest/internal/types"
)

// DataSource loads historical daily bars from a local file.
type DataSource interface {
	// Initialize points the data source at a bar file (Parquet or CSV).
	Initialize(path string) error
	// LoadSeries reads all bars in ascending time order, optionally bounded
	// by the given range, and returns them labeled with the symbol.
	LoadSeries(symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) (*types.BarSeries, error)
	// Count returns the number of bars within the optional time range.
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// Close releases the underlying database connection.
	Close() error
}
