package provider

import (
	"context"
	"time"

	"github.com/rxtech-lab/swing-backtest/pkg/errors"
	"github.com/rxtech-lab/swing-backtest/pkg/marketdata/writer"
)

// Type identifies a market data provider.
type Type string

const (
	TypePolygon Type = "polygon"
	TypeBinance Type = "binance"
)

// Validate checks that the provider type is supported.
func (t Type) Validate() error {
	switch t {
	case TypePolygon, TypeBinance:
		return nil
	default:
		return errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider %q", t)
	}
}

// OnDownloadProgress reports download progress. current and total are in
// provider-specific units (typically calendar days of the requested range).
type OnDownloadProgress = func(current float64, total float64, message string)

// Provider downloads daily bars for a ticker and persists them through a
// configured writer. Intraday aggregation is out of scope; callers resample
// the daily bars downstream when a coarser frequency is wanted.
type Provider interface {
	// ConfigWriter configures the writer the downloaded bars are persisted to.
	ConfigWriter(w writer.BarWriter)
	// Download fetches daily bars for the ticker over [startDate, endDate]
	// and writes them via the configured writer. It returns the output path
	// reported by the writer's Finalize. Cancel the context to abort.
	Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, onProgress OnDownloadProgress) (path string, err error)
}

// NewProvider creates a provider of the given type. apiKey is required for
// polygon and ignored for binance.
func NewProvider(providerType Type, apiKey string) (Provider, error) {
	switch providerType {
	case TypeBinance:
		return NewBinanceClient(), nil
	case TypePolygon:
		return NewPolygonClient(apiKey)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider %q", providerType)
	}
}
