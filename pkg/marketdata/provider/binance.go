package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"

	"github.com/rxtech-lab/swing-backtest/internal/types"
	"github.com/rxtech-lab/swing-backtest/pkg/errors"
	"github.com/rxtech-lab/swing-backtest/pkg/marketdata/writer"
)

// binancePageSize is the maximum number of klines Binance returns per request.
const binancePageSize = 500

type BinanceClient struct {
	client *binance.Client
	writer writer.BarWriter
}

func NewBinanceClient() Provider {
	return &BinanceClient{
		client: binance.NewClient("", ""),
		writer: nil,
	}
}

func (c *BinanceClient) ConfigWriter(w writer.BarWriter) {
	c.writer = w
}

// Download fetches daily klines for the ticker from Binance, paging through
// the API limit, and writes them through the configured writer.
func (c *BinanceClient) Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, onProgress OnDownloadProgress) (path string, err error) {
	if c.writer == nil {
		return "", errors.New(errors.ErrCodeMarketDataFetchFailed, "no writer configured for BinanceClient, call ConfigWriter first")
	}

	err = c.writer.Initialize()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to initialize writer", err)
	}

	defer func() {
		if cerr := c.writer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	startTimeMillis := startDate.UnixMilli()
	endTimeMillis := endDate.UnixMilli()

	currentStartTime := startTimeMillis
	written := 0

	for {
		klines, err := c.client.NewKlinesService().
			Symbol(ticker).
			Interval("1d").
			StartTime(currentStartTime).
			EndTime(endTimeMillis).
			Limit(binancePageSize).
			Do(ctx)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "failed to fetch klines from Binance", err)
		}

		if err := c.writeKlines(ticker, klines); err != nil {
			return "", err
		}

		written += len(klines)

		if onProgress != nil {
			onProgress(float64(currentStartTime-startTimeMillis), float64(endTimeMillis-startTimeMillis), fmt.Sprintf("Downloading %s", ticker))
		}

		// Last page.
		if len(klines) < binancePageSize {
			break
		}

		// Resume from just past the last kline to avoid duplicates.
		currentStartTime = klines[len(klines)-1].CloseTime + 1
		if currentStartTime >= endTimeMillis {
			break
		}
	}

	if written == 0 {
		return "", errors.Newf(errors.ErrCodeDataNotFound, "binance returned no daily klines for %s", ticker)
	}

	outputPath, err := c.writer.Finalize()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to finalize writer", err)
	}

	return outputPath, nil
}

// writeKlines converts a page of Binance klines to bars and writes them.
func (c *BinanceClient) writeKlines(ticker string, klines []*binance.Kline) error {
	for _, k := range klines {
		open, err := strconv.ParseFloat(k.Open, 64)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid open price %q", k.Open)
		}

		high, err := strconv.ParseFloat(k.High, 64)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid high price %q", k.High)
		}

		low, err := strconv.ParseFloat(k.Low, 64)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid low price %q", k.Low)
		}

		closePrice, err := strconv.ParseFloat(k.Close, 64)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid close price %q", k.Close)
		}

		volume, err := strconv.ParseFloat(k.Volume, 64)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid volume %q", k.Volume)
		}

		bar := types.Bar{
			Time:   time.UnixMilli(k.OpenTime).UTC(),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		}

		if err := c.writer.Write(ticker, bar); err != nil {
			return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to write bar", err)
		}
	}

	return nil
}
