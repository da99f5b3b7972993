package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/moznion/go-optional"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/swing-backtest/internal/backtest"
	"github.com/rxtech-lab/swing-backtest/internal/datasource"
	"github.com/rxtech-lab/swing-backtest/internal/logger"
	"github.com/rxtech-lab/swing-backtest/internal/types"
	"github.com/rxtech-lab/swing-backtest/internal/writer"
	"github.com/rxtech-lab/swing-backtest/pkg/marketdata"
	"github.com/rxtech-lab/swing-backtest/pkg/marketdata/provider"
)

var dateLayouts = cli.TimestampConfig{
	Layouts: []string{"2006-01-02"},
}

// downloadAction downloads daily bars from a provider into a Parquet file.
func downloadAction(ctx context.Context, cmd *cli.Command) error {
	ticker := cmd.String("ticker")
	startDate := cmd.Timestamp("start")
	endDate := cmd.Timestamp("end")
	providerFlag := cmd.String("provider")
	dataPath := cmd.String("data")

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", ticker)),
		progressbar.OptionShowCount(),
	)

	onProgress := func(current float64, total float64, message string) {
		bar.ChangeMax(int(total))
		bar.Set(int(current))
	}

	client, err := marketdata.NewClient(marketdata.ClientConfig{
		ProviderType:  provider.Type(providerFlag),
		DataPath:      dataPath,
		PolygonAPIKey: os.Getenv("POLYGON_API_KEY"),
	}, onProgress)
	if err != nil {
		return err
	}

	path, err := client.Download(ctx, marketdata.DownloadParams{
		Ticker:    ticker,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		return err
	}

	bar.Finish()
	fmt.Printf("\nDownloaded %s to %s\n", ticker, path)

	return nil
}

// loadConfig builds the run configuration from the optional config file and
// CLI flag overrides.
func loadConfig(cmd *cli.Command) (backtest.Config, error) {
	config := backtest.DefaultConfig()

	if configPath := cmd.String("config"); configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return backtest.Config{}, fmt.Errorf("failed to read config file: %w", err)
		}

		config, err = backtest.ParseConfig(data)
		if err != nil {
			return backtest.Config{}, err
		}
	}

	if cmd.IsSet("resample") {
		config.Resample = marketdata.ResampleRule(cmd.String("resample"))
	}

	if cmd.IsSet("start") {
		config.StartTime = optional.Some(cmd.Timestamp("start"))
	}

	if cmd.IsSet("end") {
		config.EndTime = optional.Some(cmd.Timestamp("end"))
	}

	return config, config.Validate()
}

// runAction loads bars, resamples them, runs the delay grid search, and
// writes the results.
func runAction(ctx context.Context, cmd *cli.Command) error {
	l, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer l.Sync()

	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ticker := cmd.String("ticker")
	input := cmd.String("input")

	source, err := datasource.NewDataSource(l)
	if err != nil {
		return err
	}
	defer source.Close()

	if err := source.Initialize(input); err != nil {
		return err
	}

	daily, err := source.LoadSeries(ticker, config.StartTime, config.EndTime)
	if err != nil {
		return err
	}

	resampledBars, err := marketdata.Resample(daily.Bars, config.Resample)
	if err != nil {
		return err
	}

	series, err := types.NewBarSeries(ticker, resampledBars)
	if err != nil {
		return err
	}

	totalCells := (config.MaxEntryDelay + 1) * (config.MaxExitDelay + 1)
	bar := progressbar.NewOptions(totalCells,
		progressbar.OptionSetDescription("Searching delay grid"),
		progressbar.OptionShowCount(),
	)

	output, err := backtest.Run(series, config, l, func(completed, total int) {
		bar.Set(completed)
	})
	if err != nil {
		return err
	}

	bar.Finish()

	resultWriter, err := writer.NewCSVWriter(cmd.String("output"))
	if err != nil {
		return err
	}
	defer resultWriter.Close()

	if err := resultWriter.WriteTrades(output.Best.Result.Trades); err != nil {
		return err
	}

	if err := resultWriter.WriteSignals(output.RawSignals); err != nil {
		return err
	}

	if err := resultWriter.WriteEquityCurve(output.Best.Result.EquityCurve); err != nil {
		return err
	}

	if err := resultWriter.WriteReport(output.Report); err != nil {
		return err
	}

	reportYAML, err := yaml.Marshal(output.Report)
	if err != nil {
		return err
	}

	fmt.Printf("\n%s\nResults written to %s\n", reportYAML, resultWriter.Dir())

	return nil
}

// schemaAction writes the config JSON schema and a sample config file.
func schemaAction(ctx context.Context, cmd *cli.Command) error {
	outputDir := cmd.String("output")

	config := backtest.DefaultConfig()

	schema, err := config.GenerateSchema()
	if err != nil {
		return err
	}

	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	schemaName := "swing-backtest-config.json"
	schemaPath := filepath.Join(outputDir, schemaName)

	if err := os.WriteFile(schemaPath, schemaJSON, 0644); err != nil {
		return err
	}

	samplePath := filepath.Join(outputDir, "swing-backtest-config.yaml")
	if _, err := os.Stat(samplePath); os.IsNotExist(err) {
		yamlBytes, err := yaml.Marshal(config)
		if err != nil {
			return err
		}

		yamlBytes = append([]byte("# yaml-language-server: $schema="+schemaName+"\n"), yamlBytes...)
		if err := os.WriteFile(samplePath, yamlBytes, 0644); err != nil {
			return err
		}

		fmt.Printf("Sample config generated at %s\n", samplePath)
	}

	fmt.Printf("Schema generated at %s\n", schemaPath)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "swing",
		Usage: "Swing trading signal generation and trade simulation",
		Commands: []*cli.Command{
			{
				Name:  "download",
				Usage: "Download historical daily bars",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "ticker",
						Aliases:  []string{"t"},
						Usage:    "Ticker symbol",
						Required: true,
					},
					&cli.TimestampFlag{
						Name:     "start",
						Aliases:  []string{"s"},
						Usage:    "Start date in `YYYY-MM-DD` format",
						Required: true,
						Config:   dateLayouts,
					},
					&cli.TimestampFlag{
						Name:    "end",
						Aliases: []string{"e"},
						Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
						Value:   time.Now(),
						Config:  dateLayouts,
					},
					&cli.StringFlag{
						Name:    "provider",
						Aliases: []string{"p"},
						Usage:   fmt.Sprintf("Data provider to use (%s, %s)", provider.TypePolygon, provider.TypeBinance),
						Value:   string(provider.TypePolygon),
					},
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Usage:   "Path to the data output directory",
						Value:   "data",
					},
				},
				Action: downloadAction,
			},
			{
				Name:  "run",
				Usage: "Run the signal pipeline and delay grid search over a bar file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "ticker",
						Aliases:  []string{"t"},
						Usage:    "Ticker symbol",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Path to the daily bar file (Parquet or CSV)",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to a YAML config file",
					},
					&cli.StringFlag{
						Name:    "resample",
						Aliases: []string{"r"},
						Usage:   "Bar frequency to operate on (D, W-FRI, M)",
					},
					&cli.TimestampFlag{
						Name:    "start",
						Aliases: []string{"s"},
						Usage:   "Drop bars before this date (`YYYY-MM-DD`)",
						Config:  dateLayouts,
					},
					&cli.TimestampFlag{
						Name:    "end",
						Aliases: []string{"e"},
						Usage:   "Drop bars after this date (`YYYY-MM-DD`)",
						Config:  dateLayouts,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Directory the results are written to",
						Value:   "results",
					},
				},
				Action: runAction,
			},
			{
				Name:  "schema",
				Usage: "Generate the config JSON schema and a sample config",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Directory the schema is written to",
						Value:   "config",
					},
				},
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
