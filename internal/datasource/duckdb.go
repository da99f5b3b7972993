package datasource

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/swing-backtest/internal/logger"
	"github.com/rxtech-lab/swing-backtest/internal/types"
	"github.com/rxtech-lab/swing-backtest/pkg/errors"
	"go.uber.org/zap"
)

// DuckDBDataSource reads bar files through an in-memory DuckDB connection.
// Parquet and CSV files are exposed as a view, so time filters run in SQL
// instead of in Go.
type DuckDBDataSource struct {
	db      *sql.DB
	logger  *logger.Logger
	sq      squirrel.StatementBuilderType
	columns map[string]bool
}

// NewDataSource creates a new DuckDB-backed data source. Call Initialize to
// point it at a bar file before loading.
func NewDataSource(logger *logger.Logger) (DataSource, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to open DuckDB connection", err)
	}

	return &DuckDBDataSource{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Initialize implements DataSource.
func (d *DuckDBDataSource) Initialize(path string) error {
	d.logger.Debug("Initializing DuckDB data source", zap.String("path", path))

	var reader string

	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		reader = "read_parquet"
	case ".csv":
		reader = "read_csv_auto"
	default:
		return errors.Newf(errors.ErrCodeInvalidParameter, "unsupported bar file extension %q", filepath.Ext(path))
	}

	if _, err := d.db.Exec(`DROP VIEW IF EXISTS bars;`); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop existing view", err)
	}

	// CREATE VIEW is not expressible with Squirrel, so raw SQL here.
	query := fmt.Sprintf(`CREATE VIEW bars AS SELECT * FROM %s('%s');`, reader, path)
	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to read bar file %s", path)
	}

	return d.inspectColumns()
}

// inspectColumns records which columns the bar file actually carries, so
// close-only CSV exports can still be loaded.
func (d *DuckDBDataSource) inspectColumns() error {
	rows, err := d.db.Query(`SELECT column_name FROM information_schema.columns WHERE table_name = 'bars'`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to inspect bar file columns", err)
	}
	defer rows.Close()

	d.columns = make(map[string]bool)

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan column name", err)
		}

		d.columns[strings.ToLower(name)] = true
	}

	if err := rows.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to inspect bar file columns", err)
	}

	if d.timeColumn() == "" {
		return errors.New(errors.ErrCodeMarketDataParseFailed, "bar file has no time or date column")
	}

	if !d.columns["close"] {
		return errors.New(errors.ErrCodeMarketDataParseFailed, "bar file has no close column")
	}

	return nil
}

// timeColumn returns the name of the timestamp column, or "" if none exists.
func (d *DuckDBDataSource) timeColumn() string {
	for _, candidate := range []string{"time", "date", "timestamp"} {
		if d.columns[candidate] {
			return candidate
		}
	}

	return ""
}

// priceColumn returns the column expression for a price field, falling back
// to the close price when the file does not carry the column.
func (d *DuckDBDataSource) priceColumn(name string) string {
	if d.columns[name] {
		return name
	}

	return "close"
}

// LoadSeries implements DataSource.
func (d *DuckDBDataSource) LoadSeries(symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) (*types.BarSeries, error) {
	if d.columns == nil {
		return nil, errors.New(errors.ErrCodeQueryFailed, "data source not initialized")
	}

	timeCol := d.timeColumn()

	volumeCol := "0"
	if d.columns["volume"] {
		volumeCol = "volume"
	}

	builder := d.sq.
		Select(
			fmt.Sprintf("CAST(%s AS TIMESTAMP)", timeCol),
			d.priceColumn("open"),
			d.priceColumn("high"),
			d.priceColumn("low"),
			"close",
			volumeCol,
		).
		From("bars").
		OrderBy(timeCol + " ASC")

	if d.columns["symbol"] {
		builder = builder.Where(squirrel.Eq{"symbol": symbol})
	}

	if start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{timeCol: start.Unwrap()})
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{timeCol: end.Unwrap()})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build bar query", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query bars", err)
	}
	defer rows.Close()

	bars := make([]types.Bar, 0, 1000)

	for rows.Next() {
		var bar types.Bar

		err := rows.Scan(&bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan bar", err)
		}

		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read bars", err)
	}

	d.logger.Debug("Loaded bars from DuckDB",
		zap.String("symbol", symbol),
		zap.Int("count", len(bars)),
	)

	return types.NewBarSeries(symbol, bars)
}

// Count implements DataSource.
func (d *DuckDBDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	if d.columns == nil {
		return 0, errors.New(errors.ErrCodeQueryFailed, "data source not initialized")
	}

	timeCol := d.timeColumn()

	builder := d.sq.Select("COUNT(*)").From("bars")

	if start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{timeCol: start.Unwrap()})
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{timeCol: end.Unwrap()})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build count query", err)
	}

	var count int
	if err := d.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count bars", err)
	}

	return count, nil
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	if d.db == nil {
		return nil
	}

	err := d.db.Close()
	d.db = nil

	return err
}
