// Package datasource loads price and news tables from CSV files through
// DuckDB, which handles header detection, type inference and date parsing.
package datasource

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/mankiwan/news-algo/internal/logger"
	"github.com/mankiwan/news-algo/internal/types"
	"github.com/mankiwan/news-algo/pkg/errors"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"
)

// unixTimestampAlias is the computed column name used for resolved timestamps.
const unixTimestampAlias = "__unix_timestamp"

// PriceQuery selects the columns of a price CSV.
type PriceQuery struct {
	// TimeColumn holds bar open times, either as datetimes or epoch seconds.
	TimeColumn string
	// PriceColumn holds the price used for lookups.
	PriceColumn string
}

// DefaultPriceQuery matches the Binance kline export layout.
func DefaultPriceQuery() PriceQuery {
	return PriceQuery{
		TimeColumn:  "open_time",
		PriceColumn: "close",
	}
}

// NewsQuery selects the columns of a news CSV.
type NewsQuery struct {
	// DateColumn holds the event date or datetime.
	DateColumn string
	// TimeColumn optionally holds a separate time-of-day column combined with
	// the date column.
	TimeColumn string
	// TokenColumn holds the asset/token field.
	TokenColumn string
}

// DuckDB is a CSV-backed data source. One instance holds a single in-memory
// DuckDB database reused across loads.
type DuckDB struct {
	db  *sql.DB
	log *logger.Logger
	sq  squirrel.StatementBuilderType
}

// NewDuckDB opens an in-memory DuckDB database.
func NewDuckDB(log *logger.Logger) (*DuckDB, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to open duckdb", err)
	}

	return &DuckDB{
		db:  db,
		log: log,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Close releases the underlying database.
func (d *DuckDB) Close() error {
	return d.db.Close()
}

// LoadPriceSeries reads a price CSV and returns the series sorted ascending by
// timestamp. Rows without a resolvable timestamp or with a non-finite price
// are excluded.
func (d *DuckDB) LoadPriceSeries(path string, query PriceQuery) (types.PriceSeries, error) {
	if err := d.createView("price_data", path); err != nil {
		return nil, errors.Wrapf(errors.ErrCodePriceLoadFailed, err, "failed to load price data from %s", path)
	}

	timeExpr := epochExpr(query.TimeColumn)

	sqlStr, args, err := d.sq.
		Select(
			timeExpr+" AS "+unixTimestampAlias,
			fmt.Sprintf("CAST(%s AS DOUBLE) AS price", quoteIdent(query.PriceColumn)),
		).
		From("price_data").
		Where(timeExpr + " IS NOT NULL").
		OrderBy(unixTimestampAlias).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build price query", err)
	}

	rows, err := d.db.Query(sqlStr, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodePriceLoadFailed, err, "failed to query price data from %s", path)
	}
	defer rows.Close()

	var series types.PriceSeries

	for rows.Next() {
		var (
			timestamp int64
			price     sql.NullFloat64
		)

		if err := rows.Scan(&timestamp, &price); err != nil {
			return nil, errors.Wrap(errors.ErrCodePriceLoadFailed, "failed to scan price row", err)
		}

		if !price.Valid {
			continue
		}

		point := types.PricePoint{Timestamp: timestamp, Price: price.Float64}
		if !point.IsValid() {
			continue
		}

		series = append(series, point)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodePriceLoadFailed, "failed to read price rows", err)
	}

	d.log.Info("loaded price series",
		zap.String("path", path),
		zap.Int("points", len(series)),
	)

	return series, nil
}

// LoadNewsEvents reads a news CSV. Every source column is carried through in
// Fields; the timestamp is resolved from the date column (plus the optional
// time column) and left absent when unparseable, for the event filter to drop.
func (d *DuckDB) LoadNewsEvents(path string, query NewsQuery) ([]types.NewsEvent, error) {
	if err := d.createView("news_data", path); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeNewsLoadFailed, err, "failed to load news data from %s", path)
	}

	var timeExpr string
	if query.TimeColumn != "" {
		timeExpr = fmt.Sprintf(
			"CAST(epoch(TRY_CAST(CONCAT(CAST(%s AS VARCHAR), ' ', CAST(%s AS VARCHAR)) AS TIMESTAMP)) AS BIGINT)",
			quoteIdent(query.DateColumn), quoteIdent(query.TimeColumn),
		)
	} else {
		timeExpr = epochExpr(query.DateColumn)
	}

	sqlStr, args, err := d.sq.
		Select("*", timeExpr+" AS "+unixTimestampAlias).
		From("news_data").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build news query", err)
	}

	rows, err := d.db.Query(sqlStr, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeNewsLoadFailed, err, "failed to query news data from %s", path)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNewsLoadFailed, "failed to read news columns", err)
	}

	tokenIdx := -1

	for i, column := range columns {
		if column == query.TokenColumn {
			tokenIdx = i

			break
		}
	}

	if tokenIdx < 0 {
		return nil, errors.Newf(errors.ErrCodeColumnNotFound, "token column %q not found in %s", query.TokenColumn, path)
	}

	var events []types.NewsEvent

	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))

		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, errors.Wrap(errors.ErrCodeNewsLoadFailed, "failed to scan news row", err)
		}

		event := types.NewsEvent{
			Timestamp: optional.None[int64](),
			Token:     "",
			Fields:    make(map[string]string, len(columns)),
		}

		for i, column := range columns {
			if column == unixTimestampAlias {
				event.Timestamp = timestampValue(values[i])

				continue
			}

			text := stringValue(values[i])
			event.Fields[column] = text

			if i == tokenIdx {
				event.Token = text
			}
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNewsLoadFailed, "failed to read news rows", err)
	}

	d.log.Info("loaded news events",
		zap.String("path", path),
		zap.Int("events", len(events)),
	)

	return events, nil
}

// createView points a named view at a CSV file, replacing any previous one.
func (d *DuckDB) createView(name, path string) error {
	query := fmt.Sprintf(
		`CREATE OR REPLACE VIEW %s AS SELECT * FROM read_csv_auto('%s')`,
		name, strings.ReplaceAll(path, "'", "''"),
	)

	_, err := d.db.Exec(query)

	return err
}

// epochExpr resolves a column to epoch seconds whether it holds numeric
// seconds or a parseable datetime.
func epochExpr(column string) string {
	quoted := quoteIdent(column)

	return fmt.Sprintf(
		"COALESCE(TRY_CAST(%s AS BIGINT), CAST(epoch(TRY_CAST(CAST(%s AS VARCHAR) AS TIMESTAMP)) AS BIGINT))",
		quoted, quoted,
	)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func timestampValue(value any) optional.Option[int64] {
	switch v := value.(type) {
	case int64:
		return optional.Some(v)
	case int32:
		return optional.Some(int64(v))
	case float64:
		return optional.Some(int64(v))
	default:
		return optional.None[int64]()
	}
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(v)
	}
}
