package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/guregu/null/v6"
	"github.com/jackc/pgx/v5"

	"github.com/fundbuilder/saver/models"
	q "github.com/fundbuilder/saver/queries"
)

// GetMetadataBySymbol returns the stored metadata for symbol, or nil when the
// symbol has never been synced.
func (pg *Postgres) GetMetadataBySymbol(ctx context.Context, symbol string) (*models.SeriesMetadata, error) {
	query := q.Get(q.QueryHelper.Select.MetadataBySymbol)
	args := pgx.NamedArgs{
		"symbol": symbol,
	}

	res, err := Query[models.SeriesMetadata](ctx, pg, query, args)
	if err != nil {
		return nil, fmt.Errorf("unable to query metadata by symbol (%s): %w", symbol, err)
	}

	if len(res) == 0 {
		return nil, nil
	}

	return res[0], nil
}

// InsertNewMetadata stores metadata and writes the generated id back onto it.
func (pg *Postgres) InsertNewMetadata(ctx context.Context, metadata *models.SeriesMetadata, tx *pgx.Tx) error {
	query := q.Get(q.QueryHelper.Insert.Metadata)
	args := pgx.NamedArgs{
		"symbol":        metadata.Symbol,
		"lastRefreshed": metadata.LastRefreshed,
	}

	var err error
	if tx == nil {
		err = pg.db.QueryRow(ctx, query, args).Scan(&metadata.Id)
	} else {
		err = (*tx).QueryRow(ctx, query, args).Scan(&metadata.Id)
	}

	if err != nil {
		return fmt.Errorf("error inserting new metadata: %w", err)
	}

	return nil
}

func (pg *Postgres) UpdateLastRefreshedDate(ctx context.Context, id int32, lastRefreshed time.Time, tx *pgx.Tx) (err error) {
	query := q.Get(q.QueryHelper.Update.LastRefreshedDate)
	args := pgx.NamedArgs{
		"id":            id,
		"lastRefreshed": lastRefreshed,
	}

	if tx == nil {
		_, err = pg.db.Exec(ctx, query, args)
	} else {
		_, err = (*tx).Exec(ctx, query, args)
	}

	return
}

// GetMostRecentTimestampForSymbol returns the newest stored bar timestamp for
// symbol; the result is invalid when no bars are stored yet.
func (pg *Postgres) GetMostRecentTimestampForSymbol(ctx context.Context, symbol string) (null.Time, error) {
	query := q.Get(q.QueryHelper.Select.MostRecentTimestampBySymbol)
	args := pgx.NamedArgs{
		"symbol": symbol,
	}

	var res null.Time
	if err := pg.db.QueryRow(ctx, query, args).Scan(&res); err != nil {
		return null.Time{}, fmt.Errorf("unable to query most recent timestamp for symbol (%s): %w", symbol, err)
	}

	return res, nil
}

func (pg *Postgres) GetSeriesData(ctx context.Context, symbol string) ([]*models.SeriesPoint, error) {
	query := q.Get(q.QueryHelper.Select.SeriesDataBySymbol)
	args := pgx.NamedArgs{
		"symbol": symbol,
	}

	res, err := Query[models.SeriesPoint](ctx, pg, query, args)
	if err != nil {
		return nil, fmt.Errorf("unable to query data by symbol (%s): %w", symbol, err)
	}

	return res, nil
}

// GetCloses returns the non-null closes for symbol oldest first, optionally
// bounded to [from, to] when either edge is valid.
func (pg *Postgres) GetCloses(ctx context.Context, symbol string, from, to null.Time) ([]*models.ClosePoint, error) {
	query := q.Get(q.QueryHelper.Select.ClosesBySymbol)
	args := pgx.NamedArgs{
		"symbol": symbol,
		"from":   from,
		"to":     to,
	}

	res, err := Query[models.ClosePoint](ctx, pg, query, args)
	if err != nil {
		return nil, fmt.Errorf("unable to query closes by symbol (%s): %w", symbol, err)
	}

	return res, nil
}

func (pg *Postgres) InsertSeriesData(ctx context.Context, data []*models.SeriesPoint, tx *pgx.Tx) (int64, error) {
	columns := []string{
		"source_id", "timestamp", "open", "high", "low",
		"close", "volume", "adjusted_close", "dividend_amount",
	}

	entries := make([][]any, len(data))
	for i, ent := range data {
		entries[i] = []any{
			ent.SourceId, ent.Timestamp, ent.Open, ent.High, ent.Low,
			ent.Close, ent.Volume, ent.AdjustedClose, ent.DividendAmount,
		}
	}

	return pg.BulkInsert(ctx, "series_data", columns, entries, tx)
}
