package repos

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fundbuilder/saver/models"
	q "github.com/fundbuilder/saver/queries"
)

// InsertReturnRun stores one analysis run and writes the generated id and
// created timestamp back onto it.
func (pg *Postgres) InsertReturnRun(ctx context.Context, run *models.ReturnRun) error {
	query := q.Get(q.QueryHelper.Insert.ReturnRun)
	args := pgx.NamedArgs{
		"sourceId":      run.SourceId,
		"columnName":    run.ColumnName,
		"windowDays":    run.WindowDays,
		"rowCount":      run.RowCount,
		"meanReturn":    run.MeanReturn,
		"stdDev":        run.StdDev,
		"varPercentile": run.VarPercentile,
		"valueAtRisk":   run.ValueAtRisk,
		"marketWeight":  run.MarketWeight,
	}

	if err := pg.db.QueryRow(ctx, query, args).Scan(&run.Id, &run.CreatedAt); err != nil {
		return fmt.Errorf("error inserting return run: %w", err)
	}

	return nil
}

func (pg *Postgres) GetReturnRunsBySymbol(ctx context.Context, symbol string) ([]*models.ReturnRun, error) {
	query := q.Get(q.QueryHelper.Select.ReturnRunsBySymbol)
	args := pgx.NamedArgs{
		"symbol": symbol,
	}

	res, err := Query[models.ReturnRun](ctx, pg, query, args)
	if err != nil {
		return nil, fmt.Errorf("unable to query return runs by symbol (%s): %w", symbol, err)
	}

	return res, nil
}
