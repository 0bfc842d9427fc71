package models

import (
	"time"
)

// ReturnRun records one rolling-return analysis over a stored series, enough
// to reproduce the window and compare runs over time.
type ReturnRun struct {
	Id            int32     `db:"id" json:"id"`
	SourceId      int32     `db:"source_id" json:"sourceId"`
	ColumnName    string    `db:"column_name" json:"columnName"`
	WindowDays    int32     `db:"window_days" json:"windowDays"`
	RowCount      int32     `db:"row_count" json:"rowCount"`
	MeanReturn    float64   `db:"mean_return" json:"meanReturn"`
	StdDev        float64   `db:"std_dev" json:"stdDev"`
	VarPercentile float64   `db:"var_percentile" json:"varPercentile"`
	ValueAtRisk   float64   `db:"value_at_risk" json:"valueAtRisk"`
	MarketWeight  float64   `db:"market_weight" json:"marketWeight"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}
