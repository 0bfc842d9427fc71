package queries

import (
	"embed"
	"fmt"
)

//go:embed insert/*.sql select/*.sql update/*.sql
var Files embed.FS

// the sql lives in real files so it can be linted and diffed like sql,
// then gets compiled into the binary by the embed directive above

type InsertQueries struct {
	Metadata  string
	ReturnRun string
}

type SelectQueries struct {
	ClosesBySymbol              string
	MetadataBySymbol            string
	MostRecentTimestampBySymbol string
	ReturnRunsBySymbol          string
	SeriesDataBySymbol          string
}

type UpdateQueries struct {
	LastRefreshedDate string
}

type QueryHelperStruct struct {
	Insert InsertQueries
	Select SelectQueries
	Update UpdateQueries
}

var QueryHelper = QueryHelperStruct{
	Insert: InsertQueries{
		Metadata:  "insert/metadata.sql",
		ReturnRun: "insert/return_run.sql",
	},
	Select: SelectQueries{
		ClosesBySymbol:              "select/closes_by_symbol.sql",
		MetadataBySymbol:            "select/metadata_by_symbol.sql",
		MostRecentTimestampBySymbol: "select/most_recent_timestamp_by_symbol.sql",
		ReturnRunsBySymbol:          "select/return_runs_by_symbol.sql",
		SeriesDataBySymbol:          "select/series_data_by_symbol.sql",
	},
	Update: UpdateQueries{
		LastRefreshedDate: "update/last_refreshed_date.sql",
	},
}

func Get(path string) string {
	content, err := Files.ReadFile(path)
	if err != nil {
		panic(fmt.Errorf("error reading query file: %w", err))
	}

	return string(content)
}
