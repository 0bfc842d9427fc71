package core

import (
	"context"

	av "github.com/fundbuilder/saver/api/alphavantage"
	r "github.com/fundbuilder/saver/repos"
)

// ServiceContext carries the process-lifetime context and every outbound
// connection the handlers need.
type ServiceContext struct {
	Context            context.Context
	PostgresConnection *r.Postgres
	MarketDataClient   av.Client
}
