package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle. Its concrete type is infra-defined
// (pgx.Tx for Postgres); repositories accept nil for the non-transactional
// path.
type Tx interface{}

// NoTX is passed where no transaction is in flight.
var NoTX Tx

// TransactionManager executes fn inside one database transaction, passing
// the handle through `tx`. Repositories called with the same tx share the
// transaction; an error from fn rolls everything back.
//
// The multi-step payment-completion sequence (mark completed, record
// discount usage, activate placement) MUST run under one WithTx call so a
// crash cannot leave a completed payment without its placement.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
