package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager executes a function inside a storage transaction,
// passing the transaction handle to repositories via `tx`.
//
// The orchestrator uses this to combine the usedCount increment with
// the activity insert so a failure between the two cannot silently drop
// a participation. Repositories MUST gracefully accept a nil tx
// (non-transactional path).
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
