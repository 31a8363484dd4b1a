package store

import (
	"context"
	"fmt"
	"time"

	"cupboard/internal/utils"
	"cupboard/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const transactionTableName = "cupboard.transactions"

func totalRaisedSelect(needID string) sq.SelectBuilder {
	return psql().Select("COALESCE(SUM(total_cost), 0)").From(transactionTableName).
		Where(sq.Eq{"need_id": needID})
}

// TransactionRepository is the append-only funding ledger. There are no
// update or delete operations on purpose.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

func (r *TransactionRepository) Record(ctx context.Context, txn *types.Transaction) error {

	txn.ID = utils.NanoID()
	txn.CreatedAt = time.Now()

	query, args, err := psql().Insert(transactionTableName).
		SetMap(utils.StructToMap(txn)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert transaction query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to record transaction")
}

// TotalRaisedByNeed sums the ledger for one need. The aggregate runs in
// SQL so progress reads stay a single query no matter how long the
// funding history grows.
func (r *TransactionRepository) TotalRaisedByNeed(ctx context.Context, needID string) (float64, error) {

	query, args, err := totalRaisedSelect(needID).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate total raised query: %w", err)
	}

	var total float64
	err = pgxscan.Get(ctx, r.pool, &total, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch total raised: %w", err)
	}

	return total, nil
}
