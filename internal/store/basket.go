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

const basketTableName = "cupboard.basket_items"

var basketColumns = utils.StructTagValues(types.BasketItem{})

// basketLineColumns joins the basket item with the need it references.
var basketLineColumns = append(
	utils.PrefixSliceOfStrings("b", []string{"id", "need_id", "quantity", "created_at"}),
	utils.PrefixSliceOfStrings("n", []string{"name", "description", "cost", "category", "priority", "is_time_sensitive", "frequency_count"})...,
)

type BasketRepository struct {
	pool *pgxpool.Pool
}

func NewBasketRepository(pool *pgxpool.Pool) *BasketRepository {
	return &BasketRepository{pool: pool}
}

func (r *BasketRepository) ItemsByUser(ctx context.Context, username string) ([]*types.BasketItem, error) {

	query, args, err := psql().Select(basketColumns...).From(basketTableName).
		Where(sq.Eq{"username": username}).
		OrderBy("created_at asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate basket items query: %w", err)
	}

	var items = make([]*types.BasketItem, 0)
	err = pgxscan.Select(ctx, r.pool, &items, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch basket items: %w", err)
	}

	return items, nil
}

func (r *BasketRepository) LinesByUser(ctx context.Context, username string) ([]*types.BasketLine, error) {

	query, args, err := psql().Select(basketLineColumns...).
		From(basketTableName + " b").
		Join("cupboard.needs n ON n.id = b.need_id").
		Where(sq.Eq{"b.username": username}).
		OrderBy("b.created_at asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate basket lines query: %w", err)
	}

	var lines = make([]*types.BasketLine, 0)
	err = pgxscan.Select(ctx, r.pool, &lines, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch basket lines: %w", err)
	}

	return lines, nil
}

// Item fetches a single basket item scoped to its owner. A hit on
// another user's item reports not-found rather than forbidden, so item
// IDs don't leak across accounts.
func (r *BasketRepository) Item(ctx context.Context, itemID, username string) (*types.BasketItem, error) {

	query, args, err := psql().Select(basketColumns...).From(basketTableName).
		Where(sq.Eq{"id": itemID, "username": username}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate basket item query: %w", err)
	}

	var item = new(types.BasketItem)
	err = pgxscan.Get(ctx, r.pool, item, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrBasketItemNotFound
		}
		return nil, fmt.Errorf("failed to fetch basket item: %w", err)
	}

	return item, nil
}

// Upsert inserts the (username, need) pair or replaces its quantity when
// the pair already exists.
func (r *BasketRepository) Upsert(ctx context.Context, username, needID string, quantity int) error {

	now := time.Now()

	query, args, err := psql().Insert(basketTableName).
		Columns("id", "username", "need_id", "quantity", "created_at", "updated_at").
		Values(utils.NanoID(), username, needID, quantity, now, now).
		Suffix("ON CONFLICT (username, need_id) DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert basket item query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to upsert basket item")
}

func (r *BasketRepository) UpdateQuantity(ctx context.Context, itemID, username string, quantity int) error {

	query, args, err := psql().Update(basketTableName).
		Set("quantity", quantity).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": itemID, "username": username}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update basket item query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update basket item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrBasketItemNotFound
	}

	return nil
}

func (r *BasketRepository) Remove(ctx context.Context, itemID, username string) error {

	query, args, err := psql().Delete(basketTableName).
		Where(sq.Eq{"id": itemID, "username": username}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate remove basket item query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to remove basket item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrBasketItemNotFound
	}

	return nil
}

func (r *BasketRepository) ClearForUser(ctx context.Context, username string) error {

	query, args, err := psql().Delete(basketTableName).
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate clear basket query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to clear basket")
}
