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

const needTableName = "cupboard.needs"

// priorityRankOrder sorts High before Medium before Low. The remaining
// tie-breakers match the default "by priority" view ordering.
const priorityRankOrder = "CASE priority WHEN 'High' THEN 3 WHEN 'Medium' THEN 2 WHEN 'Low' THEN 1 ELSE 0 END DESC"

var needColumns = utils.StructTagValues(types.Need{})

// needsSelect is the base listing query. Every needs view shares the
// same ranking.
func needsSelect() sq.SelectBuilder {
	return psql().Select(needColumns...).From(needTableName).
		OrderBy(priorityRankOrder, "is_time_sensitive desc", "frequency_count desc", "created_at desc")
}

func searchNeedsSelect(q string) sq.SelectBuilder {
	pattern := "%" + q + "%"
	return needsSelect().Where(sq.Or{
		sq.ILike{"name": pattern},
		sq.ILike{"description": pattern},
	})
}

func decrementNeedUpdate(needID string, amount, frequencyDelta int, now time.Time) sq.UpdateBuilder {
	return psql().Update(needTableName).
		Set("quantity", sq.Expr("quantity - ?", amount)).
		Set("frequency_count", sq.Expr("frequency_count + ?", frequencyDelta)).
		Set("updated_at", now).
		Where(sq.Eq{"id": needID}).
		Where(sq.Expr("quantity >= ?", amount))
}

type NeedRepository struct {
	pool *pgxpool.Pool
}

func NewNeedRepository(pool *pgxpool.Pool) *NeedRepository {
	return &NeedRepository{pool: pool}
}

func (r *NeedRepository) Need(ctx context.Context, needID string) (*types.Need, error) {

	query, args, err := psql().Select(needColumns...).From(needTableName).
		Where(sq.Eq{"id": needID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate need query: %w", err)
	}

	var need = new(types.Need)
	err = pgxscan.Get(ctx, r.pool, need, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrNeedNotFound
		}
		return nil, fmt.Errorf("failed to fetch need: %w", err)
	}

	return need, nil

}

func (r *NeedRepository) Needs(ctx context.Context) ([]*types.Need, error) {

	query, args, err := needsSelect().ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate needs query: %w", err)
	}

	var needs = make([]*types.Need, 0)
	err = pgxscan.Select(ctx, r.pool, &needs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch needs: %w", err)
	}

	return needs, nil
}

func (r *NeedRepository) NeedsByCategory(ctx context.Context, category types.Category) ([]*types.Need, error) {

	query, args, err := needsSelect().Where(sq.Eq{"category": category}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate needs-by-category query: %w", err)
	}

	var needs = make([]*types.Need, 0)
	err = pgxscan.Select(ctx, r.pool, &needs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch needs by category: %w", err)
	}

	return needs, nil
}

func (r *NeedRepository) SearchNeeds(ctx context.Context, q string) ([]*types.Need, error) {

	query, args, err := searchNeedsSelect(q).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate search needs query: %w", err)
	}

	var needs = make([]*types.Need, 0)
	err = pgxscan.Select(ctx, r.pool, &needs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search needs: %w", err)
	}

	return needs, nil
}

func (r *NeedRepository) CreateNeed(ctx context.Context, need *types.Need) error {

	now := time.Now()
	need.ID = utils.NanoID()
	need.UpdatedAt = now
	need.CreatedAt = now

	needMap := utils.StructToMap(need)

	query, args, err := psql().Insert(needTableName).SetMap(needMap).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert need query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create need")

}

func (r *NeedRepository) UpdateNeed(ctx context.Context, needID string, need *types.Need) error {

	need.ID = needID
	need.UpdatedAt = time.Now()

	needMap := utils.StructToMap(need)

	query, args, err := psql().Update(needTableName).SetMap(needMap).Where(sq.Eq{"id": needID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update need query for need %s: %w", needID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update need: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrNeedNotFound
	}

	return nil

}

func (r *NeedRepository) DeleteNeed(ctx context.Context, needID string) error {

	query, args, err := psql().Delete(needTableName).Where(sq.Eq{"id": needID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete need query for need %s: %w", needID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete need: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrNeedNotFound
	}

	return nil

}

// Decrement takes amount units off a need's remaining quantity and bumps
// its funded counter. The quantity guard lives in the UPDATE itself, so
// two concurrent checkouts against the same need can never drive the
// quantity negative; the slower one observes zero affected rows.
func (r *NeedRepository) Decrement(ctx context.Context, needID string, amount, frequencyDelta int) error {

	query, args, err := decrementNeedUpdate(needID, amount, frequencyDelta, time.Now()).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate decrement need query for need %s: %w", needID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to decrement need: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Either the need is gone or the guard held. Look again to tell
		// the caller which.
		if _, err := r.Need(ctx, needID); err != nil {
			return err
		}
		return fmt.Errorf("%w for need %s", types.ErrInsufficientQuantity, needID)
	}

	return nil

}
