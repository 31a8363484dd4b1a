// Package funding holds the checkout pipeline and the derived
// funding-progress arithmetic. Everything here works against small
// store interfaces so the logic is testable without a database.
package funding

import (
	"context"
	"fmt"

	"cupboard/pkg/types"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type NeedStore interface {
	Need(ctx context.Context, needID string) (*types.Need, error)
	Decrement(ctx context.Context, needID string, amount, frequencyDelta int) error
}

type BasketStore interface {
	ItemsByUser(ctx context.Context, username string) ([]*types.BasketItem, error)
	ClearForUser(ctx context.Context, username string) error
}

type TransactionStore interface {
	Record(ctx context.Context, txn *types.Transaction) error
}

type CheckoutService struct {
	logger       *logrus.Logger
	needs        NeedStore
	basket       BasketStore
	transactions TransactionStore
}

func NewCheckoutService(logger *logrus.Logger, needs NeedStore, basket BasketStore, transactions TransactionStore) *CheckoutService {
	return &CheckoutService{
		logger:       logger,
		needs:        needs,
		basket:       basket,
		transactions: transactions,
	}
}

type CheckoutResult struct {
	ItemsFunded int
}

// Checkout converts a helper's basket into ledger transactions and
// inventory decrements.
//
// The validation pass completes for every item before any mutation
// starts, so a basket that fails validation is rejected cleanly with
// nothing written. The commit pass is best effort after that point:
// if a need disappears mid-commit, already-funded items stay funded and
// the error surfaces to the caller. The store-level decrement guard is
// what keeps concurrent checkouts against the same need from
// overdrawing it.
func (s *CheckoutService) Checkout(ctx context.Context, username string) (*CheckoutResult, error) {

	items, err := s.basket.ItemsByUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load basket: %w", err)
	}

	if len(items) == 0 {
		return nil, types.ErrEmptyBasket
	}

	// Validation pass. Re-fetch every need so quantities and costs are
	// current, not what they were at basket-add time.
	needs := make(map[string]*types.Need, len(items))
	for _, item := range items {
		need, err := s.needs.Need(ctx, item.NeedID)
		if err != nil {
			return nil, fmt.Errorf("validate basket item %s: %w", item.ID, err)
		}

		if item.Quantity > need.Quantity {
			return nil, &types.InsufficientQuantityError{NeedName: need.Name}
		}

		needs[item.NeedID] = need
	}

	// Commit pass, in the order validated.
	funded := 0
	for _, item := range items {
		if err := s.needs.Decrement(ctx, item.NeedID, item.Quantity, 1); err != nil {
			return nil, fmt.Errorf("commit basket item %s: %w", item.ID, err)
		}

		need := needs[item.NeedID]
		totalCost, _ := decimal.NewFromFloat(need.Cost).
			Mul(decimal.NewFromInt(int64(item.Quantity))).
			Round(2).
			Float64()

		txn := &types.Transaction{
			Username:  username,
			NeedID:    item.NeedID,
			Quantity:  item.Quantity,
			TotalCost: totalCost,
		}
		if err := s.transactions.Record(ctx, txn); err != nil {
			return nil, fmt.Errorf("record transaction for basket item %s: %w", item.ID, err)
		}

		funded++

		s.logger.WithFields(logrus.Fields{
			"username":   username,
			"need_id":    item.NeedID,
			"quantity":   item.Quantity,
			"total_cost": totalCost,
		}).Info("basket item funded")
	}

	if err := s.basket.ClearForUser(ctx, username); err != nil {
		return nil, fmt.Errorf("failed to clear basket: %w", err)
	}

	return &CheckoutResult{ItemsFunded: funded}, nil
}
