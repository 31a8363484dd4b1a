package funding

import (
	"context"
	"fmt"

	"cupboard/pkg/types"

	"github.com/shopspring/decimal"
)

// Progress is the derived funding state of a need. Money values carry
// two decimal places, the percentage one.
type Progress struct {
	AmountRaised       float64 `json:"amountRaised"`
	AmountLeft         float64 `json:"amountLeft"`
	TotalGoal          float64 `json:"totalGoal"`
	ProgressPercentage float64 `json:"progressPercentage"`
}

// Compute derives progress from the amount the ledger has raised for a
// need. amountLeft uses the need's current cost, so a price change
// moves the goal rather than rewriting history.
func Compute(need *types.Need, amountRaised float64) Progress {
	raised := decimal.NewFromFloat(amountRaised)
	left := decimal.NewFromFloat(need.Cost).Mul(decimal.NewFromInt(int64(need.Quantity)))
	goal := raised.Add(left)

	pct := decimal.Zero
	if goal.IsPositive() {
		pct = raised.Div(goal).Mul(decimal.NewFromInt(100))
	}

	outRaised, _ := raised.Round(2).Float64()
	outLeft, _ := left.Round(2).Float64()
	outGoal, _ := goal.Round(2).Float64()
	outPct, _ := pct.Round(1).Float64()

	return Progress{
		AmountRaised:       outRaised,
		AmountLeft:         outLeft,
		TotalGoal:          outGoal,
		ProgressPercentage: outPct,
	}
}

type TransactionSource interface {
	TotalRaisedByNeed(ctx context.Context, needID string) (float64, error)
}

// Calculator derives progress from the ledger's SQL aggregate on every
// read, one query per need.
type Calculator struct {
	transactions TransactionSource
}

func NewCalculator(transactions TransactionSource) *Calculator {
	return &Calculator{transactions: transactions}
}

func (c *Calculator) ForNeed(ctx context.Context, need *types.Need) (Progress, error) {
	raised, err := c.transactions.TotalRaisedByNeed(ctx, need.ID)
	if err != nil {
		return Progress{}, fmt.Errorf("failed to load total raised for need %s: %w", need.ID, err)
	}

	return Compute(need, raised), nil
}
