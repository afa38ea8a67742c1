package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Vendor bill statuses referenced by aggregate queries.
const (
	BillStatusPaid    = "Paid"
	BillStatusPending = "Pending"
)

// StatusAggregate is a count/sum pair for one status filter
type StatusAggregate struct {
	Count int64           `json:"count"`
	Value decimal.Decimal `json:"value"`
}

// BillEvent is a bill entry for the project timeline
type BillEvent struct {
	BillNumber string          `json:"bill_number"`
	Value      decimal.Decimal `json:"value"`
	BillDate   *time.Time      `json:"bill_date"`
}

// BillReader defines read-only aggregate queries over vendor bills
// belonging to a project. Bills can be partially settled, so cash out
// is the sum of per-bill paid amounts across every bill, and pending
// payment value is the sum of per-bill outstanding balances; neither
// is derivable from totals and the Paid status alone.
type BillReader interface {
	CountByProject(ctx context.Context, projectUID string) (int64, error)
	SumValueByProject(ctx context.Context, projectUID string) (decimal.Decimal, error)
	AggregateByStatus(ctx context.Context, projectUID string, status string) (StatusAggregate, error)
	SumPaidAmountByProject(ctx context.Context, projectUID string) (decimal.Decimal, error)
	SumBalanceByProject(ctx context.Context, projectUID string) (decimal.Decimal, error)
	BillEvents(ctx context.Context, projectUID string) ([]BillEvent, error)
}
