package procurement

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Purchase order status vocabulary. The four buckets (delivered, pending,
// cancelled, other) are mutually exclusive by convention; pending covers
// the three in-flight statuses.
const (
	PoStatusApproved  = "Approved"
	PoStatusOrdered   = "Ordered"
	PoStatusInTransit = "In-Transit"
	PoStatusDelivered = "Delivered"
	PoStatusCancelled = "Cancelled"
)

// PendingPoStatuses lists the statuses counted as pending spend.
var PendingPoStatuses = []string{PoStatusApproved, PoStatusOrdered, PoStatusInTransit}

// StatusAggregate is a count/sum pair for one status filter
type StatusAggregate struct {
	Count int64           `json:"count"`
	Value decimal.Decimal `json:"value"`
}

// StatusBreakdown is a count/sum pair grouped by status
type StatusBreakdown struct {
	Status string          `json:"status"`
	Count  int64           `json:"count"`
	Value  decimal.Decimal `json:"value"`
}

// CategorySpend is total purchase value for one spend category
type CategorySpend struct {
	Category string          `json:"category"`
	Value    decimal.Decimal `json:"value"`
}

// MonthlyOrderAggregate is order spend for one calendar month.
// Month uses the "2006-01" key format.
type MonthlyOrderAggregate struct {
	Month      string          `json:"month"`
	OrderCount int64           `json:"order_count"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// ItemDeliveryTotals holds line-item quantities for delivery rate
type ItemDeliveryTotals struct {
	DeliveredItems decimal.Decimal `json:"delivered_items"`
	OrderedItems   decimal.Decimal `json:"ordered_items"`
}

// RecentOrder is a purchase order entry for the activity feed
type RecentOrder struct {
	OrderNumber string          `json:"order_number"`
	Status      string          `json:"status"`
	Value       decimal.Decimal `json:"value"`
	OrderDate   *time.Time      `json:"order_date"`
}

// DeliveredOrderEvent is a delivered purchase order for the timeline
type DeliveredOrderEvent struct {
	OrderNumber string          `json:"order_number"`
	Value       decimal.Decimal `json:"value"`
	DeliveredAt *time.Time      `json:"delivered_at"`
}

// PurchaseOrderReader defines read-only aggregate queries over purchase
// orders belonging to a project. Sums must coalesce to zero when no rows
// match.
type PurchaseOrderReader interface {
	CountByProject(ctx context.Context, projectUID string) (int64, error)
	SumValueByProject(ctx context.Context, projectUID string) (decimal.Decimal, error)
	AggregateByStatus(ctx context.Context, projectUID string, status string) (StatusAggregate, error)
	AggregateByStatuses(ctx context.Context, projectUID string, statuses []string) (StatusAggregate, error)
	GroupByStatus(ctx context.Context, projectUID string) ([]StatusBreakdown, error)
	ItemDeliveryTotals(ctx context.Context, projectUID string) (ItemDeliveryTotals, error)
	SpendByCategory(ctx context.Context, projectUID string, limit int) ([]CategorySpend, error)
	// MonthlySpend aggregates over the half-open interval [start, end);
	// months with no orders yield no row, the caller zero-fills.
	MonthlySpend(ctx context.Context, projectUID string, start, end time.Time) ([]MonthlyOrderAggregate, error)
	RecentByProject(ctx context.Context, projectUID string, limit int) ([]RecentOrder, error)
	DeliveredOrders(ctx context.Context, projectUID string) ([]DeliveredOrderEvent, error)
}
