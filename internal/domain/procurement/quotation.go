package procurement

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// QuotationStatusApproved is the only quotation status the stats engine
// filters on.
const QuotationStatusApproved = "Approved"

// RecentQuotation is a quotation entry for the activity feed
type RecentQuotation struct {
	QuotationNumber string          `json:"quotation_number"`
	Status          string          `json:"status"`
	Value           decimal.Decimal `json:"value"`
	QuotationDate   *time.Time      `json:"quotation_date"`
}

// QuotationReader defines read-only aggregate queries over quotations
// belonging to a project.
type QuotationReader interface {
	CountByProject(ctx context.Context, projectUID string) (int64, error)
	SumValueByProject(ctx context.Context, projectUID string) (decimal.Decimal, error)
	AggregateByStatus(ctx context.Context, projectUID string, status string) (StatusAggregate, error)
	GroupByStatus(ctx context.Context, projectUID string) ([]StatusBreakdown, error)
	RecentByProject(ctx context.Context, projectUID string, limit int) ([]RecentQuotation, error)
}
