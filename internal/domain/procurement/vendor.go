package procurement

import (
	"context"

	"github.com/shopspring/decimal"
)

// VendorStatusActive marks vendors counted in the active vendor aggregate.
const VendorStatusActive = "Active"

// VendorRanking is one vendor ranked by purchase value
type VendorRanking struct {
	VendorName         string          `json:"vendor_name"`
	TotalPurchaseValue decimal.Decimal `json:"total_purchase_value"`
	Rating             decimal.Decimal `json:"rating"`
}

// VendorReader defines read-only aggregate queries over vendors
// associated with a project.
type VendorReader interface {
	CountByStatus(ctx context.Context, projectUID string, status string) (int64, error)
	SumPurchaseValueByProject(ctx context.Context, projectUID string) (decimal.Decimal, error)
	TopByPurchaseValue(ctx context.Context, projectUID string, limit int) ([]VendorRanking, error)
	AvgRatingByProject(ctx context.Context, projectUID string) (decimal.Decimal, error)
}
