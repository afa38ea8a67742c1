package persistence

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/istlgroup/crm-backend/internal/domain/procurement"
)

// GormVendorReader implements procurement.VendorReader using GORM
type GormVendorReader struct {
	db *gorm.DB
}

// NewGormVendorReader creates a new GormVendorReader
func NewGormVendorReader(db *gorm.DB) *GormVendorReader {
	return &GormVendorReader{db: db}
}

// CountByStatus counts project vendors with the given status
func (r *GormVendorReader) CountByStatus(ctx context.Context, projectUID string, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("vendors").
		Where("project_uid = ? AND status = ?", projectUID, status).
		Count(&count).Error
	return count, err
}

// SumPurchaseValueByProject sums the total purchase value across all
// project vendors
func (r *GormVendorReader) SumPurchaseValueByProject(ctx context.Context, projectUID string) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("vendors").
		Select("COALESCE(SUM(total_purchase_value), 0) as total").
		Where("project_uid = ?", projectUID).
		Scan(&result).Error
	return result.Total, err
}

// TopByPurchaseValue returns the top vendors ranked by purchase value
func (r *GormVendorReader) TopByPurchaseValue(ctx context.Context, projectUID string, limit int) ([]procurement.VendorRanking, error) {
	var rows []procurement.VendorRanking
	err := r.db.WithContext(ctx).
		Table("vendors").
		Select("vendor_name, COALESCE(total_purchase_value, 0) as total_purchase_value, COALESCE(rating, 0) as rating").
		Where("project_uid = ?", projectUID).
		Order("total_purchase_value DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// AvgRatingByProject averages vendor ratings, zero when unrated
func (r *GormVendorReader) AvgRatingByProject(ctx context.Context, projectUID string) (decimal.Decimal, error) {
	var result struct {
		Avg decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("vendors").
		Select("COALESCE(AVG(rating), 0) as avg").
		Where("project_uid = ? AND rating IS NOT NULL", projectUID).
		Scan(&result).Error
	return result.Avg, err
}
