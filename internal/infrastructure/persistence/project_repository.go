package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/istlgroup/crm-backend/internal/domain/project"
	"github.com/istlgroup/crm-backend/internal/domain/shared"
)

// GormProjectRepository implements project.Repository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// FindByUID finds a project by its external unique ID
func (r *GormProjectRepository) FindByUID(ctx context.Context, uid string) (*project.Project, error) {
	var p project.Project
	if err := r.db.WithContext(ctx).Where("project_uid = ?", uid).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindAllActive returns all projects with the active flag set
func (r *GormProjectRepository) FindAllActive(ctx context.Context) ([]*project.Project, error) {
	var projects []*project.Project
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// FindStale returns active projects whose stats were never calculated or
// were calculated before the cutoff
func (r *GormProjectRepository) FindStale(ctx context.Context, cutoff time.Time) ([]*project.Project, error) {
	var projects []*project.Project
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("stats_calculated_at IS NULL OR stats_calculated_at < ?", cutoff).
		Order("id").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Create persists a new project row
func (r *GormProjectRepository) Create(ctx context.Context, p *project.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// UpdateStats persists the aggregate fields with an optimistic version
// check. The update matches on the stored stats_version and bumps it;
// zero rows affected means another writer got there first.
func (r *GormProjectRepository) UpdateStats(ctx context.Context, p *project.Project) error {
	currentVersion := p.StatsVersion
	p.StatsVersion = currentVersion + 1
	p.UpdatedAt = time.Now()

	result := r.db.WithContext(ctx).
		Model(&project.Project{}).
		Where("id = ? AND stats_version = ?", p.ID, currentVersion).
		Select(statsColumns).
		Updates(p)
	if result.Error != nil {
		p.StatsVersion = currentVersion
		return result.Error
	}
	if result.RowsAffected == 0 {
		p.StatsVersion = currentVersion
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// statsColumns lists every field UpdateStats is allowed to touch. The
// project's identity, budget, and lifecycle fields are owned elsewhere.
var statsColumns = []string{
	"total_po_count", "total_po_value",
	"delivered_po_count", "delivered_po_value",
	"pending_po_count", "pending_po_value",
	"cancelled_po_count", "cancelled_po_value",
	"total_quotation_count", "total_quotation_value",
	"approved_quotation_count", "approved_quotation_value",
	"total_bill_count", "total_bill_value",
	"paid_bill_count", "paid_bill_value",
	"pending_payment_value",
	"total_invoice_count", "total_invoice_value",
	"paid_invoice_count", "paid_invoice_value",
	"pending_invoice_value",
	"active_vendor_count", "total_vendor_spend",
	"budget_utilized", "budget_utilization_percent",
	"projected_profit", "profit_margin_percent",
	"last_procurement_update", "stats_calculated_at",
	"stats_version", "updated_at",
}
