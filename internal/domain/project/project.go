package project

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle status of a project
type Status string

const (
	StatusPlanning   Status = "PLANNING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusOnHold     Status = "ON_HOLD"
	StatusCancelled  Status = "CANCELLED"
)

// IsValid checks if the status is a valid project Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPlanning, StatusInProgress, StatusCompleted, StatusOnHold, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Project is the aggregation root for financial statistics. The derived
// fields are a denormalized cache of the source-domain tables and are
// rewritten by the stats service; they are never authoritative.
type Project struct {
	ID         uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectUID string          `gorm:"type:varchar(64);not null;uniqueIndex" json:"project_uid"`
	Name       string          `gorm:"type:varchar(200);not null" json:"name"`
	Status     Status          `gorm:"type:varchar(20);not null;default:'PLANNING'" json:"status"`
	Budget     decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"budget"`
	IsActive   bool            `gorm:"not null;default:true" json:"is_active"`
	StartDate  *time.Time      `json:"start_date"`
	EndDate    *time.Time      `json:"end_date"`

	// Purchase order aggregates
	TotalPoCount     int64           `gorm:"not null;default:0" json:"total_po_count"`
	TotalPoValue     decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"total_po_value"`
	DeliveredPoCount int64           `gorm:"not null;default:0" json:"delivered_po_count"`
	DeliveredPoValue decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"delivered_po_value"`
	PendingPoCount   int64           `gorm:"not null;default:0" json:"pending_po_count"`
	PendingPoValue   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"pending_po_value"`
	CancelledPoCount int64           `gorm:"not null;default:0" json:"cancelled_po_count"`
	CancelledPoValue decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"cancelled_po_value"`

	// Quotation aggregates
	TotalQuotationCount    int64           `gorm:"not null;default:0" json:"total_quotation_count"`
	TotalQuotationValue    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"total_quotation_value"`
	ApprovedQuotationCount int64           `gorm:"not null;default:0" json:"approved_quotation_count"`
	ApprovedQuotationValue decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"approved_quotation_value"`

	// Bill aggregates (vendor-side spend)
	TotalBillCount      int64           `gorm:"not null;default:0" json:"total_bill_count"`
	TotalBillValue      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"total_bill_value"`
	PaidBillCount       int64           `gorm:"not null;default:0" json:"paid_bill_count"`
	PaidBillValue       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"paid_bill_value"`
	PendingPaymentValue decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"pending_payment_value"`

	// Invoice aggregates (client-side billing)
	TotalInvoiceCount   int64           `gorm:"not null;default:0" json:"total_invoice_count"`
	TotalInvoiceValue   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"total_invoice_value"`
	PaidInvoiceCount    int64           `gorm:"not null;default:0" json:"paid_invoice_count"`
	PaidInvoiceValue    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"paid_invoice_value"`
	PendingInvoiceValue decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"pending_invoice_value"`

	// Vendor aggregates
	ActiveVendorCount int64           `gorm:"not null;default:0" json:"active_vendor_count"`
	TotalVendorSpend  decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"total_vendor_spend"`

	// Derived financial metrics
	BudgetUtilized           decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"budget_utilized"`
	BudgetUtilizationPercent decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"budget_utilization_percent"`
	ProjectedProfit          decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"projected_profit"`
	ProfitMarginPercent      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"profit_margin_percent"`

	LastProcurementUpdate *time.Time `json:"last_procurement_update"`
	StatsCalculatedAt     *time.Time `json:"stats_calculated_at"`

	// StatsVersion guards against concurrent stats writes losing updates.
	StatsVersion int64 `gorm:"not null;default:0" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName returns the table name for GORM
func (Project) TableName() string {
	return "projects"
}

// NewProject creates a project with a generated unique ID and all
// aggregate fields zero-initialized.
func NewProject(name string, budget decimal.Decimal) *Project {
	now := time.Now()
	return &Project{
		ProjectUID: uuid.New().String(),
		Name:       name,
		Status:     StatusPlanning,
		Budget:     budget,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// MarkStatsCalculated stamps both recalculation timestamps, keeping
// StatsCalculatedAt monotonically non-decreasing.
func (p *Project) MarkStatsCalculated(now time.Time) {
	if p.StatsCalculatedAt == nil || now.After(*p.StatsCalculatedAt) {
		t := now
		p.StatsCalculatedAt = &t
	}
	p.MarkProcurementUpdated(now)
}

// MarkProcurementUpdated stamps the procurement-update timestamp.
func (p *Project) MarkProcurementUpdated(now time.Time) {
	t := now
	p.LastProcurementUpdate = &t
}

// Repository defines persistence operations for projects
type Repository interface {
	FindByUID(ctx context.Context, uid string) (*Project, error)
	FindAllActive(ctx context.Context) ([]*Project, error)
	// FindStale returns active projects whose stats have never been
	// calculated or were calculated before the given cutoff.
	FindStale(ctx context.Context, cutoff time.Time) ([]*Project, error)
	Create(ctx context.Context, p *Project) error
	// UpdateStats persists the aggregate fields with an optimistic
	// version check; returns shared.ErrConcurrencyConflict when the
	// stored version no longer matches.
	UpdateStats(ctx context.Context, p *Project) error
}
