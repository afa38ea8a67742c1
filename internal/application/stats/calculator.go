package stats

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/istlgroup/crm-backend/internal/domain/billing"
	"github.com/istlgroup/crm-backend/internal/domain/procurement"
	"github.com/istlgroup/crm-backend/internal/domain/project"
)

// PurchaseOrderSnapshot is the reader output for one project's POs
type PurchaseOrderSnapshot struct {
	Total     procurement.StatusAggregate
	Delivered procurement.StatusAggregate
	Pending   procurement.StatusAggregate
	Cancelled procurement.StatusAggregate
}

// QuotationSnapshot is the reader output for one project's quotations
type QuotationSnapshot struct {
	Total    procurement.StatusAggregate
	Approved procurement.StatusAggregate
}

// BillSnapshot is the reader output for one project's vendor bills.
// PaidAmount sums paid_amount across every bill so partial payments
// count as cash out; Paid covers only fully settled bills.
type BillSnapshot struct {
	Total          billing.StatusAggregate
	Paid           billing.StatusAggregate
	PaidAmount     decimal.Decimal
	PendingBalance decimal.Decimal
}

// InvoiceSnapshot is the reader output for one project's client invoices
type InvoiceSnapshot struct {
	Total        billing.StatusAggregate
	Paid         billing.StatusAggregate
	PendingValue decimal.Decimal
}

// VendorSnapshot is the reader output for one project's vendors
type VendorSnapshot struct {
	ActiveCount int64
	TotalSpend  decimal.Decimal
}

// Calculator turns aggregate snapshots into the project's stored
// statistic fields. It mutates only the in-memory project record;
// persistence belongs to the caller.
type Calculator struct {
	metrics FinancialMetrics
}

// NewCalculator creates a calculator with the given metrics strategy
func NewCalculator(metrics FinancialMetrics) *Calculator {
	return &Calculator{metrics: metrics}
}

// ApplyPurchaseOrderStats writes the PO aggregate fields
func (c *Calculator) ApplyPurchaseOrderStats(p *project.Project, snap PurchaseOrderSnapshot) {
	p.TotalPoCount = snap.Total.Count
	p.TotalPoValue = snap.Total.Value.Round(2)
	p.DeliveredPoCount = snap.Delivered.Count
	p.DeliveredPoValue = snap.Delivered.Value.Round(2)
	p.PendingPoCount = snap.Pending.Count
	p.PendingPoValue = snap.Pending.Value.Round(2)
	p.CancelledPoCount = snap.Cancelled.Count
	p.CancelledPoValue = snap.Cancelled.Value.Round(2)
}

// ApplyQuotationStats writes the quotation aggregate fields
func (c *Calculator) ApplyQuotationStats(p *project.Project, snap QuotationSnapshot) {
	p.TotalQuotationCount = snap.Total.Count
	p.TotalQuotationValue = snap.Total.Value.Round(2)
	p.ApprovedQuotationCount = snap.Approved.Count
	p.ApprovedQuotationValue = snap.Approved.Value.Round(2)
}

// ApplyBillStats writes the bill aggregate fields. PaidBillCount
// counts fully settled bills while PaidBillValue is the paid amount
// across all bills, partial payments included.
func (c *Calculator) ApplyBillStats(p *project.Project, snap BillSnapshot) {
	p.TotalBillCount = snap.Total.Count
	p.TotalBillValue = snap.Total.Value.Round(2)
	p.PaidBillCount = snap.Paid.Count
	p.PaidBillValue = snap.PaidAmount.Round(2)
	p.PendingPaymentValue = snap.PendingBalance.Round(2)
}

// ApplyInvoiceStats writes the invoice aggregate fields
func (c *Calculator) ApplyInvoiceStats(p *project.Project, snap InvoiceSnapshot) {
	p.TotalInvoiceCount = snap.Total.Count
	p.TotalInvoiceValue = snap.Total.Value.Round(2)
	p.PaidInvoiceCount = snap.Paid.Count
	p.PaidInvoiceValue = snap.Paid.Value.Round(2)
	p.PendingInvoiceValue = snap.PendingValue.Round(2)
}

// ApplyVendorStats writes the vendor aggregate fields
func (c *Calculator) ApplyVendorStats(p *project.Project, snap VendorSnapshot) {
	p.ActiveVendorCount = snap.ActiveCount
	p.TotalVendorSpend = snap.TotalSpend.Round(2)
}

// ApplyFinancialMetrics recomputes the derived metrics from the already
// applied aggregate fields. Must run after any PO, bill, or invoice
// change since the formulas depend on those aggregates and on the
// project status.
func (c *Calculator) ApplyFinancialMetrics(p *project.Project, now time.Time) MetricsResult {
	result := c.metrics.Compute(p, now)
	p.BudgetUtilized = result.BudgetUtilized
	p.BudgetUtilizationPercent = result.BudgetUtilizationPercent
	p.ProjectedProfit = result.ProjectedProfit
	p.ProfitMarginPercent = result.ProfitMarginPercent
	return result
}
