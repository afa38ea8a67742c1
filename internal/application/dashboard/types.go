package dashboard

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/istlgroup/crm-backend/internal/domain/billing"
	"github.com/istlgroup/crm-backend/internal/domain/procurement"
)

// Section wraps an optional dashboard sub-aggregation. A failed
// sub-query yields the zero value with Degraded set instead of failing
// the whole dashboard, so callers and tests can see the degradation
// without reading logs.
type Section[T any] struct {
	Data     T      `json:"data"`
	Degraded bool   `json:"degraded,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

func ok[T any](data T) Section[T] {
	return Section[T]{Data: data}
}

func degraded[T any](reason string) Section[T] {
	return Section[T]{Degraded: true, Reason: reason}
}

// FinancialData is the cash-basis financial view of a project
type FinancialData struct {
	Budget                   decimal.Decimal `json:"budget"`
	AmountSpent              decimal.Decimal `json:"amount_spent"`
	BudgetUtilizationPercent decimal.Decimal `json:"budget_utilization_percent"`
	ProjectedProfit          decimal.Decimal `json:"projected_profit"`
	ProfitMarginPercent      decimal.Decimal `json:"profit_margin_percent"`
	CashInHand               decimal.Decimal `json:"cash_in_hand"`
	CashDeficit              decimal.Decimal `json:"cash_deficit"`
	BillingPercent           decimal.Decimal `json:"billing_percent"`
	PaymentPercent           decimal.Decimal `json:"payment_percent"`
	BurnRate                 decimal.Decimal `json:"burn_rate"`
	TotalInvoiceValue        decimal.Decimal `json:"total_invoice_value"`
	PaidInvoiceValue         decimal.Decimal `json:"paid_invoice_value"`
	PendingInvoiceValue      decimal.Decimal `json:"pending_invoice_value"`
	TotalBillValue           decimal.Decimal `json:"total_bill_value"`
	PaidBillValue            decimal.Decimal `json:"paid_bill_value"`
	PendingPaymentValue      decimal.Decimal `json:"pending_payment_value"`
}

// ProcurementData is the procurement view of a project
type ProcurementData struct {
	PurchaseOrdersByStatus []procurement.StatusBreakdown `json:"purchase_orders_by_status"`
	QuotationsByStatus     []procurement.StatusBreakdown `json:"quotations_by_status"`
	DeliveryRatePercent    decimal.Decimal               `json:"delivery_rate_percent"`
	AvgVendorRating        decimal.Decimal               `json:"avg_vendor_rating"`
	TopSpendCategories     []procurement.CategorySpend   `json:"top_spend_categories"`
}

// Activity is one entry in the recent-activity feed
type Activity struct {
	Type      string          `json:"type"`
	Reference string          `json:"reference"`
	Status    string          `json:"status,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Date      *time.Time      `json:"date"`
}

// TrendPoint is one calendar month of the spending trend
type TrendPoint struct {
	Month         string          `json:"month"`
	TotalSpend    decimal.Decimal `json:"total_spend"`
	OrderCount    int64           `json:"order_count"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
}

// TimelineEvent is one entry in the chronological project timeline
type TimelineEvent struct {
	Type   string          `json:"type"`
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
	Date   *time.Time      `json:"date"`
}

// PaymentAnalytics bundles payment method distribution and the monthly
// received trend
type PaymentAnalytics struct {
	ByMethod     []billing.MethodAggregate `json:"by_method"`
	MonthlyTrend []billing.MonthlyReceived `json:"monthly_trend"`
}

// Dashboard is the full composite project view
type Dashboard struct {
	ProjectUID string `json:"project_uid"`
	Name       string `json:"name"`
	Status     string `json:"status"`

	Financial     Section[FinancialData]               `json:"financial"`
	Procurement   Section[ProcurementData]             `json:"procurement"`
	Activities    Section[[]Activity]                  `json:"activities"`
	TopVendors    Section[[]procurement.VendorRanking] `json:"top_vendors"`
	SpendingTrend Section[[]TrendPoint]                `json:"spending_trend"`
	Timeline      Section[[]TimelineEvent]             `json:"timeline"`
	Payments      Section[PaymentAnalytics]            `json:"payments"`
}
