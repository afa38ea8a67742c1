package stats

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/istlgroup/crm-backend/internal/domain/project"
)

var (
	zero    = decimal.Zero
	hundred = decimal.NewFromInt(100)
)

// MetricsResult holds the derived financial metrics produced by a
// FinancialMetrics strategy. The cash-flow fields are only populated by
// the cash-basis strategy; the committed-spend strategy leaves them zero.
type MetricsResult struct {
	AmountSpent              decimal.Decimal `json:"amount_spent"`
	BudgetUtilized           decimal.Decimal `json:"budget_utilized"`
	BudgetUtilizationPercent decimal.Decimal `json:"budget_utilization_percent"`
	ProjectedProfit          decimal.Decimal `json:"projected_profit"`
	ProfitMarginPercent      decimal.Decimal `json:"profit_margin_percent"`

	CashInHand     decimal.Decimal `json:"cash_in_hand"`
	CashDeficit    decimal.Decimal `json:"cash_deficit"`
	BillingPercent decimal.Decimal `json:"billing_percent"`
	PaymentPercent decimal.Decimal `json:"payment_percent"`
	BurnRate       decimal.Decimal `json:"burn_rate"`
}

// FinancialMetrics derives profit and budget-utilization metrics from a
// project's aggregate fields. Two strategies exist: committed-spend
// (purchase-order based, used by batch recalculation) and cash-basis
// (paid-bill/invoice based, used by dashboard composition). Both are
// explicit so the two call sites cannot silently diverge.
type FinancialMetrics interface {
	Name() string
	Compute(p *project.Project, now time.Time) MetricsResult
}

// percentOf returns num/den*100 rounded half-up to 2 places, or 0 when
// the denominator is not positive.
func percentOf(num, den decimal.Decimal) decimal.Decimal {
	if den.LessThanOrEqual(zero) {
		return zero
	}
	return num.Div(den).Mul(hundred).Round(2)
}

// CommittedSpendMetrics measures budget utilization by committed
// purchase-order value: everything ordered except what was cancelled
// counts against the budget.
type CommittedSpendMetrics struct{}

func (CommittedSpendMetrics) Name() string { return "committed_spend" }

func (CommittedSpendMetrics) Compute(p *project.Project, _ time.Time) MetricsResult {
	utilized := p.TotalPoValue.Sub(p.CancelledPoValue).Round(2)
	profit := p.Budget.Sub(utilized).Round(2)
	return MetricsResult{
		AmountSpent:              utilized,
		BudgetUtilized:           utilized,
		BudgetUtilizationPercent: percentOf(utilized, p.Budget),
		ProjectedProfit:          profit,
		ProfitMarginPercent:      percentOf(profit, p.Budget),
	}
}

// CashBasisMetrics measures budget utilization by actual cash out (paid
// bills). Profit is realized (invoices received minus bills paid) for
// completed projects and projected (budget minus spend) otherwise.
type CashBasisMetrics struct{}

func (CashBasisMetrics) Name() string { return "cash_basis" }

func (CashBasisMetrics) Compute(p *project.Project, _ time.Time) MetricsResult {
	spent := p.PaidBillValue.Round(2)

	var profit, margin decimal.Decimal
	if p.Status == project.StatusCompleted {
		profit = p.PaidInvoiceValue.Sub(p.PaidBillValue).Round(2)
		margin = percentOf(profit, p.PaidInvoiceValue)
	} else {
		profit = p.Budget.Sub(spent).Round(2)
		margin = percentOf(profit, p.Budget)
	}

	cashFlow := p.PaidInvoiceValue.Sub(p.PaidBillValue).Round(2)
	cashInHand := cashFlow
	cashDeficit := zero
	if cashFlow.IsNegative() {
		cashInHand = zero
		cashDeficit = cashFlow.Neg()
	}

	return MetricsResult{
		AmountSpent:              spent,
		BudgetUtilized:           spent,
		BudgetUtilizationPercent: percentOf(spent, p.Budget),
		ProjectedProfit:          profit,
		ProfitMarginPercent:      margin,
		CashInHand:               cashInHand,
		CashDeficit:              cashDeficit,
		BillingPercent:           percentOf(p.PaidInvoiceValue, p.Budget),
		PaymentPercent:           percentOf(p.PaidBillValue, p.TotalBillValue),
		BurnRate:                 burnRate(spent, p.Budget),
	}
}

// burnRate is the spend-to-budget ratio rounded half-up to 2 places,
// zero when the budget is not positive.
func burnRate(spent, budget decimal.Decimal) decimal.Decimal {
	if budget.LessThanOrEqual(zero) {
		return zero
	}
	return spent.Div(budget).Round(2)
}
