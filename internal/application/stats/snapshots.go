package stats

import (
	"context"

	"github.com/istlgroup/crm-backend/internal/domain/billing"
	"github.com/istlgroup/crm-backend/internal/domain/procurement"
)

// LoadPurchaseOrderSnapshot reads the PO aggregates for one project
func LoadPurchaseOrderSnapshot(ctx context.Context, r procurement.PurchaseOrderReader, projectUID string) (PurchaseOrderSnapshot, error) {
	var snap PurchaseOrderSnapshot

	count, err := r.CountByProject(ctx, projectUID)
	if err != nil {
		return snap, err
	}
	total, err := r.SumValueByProject(ctx, projectUID)
	if err != nil {
		return snap, err
	}
	snap.Total = procurement.StatusAggregate{Count: count, Value: total}

	if snap.Delivered, err = r.AggregateByStatus(ctx, projectUID, procurement.PoStatusDelivered); err != nil {
		return snap, err
	}
	if snap.Pending, err = r.AggregateByStatuses(ctx, projectUID, procurement.PendingPoStatuses); err != nil {
		return snap, err
	}
	if snap.Cancelled, err = r.AggregateByStatus(ctx, projectUID, procurement.PoStatusCancelled); err != nil {
		return snap, err
	}
	return snap, nil
}

// LoadQuotationSnapshot reads the quotation aggregates for one project
func LoadQuotationSnapshot(ctx context.Context, r procurement.QuotationReader, projectUID string) (QuotationSnapshot, error) {
	var snap QuotationSnapshot

	count, err := r.CountByProject(ctx, projectUID)
	if err != nil {
		return snap, err
	}
	total, err := r.SumValueByProject(ctx, projectUID)
	if err != nil {
		return snap, err
	}
	snap.Total = procurement.StatusAggregate{Count: count, Value: total}

	if snap.Approved, err = r.AggregateByStatus(ctx, projectUID, procurement.QuotationStatusApproved); err != nil {
		return snap, err
	}
	return snap, nil
}

// LoadBillSnapshot reads the bill aggregates for one project
func LoadBillSnapshot(ctx context.Context, r billing.BillReader, projectUID string) (BillSnapshot, error) {
	var snap BillSnapshot

	count, err := r.CountByProject(ctx, projectUID)
	if err != nil {
		return snap, err
	}
	total, err := r.SumValueByProject(ctx, projectUID)
	if err != nil {
		return snap, err
	}
	snap.Total = billing.StatusAggregate{Count: count, Value: total}

	if snap.Paid, err = r.AggregateByStatus(ctx, projectUID, billing.BillStatusPaid); err != nil {
		return snap, err
	}
	if snap.PaidAmount, err = r.SumPaidAmountByProject(ctx, projectUID); err != nil {
		return snap, err
	}
	if snap.PendingBalance, err = r.SumBalanceByProject(ctx, projectUID); err != nil {
		return snap, err
	}
	return snap, nil
}

// LoadInvoiceSnapshot reads the invoice aggregates for one project
func LoadInvoiceSnapshot(ctx context.Context, r billing.InvoicePaymentReader, projectUID string) (InvoiceSnapshot, error) {
	var snap InvoiceSnapshot

	count, err := r.CountInvoicesByProject(ctx, projectUID)
	if err != nil {
		return snap, err
	}
	total, err := r.SumInvoiceValueByProject(ctx, projectUID)
	if err != nil {
		return snap, err
	}
	snap.Total = billing.StatusAggregate{Count: count, Value: total}

	if snap.Paid, err = r.AggregateInvoicesByStatus(ctx, projectUID, billing.InvoiceStatusPaid); err != nil {
		return snap, err
	}
	if snap.PendingValue, err = r.SumPendingByProject(ctx, projectUID); err != nil {
		return snap, err
	}
	return snap, nil
}

// LoadVendorSnapshot reads the vendor aggregates for one project
func LoadVendorSnapshot(ctx context.Context, r procurement.VendorReader, projectUID string) (VendorSnapshot, error) {
	var snap VendorSnapshot

	count, err := r.CountByStatus(ctx, projectUID, procurement.VendorStatusActive)
	if err != nil {
		return snap, err
	}
	spend, err := r.SumPurchaseValueByProject(ctx, projectUID)
	if err != nil {
		return snap, err
	}
	snap.ActiveCount = count
	snap.TotalSpend = spend
	return snap, nil
}
