package models

import "time"

// Invoice statuses. Status is derived from paid_amount against
// total_amount whenever a payment is recorded.
const (
	InvoicePending       = "pending"
	InvoicePartiallyPaid = "partially_paid"
	InvoicePaid          = "paid"
)

// DeriveInvoiceStatus computes the invoice status from its amounts.
func DeriveInvoiceStatus(totalAmount, paidAmount float64) string {
	switch {
	case paidAmount >= totalAmount && totalAmount > 0:
		return InvoicePaid
	case paidAmount > 0:
		return InvoicePartiallyPaid
	default:
		return InvoicePending
	}
}

// Invoice is a fee charged to a student.
type Invoice struct {
	ID          string
	SchoolID    string
	StudentID   string
	StudentName string // Joined for display
	TotalAmount float64
	PaidAmount  float64
	DueDate     time.Time
	Status      string
	CreatedAt   time.Time
}

// Payment is money received against an invoice.
type Payment struct {
	ID            string
	SchoolID      string
	InvoiceID     string
	Amount        float64
	PaymentMethod string // cash, transfer, card
	PaidAt        time.Time
}

// DashboardStats is the school dashboard summary.
type DashboardStats struct {
	StudentsCount  int
	InvoicesCount  int
	PaymentsSum    float64
	OverdueCount   int
	RecentPayments []*Payment
}

// PlatformStats is the super-admin overview across all tenants.
type PlatformStats struct {
	TotalSchools  int
	ActiveSchools int
	TrialSchools  int
	PaidRevenue   float64
}
