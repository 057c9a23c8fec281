// Package ledger folds a booking's payments into its summary row.
package ledger

import "github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/models"

// Summarize recomputes the summary from scratch. Only PAID payments count;
// CARD is online, CASH is cash.
func Summarize(bookingID uint, total int64, currency string, payments []models.Payment) models.PaymentSummary {
	s := models.PaymentSummary{
		BookingID:   bookingID,
		TotalAmount: total,
		Currency:    currency,
	}
	for _, p := range payments {
		if p.Status != models.PaymentPaid || p.BookingID != bookingID {
			continue
		}
		switch p.Method {
		case models.MethodCard:
			s.OnlinePaid += p.Amount
		case models.MethodCash:
			s.CashPaid += p.Amount
		}
	}
	s.BalanceDue = total - s.Paid()
	if s.BalanceDue < 0 {
		s.BalanceDue = 0
	}
	return s
}

// Settled reports whether nothing is left to pay.
func Settled(s models.PaymentSummary) bool {
	return s.BalanceDue == 0
}
