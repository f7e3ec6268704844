package student

import (
	"math"

	"institute-service/internal/listing"
)

// Pending is the unpaid part of the fee. It is negative when the student overpaid.
func Pending(s *Student) float64 {
	return s.FeeAmount - s.FeePaid
}

// PaidPercent is the paid share of the fee rounded to a whole percent.
// A student without a fee has paid nothing.
func PaidPercent(s *Student) int {
	if s.FeeAmount <= 0 {
		return 0
	}
	return int(math.Round(s.FeePaid / s.FeeAmount * 100))
}

// PendingTop keeps active students that still owe, largest balance first, at most n of them.
func PendingTop(rows []*Student, n int) []PendingFee {
	owing := make([]*Student, 0, len(rows))
	for _, s := range rows {
		if s.Status == StatusActive && Pending(s) > 0 {
			owing = append(owing, s)
		}
	}
	owing = listing.Top(listing.SortBy(owing, Pending, true), n)

	result := make([]PendingFee, 0, len(owing))
	for _, s := range owing {
		result = append(result, PendingFee{
			ID:          s.ID,
			StudentID:   s.StudentID,
			Name:        s.Name,
			Batch:       s.Batch,
			FeeAmount:   s.FeeAmount,
			FeePaid:     s.FeePaid,
			Pending:     Pending(s),
			PaidPercent: PaidPercent(s),
		})
	}
	return result
}
