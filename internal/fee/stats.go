package fee

import (
	"time"

	"institute-service/internal/listing"
)

// FilterFields match the fee screen search box.
var FilterFields = []listing.Field[View]{
	func(v View) string { return v.StudentName },
	func(v View) string { return v.StudentCode },
}

// Summarize totals the payments; "this month" is the month and year of now.
func Summarize(payments []*Payment, now time.Time) Stats {
	var stats Stats
	month, year := int(now.Month()), now.Year()
	for _, p := range payments {
		stats.TotalCollected += p.AmountPaid
		if p.Month == month && p.Year == year {
			stats.ThisMonth += p.AmountPaid
		}
	}
	stats.PaymentCount = len(payments)
	return stats
}
