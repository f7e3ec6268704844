package fee

import (
	"testing"
	"time"

	"institute-service/internal/listing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	now := time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC)
	payments := []*Payment{
		{AmountPaid: 1500, Month: 3, Year: 2025},
		{AmountPaid: 500, Month: 3, Year: 2025},
		{AmountPaid: 2000, Month: 2, Year: 2025},
		{AmountPaid: 700, Month: 3, Year: 2024},
	}

	stats := Summarize(payments, now)

	assert.Equal(t, 4700.0, stats.TotalCollected)
	assert.Equal(t, 2000.0, stats.ThisMonth)
	assert.Equal(t, 4, stats.PaymentCount)
	assert.Equal(t, Stats{}, Summarize(nil, now))
}

func TestFilterFields(t *testing.T) {
	views := []View{
		{Payment: &Payment{}, StudentName: "Asha Rao", StudentCode: "STU-0001"},
		{Payment: &Payment{}, StudentName: "Vikram", StudentCode: "STU-0002"},
	}

	assert.Len(t, listing.Filter(views, "stu-0002", FilterFields...), 1)
	assert.Len(t, listing.Filter(views, "asha", FilterFields...), 1)
	assert.Len(t, listing.Filter(views, "", FilterFields...), 2)
}
