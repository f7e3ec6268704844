package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type row struct {
	Name  string
	Code  string
	Batch string
	Due   float64
}

var (
	byName  Field[row] = func(r row) string { return r.Name }
	byCode  Field[row] = func(r row) string { return r.Code }
	byBatch Field[row] = func(r row) string { return r.Batch }
)

func TestFilter_CaseInsensitiveSubstringOnEveryField(t *testing.T) {
	rows := []row{
		{Name: "Rahul Sharma", Code: "STU-0042", Batch: "Morning"},
		{Name: "Priya Singh", Code: "STU-0007", Batch: "Evening"},
	}

	for _, term := range []string{"rahul", "SHARMA", "0042", "  stu-0042 "} {
		got := Filter(rows, term, byName, byCode, byBatch)
		if assert.Len(t, got, 1, term) {
			assert.Equal(t, "Rahul Sharma", got[0].Name)
		}
	}

	assert.Len(t, Filter(rows, "evening", byName, byCode, byBatch), 1)
	assert.Empty(t, Filter(rows, "evening", byName, byCode))
	assert.Len(t, Filter(rows, "", byName), 2)
	assert.Len(t, Filter(rows, "stu", byCode), 2)
}

func TestSortByAndTop(t *testing.T) {
	rows := []row{
		{Name: "a", Due: 100},
		{Name: "b", Due: 900},
		{Name: "c", Due: 500},
		{Name: "d", Due: 900},
	}

	sorted := SortBy(rows, func(r row) float64 { return r.Due }, true)
	assert.Equal(t, []string{"b", "d", "c", "a"}, names(sorted))
	assert.Equal(t, "a", rows[0].Name, "input is not reordered")

	assert.Equal(t, []string{"b", "d"}, names(Top(sorted, 2)))
	assert.Len(t, Top(sorted, 10), 4)

	asc := SortBy(rows, func(r row) string { return r.Name }, false)
	assert.Equal(t, []string{"a", "b", "c", "d"}, names(asc))
}

func TestSnapshot_ReplaceIsWholesale(t *testing.T) {
	s := NewSnapshot(byName, byCode)
	s.Replace([]row{{Name: "old"}})
	s.Replace([]row{{Name: "Rahul", Code: "STU-1"}, {Name: "Priya", Code: "STU-2"}})

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"Rahul", "Priya"}, names(s.Rows()))
	assert.Equal(t, []string{"Priya"}, names(s.Filter("stu-2")))
}

func names(rows []row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}
