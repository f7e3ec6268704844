package fee_test

import (
	"net/http"
	"testing"
	"time"

	"institute-service/internal/fee"
	"institute-service/internal/student"
	"institute-service/testing/testapi"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStudent(t *testing.T, env *testapi.Env, token, name string) *student.Student {
	t.Helper()
	amount := 5000.0
	w := env.Do(t, http.MethodPost, "/api/students", token, student.Request{Name: name, FeeAmount: &amount})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var st student.Student
	testapi.Decode(t, w, &st)
	return &st
}

func TestFeePaymentIntegration(t *testing.T) {
	t.Run("CreateListAndStats", func(t *testing.T) {
		env := testapi.New(t)
		owner := env.Register(t, "fees@example.com")
		asha := newStudent(t, env, owner.AccessToken, "Asha")
		vikram := newStudent(t, env, owner.AccessToken, "Vikram")
		now := time.Now()

		w := env.Do(t, http.MethodPost, "/api/fee-payments", owner.AccessToken, fee.Request{
			StudentRef: asha.ID, AmountPaid: 1500, Month: int(now.Month()), Year: now.Year(), PaymentMethod: "upi",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var created fee.View
		testapi.Decode(t, w, &created)
		assert.Equal(t, "Asha", created.StudentName)
		assert.Equal(t, asha.StudentID, created.StudentCode)

		w = env.Do(t, http.MethodPost, "/api/fee-payments", owner.AccessToken, fee.Request{
			StudentRef: vikram.ID, AmountPaid: 1000, Month: 1, Year: 2020, PaymentDate: "2020-01-10", PaymentMethod: "cash",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = env.Do(t, http.MethodGet, "/api/fee-payments", owner.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var payments []fee.View
		testapi.Decode(t, w, &payments)
		require.Len(t, payments, 2)
		assert.Equal(t, "Asha", payments[0].StudentName)

		w = env.Do(t, http.MethodGet, "/api/fee-payments?q=vik", owner.AccessToken, nil)
		testapi.Decode(t, w, &payments)
		require.Len(t, payments, 1)
		assert.Equal(t, vikram.StudentID, payments[0].StudentCode)

		w = env.Do(t, http.MethodGet, "/api/fee-payments/stats", owner.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var stats fee.Stats
		testapi.Decode(t, w, &stats)
		assert.Equal(t, fee.Stats{TotalCollected: 2500, ThisMonth: 1500, PaymentCount: 2}, stats)

		// recording a payment leaves the student's own fee_paid untouched
		w = env.Do(t, http.MethodGet, "/api/students/"+asha.ID.String(), owner.AccessToken, nil)
		var reloaded student.Student
		testapi.Decode(t, w, &reloaded)
		assert.Zero(t, reloaded.FeePaid)
	})

	t.Run("Validation", func(t *testing.T) {
		env := testapi.New(t)
		owner := env.Register(t, "validate@example.com")
		st := newStudent(t, env, owner.AccessToken, "Asha")

		cases := map[string]fee.Request{
			"zero amount":     {StudentRef: st.ID, AmountPaid: 0, Month: 1, Year: 2025},
			"bad month":       {StudentRef: st.ID, AmountPaid: 10, Month: 13, Year: 2025},
			"bad method":      {StudentRef: st.ID, AmountPaid: 10, Month: 1, Year: 2025, PaymentMethod: "barter"},
			"unknown student": {StudentRef: uuid.New(), AmountPaid: 10, Month: 1, Year: 2025},
		}
		for name, req := range cases {
			w := env.Do(t, http.MethodPost, "/api/fee-payments", owner.AccessToken, req)
			assert.Equal(t, http.StatusBadRequest, w.Code, name)
		}
	})

	t.Run("OtherOwnersStudentRejected", func(t *testing.T) {
		env := testapi.New(t)
		a := env.Register(t, "a@example.com")
		b := env.Register(t, "b@example.com")
		st := newStudent(t, env, a.AccessToken, "Asha")

		w := env.Do(t, http.MethodPost, "/api/fee-payments", b.AccessToken, fee.Request{StudentRef: st.ID, AmountPaid: 10, Month: 1, Year: 2025})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("DeleteAndCascade", func(t *testing.T) {
		env := testapi.New(t)
		owner := env.Register(t, "delete@example.com")
		st := newStudent(t, env, owner.AccessToken, "Asha")

		w := env.Do(t, http.MethodPost, "/api/fee-payments", owner.AccessToken, fee.Request{StudentRef: st.ID, AmountPaid: 10, Month: 1, Year: 2025})
		require.Equal(t, http.StatusCreated, w.Code)
		var first fee.View
		testapi.Decode(t, w, &first)

		w = env.Do(t, http.MethodDelete, "/api/fee-payments/"+first.ID.String(), owner.AccessToken, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		w = env.Do(t, http.MethodDelete, "/api/fee-payments/"+first.ID.String(), owner.AccessToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = env.Do(t, http.MethodPost, "/api/fee-payments", owner.AccessToken, fee.Request{StudentRef: st.ID, AmountPaid: 20, Month: 2, Year: 2025})
		require.Equal(t, http.StatusCreated, w.Code)

		w = env.Do(t, http.MethodDelete, "/api/students/"+st.ID.String(), owner.AccessToken, nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = env.Do(t, http.MethodGet, "/api/fee-payments", owner.AccessToken, nil)
		var payments []fee.View
		testapi.Decode(t, w, &payments)
		assert.Empty(t, payments)
	})
}
