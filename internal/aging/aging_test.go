package aging

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func ptrFloat(f float64) *float64 { return &f }

func TestAmountPaid_ServerAggregateWins(t *testing.T) {
	p := Purchase{
		ID:         1,
		Total:      1000,
		AmountPaid: ptrFloat(400),
		Payments: []Payment{
			{Amount: 999, Date: date(2024, 1, 5)},
		},
	}

	assert.Equal(t, 400.0, AmountPaid(p), "server aggregate should be trusted over payment sum")
}

func TestAmountPaid_SumsPayments(t *testing.T) {
	p := Purchase{
		ID:    1,
		Total: 1000,
		Payments: []Payment{
			{Amount: 250, Date: date(2024, 1, 5)},
			{Amount: 150, Date: date(2024, 1, 10)},
		},
	}

	assert.Equal(t, 400.0, AmountPaid(p))
}

func TestAmountPaid_InvalidEntriesContributeZero(t *testing.T) {
	p := Purchase{
		ID:    1,
		Total: 1000,
		Payments: []Payment{
			{Amount: 250},
			{Amount: math.NaN()},
			{Amount: -100},
		},
	}

	assert.Equal(t, 250.0, AmountPaid(p))
}

func TestAmountPaid_OrderIndependent(t *testing.T) {
	forward := Purchase{Payments: []Payment{{Amount: 100.25}, {Amount: 200.50}, {Amount: 99.25}}}
	backward := Purchase{Payments: []Payment{{Amount: 99.25}, {Amount: 200.50}, {Amount: 100.25}}}

	assert.Equal(t, AmountPaid(forward), AmountPaid(backward))
}

func TestRemaining_NeverNegative(t *testing.T) {
	assert.Equal(t, 600.0, Remaining(1000, 400))
	assert.Equal(t, 0.0, Remaining(1000, 1000))
	assert.Equal(t, 0.0, Remaining(1000, 1500), "overpayment must clamp to zero")
}

func TestClassifySettlement(t *testing.T) {
	tests := []struct {
		name     string
		total    float64
		paid     float64
		expected Settlement
	}{
		{"unpaid", 1000, 0, SettlementUnpaid},
		{"partial", 1000, 400, SettlementPartiallyPaid},
		{"paid exactly", 1000, 1000, SettlementPaid},
		{"overpaid", 1000, 1200, SettlementPaid},
		{"degenerate zero total", 0, 0, SettlementUnpaid},
		{"degenerate zero total with payment", 0, 50, SettlementUnpaid},
		{"negative total", -10, 0, SettlementUnpaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifySettlement(tt.total, tt.paid))
		})
	}
}

func TestClassifySettlement_ConsistentWithRemaining(t *testing.T) {
	// paid => remaining == 0; unpaid => amountPaid == 0 (for total > 0)
	for _, paid := range []float64{0, 1, 500, 999.99, 1000, 1500} {
		state := ClassifySettlement(1000, paid)
		switch state {
		case SettlementPaid:
			assert.Equal(t, 0.0, Remaining(1000, paid))
		case SettlementUnpaid:
			assert.Equal(t, 0.0, paid)
		}
	}
}

func TestDueDate(t *testing.T) {
	due := DueDate(date(2024, 1, 1), 30)
	if assert.NotNil(t, due) {
		assert.Equal(t, date(2024, 1, 31), *due)
	}

	assert.Nil(t, DueDate(time.Time{}, 30), "unknown purchase date leaves due date undefined")
	assert.Nil(t, DueDate(date(2024, 1, 1), 0), "no credit days leaves due date undefined")
	assert.Nil(t, DueDate(date(2024, 1, 1), -5))
}

func TestDaysRemaining(t *testing.T) {
	assert.Equal(t, 11, DaysRemaining(date(2024, 1, 31), date(2024, 1, 20)))
	assert.Equal(t, 0, DaysRemaining(date(2024, 1, 20), date(2024, 1, 20)))
	assert.Equal(t, -5, DaysRemaining(date(2024, 1, 15), date(2024, 1, 20)))
}

func TestDaysRemaining_IgnoresTimeOfDay(t *testing.T) {
	due := time.Date(2024, 1, 31, 23, 59, 0, 0, time.Local)
	today := time.Date(2024, 1, 20, 0, 1, 0, 0, time.Local)

	assert.Equal(t, 11, DaysRemaining(due, today))
}

func TestDaysRemaining_DSTTransitionCountsOneDay(t *testing.T) {
	// America/New_York falls back on 2024-11-03: that local day lasts 25 hours
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}

	due := time.Date(2024, 11, 4, 0, 0, 0, 0, loc)
	today := time.Date(2024, 11, 2, 0, 0, 0, 0, loc)

	assert.Equal(t, 2, DaysRemaining(due, today))
	assert.Equal(t, -2, DaysRemaining(today, due))
}

func TestDaysRemaining_Antisymmetric(t *testing.T) {
	a := date(2024, 1, 31)
	b := date(2024, 1, 20)

	assert.Equal(t, DaysRemaining(a, b), -DaysRemaining(b, a))
	assert.Equal(t, 0, DaysRemaining(a, a))
}

func TestEarlySavings_InsideWindow(t *testing.T) {
	p := Purchase{ID: 1, Total: 500, Date: date(2024, 1, 1)}
	s := Supplier{ID: 1, EarlyPaymentDiscount: 5}

	assert.Equal(t, 25.0, EarlySavings(p, s, date(2024, 1, 10), 15))
}

func TestEarlySavings_WindowExpired(t *testing.T) {
	p := Purchase{ID: 1, Total: 500, Date: date(2024, 1, 1)}
	s := Supplier{ID: 1, EarlyPaymentDiscount: 5}

	assert.Equal(t, 0.0, EarlySavings(p, s, date(2024, 1, 20), 15))
}

func TestEarlySavings_LastDayOfWindowStillEligible(t *testing.T) {
	p := Purchase{ID: 1, Total: 500, Date: date(2024, 1, 1)}
	s := Supplier{ID: 1, EarlyPaymentDiscount: 5}

	assert.Equal(t, 25.0, EarlySavings(p, s, date(2024, 1, 16), 15))
	assert.Equal(t, 0.0, EarlySavings(p, s, date(2024, 1, 17), 15))
}

func TestEarlySavings_ZeroWhenPaid(t *testing.T) {
	p := Purchase{ID: 1, Total: 500, Date: date(2024, 1, 1), AmountPaid: ptrFloat(500)}
	s := Supplier{ID: 1, EarlyPaymentDiscount: 5}

	assert.Equal(t, 0.0, EarlySavings(p, s, date(2024, 1, 5), 15))
}

func TestEarlySavings_ZeroWithoutDiscountOrDate(t *testing.T) {
	s := Supplier{ID: 1, EarlyPaymentDiscount: 5}

	assert.Equal(t, 0.0, EarlySavings(Purchase{Total: 500, Date: date(2024, 1, 1)}, Supplier{ID: 2}, date(2024, 1, 5), 15))
	assert.Equal(t, 0.0, EarlySavings(Purchase{Total: 500}, s, date(2024, 1, 5), 15))
}

func TestEarlySavings_MalformedTotalYieldsZero(t *testing.T) {
	s := Supplier{ID: 1, EarlyPaymentDiscount: 5}
	today := date(2024, 1, 5)

	assert.Equal(t, 0.0, EarlySavings(Purchase{Total: math.NaN(), Date: date(2024, 1, 1)}, s, today, 15))
	assert.Equal(t, 0.0, EarlySavings(Purchase{Total: math.Inf(1), Date: date(2024, 1, 1)}, s, today, 15))
	assert.Equal(t, 0.0, EarlySavings(Purchase{Total: -500, Date: date(2024, 1, 1)}, s, today, 15),
		"negative total must not produce negative savings")
	assert.Equal(t, 0.0, EarlySavings(Purchase{Total: 0, Date: date(2024, 1, 1)}, s, today, 15))
}

func TestEarlySavings_MonotonicallyNonIncreasing(t *testing.T) {
	// Savings never reappear after the window closes
	p := Purchase{ID: 1, Total: 500, Date: date(2024, 1, 1)}
	s := Supplier{ID: 1, EarlyPaymentDiscount: 5}

	prev := math.Inf(1)
	for today := date(2024, 1, 1); today.Before(date(2024, 2, 15)); today = today.AddDate(0, 0, 1) {
		savings := EarlySavings(p, s, today, 15)
		assert.LessOrEqual(t, savings, prev, "savings must not increase as today advances (%s)", today)
		prev = savings
	}
}

func TestBuildInvoice_ScenarioUnpaidBeforeDue(t *testing.T) {
	// total=1000, 30 credit days, purchased 2024-01-01, today 2024-01-20
	p := Purchase{ID: 1, SupplierID: 7, Total: 1000, Date: date(2024, 1, 1)}
	s := Supplier{ID: 7, Name: "Distribuidora Central", CreditDays: 30}

	view := BuildInvoice(p, s, date(2024, 1, 20), 15)

	if assert.NotNil(t, view.DueDate) {
		assert.Equal(t, date(2024, 1, 31), *view.DueDate)
	}
	if assert.NotNil(t, view.DaysRemaining) {
		assert.Equal(t, 11, *view.DaysRemaining)
	}
	assert.False(t, view.Overdue)
	assert.Equal(t, SettlementUnpaid, view.Settlement)
	assert.Equal(t, 1000.0, view.AmountRemaining)
}

func TestBuildInvoice_ScenarioPartialPayment(t *testing.T) {
	p := Purchase{
		ID: 1, SupplierID: 7, Total: 1000, Date: date(2024, 1, 1),
		Payments: []Payment{{Amount: 400, Date: date(2024, 1, 10)}},
	}
	s := Supplier{ID: 7, CreditDays: 30}

	view := BuildInvoice(p, s, date(2024, 1, 20), 15)

	assert.Equal(t, 400.0, view.AmountPaid)
	assert.Equal(t, 600.0, view.AmountRemaining)
	assert.Equal(t, SettlementPartiallyPaid, view.Settlement)
}

func TestBuildInvoice_ScenarioPaidNeverOverdue(t *testing.T) {
	p := Purchase{
		ID: 1, SupplierID: 7, Total: 1000, Date: date(2024, 1, 1),
		Payments: []Payment{
			{Amount: 400, Date: date(2024, 1, 10)},
			{Amount: 600, Date: date(2024, 1, 25)},
		},
	}
	s := Supplier{ID: 7, CreditDays: 30}

	// Well past the due date
	view := BuildInvoice(p, s, date(2024, 3, 1), 15)

	assert.Equal(t, SettlementPaid, view.Settlement)
	assert.False(t, view.Overdue, "a paid invoice is never overdue")
	if assert.NotNil(t, view.DaysRemaining) {
		assert.Negative(t, *view.DaysRemaining)
	}
}

func TestBuildInvoice_ScenarioUnknownDate(t *testing.T) {
	p := Purchase{
		ID: 1, SupplierID: 7, Total: 1000,
		Payments: []Payment{{Amount: 400}},
	}
	s := Supplier{ID: 7, CreditDays: 30}

	view := BuildInvoice(p, s, date(2024, 1, 20), 15)

	assert.Nil(t, view.DueDate)
	assert.Nil(t, view.DaysRemaining)
	assert.False(t, view.Overdue)
	// Settlement is still computable from amounts alone
	assert.Equal(t, SettlementPartiallyPaid, view.Settlement)
}

func TestBuildInvoice_OverdueUnpaid(t *testing.T) {
	p := Purchase{ID: 1, SupplierID: 7, Total: 1000, Date: date(2024, 1, 1)}
	s := Supplier{ID: 7, CreditDays: 15}

	view := BuildInvoice(p, s, date(2024, 2, 1), 15)

	assert.True(t, view.Overdue)
	if assert.NotNil(t, view.DaysRemaining) {
		assert.Equal(t, -16, *view.DaysRemaining)
	}
}

func TestBuild_SentinelSupplier(t *testing.T) {
	purchases := []Purchase{
		{ID: 1, SupplierID: 99, Total: 1000, Date: date(2024, 1, 1)},
	}

	views, summary := Build(purchases, nil, date(2024, 1, 20), 15)

	if assert.Len(t, views, 1) {
		assert.Equal(t, "Proveedor desconocido", views[0].SupplierName)
		assert.Nil(t, views[0].DueDate, "sentinel supplier has no credit days")
		assert.Equal(t, 0.0, views[0].EarlySavings)
	}
	// Financial totals still computed
	assert.Equal(t, 1000.0, summary.TotalOwed)
}

func TestBuild_Summary(t *testing.T) {
	paid := 200.0
	purchases := []Purchase{
		{ID: 1, SupplierID: 7, Total: 1000, Date: date(2024, 1, 1)},
		{ID: 2, SupplierID: 7, Total: 500, Date: date(2024, 1, 5), AmountPaid: &paid},
		{ID: 3, SupplierID: 7, Total: 300, Date: date(2023, 11, 1)},
	}
	suppliers := []Supplier{
		{ID: 7, Name: "Distribuidora Central", CreditDays: 30, EarlyPaymentDiscount: 5},
	}

	views, summary := Build(purchases, suppliers, date(2024, 1, 10), 15)

	assert.Len(t, views, 3)
	assert.Equal(t, 1800.0, summary.TotalInvoiced)
	assert.Equal(t, 200.0, summary.TotalPaid)
	assert.Equal(t, 1600.0, summary.TotalOwed)
	assert.Equal(t, 3, summary.InvoiceCount)
	assert.Equal(t, 1, summary.OverdueCount, "only the november invoice is overdue")
	// Both january invoices are inside the pronto pago window
	assert.InDelta(t, 1000*0.05+500*0.05, summary.EarlySavings, 0.001)
}

func TestBuild_MalformedRecordDoesNotAbortTotals(t *testing.T) {
	purchases := []Purchase{
		{ID: 1, SupplierID: 7, Total: math.NaN(), Date: date(2024, 1, 1)},
		{ID: 2, SupplierID: 7, Total: 500, Date: date(2024, 1, 1)},
	}
	suppliers := []Supplier{{ID: 7, Name: "Distribuidora Central", EarlyPaymentDiscount: 5}}

	views, summary := Build(purchases, suppliers, date(2024, 1, 10), 15)

	assert.Len(t, views, 2)
	assert.Equal(t, 500.0, summary.TotalInvoiced)
	assert.Equal(t, 500.0, summary.TotalOwed)
	assert.False(t, math.IsNaN(summary.TotalOwed))
	// Only the well-formed invoice contributes pronto pago savings
	assert.Equal(t, 25.0, summary.EarlySavings)
	assert.Equal(t, 0.0, views[0].EarlySavings)
}

func TestBuild_Idempotent(t *testing.T) {
	purchases := []Purchase{
		{ID: 1, SupplierID: 7, Total: 1000, Date: date(2024, 1, 1), Payments: []Payment{{Amount: 250}}},
	}
	suppliers := []Supplier{{ID: 7, Name: "Distribuidora Central", CreditDays: 30, EarlyPaymentDiscount: 2}}
	today := date(2024, 1, 10)

	first, firstSummary := Build(purchases, suppliers, today, 15)
	second, secondSummary := Build(purchases, suppliers, today, 15)

	assert.Equal(t, first, second)
	assert.Equal(t, firstSummary, secondSummary)
}
