package aging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePurchases_CanonicalFields(t *testing.T) {
	data := []byte(`[
		{
			"id": 1,
			"proveedor_id": 7,
			"sucursal_id": 2,
			"numero_factura": "F-0001",
			"total_precio_venta": 1500.50,
			"fecha": "2024-01-01",
			"pagos": [
				{"monto": 500, "fecha": "2024-01-10"}
			],
			"items": [
				{"nombre": "Paracetamol 500mg", "cantidad": 10, "precio_compra": 2.5}
			]
		}
	]`)

	purchases, errs := NormalizePurchases(data)
	require.Empty(t, errs)
	require.Len(t, purchases, 1)

	p := purchases[0]
	assert.Equal(t, uint(1), p.ID)
	assert.Equal(t, uint(7), p.SupplierID)
	assert.Equal(t, uint(2), p.BranchID)
	assert.Equal(t, "F-0001", p.InvoiceNumber)
	assert.Equal(t, 1500.50, p.Total)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local), p.Date)
	require.Len(t, p.Payments, 1)
	assert.Equal(t, 500.0, p.Payments[0].Amount)
	require.Len(t, p.Items, 1)
	assert.Equal(t, "Paracetamol 500mg", p.Items[0].Name)
	assert.Equal(t, 25.0, p.Items[0].LineTotal, "line total derived from qty x cost")
}

func TestNormalizePurchases_AliasFields(t *testing.T) {
	// Same record as exported by a different legacy screen
	data := []byte(`[
		{
			"id": 1,
			"supplier_id": 7,
			"farmacia": 2,
			"factura": "F-0001",
			"total": "1500.50",
			"fecha_compra": "01/01/2024",
			"abonos": [{"amount": 500}],
			"productos": [{"producto": "Paracetamol 500mg", "qty": 10, "costo": 2.5, "subtotal": 25}]
		}
	]`)

	purchases, errs := NormalizePurchases(data)
	require.Empty(t, errs)
	require.Len(t, purchases, 1)

	p := purchases[0]
	assert.Equal(t, uint(7), p.SupplierID)
	assert.Equal(t, uint(2), p.BranchID)
	assert.Equal(t, "F-0001", p.InvoiceNumber)
	assert.Equal(t, 1500.50, p.Total)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local), p.Date)
	require.Len(t, p.Payments, 1)
	require.Len(t, p.Items, 1)
}

func TestNormalizePurchases_WrappedList(t *testing.T) {
	data := []byte(`{"compras": [{"id": 1, "total": 100}]}`)

	purchases, errs := NormalizePurchases(data)
	assert.Empty(t, errs)
	assert.Len(t, purchases, 1)
}

func TestNormalizePurchases_UnparseableDateStaysUndefined(t *testing.T) {
	data := []byte(`[{"id": 1, "total": 100, "fecha": "hace dos semanas"}]`)

	purchases, errs := NormalizePurchases(data)
	require.Empty(t, errs)
	require.Len(t, purchases, 1)
	assert.True(t, purchases[0].Date.IsZero())
}

func TestNormalizePurchases_ServerAggregatePreserved(t *testing.T) {
	data := []byte(`[{"id": 1, "total": 100, "monto_pagado": 40}]`)

	purchases, errs := NormalizePurchases(data)
	require.Empty(t, errs)
	require.Len(t, purchases, 1)
	require.NotNil(t, purchases[0].AmountPaid)
	assert.Equal(t, 40.0, *purchases[0].AmountPaid)
}

func TestNormalizePurchases_BadRecordSkippedRestSurvives(t *testing.T) {
	data := []byte(`[
		{"total": 100},
		{"id": 2, "total": 200}
	]`)

	purchases, errs := NormalizePurchases(data)
	assert.Len(t, errs, 1, "record without id is reported")
	require.Len(t, purchases, 1)
	assert.Equal(t, uint(2), purchases[0].ID)
}

func TestNormalizePurchases_InvalidPayload(t *testing.T) {
	_, errs := NormalizePurchases([]byte(`"not a list"`))
	assert.NotEmpty(t, errs)
}
