package aging

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// The legacy system exported purchases with inconsistent field names depending
// on which screen produced the dump (total_precio_venta vs total, fecha vs
// fecha_compra vs fecha_creacion, items vs productos, sucursal_id vs farmacia).
// Normalization happens once at the ingestion boundary; the calculator only
// ever sees canonical fields.

// Item is a normalized purchase line item
type Item struct {
	Name      string
	Barcode   string
	Quantity  float64
	UnitCost  float64
	LineTotal float64
}

// NormalizedPurchase is a canonical purchase plus its line items, as decoded
// from a legacy export.
type NormalizedPurchase struct {
	Purchase
	Items []Item
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// NormalizePurchases decodes a legacy JSON purchase export into canonical
// records. Records that cannot be decoded at all are skipped and reported;
// merely malformed fields (bad dates, missing numbers) degrade to their zero
// values without failing the batch.
func NormalizePurchases(data []byte) ([]NormalizedPurchase, []error) {
	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		// Some exports wrap the list: {"compras": [...]} or {"data": [...]}
		var wrapper map[string]json.RawMessage
		if werr := json.Unmarshal(data, &wrapper); werr != nil {
			return nil, []error{fmt.Errorf("invalid purchase export: %w", err)}
		}
		inner, ok := firstRaw(wrapper, "compras", "purchases", "data")
		if !ok {
			return nil, []error{fmt.Errorf("invalid purchase export: %w", err)}
		}
		if err := json.Unmarshal(inner, &rows); err != nil {
			return nil, []error{fmt.Errorf("invalid purchase export: %w", err)}
		}
	}

	purchases := make([]NormalizedPurchase, 0, len(rows))
	var errs []error

	for i, row := range rows {
		p, err := normalizeRow(row)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		purchases = append(purchases, p)
	}

	return purchases, errs
}

func normalizeRow(row map[string]json.RawMessage) (NormalizedPurchase, error) {
	var p NormalizedPurchase

	id, ok := rawUint(row, "id")
	if !ok {
		return p, fmt.Errorf("missing id")
	}
	p.ID = id

	p.SupplierID, _ = rawUint(row, "proveedor_id", "supplier_id", "proveedor")
	p.BranchID, _ = rawUint(row, "sucursal_id", "farmacia", "branch_id")
	p.InvoiceNumber, _ = rawString(row, "numero_factura", "factura", "invoice_number")
	p.Total, _ = rawFloat(row, "total_precio_venta", "total", "total_venta")

	if dateStr, ok := rawString(row, "fecha", "fecha_compra", "fecha_creacion"); ok {
		// Unparseable dates stay zero: aging fields become undefined downstream
		p.Date = parseDate(dateStr)
	}

	if paid, ok := rawFloat(row, "monto_pagado", "amount_paid", "pagado"); ok {
		p.AmountPaid = &paid
	}

	if raw, ok := firstRaw(row, "pagos", "abonos", "payments"); ok {
		p.Payments = normalizePayments(raw)
	}

	if raw, ok := firstRaw(row, "items", "productos"); ok {
		p.Items = normalizeItems(raw)
	}

	return p, nil
}

func normalizePayments(raw json.RawMessage) []Payment {
	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil
	}

	payments := make([]Payment, 0, len(rows))
	for _, row := range rows {
		var pay Payment
		pay.Amount, _ = rawFloat(row, "monto", "amount", "cantidad")
		if dateStr, ok := rawString(row, "fecha", "fecha_pago", "payment_date"); ok {
			pay.Date = parseDate(dateStr)
		}
		payments = append(payments, pay)
	}
	return payments
}

func normalizeItems(raw json.RawMessage) []Item {
	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil
	}

	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		var item Item
		item.Name, _ = rawString(row, "nombre", "producto", "name")
		item.Barcode, _ = rawString(row, "codigo_barras", "codigo", "barcode")
		item.Quantity, _ = rawFloat(row, "cantidad", "qty", "quantity")
		item.UnitCost, _ = rawFloat(row, "precio_compra", "costo", "unit_cost")
		item.LineTotal, _ = rawFloat(row, "subtotal", "total", "line_total")
		if item.LineTotal == 0 {
			item.LineTotal = item.Quantity * item.UnitCost
		}
		items = append(items, item)
	}
	return items
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

func firstRaw(row map[string]json.RawMessage, keys ...string) (json.RawMessage, bool) {
	for _, key := range keys {
		if raw, ok := row[key]; ok && string(raw) != "null" {
			return raw, true
		}
	}
	return nil, false
}

func rawString(row map[string]json.RawMessage, keys ...string) (string, bool) {
	raw, ok := firstRaw(row, keys...)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	// Some exports carry numbers where strings are expected
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	return "", false
}

func rawFloat(row map[string]json.RawMessage, keys ...string) (float64, bool) {
	raw, ok := firstRaw(row, keys...)
	if !ok {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	// Tolerate numeric strings ("1500.50")
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func rawUint(row map[string]json.RawMessage, keys ...string) (uint, bool) {
	f, ok := rawFloat(row, keys...)
	if !ok || f < 0 {
		return 0, false
	}
	return uint(f), true
}
