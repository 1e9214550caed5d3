package statemachine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmanet/farmanet-api/internal/models"
)

func TestSettlementFSM_PartialThenSettle(t *testing.T) {
	purchase := &models.Purchase{Total: 1000, AmountPaid: 0, Settlement: models.SettlementUnpaid}
	sfsm := NewSettlementFSM(purchase)

	purchase.AmountPaid = 400
	err := sfsm.ApplyPayment(context.Background(), purchase.Remaining())
	require.NoError(t, err)
	assert.Equal(t, models.SettlementPartiallyPaid, purchase.Settlement)

	sfsm = NewSettlementFSM(purchase)
	purchase.AmountPaid = 1000
	err = sfsm.ApplyPayment(context.Background(), purchase.Remaining())
	require.NoError(t, err)
	assert.Equal(t, models.SettlementPaid, purchase.Settlement)
}

func TestSettlementFSM_SecondPartialPaymentKeepsState(t *testing.T) {
	purchase := &models.Purchase{Total: 1000, AmountPaid: 300, Settlement: models.SettlementPartiallyPaid}
	sfsm := NewSettlementFSM(purchase)

	purchase.AmountPaid = 500
	err := sfsm.ApplyPayment(context.Background(), purchase.Remaining())
	require.NoError(t, err)
	assert.Equal(t, models.SettlementPartiallyPaid, purchase.Settlement)
}

func TestSettlementFSM_FullPaymentFromUnpaid(t *testing.T) {
	purchase := &models.Purchase{Total: 500, AmountPaid: 0, Settlement: models.SettlementUnpaid}
	sfsm := NewSettlementFSM(purchase)

	purchase.AmountPaid = 500
	err := sfsm.ApplyPayment(context.Background(), purchase.Remaining())
	require.NoError(t, err)
	assert.Equal(t, models.SettlementPaid, purchase.Settlement)
}

func TestSettlementFSM_PaidRejectsFurtherPayments(t *testing.T) {
	purchase := &models.Purchase{Total: 500, AmountPaid: 500, Settlement: models.SettlementPaid}
	sfsm := NewSettlementFSM(purchase)

	err := sfsm.ApplyPayment(context.Background(), 0)
	assert.Error(t, err)
	assert.Equal(t, models.SettlementPaid, purchase.Settlement)
}

func TestSettlementFSM_ReverseOneOfSeveralAbonos(t *testing.T) {
	purchase := &models.Purchase{Total: 1000, AmountPaid: 500, Settlement: models.SettlementPartiallyPaid}
	sfsm := NewSettlementFSM(purchase)

	purchase.AmountPaid = 300
	err := sfsm.ReversePayment(context.Background(), purchase.AmountPaid)
	require.NoError(t, err)
	assert.Equal(t, models.SettlementPartiallyPaid, purchase.Settlement)
}

func TestSettlementFSM_ReverseReopensPaid(t *testing.T) {
	purchase := &models.Purchase{Total: 1000, AmountPaid: 1000, Settlement: models.SettlementPaid}
	sfsm := NewSettlementFSM(purchase)

	purchase.AmountPaid = 600
	err := sfsm.ReversePayment(context.Background(), purchase.AmountPaid)
	require.NoError(t, err)
	assert.Equal(t, models.SettlementPartiallyPaid, purchase.Settlement)
}

func TestSettlementFSM_ReverseLastPaymentResetsToUnpaid(t *testing.T) {
	purchase := &models.Purchase{Total: 1000, AmountPaid: 400, Settlement: models.SettlementPartiallyPaid}
	sfsm := NewSettlementFSM(purchase)

	purchase.AmountPaid = 0
	err := sfsm.ReversePayment(context.Background(), purchase.AmountPaid)
	require.NoError(t, err)
	assert.Equal(t, models.SettlementUnpaid, purchase.Settlement)
}
