package statemachine

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/farmanet/farmanet-api/internal/models"
)

// SettlementFSM wraps a purchase with its settlement state machine
type SettlementFSM struct {
	purchase *models.Purchase
	fsm      *fsm.FSM
}

// NewSettlementFSM creates a new settlement state machine for a purchase
func NewSettlementFSM(purchase *models.Purchase) *SettlementFSM {
	sfsm := &SettlementFSM{
		purchase: purchase,
	}

	sfsm.fsm = fsm.NewFSM(
		purchase.Settlement,
		fsm.Events{
			// unpaid/partially_paid → partially_paid (abono leaves a balance)
			{Name: "partial", Src: []string{models.SettlementUnpaid, models.SettlementPartiallyPaid}, Dst: models.SettlementPartiallyPaid},

			// unpaid/partially_paid → paid
			{Name: "settle", Src: []string{models.SettlementUnpaid, models.SettlementPartiallyPaid}, Dst: models.SettlementPaid},

			// paid/partially_paid → partially_paid (reversal leaves a balance)
			{Name: "reopen", Src: []string{models.SettlementPaid, models.SettlementPartiallyPaid}, Dst: models.SettlementPartiallyPaid},

			// paid/partially_paid → unpaid (reversal wipes every abono)
			{Name: "reset", Src: []string{models.SettlementPaid, models.SettlementPartiallyPaid}, Dst: models.SettlementUnpaid},
		},
		fsm.Callbacks{},
	)

	return sfsm
}

// ApplyPayment moves the purchase to the state matching the balance
// left after an abono is applied.
func (s *SettlementFSM) ApplyPayment(ctx context.Context, remaining float64) error {
	if !s.purchase.CanReceivePayment() {
		return fmt.Errorf("purchase cannot receive payments in current state: %s", s.purchase.Settlement)
	}

	event := "partial"
	if remaining <= 0 {
		event = "settle"
	}

	if err := s.fsm.Event(ctx, event); err != nil {
		// A repeated partial abono keeps the same state
		var noTransition fsm.NoTransitionError
		if !errors.As(err, &noTransition) {
			return fmt.Errorf("failed to apply payment: %w", err)
		}
	}

	s.purchase.Settlement = s.fsm.Current()
	return nil
}

// ReversePayment moves the purchase to the state matching the balance
// left after an abono is reversed.
func (s *SettlementFSM) ReversePayment(ctx context.Context, amountPaid float64) error {
	event := "reopen"
	if amountPaid <= 0 {
		event = "reset"
	}

	if err := s.fsm.Event(ctx, event); err != nil {
		// Reversing one of several abonos keeps the same state
		var noTransition fsm.NoTransitionError
		if !errors.As(err, &noTransition) {
			return fmt.Errorf("failed to reverse payment: %w", err)
		}
	}

	s.purchase.Settlement = s.fsm.Current()
	return nil
}

// Current returns the current state
func (s *SettlementFSM) Current() string {
	return s.fsm.Current()
}

// Can checks if a transition is possible
func (s *SettlementFSM) Can(event string) bool {
	return s.fsm.Can(event)
}
