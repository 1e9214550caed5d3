package services

import (
	"context"
	"fmt"

	"github.com/farmanet/farmanet-api/internal/models"
	"github.com/farmanet/farmanet-api/internal/repository"
)

type BankService struct {
	repo     repository.BankRepository
	auditSvc *AuditService
}

func NewBankService(repo repository.BankRepository, auditSvc *AuditService) *BankService {
	return &BankService{repo: repo, auditSvc: auditSvc}
}

func (s *BankService) FindAccountByID(ctx context.Context, id uint) (*models.BankAccount, error) {
	return s.repo.FindAccountByID(ctx, id)
}

func (s *BankService) FindAccounts(ctx context.Context) ([]models.BankAccount, error) {
	return s.repo.FindAccounts(ctx)
}

func (s *BankService) FindActiveAccounts(ctx context.Context) ([]models.BankAccount, error) {
	return s.repo.FindActiveAccounts(ctx)
}

func (s *BankService) CreateAccount(ctx context.Context, account *models.BankAccount, actorID uint) error {
	if account.Currency == "" {
		account.Currency = "USD"
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return err
	}
	return s.auditSvc.Log(ctx, actorID, "CREATE", "BankAccount", account.ID,
		fmt.Sprintf("Cuenta bancaria creada: %s (%s)", account.Alias, account.BankName), "", "")
}

func (s *BankService) UpdateAccount(ctx context.Context, account *models.BankAccount, actorID uint) error {
	existing, err := s.repo.FindAccountByID(ctx, account.ID)
	if err != nil {
		return ErrNotFound
	}

	// The balance column only moves through ledger rows
	account.Balance = existing.Balance
	account.CreatedAt = existing.CreatedAt
	if account.BankName == "" {
		account.BankName = existing.BankName
	}
	if account.Number == "" {
		account.Number = existing.Number
	}
	if account.Currency == "" {
		account.Currency = existing.Currency
	}

	if err := s.repo.UpdateAccount(ctx, account); err != nil {
		return err
	}
	return s.auditSvc.Log(ctx, actorID, "UPDATE", "BankAccount", account.ID,
		fmt.Sprintf("Cuenta bancaria actualizada: %s", account.Alias), "", "")
}

func (s *BankService) FindMovements(ctx context.Context, accountID uint, query *repository.ListQuery) ([]models.BankMovement, int64, error) {
	return s.repo.FindMovementsByAccount(ctx, accountID, query)
}

// ReconcileBalance recomputes an account balance from the movement ledger and
// persists it when the stored column drifted.
func (s *BankService) ReconcileBalance(ctx context.Context, accountID uint, actorID uint) (float64, error) {
	account, err := s.repo.FindAccountByID(ctx, accountID)
	if err != nil {
		return 0, ErrNotFound
	}

	balance, err := s.repo.CalculateBalance(ctx, accountID)
	if err != nil {
		return 0, err
	}

	if balance != account.Balance {
		old := account.Balance
		account.Balance = balance
		if err := s.repo.UpdateAccount(ctx, account); err != nil {
			return 0, err
		}
		s.auditSvc.Log(ctx, actorID, "RECONCILE", "BankAccount", accountID,
			fmt.Sprintf("Saldo reconciliado: %.2f -> %.2f", old, balance), "", "")
	}

	return balance, nil
}
