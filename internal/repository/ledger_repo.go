package repository

import (
	"context"
	"fmt"

	"github.com/Hoblayerta/LENSNOMICS/internal/model"
	"github.com/Hoblayerta/LENSNOMICS/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerEntry describes one balance mutation plus its audit row.
type LedgerEntry struct {
	UserID      uuid.UUID
	FromAddress string
	ToAddress   string
	Amount      model.Amount
	TxType      string
	// TxHash is the on-chain hash when chain mode produced one; a
	// synthesized id is generated otherwise.
	TxHash string
	// CommunityID targets the membership balance instead of the global
	// account balance when set.
	CommunityID *uuid.UUID
}

// LedgerRepository is the balance store. Credit and Debit are single
// atomic operations: the balance column moves via an in-database increment
// (never read-then-write) and the token transaction row is appended in the
// same database transaction, so concurrent writers cannot lose updates and
// the ledger never diverges from balances.
type LedgerRepository interface {
	Credit(ctx context.Context, entry LedgerEntry) error
	// Debit fails with ErrInsufficientFunds when the resulting balance
	// would go negative.
	Debit(ctx context.Context, entry LedgerEntry) error
	GetBalance(ctx context.Context, userID uuid.UUID) (model.Amount, error)
	GetMembershipBalance(ctx context.Context, userID, communityID uuid.UUID) (model.Amount, error)
	GetTransactionsByAddress(ctx context.Context, address string, limit int) ([]model.TokenTransaction, error)
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Credit(ctx context.Context, entry LedgerEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := creditQuery(tx, entry, gorm.Expr("token_balance + CAST(? AS numeric)", entry.Amount.String()))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.ErrNotFound
		}
		return appendAudit(tx, entry)
	})
}

func (r *ledgerRepository) Debit(ctx context.Context, entry LedgerEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&model.User{}).
			Where("id = ? AND token_balance >= CAST(? AS numeric)", entry.UserID, entry.Amount.String())
		if entry.CommunityID != nil {
			q = tx.Model(&model.Membership{}).
				Where("user_id = ? AND community_id = ? AND token_balance >= CAST(? AS numeric)",
					entry.UserID, *entry.CommunityID, entry.Amount.String())
		}
		res := q.UpdateColumn("token_balance", gorm.Expr("token_balance - CAST(? AS numeric)", entry.Amount.String()))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Distinguish an absent account from a balance that would
			// go negative.
			var count int64
			existQ := tx.Model(&model.User{}).Where("id = ?", entry.UserID)
			if entry.CommunityID != nil {
				existQ = tx.Model(&model.Membership{}).
					Where("user_id = ? AND community_id = ?", entry.UserID, *entry.CommunityID)
			}
			if err := existQ.Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return apperror.ErrNotFound
			}
			return apperror.ErrInsufficientFunds
		}
		return appendAudit(tx, entry)
	})
}

func (r *ledgerRepository) GetBalance(ctx context.Context, userID uuid.UUID) (model.Amount, error) {
	var user model.User
	err := r.db.WithContext(ctx).Select("token_balance").First(&user, "id = ?", userID).Error
	if err != nil {
		return model.Amount{}, err
	}
	return user.TokenBalance, nil
}

func (r *ledgerRepository) GetMembershipBalance(ctx context.Context, userID, communityID uuid.UUID) (model.Amount, error) {
	var membership model.Membership
	err := r.db.WithContext(ctx).Select("token_balance").
		Where("user_id = ? AND community_id = ?", userID, communityID).
		First(&membership).Error
	if err != nil {
		return model.Amount{}, err
	}
	return membership.TokenBalance, nil
}

func (r *ledgerRepository) GetTransactionsByAddress(ctx context.Context, address string, limit int) ([]model.TokenTransaction, error) {
	var txs []model.TokenTransaction
	err := r.db.WithContext(ctx).
		Where("to_address = ? OR from_address = ?", address, address).
		Order("created_at DESC").
		Limit(limit).
		Find(&txs).Error
	return txs, err
}

func creditQuery(tx *gorm.DB, entry LedgerEntry, expr interface{}) *gorm.DB {
	if entry.CommunityID != nil {
		return tx.Model(&model.Membership{}).
			Where("user_id = ? AND community_id = ?", entry.UserID, *entry.CommunityID).
			UpdateColumn("token_balance", expr)
	}
	return tx.Model(&model.User{}).
		Where("id = ?", entry.UserID).
		UpdateColumn("token_balance", expr)
}

func appendAudit(tx *gorm.DB, entry LedgerEntry) error {
	hash := entry.TxHash
	if hash == "" {
		hash = fmt.Sprintf("%s_%s", entry.TxType, uuid.NewString())
	}
	return tx.Create(&model.TokenTransaction{
		FromAddress: entry.FromAddress,
		ToAddress:   entry.ToAddress,
		Amount:      entry.Amount,
		TxType:      entry.TxType,
		TxHash:      hash,
		CommunityID: entry.CommunityID,
	}).Error
}
