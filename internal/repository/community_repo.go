package repository

import (
	"context"
	"errors"

	"github.com/Hoblayerta/LENSNOMICS/internal/model"
	"github.com/Hoblayerta/LENSNOMICS/pkg/apperror"
	"github.com/Hoblayerta/LENSNOMICS/pkg/chain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommunityRepository interface {
	// CreateWithCreator inserts the community, enrolls the creator as
	// its first member with the configured starting balance, and
	// appends the join-grant audit row, all in one transaction.
	CreateWithCreator(ctx context.Context, community *model.Community, creatorAddress string) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Community, error)
	FindByName(ctx context.Context, name string) (*model.Community, error)
	List(ctx context.Context) ([]model.Community, error)
	// Join is idempotent: re-joining returns the existing membership
	// with created=false and writes nothing.
	Join(ctx context.Context, membership *model.Membership, memberAddress string) (created bool, err error)
	FindMembership(ctx context.Context, userID, communityID uuid.UUID) (*model.Membership, error)
	MemberCount(ctx context.Context, communityID uuid.UUID) (int64, error)
}

type communityRepository struct {
	db *gorm.DB
}

func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{db: db}
}

func (r *communityRepository) CreateWithCreator(ctx context.Context, community *model.Community, creatorAddress string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(community).Error; err != nil {
			return err
		}

		membership := &model.Membership{
			UserID:       community.CreatorID,
			CommunityID:  community.ID,
			TokenBalance: community.InitialTokenAmount,
		}
		if err := tx.Create(membership).Error; err != nil {
			return err
		}

		if community.InitialTokenAmount.IsZero() {
			return nil
		}
		return appendAudit(tx, LedgerEntry{
			FromAddress: chain.SystemAddress,
			ToAddress:   creatorAddress,
			Amount:      community.InitialTokenAmount,
			TxType:      model.TxTypeJoinGrant,
			CommunityID: &community.ID,
		})
	})
}

func (r *communityRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Community, error) {
	var community model.Community
	err := r.db.WithContext(ctx).Preload("Creator").First(&community, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &community, nil
}

func (r *communityRepository) FindByName(ctx context.Context, name string) (*model.Community, error) {
	var community model.Community
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&community).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &community, nil
}

func (r *communityRepository) List(ctx context.Context) ([]model.Community, error) {
	var communities []model.Community
	err := r.db.WithContext(ctx).Preload("Creator").Order("created_at DESC").Find(&communities).Error
	if err != nil {
		return nil, err
	}
	for i := range communities {
		count, err := r.MemberCount(ctx, communities[i].ID)
		if err != nil {
			return nil, err
		}
		communities[i].MemberCount = count
	}
	return communities, nil
}

func (r *communityRepository) Join(ctx context.Context, membership *model.Membership, memberAddress string) (bool, error) {
	var created bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "community_id"}},
			DoNothing: true,
		}).Create(membership)
		if res.Error != nil {
			return res.Error
		}
		created = res.RowsAffected > 0
		if !created || membership.TokenBalance.IsZero() {
			return nil
		}
		return appendAudit(tx, LedgerEntry{
			FromAddress: chain.SystemAddress,
			ToAddress:   memberAddress,
			Amount:      membership.TokenBalance,
			TxType:      model.TxTypeJoinGrant,
			CommunityID: &membership.CommunityID,
		})
	})
	return created, err
}

// FindMembership returns nil without error when the user never joined.
func (r *communityRepository) FindMembership(ctx context.Context, userID, communityID uuid.UUID) (*model.Membership, error) {
	var membership model.Membership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND community_id = ?", userID, communityID).
		First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *communityRepository) MemberCount(ctx context.Context, communityID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Membership{}).
		Where("community_id = ?", communityID).
		Count(&count).Error
	return count, err
}
