package repository

import (
	"context"
	"errors"

	"github.com/Hoblayerta/LENSNOMICS/internal/model"
	"github.com/Hoblayerta/LENSNOMICS/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	// GetOrCreateByAddress returns the account for a wallet address,
	// creating it on first interaction.
	GetOrCreateByAddress(ctx context.Context, address string) (*model.User, error)
	FindByAddress(ctx context.Context, address string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	SetLensHandle(ctx context.Context, id uuid.UUID, handle string) error
	// AddAchievementPoints applies an atomic increment; callers never
	// read-modify-write the points column.
	AddAchievementPoints(ctx context.Context, id uuid.UUID, points int) error
	// GrantXP adds experience under a row lock and applies any level
	// ups, so concurrent grants for the same account never lose an
	// update. Reports the levels gained and the resulting level.
	GrantXP(ctx context.Context, id uuid.UUID, xp int) (levelsGained, newLevel int, err error)
	TopByAchievementPoints(ctx context.Context, limit int) ([]model.User, error)
	CountCreatedCommunities(ctx context.Context, id uuid.UUID) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetOrCreateByAddress(ctx context.Context, address string) (*model.User, error) {
	user := &model.User{Address: address, Level: 1}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "address"}},
			DoNothing: true,
		}).
		Create(user).Error
	if err != nil {
		return nil, err
	}
	// Re-read: on conflict the insert returns no row.
	return r.FindByAddress(ctx, address)
}

func (r *userRepository) FindByAddress(ctx context.Context, address string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("address = ?", address).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) SetLensHandle(ctx context.Context, id uuid.UUID, handle string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("lens_handle", handle).Error
}

func (r *userRepository) AddAchievementPoints(ctx context.Context, id uuid.UUID, points int) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		UpdateColumn("achievement_points", gorm.Expr("achievement_points + ?", points)).Error
}

func (r *userRepository) GrantXP(ctx context.Context, id uuid.UUID, xp int) (int, int, error) {
	var levelsGained, newLevel int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrNotFound
			}
			return err
		}
		user.XP += xp
		for user.XP >= user.NextLevelXP() {
			user.XP -= user.NextLevelXP()
			user.Level++
			levelsGained++
		}
		newLevel = user.Level
		return tx.Model(&model.User{}).
			Where("id = ?", id).
			UpdateColumns(map[string]interface{}{"xp": user.XP, "level": user.Level}).Error
	})
	return levelsGained, newLevel, err
}

func (r *userRepository) TopByAchievementPoints(ctx context.Context, limit int) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Order("achievement_points DESC, token_balance DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *userRepository) CountCreatedCommunities(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Community{}).
		Where("creator_id = ?", id).
		Count(&count).Error
	return count, err
}
