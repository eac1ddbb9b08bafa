package repository

import (
	"context"

	"github.com/Hoblayerta/LENSNOMICS/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AchievementRepository interface {
	ListAll(ctx context.Context) ([]model.Achievement, error)
	// Unlock records the unlock if it does not exist yet. Reports whether
	// this call created the record; false means already unlocked.
	Unlock(ctx context.Context, userID, achievementID uuid.UUID) (bool, error)
	ListUnlocked(ctx context.Context, userID uuid.UUID) ([]model.Achievement, error)
	ListUnlockedBatch(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]model.Achievement, error)
	CountUnlocked(ctx context.Context, userID uuid.UUID) (int64, error)
}

type achievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) ListAll(ctx context.Context) ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.db.WithContext(ctx).Order("threshold ASC").Find(&achievements).Error
	return achievements, err
}

func (r *achievementRepository) Unlock(ctx context.Context, userID, achievementID uuid.UUID) (bool, error) {
	unlock := model.AchievementUnlock{
		UserID:        userID,
		AchievementID: achievementID,
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&unlock)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *achievementRepository) ListUnlocked(ctx context.Context, userID uuid.UUID) ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.db.WithContext(ctx).
		Joins("JOIN achievement_unlocks ON achievement_unlocks.achievement_id = achievements.id").
		Where("achievement_unlocks.user_id = ?", userID).
		Order("achievement_unlocks.unlocked_at ASC").
		Find(&achievements).Error
	return achievements, err
}

func (r *achievementRepository) ListUnlockedBatch(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]model.Achievement, error) {
	out := make(map[uuid.UUID][]model.Achievement, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	type row struct {
		model.Achievement
		UnlockUserID uuid.UUID `gorm:"column:unlock_user_id"`
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&model.Achievement{}).
		Select("achievements.*, achievement_unlocks.user_id AS unlock_user_id").
		Joins("JOIN achievement_unlocks ON achievement_unlocks.achievement_id = achievements.id").
		Where("achievement_unlocks.user_id IN ?", userIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, rw := range rows {
		out[rw.UnlockUserID] = append(out[rw.UnlockUserID], rw.Achievement)
	}
	return out, nil
}

func (r *achievementRepository) CountUnlocked(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.AchievementUnlock{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
