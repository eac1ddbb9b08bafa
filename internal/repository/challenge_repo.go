package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Hoblayerta/LENSNOMICS/internal/model"
	"github.com/Hoblayerta/LENSNOMICS/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChallengeRepository interface {
	ListActive(ctx context.Context) ([]model.Challenge, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Challenge, error)
	GetUserChallenge(ctx context.Context, userID, challengeID uuid.UUID) (*model.UserChallenge, error)
	CreateUserChallenge(ctx context.Context, uc *model.UserChallenge) error
	// MarkCompleted flips completed only while it is still false, so the
	// transition happens exactly once even under concurrent updates.
	// Reports whether this call performed the flip.
	MarkCompleted(ctx context.Context, id uuid.UUID, progress int) (bool, error)
	SetProgress(ctx context.Context, id uuid.UUID, progress int) error
	ListUserChallenges(ctx context.Context, userID uuid.UUID) ([]model.UserChallenge, error)
}

type challengeRepository struct {
	db *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) ChallengeRepository {
	return &challengeRepository{db: db}
}

func (r *challengeRepository) ListActive(ctx context.Context) ([]model.Challenge, error) {
	var challenges []model.Challenge
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("end_date DESC NULLS LAST").
		Find(&challenges).Error
	return challenges, err
}

func (r *challengeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Challenge, error) {
	var challenge model.Challenge
	err := r.db.WithContext(ctx).First(&challenge, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *challengeRepository) GetUserChallenge(ctx context.Context, userID, challengeID uuid.UUID) (*model.UserChallenge, error) {
	var uc model.UserChallenge
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		First(&uc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &uc, nil
}

func (r *challengeRepository) CreateUserChallenge(ctx context.Context, uc *model.UserChallenge) error {
	return r.db.WithContext(ctx).Create(uc).Error
}

func (r *challengeRepository) MarkCompleted(ctx context.Context, id uuid.UUID, progress int) (bool, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&model.UserChallenge{}).
		Where("id = ? AND completed = ?", id, false).
		UpdateColumns(map[string]interface{}{
			"progress":     progress,
			"completed":    true,
			"completed_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *challengeRepository) SetProgress(ctx context.Context, id uuid.UUID, progress int) error {
	return r.db.WithContext(ctx).Model(&model.UserChallenge{}).
		Where("id = ?", id).
		UpdateColumn("progress", progress).Error
}

func (r *challengeRepository) ListUserChallenges(ctx context.Context, userID uuid.UUID) ([]model.UserChallenge, error) {
	var ucs []model.UserChallenge
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Challenge").
		Find(&ucs).Error
	return ucs, err
}
