package service

import (
	"context"

	"github.com/Hoblayerta/LENSNOMICS/internal/dto"
	"github.com/Hoblayerta/LENSNOMICS/internal/model"
	"github.com/Hoblayerta/LENSNOMICS/internal/repository"
	"github.com/Hoblayerta/LENSNOMICS/pkg/logger"
	"github.com/google/uuid"
)

type NotificationService interface {
	Notify(ctx context.Context, notification *model.Notification) error
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]dto.NotificationResponse, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) Notify(ctx context.Context, notification *model.Notification) error {
	return s.repo.Create(ctx, notification)
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]dto.NotificationResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	notifications, err := s.repo.GetByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, dto.NotificationResponse{
			ID:        n.ID.String(),
			Type:      n.Type,
			Message:   n.Message,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return out, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id, userID)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// notifyBestEffort writes a notification and only logs on failure. Reward
// and achievement flows never fail because a notification could not land.
func notifyBestEffort(ctx context.Context, svc NotificationService, userID, entityID uuid.UUID, kind, message string) {
	if svc == nil {
		return
	}
	err := svc.Notify(ctx, &model.Notification{
		UserID:   userID,
		EntityID: entityID,
		Type:     kind,
		Message:  message,
	})
	if err != nil {
		logger.Sugar.Warnw("notification write failed",
			"user_id", userID, "type", kind, "error", err)
	}
}
