package repository

import (
	"context"
	"errors"

	"github.com/Hoblayerta/LENSNOMICS/internal/dto"
	"github.com/Hoblayerta/LENSNOMICS/internal/model"
	"github.com/Hoblayerta/LENSNOMICS/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostRepository interface {
	CreatePost(ctx context.Context, post *model.Post) error
	FindPostByID(ctx context.Context, id uuid.UUID) (*model.Post, error)
	ListPosts(ctx context.Context, filter dto.PostFilter) ([]model.Post, int64, error)
	CreateComment(ctx context.Context, comment *model.Comment) error
	ListComments(ctx context.Context, postID uuid.UUID) ([]model.Comment, error)
	// UpsertVote inserts the vote or, when the (user, post) pair already
	// voted, replaces the stored value. Reports whether a new row was
	// created so re-votes never re-trigger the author reward.
	UpsertVote(ctx context.Context, vote *model.Vote) (created bool, err error)
	// RefreshCurationScore recomputes the post's curation score as the
	// signed sum of its vote values.
	RefreshCurationScore(ctx context.Context, postID uuid.UUID) (int, error)
	IncrementLikes(ctx context.Context, postID uuid.UUID) error
	CountPostsByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error)
	CountCommentsByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error)
	// CountLikesReceived totals likes across all of the author's posts.
	CountLikesReceived(ctx context.Context, authorID uuid.UUID) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) CreatePost(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) FindPostByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).Preload("Author").First(&post, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListPosts(ctx context.Context, filter dto.PostFilter) ([]model.Post, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Post{})
	if filter.CommunityID != "" {
		q = q.Where("community_id = ?", filter.CommunityID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var posts []model.Post
	err := q.Preload("Author").
		Order("created_at DESC").
		Offset(offset).
		Limit(filter.Limit).
		Find(&posts).Error
	return posts, total, err
}

func (r *postRepository) CreateComment(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&model.Post{}).
			Where("id = ?", comment.PostID).
			UpdateColumn("comment_num", gorm.Expr("comment_num + 1")).Error
	})
}

func (r *postRepository) ListComments(ctx context.Context, postID uuid.UUID) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Preload("Author").
		Order("created_at DESC").
		Find(&comments).Error
	return comments, err
}

func (r *postRepository) UpsertVote(ctx context.Context, vote *model.Vote) (bool, error) {
	if vote.ID == uuid.Nil {
		vote.ID = uuid.New()
	}
	// xmax = 0 only holds for a freshly inserted row, so one statement
	// both upserts and reports insert vs value replacement.
	var created bool
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO votes (id, user_id, post_id, value, created_at, updated_at)
		VALUES (?, ?, ?, ?, NOW(), NOW())
		ON CONFLICT (user_id, post_id)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		RETURNING (xmax = 0)`,
		vote.ID, vote.UserID, vote.PostID, vote.Value).
		Scan(&created).Error
	return created, err
}

func (r *postRepository) RefreshCurationScore(ctx context.Context, postID uuid.UUID) (int, error) {
	var score int
	err := r.db.WithContext(ctx).Model(&model.Vote{}).
		Select("COALESCE(SUM(value), 0)").
		Where("post_id = ?", postID).
		Scan(&score).Error
	if err != nil {
		return 0, err
	}
	err = r.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", postID).
		UpdateColumn("curation_score", score).Error
	return score, err
}

func (r *postRepository) IncrementLikes(ctx context.Context, postID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", postID).
		UpdateColumn("likes", gorm.Expr("likes + 1")).Error
}

func (r *postRepository) CountPostsByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Post{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}

func (r *postRepository) CountCommentsByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}

func (r *postRepository) CountLikesReceived(ctx context.Context, authorID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Post{}).
		Select("COALESCE(SUM(likes), 0)").
		Where("author_id = ?", authorID).
		Scan(&total).Error
	return total, err
}
