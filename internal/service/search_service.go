package service

import (
	"encoding/json"
	"html"
	"strings"

	"github.com/Hoblayerta/LENSNOMICS/internal/model"
	"github.com/Hoblayerta/LENSNOMICS/pkg/logger"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

const postsIndex = "posts"

type SearchService interface {
	IndexPost(post *model.Post) error
	DeletePost(id string) error
	// Search returns matching post ids ranked by relevance. Token gated
	// posts are findable but their body text is never indexed.
	Search(query string, communityID string, limit int) ([]string, error)
}

type meiliPostDoc struct {
	ID            string `json:"id"`
	Content       string `json:"content"`
	AuthorAddress string `json:"author_address"`
	CommunityID   string `json:"community_id"`
	IsTokenGated  bool   `json:"is_token_gated"`
	CreatedAt     int64  `json:"created_at"`
}

type searchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndexes()
	return s
}

func (s *searchService) initIndexes() {
	filterable := []any{"community_id", "is_token_gated"}
	if _, err := s.client.Index(postsIndex).UpdateFilterableAttributes(&filterable); err != nil {
		logger.Sugar.Warnw("meilisearch filterable attributes update failed", "error", err)
	}

	sortable := []string{"created_at"}
	if _, err := s.client.Index(postsIndex).UpdateSortableAttributes(&sortable); err != nil {
		logger.Sugar.Warnw("meilisearch sortable attributes update failed", "error", err)
	}
}

// cleanContentForIndex strips markup so the index holds plain searchable
// text.
func (s *searchService) cleanContentForIndex(content string) string {
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	sanitized := s.sanitizer.Sanitize(content)
	cleanText := html.UnescapeString(sanitized)
	return strings.Join(strings.Fields(cleanText), " ")
}

func (s *searchService) IndexPost(post *model.Post) error {
	doc := meiliPostDoc{
		ID:           post.ID.String(),
		IsTokenGated: post.IsTokenGated,
		CreatedAt:    post.CreatedAt.Unix(),
	}
	if !post.IsTokenGated {
		doc.Content = s.cleanContentForIndex(post.Content)
	}
	if post.Author != nil {
		doc.AuthorAddress = post.Author.Address
	}
	if post.CommunityID != nil {
		doc.CommunityID = post.CommunityID.String()
	}

	primaryKey := "id"
	task, err := s.client.Index(postsIndex).AddDocuments([]meiliPostDoc{doc}, &primaryKey)
	if err != nil {
		return err
	}
	logger.Sugar.Debugw("post indexed", "post_id", doc.ID, "task_uid", task.TaskUID)
	return nil
}

func (s *searchService) DeletePost(id string) error {
	_, err := s.client.Index(postsIndex).DeleteDocument(id)
	return err
}

func (s *searchService) Search(query string, communityID string, limit int) ([]string, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	req := &meilisearch.SearchRequest{
		Limit: int64(limit),
	}
	if communityID != "" {
		req.Filter = "community_id = " + communityID
	}

	res, err := s.client.Index(postsIndex).Search(query, req)
	if err != nil {
		return nil, err
	}

	return hitIDs(res.Hits), nil
}

// hitIDs decodes the id field out of each raw search hit, skipping hits
// without a usable one.
func hitIDs(hits []meilisearch.Hit) []string {
	ids := make([]string, 0, len(hits))
	for _, hit := range hits {
		raw, ok := hit["id"]
		if !ok {
			continue
		}
		var id string
		if err := json.Unmarshal(raw, &id); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
