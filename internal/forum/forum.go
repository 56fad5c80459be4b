package forum

import (
	"context"
	"errors"
	"strings"

	"github.com/servihub/marketplace/internal/directory"
	"github.com/servihub/marketplace/internal/models"
	"gorm.io/gorm"
)

var (
	ErrInvalidTopic = errors.New("title and content are required")
	ErrEmptyPost    = errors.New("content is required")
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) CreateTopic(ctx context.Context, t *models.ForumTopic) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *Repo) GetTopic(ctx context.Context, id uint64) (*models.ForumTopic, error) {
	var t models.ForumTopic
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repo) ListTopics(ctx context.Context) ([]models.ForumTopic, error) {
	var out []models.ForumTopic
	err := r.db.WithContext(ctx).Order("id DESC").Find(&out).Error
	return out, err
}

func (r *Repo) CreatePost(ctx context.Context, p *models.ForumPost) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *Repo) ListPosts(ctx context.Context, topicID uint64) ([]models.ForumPost, error) {
	var out []models.ForumPost
	err := r.db.WithContext(ctx).Where("topic_id = ?", topicID).Order("id ASC").Find(&out).Error
	return out, err
}

type Service struct {
	repo  *Repo
	names *directory.Resolver
}

func NewService(repo *Repo, names *directory.Resolver) *Service {
	return &Service{repo: repo, names: names}
}

func (s *Service) CreateTopic(ctx context.Context, userID, title, content string) (*models.ForumTopic, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return nil, ErrInvalidTopic
	}
	t := &models.ForumTopic{Title: title, Content: content, UserID: userID}
	if err := s.repo.CreateTopic(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) ListTopics(ctx context.Context) ([]models.ForumTopic, error) {
	return s.repo.ListTopics(ctx)
}

func (s *Service) AddPost(ctx context.Context, topicID uint64, userID, content string) (*models.ForumPost, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyPost
	}
	// reject posts on topics that don't exist
	if _, err := s.repo.GetTopic(ctx, topicID); err != nil {
		return nil, err
	}
	p := &models.ForumPost{TopicID: topicID, UserID: userID, Content: content}
	if err := s.repo.CreatePost(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// PostView is a post with its author name resolved.
type PostView struct {
	ID         uint64 `json:"id"`
	Content    string `json:"content"`
	UserID     string `json:"user_id"`
	AuthorName string `json:"author_name"`
	CreatedAt  string `json:"created_at"`
}

// TopicView is a topic plus its posts for the thread page.
type TopicView struct {
	Topic      models.ForumTopic `json:"topic"`
	AuthorName string            `json:"author_name"`
	Posts      []PostView        `json:"posts"`
}

func (s *Service) GetTopicWithPosts(ctx context.Context, id uint64) (*TopicView, error) {
	topic, err := s.repo.GetTopic(ctx, id)
	if err != nil {
		return nil, err
	}
	posts, err := s.repo.ListPosts(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(posts)+1)
	ids = append(ids, topic.UserID)
	for _, p := range posts {
		ids = append(ids, p.UserID)
	}
	names, err := s.names.ResolveNames(ctx, ids)
	if err != nil {
		return nil, err
	}

	view := &TopicView{Topic: *topic, AuthorName: names[topic.UserID], Posts: make([]PostView, 0, len(posts))}
	for _, p := range posts {
		view.Posts = append(view.Posts, PostView{
			ID:         p.ID,
			Content:    p.Content,
			UserID:     p.UserID,
			AuthorName: names[p.UserID],
			CreatedAt:  p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return view, nil
}
