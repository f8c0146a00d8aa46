package service

import (
	"fmt"
	"strings"

	"github.com/avolkov/forum/internal/authz"
	"github.com/avolkov/forum/internal/models"
	"github.com/avolkov/forum/internal/pagination"
	"github.com/avolkov/forum/internal/repository"
	"github.com/avolkov/forum/internal/utils"
	"github.com/avolkov/forum/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ForumService implements topic and comment operations. Every mutation
// re-reads the actor and the target from the store before deciding, so a
// just-flipped lock or a just-revoked admin role is always honored, and
// gates through authz.Authorize before any write.
type ForumService struct {
	topicRepo    *repository.TopicRepository
	commentRepo  *repository.CommentRepository
	categoryRepo *repository.CategoryRepository
	userRepo     *repository.UserRepository
	pageSize     int
}

func NewForumService(
	topicRepo *repository.TopicRepository,
	commentRepo *repository.CommentRepository,
	categoryRepo *repository.CategoryRepository,
	userRepo *repository.UserRepository,
	pageSize int,
) *ForumService {
	if pageSize <= 0 {
		pageSize = pagination.DefaultPageSize
	}
	return &ForumService{
		topicRepo:    topicRepo,
		commentRepo:  commentRepo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
		pageSize:     pageSize,
	}
}

// TopicGroup is one index-page bucket: a category (nil = uncategorized,
// which sorts last) and its topics in canonical order.
type TopicGroup struct {
	Category *models.Category `json:"category"`
	Topics   []models.Topic   `json:"topics"`
}

// TopicPage is one page of a topic's comments plus pagination metadata.
type TopicPage struct {
	Topic     *models.Topic    `json:"topic"`
	Comments  []models.Comment `json:"comments"`
	Page      int              `json:"page"`
	PageCount int              `json:"page_count"`
	Total     int              `json:"total"`
}

// CategoryTopicsPage is one page of a category's topic listing.
type CategoryTopicsPage struct {
	Category  *models.Category `json:"category"` // nil for the uncategorized bucket
	Topics    []models.Topic   `json:"topics"`
	Page      int              `json:"page"`
	PageCount int              `json:"page_count"`
	Total     int              `json:"total"`
}

// CommentLocation points at the page a comment lives on, for deep links.
type CommentLocation struct {
	TopicID   uint64 `json:"topic_id"`
	CommentID uint64 `json:"comment_id"`
	Page      int    `json:"page"`
}

func (s *ForumService) actor(actorID uuid.UUID) (*models.User, error) {
	actor, err := s.userRepo.GetUserByID(actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		// Deleted or unknown account: treat as unauthenticated.
		return nil, authz.ErrForbidden
	}
	return actor, nil
}

// ListTopicsGrouped returns the index listing: topics grouped by category
// in the canonical order. Groups arrive in listing order; the uncategorized
// bucket, when present, is last.
func (s *ForumService) ListTopicsGrouped() ([]TopicGroup, error) {
	topics, err := s.topicRepo.ListTopics()
	if err != nil {
		return nil, err
	}

	var groups []TopicGroup
	for _, topic := range topics {
		sameGroup := len(groups) > 0 && categoryKey(groups[len(groups)-1].Category) == categoryKey(topic.Category)
		if !sameGroup {
			groups = append(groups, TopicGroup{Category: topic.Category})
		}
		last := &groups[len(groups)-1]
		last.Topics = append(last.Topics, topic)
	}
	return groups, nil
}

func categoryKey(c *models.Category) uint64 {
	if c == nil {
		return 0
	}
	return c.ID
}

// ListCategoryTopics returns one page of a category's topics. A nil
// categoryID selects the uncategorized bucket. Out-of-range pages clamp to
// page 1.
func (s *ForumService) ListCategoryTopics(categoryID *uint64, page int) (*CategoryTopicsPage, error) {
	var category *models.Category
	if categoryID != nil {
		var err error
		category, err = s.categoryRepo.GetCategoryByID(*categoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, ErrNotFound
		}
	}

	topics, err := s.topicRepo.ListTopicsByCategory(categoryID)
	if err != nil {
		return nil, err
	}

	p := pagination.New(topics, s.pageSize)
	items := p.Page(page)
	page = clampPage(p, page)

	return &CategoryTopicsPage{
		Category:  category,
		Topics:    items,
		Page:      page,
		PageCount: p.PageCount(),
		Total:     p.Len(),
	}, nil
}

// GetTopic returns the topic with the requested page of its comments,
// computed fresh against the current comment set.
func (s *ForumService) GetTopic(topicID uint64, page int) (*TopicPage, error) {
	topic, err := s.topicRepo.GetTopicByID(topicID)
	if err != nil {
		return nil, err
	}
	if topic == nil {
		return nil, ErrNotFound
	}

	comments, err := s.commentRepo.ListCommentsByTopic(topicID)
	if err != nil {
		return nil, err
	}

	p := pagination.New(comments, s.pageSize)
	items := p.Page(page)
	page = clampPage(p, page)

	return &TopicPage{
		Topic:     topic,
		Comments:  items,
		Page:      page,
		PageCount: p.PageCount(),
		Total:     p.Len(),
	}, nil
}

// CreateTopic files a new topic, optionally inside a category. A locked
// category only accepts topics from admins.
func (s *ForumService) CreateTopic(actorID uuid.UUID, title, body string, categoryID *uint64) (*models.Topic, error) {
	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}

	title = utils.SanitizeTitle(strings.TrimSpace(title))
	body = utils.SanitizeBody(body)
	if title == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
	}
	if body == "" {
		return nil, fmt.Errorf("%w: body cannot be empty", ErrValidation)
	}

	var category *models.Category
	if categoryID != nil {
		category, err = s.categoryRepo.GetCategoryByID(*categoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, ErrNotFound
		}
	}

	if err := authz.Authorize(actor, authz.ActionCreateTopic, authz.Target{Category: category}); err != nil {
		logger.Log.Warn("Topic creation denied",
			zap.String("actor_id", actorID.String()),
		)
		return nil, err
	}

	topic := &models.Topic{
		AuthorID:   actor.ID,
		CategoryID: categoryID,
		Title:      title,
		Body:       body,
	}
	if err := s.topicRepo.CreateTopic(topic); err != nil {
		return nil, err
	}

	logger.Log.Info("Topic created",
		zap.Uint64("topic_id", topic.ID),
		zap.String("author_id", actor.ID.String()),
	)
	return s.topicRepo.GetTopicByID(topic.ID)
}

// EditTopic updates title, body and category. Author-or-admin, locked topic
// admin only. A payload identical to the stored state returns
// ErrNothingChanged without a write.
func (s *ForumService) EditTopic(actorID uuid.UUID, topicID uint64, title, body string, categoryID *uint64) (*models.Topic, error) {
	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}

	topic, err := s.topicRepo.GetTopicByID(topicID)
	if err != nil {
		return nil, err
	}
	if topic == nil {
		return nil, ErrNotFound
	}

	if err := authz.Authorize(actor, authz.ActionEditTopic, authz.Target{Topic: topic}); err != nil {
		logger.Log.Warn("Topic edit denied",
			zap.Uint64("topic_id", topicID),
			zap.String("actor_id", actorID.String()),
		)
		return nil, err
	}

	title = utils.SanitizeTitle(strings.TrimSpace(title))
	body = utils.SanitizeBody(body)
	if title == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
	}
	if body == "" {
		return nil, fmt.Errorf("%w: body cannot be empty", ErrValidation)
	}

	if categoryID != nil {
		category, err := s.categoryRepo.GetCategoryByID(*categoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, ErrNotFound
		}
	}

	if topic.Title == title && topic.Body == body && uint64PtrEqual(topic.CategoryID, categoryID) {
		return nil, ErrNothingChanged
	}

	topic.Title = title
	topic.Body = body
	topic.CategoryID = categoryID
	topic.Category = nil // re-resolved on the next read
	if err := s.topicRepo.UpdateTopic(topic); err != nil {
		return nil, err
	}

	logger.Log.Info("Topic edited",
		zap.Uint64("topic_id", topicID),
		zap.String("actor_id", actorID.String()),
	)
	return s.topicRepo.GetTopicByID(topicID)
}

// DeleteTopic removes the topic and all of its comments atomically.
func (s *ForumService) DeleteTopic(actorID uuid.UUID, topicID uint64) error {
	actor, err := s.actor(actorID)
	if err != nil {
		return err
	}

	topic, err := s.topicRepo.GetTopicByID(topicID)
	if err != nil {
		return err
	}
	if topic == nil {
		return ErrNotFound
	}

	if err := authz.Authorize(actor, authz.ActionDeleteTopic, authz.Target{Topic: topic}); err != nil {
		logger.Log.Warn("Topic delete denied",
			zap.Uint64("topic_id", topicID),
			zap.String("actor_id", actorID.String()),
		)
		return err
	}

	if err := s.topicRepo.DeleteTopicCascade(topicID); err != nil {
		return err
	}

	logger.Log.Info("Topic deleted with comments",
		zap.Uint64("topic_id", topicID),
		zap.String("actor_id", actorID.String()),
	)
	return nil
}

// SetTopicPinned sets the pin flag. Admin only; pin affects ordering only.
func (s *ForumService) SetTopicPinned(actorID uuid.UUID, topicID uint64, pinned bool) error {
	return s.setTopicFlag(actorID, topicID, authz.ActionPinTopic, func() error {
		return s.topicRepo.SetPinned(topicID, pinned)
	})
}

// SetTopicLocked sets the lock flag. Admin only; lock affects permitted
// transitions only.
func (s *ForumService) SetTopicLocked(actorID uuid.UUID, topicID uint64, locked bool) error {
	return s.setTopicFlag(actorID, topicID, authz.ActionLockTopic, func() error {
		return s.topicRepo.SetLocked(topicID, locked)
	})
}

func (s *ForumService) setTopicFlag(actorID uuid.UUID, topicID uint64, action authz.Action, apply func() error) error {
	actor, err := s.actor(actorID)
	if err != nil {
		return err
	}

	topic, err := s.topicRepo.GetTopicByID(topicID)
	if err != nil {
		return err
	}
	if topic == nil {
		return ErrNotFound
	}

	if err := authz.Authorize(actor, action, authz.Target{Topic: topic}); err != nil {
		logger.Log.Warn("Topic flag change denied",
			zap.Uint64("topic_id", topicID),
			zap.String("actor_id", actorID.String()),
		)
		return err
	}
	return apply()
}

// CreateComment posts a comment to a topic. Any authenticated user may
// comment on an open topic; a locked topic accepts comments from admins
// only, including against the topic's own author.
func (s *ForumService) CreateComment(actorID uuid.UUID, topicID uint64, body string) (*models.Comment, error) {
	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}

	topic, err := s.topicRepo.GetTopicByID(topicID)
	if err != nil {
		return nil, err
	}
	if topic == nil {
		return nil, ErrNotFound
	}

	if err := authz.Authorize(actor, authz.ActionCreateComment, authz.Target{Topic: topic}); err != nil {
		logger.Log.Warn("Comment creation denied",
			zap.Uint64("topic_id", topicID),
			zap.String("actor_id", actorID.String()),
		)
		return nil, err
	}

	body = utils.SanitizeBody(body)
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: comment cannot be empty", ErrValidation)
	}

	comment := &models.Comment{
		TopicID:  topicID,
		AuthorID: actor.ID,
		Body:     body,
	}
	if err := s.commentRepo.CreateComment(comment); err != nil {
		return nil, err
	}

	logger.Log.Info("Comment created",
		zap.Uint64("comment_id", comment.ID),
		zap.Uint64("topic_id", topicID),
		zap.String("author_id", actor.ID.String()),
	)
	return s.commentRepo.GetCommentByID(comment.ID)
}

// EditComment updates a comment body. Author-or-admin; a locked parent
// topic restricts the edit to admins. Identical body returns
// ErrNothingChanged.
func (s *ForumService) EditComment(actorID uuid.UUID, commentID uint64, body string) (*models.Comment, error) {
	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}

	comment, topic, err := s.commentWithTopic(commentID)
	if err != nil {
		return nil, err
	}

	if err := authz.Authorize(actor, authz.ActionEditComment, authz.Target{Topic: topic, Comment: comment}); err != nil {
		logger.Log.Warn("Comment edit denied",
			zap.Uint64("comment_id", commentID),
			zap.String("actor_id", actorID.String()),
		)
		return nil, err
	}

	body = utils.SanitizeBody(body)
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: comment cannot be empty", ErrValidation)
	}

	if comment.Body == body {
		return nil, ErrNothingChanged
	}

	comment.Body = body
	if err := s.commentRepo.UpdateComment(comment); err != nil {
		return nil, err
	}

	logger.Log.Info("Comment edited",
		zap.Uint64("comment_id", commentID),
		zap.String("actor_id", actorID.String()),
	)
	return s.commentRepo.GetCommentByID(commentID)
}

// DeleteComment removes a single comment. Author-or-admin; locked parent
// topic restricts to admins.
func (s *ForumService) DeleteComment(actorID uuid.UUID, commentID uint64) error {
	actor, err := s.actor(actorID)
	if err != nil {
		return err
	}

	comment, topic, err := s.commentWithTopic(commentID)
	if err != nil {
		return err
	}

	if err := authz.Authorize(actor, authz.ActionDeleteComment, authz.Target{Topic: topic, Comment: comment}); err != nil {
		logger.Log.Warn("Comment delete denied",
			zap.Uint64("comment_id", commentID),
			zap.String("actor_id", actorID.String()),
		)
		return err
	}

	if err := s.commentRepo.DeleteComment(commentID); err != nil {
		return err
	}

	logger.Log.Info("Comment deleted",
		zap.Uint64("comment_id", commentID),
		zap.String("actor_id", actorID.String()),
	)
	return nil
}

// LocateComment resolves a comment deep link: which page of its topic the
// comment sits on under the canonical comment order and the current page
// size. The position is recomputed per call, so it tracks inserts and
// deletes between requests.
func (s *ForumService) LocateComment(commentID uint64) (*CommentLocation, error) {
	comment, _, err := s.commentWithTopic(commentID)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListCommentsByTopic(comment.TopicID)
	if err != nil {
		return nil, err
	}

	p := pagination.New(comments, s.pageSize)
	page, err := p.Locate(func(c models.Comment) bool { return c.ID == commentID })
	if err != nil {
		// The comment vanished between the two reads.
		return nil, ErrNotFound
	}

	return &CommentLocation{
		TopicID:   comment.TopicID,
		CommentID: commentID,
		Page:      page,
	}, nil
}

func (s *ForumService) commentWithTopic(commentID uint64) (*models.Comment, *models.Topic, error) {
	comment, err := s.commentRepo.GetCommentByID(commentID)
	if err != nil {
		return nil, nil, err
	}
	if comment == nil {
		return nil, nil, ErrNotFound
	}

	topic, err := s.topicRepo.GetTopicByID(comment.TopicID)
	if err != nil {
		return nil, nil, err
	}
	if topic == nil {
		return nil, nil, ErrNotFound
	}
	return comment, topic, nil
}

// clampPage mirrors the paginator's Page clamping so the reported page
// number matches the returned items.
func clampPage[T any](p *pagination.Paginator[T], page int) int {
	if p.PageCount() == 0 || page < 1 || page > p.PageCount() {
		return 1
	}
	return page
}

func uint64PtrEqual(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
