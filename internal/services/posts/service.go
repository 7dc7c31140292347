package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/neverluckskr/TSObukhivBot/internal/domain/enums"
	"github.com/neverluckskr/TSObukhivBot/internal/domain/model"
	pgrepo "github.com/neverluckskr/TSObukhivBot/internal/repo/postgres"
)

var (
	ErrEmptyContent   = errors.New("post content is empty")
	ErrNotFound       = errors.New("post not found")
	ErrAlreadyHandled = errors.New("post already handled")
)

// DefaultRejectionReason is recorded when a moderator rejects without
// typing a reason.
const DefaultRejectionReason = "Причина не указана"

type Repo interface {
	Create(ctx context.Context, userID int64, postType enums.PostType, content, mediaFileID string) (model.Post, error)
	GetByID(ctx context.Context, postID int64) (model.Post, error)
	MarkApproved(ctx context.Context, postID, moderatorID int64) (model.Post, error)
	MarkRejected(ctx context.Context, postID, moderatorID int64, reason string) (model.Post, error)
	UpdateContent(ctx context.Context, postID int64, content, mediaFileID string) (model.Post, error)
	SetChannelMessageID(ctx context.Context, postID, messageID int64) error
	ListPending(ctx context.Context) ([]model.Post, error)
	CountPending(ctx context.Context) (int, error)
}

// Publisher is the broadcast channel. Publication tries media-as-photo,
// falls back to media-as-document, falls back to text-only.
type Publisher interface {
	SendChannelText(ctx context.Context, text string) (int64, error)
	SendChannelPhoto(ctx context.Context, fileID, caption string) (int64, error)
	SendChannelDocument(ctx context.Context, fileID, caption string) (int64, error)
}

type Service struct {
	repo      Repo
	publisher Publisher
	logger    *zap.Logger
}

// PublishResult carries the approved post together with the publish
// outcome. Approval is committed before publication, so Post.Status is
// approved even when Published is false.
type PublishResult struct {
	Post             model.Post
	ChannelMessageID int64
	Published        bool
	PublishErr       error
}

type BulkResult struct {
	Approved    []model.Post
	FailedCount int
}

func NewService(repo Repo, publisher Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, publisher: publisher, logger: logger}
}

// Submit creates a pending post. The returned pending count includes the
// new post and drives the bulk-approval affordance on the moderator card.
func (s *Service) Submit(ctx context.Context, authorID int64, postType enums.PostType, content, mediaFileID string) (model.Post, int, error) {
	content = strings.TrimSpace(content)
	if content == "" && mediaFileID == "" {
		return model.Post{}, 0, ErrEmptyContent
	}

	post, err := s.repo.Create(ctx, authorID, postType, content, mediaFileID)
	if err != nil {
		return model.Post{}, 0, fmt.Errorf("submit post: %w", err)
	}

	pending, err := s.repo.CountPending(ctx)
	if err != nil {
		return model.Post{}, 0, fmt.Errorf("count pending after submit: %w", err)
	}

	return post, pending, nil
}

func (s *Service) GetByID(ctx context.Context, postID int64) (model.Post, error) {
	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return model.Post{}, mapRepoErr(err)
	}
	return post, nil
}

// Approve commits the terminal transition first and publishes after. A
// publication failure leaves the post approved: the moderator sees the
// diagnostic and the post is not stuck pending behind a broken channel.
func (s *Service) Approve(ctx context.Context, postID, moderatorID int64) (PublishResult, error) {
	post, err := s.repo.MarkApproved(ctx, postID, moderatorID)
	if err != nil {
		return PublishResult{}, mapRepoErr(err)
	}

	result := PublishResult{Post: post}

	messageID, publishErr := s.publish(ctx, post)
	if publishErr != nil {
		s.logger.Error("publish approved post failed",
			zap.Int64("post_id", post.PostID),
			zap.Error(publishErr))
		result.PublishErr = publishErr
		return result, nil
	}

	result.Published = true
	result.ChannelMessageID = messageID
	if err := s.repo.SetChannelMessageID(ctx, post.PostID, messageID); err != nil {
		s.logger.Error("record channel message id failed",
			zap.Int64("post_id", post.PostID),
			zap.Error(err))
	}
	result.Post.ChannelMessageID = &messageID

	return result, nil
}

// Reject needs a reason; an empty one is replaced with the placeholder.
func (s *Service) Reject(ctx context.Context, postID, moderatorID int64, reason string) (model.Post, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultRejectionReason
	}

	post, err := s.repo.MarkRejected(ctx, postID, moderatorID, reason)
	if err != nil {
		return model.Post{}, mapRepoErr(err)
	}

	return post, nil
}

// Edit replaces content while the post is still pending. The pending count
// is returned so the refreshed moderator card keeps the bulk-approval
// affordance accurate.
func (s *Service) Edit(ctx context.Context, postID int64, content, mediaFileID string) (model.Post, int, error) {
	content = strings.TrimSpace(content)
	if content == "" && mediaFileID == "" {
		return model.Post{}, 0, ErrEmptyContent
	}

	post, err := s.repo.UpdateContent(ctx, postID, content, mediaFileID)
	if err != nil {
		return model.Post{}, 0, mapRepoErr(err)
	}

	pending, err := s.repo.CountPending(ctx)
	if err != nil {
		return model.Post{}, 0, fmt.Errorf("count pending after edit: %w", err)
	}

	return post, pending, nil
}

// ApproveAll walks the pending queue oldest-first and applies the same
// publish logic per post. Unlike single approval, each post is published
// before its status flips, so a post whose publication failed stays
// pending and is retried on the next pass. Individual failures never
// abort the batch.
func (s *Service) ApproveAll(ctx context.Context, moderatorID int64) (BulkResult, error) {
	pending, err := s.repo.ListPending(ctx)
	if err != nil {
		return BulkResult{}, fmt.Errorf("list pending posts: %w", err)
	}

	var result BulkResult
	for _, post := range pending {
		messageID, publishErr := s.publish(ctx, post)
		if publishErr != nil {
			s.logger.Error("bulk publish failed",
				zap.Int64("post_id", post.PostID),
				zap.Error(publishErr))
			result.FailedCount++
			continue
		}

		approved, err := s.repo.MarkApproved(ctx, post.PostID, moderatorID)
		if err != nil {
			// Lost the race to another moderator after publishing.
			s.logger.Warn("bulk approve transition failed",
				zap.Int64("post_id", post.PostID),
				zap.Error(err))
			result.FailedCount++
			continue
		}

		if err := s.repo.SetChannelMessageID(ctx, post.PostID, messageID); err != nil {
			s.logger.Error("record channel message id failed",
				zap.Int64("post_id", post.PostID),
				zap.Error(err))
		}
		approved.ChannelMessageID = &messageID
		result.Approved = append(result.Approved, approved)
	}

	return result, nil
}

func (s *Service) CountPending(ctx context.Context) (int, error) {
	return s.repo.CountPending(ctx)
}

func (s *Service) publish(ctx context.Context, post model.Post) (int64, error) {
	if post.MediaFileID == "" {
		return s.publisher.SendChannelText(ctx, post.Content)
	}

	messageID, photoErr := s.publisher.SendChannelPhoto(ctx, post.MediaFileID, post.Content)
	if photoErr == nil {
		return messageID, nil
	}

	messageID, documentErr := s.publisher.SendChannelDocument(ctx, post.MediaFileID, post.Content)
	if documentErr == nil {
		return messageID, nil
	}

	messageID, textErr := s.publisher.SendChannelText(ctx, post.Content)
	if textErr == nil {
		s.logger.Warn("post published without media",
			zap.Int64("post_id", post.PostID),
			zap.NamedError("photo_err", photoErr),
			zap.NamedError("document_err", documentErr))
		return messageID, nil
	}

	return 0, fmt.Errorf("publish post %d: %w", post.PostID, textErr)
}

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, pgrepo.ErrPostNotFound):
		return ErrNotFound
	case errors.Is(err, pgrepo.ErrPostNotPending):
		return ErrAlreadyHandled
	default:
		return err
	}
}
