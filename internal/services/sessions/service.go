package sessions

import (
	"context"
	"errors"

	"github.com/neverluckskr/TSObukhivBot/internal/domain/enums"
	redisrepo "github.com/neverluckskr/TSObukhivBot/internal/repo/redis"
)

type Repo interface {
	Set(ctx context.Context, userID int64, record redisrepo.IntentRecord) error
	Get(ctx context.Context, userID int64) (redisrepo.IntentRecord, error)
	Clear(ctx context.Context, userID int64) error
}

// Service advances the per-actor session: which message the bot expects
// next and which entity it relates to. Transitions are explicit; records
// expire on the repo's TTL so abandoned flows clean themselves up.
type Service struct {
	repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

func (s *Service) Current(ctx context.Context, userID int64) (redisrepo.IntentRecord, bool, error) {
	record, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, redisrepo.ErrIntentNotFound) {
			return redisrepo.IntentRecord{}, false, nil
		}
		return redisrepo.IntentRecord{}, false, err
	}
	return record, true, nil
}

// StartSubmission arms the next message as post content for the tier.
func (s *Service) StartSubmission(ctx context.Context, userID int64, postType enums.PostType) error {
	intent := enums.IntentAwaitFreePost
	if postType.IsPaid() {
		intent = enums.IntentAwaitPaidPost
	}
	return s.repo.Set(ctx, userID, redisrepo.IntentRecord{Intent: intent, PostType: postType})
}

// StartPayment parks the actor until the provider confirms the invoice.
func (s *Service) StartPayment(ctx context.Context, userID int64, postType enums.PostType) error {
	return s.repo.Set(ctx, userID, redisrepo.IntentRecord{Intent: enums.IntentAwaitPayment, PostType: postType})
}

// PaymentConfirmed flips the parked actor into the gated-submission state:
// the next message is the paid post's content.
func (s *Service) PaymentConfirmed(ctx context.Context, userID int64, postType enums.PostType) error {
	return s.repo.Set(ctx, userID, redisrepo.IntentRecord{Intent: enums.IntentAwaitPaidPost, PostType: postType})
}

// AwaitRejectionReason arms the moderator's next message as the reason.
func (s *Service) AwaitRejectionReason(ctx context.Context, moderatorID, postID int64) error {
	return s.repo.Set(ctx, moderatorID, redisrepo.IntentRecord{Intent: enums.IntentAwaitRejectNote, PostID: postID})
}

// AwaitEditedContent arms the moderator's next message as the replacement
// content for a pending post.
func (s *Service) AwaitEditedContent(ctx context.Context, moderatorID, postID int64) error {
	return s.repo.Set(ctx, moderatorID, redisrepo.IntentRecord{Intent: enums.IntentAwaitEditedPost, PostID: postID})
}

// AwaitModeratorID arms the owner's next message as a user id to promote.
func (s *Service) AwaitModeratorID(ctx context.Context, ownerID int64) error {
	return s.repo.Set(ctx, ownerID, redisrepo.IntentRecord{Intent: enums.IntentAwaitModeratorID})
}

// AwaitModeratorName arms the owner's next message as the new display name
// for the moderator identified by PostID (reused as a generic related id).
func (s *Service) AwaitModeratorName(ctx context.Context, ownerID, moderatorID int64) error {
	return s.repo.Set(ctx, ownerID, redisrepo.IntentRecord{Intent: enums.IntentAwaitModeratorName, PostID: moderatorID})
}

func (s *Service) Clear(ctx context.Context, userID int64) error {
	return s.repo.Clear(ctx, userID)
}
