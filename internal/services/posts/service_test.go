package posts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/neverluckskr/TSObukhivBot/internal/domain/enums"
	"github.com/neverluckskr/TSObukhivBot/internal/domain/model"
	pgrepo "github.com/neverluckskr/TSObukhivBot/internal/repo/postgres"
)

// repoStub mimics the store's compare-and-set discipline: terminal
// transitions only succeed while the observed status is pending, under a
// mutex so concurrent decisions race the same way they do in postgres.
type repoStub struct {
	mu     sync.Mutex
	nextID int64
	posts  map[int64]model.Post
}

func newRepoStub() *repoStub {
	return &repoStub{posts: make(map[int64]model.Post)}
}

func (s *repoStub) Create(_ context.Context, userID int64, postType enums.PostType, content, mediaFileID string) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	post := model.Post{
		PostID:      s.nextID,
		UserID:      userID,
		Type:        postType,
		Content:     content,
		MediaFileID: mediaFileID,
		Status:      enums.PostStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	s.posts[post.PostID] = post
	return post, nil
}

func (s *repoStub) GetByID(_ context.Context, postID int64) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return model.Post{}, pgrepo.ErrPostNotFound
	}
	return post, nil
}

func (s *repoStub) MarkApproved(_ context.Context, postID, moderatorID int64) (model.Post, error) {
	return s.transition(postID, func(post *model.Post) {
		post.Status = enums.PostStatusApproved
		post.ReviewerID = &moderatorID
		now := time.Now().UTC()
		post.ReviewedAt = &now
	})
}

func (s *repoStub) MarkRejected(_ context.Context, postID, moderatorID int64, reason string) (model.Post, error) {
	return s.transition(postID, func(post *model.Post) {
		post.Status = enums.PostStatusRejected
		post.RejectionReason = &reason
		post.ReviewerID = &moderatorID
		now := time.Now().UTC()
		post.ReviewedAt = &now
	})
}

func (s *repoStub) UpdateContent(_ context.Context, postID int64, content, mediaFileID string) (model.Post, error) {
	return s.transition(postID, func(post *model.Post) {
		post.Content = content
		if mediaFileID != "" {
			post.MediaFileID = mediaFileID
		}
	})
}

func (s *repoStub) transition(postID int64, mutate func(*model.Post)) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return model.Post{}, pgrepo.ErrPostNotFound
	}
	if post.Status != enums.PostStatusPending {
		return model.Post{}, pgrepo.ErrPostNotPending
	}

	mutate(&post)
	s.posts[postID] = post
	return post, nil
}

func (s *repoStub) SetChannelMessageID(_ context.Context, postID, messageID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return pgrepo.ErrPostNotFound
	}
	post.ChannelMessageID = &messageID
	s.posts[postID] = post
	return nil
}

func (s *repoStub) ListPending(context.Context) ([]model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []model.Post
	for id := int64(1); id <= s.nextID; id++ {
		post, ok := s.posts[id]
		if ok && post.Status == enums.PostStatusPending {
			pending = append(pending, post)
		}
	}
	return pending, nil
}

func (s *repoStub) CountPending(ctx context.Context) (int, error) {
	pending, _ := s.ListPending(ctx)
	return len(pending), nil
}

type publisherStub struct {
	mu         sync.Mutex
	nextMsgID  int64
	photoErr   error
	docErr     error
	textErr    error
	photoCalls int
	docCalls   int
	textCalls  int

	// failPostContent makes every send for that content fail, for bulk
	// partial-failure scenarios.
	failContent string
}

func (p *publisherStub) send(calls *int, err error, content string) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	*calls++
	if p.failContent != "" && content == p.failContent {
		return 0, errors.New("channel rejected content")
	}
	if err != nil {
		return 0, err
	}
	p.nextMsgID++
	return p.nextMsgID, nil
}

func (p *publisherStub) SendChannelText(_ context.Context, text string) (int64, error) {
	return p.send(&p.textCalls, p.textErr, text)
}

func (p *publisherStub) SendChannelPhoto(_ context.Context, _, caption string) (int64, error) {
	return p.send(&p.photoCalls, p.photoErr, caption)
}

func (p *publisherStub) SendChannelDocument(_ context.Context, _, caption string) (int64, error) {
	return p.send(&p.docCalls, p.docErr, caption)
}

func newTestService() (*Service, *repoStub, *publisherStub) {
	repo := newRepoStub()
	publisher := &publisherStub{}
	return NewService(repo, publisher, nil), repo, publisher
}

func TestSubmitValidation(t *testing.T) {
	svc, repo, _ := newTestService()

	_, _, err := svc.Submit(context.Background(), 1, enums.PostTypeFree, "   ", "")
	require.ErrorIs(t, err, ErrEmptyContent)
	require.Empty(t, repo.posts, "no post record may be created on validation failure")
}

func TestSubmitMediaOnlyAllowed(t *testing.T) {
	svc, _, _ := newTestService()

	post, pending, err := svc.Submit(context.Background(), 1, enums.PostTypeFree, "", "file-1")
	require.NoError(t, err)
	require.Equal(t, enums.PostStatusPending, post.Status)
	require.Equal(t, 1, pending)
}

func TestApproveHappyPath(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	post, _, err := svc.Submit(ctx, 7, enums.PostTypeFree, "Hello", "")
	require.NoError(t, err)

	result, err := svc.Approve(ctx, post.PostID, 42)
	require.NoError(t, err)
	require.True(t, result.Published)
	require.Equal(t, enums.PostStatusApproved, result.Post.Status)
	require.NotNil(t, result.Post.ChannelMessageID)

	stored := repo.posts[post.PostID]
	require.Equal(t, enums.PostStatusApproved, stored.Status)
	require.NotNil(t, stored.ChannelMessageID)
	require.Equal(t, int64(42), *stored.ReviewerID)
}

func TestApproveTwice(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	post, _, err := svc.Submit(ctx, 7, enums.PostTypeFree, "Hello", "")
	require.NoError(t, err)

	_, err = svc.Approve(ctx, post.PostID, 42)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, post.PostID, 43)
	require.ErrorIs(t, err, ErrAlreadyHandled)
}

func TestApproveMissing(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Approve(context.Background(), 404, 42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentDecisionsExactlyOneWins(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	post, _, err := svc.Submit(ctx, 7, enums.PostTypeFree, "Hello", "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, approveErr := svc.Approve(ctx, post.PostID, 42)
		results <- approveErr
	}()
	go func() {
		defer wg.Done()
		_, rejectErr := svc.Reject(ctx, post.PostID, 43, "spam")
		results <- rejectErr
	}()
	wg.Wait()
	close(results)

	var successes, alreadyHandled int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrAlreadyHandled):
			alreadyHandled++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, successes)
	require.Equal(t, 1, alreadyHandled)

	status := repo.posts[post.PostID].Status
	require.NotEqual(t, enums.PostStatusPending, status)
}

func TestApprovePublishFailureKeepsApproval(t *testing.T) {
	svc, repo, publisher := newTestService()
	publisher.textErr = errors.New("chat not found")
	ctx := context.Background()

	post, _, err := svc.Submit(ctx, 7, enums.PostTypeFree, "Hello", "")
	require.NoError(t, err)

	result, err := svc.Approve(ctx, post.PostID, 42)
	require.NoError(t, err)
	require.False(t, result.Published)
	require.Error(t, result.PublishErr)

	stored := repo.posts[post.PostID]
	require.Equal(t, enums.PostStatusApproved, stored.Status, "approval is committed before publish")
	require.Nil(t, stored.ChannelMessageID)
}

func TestPublishFallbackPhotoToDocument(t *testing.T) {
	svc, _, publisher := newTestService()
	publisher.photoErr = errors.New("wrong file type")
	ctx := context.Background()

	post, _, err := svc.Submit(ctx, 7, enums.PostTypeFree, "caption", "file-9")
	require.NoError(t, err)

	result, err := svc.Approve(ctx, post.PostID, 42)
	require.NoError(t, err)
	require.True(t, result.Published)
	require.Equal(t, 1, publisher.photoCalls)
	require.Equal(t, 1, publisher.docCalls)
	require.Equal(t, 0, publisher.textCalls)
}

func TestPublishFallbackToTextOnly(t *testing.T) {
	svc, _, publisher := newTestService()
	publisher.photoErr = errors.New("wrong file type")
	publisher.docErr = errors.New("file expired")
	ctx := context.Background()

	post, _, err := svc.Submit(ctx, 7, enums.PostTypeFree, "caption", "file-9")
	require.NoError(t, err)

	result, err := svc.Approve(ctx, post.PostID, 42)
	require.NoError(t, err)
	require.True(t, result.Published)
	require.Equal(t, 1, publisher.textCalls)
}

func TestRejectDefaultsReason(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	post, _, err := svc.Submit(ctx, 7, enums.PostTypeFree, "Hello", "")
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, post.PostID, 42, "  ")
	require.NoError(t, err)
	require.NotNil(t, rejected.RejectionReason)
	require.Equal(t, DefaultRejectionReason, *rejected.RejectionReason)
}

func TestEditKeepsPending(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	post, _, err := svc.Submit(ctx, 7, enums.PostTypeFree, "draft", "")
	require.NoError(t, err)

	edited, _, err := svc.Edit(ctx, post.PostID, "final", "")
	require.NoError(t, err)
	require.Equal(t, enums.PostStatusPending, edited.Status)
	require.Equal(t, "final", edited.Content)
}

func TestEditAfterApprovalFails(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	post, _, err := svc.Submit(ctx, 7, enums.PostTypeFree, "draft", "")
	require.NoError(t, err)

	_, err = svc.Approve(ctx, post.PostID, 42)
	require.NoError(t, err)

	_, _, err = svc.Edit(ctx, post.PostID, "too late", "")
	require.ErrorIs(t, err, ErrAlreadyHandled)
}

func TestApproveAllPartialFailure(t *testing.T) {
	svc, repo, publisher := newTestService()
	ctx := context.Background()

	var broken model.Post
	for i := 0; i < 5; i++ {
		content := fmt.Sprintf("post %d", i)
		post, _, err := svc.Submit(ctx, int64(i+1), enums.PostTypeFree, content, "")
		require.NoError(t, err)
		if i == 2 {
			broken = post
		}
	}
	publisher.failContent = broken.Content

	result, err := svc.ApproveAll(ctx, 42)
	require.NoError(t, err, "partial failure never raises")
	require.Len(t, result.Approved, 4)
	require.Equal(t, 1, result.FailedCount)

	require.Equal(t, enums.PostStatusPending, repo.posts[broken.PostID].Status,
		"the failed post must stay pending")
	for _, approved := range result.Approved {
		require.Equal(t, enums.PostStatusApproved, repo.posts[approved.PostID].Status)
		require.NotNil(t, repo.posts[approved.PostID].ChannelMessageID)
	}
}

func TestApproveAllOldestFirst(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, err := svc.Submit(ctx, 1, enums.PostTypeFree, fmt.Sprintf("post %d", i), "")
		require.NoError(t, err)
	}

	result, err := svc.ApproveAll(ctx, 42)
	require.NoError(t, err)
	require.Len(t, result.Approved, 3)
	for i := 1; i < len(result.Approved); i++ {
		require.Less(t, result.Approved[i-1].PostID, result.Approved[i].PostID)
	}
}
