package joinrequests

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/neverluckskr/TSObukhivBot/internal/domain/enums"
	"github.com/neverluckskr/TSObukhivBot/internal/domain/model"
	pgrepo "github.com/neverluckskr/TSObukhivBot/internal/repo/postgres"
)

var (
	ErrNotFound       = errors.New("join request not found")
	ErrAlreadyHandled = errors.New("join request already handled")
)

type Repo interface {
	Create(ctx context.Context, userID, chatID int64, username, fullName string) (model.JoinRequest, error)
	GetByID(ctx context.Context, requestID int64) (model.JoinRequest, error)
	MarkHandled(ctx context.Context, requestID, moderatorID int64, status enums.JoinRequestStatus) (model.JoinRequest, error)
}

type Gateway interface {
	ApproveJoinRequest(ctx context.Context, chatID, userID int64) error
	DeclineJoinRequest(ctx context.Context, chatID, userID int64) error
}

// Service drives the join-request state machine. Unlike post approval,
// the local status flips only after the channel gateway call succeeded:
// there is no fallback content path for a join decision, so an optimistic
// commit would strand the request.
type Service struct {
	repo    Repo
	gateway Gateway
	logger  *zap.Logger
}

func NewService(repo Repo, gateway Gateway, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, gateway: gateway, logger: logger}
}

func (s *Service) Register(ctx context.Context, userID, chatID int64, username, fullName string) (model.JoinRequest, error) {
	request, err := s.repo.Create(ctx, userID, chatID, username, fullName)
	if err != nil {
		return model.JoinRequest{}, fmt.Errorf("register join request: %w", err)
	}
	return request, nil
}

func (s *Service) Approve(ctx context.Context, requestID, moderatorID int64) (model.JoinRequest, error) {
	return s.decide(ctx, requestID, moderatorID, enums.JoinRequestApproved)
}

func (s *Service) Reject(ctx context.Context, requestID, moderatorID int64) (model.JoinRequest, error) {
	return s.decide(ctx, requestID, moderatorID, enums.JoinRequestRejected)
}

func (s *Service) decide(ctx context.Context, requestID, moderatorID int64, status enums.JoinRequestStatus) (model.JoinRequest, error) {
	request, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return model.JoinRequest{}, mapRepoErr(err)
	}
	if request.Status != enums.JoinRequestPending {
		return model.JoinRequest{}, ErrAlreadyHandled
	}

	switch status {
	case enums.JoinRequestApproved:
		err = s.gateway.ApproveJoinRequest(ctx, request.ChatID, request.UserID)
	case enums.JoinRequestRejected:
		err = s.gateway.DeclineJoinRequest(ctx, request.ChatID, request.UserID)
	default:
		return model.JoinRequest{}, fmt.Errorf("invalid decision %q", status)
	}
	if err != nil {
		// The request stays pending; the acting moderator sees the error.
		s.logger.Error("join request gateway call failed",
			zap.Int64("request_id", requestID),
			zap.String("decision", string(status)),
			zap.Error(err))
		return model.JoinRequest{}, fmt.Errorf("channel gateway: %w", err)
	}

	handled, err := s.repo.MarkHandled(ctx, requestID, moderatorID, status)
	if err != nil {
		return model.JoinRequest{}, mapRepoErr(err)
	}

	return handled, nil
}

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, pgrepo.ErrJoinRequestNotFound):
		return ErrNotFound
	case errors.Is(err, pgrepo.ErrJoinRequestNotPending):
		return ErrAlreadyHandled
	default:
		return err
	}
}
