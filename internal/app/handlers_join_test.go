package app

import (
	"context"
	"sort"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/neverluckskr/TSObukhivBot/internal/domain/enums"
	"github.com/neverluckskr/TSObukhivBot/internal/domain/model"
	joinsvc "github.com/neverluckskr/TSObukhivBot/internal/services/joinrequests"
	notifysvc "github.com/neverluckskr/TSObukhivBot/internal/services/notify"
	rolesvc "github.com/neverluckskr/TSObukhivBot/internal/services/roles"
	"github.com/neverluckskr/TSObukhivBot/internal/ui"
)

type recordingClient struct {
	chats []int64
	texts []string
}

func (c *recordingClient) Start(context.Context) error { return nil }

func (c *recordingClient) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m, ok := msg.(tgbotapi.MessageConfig); ok {
		c.chats = append(c.chats, m.ChatID)
		c.texts = append(c.texts, m.Text)
	}
	return tgbotapi.Message{}, nil
}

func (c *recordingClient) Request(tgbotapi.Chattable) error { return nil }

func (c *recordingClient) SetCommands([]tgbotapi.BotCommand) error { return nil }

type joinRepoStub struct {
	next int64
}

func (r *joinRepoStub) Create(_ context.Context, userID, chatID int64, username, fullName string) (model.JoinRequest, error) {
	r.next++
	return model.JoinRequest{
		ID:       r.next,
		UserID:   userID,
		ChatID:   chatID,
		Username: username,
		FullName: fullName,
		Status:   enums.JoinRequestPending,
	}, nil
}

func (r *joinRepoStub) GetByID(context.Context, int64) (model.JoinRequest, error) {
	return model.JoinRequest{}, nil
}

func (r *joinRepoStub) MarkHandled(context.Context, int64, int64, enums.JoinRequestStatus) (model.JoinRequest, error) {
	return model.JoinRequest{}, nil
}

func newJoinRequest(userID int64) *tgbotapi.ChatJoinRequest {
	return &tgbotapi.ChatJoinRequest{
		Chat: tgbotapi.Chat{ID: -1001},
		From: tgbotapi.User{ID: userID, UserName: "newcomer", FirstName: "Новый"},
	}
}

func TestJoinRequestDigestReachesAllModerators(t *testing.T) {
	client := &recordingClient{}
	a := &App{
		logger:   zap.NewNop(),
		client:   client,
		roles:    rolesvc.NewService([]int64{10, 20}, []int64{1}, nil, nil),
		notifier: notifysvc.NewService([]int64{1}, nil),
		joins:    joinsvc.NewService(&joinRepoStub{}, nil, nil),
	}

	a.handleChatJoinRequest(context.Background(), newJoinRequest(555))

	got := append([]int64(nil), client.chats...)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	want := []int64{1, 10, 20}
	if len(got) != len(want) {
		t.Fatalf("digest went to %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("digest went to %v, want %v", got, want)
		}
	}
}

func TestJoinRequestDigestFallsBackToOwnersWithWarning(t *testing.T) {
	client := &recordingClient{}
	a := &App{
		logger:   zap.NewNop(),
		client:   client,
		roles:    rolesvc.NewService(nil, nil, nil, nil),
		notifier: notifysvc.NewService([]int64{99}, nil),
		joins:    joinsvc.NewService(&joinRepoStub{}, nil, nil),
	}

	a.handleChatJoinRequest(context.Background(), newJoinRequest(556))

	if len(client.chats) != 1 || client.chats[0] != 99 {
		t.Fatalf("expected the fallback digest to reach owner 99, got %v", client.chats)
	}
	if !strings.HasPrefix(client.texts[0], ui.MsgNoModeratorsWarning) {
		t.Fatalf("fallback digest must carry the unassigned warning, got %q", client.texts[0])
	}
}
