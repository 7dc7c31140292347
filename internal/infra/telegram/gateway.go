package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Gateway is the external channel surface: publishing approved posts to
// the broadcast channel and deciding join requests on it.
type Gateway struct {
	client *Client
	chatID int64
}

func NewGateway(client *Client, channelChatID int64) *Gateway {
	return &Gateway{client: client, chatID: channelChatID}
}

func (g *Gateway) SendChannelText(_ context.Context, text string) (int64, error) {
	msg, err := g.client.Send(tgbotapi.NewMessage(g.chatID, text))
	if err != nil {
		return 0, fmt.Errorf("send channel text: %w", err)
	}
	return int64(msg.MessageID), nil
}

func (g *Gateway) SendChannelPhoto(_ context.Context, fileID, caption string) (int64, error) {
	photo := tgbotapi.NewPhoto(g.chatID, tgbotapi.FileID(fileID))
	photo.Caption = caption
	msg, err := g.client.Send(photo)
	if err != nil {
		return 0, fmt.Errorf("send channel photo: %w", err)
	}
	return int64(msg.MessageID), nil
}

func (g *Gateway) SendChannelDocument(_ context.Context, fileID, caption string) (int64, error) {
	document := tgbotapi.NewDocument(g.chatID, tgbotapi.FileID(fileID))
	document.Caption = caption
	msg, err := g.client.Send(document)
	if err != nil {
		return 0, fmt.Errorf("send channel document: %w", err)
	}
	return int64(msg.MessageID), nil
}

func (g *Gateway) ApproveJoinRequest(_ context.Context, chatID, userID int64) error {
	if err := g.client.Request(tgbotapi.ApproveChatJoinRequestConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
		UserID:     userID,
	}); err != nil {
		return fmt.Errorf("approve chat join request: %w", err)
	}
	return nil
}

func (g *Gateway) DeclineJoinRequest(_ context.Context, chatID, userID int64) error {
	if err := g.client.Request(tgbotapi.DeclineChatJoinRequest{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
		UserID:     userID,
	}); err != nil {
		return fmt.Errorf("decline chat join request: %w", err)
	}
	return nil
}
