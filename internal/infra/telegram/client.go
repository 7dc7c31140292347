package telegram

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type UpdateHandler func(context.Context, tgbotapi.Update)

// apiDoer routes getUpdates through an untimed client because a long poll
// legitimately holds the connection for the whole poll interval. Every
// other API call gets the configured send timeout.
type apiDoer struct {
	send *http.Client
	poll *http.Client
}

func (d *apiDoer) pick(req *http.Request) *http.Client {
	if strings.HasSuffix(req.URL.Path, "/getUpdates") {
		return d.poll
	}
	return d.send
}

func (d *apiDoer) Do(req *http.Request) (*http.Response, error) {
	return d.pick(req).Do(req)
}

// Client owns the long-polling loop and raw sends.
type Client struct {
	api         *tgbotapi.BotAPI
	logger      *zap.Logger
	handler     UpdateHandler
	pollTimeout int
}

func NewClient(token string, pollTimeout int, sendTimeout time.Duration, logger *zap.Logger, handler UpdateHandler) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("telegram bot token is required")
	}
	if handler == nil {
		return nil, errors.New("telegram update handler is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &apiDoer{
		send: &http.Client{Timeout: sendTimeout},
		poll: &http.Client{},
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		api:         api,
		logger:      logger,
		handler:     handler,
		pollTimeout: pollTimeout,
	}, nil
}

func (c *Client) Start(ctx context.Context) error {
	timeout := c.pollTimeout
	if timeout <= 0 {
		timeout = 30
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = timeout
	updates := c.api.GetUpdatesChan(updateConfig)

	c.logger.Info("telegram long poll started", zap.Int("timeout_seconds", timeout))

	for {
		select {
		case <-ctx.Done():
			c.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			c.handler(ctx, update)
		}
	}
}

func (c *Client) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	return c.api.Send(msg)
}

// Request is for API calls that do not produce a message (callback
// answers, pre-checkout answers, join-request decisions).
func (c *Client) Request(cfg tgbotapi.Chattable) error {
	_, err := c.api.Request(cfg)
	return err
}

func (c *Client) SetCommands(commands []tgbotapi.BotCommand) error {
	_, err := c.api.Request(tgbotapi.NewSetMyCommands(commands...))
	return err
}
