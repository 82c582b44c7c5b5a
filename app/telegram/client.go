package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/getsentry/sentry-go"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	e "nuclight.org/upload-tg-bot/pkg/entities"
	"nuclight.org/upload-tg-bot/pkg/logger"
)

type CommandHandler interface {
	Start(ctx context.Context, chatID int64) error
	Help(ctx context.Context, chatID int64) error
	HandleURL(ctx context.Context, req e.TransferRequest) error
}

type Client struct {
	Log        logger.Logger
	Bot        *Bot
	WorkersNum int
	Handler    CommandHandler

	// PollTimeout is the long polling timeout in seconds
	PollTimeout int

	wg sync.WaitGroup
}

func (c *Client) Start(ctx context.Context) error {
	if c.WorkersNum <= 0 {
		return fmt.Errorf("workers number must be greater than 0")
	}

	if c.Bot == nil {
		return fmt.Errorf("bot is not set")
	}

	timeout := c.PollTimeout
	if timeout == 0 {
		timeout = 60
	}

	c.Log.Info("receiving updates", "username", c.Bot.UserName(), "workers", c.WorkersNum)

	updatesChan := c.Bot.updates(timeout)

	go func() {
		<-ctx.Done()
		c.Bot.stopUpdates()
	}()

	c.run(ctx, updatesChan)

	return nil
}

func (c *Client) Wait() {
	c.wg.Wait()
}

func (c *Client) run(ctx context.Context, updatesChan <-chan tgbotapi.Update) {
	for i := 0; i < c.WorkersNum; i++ {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.handleUpdatesFromChan(ctx, updatesChan)
		}()
	}
}

func (c *Client) handleUpdatesFromChan(ctx context.Context, updatesChan <-chan tgbotapi.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updatesChan:
			if !ok {
				return
			}

			err := c.handleUpdate(ctx, update)
			if err != nil {
				c.Log.Error("handling update", "tg_update_id", update.UpdateID, "error", err)
			}
		}
	}
}

func (c *Client) handleUpdate(ctx context.Context, update tgbotapi.Update) (err error) {
	log := c.Log.With("tg_update_id", update.UpdateID)

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic", "error", r)
			sentry.CurrentHub().Recover(r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	msg := update.Message
	if msg == nil {
		log.Debug("update without message")
		return nil
	}

	if msg.Chat == nil {
		log.Warn("message chat is nil")
		return nil
	}

	log = log.With("tg_chat_id", msg.Chat.ID, "tg_message_id", msg.MessageID)

	if msg.IsCommand() {
		command := strings.ToLower(msg.Command())
		log.Info("command received", "command", command)

		switch command {
		case "start":
			return c.Handler.Start(ctx, msg.Chat.ID)
		case "help":
			return c.Handler.Help(ctx, msg.Chat.ID)
		default:
			log.Info("unknown command ignored", "command", command)
			return nil
		}
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		log.Debug("message without text ignored")
		return nil
	}

	var userID int64
	if msg.From != nil {
		userID = msg.From.ID
	}

	log.Info("url received", "tg_user_id", userID, "text", text)

	req := e.NewTransferRequest(text, msg.Chat.ID, userID, msg.MessageID)

	err = c.Handler.HandleURL(ctx, req)
	if err != nil {
		return fmt.Errorf("handling url: %w", err)
	}

	return nil
}
