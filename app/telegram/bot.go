package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot is a thin wrapper over the Bot API that exposes the three calls the
// rest of the application needs: send a text, edit it, send a document.
// All texts are sent in HTML parse mode.
//
// The Bot API library takes no context, so ctx is not observed by the calls
// below: an in-flight request, an upload included, is bounded only by the
// timeout of the HTTP client given with WithHTTPClient.
type Bot struct {
	api *tgbotapi.BotAPI
}

type BotOption func(*botOptions)

type botOptions struct {
	endpoint   string
	httpClient *http.Client
}

// WithEndpoint overrides the Bot API endpoint, the format is the one of
// tgbotapi.APIEndpoint.
func WithEndpoint(endpoint string) BotOption {
	return func(o *botOptions) {
		o.endpoint = endpoint
	}
}

func WithHTTPClient(client *http.Client) BotOption {
	return func(o *botOptions) {
		o.httpClient = client
	}
}

func NewBot(token string, opts ...BotOption) (*Bot, error) {
	o := botOptions{
		endpoint:   tgbotapi.APIEndpoint,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	api, err := tgbotapi.NewBotAPIWithClient(token, o.endpoint, o.httpClient)
	if err != nil {
		return nil, fmt.Errorf("creating bot api: %w", err)
	}

	return &Bot{api: api}, nil
}

func (b *Bot) UserName() string {
	return b.api.Self.UserName
}

// SendText sends an HTML message and returns its ID.
func (b *Bot) SendText(ctx context.Context, chatID int64, text string) (int, error) {
	return b.ReplyText(ctx, chatID, 0, text)
}

// ReplyText sends an HTML message quoting replyTo and returns its ID. A zero
// replyTo sends a plain message. The message is still sent if replyTo has
// been deleted meanwhile.
func (b *Bot) ReplyText(_ context.Context, chatID int64, replyTo int, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	msg.ReplyToMessageID = replyTo
	msg.AllowSendingWithoutReply = replyTo != 0

	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("sending message: %w", err)
	}

	return sent.MessageID, nil
}

// EditText replaces the text of a message sent earlier by the bot.
func (b *Bot) EditText(_ context.Context, chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.DisableWebPagePreview = true

	_, err := b.api.Send(edit)
	if err != nil {
		return fmt.Errorf("editing message: %w", err)
	}

	return nil
}

// SendDocument uploads r as a document named name.
func (b *Bot) SendDocument(_ context.Context, chatID int64, name string, r io.Reader, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileReader{Name: name, Reader: r})
	doc.Caption = caption
	doc.ParseMode = tgbotapi.ModeHTML

	_, err := b.api.Send(doc)
	if err != nil {
		return fmt.Errorf("sending document: %w", err)
	}

	return nil
}

func (b *Bot) updates(timeout int) tgbotapi.UpdatesChannel {
	conf := tgbotapi.NewUpdate(0)
	conf.Timeout = timeout

	return b.api.GetUpdatesChan(conf)
}

func (b *Bot) stopUpdates() {
	b.api.StopReceivingUpdates()
}
