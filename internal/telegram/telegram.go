package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"localizador_bot/internal/logger"
	"localizador_bot/pkg"
)

// Client adapts the Telegram Bot API to the transport surfaces the
// conversation layer expects: an outbound Sender and a flattened
// inbound update stream.
type Client struct {
	api *tgbotapi.BotAPI
}

// New authenticates against the Bot API.
func New(token string) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Client{api: api}, nil
}

// Send delivers one reply, rendering the option keyboard when present.
func (c *Client) Send(ctx context.Context, chatID int64, reply pkg.Reply) error {
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	if reply.Markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	if reply.Keyboard != nil && len(reply.Keyboard.Rows) > 0 {
		rows := make([][]tgbotapi.KeyboardButton, 0, len(reply.Keyboard.Rows))
		for _, row := range reply.Keyboard.Rows {
			buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
			for _, label := range row {
				buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
			}
			rows = append(rows, buttons)
		}
		markup := tgbotapi.NewReplyKeyboard(rows...)
		markup.OneTimeKeyboard = reply.Keyboard.OneTime
		markup.ResizeKeyboard = reply.Keyboard.Resize
		msg.ReplyMarkup = markup
	}

	_, err := c.api.Send(msg)
	return err
}

// Updates long-polls the Bot API and flattens message updates into
// IncomingMessages. The channel closes when ctx is cancelled.
func (c *Client) Updates(ctx context.Context) <-chan pkg.IncomingMessage {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := c.api.GetUpdatesChan(cfg)

	out := make(chan pkg.IncomingMessage)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				c.api.StopReceivingUpdates()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.Message == nil {
					continue
				}

				msg := pkg.IncomingMessage{
					ChatID: update.Message.Chat.ID,
					Text:   update.Message.Text,
				}
				if update.Message.From != nil {
					msg.UserID = update.Message.From.ID
					msg.Username = update.Message.From.UserName
				}
				if update.Message.Contact != nil {
					msg.Contact = update.Message.Contact.PhoneNumber
				}

				select {
				case out <- msg:
				case <-ctx.Done():
					c.api.StopReceivingUpdates()
					return
				}
			}
		}
	}()

	logger.Info().Str("bot", c.api.Self.UserName).Msg("telegram long polling started")
	return out
}
