package bot

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	apperrors "github.com/erkineren/homework-monitor/internal/errors"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot delivers messages to a single Telegram chat.
type Bot struct {
	api     sender
	chatID  int64
	channel string
	log     zerolog.Logger
}

// Options configures New.
type Options struct {
	Token  string
	ChatID string
	// APIEndpoint overrides tgbotapi.APIEndpoint, e.g. for tests.
	APIEndpoint string
	HTTPClient  tgbotapi.HTTPClient
}

// New connects to the Bot API and checks the token. The chat is either a
// numeric chat id or an @channel username.
func New(opts Options, log zerolog.Logger) (*Bot, error) {
	endpoint := opts.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	api, err := tgbotapi.NewBotAPIWithClient(opts.Token, endpoint, client)
	if err != nil {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("failed to create bot: %v", err))
	}

	b, err := newBot(api, opts.ChatID, log)
	if err != nil {
		return nil, err
	}
	b.log.Info().Str("username", api.Self.UserName).Msg("authorized on Telegram")
	return b, nil
}

func newBot(api sender, chatID string, log zerolog.Logger) (*Bot, error) {
	b := &Bot{
		api: api,
		log: log.With().Str("component", "bot").Logger(),
	}

	chatID = strings.TrimSpace(chatID)
	if id, err := strconv.ParseInt(chatID, 10, 64); err == nil {
		b.chatID = id
	} else if strings.HasPrefix(chatID, "@") && len(chatID) > 1 {
		b.channel = chatID
	} else {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("invalid TELEGRAM_CHAT_ID %q", chatID))
	}
	return b, nil
}

// SendMessage delivers text to the configured chat.
func (b *Bot) SendMessage(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewDeliveryError(err)
	}

	b.log.Debug().Str("text", text).Msg("sending message")

	var msg tgbotapi.MessageConfig
	if b.channel != "" {
		msg = tgbotapi.NewMessageToChannel(b.channel, escapeMarkdown(text))
	} else {
		msg = tgbotapi.NewMessage(b.chatID, escapeMarkdown(text))
	}
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true

	if _, err := b.api.Send(msg); err != nil {
		b.log.Error().Err(err).Msg("failed to send message to Telegram")
		return apperrors.NewDeliveryError(err)
	}

	b.log.Info().Str("text", text).Msg("bot sent message")
	return nil
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"]", "\\]",
		"(", "\\(",
		")", "\\)",
		"~", "\\~",
		"`", "\\`",
		">", "\\>",
		"#", "\\#",
		"+", "\\+",
		"-", "\\-",
		"=", "\\=",
		"|", "\\|",
		"{", "\\{",
		"}", "\\}",
		".", "\\.",
		"!", "\\!",
	)
	return replacer.Replace(text)
}
