package bot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/erkineren/homework-monitor/internal/errors"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func TestNewBot_ChatID(t *testing.T) {
	tests := []struct {
		name        string
		chatID      string
		wantID      int64
		wantChannel string
		wantErr     bool
	}{
		{name: "user id", chatID: "123456", wantID: 123456},
		{name: "group id", chatID: "-1001234567890", wantID: -1001234567890},
		{name: "channel", chatID: "@homework_updates", wantChannel: "@homework_updates"},
		{name: "bare at sign", chatID: "@", wantErr: true},
		{name: "garbage", chatID: "chat", wantErr: true},
		{name: "empty", chatID: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := newBot(&MockSender{}, tt.chatID, zerolog.Nop())
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrConfiguration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, b.chatID)
			assert.Equal(t, tt.wantChannel, b.channel)
		})
	}
}

func TestBot_SendMessage(t *testing.T) {
	sender := &MockSender{}
	sender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
		msg, ok := c.(tgbotapi.MessageConfig)
		return ok &&
			msg.ChatID == 42 &&
			msg.Text == `Changed review status for "hw1"\. Ура\!` &&
			msg.ParseMode == tgbotapi.ModeMarkdownV2 &&
			msg.DisableWebPagePreview
	})).Return(tgbotapi.Message{MessageID: 1}, nil).Once()

	b, err := newBot(sender, "42", zerolog.Nop())
	require.NoError(t, err)

	err = b.SendMessage(context.Background(), `Changed review status for "hw1". Ура!`)
	require.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestBot_SendMessage_Channel(t *testing.T) {
	sender := &MockSender{}
	sender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
		msg, ok := c.(tgbotapi.MessageConfig)
		return ok && msg.ChannelUsername == "@updates" && msg.ChatID == 0
	})).Return(tgbotapi.Message{}, nil).Once()

	b, err := newBot(sender, "@updates", zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, b.SendMessage(context.Background(), "hello"))
	sender.AssertExpectations(t)
}

func TestBot_SendMessage_Failure(t *testing.T) {
	cause := errors.New("network is unreachable")
	sender := &MockSender{}
	sender.On("Send", mock.Anything).Return(tgbotapi.Message{}, cause).Once()

	b, err := newBot(sender, "42", zerolog.Nop())
	require.NoError(t, err)

	err = b.SendMessage(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrDelivery)
	assert.ErrorIs(t, err, cause)
}

func TestBot_SendMessage_CancelledContext(t *testing.T) {
	sender := &MockSender{}
	b, err := newBot(sender, "42", zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = b.SendMessage(ctx, "hello")
	assert.ErrorIs(t, err, apperrors.ErrDelivery)
	sender.AssertNotCalled(t, "Send", mock.Anything)
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `hw\_1 \(v2\)\. done\!`, escapeMarkdown("hw_1 (v2). done!"))
	assert.Equal(t, `a\\b`, escapeMarkdown(`a\b`))
	assert.Equal(t, "Работа взята на проверку ревьюером\\.", escapeMarkdown("Работа взята на проверку ревьюером."))
}

// fakeTelegram serves the subset of the Bot API the bot uses.
type fakeTelegram struct {
	mu       sync.Mutex
	sent     []map[string]string
	failSend bool
}

func (f *fakeTelegram) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")

		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			if !strings.Contains(r.URL.Path, "/botgood-token/") {
				w.Write([]byte(`{"ok":false,"error_code":401,"description":"Unauthorized"}`))
				return
			}
			w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Monitor","username":"homework_monitor_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			f.mu.Lock()
			defer f.mu.Unlock()
			if f.failSend {
				w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
				return
			}
			f.sent = append(f.sent, map[string]string{
				"chat_id":    r.PostForm.Get("chat_id"),
				"text":       r.PostForm.Get("text"),
				"parse_mode": r.PostForm.Get("parse_mode"),
			})
			w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"},"text":"ok"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestNew_AgainstBotAPI(t *testing.T) {
	fake := &fakeTelegram{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	b, err := New(Options{
		Token:       "good-token",
		ChatID:      "42",
		APIEndpoint: server.URL + "/bot%s/%s",
		HTTPClient:  server.Client(),
	}, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, b.SendMessage(context.Background(), "Program failure: boom."))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Len(t, fake.sent, 1)
	assert.Equal(t, "42", fake.sent[0]["chat_id"])
	assert.Equal(t, `Program failure: boom\.`, fake.sent[0]["text"])
	assert.Equal(t, tgbotapi.ModeMarkdownV2, fake.sent[0]["parse_mode"])
}

func TestNew_BadToken(t *testing.T) {
	fake := &fakeTelegram{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	_, err := New(Options{
		Token:       "bad-token",
		ChatID:      "42",
		APIEndpoint: server.URL + "/bot%s/%s",
		HTTPClient:  server.Client(),
	}, zerolog.Nop())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}

func TestSendMessage_APIError(t *testing.T) {
	fake := &fakeTelegram{failSend: true}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	b, err := New(Options{
		Token:       "good-token",
		ChatID:      "42",
		APIEndpoint: server.URL + "/bot%s/%s",
		HTTPClient:  server.Client(),
	}, zerolog.Nop())
	require.NoError(t, err)

	err = b.SendMessage(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrDelivery)
	assert.Contains(t, err.Error(), "chat not found")
}
