package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"testing"

	"github.com/binamralamsal/quiz-score-maintainer/internal/services"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBotAPI records the Bot API methods a test exercises and can be told to
// reject sendMessage.
type fakeBotAPI struct {
	methods   []string
	texts     []string
	failSend  bool
	nextMsgID int64
}

func newFakeBotAPI(t *testing.T) (*Client, *fakeBotAPI) {
	t.Helper()

	api := &fakeBotAPI{nextMsgID: 100}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := path.Base(r.URL.Path)
		api.methods = append(api.methods, method)

		var payload map[string]interface{}
		json.NewDecoder(r.Body).Decode(&payload)
		if text, ok := payload["text"].(string); ok {
			api.texts = append(api.texts, text)
		}

		if method == "sendMessage" && api.failSend {
			json.NewEncoder(w).Encode(map[string]interface{}{"ok": false, "description": "chat not found"})
			return
		}
		api.nextMsgID++
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":     true,
			"result": map[string]interface{}{"message_id": api.nextMsgID},
		})
	}))
	t.Cleanup(srv.Close)

	client := &Client{token: "test", httpClient: srv.Client(), baseURL: srv.URL}
	return client, api
}

func commandMessage(text string) *Message {
	end := len(text)
	if i := strings.IndexByte(text, ' '); i >= 0 {
		end = i
	}
	return &Message{
		Text:     text,
		Entities: []MessageEntity{{Type: "bot_command", Offset: 0, Length: end}},
	}
}

func TestIsCommand(t *testing.T) {
	assert.True(t, isCommand(commandMessage("/addscore"), "addscore"))
	assert.True(t, isCommand(commandMessage("/addscore week1"), "addscore"))
	assert.False(t, isCommand(commandMessage("/addscore"), "removescore"))
	assert.False(t, isCommand(&Message{Text: "/addscore"}, "addscore"))
}

func TestIsCommand_WithBotMention(t *testing.T) {
	msg := &Message{
		Text:     "/quizboard@scorebot",
		Entities: []MessageEntity{{Type: "bot_command", Offset: 0, Length: len("/quizboard@scorebot")}},
	}
	assert.True(t, isCommand(msg, "quizboard"))
}

func TestIsCommand_EntityLengthBeyondText(t *testing.T) {
	msg := &Message{
		Text:     "/add",
		Entities: []MessageEntity{{Type: "bot_command", Offset: 0, Length: 40}},
	}
	assert.False(t, isCommand(msg, "addscore"))

	zero := &Message{
		Text:     "/addscore",
		Entities: []MessageEntity{{Type: "bot_command", Offset: 0, Length: 0}},
	}
	assert.False(t, isCommand(zero, "addscore"))
}

func TestProgressMessage_SendsThenEdits(t *testing.T) {
	client, api := newFakeBotAPI(t)
	prog := &progressMessage{client: client, chatID: 5, log: zerolog.Nop()}

	prog.update(context.Background(), services.StageScanning)
	prog.update(context.Background(), services.StageInserting)

	assert.Equal(t, []string{"sendMessage", "editMessageText"}, api.methods)
	assert.NotZero(t, prog.messageID)
}

func TestProgressMessage_SkipsStagesAfterFailedSend(t *testing.T) {
	client, api := newFakeBotAPI(t)
	api.failSend = true
	prog := &progressMessage{client: client, chatID: 5, log: zerolog.Nop()}

	prog.update(context.Background(), services.StageScanning)
	prog.update(context.Background(), services.StageInserting)

	// One failed send, then silence; a second message would duplicate the
	// progress line in the chat.
	assert.Equal(t, []string{"sendMessage"}, api.methods)
	assert.Zero(t, prog.messageID)
}

func TestRemoveScore_RequiresQuizBotReply(t *testing.T) {
	client, api := newFakeBotAPI(t)
	// A nil score service guarantees the handler bails out before removal.
	h := NewUpdateHandler(client, nil, nil, zerolog.Nop())

	msg := commandMessage("/removescore")
	msg.Chat = Chat{ID: 5, Type: "private"}
	msg.From = &User{ID: 1}
	msg.ReplyToMessage = &Message{Text: "some quiz text", From: &User{ID: 777}}

	h.cmdRemoveScore(context.Background(), msg)

	require.Equal(t, []string{"sendMessage"}, api.methods)
	assert.Equal(t, []string{"Please reply to a message from quizbot."}, api.texts)
}

func TestCommandTag(t *testing.T) {
	assert.Nil(t, commandTag(commandMessage("/quizboard")))
	assert.Nil(t, commandTag(&Message{Text: "/quizboard   "}))

	tag := commandTag(commandMessage("/quizboard Week1"))
	require.NotNil(t, tag)
	assert.Equal(t, "week1", *tag)
}

func TestFromQuizBot(t *testing.T) {
	direct := &Message{From: &User{ID: quizBotID}}
	assert.True(t, fromQuizBot(direct))

	forwarded := &Message{
		From:          &User{ID: 777},
		ForwardOrigin: &MessageOrigin{Type: "user", SenderUser: &User{ID: quizBotID}},
	}
	assert.True(t, fromQuizBot(forwarded))

	stranger := &Message{From: &User{ID: 777}}
	assert.False(t, fromQuizBot(stranger))

	hiddenOrigin := &Message{
		From:          &User{ID: 777},
		ForwardOrigin: &MessageOrigin{Type: "hidden_user"},
	}
	assert.False(t, fromQuizBot(hiddenOrigin))
}

func TestChatKey(t *testing.T) {
	assert.Equal(t, "-1001234", chatKey(-1001234))
}
