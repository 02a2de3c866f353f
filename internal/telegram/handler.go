package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/binamralamsal/quiz-score-maintainer/internal/services"

	"github.com/rs/zerolog"
)

// quizBotID is the Telegram id of the quiz bot whose result announcements we
// ingest. /addscore only accepts replies originating from it.
const quizBotID int64 = 983000232

type UpdateHandler struct {
	client *Client
	scores *services.ScoreService
	boards *services.LeaderboardService
	log    zerolog.Logger
}

func NewUpdateHandler(client *Client, scores *services.ScoreService, boards *services.LeaderboardService, log zerolog.Logger) *UpdateHandler {
	return &UpdateHandler{client: client, scores: scores, boards: boards, log: log}
}

func (h *UpdateHandler) Handle(ctx context.Context, upd Update) {
	if upd.Message == nil || upd.Message.From == nil {
		return
	}
	msg := upd.Message

	switch {
	case isCommand(msg, "start"):
		h.reply(ctx, msg.Chat.ID, "Hey", "")
	case isCommand(msg, "addscore"):
		h.cmdAddScore(ctx, msg)
	case isCommand(msg, "quizboard"):
		h.cmdQuizBoard(ctx, msg)
	case isCommand(msg, "quizzes"):
		h.cmdQuizzes(ctx, msg)
	case isCommand(msg, "quiztags"):
		h.cmdQuizTags(ctx, msg)
	case isCommand(msg, "removescore"):
		h.cmdRemoveScore(ctx, msg)
	}
}

func (h *UpdateHandler) cmdAddScore(ctx context.Context, msg *Message) {
	chatID := msg.Chat.ID

	if !h.requireAdmin(ctx, msg) {
		return
	}

	reply := msg.ReplyToMessage
	if reply == nil {
		h.reply(ctx, chatID, "Please reply to a message including quiz scores of quizbot.", "")
		return
	}
	if !fromQuizBot(reply) {
		h.reply(ctx, chatID, "Please reply to a message from quizbot.", "")
		return
	}
	if reply.Text == "" {
		return
	}

	prog := &progressMessage{client: h.client, chatID: chatID, log: h.log}

	result, err := h.scores.Ingest(ctx, chatKey(chatID), reply.Text, commandTag(msg), func(stage string) {
		prog.update(ctx, stage)
	})

	final := func(text string) {
		if prog.messageID != 0 {
			if err := h.client.EditMessageText(ctx, chatID, prog.messageID, text, ""); err == nil {
				return
			}
		}
		h.reply(ctx, chatID, text, "")
	}

	switch {
	case err != nil:
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("ingest failed")
		final("Something went wrong while adding scores. Please try again later.")
	case result.Status == services.IngestEmpty:
		// Not a quiz result; stay silent.
	case result.Status == services.IngestUnresolved:
		final("Could not look up any of the participants. Please try again later.")
	case result.Status == services.IngestDuplicate:
		final("This quiz has already been added.")
	default:
		final("All scores from given quiz added successfully")
	}
}

// progressMessage is the status message edited in place while /addscore runs.
// When the initial send fails the later stages are skipped, so the chat never
// gets more than one progress message.
type progressMessage struct {
	client *Client
	chatID int64
	log    zerolog.Logger

	messageID int64
	lost      bool
}

func (p *progressMessage) update(ctx context.Context, stage string) {
	if p.lost {
		return
	}

	text := "Scanning all participants..."
	if stage == services.StageInserting {
		text = "Inserting scores of all users in database..."
	}

	if p.messageID == 0 {
		id, err := p.client.SendMessage(ctx, p.chatID, text, "")
		if err != nil {
			p.lost = true
			p.log.Warn().Err(err).Int64("chat_id", p.chatID).Msg("send progress message")
			return
		}
		p.messageID = id
		return
	}

	if err := p.client.EditMessageText(ctx, p.chatID, p.messageID, text, ""); err != nil {
		p.log.Warn().Err(err).Msg("edit progress message")
	}
}

func (h *UpdateHandler) cmdQuizBoard(ctx context.Context, msg *Message) {
	chatID := msg.Chat.ID
	tag := commandTag(msg)

	entries, err := h.boards.Leaderboard(ctx, chatKey(chatID), tag, 0)
	if errors.Is(err, services.ErrTagNotFound) {
		h.reply(ctx, chatID, "No quizzes of given tag exists.", "")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("leaderboard query failed")
		h.reply(ctx, chatID, "Something went wrong. Please try again later.", "")
		return
	}

	h.reply(ctx, chatID, FormatLeaderboard(entries, tag), "HTML")
}

func (h *UpdateHandler) cmdQuizzes(ctx context.Context, msg *Message) {
	chatID := msg.Chat.ID

	titles, err := h.boards.Quizzes(ctx, chatKey(chatID), commandTag(msg))
	if err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("quiz list query failed")
		h.reply(ctx, chatID, "Something went wrong. Please try again later.", "")
		return
	}

	h.reply(ctx, chatID, FormatQuizList(titles), "HTML")
}

func (h *UpdateHandler) cmdQuizTags(ctx context.Context, msg *Message) {
	chatID := msg.Chat.ID

	tags, err := h.boards.Tags(ctx, chatKey(chatID))
	if err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("tag list query failed")
		h.reply(ctx, chatID, "Something went wrong. Please try again later.", "")
		return
	}
	if len(tags) == 0 {
		h.reply(ctx, chatID, "No quizzes with quiztag found in this group.", "")
		return
	}

	h.reply(ctx, chatID, FormatTagList(tags), "HTML")
}

func (h *UpdateHandler) cmdRemoveScore(ctx context.Context, msg *Message) {
	chatID := msg.Chat.ID

	if !h.requireAdmin(ctx, msg) {
		return
	}

	reply := msg.ReplyToMessage
	if reply == nil {
		h.reply(ctx, chatID, "Please reply to a message including quiz scores of quizbot.", "")
		return
	}
	if !fromQuizBot(reply) {
		h.reply(ctx, chatID, "Please reply to a message from quizbot.", "")
		return
	}
	if reply.Text == "" {
		return
	}

	removed, err := h.scores.Remove(ctx, chatKey(chatID), reply.Text)
	if err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("remove failed")
		h.reply(ctx, chatID, "Something went wrong while removing scores. Please try again later.", "")
		return
	}
	if !removed {
		h.reply(ctx, chatID, "No scores found for the mentioned quiz.", "")
		return
	}

	h.reply(ctx, chatID, "Scores of mentioned quiz removed successfully!", "")
}

// requireAdmin enforces the group admin check for mutating commands. Private
// chats skip it; the check is delegated entirely to Telegram.
func (h *UpdateHandler) requireAdmin(ctx context.Context, msg *Message) bool {
	if msg.Chat.Type != "group" && msg.Chat.Type != "supergroup" {
		return true
	}

	member, err := h.client.GetChatMember(ctx, msg.Chat.ID, msg.From.ID)
	if err != nil {
		h.log.Warn().Err(err).Int64("chat_id", msg.Chat.ID).Msg("getChatMember failed")
		h.reply(ctx, msg.Chat.ID, "Could not verify your permissions. Please try again.", "")
		return false
	}
	if member.Status != "administrator" && member.Status != "creator" {
		h.reply(ctx, msg.Chat.ID, "Only admins of the group can use this command.", "")
		return false
	}
	return true
}

func (h *UpdateHandler) reply(ctx context.Context, chatID int64, text, parseMode string) {
	if _, err := h.client.SendMessage(ctx, chatID, text, parseMode); err != nil {
		h.log.Warn().Err(err).Int64("chat_id", chatID).Msg("send message")
	}
}

// fromQuizBot reports whether a message was produced by the quiz bot, either
// directly or forwarded from it. The forwarded sender is a pointer, absent
// when Telegram hides or omits the origin user.
func fromQuizBot(msg *Message) bool {
	if msg.From != nil && msg.From.ID == quizBotID {
		return true
	}
	origin := msg.ForwardOrigin
	return origin != nil && origin.Type == "user" && origin.SenderUser != nil && origin.SenderUser.ID == quizBotID
}

func isCommand(msg *Message, cmd string) bool {
	for _, e := range msg.Entities {
		if e.Type != "bot_command" || e.Offset != 0 {
			continue
		}
		// Entity bounds come straight off the wire, never trust them.
		if e.Length <= 0 || e.Length > len(msg.Text) {
			return false
		}
		cmdText := strings.Split(msg.Text[:e.Length], "@")[0]
		return cmdText == "/"+cmd
	}
	return false
}

// commandTag extracts the free-text tag argument after the command, lowercased.
// Nil means untagged.
func commandTag(msg *Message) *string {
	parts := strings.SplitN(msg.Text, " ", 2)
	if len(parts) < 2 {
		return nil
	}
	arg := strings.ToLower(strings.TrimSpace(parts[1]))
	if arg == "" {
		return nil
	}
	return &arg
}

func chatKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
