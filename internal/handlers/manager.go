package handlers

import (
	"io"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/quizhost/quiz_bot/internal/config"
	"github.com/quizhost/quiz_bot/internal/middleware"
	"github.com/quizhost/quiz_bot/internal/quiz"
	"github.com/quizhost/quiz_bot/internal/repositories"
	"github.com/quizhost/quiz_bot/pkg/logger"
)

// BotInterface is the slice of the Telegram transport the handlers need.
// Keeping it an interface avoids a circular import with the telegram
// package and lets tests plug in a fake.
type BotInterface interface {
	SendMessage(chatID int64, text string) error
	SendHTMLMessage(chatID int64, text string) error
	SendMessageWithKeyboard(chatID int64, text string, keyboard interface{}) error
	AnswerCallback(callbackID, text string) error
	GetChatMemberStatus(chatID, userID int64) (string, error)
	ResolveDisplayName(userID int64) string
	DownloadFile(fileID string) (io.ReadCloser, error)
}

// HandlerManager routes incoming Telegram updates to the quiz engine and
// turns its answers back into messages.
type HandlerManager struct {
	bot     BotInterface
	cfg     *config.Config
	quizzes *quiz.Service
	groups  *repositories.GroupRepository
	limiter *middleware.RateLimiter

	// pendingGroups remembers which group a creator picked while they are
	// still choosing the quiz size.
	mu            sync.Mutex
	pendingGroups map[int64]int64
}

func NewHandlerManager(
	bot BotInterface,
	cfg *config.Config,
	quizzes *quiz.Service,
	groups *repositories.GroupRepository,
) *HandlerManager {
	return &HandlerManager{
		bot:           bot,
		cfg:           cfg,
		quizzes:       quizzes,
		groups:        groups,
		limiter:       middleware.NewRateLimiter(cfg.RateLimitPerUser, time.Minute),
		pendingGroups: make(map[int64]int64),
	}
}

// HandleMessage dispatches one text or document message.
func (m *HandlerManager) HandleMessage(msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	userID := msg.From.ID

	if !m.limiter.Allow(userID) {
		if msg.Chat.IsPrivate() {
			m.send(msg.Chat.ID, MsgTooManyRequests)
		}
		return
	}

	if msg.Chat.IsPrivate() {
		m.handlePrivateMessage(msg)
		return
	}
	m.handleGroupMessage(msg)
}

func (m *HandlerManager) handlePrivateMessage(msg *tgbotapi.Message) {
	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			m.HandleStart(msg)
		case "help":
			m.HandleHelp(msg)
		case "cancel":
			m.HandleCancel(msg.Chat.ID, msg.From.ID)
		case "rating":
			m.HandleRatingRequest(msg.Chat.ID, msg.From.ID)
		default:
			// Unknown commands fall through to the authoring flow, which
			// either accepts /done or explains itself.
			m.HandleAuthoringInput(msg)
		}
		return
	}

	if msg.Document != nil {
		m.HandleWorkbookUpload(msg)
		return
	}

	switch msg.Text {
	case BtnCreateQuiz:
		m.HandleCreateQuiz(msg.Chat.ID, msg.From.ID)
	case BtnMyGroups:
		m.HandleMyGroups(msg.Chat.ID, msg.From.ID)
	case BtnCancel:
		m.HandleCancel(msg.Chat.ID, msg.From.ID)
	case BtnHelp:
		m.HandleHelp(msg)
	default:
		m.HandleAuthoringInput(msg)
	}
}

func (m *HandlerManager) handleGroupMessage(msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		return
	}

	switch msg.Command() {
	case "rating":
		m.HandleRating(msg.Chat.ID)
	case "endquiz":
		m.HandleEndQuiz(msg.Chat.ID, msg.From.ID)
	case "start", "help":
		m.send(msg.Chat.ID, MsgPrivateOnly)
	}
}

// HandleCallback dispatches one inline button press.
func (m *HandlerManager) HandleCallback(cb *tgbotapi.CallbackQuery) {
	if cb.From == nil || cb.Message == nil {
		return
	}

	if !m.limiter.Allow(cb.From.ID) {
		m.answerCallback(cb.ID, MsgTooManyRequests)
		return
	}

	data := cb.Data
	chatID := cb.Message.Chat.ID

	switch {
	case strings.HasPrefix(data, "choose_group:"):
		m.HandleGroupChosen(cb, chatID)
	case strings.HasPrefix(data, "quiz_size:"):
		m.HandleSizeChosen(cb, chatID)
	case strings.HasPrefix(data, "show_rating:"):
		m.HandleShowRating(cb, chatID)
	case data == "quiz:confirm":
		m.HandleConfirmPublish(cb, chatID)
	case data == "quiz:cancel":
		m.answerCallback(cb.ID, "")
		m.HandleCancel(chatID, cb.From.ID)
	case data == "quiz:end":
		m.answerCallback(cb.ID, "")
		m.HandleEndQuiz(chatID, cb.From.ID)
	default:
		logger.Warn("Unknown callback data", "data", data, "user_id", cb.From.ID)
		m.answerCallback(cb.ID, "")
	}
}

// HandlePollAnswer forwards one poll answer to the correlator.
func (m *HandlerManager) HandlePollAnswer(answer *tgbotapi.PollAnswer) {
	if answer.User.ID == 0 {
		return
	}
	m.quizzes.HandlePollAnswer(answer.PollID, answer.User.ID, answer.OptionIDs)
}

func (m *HandlerManager) send(chatID int64, text string) {
	if err := m.bot.SendMessage(chatID, text); err != nil {
		logger.Error("Failed to send message", "chat_id", chatID, "error", err)
	}
}

func (m *HandlerManager) sendWithKeyboard(chatID int64, text string, keyboard interface{}) {
	if err := m.bot.SendMessageWithKeyboard(chatID, text, keyboard); err != nil {
		logger.Error("Failed to send message", "chat_id", chatID, "error", err)
	}
}

func (m *HandlerManager) answerCallback(callbackID, text string) {
	if err := m.bot.AnswerCallback(callbackID, text); err != nil {
		logger.Error("Failed to answer callback", "error", err)
	}
}

func (m *HandlerManager) setPendingGroup(userID, groupID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingGroups[userID] = groupID
}

func (m *HandlerManager) takePendingGroup(userID int64) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	groupID, ok := m.pendingGroups[userID]
	if ok {
		delete(m.pendingGroups, userID)
	}
	return groupID, ok
}
