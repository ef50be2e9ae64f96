// Package telegram owns the connection to the Telegram Bot API: the long
// poll update loop, the per-user worker pool, and the outbound send helpers
// the handlers use.
package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"github.com/quizhost/quiz_bot/internal/config"
	"github.com/quizhost/quiz_bot/internal/handlers"
	"github.com/quizhost/quiz_bot/internal/quiz"
	"github.com/quizhost/quiz_bot/internal/repositories"
	"github.com/quizhost/quiz_bot/pkg/errors"
	"github.com/quizhost/quiz_bot/pkg/logger"
	"github.com/quizhost/quiz_bot/pkg/utils"
)

const (
	numWorkers      = 8
	workerQueueSize = 64
	sendRetries     = 3
)

// Bot wraps the Telegram API client and fans incoming updates out to a
// fixed pool of workers. Updates are routed by user id, so messages from
// one user are always processed in order while different users proceed in
// parallel.
type Bot struct {
	api     *tgbotapi.BotAPI
	cfg     *config.Config
	manager *handlers.HandlerManager
	quizzes *quiz.Service

	workers []chan tgbotapi.Update
	wg      sync.WaitGroup
}

// InitBot authorizes against Telegram and wires the quiz engine and the
// handler layer on top of the database.
func InitBot(cfg *config.Config, db *gorm.DB) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTransport, "failed to authorize bot")
	}
	api.Debug = cfg.AppEnv == "development"

	bot := &Bot{
		api: api,
		cfg: cfg,
	}

	groupRepo := repositories.NewGroupRepository(db)
	resultRepo := repositories.NewResultRepository(db)

	bot.quizzes = quiz.NewService(resultRepo, bot, handlers.ReservedMenuTexts())
	bot.manager = handlers.NewHandlerManager(bot, cfg, bot.quizzes, groupRepo)

	logger.Info("Bot authorized", "username", api.Self.UserName)

	return bot, nil
}

// Start runs the update loop until ctx is cancelled, then drains the
// workers and returns.
func (b *Bot) Start(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updateConfig.AllowedUpdates = []string{"message", "callback_query", "poll_answer", "my_chat_member"}

	updates := b.api.GetUpdatesChan(updateConfig)

	b.workers = make([]chan tgbotapi.Update, numWorkers)
	for i := range b.workers {
		b.workers[i] = make(chan tgbotapi.Update, workerQueueSize)
		b.wg.Add(1)
		go b.worker(b.workers[i])
	}

	logger.Info("Update loop started", "workers", numWorkers)

	for {
		select {
		case <-ctx.Done():
			b.shutdown()
			return
		case update, ok := <-updates:
			if !ok {
				b.shutdown()
				return
			}
			idx := int(updateUserID(update)%numWorkers+numWorkers) % numWorkers
			b.workers[idx] <- update
		}
	}
}

func (b *Bot) shutdown() {
	b.api.StopReceivingUpdates()
	for _, ch := range b.workers {
		close(ch)
	}
	b.wg.Wait()
	logger.Info("Update loop stopped")
}

func (b *Bot) worker(ch <-chan tgbotapi.Update) {
	defer b.wg.Done()
	for update := range ch {
		b.dispatch(update)
	}
}

func (b *Bot) dispatch(update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic while handling update", "panic", r)
		}
	}()

	switch {
	case update.Message != nil:
		b.manager.HandleMessage(update.Message)
	case update.CallbackQuery != nil:
		b.manager.HandleCallback(update.CallbackQuery)
	case update.PollAnswer != nil:
		b.manager.HandlePollAnswer(update.PollAnswer)
	case update.MyChatMember != nil:
		b.manager.HandleChatMemberUpdate(update.MyChatMember)
	}
}

// updateUserID extracts the acting user so their updates land on the same
// worker. Updates without a user hash to worker 0.
func updateUserID(update tgbotapi.Update) int64 {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		return update.CallbackQuery.From.ID
	case update.PollAnswer != nil && update.PollAnswer.User.ID != 0:
		return update.PollAnswer.User.ID
	case update.MyChatMember != nil:
		return update.MyChatMember.From.ID
	}
	return 0
}

// SendMessage sends plain text.
func (b *Bot) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.sendWithRetry(msg)
	return err
}

// SendHTMLMessage sends text with Telegram HTML formatting.
func (b *Bot) SendHTMLMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.sendWithRetry(msg)
	return err
}

// SendMessageWithKeyboard sends text with a reply or inline keyboard.
func (b *Bot) SendMessageWithKeyboard(chatID int64, text string, keyboard interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	_, err := b.sendWithRetry(msg)
	return err
}

// AnswerCallback acknowledges an inline button press, optionally with a
// toast message.
func (b *Bot) AnswerCallback(callbackID, text string) error {
	callback := tgbotapi.NewCallback(callbackID, text)
	if _, err := b.api.Request(callback); err != nil {
		return errors.Wrap(err, errors.ErrCodeTransport, "failed to answer callback")
	}
	return nil
}

// PublishQuestionEvent posts one question to the group as a non-anonymous
// quiz poll and returns the poll id answers will reference.
func (b *Bot) PublishQuestionEvent(groupID int64, question string, options []string, correctIndex int) (string, error) {
	trimmed := make([]string, len(options))
	for i, option := range options {
		trimmed[i] = utils.TruncateRunes(option, utils.PollOptionMaxLen)
	}

	poll := tgbotapi.NewPoll(groupID, utils.TruncateRunes(question, utils.PollQuestionMaxLen), trimmed...)
	poll.Type = "quiz"
	poll.CorrectOptionID = int64(correctIndex)
	poll.IsAnonymous = false

	sent, err := b.sendWithRetry(poll)
	if err != nil {
		return "", err
	}
	if sent.Poll == nil {
		return "", errors.New(errors.ErrCodeTransport, "telegram returned a message without a poll")
	}
	return sent.Poll.ID, nil
}

// GetChatMemberStatus returns the user's role in a chat, e.g. "creator",
// "administrator" or "member".
func (b *Bot) GetChatMemberStatus(chatID, userID int64) (string, error) {
	member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: userID,
		},
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeTransport, "failed to get chat member")
	}
	return member.Status, nil
}

// ResolveDisplayName returns the best human-readable name Telegram knows
// for the user. Falls back to a generic label when the profile is hidden.
func (b *Bot) ResolveDisplayName(userID int64) string {
	chat, err := b.api.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: userID},
	})
	if err != nil {
		logger.Debug("Failed to resolve display name", "user_id", userID, "error", err)
		return fmt.Sprintf("Player %d", userID)
	}

	name := strings.TrimSpace(strings.TrimSpace(chat.FirstName) + " " + strings.TrimSpace(chat.LastName))
	if name != "" {
		return name
	}
	if chat.UserName != "" {
		return "@" + chat.UserName
	}
	return fmt.Sprintf("Player %d", userID)
}

// DownloadFile fetches a file uploaded to Telegram. The caller closes the
// returned reader.
func (b *Bot) DownloadFile(fileID string) (io.ReadCloser, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTransport, "failed to get file info")
	}

	resp, err := http.Get(file.Link(b.api.Token))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTransport, "failed to download file")
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.New(errors.ErrCodeTransport,
			fmt.Sprintf("file download returned status %d", resp.StatusCode))
	}

	return resp.Body, nil
}

func (b *Bot) sendWithRetry(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	var msg tgbotapi.Message
	var err error

	for attempt := 1; attempt <= sendRetries; attempt++ {
		msg, err = b.api.Send(c)
		if err == nil {
			return msg, nil
		}
		if !isRetryableError(err) {
			break
		}
		logger.Warn("Send failed, retrying", "attempt", attempt, "error", err)
		time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
	}

	return msg, errors.Wrap(err, errors.ErrCodeTransport, "failed to send message")
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	text := err.Error()
	for _, marker := range []string{
		"timeout",
		"connection reset",
		"temporarily unavailable",
		"Too Many Requests",
		"bad gateway",
	} {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
