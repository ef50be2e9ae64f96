package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/quizhost/quiz_bot/internal/quiz"
	"github.com/quizhost/quiz_bot/pkg/logger"
	"github.com/quizhost/quiz_bot/pkg/utils"
)

func (m *HandlerManager) HandleStart(msg *tgbotapi.Message) {
	m.sendWithKeyboard(msg.Chat.ID, MsgWelcome, MainMenuKeyboard())
}

func (m *HandlerManager) HandleHelp(msg *tgbotapi.Message) {
	m.sendWithKeyboard(msg.Chat.ID, MsgHelp, MainMenuKeyboard())
}

// HandleCancel abandons whatever the user had in progress: a pending group
// or size choice, or a partially authored quiz.
func (m *HandlerManager) HandleCancel(chatID, userID int64) {
	_, hadPending := m.takePendingGroup(userID)
	hadFlow := m.quizzes.State(userID) != quiz.StateIdle

	m.quizzes.Cancel(userID)

	if hadPending || hadFlow {
		m.sendWithKeyboard(chatID, MsgQuizCancelled, MainMenuKeyboard())
		return
	}
	m.sendWithKeyboard(chatID, MsgNothingToDo, MainMenuKeyboard())
}

// HandleMyGroups lists the groups the bot knows for this user.
func (m *HandlerManager) HandleMyGroups(chatID, userID int64) {
	groups, err := m.groups.ListGroups(userID)
	if err != nil {
		logger.Error("Failed to list groups", "user_id", userID, "error", err)
		m.send(chatID, MsgSomethingWentWrong)
		return
	}
	if len(groups) == 0 {
		m.send(chatID, MsgNoGroups)
		return
	}

	text := "Your groups:\n"
	for _, g := range groups {
		text += "• " + utils.TruncateRunes(g.GroupTitle, 60) + "\n"
	}
	m.send(chatID, text)
}
