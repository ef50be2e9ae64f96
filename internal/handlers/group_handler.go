package handlers

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/quizhost/quiz_bot/pkg/logger"
)

// HandleChatMemberUpdate tracks the bot's own membership: being added to a
// group registers it for the user who added the bot, being removed forgets
// the group for everyone.
func (m *HandlerManager) HandleChatMemberUpdate(update *tgbotapi.ChatMemberUpdated) {
	chat := update.Chat
	if chat.IsPrivate() {
		return
	}

	status := update.NewChatMember.Status

	switch status {
	case "member", "administrator":
		userID := update.From.ID
		if err := m.groups.RecordGroup(userID, chat.ID, chat.Title); err != nil {
			logger.Error("Failed to record group",
				"group_id", chat.ID,
				"user_id", userID,
				"error", err)
			return
		}
		logger.Info("Added to group", "group_id", chat.ID, "title", chat.Title, "added_by", userID)
		m.send(userID, fmt.Sprintf(MsgGroupRegistered, chat.Title))

	case "left", "kicked":
		if err := m.groups.RemoveGroup(chat.ID); err != nil {
			logger.Error("Failed to remove group", "group_id", chat.ID, "error", err)
			return
		}
		logger.Info("Removed from group", "group_id", chat.ID, "title", chat.Title)
	}
}
