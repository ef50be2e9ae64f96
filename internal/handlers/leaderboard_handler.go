package handlers

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/quizhost/quiz_bot/internal/quiz"
	"github.com/quizhost/quiz_bot/pkg/errors"
	"github.com/quizhost/quiz_bot/pkg/logger"
	"github.com/quizhost/quiz_bot/pkg/utils"
)

var medals = []string{"🥇", "🥈", "🥉"}

// HandleRating posts the current standings of the group's running quiz.
func (m *HandlerManager) HandleRating(groupID int64) {
	m.sendRating(groupID, groupID)
}

// HandleRatingRequest lets a creator view a group's standings from private
// chat: one known group answers directly, several offer a chooser.
func (m *HandlerManager) HandleRatingRequest(chatID, userID int64) {
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
	if len(groups) == 1 {
		m.sendRating(chatID, groups[0].GroupID)
		return
	}

	m.sendWithKeyboard(chatID, MsgChooseRatingGroup, RatingGroupsKeyboard(groups))
}

// HandleShowRating answers a show_rating: button press from private chat.
func (m *HandlerManager) HandleShowRating(cb *tgbotapi.CallbackQuery, chatID int64) {
	var groupID int64
	if _, err := fmt.Sscanf(cb.Data, "show_rating:%d", &groupID); err != nil {
		m.answerCallback(cb.ID, "")
		return
	}

	groups, err := m.groups.ListGroups(cb.From.ID)
	if err != nil {
		logger.Error("Failed to list groups", "user_id", cb.From.ID, "error", err)
		m.answerCallback(cb.ID, MsgSomethingWentWrong)
		return
	}
	owned := false
	for _, g := range groups {
		if g.GroupID == groupID {
			owned = true
			break
		}
	}
	if !owned {
		m.answerCallback(cb.ID, MsgGroupGone)
		return
	}

	m.answerCallback(cb.ID, "")
	m.sendRating(chatID, groupID)
}

func (m *HandlerManager) sendRating(chatID, groupID int64) {
	session, ok := m.quizzes.ActiveSession(groupID)
	if !ok {
		m.send(chatID, MsgNoActiveQuiz)
		return
	}

	rows, err := m.quizzes.BuildLeaderboard(session.QuizID, groupID, m.cfg.RatingLimit)
	if err != nil {
		logger.Error("Failed to build rating", "group_id", groupID, "error", err)
		m.send(chatID, MsgLeaderboardFailed)
		return
	}
	if len(rows) == 0 {
		m.send(chatID, MsgRatingEmpty)
		return
	}

	if err := m.bot.SendHTMLMessage(chatID, m.formatLeaderboard(MsgInterimLeaderboard, rows)); err != nil {
		logger.Error("Failed to send rating", "group_id", groupID, "error", err)
	}
}

// HandleEndQuiz finishes the group's quiz and posts the final leaderboard.
// Only group admins may do this.
func (m *HandlerManager) HandleEndQuiz(groupID, userID int64) {
	status, err := m.bot.GetChatMemberStatus(groupID, userID)
	if err != nil {
		logger.Error("Failed to check member status",
			"group_id", groupID,
			"user_id", userID,
			"error", err)
		m.send(groupID, MsgSomethingWentWrong)
		return
	}
	if status != "administrator" && status != "creator" {
		m.send(groupID, MsgAdminsOnly)
		return
	}

	rows, err := m.quizzes.Terminate(groupID, m.cfg.LeaderboardLimit)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeNotFound) {
			m.send(groupID, MsgNoActiveQuiz)
			return
		}
		logger.Error("Failed to terminate quiz", "group_id", groupID, "error", err)
		m.send(groupID, MsgLeaderboardFailed)
		return
	}

	if len(rows) == 0 {
		m.send(groupID, MsgLeaderboardEmpty)
		return
	}

	if err := m.bot.SendHTMLMessage(groupID, m.formatLeaderboard(MsgFinalLeaderboard, rows)); err != nil {
		logger.Error("Failed to send leaderboard", "group_id", groupID, "error", err)
	}
}

// formatLeaderboard renders rows as an HTML message with clickable player
// mentions. The top three get medals, everyone else a position number.
func (m *HandlerManager) formatLeaderboard(header string, rows []quiz.Row) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")

	for i, row := range rows {
		if i < len(medals) {
			b.WriteString(medals[i])
		} else {
			fmt.Fprintf(&b, "%d.", i+1)
		}

		name := utils.EscapeHTML(m.bot.ResolveDisplayName(row.UserID))
		fmt.Fprintf(&b, " <a href=\"tg://user?id=%d\">%s</a> — %d/%d\n",
			row.UserID, name, row.CorrectCount, row.TotalCount)
	}

	return b.String()
}
