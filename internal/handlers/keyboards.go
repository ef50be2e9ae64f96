package handlers

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/quizhost/quiz_bot/internal/models"
	"github.com/quizhost/quiz_bot/pkg/utils"
)

// MainMenuKeyboard is the persistent reply keyboard shown in private chat.
func MainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnCreateQuiz),
			tgbotapi.NewKeyboardButton(BtnMyGroups),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnCancel),
			tgbotapi.NewKeyboardButton(BtnHelp),
		),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

// GroupsKeyboard lists the user's connected groups, one button per group.
func GroupsKeyboard(groups []models.UserGroup) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(groups))
	for _, g := range groups {
		title := utils.TruncateRunes(g.GroupTitle, 40)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(title, fmt.Sprintf("choose_group:%d", g.GroupID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// RatingGroupsKeyboard lists the user's groups for a standings lookup.
func RatingGroupsKeyboard(groups []models.UserGroup) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(groups))
	for _, g := range groups {
		title := utils.TruncateRunes(g.GroupTitle, 40)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(title, fmt.Sprintf("show_rating:%d", g.GroupID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// SizeKeyboard offers the allowed question counts, three per row.
func SizeKeyboard(choices []int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, n := range choices {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%d", n), fmt.Sprintf("quiz_size:%d", n)))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// ConfirmKeyboard asks the creator to publish or abandon the finished quiz.
func ConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Publish", "quiz:confirm"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "quiz:cancel"),
		),
	)
}

// EndQuizKeyboard is posted to the group together with the announcement so
// admins can finish the quiz with one tap.
func EndQuizKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏁 Finish quiz", "quiz:end"),
		),
	)
}
