package handlers

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/quizhost/quiz_bot/internal/quiz"
	"github.com/quizhost/quiz_bot/internal/security"
	"github.com/quizhost/quiz_bot/pkg/logger"
)

// maxWorkbookSize caps uploaded spreadsheets at 5 MB.
const maxWorkbookSize = 5 << 20

// HandleCreateQuiz starts the creation flow by asking which group the quiz
// is for.
func (m *HandlerManager) HandleCreateQuiz(chatID, userID int64) {
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

	// A single connected group needs no chooser.
	if len(groups) == 1 {
		m.setPendingGroup(userID, groups[0].GroupID)
		m.sendWithKeyboard(chatID, MsgChooseSize, SizeKeyboard(m.cfg.QuizSizeChoices()))
		return
	}

	m.sendWithKeyboard(chatID, MsgChooseGroup, GroupsKeyboard(groups))
}

// HandleGroupChosen records the picked group and asks for the quiz size.
func (m *HandlerManager) HandleGroupChosen(cb *tgbotapi.CallbackQuery, chatID int64) {
	var groupID int64
	if _, err := fmt.Sscanf(cb.Data, "choose_group:%d", &groupID); err != nil {
		m.answerCallback(cb.ID, "")
		return
	}

	// The button list was built from this user's groups, but callbacks can
	// be forged, so re-check ownership.
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

	m.setPendingGroup(cb.From.ID, groupID)
	m.answerCallback(cb.ID, "")
	m.sendWithKeyboard(chatID, MsgChooseSize, SizeKeyboard(m.cfg.QuizSizeChoices()))
}

// HandleSizeChosen opens the quiz session and asks for the first question.
func (m *HandlerManager) HandleSizeChosen(cb *tgbotapi.CallbackQuery, chatID int64) {
	var size int
	if _, err := fmt.Sscanf(cb.Data, "quiz_size:%d", &size); err != nil {
		m.answerCallback(cb.ID, "")
		return
	}
	if size < m.cfg.MinQuizSize || size > m.cfg.MaxQuizSize {
		m.answerCallback(cb.ID, "")
		return
	}

	groupID, ok := m.takePendingGroup(cb.From.ID)
	if !ok {
		m.answerCallback(cb.ID, MsgRejectNotAuthoring)
		return
	}

	if _, err := m.quizzes.StartAuthoring(cb.From.ID, groupID, size); err != nil {
		logger.Error("Failed to start authoring",
			"user_id", cb.From.ID,
			"group_id", groupID,
			"error", err)
		m.answerCallback(cb.ID, MsgSomethingWentWrong)
		return
	}

	m.answerCallback(cb.ID, "")
	m.send(chatID, fmt.Sprintf(MsgQuestionProgress, 1, size))
}

// HandleAuthoringInput feeds one private-chat message into the authoring
// flow and reports the outcome back to the creator.
func (m *HandlerManager) HandleAuthoringInput(msg *tgbotapi.Message) {
	text := msg.Text
	if text != quiz.DoneToken {
		text = security.SanitizeAuthorInput(text)
	}

	res := m.quizzes.SubmitInput(msg.From.ID, text)
	chatID := msg.Chat.ID

	switch res.Reject {
	case quiz.RejectNone:
	case quiz.RejectNotAuthoring:
		m.sendWithKeyboard(chatID, MsgRejectNotAuthoring, MainMenuKeyboard())
		return
	case quiz.RejectEmptyText:
		m.send(chatID, MsgRejectEmpty)
		return
	case quiz.RejectReservedToken:
		m.send(chatID, MsgRejectReserved)
		return
	case quiz.RejectCommand:
		m.send(chatID, MsgRejectCommand)
		return
	case quiz.RejectTooFewOptions:
		m.send(chatID, MsgRejectTooFew)
		return
	case quiz.RejectNotANumber:
		m.send(chatID, MsgRejectNotANumber)
		return
	case quiz.RejectIndexRange:
		m.send(chatID, MsgRejectIndexRange)
		return
	case quiz.RejectNoSession:
		m.sendWithKeyboard(chatID, MsgRejectSessionGone, MainMenuKeyboard())
		return
	default:
		m.send(chatID, MsgSomethingWentWrong)
		return
	}

	switch res.State {
	case quiz.StateAwaitingOptions:
		if res.OptionCount == 0 {
			m.send(chatID, MsgAskOptions)
		} else {
			m.send(chatID, fmt.Sprintf(MsgOptionAccepted, res.OptionCount))
		}
	case quiz.StateAwaitingCorrectAnswer:
		m.send(chatID, MsgAskCorrectAnswer)
	case quiz.StateAwaitingQuestion:
		m.send(chatID, fmt.Sprintf(MsgQuestionAccepted, res.QuestionsDone, res.QuestionsLeft))
	case quiz.StateReadyToPublish:
		m.sendWithKeyboard(chatID, MsgReadyToPublish, ConfirmKeyboard())
	}
}

// HandleConfirmPublish posts the finished quiz to its group.
func (m *HandlerManager) HandleConfirmPublish(cb *tgbotapi.CallbackQuery, chatID int64) {
	session, ok := m.quizzes.OwnedSession(cb.From.ID)
	if !ok {
		m.answerCallback(cb.ID, MsgRejectSessionGone)
		return
	}

	m.answerCallback(cb.ID, "")

	// Announce before the polls land so the group sees them in context.
	m.sendWithKeyboard(session.GroupID, MsgGroupAnnouncement, EndQuizKeyboard())

	outcomes, err := m.quizzes.Publish(cb.From.ID)
	if err != nil {
		logger.Error("Publish failed", "user_id", cb.From.ID, "error", err)
		m.send(chatID, MsgSomethingWentWrong)
		return
	}

	failed := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
		}
	}

	if failed > 0 {
		m.sendWithKeyboard(chatID, MsgQuizPublishPartial, MainMenuKeyboard())
		return
	}
	m.sendWithKeyboard(chatID, MsgQuizPublished, MainMenuKeyboard())
}

// HandleWorkbookUpload imports questions from an uploaded spreadsheet.
func (m *HandlerManager) HandleWorkbookUpload(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	doc := msg.Document

	if m.quizzes.State(msg.From.ID) != quiz.StateAwaitingQuestion {
		m.send(chatID, MsgWorkbookWrongState)
		return
	}
	if !security.ValidateWorkbookName(doc.FileName) {
		m.send(chatID, MsgWorkbookBadFile)
		return
	}
	if !security.ValidateFileSize(int64(doc.FileSize), maxWorkbookSize) {
		m.send(chatID, MsgWorkbookTooBig)
		return
	}

	file, err := m.bot.DownloadFile(doc.FileID)
	if err != nil {
		logger.Error("Failed to download workbook", "user_id", msg.From.ID, "error", err)
		m.send(chatID, MsgSomethingWentWrong)
		return
	}
	defer file.Close()

	res, err := m.quizzes.ImportWorkbook(msg.From.ID, file)
	if err != nil {
		logger.Warn("Workbook import failed", "user_id", msg.From.ID, "error", err)
		m.send(chatID, MsgWorkbookFailed)
		return
	}

	if res.Ready {
		m.send(chatID, fmt.Sprintf(MsgWorkbookImported, res.Imported, res.Skipped))
		m.sendWithKeyboard(chatID, MsgReadyToPublish, ConfirmKeyboard())
		return
	}
	m.send(chatID, fmt.Sprintf(MsgWorkbookImportLeft, res.Imported, res.Skipped, res.QuestionsLeft))
}
