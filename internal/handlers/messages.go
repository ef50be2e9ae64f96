package handlers

// Main menu button labels. These are reserved: the authoring flow refuses
// them as question or option text so a stray menu tap never becomes quiz
// content.
const (
	BtnCreateQuiz = "📝 Create Quiz"
	BtnMyGroups   = "👥 My Groups"
	BtnCancel     = "❌ Cancel"
	BtnHelp       = "ℹ️ Help"
)

const (
	MsgWelcome = "Welcome to the quiz bot! 🎉\n\n" +
		"Add me to a group, then come back here to create a quiz for it.\n" +
		"Use the menu below to get started."

	MsgHelp = "How it works:\n\n" +
		"1. Add me to your group.\n" +
		"2. Press \"" + BtnCreateQuiz + "\" here in private chat.\n" +
		"3. Pick the group and the number of questions.\n" +
		"4. Send each question, its answer options, /done, and the number of the correct option (counting from 0).\n" +
		"5. Confirm to post the quiz to the group.\n\n" +
		"In the group: /rating shows the current standings, /endquiz (admins only) finishes the quiz and posts the final leaderboard.\n\n" +
		"Tip: while I'm waiting for a question you can also send an .xlsx file to import questions in bulk. One question per row: text, correct option number, then the options."

	MsgPrivateOnly = "Let's set this up in private chat. Message me directly to create a quiz."

	MsgNoGroups = "I don't know any of your groups yet. Add me to a group first, then try again."

	MsgChooseGroup       = "Which group is this quiz for?"
	MsgChooseRatingGroup = "Which group's standings do you want to see?"
	MsgChooseSize        = "How many questions will the quiz have?"

	MsgAskOptions = "Got it. Now send the answer options, one message each.\n" +
		"Send /done when the list is complete (at least 2 options)."
	MsgAskCorrectAnswer = "Which option is correct? Send its number, counting from 0."

	MsgRejectEmpty        = "That message is empty. Please send some text."
	MsgRejectReserved     = "That looks like a menu button. Please send the actual text."
	MsgRejectCommand      = "Commands don't work here. Send the text itself, or /done to finish the options."
	MsgRejectTooFew       = "A poll needs at least 2 options. Add more before sending /done."
	MsgRejectNotANumber   = "Please send the number of the correct option, counting from 0."
	MsgRejectIndexRange   = "There's no option with that number. Count from 0."
	MsgRejectSessionGone  = "This quiz no longer exists, someone may have replaced or finished it. Start over with \"" + BtnCreateQuiz + "\"."
	MsgRejectNotAuthoring = "I wasn't expecting that. Use the menu below."

	MsgReadyToPublish = "All questions are in! 🎯\nPublish the quiz to the group?"

	MsgQuizCancelled = "Quiz creation cancelled."
	MsgNothingToDo   = "Nothing is in progress right now."

	MsgQuizPublished       = "The quiz is live in your group. Good luck to the players! 🍀"
	MsgQuizPublishPartial  = "The quiz was posted, but some questions failed to send. You can try publishing again."
	MsgGroupAnnouncement   = "📢 A new quiz is starting! Answer the polls below."
	MsgNoActiveQuiz        = "There is no active quiz in this group."
	MsgAdminsOnly          = "Only group admins can finish a quiz."
	MsgLeaderboardFailed   = "Couldn't load the results right now, please try again."
	MsgLeaderboardEmpty    = "The quiz is over, nobody answered this time. 🤷"
	MsgRatingEmpty         = "Nobody has answered yet."
	MsgTooManyRequests     = "Too many requests, please slow down a little."
	MsgWorkbookBadFile     = "I can only import .xlsx spreadsheets."
	MsgWorkbookTooBig      = "That file is too large to import."
	MsgWorkbookFailed      = "I couldn't read that spreadsheet. Check the layout: question, correct option number, then the options."
	MsgWorkbookWrongState  = "Send the file while I'm waiting for a question, not in the middle of one."
	MsgGroupGone           = "I was removed from that group, so it's no longer available."
	MsgSomethingWentWrong  = "Something went wrong, please try again."
	MsgFinalLeaderboard    = "🏁 The quiz is over! Final results:"
	MsgInterimLeaderboard  = "📊 Current standings:"
	MsgQuestionProgress    = "Question %d of %d. Send the question text."
	MsgQuestionAccepted    = "Saved! %d question(s) done, %d to go.\nSend the next question."
	MsgOptionAccepted      = "Option %d saved. Send the next one, or /done."
	MsgWorkbookImported    = "Imported %d question(s), skipped %d row(s)."
	MsgWorkbookImportLeft  = "Imported %d question(s), skipped %d row(s). %d more to go, send the next question."
	MsgGroupRegistered     = "I'm now active in \"%s\". Message me in private to create a quiz for it."
)

// ReservedMenuTexts returns the button labels the quiz engine must refuse
// as authoring input.
func ReservedMenuTexts() []string {
	return []string{BtnCreateQuiz, BtnMyGroups, BtnCancel, BtnHelp}
}
