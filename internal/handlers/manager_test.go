package handlers

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/quizhost/quiz_bot/internal/config"
	"github.com/quizhost/quiz_bot/internal/models"
	"github.com/quizhost/quiz_bot/internal/quiz"
	"github.com/quizhost/quiz_bot/internal/repositories"
	"github.com/quizhost/quiz_bot/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type sentMessage struct {
	chatID   int64
	text     string
	html     bool
	keyboard interface{}
}

type sentPoll struct {
	chatID       int64
	question     string
	options      []string
	correctIndex int
}

// fakeBot implements BotInterface and quiz.EventTransport like the real
// telegram.Bot does, recording everything instead of calling Telegram.
type fakeBot struct {
	mu           sync.Mutex
	messages     []sentMessage
	polls        []sentPoll
	callbacks    []string
	memberStatus map[int64]string
	files        map[string][]byte
	pollErr      error
}

func newFakeBot() *fakeBot {
	return &fakeBot{
		memberStatus: make(map[int64]string),
		files:        make(map[string][]byte),
	}
}

func (f *fakeBot) SendMessage(chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, sentMessage{chatID: chatID, text: text})
	return nil
}

func (f *fakeBot) SendHTMLMessage(chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, sentMessage{chatID: chatID, text: text, html: true})
	return nil
}

func (f *fakeBot) SendMessageWithKeyboard(chatID int64, text string, keyboard interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, sentMessage{chatID: chatID, text: text, keyboard: keyboard})
	return nil
}

func (f *fakeBot) AnswerCallback(callbackID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbacks = append(f.callbacks, callbackID)
	return nil
}

func (f *fakeBot) GetChatMemberStatus(chatID, userID int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	status, ok := f.memberStatus[userID]
	if !ok {
		return "member", nil
	}
	return status, nil
}

func (f *fakeBot) ResolveDisplayName(userID int64) string {
	return fmt.Sprintf("Player %d", userID)
}

func (f *fakeBot) DownloadFile(fileID string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[fileID]
	if !ok {
		return nil, fmt.Errorf("unknown file %q", fileID)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeBot) PublishQuestionEvent(groupID int64, question string, options []string, correctIndex int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pollErr != nil {
		return "", f.pollErr
	}
	f.polls = append(f.polls, sentPoll{groupID, question, options, correctIndex})
	return fmt.Sprintf("poll-%d", len(f.polls)), nil
}

func (f *fakeBot) lastMessageTo(chatID int64) (sentMessage, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.messages) - 1; i >= 0; i-- {
		if f.messages[i].chatID == chatID {
			return f.messages[i], true
		}
	}
	return sentMessage{}, false
}

type memoryResults struct {
	mu   sync.Mutex
	rows map[string]*quiz.Row
}

func (m *memoryResults) key(quizID, userID, groupID int64) string {
	return fmt.Sprintf("%d:%d:%d", quizID, userID, groupID)
}

func (m *memoryResults) IncrementScore(quizID, userID, groupID int64, wasCorrect bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rows == nil {
		m.rows = make(map[string]*quiz.Row)
	}
	key := m.key(quizID, userID, groupID)
	row, ok := m.rows[key]
	if !ok {
		row = &quiz.Row{UserID: userID}
		m.rows[key] = row
	}
	row.TotalCount++
	if wasCorrect {
		row.CorrectCount++
	}
	return nil
}

func (m *memoryResults) FetchLeaderboardRows(quizID, groupID int64, limit int) ([]quiz.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []quiz.Row
	prefix := fmt.Sprintf("%d:", quizID)
	suffix := fmt.Sprintf(":%d", groupID)
	for key, row := range m.rows {
		if strings.HasPrefix(key, prefix) && strings.HasSuffix(key, suffix) {
			out = append(out, *row)
		}
	}
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func testConfig() *config.Config {
	return &config.Config{
		MinQuizSize:      2,
		MaxQuizSize:      50,
		RatingLimit:      10,
		LeaderboardLimit: 50,
		RateLimitPerUser: 1000,
	}
}

func testGroupRepo(t *testing.T) *repositories.GroupRepository {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.UserGroup{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return repositories.NewGroupRepository(db)
}

func testManager(t *testing.T) (*HandlerManager, *fakeBot, *memoryResults) {
	t.Helper()

	bot := newFakeBot()
	results := &memoryResults{}
	svc := quiz.NewService(results, bot, ReservedMenuTexts())
	manager := NewHandlerManager(bot, testConfig(), svc, testGroupRepo(t))
	return manager, bot, results
}

func privateMessage(userID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: userID, Type: "private"},
		Text: text,
	}
}

func privateCallback(userID int64, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:   "cb",
		From: &tgbotapi.User{ID: userID},
		Data: data,
		Message: &tgbotapi.Message{
			Chat: &tgbotapi.Chat{ID: userID, Type: "private"},
		},
	}
}

func groupCallback(userID, groupID int64, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:   "cb",
		From: &tgbotapi.User{ID: userID},
		Data: data,
		Message: &tgbotapi.Message{
			Chat: &tgbotapi.Chat{ID: groupID, Type: "supergroup"},
		},
	}
}

func TestCreateQuizWithoutGroups(t *testing.T) {
	m, bot, _ := testManager(t)

	m.HandleMessage(privateMessage(1, BtnCreateQuiz))

	msg, ok := bot.lastMessageTo(1)
	if !ok || msg.text != MsgNoGroups {
		t.Errorf("Expected no-groups message, got %+v", msg)
	}
}

func TestFullCreationAndPublishFlow(t *testing.T) {
	m, bot, _ := testManager(t)
	const userID, groupID = int64(1), int64(-100)

	if err := m.groups.RecordGroup(userID, groupID, "Quiz Club"); err != nil {
		t.Fatalf("RecordGroup failed: %v", err)
	}
	if err := m.groups.RecordGroup(userID, -200, "Other Club"); err != nil {
		t.Fatalf("RecordGroup failed: %v", err)
	}

	m.HandleMessage(privateMessage(userID, BtnCreateQuiz))
	if msg, _ := bot.lastMessageTo(userID); msg.text != MsgChooseGroup {
		t.Fatalf("Expected group chooser, got %q", msg.text)
	}

	m.HandleCallback(privateCallback(userID, fmt.Sprintf("choose_group:%d", groupID)))
	if msg, _ := bot.lastMessageTo(userID); msg.text != MsgChooseSize {
		t.Fatalf("Expected size chooser, got %q", msg.text)
	}

	m.HandleCallback(privateCallback(userID, "quiz_size:2"))
	if msg, _ := bot.lastMessageTo(userID); msg.text != fmt.Sprintf(MsgQuestionProgress, 1, 2) {
		t.Fatalf("Expected first question prompt, got %q", msg.text)
	}

	inputs := []struct {
		text string
		want string
	}{
		{"What is 2+2?", MsgAskOptions},
		{"3", fmt.Sprintf(MsgOptionAccepted, 1)},
		{"4", fmt.Sprintf(MsgOptionAccepted, 2)},
		{"/done", MsgAskCorrectAnswer},
		{"1", fmt.Sprintf(MsgQuestionAccepted, 1, 1)},
		{"Capital of France?", MsgAskOptions},
		{"Paris", fmt.Sprintf(MsgOptionAccepted, 1)},
		{"London", fmt.Sprintf(MsgOptionAccepted, 2)},
		{"/done", MsgAskCorrectAnswer},
		{"0", MsgReadyToPublish},
	}
	for _, in := range inputs {
		m.HandleAuthoringInput(privateMessage(userID, in.text))
		if msg, _ := bot.lastMessageTo(userID); msg.text != in.want {
			t.Fatalf("Input %q: expected reply %q, got %q", in.text, in.want, msg.text)
		}
	}

	m.HandleCallback(privateCallback(userID, "quiz:confirm"))

	if len(bot.polls) != 2 {
		t.Fatalf("Expected 2 polls in the group, got %d", len(bot.polls))
	}
	if bot.polls[0].chatID != groupID || bot.polls[0].question != "What is 2+2?" {
		t.Errorf("Unexpected first poll: %+v", bot.polls[0])
	}
	if bot.polls[1].correctIndex != 0 {
		t.Errorf("Expected correct index 0 on second poll, got %d", bot.polls[1].correctIndex)
	}

	if msg, _ := bot.lastMessageTo(groupID); msg.text != MsgGroupAnnouncement {
		t.Errorf("Expected group announcement, got %q", msg.text)
	}
	if msg, _ := bot.lastMessageTo(userID); msg.text != MsgQuizPublished {
		t.Errorf("Expected publish confirmation, got %q", msg.text)
	}
}

func TestCreateQuizSingleGroupSkipsChooser(t *testing.T) {
	m, bot, _ := testManager(t)

	if err := m.groups.RecordGroup(1, -100, "Only Club"); err != nil {
		t.Fatalf("RecordGroup failed: %v", err)
	}

	m.HandleMessage(privateMessage(1, BtnCreateQuiz))
	if msg, _ := bot.lastMessageTo(1); msg.text != MsgChooseSize {
		t.Fatalf("Expected size chooser straight away, got %q", msg.text)
	}

	m.HandleCallback(privateCallback(1, "quiz_size:2"))
	if m.quizzes.State(1) != quiz.StateAwaitingQuestion {
		t.Errorf("Expected authoring to start for the only group, got %q", m.quizzes.State(1))
	}
}

func TestShowRatingFromPrivateChat(t *testing.T) {
	m, bot, _ := testManager(t)
	const userID, groupID = int64(1), int64(-100)

	if err := m.groups.RecordGroup(userID, groupID, "Quiz Club"); err != nil {
		t.Fatalf("RecordGroup failed: %v", err)
	}
	if err := m.groups.RecordGroup(userID, -200, "Other Club"); err != nil {
		t.Fatalf("RecordGroup failed: %v", err)
	}
	m.HandleCallback(privateCallback(userID, fmt.Sprintf("choose_group:%d", groupID)))
	m.HandleCallback(privateCallback(userID, "quiz_size:2"))
	for _, text := range []string{"q1", "a", "b", "/done", "0", "q2", "c", "d", "/done", "1"} {
		m.HandleAuthoringInput(privateMessage(userID, text))
	}
	m.HandleCallback(privateCallback(userID, "quiz:confirm"))
	m.HandlePollAnswer(&tgbotapi.PollAnswer{
		PollID:    "poll-1",
		User:      tgbotapi.User{ID: 42},
		OptionIDs: []int{0},
	})

	m.HandleCallback(privateCallback(userID, fmt.Sprintf("show_rating:%d", groupID)))

	msg, _ := bot.lastMessageTo(userID)
	if !msg.html || !strings.Contains(msg.text, MsgInterimLeaderboard) {
		t.Errorf("Expected interim standings in private chat, got %+v", msg)
	}

	// The quiz keeps running after a rating view.
	if _, ok := m.quizzes.ActiveSession(groupID); !ok {
		t.Error("Expected session to survive a rating view")
	}

	// A group the user is not connected to is refused.
	m.HandleCallback(privateCallback(9, fmt.Sprintf("show_rating:%d", groupID)))
	if msg, ok := bot.lastMessageTo(9); ok {
		t.Errorf("Expected no standings for a foreign user, got %q", msg.text)
	}
}

func TestForeignGroupCallbackRefused(t *testing.T) {
	m, bot, _ := testManager(t)

	if err := m.groups.RecordGroup(2, -200, "Someone else's group"); err != nil {
		t.Fatalf("RecordGroup failed: %v", err)
	}

	m.HandleCallback(privateCallback(1, "choose_group:-200"))

	if msg, ok := bot.lastMessageTo(1); ok {
		t.Errorf("Expected no size chooser for a foreign group, got %q", msg.text)
	}
	m.HandleCallback(privateCallback(1, "quiz_size:5"))
	if m.quizzes.State(1) != quiz.StateIdle {
		t.Error("Expected no authoring flow without a pending group")
	}
}

func TestPollAnswerRouting(t *testing.T) {
	m, _, results := testManager(t)
	const userID, groupID = int64(1), int64(-100)

	if err := m.groups.RecordGroup(userID, groupID, "Quiz Club"); err != nil {
		t.Fatalf("RecordGroup failed: %v", err)
	}
	m.HandleCallback(privateCallback(userID, fmt.Sprintf("choose_group:%d", groupID)))
	m.HandleCallback(privateCallback(userID, "quiz_size:2"))
	for _, text := range []string{"q1", "a", "b", "/done", "0", "q2", "c", "d", "/done", "1"} {
		m.HandleAuthoringInput(privateMessage(userID, text))
	}
	m.HandleCallback(privateCallback(userID, "quiz:confirm"))

	m.HandlePollAnswer(&tgbotapi.PollAnswer{
		PollID:    "poll-1",
		User:      tgbotapi.User{ID: 42},
		OptionIDs: []int{0},
	})
	m.HandlePollAnswer(&tgbotapi.PollAnswer{
		PollID:    "poll-2",
		User:      tgbotapi.User{ID: 42},
		OptionIDs: []int{0},
	})

	session, ok := m.quizzes.ActiveSession(groupID)
	if !ok {
		t.Fatal("Expected active session after publish")
	}
	rows, err := results.FetchLeaderboardRows(session.QuizID, groupID, 10)
	if err != nil {
		t.Fatalf("FetchLeaderboardRows failed: %v", err)
	}
	if len(rows) != 1 || rows[0].CorrectCount != 1 || rows[0].TotalCount != 2 {
		t.Errorf("Expected 1 correct of 2 for user 42, got %+v", rows)
	}
}

func TestEndQuizAdminGate(t *testing.T) {
	m, bot, _ := testManager(t)
	const groupID = int64(-100)

	bot.memberStatus[1] = "member"
	m.HandleEndQuiz(groupID, 1)
	if msg, _ := bot.lastMessageTo(groupID); msg.text != MsgAdminsOnly {
		t.Errorf("Expected admins-only refusal, got %q", msg.text)
	}

	bot.memberStatus[2] = "administrator"
	m.HandleEndQuiz(groupID, 2)
	if msg, _ := bot.lastMessageTo(groupID); msg.text != MsgNoActiveQuiz {
		t.Errorf("Expected no-active-quiz message, got %q", msg.text)
	}
}

func TestEndQuizPostsLeaderboard(t *testing.T) {
	m, bot, _ := testManager(t)
	const userID, groupID = int64(1), int64(-100)

	if err := m.groups.RecordGroup(userID, groupID, "Quiz Club"); err != nil {
		t.Fatalf("RecordGroup failed: %v", err)
	}
	m.HandleCallback(privateCallback(userID, fmt.Sprintf("choose_group:%d", groupID)))
	m.HandleCallback(privateCallback(userID, "quiz_size:2"))
	for _, text := range []string{"q1", "a", "b", "/done", "0", "q2", "c", "d", "/done", "1"} {
		m.HandleAuthoringInput(privateMessage(userID, text))
	}
	m.HandleCallback(privateCallback(userID, "quiz:confirm"))

	m.HandlePollAnswer(&tgbotapi.PollAnswer{
		PollID:    "poll-1",
		User:      tgbotapi.User{ID: 42},
		OptionIDs: []int{0},
	})

	bot.memberStatus[9] = "creator"
	m.HandleCallback(groupCallback(9, groupID, "quiz:end"))

	msg, _ := bot.lastMessageTo(groupID)
	if !msg.html {
		t.Fatalf("Expected HTML leaderboard, got %+v", msg)
	}
	if !strings.Contains(msg.text, MsgFinalLeaderboard) || !strings.Contains(msg.text, "🥇") {
		t.Errorf("Unexpected leaderboard text: %q", msg.text)
	}
	if !strings.Contains(msg.text, "tg://user?id=42") {
		t.Errorf("Expected mention of user 42, got %q", msg.text)
	}

	if _, ok := m.quizzes.ActiveSession(groupID); ok {
		t.Error("Expected session cleared after end quiz")
	}
}

func TestRatingWithoutQuiz(t *testing.T) {
	m, bot, _ := testManager(t)

	m.HandleRating(-100)
	if msg, _ := bot.lastMessageTo(-100); msg.text != MsgNoActiveQuiz {
		t.Errorf("Expected no-active-quiz message, got %q", msg.text)
	}
}

func TestChatMemberUpdates(t *testing.T) {
	m, bot, _ := testManager(t)

	m.HandleChatMemberUpdate(&tgbotapi.ChatMemberUpdated{
		Chat: tgbotapi.Chat{ID: -100, Type: "supergroup", Title: "Quiz Club"},
		From: tgbotapi.User{ID: 1},
		NewChatMember: tgbotapi.ChatMember{
			Status: "member",
		},
	})

	groups, err := m.groups.ListGroups(1)
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(groups) != 1 || groups[0].GroupTitle != "Quiz Club" {
		t.Fatalf("Expected group recorded, got %+v", groups)
	}
	if msg, _ := bot.lastMessageTo(1); msg.text != fmt.Sprintf(MsgGroupRegistered, "Quiz Club") {
		t.Errorf("Expected registration notice, got %q", msg.text)
	}

	m.HandleChatMemberUpdate(&tgbotapi.ChatMemberUpdated{
		Chat: tgbotapi.Chat{ID: -100, Type: "supergroup", Title: "Quiz Club"},
		From: tgbotapi.User{ID: 2},
		NewChatMember: tgbotapi.ChatMember{
			Status: "kicked",
		},
	})

	groups, err = m.groups.ListGroups(1)
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("Expected group removed, got %+v", groups)
	}
}

func TestCancelMidFlow(t *testing.T) {
	m, bot, _ := testManager(t)
	const userID, groupID = int64(1), int64(-100)

	if err := m.groups.RecordGroup(userID, groupID, "Quiz Club"); err != nil {
		t.Fatalf("RecordGroup failed: %v", err)
	}
	m.HandleCallback(privateCallback(userID, fmt.Sprintf("choose_group:%d", groupID)))
	m.HandleCallback(privateCallback(userID, "quiz_size:2"))
	m.HandleAuthoringInput(privateMessage(userID, "half a question"))

	m.HandleMessage(privateMessage(userID, BtnCancel))

	if msg, _ := bot.lastMessageTo(userID); msg.text != MsgQuizCancelled {
		t.Errorf("Expected cancellation notice, got %q", msg.text)
	}
	if _, ok := m.quizzes.ActiveSession(groupID); ok {
		t.Error("Expected session dropped by cancel")
	}
	if m.quizzes.State(userID) != quiz.StateIdle {
		t.Errorf("Expected idle state, got %q", m.quizzes.State(userID))
	}
}
