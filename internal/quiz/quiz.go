// Package quiz implements the in-memory quiz session engine: per-group
// active sessions, the question authoring state machine, correlation of
// Telegram poll answers back to the question that produced them, and
// leaderboard assembly on top of the durable results store.
package quiz

// Question is one finalized multiple-choice question of a session. Once
// appended to a session it never changes, except for PollID which is set
// exactly once when the question is published.
type Question struct {
	Text         string
	Options      []string
	CorrectIndex int
	PollID       string
}

// Session is the active quiz of one group. At most one session exists per
// group; starting a new quiz for the same group replaces the old one.
type Session struct {
	QuizID     int64
	GroupID    int64
	OwnerID    int64
	TargetSize int
	Questions  []Question
}

// Ready reports whether the session has collected its full question count.
func (s *Session) Ready() bool {
	return len(s.Questions) == s.TargetSize
}

// Remaining returns how many questions are still to be authored.
func (s *Session) Remaining() int {
	left := s.TargetSize - len(s.Questions)
	if left < 0 {
		return 0
	}
	return left
}

// Row is one leaderboard entry.
type Row struct {
	UserID       int64
	CorrectCount int
	TotalCount   int
}

// ResultsStore is the durable per-quiz score tally, implemented by the
// results repository. Increments must be atomic per (quiz, user, group) key.
type ResultsStore interface {
	IncrementScore(quizID, userID, groupID int64, wasCorrect bool) error
	FetchLeaderboardRows(quizID, groupID int64, limit int) ([]Row, error)
}

// EventTransport publishes one question as an answer-collecting event (a
// Telegram quiz poll) and returns the external event id answers will carry.
type EventTransport interface {
	PublishQuestionEvent(groupID int64, question string, options []string, correctIndex int) (string, error)
}
