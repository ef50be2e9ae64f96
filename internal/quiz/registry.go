package quiz

import (
	"sync"
	"time"

	"github.com/quizhost/quiz_bot/pkg/errors"
)

// Registry holds the active quiz session of every group. All mutations of a
// group's entry go through the registry mutex, so two authors can never race
// a question append against a concurrent publish bind or termination clear.
// The registry performs no I/O.
type Registry struct {
	mu         sync.RWMutex
	sessions   map[int64]*Session
	lastQuizID int64
}

// PollBinding is the correlation record for one published question.
type PollBinding struct {
	QuizID       int64
	GroupID      int64
	CorrectIndex int
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[int64]*Session),
	}
}

// CreateSession opens a new session for the group and returns its quiz id.
// Any previous session for the group is replaced wholesale.
func (r *Registry) CreateSession(ownerID, groupID int64, targetSize int) (int64, error) {
	if targetSize < 2 {
		return 0, errors.New(errors.ErrCodeValidation, "quiz must have at least 2 questions")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	quizID := r.nextQuizIDLocked()
	r.sessions[groupID] = &Session{
		QuizID:     quizID,
		GroupID:    groupID,
		OwnerID:    ownerID,
		TargetSize: targetSize,
	}

	return quizID, nil
}

// Time-derived ids are unique enough across restarts; the bump guards
// against two sessions created within the same second.
func (r *Registry) nextQuizIDLocked() int64 {
	id := time.Now().Unix()
	if id <= r.lastQuizID {
		id = r.lastQuizID + 1
	}
	r.lastQuizID = id
	return id
}

// AppendQuestion adds a finalized question to the group's session, keeping
// authoring order. It refuses when no session exists or the session already
// holds its full question count.
func (r *Registry) AppendQuestion(groupID int64, q Question) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[groupID]
	if !ok {
		return false
	}
	if len(session.Questions) >= session.TargetSize {
		return false
	}

	q.Options = append([]string(nil), q.Options...)
	session.Questions = append(session.Questions, q)
	return true
}

// IsReady reports whether the group's session has all its questions.
func (r *Registry) IsReady(groupID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[groupID]
	return ok && session.Ready()
}

// BindPoll records the poll id a published question is answerable under.
// Out-of-range indexes and missing sessions are ignored.
func (r *Registry) BindPoll(groupID int64, questionIndex int, pollID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[groupID]
	if !ok {
		return
	}
	if questionIndex < 0 || questionIndex >= len(session.Questions) {
		return
	}
	session.Questions[questionIndex].PollID = pollID
}

// Get returns a copy of the group's session.
func (r *Registry) Get(groupID int64) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[groupID]
	if !ok {
		return Session{}, false
	}
	return copySession(session), true
}

// FindByOwner returns a copy of the session owned by the given user.
func (r *Registry) FindByOwner(ownerID int64) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, session := range r.sessions {
		if session.OwnerID == ownerID {
			return copySession(session), true
		}
	}
	return Session{}, false
}

// LookupPoll scans the live sessions for the question bound to pollID. The
// scan runs entirely under a read lock and copies out the three fields the
// correlator needs, so the persistence write happens lock-free.
func (r *Registry) LookupPoll(pollID string) (PollBinding, bool) {
	if pollID == "" {
		return PollBinding{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, session := range r.sessions {
		for i := range session.Questions {
			if session.Questions[i].PollID == pollID {
				return PollBinding{
					QuizID:       session.QuizID,
					GroupID:      session.GroupID,
					CorrectIndex: session.Questions[i].CorrectIndex,
				}, true
			}
		}
	}
	return PollBinding{}, false
}

// Clear removes the group's session. Clearing an absent group is a no-op.
func (r *Registry) Clear(groupID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, groupID)
}

func copySession(s *Session) Session {
	out := *s
	out.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		q.Options = append([]string(nil), q.Options...)
		out.Questions[i] = q
	}
	return out
}
