package quiz

import (
	"sync"

	"github.com/quizhost/quiz_bot/pkg/errors"
	"github.com/quizhost/quiz_bot/pkg/logger"
)

// Service is the façade the transport layer talks to. It owns the session
// registry, the draft store and the per-user authoring machines, and calls
// out to the results store and the event transport.
type Service struct {
	registry *Registry
	drafts   *DraftStore
	results  ResultsStore
	events   EventTransport
	reserved map[string]struct{}

	mu      sync.Mutex
	authors map[int64]*author
}

// NewService wires the engine. reservedTokens are UI labels (menu buttons
// and the like) that must never be accepted as question or option text.
func NewService(results ResultsStore, events EventTransport, reservedTokens []string) *Service {
	reserved := make(map[string]struct{}, len(reservedTokens))
	for _, token := range reservedTokens {
		reserved[token] = struct{}{}
	}

	return &Service{
		registry: NewRegistry(),
		drafts:   NewDraftStore(),
		results:  results,
		events:   events,
		reserved: reserved,
		authors:  make(map[int64]*author),
	}
}

// StartAuthoring opens a session of targetSize questions for the group and
// puts the creator into the question-collection flow. An existing session
// for the group is replaced, not merged; the previous creator's flow is
// reset if it pointed at the same group.
func (s *Service) StartAuthoring(ownerID, groupID int64, targetSize int) (int64, error) {
	quizID, err := s.registry.CreateSession(ownerID, groupID, targetSize)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	for id, a := range s.authors {
		if id != ownerID && a.groupID == groupID {
			delete(s.authors, id)
			s.drafts.Clear(id)
		}
	}
	s.authors[ownerID] = &author{state: StateAwaitingQuestion, groupID: groupID}
	s.mu.Unlock()

	s.drafts.Clear(ownerID)

	logger.Info("Quiz authoring started",
		"quiz_id", quizID,
		"group_id", groupID,
		"owner_id", ownerID,
		"target_size", targetSize)

	return quizID, nil
}

// State returns the creator's current authoring state.
func (s *Service) State(ownerID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.authors[ownerID]
	if !ok {
		return StateIdle
	}
	return a.state
}

// OwnedSession returns a copy of the session the user is authoring.
func (s *Service) OwnedSession(ownerID int64) (Session, bool) {
	return s.registry.FindByOwner(ownerID)
}

// ActiveSession returns a copy of the group's session.
func (s *Service) ActiveSession(groupID int64) (Session, bool) {
	return s.registry.Get(groupID)
}

// PublishOutcome reports what happened to one question during publish.
type PublishOutcome struct {
	Index  int
	PollID string
	Err    error
}

// Publish sends every not-yet-published question of the owner's session to
// the group, in authoring order, and binds the returned poll ids for answer
// correlation. A transport failure on one question is recorded in its
// outcome and publishing continues with the next.
func (s *Service) Publish(ownerID int64) ([]PublishOutcome, error) {
	session, ok := s.registry.FindByOwner(ownerID)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "no quiz session to publish")
	}
	if !session.Ready() {
		return nil, errors.New(errors.ErrCodeValidation, "quiz is not fully authored yet")
	}

	outcomes := make([]PublishOutcome, 0, len(session.Questions))
	for i, q := range session.Questions {
		if q.PollID != "" {
			continue
		}

		pollID, err := s.events.PublishQuestionEvent(session.GroupID, q.Text, q.Options, q.CorrectIndex)
		if err != nil {
			wrapped := errors.Wrap(err, errors.ErrCodeTransport, "failed to publish question")
			logger.Error("Question publish failed",
				"quiz_id", session.QuizID,
				"group_id", session.GroupID,
				"question_index", i,
				"error", err)
			outcomes = append(outcomes, PublishOutcome{Index: i, Err: wrapped})
			continue
		}

		s.registry.BindPoll(session.GroupID, i, pollID)
		outcomes = append(outcomes, PublishOutcome{Index: i, PollID: pollID})
	}

	s.mu.Lock()
	if a, ok := s.authors[ownerID]; ok && a.groupID == session.GroupID {
		delete(s.authors, ownerID)
	}
	s.mu.Unlock()
	s.drafts.Clear(ownerID)

	logger.Info("Quiz published",
		"quiz_id", session.QuizID,
		"group_id", session.GroupID,
		"questions", len(session.Questions))

	return outcomes, nil
}

// Cancel abandons the creator's authoring flow and removes the session it
// was building. Cancelling when nothing is in progress is a no-op.
func (s *Service) Cancel(ownerID int64) {
	s.mu.Lock()
	a, ok := s.authors[ownerID]
	if ok {
		delete(s.authors, ownerID)
	}
	s.mu.Unlock()

	s.drafts.Clear(ownerID)

	if ok {
		if session, found := s.registry.Get(a.groupID); found && session.OwnerID == ownerID {
			s.registry.Clear(a.groupID)
		}
		logger.Info("Quiz authoring cancelled", "owner_id", ownerID, "group_id", a.groupID)
	}
}
