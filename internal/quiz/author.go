package quiz

import (
	"strconv"
	"strings"
)

// Authoring states. A user is in exactly one state; StateIdle means no
// authoring flow is in progress.
const (
	StateIdle                  = ""
	StateAwaitingQuestion      = "awaiting_question"
	StateAwaitingOptions       = "awaiting_options"
	StateAwaitingCorrectAnswer = "awaiting_correct_answer"
	StateReadyToPublish        = "ready_to_publish"
)

// DoneToken closes option collection for the current draft.
const DoneToken = "/done"

// minOptions is the smallest option list a poll question may carry.
const minOptions = 2

// RejectReason explains why an authoring input was refused. The state does
// not advance on a rejection.
type RejectReason string

const (
	RejectNone          RejectReason = ""
	RejectNotAuthoring  RejectReason = "not_authoring"
	RejectEmptyText     RejectReason = "empty_text"
	RejectReservedToken RejectReason = "reserved_token"
	RejectCommand       RejectReason = "unexpected_command"
	RejectTooFewOptions RejectReason = "too_few_options"
	RejectNotANumber    RejectReason = "not_a_number"
	RejectIndexRange    RejectReason = "index_out_of_range"
	RejectNoSession     RejectReason = "session_gone"
)

// InputResult tells the caller what one authoring input did: the state the
// flow is now in, the rejection reason when the input was refused, and the
// progress counters the UI reports back to the creator.
type InputResult struct {
	State          string
	Reject         RejectReason
	OptionCount    int
	QuestionsDone  int
	QuestionsLeft  int
	ReadyToPublish bool
}

func rejected(state string, reason RejectReason) InputResult {
	return InputResult{State: state, Reject: reason}
}

// author tracks one user's authoring flow: their machine state and the
// group their session lives in.
type author struct {
	state   string
	groupID int64
}

// SubmitInput feeds one text input from the creator through the authoring
// state machine. Inputs are interpreted by the current state only: question
// text, then options until DoneToken, then the zero-based correct index.
// Rejected inputs leave the state unchanged.
func (s *Service) SubmitInput(ownerID int64, text string) InputResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.authors[ownerID]
	if !ok || a.state == StateIdle {
		return rejected(StateIdle, RejectNotAuthoring)
	}

	text = strings.TrimSpace(text)

	switch a.state {
	case StateAwaitingQuestion:
		return s.acceptQuestion(ownerID, a, text)
	case StateAwaitingOptions:
		return s.acceptOption(ownerID, a, text)
	case StateAwaitingCorrectAnswer:
		return s.acceptCorrectIndex(ownerID, a, text)
	case StateReadyToPublish:
		// Everything is collected; only publish or cancel move the flow on.
		return rejected(StateReadyToPublish, RejectCommand)
	default:
		return rejected(StateIdle, RejectNotAuthoring)
	}
}

func (s *Service) acceptQuestion(ownerID int64, a *author, text string) InputResult {
	if text == "" {
		return rejected(a.state, RejectEmptyText)
	}
	if s.isReserved(text) {
		return rejected(a.state, RejectReservedToken)
	}
	if strings.HasPrefix(text, "/") {
		return rejected(a.state, RejectCommand)
	}

	s.drafts.SetQuestion(ownerID, text)
	a.state = StateAwaitingOptions
	return InputResult{State: a.state}
}

func (s *Service) acceptOption(ownerID int64, a *author, text string) InputResult {
	if text == DoneToken {
		draft := s.drafts.Get(ownerID)
		if len(draft.Options) < minOptions {
			return rejected(a.state, RejectTooFewOptions)
		}
		a.state = StateAwaitingCorrectAnswer
		return InputResult{State: a.state, OptionCount: len(draft.Options)}
	}

	if text == "" {
		return rejected(a.state, RejectEmptyText)
	}
	if s.isReserved(text) {
		return rejected(a.state, RejectReservedToken)
	}
	if strings.HasPrefix(text, "/") {
		return rejected(a.state, RejectCommand)
	}

	count := s.drafts.AppendOption(ownerID, text)
	return InputResult{State: a.state, OptionCount: count}
}

func (s *Service) acceptCorrectIndex(ownerID int64, a *author, text string) InputResult {
	index, err := strconv.Atoi(text)
	if err != nil {
		return rejected(a.state, RejectNotANumber)
	}

	draft := s.drafts.Get(ownerID)
	if index < 0 || index >= len(draft.Options) {
		return rejected(a.state, RejectIndexRange)
	}

	appended := s.registry.AppendQuestion(a.groupID, Question{
		Text:         draft.Question,
		Options:      draft.Options,
		CorrectIndex: index,
	})
	if !appended {
		// The session was terminated or replaced under us; the flow cannot
		// continue, so reset the author to idle.
		s.drafts.Clear(ownerID)
		a.state = StateIdle
		return rejected(StateIdle, RejectNoSession)
	}

	s.drafts.Clear(ownerID)

	session, _ := s.registry.Get(a.groupID)
	if session.Ready() {
		a.state = StateReadyToPublish
		return InputResult{
			State:          a.state,
			QuestionsDone:  len(session.Questions),
			ReadyToPublish: true,
		}
	}

	a.state = StateAwaitingQuestion
	return InputResult{
		State:         a.state,
		QuestionsDone: len(session.Questions),
		QuestionsLeft: session.Remaining(),
	}
}

func (s *Service) isReserved(text string) bool {
	_, ok := s.reserved[text]
	return ok
}
