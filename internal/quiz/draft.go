package quiz

import "sync"

// Draft is the question a creator is currently composing. Drafts are keyed
// by the authoring user, never by group, and are invisible to other users.
type Draft struct {
	Question string
	Options  []string
}

// DraftStore holds one scratch draft per authoring user.
type DraftStore struct {
	mu     sync.Mutex
	drafts map[int64]*Draft
}

func NewDraftStore() *DraftStore {
	return &DraftStore{
		drafts: make(map[int64]*Draft),
	}
}

// Get returns a copy of the user's draft.
func (d *DraftStore) Get(userID int64) Draft {
	d.mu.Lock()
	defer d.mu.Unlock()

	draft, ok := d.drafts[userID]
	if !ok {
		return Draft{}
	}
	return Draft{
		Question: draft.Question,
		Options:  append([]string(nil), draft.Options...),
	}
}

// SetQuestion starts a fresh draft holding only the question text.
func (d *DraftStore) SetQuestion(userID int64, question string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.drafts[userID] = &Draft{Question: question}
}

// AppendOption adds one option and returns the new option count.
func (d *DraftStore) AppendOption(userID int64, option string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	draft, ok := d.drafts[userID]
	if !ok {
		draft = &Draft{}
		d.drafts[userID] = draft
	}
	draft.Options = append(draft.Options, option)
	return len(draft.Options)
}

// Clear drops the user's draft.
func (d *DraftStore) Clear(userID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.drafts, userID)
}
