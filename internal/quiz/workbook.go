package quiz

import (
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/quizhost/quiz_bot/internal/security"
	"github.com/quizhost/quiz_bot/pkg/errors"
	"github.com/quizhost/quiz_bot/pkg/logger"
	"github.com/quizhost/quiz_bot/pkg/utils"
)

// ImportResult summarizes a workbook import.
type ImportResult struct {
	Imported      int
	Skipped       int
	Ready         bool
	QuestionsLeft int
}

// ImportWorkbook bulk-appends questions from an xlsx sheet to the creator's
// session. Expected layout, one question per row on the first sheet:
//
//	question text | zero-based correct index | option 1 | option 2 | ...
//
// Rows that fail validation are skipped and counted; the import stops once
// the session has its full question count. Only allowed while the creator
// is between questions.
func (s *Service) ImportWorkbook(ownerID int64, r io.Reader) (ImportResult, error) {
	s.mu.Lock()
	a, ok := s.authors[ownerID]
	if !ok || a.state != StateAwaitingQuestion {
		s.mu.Unlock()
		return ImportResult{}, errors.New(errors.ErrCodeValidation, "workbook import is only possible while waiting for a question")
	}
	groupID := a.groupID
	s.mu.Unlock()

	f, err := excelize.OpenReader(r)
	if err != nil {
		return ImportResult{}, errors.Wrap(err, errors.ErrCodeValidation, "failed to open workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ImportResult{}, errors.New(errors.ErrCodeValidation, "workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return ImportResult{}, errors.Wrap(err, errors.ErrCodeValidation, "failed to read workbook rows")
	}

	var out ImportResult
	for i, row := range rows {
		session, found := s.registry.Get(groupID)
		if !found {
			return out, errors.New(errors.ErrCodeNotFound, "quiz session disappeared during import")
		}
		if session.Ready() {
			break
		}

		q, rowOK := parseWorkbookRow(row)
		if !rowOK {
			// The first unparsable row is assumed to be a header.
			if i > 0 {
				out.Skipped++
			}
			continue
		}

		if s.registry.AppendQuestion(groupID, q) {
			out.Imported++
		} else {
			out.Skipped++
		}
	}

	session, found := s.registry.Get(groupID)
	if found && session.Ready() {
		s.mu.Lock()
		if a, ok := s.authors[ownerID]; ok {
			a.state = StateReadyToPublish
		}
		s.mu.Unlock()
		out.Ready = true
	} else if found {
		out.QuestionsLeft = session.Remaining()
	}

	logger.Info("Workbook imported",
		"owner_id", ownerID,
		"group_id", groupID,
		"imported", out.Imported,
		"skipped", out.Skipped)

	return out, nil
}

func parseWorkbookRow(row []string) (Question, bool) {
	if len(row) < 4 {
		return Question{}, false
	}

	question := security.SanitizeAuthorInput(row[0])
	if question == "" {
		return Question{}, false
	}

	correct, err := strconv.Atoi(security.SanitizeAuthorInput(row[1]))
	if err != nil {
		return Question{}, false
	}

	options := make([]string, 0, len(row)-2)
	for _, cell := range row[2:] {
		option := security.SanitizeAuthorInput(cell)
		if option == "" {
			continue
		}
		options = append(options, utils.TruncateRunes(option, utils.PollOptionMaxLen))
	}

	if len(options) < minOptions {
		return Question{}, false
	}
	if correct < 0 || correct >= len(options) {
		return Question{}, false
	}

	return Question{
		Text:         utils.TruncateRunes(question, utils.PollQuestionMaxLen),
		Options:      options,
		CorrectIndex: correct,
	}, true
}
