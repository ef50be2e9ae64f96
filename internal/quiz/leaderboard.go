package quiz

import (
	"sort"

	"github.com/quizhost/quiz_bot/pkg/errors"
	"github.com/quizhost/quiz_bot/pkg/logger"
)

// BuildLeaderboard returns the quiz standings: most correct answers first,
// ties broken by fewer total answers. The sort is applied here even though
// the store orders its query, so a differently-ordered store still yields
// correct standings. An empty result is valid.
func (s *Service) BuildLeaderboard(quizID, groupID int64, limit int) ([]Row, error) {
	rows, err := s.results.FetchLeaderboardRows(quizID, groupID, limit)
	if err != nil {
		return nil, err
	}

	sortRows(rows)
	return rows, nil
}

func sortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].CorrectCount != rows[j].CorrectCount {
			return rows[i].CorrectCount > rows[j].CorrectCount
		}
		return rows[i].TotalCount < rows[j].TotalCount
	})
}

// Terminate ends the group's quiz: it reads the final leaderboard and then
// clears the session, in that order. When the leaderboard read fails the
// session is left in place so termination can be retried.
func (s *Service) Terminate(groupID int64, limit int) ([]Row, error) {
	session, ok := s.registry.Get(groupID)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "no active quiz in this group")
	}

	rows, err := s.BuildLeaderboard(session.QuizID, groupID, limit)
	if err != nil {
		return nil, err
	}

	s.registry.Clear(groupID)

	logger.Info("Quiz terminated",
		"quiz_id", session.QuizID,
		"group_id", groupID,
		"participants", len(rows))

	return rows, nil
}
