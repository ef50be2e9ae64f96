package quiz

import "github.com/quizhost/quiz_bot/pkg/logger"

// HandlePollAnswer maps one incoming poll answer back to the question it
// belongs to and tallies it. Answers whose poll id matches no live session
// are dropped; they belong to an already-terminated or replaced quiz and
// are not an error. Persistence failures are logged and the answer is lost,
// there is no retry.
func (s *Service) HandlePollAnswer(pollID string, userID int64, optionIDs []int) {
	binding, ok := s.registry.LookupPoll(pollID)
	if !ok {
		logger.Debug("Dropping answer for unknown poll", "poll_id", pollID, "user_id", userID)
		return
	}

	wasCorrect := len(optionIDs) == 1 && optionIDs[0] == binding.CorrectIndex

	if err := s.results.IncrementScore(binding.QuizID, userID, binding.GroupID, wasCorrect); err != nil {
		logger.Error("Failed to record poll answer",
			"quiz_id", binding.QuizID,
			"group_id", binding.GroupID,
			"user_id", userID,
			"error", err)
	}
}
