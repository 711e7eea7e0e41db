package progress

import "time"

const (
	// MaxBonusTime is the window after the question timer starts during
	// which a correct answer still earns a time bonus.
	MaxBonusTime = 10 * time.Second

	// MaxTimeBonus is the bonus for an instantaneous answer; it decays
	// linearly to zero over MaxBonusTime.
	MaxTimeBonus = 50

	// CompletionBonus is added to the final score once the session is
	// completed.
	CompletionBonus = 500

	// ExplorationBonusPerRoom rewards each distinct room visited.
	ExplorationBonusPerRoom = 10

	// PerfectBonus is granted for 100% answer accuracy.
	PerfectBonus = 1000

	// SpeedBonus is granted when the session finishes under SpeedRunTime.
	SpeedBonus = 750

	// SpeedRunTime is the play-time threshold for the speed bonus and the
	// speed-run flag.
	SpeedRunTime = 10 * time.Minute
)

// Completion thresholds, all in percent. All three must hold at once.
const (
	roomsCompletionPct     = 80.0
	questionsCompletionPct = 70.0
	accuracyCompletionPct  = 70.0
)

// TimeBonus returns the extra points for answering elapsed after the
// question timer started. The decay is linear with discrete steps from
// flooring; anything at or past MaxBonusTime earns nothing.
func TimeBonus(elapsed time.Duration) int {
	if elapsed < 0 || elapsed >= MaxBonusTime {
		return 0
	}
	frac := 1 - float64(elapsed)/float64(MaxBonusTime)
	return int(float64(MaxTimeBonus) * frac)
}

// Accuracy returns the percentage of consumed questions answered correctly.
// It is 0 when nothing has been answered yet.
func Accuracy(s *State) float64 {
	if len(s.AnsweredQuestions) == 0 {
		return 0
	}
	return float64(len(s.CorrectAnswers)) / float64(len(s.AnsweredQuestions)) * 100
}

// FinalScore derives the headline score from the raw accumulator and the
// on-demand bonuses. The bonuses are never written back into State.Score,
// which stays a plain audit trail of points earned from answers.
func FinalScore(s *State, playTime time.Duration) int {
	total := s.Score

	if s.Completed {
		total += CompletionBonus
	}

	total += ExplorationBonusPerRoom * len(s.VisitedRooms)

	if len(s.AnsweredQuestions) > 0 && Accuracy(s) == 100 {
		total += PerfectBonus
	}

	if playTime < SpeedRunTime {
		total += SpeedBonus
	}

	return total
}

// CompletionResult is the outcome of evaluating the completion criteria
// against the current state and content totals.
type CompletionResult struct {
	RoomsPercentage     float64
	QuestionsPercentage float64
	Accuracy            float64
	Met                 bool

	// Descriptive flags attached to the completion payload; they do not
	// gate the transition.
	IsPerfectGame bool
	IsSpeedRun    bool
}

// EvaluateCompletion checks the three joint criteria: room coverage,
// question coverage, and accuracy. The one-way Completed transition itself
// is guarded by the engine, not here.
func EvaluateCompletion(s *State, totalRooms, totalQuestions int, playTime time.Duration) CompletionResult {
	var res CompletionResult

	if totalRooms > 0 {
		res.RoomsPercentage = float64(len(s.VisitedRooms)) / float64(totalRooms) * 100
	}
	if totalQuestions > 0 {
		res.QuestionsPercentage = float64(len(s.AnsweredQuestions)) / float64(totalQuestions) * 100
	}
	res.Accuracy = Accuracy(s)

	res.Met = res.RoomsPercentage >= roomsCompletionPct &&
		res.QuestionsPercentage >= questionsCompletionPct &&
		res.Accuracy >= accuracyCompletionPct

	res.IsPerfectGame = res.RoomsPercentage == 100 && res.Accuracy == 100
	res.IsSpeedRun = playTime < SpeedRunTime

	return res
}
