package game

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Question is a multiple-choice trivia question. The correct answer is an
// index into Answers rather than a separate option id, matching the wire
// shape the browser client submits.
type Question struct {
	Prompt     string `json:"prompt"`
	Category   string `json:"category,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`

	// Answers is the ordered list of choices shown to the player.
	Answers []string `json:"answers"`

	// CorrectAnswer is the zero-based index of the right choice.
	CorrectAnswer int `json:"correct_answer"`

	// Points awarded for a correct answer, before any time bonus.
	Points int `json:"points"`

	// Explanation is shown after answering, correct or not.
	Explanation string `json:"explanation,omitempty"`
}

// Validate satisfies storage.ValidatingSpec.
func (q *Question) Validate() error {
	el := errors.NewErrorList()

	if q.Prompt == "" {
		el.Add(fmt.Errorf("prompt is required"))
	}

	if len(q.Answers) < 2 {
		el.Add(fmt.Errorf("at least two answers are required"))
	} else {
		for i, a := range q.Answers {
			if a == "" {
				el.Add(fmt.Errorf("answer %d must not be empty", i))
			}
		}
	}

	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Answers) {
		el.Add(fmt.Errorf("correct_answer %d is out of range", q.CorrectAnswer))
	}

	if q.Points <= 0 {
		el.Add(fmt.Errorf("points must be positive"))
	}

	switch q.Difficulty {
	case "", DifficultyEasy, DifficultyMedium, DifficultyHard:
		// valid
	default:
		el.Add(fmt.Errorf("invalid difficulty: %s (must be %s, %s, or %s)",
			q.Difficulty, DifficultyEasy, DifficultyMedium, DifficultyHard))
	}

	return el.Err()
}
