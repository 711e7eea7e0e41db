package game

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

const (
	AchievementKindScore     = "score"     // total score reaches Threshold
	AchievementKindRooms     = "rooms"     // rooms visited reaches Threshold
	AchievementKindQuestions = "questions" // questions answered reaches Threshold
)

// Achievement is a content-defined milestone. The progression engine checks
// thresholds after each scoring event; what the client does with an unlock
// is presentation and none of our business.
type Achievement struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Kind        string `json:"kind"`
	Threshold   int    `json:"threshold"`
}

// Validate satisfies storage.ValidatingSpec.
func (a *Achievement) Validate() error {
	el := errors.NewErrorList()

	if a.Name == "" {
		el.Add(fmt.Errorf("achievement name is required"))
	}

	switch a.Kind {
	case AchievementKindScore, AchievementKindRooms, AchievementKindQuestions:
		// valid
	case "":
		el.Add(fmt.Errorf("kind is required (must be %s, %s, or %s)",
			AchievementKindScore, AchievementKindRooms, AchievementKindQuestions))
	default:
		el.Add(fmt.Errorf("invalid kind: %s (must be %s, %s, or %s)",
			a.Kind, AchievementKindScore, AchievementKindRooms, AchievementKindQuestions))
	}

	if a.Threshold <= 0 {
		el.Add(fmt.Errorf("threshold must be positive"))
	}

	return el.Err()
}
