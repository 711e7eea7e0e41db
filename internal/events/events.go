package events

import "github.com/pixil98/go-quest/internal/game"

// Event names published by the progression engine.
const (
	RoomChangedEvent         = "room_changed"
	RoomUnlockedEvent        = "room_unlocked"
	ScoreChangedEvent        = "score_changed"
	QuestionAnsweredEvent    = "question_answered"
	GameCompletedEvent       = "game_completed"
	GameSavedEvent           = "game_saved"
	GameLoadedEvent          = "game_loaded"
	GameResetEvent           = "game_reset"
	AchievementUnlockedEvent = "achievement_unlocked"
	ErrorEvent               = "error"
)

// RoomChanged is published after a successful move.
type RoomChanged struct {
	From string     `json:"from"`
	To   string     `json:"to"`
	Room *game.Room `json:"room"`
}

// RoomUnlocked is published once per newly unlocked room.
type RoomUnlocked struct {
	RoomId string `json:"roomId"`
}

// ScoreChanged is published when a correct answer awards points.
type ScoreChanged struct {
	Score         int `json:"score"`
	PointsEarned  int `json:"pointsEarned"`
	PreviousScore int `json:"previousScore"`
}

// QuestionAnswered is published for every answer attempt, correct or not.
type QuestionAnswered struct {
	QuestionId         string `json:"questionId"`
	IsCorrect          bool   `json:"isCorrect"`
	PointsEarned       int    `json:"pointsEarned"`
	CurrentScore       int    `json:"currentScore"`
	CorrectAnswerIndex int    `json:"correctAnswerIndex"`
	Explanation        string `json:"explanation,omitempty"`
}

// GameCompleted is published at most once per session, when all completion
// criteria first hold.
type GameCompleted struct {
	FinalScore        int     `json:"finalScore"`
	PlayTime          int64   `json:"playTime"` // milliseconds
	RoomsVisited      int     `json:"roomsVisited"`
	TotalRooms        int     `json:"totalRooms"`
	QuestionsAnswered int     `json:"questionsAnswered"`
	TotalQuestions    int     `json:"totalQuestions"`
	Accuracy          float64 `json:"accuracy"`
	IsPerfectGame     bool    `json:"isPerfectGame"`
	IsSpeedRun        bool    `json:"isSpeedRun"`
}

// AchievementUnlocked is published when a milestone threshold is first met.
type AchievementUnlocked struct {
	AchievementId string `json:"achievementId"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
}

// GameReset is published after a session is reset to a fresh state.
type GameReset struct{}

// Error mirrors operation failures onto the bus so passive observers can
// react without the caller re-plumbing them.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
