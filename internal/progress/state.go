package progress

import "time"

// State holds all mutable progression data for a single play session. It is
// owned by the Engine and mutated exclusively through MoveToRoom,
// AnswerQuestion, and the persistence operations.
//
// Invariants maintained by the engine:
//   - CurrentRoomId is always a member of UnlockedRooms.
//   - VisitedRooms is a subset of UnlockedRooms.
//   - UnlockedRooms always contains the starting room and never shrinks.
//   - Score never decreases and Completed never reverts to false.
type State struct {
	CurrentRoomId string
	Score         int

	VisitedRooms      map[string]struct{}
	UnlockedRooms     map[string]struct{}
	AnsweredQuestions map[string]struct{}

	// CorrectAnswers tracks which consumed questions were answered
	// correctly. It is derived state (a question is only consumed on a
	// correct answer) but kept explicit so accuracy math never has to be
	// reconstructed from the score.
	CorrectAnswers map[string]struct{}

	StartTime  time.Time
	Completed  bool
	PlayerName string
}

func newState(startRoomId string, now time.Time) *State {
	return &State{
		CurrentRoomId: startRoomId,
		VisitedRooms: map[string]struct{}{
			startRoomId: {},
		},
		UnlockedRooms: map[string]struct{}{
			startRoomId: {},
		},
		AnsweredQuestions: map[string]struct{}{},
		CorrectAnswers:    map[string]struct{}{},
		StartTime:         now,
	}
}

func (s *State) visited(roomId string) bool {
	_, ok := s.VisitedRooms[roomId]
	return ok
}

func (s *State) unlocked(roomId string) bool {
	_, ok := s.UnlockedRooms[roomId]
	return ok
}

func (s *State) answered(questionId string) bool {
	_, ok := s.AnsweredQuestions[questionId]
	return ok
}
