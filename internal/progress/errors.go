package progress

import "errors"

var (
	// ErrRoomNotFound is returned when a room id resolves to nothing.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomLocked is returned when moving to a room that has not been unlocked.
	ErrRoomLocked = errors.New("room is locked")
	// ErrQuestionNotFound is returned when a question id resolves to nothing.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrAlreadyAnswered is returned when a question has already been consumed.
	// Callers get a rejection rather than a silent no-op so a UI bug can be
	// told apart from a legitimate re-ask.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrValidation indicates persisted save data failed sanitization.
	ErrValidation = errors.New("invalid save data")
	// ErrPersistence indicates the save storage is unavailable.
	ErrPersistence = errors.New("save storage unavailable")
)

// errorType maps an error to the type label published on the error event
// channel.
func errorType(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, ErrRoomLocked):
		return "room_locked"
	case errors.Is(err, ErrQuestionNotFound):
		return "question_not_found"
	case errors.Is(err, ErrAlreadyAnswered):
		return "already_answered"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	default:
		return "internal"
	}
}
