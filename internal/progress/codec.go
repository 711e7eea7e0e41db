package progress

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Record is the flat persisted layout of a session. Sets are stored as
// sorted lists; ordering carries no meaning. Timestamps are unix
// milliseconds.
type Record struct {
	CurrentRoomId     string   `json:"currentRoomId"`
	Score             int      `json:"score"`
	VisitedRooms      []string `json:"visitedRooms"`
	UnlockedRooms     []string `json:"unlockedRooms"`
	AnsweredQuestions []string `json:"answeredQuestions"`
	StartTime         int64    `json:"startTime"`
	GameCompleted     bool     `json:"gameCompleted"`
	PlayerName        string   `json:"playerName"`
	SaveTime          int64    `json:"saveTime"`
}

// Sanitization limits for inbound save data. Saves come from client-side
// storage and are treated as adversarial until proven otherwise.
const (
	maxRoomIdLen       = 50
	maxQuestionIdLen   = 100
	maxRoomEntries     = 20
	maxQuestionEntries = 100
	maxPlayerNameLen   = 50

	// Timestamps further than this from now are rejected.
	timestampDrift = 365 * 24 * time.Hour
)

var (
	saveIdPattern  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
)

// Encode serializes a state into its persisted record form.
func Encode(s *State, saveTime time.Time) ([]byte, error) {
	rec := NewRecord(s, saveTime)

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshalling save record: %w", err)
	}
	return data, nil
}

// NewRecord builds the persisted record for a state without serializing it.
func NewRecord(s *State, saveTime time.Time) *Record {
	return &Record{
		CurrentRoomId:     s.CurrentRoomId,
		Score:             s.Score,
		VisitedRooms:      sortedKeys(s.VisitedRooms),
		UnlockedRooms:     sortedKeys(s.UnlockedRooms),
		AnsweredQuestions: sortedKeys(s.AnsweredQuestions),
		StartTime:         s.StartTime.UnixMilli(),
		GameCompleted:     s.Completed,
		PlayerName:        s.PlayerName,
		SaveTime:          saveTime.UnixMilli(),
	}
}

// rawRecord mirrors Record with loose types so a save written by an older
// or tampered client fails on the field that is wrong rather than somewhere
// downstream. Absent fields stay nil and fall back to defaults.
type rawRecord struct {
	CurrentRoomId     *string  `json:"currentRoomId"`
	Score             *float64 `json:"score"`
	VisitedRooms      []string `json:"visitedRooms"`
	UnlockedRooms     []string `json:"unlockedRooms"`
	AnsweredQuestions []string `json:"answeredQuestions"`
	StartTime         *float64 `json:"startTime"`
	GameCompleted     *bool    `json:"gameCompleted"`
	PlayerName        *string  `json:"playerName"`
	SaveTime          *float64 `json:"saveTime"`
}

// Decode validates and sanitizes a persisted record, producing a state that
// is safe to resume. Any structural or type problem is reported as
// ErrValidation so the caller can discard the save and start fresh; the
// engine must never resume into a half-sanitized state.
//
// startingRoomId anchors the invariant repair: it is always force-included
// in the unlocked set and becomes the current room when the persisted one
// is unusable.
func Decode(data []byte, startingRoomId string, now time.Time) (*State, error) {
	var raw *rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	// A bare JSON null unmarshals without error; only objects are records.
	if raw == nil {
		return nil, fmt.Errorf("%w: record is null", ErrValidation)
	}

	s := newState(startingRoomId, now)

	if raw.Score != nil {
		score := int(*raw.Score)
		if score < 0 {
			score = 0
		}
		s.Score = score
	}

	unlocked := sanitizeIds(raw.UnlockedRooms, maxRoomIdLen, maxRoomEntries)
	unlocked[startingRoomId] = struct{}{}
	s.UnlockedRooms = unlocked

	// Visited rooms outside the unlocked set would break the containment
	// invariant; drop them rather than guessing how they got there.
	visited := sanitizeIds(raw.VisitedRooms, maxRoomIdLen, maxRoomEntries)
	s.VisitedRooms = map[string]struct{}{}
	for id := range visited {
		if _, ok := unlocked[id]; ok {
			s.VisitedRooms[id] = struct{}{}
		}
	}

	s.AnsweredQuestions = sanitizeIds(raw.AnsweredQuestions, maxQuestionIdLen, maxQuestionEntries)

	// Questions are only consumed on a correct answer, so everything in
	// the persisted answered set counts as correct on restore.
	s.CorrectAnswers = map[string]struct{}{}
	for id := range s.AnsweredQuestions {
		s.CorrectAnswers[id] = struct{}{}
	}

	s.CurrentRoomId = startingRoomId
	if raw.CurrentRoomId != nil && validSaveId(*raw.CurrentRoomId, maxRoomIdLen) {
		if _, ok := unlocked[*raw.CurrentRoomId]; ok {
			s.CurrentRoomId = *raw.CurrentRoomId
		}
	}
	s.VisitedRooms[s.CurrentRoomId] = struct{}{}

	s.StartTime = sanitizeTimestamp(raw.StartTime, now)

	if raw.GameCompleted != nil {
		s.Completed = *raw.GameCompleted
	}

	if raw.PlayerName != nil {
		s.PlayerName = SanitizePlayerName(*raw.PlayerName)
	}

	return s, nil
}

// SanitizePlayerName strips markup, trims whitespace, and bounds length.
func SanitizePlayerName(name string) string {
	name = htmlTagPattern.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	if len(name) > maxPlayerNameLen {
		name = name[:maxPlayerNameLen]
	}
	return name
}

func validSaveId(id string, maxLen int) bool {
	return len(id) > 0 && len(id) <= maxLen && saveIdPattern.MatchString(id)
}

func sanitizeIds(ids []string, maxLen, maxEntries int) map[string]struct{} {
	out := map[string]struct{}{}
	for _, id := range ids {
		if len(out) >= maxEntries {
			break
		}
		if validSaveId(id, maxLen) {
			out[id] = struct{}{}
		}
	}
	return out
}

// sanitizeTimestamp rejects values more than a year from now in either
// direction and falls back to now when the field is absent or out of range.
func sanitizeTimestamp(raw *float64, now time.Time) time.Time {
	if raw == nil {
		return now
	}
	ts := time.UnixMilli(int64(*raw))
	if ts.Before(now.Add(-timestampDrift)) || ts.After(now.Add(timestampDrift)) {
		return now
	}
	return ts
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
