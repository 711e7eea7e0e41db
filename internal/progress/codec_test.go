package progress

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	s := newState("entrance", now.Add(-5*time.Minute))
	s.Score = 140
	s.PlayerName = "Quinn"
	s.CurrentRoomId = "library"
	s.VisitedRooms = map[string]struct{}{"entrance": {}, "library": {}}
	s.UnlockedRooms = map[string]struct{}{"entrance": {}, "library": {}, "vault": {}}
	s.AnsweredQuestions = map[string]struct{}{"q1": {}, "q2": {}}
	s.CorrectAnswers = map[string]struct{}{"q1": {}, "q2": {}}
	s.Completed = true

	data, err := Encode(s, now)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	got, err := Decode(data, "entrance", now)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	testutil.AssertEqual(t, "current room", got.CurrentRoomId, "library")
	testutil.AssertEqual(t, "score", got.Score, 140)
	testutil.AssertEqual(t, "player name", got.PlayerName, "Quinn")
	testutil.AssertEqual(t, "completed", got.Completed, true)
	testutil.AssertEqual(t, "start time", got.StartTime.UnixMilli(), s.StartTime.UnixMilli())
	assertSameSet(t, "visited", got.VisitedRooms, "entrance", "library")
	assertSameSet(t, "unlocked", got.UnlockedRooms, "entrance", "library", "vault")
	assertSameSet(t, "answered", got.AnsweredQuestions, "q1", "q2")
	assertSameSet(t, "correct", got.CorrectAnswers, "q1", "q2")
}

func TestDecodeSanitization(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		data  string
		check func(t *testing.T, s *State)
	}{
		"negative score clamps to zero": {
			data: `{"score": -5}`,
			check: func(t *testing.T, s *State) {
				testutil.AssertEqual(t, "score", s.Score, 0)
			},
		},
		"fractional score truncates": {
			data: `{"score": 99.9}`,
			check: func(t *testing.T, s *State) {
				testutil.AssertEqual(t, "score", s.Score, 99)
			},
		},
		"missing fields fall back to defaults": {
			data: `{}`,
			check: func(t *testing.T, s *State) {
				testutil.AssertEqual(t, "current room", s.CurrentRoomId, "entrance")
				testutil.AssertEqual(t, "score", s.Score, 0)
				testutil.AssertEqual(t, "completed", s.Completed, false)
				assertSameSet(t, "unlocked", s.UnlockedRooms, "entrance")
				assertSameSet(t, "visited", s.VisitedRooms, "entrance")
			},
		},
		"current room outside unlocked set resets": {
			data: `{"currentRoomId": "vault", "unlockedRooms": ["library"]}`,
			check: func(t *testing.T, s *State) {
				testutil.AssertEqual(t, "current room", s.CurrentRoomId, "entrance")
			},
		},
		"visited trimmed to unlocked": {
			data: `{"visitedRooms": ["entrance", "vault"], "unlockedRooms": ["entrance"]}`,
			check: func(t *testing.T, s *State) {
				assertSameSet(t, "visited", s.VisitedRooms, "entrance")
			},
		},
		"malformed ids dropped": {
			data: `{"unlockedRooms": ["library", "bad room", "<script>", ""]}`,
			check: func(t *testing.T, s *State) {
				assertSameSet(t, "unlocked", s.UnlockedRooms, "entrance", "library")
			},
		},
		"start time too far in the past falls back": {
			data: `{"startTime": 0}`,
			check: func(t *testing.T, s *State) {
				testutil.AssertEqual(t, "start time", s.StartTime, now)
			},
		},
		"start time in the future falls back": {
			data: fmt.Sprintf(`{"startTime": %d}`, now.Add(2*365*24*time.Hour).UnixMilli()),
			check: func(t *testing.T, s *State) {
				testutil.AssertEqual(t, "start time", s.StartTime, now)
			},
		},
		"recent start time kept": {
			data: fmt.Sprintf(`{"startTime": %d}`, now.Add(-time.Hour).UnixMilli()),
			check: func(t *testing.T, s *State) {
				testutil.AssertEqual(t, "start time", s.StartTime.UnixMilli(), now.Add(-time.Hour).UnixMilli())
			},
		},
		"player name stripped of markup": {
			data: `{"playerName": "  <b>Quinn</b> <script>alert(1)</script> "}`,
			check: func(t *testing.T, s *State) {
				testutil.AssertEqual(t, "player name", s.PlayerName, "Quinn alert(1)")
			},
		},
		"answered restores correct set": {
			data: `{"answeredQuestions": ["q1", "q2"]}`,
			check: func(t *testing.T, s *State) {
				assertSameSet(t, "answered", s.AnsweredQuestions, "q1", "q2")
				assertSameSet(t, "correct", s.CorrectAnswers, "q1", "q2")
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			s, err := Decode([]byte(tc.data), "entrance", now)
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			tc.check(t, s)
		})
	}
}

func TestDecodeEntryCaps(t *testing.T) {
	now := time.Now()

	rooms := `[`
	for i := 0; i < 40; i++ {
		if i > 0 {
			rooms += ","
		}
		rooms += fmt.Sprintf(`"room%d"`, i)
	}
	rooms += `]`

	s, err := Decode([]byte(`{"unlockedRooms": `+rooms+`}`), "entrance", now)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	// 20 survivors plus the force-included starting room.
	if len(s.UnlockedRooms) > maxRoomEntries+1 {
		t.Errorf("expected at most %d unlocked rooms, got %d", maxRoomEntries+1, len(s.UnlockedRooms))
	}
}

func TestDecodeRejections(t *testing.T) {
	tests := map[string]string{
		"not json":          `{invalid`,
		"not an object":     `[1, 2, 3]`,
		"null record":       `null`,
		"score wrong type":  `{"score": "lots"}`,
		"rooms wrong type":  `{"visitedRooms": "entrance"}`,
		"mixed array types": `{"unlockedRooms": ["library", 7]}`,
		"name wrong type":   `{"playerName": {"first": "Q"}}`,
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(data), "entrance", time.Now())
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestSanitizePlayerName(t *testing.T) {
	long := ""
	for i := 0; i < 60; i++ {
		long += "x"
	}

	tests := map[string]struct {
		in  string
		exp string
	}{
		"plain":       {in: "Quinn", exp: "Quinn"},
		"whitespace":  {in: "  Quinn  ", exp: "Quinn"},
		"html":        {in: "<i>Quinn</i>", exp: "Quinn"},
		"unclosed":    {in: "Quinn<script", exp: "Quinn<script"},
		"empty":       {in: "", exp: ""},
		"over length": {in: long, exp: long[:50]},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "name", SanitizePlayerName(tc.in), tc.exp)
		})
	}
}

func assertSameSet(t *testing.T, name string, got map[string]struct{}, want ...string) {
	t.Helper()

	if len(got) != len(want) {
		t.Errorf("%s: got %v, want %v", name, got, want)
		return
	}
	for _, id := range want {
		if _, ok := got[id]; !ok {
			t.Errorf("%s: missing %q", name, id)
		}
	}
}
