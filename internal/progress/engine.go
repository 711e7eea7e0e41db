package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pixil98/go-quest/internal/events"
	"github.com/pixil98/go-quest/internal/game"
	"github.com/pixil98/go-quest/internal/saves"
)

// ContentProvider is the read-only content source the engine validates
// against. Lookups take a context because the backing source may be remote;
// a missing id is (nil, nil), not an error.
type ContentProvider interface {
	GetRoom(ctx context.Context, id string) (*game.Room, error)
	GetQuestion(ctx context.Context, id string) (*game.Question, error)
	StartingRoom(ctx context.Context) (string, *game.Room, error)
	Totals(ctx context.Context) (rooms int, questions int, err error)
	GetAchievements(ctx context.Context) (map[string]*game.Achievement, error)
}

// AnswerResult is the synchronous outcome of AnswerQuestion, mirroring the
// question_answered event payload for the caller's convenience.
type AnswerResult struct {
	IsCorrect          bool
	PointsEarned       int
	CurrentScore       int
	CorrectAnswerIndex int
	Explanation        string
}

// Engine owns the mutable state of one play session and is the only place
// that state changes. Operations validate against the content provider,
// mutate state, and publish domain events on the session bus.
//
// Callers are expected to serialize gameplay operations per session; the
// internal mutex only protects against the autosave ticker observing a
// transition mid-flight.
type Engine struct {
	content ContentProvider
	bus     *events.Bus
	store   saves.Store
	saveKey string
	now     func() time.Time

	mu    sync.Mutex
	state *State

	questionStartedAt time.Time
	previousRoomId    string

	// unlockedAchievements is session-lifetime bookkeeping, rebuilt
	// silently when a save is loaded.
	unlockedAchievements map[string]struct{}

	dirty        bool
	lastActivity time.Time
}

// EngineOpt customizes an Engine.
type EngineOpt func(*Engine)

// WithClock overrides the engine's time source for deterministic tests.
func WithClock(now func() time.Time) EngineOpt {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine with a fresh state seeded from the content
// provider's starting room. saveKey names the entry in the save store that
// Save, Load, and Reset operate on.
func NewEngine(ctx context.Context, content ContentProvider, bus *events.Bus, store saves.Store, saveKey string, opts ...EngineOpt) (*Engine, error) {
	e := &Engine{
		content:              content,
		bus:                  bus,
		store:                store,
		saveKey:              saveKey,
		now:                  time.Now,
		unlockedAchievements: map[string]struct{}{},
	}

	for _, opt := range opts {
		opt(e)
	}

	startId, startRoom, err := content.StartingRoom(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching starting room: %w", err)
	}
	if startRoom == nil {
		return nil, fmt.Errorf("content has no starting room")
	}

	e.state = newState(startId, e.now())
	e.lastActivity = e.now()

	return e, nil
}

// Bus returns the session's event bus.
func (e *Engine) Bus() *events.Bus {
	return e.bus
}

// LastActivity returns the time of the most recent gameplay operation.
func (e *Engine) LastActivity() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastActivity
}

// SetPlayerName updates the session's display label after sanitization.
func (e *Engine) SetPlayerName(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.PlayerName = SanitizePlayerName(name)
	e.dirty = true
	e.lastActivity = e.now()
}

// MoveToRoom relocates the player. The target must exist and be unlocked;
// moving has no scoring impact.
func (e *Engine) MoveToRoom(ctx context.Context, roomId string) error {
	room, err := e.content.GetRoom(ctx, roomId)
	if err != nil {
		return fmt.Errorf("fetching room %q: %w", roomId, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastActivity = e.now()

	if room == nil {
		return e.fail(fmt.Errorf("%w: %s", ErrRoomNotFound, roomId))
	}
	if !e.state.unlocked(roomId) {
		return e.fail(fmt.Errorf("%w: %s", ErrRoomLocked, roomId))
	}

	from := e.state.CurrentRoomId
	e.previousRoomId = from
	e.state.CurrentRoomId = roomId
	e.state.VisitedRooms[roomId] = struct{}{}
	e.dirty = true

	e.bus.Emit(events.RoomChangedEvent, events.RoomChanged{
		From: from,
		To:   roomId,
		Room: room,
	})

	e.checkAchievements(ctx)

	return nil
}

// StartQuestionTimer records the instant a question was presented; the time
// bonus for the next correct answer decays from this point.
func (e *Engine) StartQuestionTimer() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.questionStartedAt = e.now()
	e.lastActivity = e.questionStartedAt
}

// AnswerQuestion processes an answer attempt. A question is consumed only
// on a correct answer; a miss can be retried. Completion criteria are
// re-evaluated regardless of correctness.
func (e *Engine) AnswerQuestion(ctx context.Context, questionId string, answerIndex int) (*AnswerResult, error) {
	question, err := e.content.GetQuestion(ctx, questionId)
	if err != nil {
		return nil, fmt.Errorf("fetching question %q: %w", questionId, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastActivity = e.now()

	if question == nil {
		return nil, e.fail(fmt.Errorf("%w: %s", ErrQuestionNotFound, questionId))
	}
	if e.state.answered(questionId) {
		return nil, e.fail(fmt.Errorf("%w: %s", ErrAlreadyAnswered, questionId))
	}

	correct := answerIndex == question.CorrectAnswer
	pointsEarned := 0

	if correct {
		bonus := 0
		if !e.questionStartedAt.IsZero() {
			bonus = TimeBonus(e.now().Sub(e.questionStartedAt))
		}
		pointsEarned = question.Points + bonus

		previous := e.state.Score
		e.state.Score += pointsEarned
		e.state.AnsweredQuestions[questionId] = struct{}{}
		e.state.CorrectAnswers[questionId] = struct{}{}
		e.dirty = true

		e.unlockConnectedRooms(ctx)

		e.bus.Emit(events.ScoreChangedEvent, events.ScoreChanged{
			Score:         e.state.Score,
			PointsEarned:  pointsEarned,
			PreviousScore: previous,
		})

		e.checkAchievements(ctx)
	}

	result := &AnswerResult{
		IsCorrect:          correct,
		PointsEarned:       pointsEarned,
		CurrentScore:       e.state.Score,
		CorrectAnswerIndex: question.CorrectAnswer,
		Explanation:        question.Explanation,
	}

	e.bus.Emit(events.QuestionAnsweredEvent, events.QuestionAnswered{
		QuestionId:         questionId,
		IsCorrect:          correct,
		PointsEarned:       pointsEarned,
		CurrentScore:       e.state.Score,
		CorrectAnswerIndex: question.CorrectAnswer,
		Explanation:        question.Explanation,
	})

	e.evaluateCompletion(ctx)

	return result, nil
}

// unlockConnectedRooms adds every not-yet-unlocked neighbor of the current
// room whose score precondition is met, emitting one event per new room.
// Re-invoking with no new neighbors emits nothing. Caller holds the lock.
func (e *Engine) unlockConnectedRooms(ctx context.Context) {
	room, err := e.content.GetRoom(ctx, e.state.CurrentRoomId)
	if err != nil || room == nil {
		slog.Warn("current room unavailable during unlock", "room", e.state.CurrentRoomId, "error", err)
		return
	}

	for _, conn := range room.Connections {
		if e.state.unlocked(conn) {
			continue
		}

		neighbor, err := e.content.GetRoom(ctx, conn)
		if err != nil || neighbor == nil {
			slog.Warn("skipping unresolvable connection", "room", e.state.CurrentRoomId, "connection", conn, "error", err)
			continue
		}
		if e.state.Score < neighbor.RequiredScore {
			continue
		}

		e.state.UnlockedRooms[conn] = struct{}{}
		e.dirty = true
		e.bus.Emit(events.RoomUnlockedEvent, events.RoomUnlocked{RoomId: conn})
	}
}

// evaluateCompletion runs the joint criteria and fires the one-way
// completion transition at most once. Caller holds the lock.
func (e *Engine) evaluateCompletion(ctx context.Context) {
	if e.state.Completed {
		return
	}

	totalRooms, totalQuestions, err := e.content.Totals(ctx)
	if err != nil {
		slog.Warn("content totals unavailable, skipping completion check", "error", err)
		return
	}

	playTime := e.now().Sub(e.state.StartTime)
	res := EvaluateCompletion(e.state, totalRooms, totalQuestions, playTime)
	if !res.Met {
		return
	}

	e.state.Completed = true
	e.dirty = true

	e.bus.Emit(events.GameCompletedEvent, events.GameCompleted{
		FinalScore:        FinalScore(e.state, playTime),
		PlayTime:          playTime.Milliseconds(),
		RoomsVisited:      len(e.state.VisitedRooms),
		TotalRooms:        totalRooms,
		QuestionsAnswered: len(e.state.AnsweredQuestions),
		TotalQuestions:    totalQuestions,
		Accuracy:          res.Accuracy,
		IsPerfectGame:     res.IsPerfectGame,
		IsSpeedRun:        res.IsSpeedRun,
	})
}

// checkAchievements fires unlock events for milestones newly crossed.
// Caller holds the lock.
func (e *Engine) checkAchievements(ctx context.Context) {
	defs, err := e.content.GetAchievements(ctx)
	if err != nil {
		slog.Warn("achievements unavailable", "error", err)
		return
	}

	for id, def := range defs {
		if _, done := e.unlockedAchievements[id]; done {
			continue
		}
		if !e.achievementMet(def) {
			continue
		}

		e.unlockedAchievements[id] = struct{}{}
		e.bus.Emit(events.AchievementUnlockedEvent, events.AchievementUnlocked{
			AchievementId: id,
			Name:          def.Name,
			Description:   def.Description,
		})
	}
}

func (e *Engine) achievementMet(def *game.Achievement) bool {
	switch def.Kind {
	case game.AchievementKindScore:
		return e.state.Score >= def.Threshold
	case game.AchievementKindRooms:
		return len(e.state.VisitedRooms) >= def.Threshold
	case game.AchievementKindQuestions:
		return len(e.state.AnsweredQuestions) >= def.Threshold
	default:
		return false
	}
}

// markAchievements records every already-satisfied milestone without
// emitting events, so loading an old save doesn't replay unlocks.
func (e *Engine) markAchievements(ctx context.Context) {
	defs, err := e.content.GetAchievements(ctx)
	if err != nil {
		return
	}

	e.unlockedAchievements = map[string]struct{}{}
	for id, def := range defs {
		if e.achievementMet(def) {
			e.unlockedAchievements[id] = struct{}{}
		}
	}
}

// Save encodes the current state into the save store. A storage failure is
// reported but does not roll back in-memory state; the session continues
// unpersisted until the next successful save.
func (e *Engine) Save(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.saveLocked(ctx)
}

func (e *Engine) saveLocked(ctx context.Context) error {
	rec := NewRecord(e.state, e.now())

	data, err := json.Marshal(rec)
	if err != nil {
		return e.fail(fmt.Errorf("%w: %v", ErrPersistence, err))
	}

	if err := e.store.Set(ctx, e.saveKey, data); err != nil {
		return e.fail(fmt.Errorf("%w: %v", ErrPersistence, err))
	}

	e.dirty = false
	e.bus.Emit(events.GameSavedEvent, rec)

	return nil
}

// Load restores state from the save store. It returns false when no save
// exists. A corrupt save is never fatal: the entry is purged, the current
// (fresh) state stands, and the failure is only visible on the error event
// channel.
func (e *Engine) Load(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastActivity = e.now()

	data, ok, err := e.store.Get(ctx, e.saveKey)
	if err != nil {
		return false, e.fail(fmt.Errorf("%w: %v", ErrPersistence, err))
	}
	if !ok {
		return false, nil
	}

	startId, _, err := e.content.StartingRoom(ctx)
	if err != nil {
		return false, fmt.Errorf("fetching starting room: %w", err)
	}

	state, err := Decode(data, startId, e.now())
	if err != nil {
		// Purge the corrupt entry so the next load starts clean.
		if removeErr := e.store.Remove(ctx, e.saveKey); removeErr != nil {
			slog.Warn("failed to purge corrupt save", "key", e.saveKey, "error", removeErr)
		}
		e.emitError(err)
		slog.Warn("discarding corrupt save", "key", e.saveKey, "error", err)
		return false, nil
	}

	e.state = state
	e.dirty = false
	e.markAchievements(ctx)

	e.bus.Emit(events.GameLoadedEvent, NewRecord(e.state, e.now()))

	return true, nil
}

// Reset clears the persisted entry and reinitializes from the starting room.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastActivity = e.now()

	if err := e.store.Remove(ctx, e.saveKey); err != nil {
		return e.fail(fmt.Errorf("%w: %v", ErrPersistence, err))
	}

	startId, startRoom, err := e.content.StartingRoom(ctx)
	if err != nil {
		return fmt.Errorf("fetching starting room: %w", err)
	}
	if startRoom == nil {
		return fmt.Errorf("content has no starting room")
	}

	e.state = newState(startId, e.now())
	e.questionStartedAt = time.Time{}
	e.unlockedAchievements = map[string]struct{}{}
	e.dirty = false

	e.bus.Emit(events.GameResetEvent, events.GameReset{})

	return nil
}

// AutoSave persists the session if anything changed since the last save.
func (e *Engine) AutoSave(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.dirty {
		return nil
	}
	return e.saveLocked(ctx)
}

// Snapshot returns the current state in record form plus derived scoring
// figures. It never exposes the live state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	playTime := e.now().Sub(e.state.StartTime)

	return Snapshot{
		Record:     *NewRecord(e.state, e.now()),
		FinalScore: FinalScore(e.state, playTime),
		Accuracy:   Accuracy(e.state),
		PlayTime:   playTime.Milliseconds(),
	}
}

// Snapshot is a read-only view of a session for status queries.
type Snapshot struct {
	Record     Record  `json:"record"`
	FinalScore int     `json:"finalScore"`
	Accuracy   float64 `json:"accuracy"`
	PlayTime   int64   `json:"playTime"`
}

// fail publishes the error on the event channel and returns it, so callers
// get a rejection and passive observers still see it.
func (e *Engine) fail(err error) error {
	e.emitError(err)
	return err
}

func (e *Engine) emitError(err error) {
	e.bus.Emit(events.ErrorEvent, events.Error{
		Type:    errorType(err),
		Message: err.Error(),
	})
}
