package listener

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/pixil98/go-quest/internal/display"
	"github.com/pixil98/go-quest/internal/messaging"
	"github.com/pixil98/go-quest/internal/progress"
)

// clientMessage is a command from the browser.
type clientMessage struct {
	Action      string `json:"action"`
	PlayerName  string `json:"playerName,omitempty"`
	SaveKey     string `json:"saveKey,omitempty"`
	RoomId      string `json:"roomId,omitempty"`
	QuestionId  string `json:"questionId,omitempty"`
	AnswerIndex int    `json:"answerIndex"`
}

// serverMessage is a direct response to a command. Domain events arrive
// separately as type "event" with the bridged envelope as payload.
type serverMessage struct {
	Type      string             `json:"type"`
	SessionId string             `json:"sessionId,omitempty"`
	Text      string             `json:"text,omitempty"`
	Error     string             `json:"error,omitempty"`
	Snapshot  *progress.Snapshot `json:"snapshot,omitempty"`
	Result    *answerView        `json:"result,omitempty"`
	Payload   json.RawMessage    `json:"payload,omitempty"`
}

// answerView is the client-facing shape of an answer outcome.
type answerView struct {
	IsCorrect          bool   `json:"isCorrect"`
	PointsEarned       int    `json:"pointsEarned"`
	CurrentScore       int    `json:"currentScore"`
	CorrectAnswerIndex int    `json:"correctAnswerIndex"`
	Explanation        string `json:"explanation,omitempty"`
}

// wsConn is the subset of *websocket.Conn the client loop uses.
type wsConn interface {
	ReadJSON(v interface{}) error
	WriteJSON(v interface{}) error
}

type client struct {
	conn    wsConn
	manager *ConnectionManager

	session *progress.Session
	msgs    chan []byte
}

// run drives the connection: a join handshake, then a single loop that
// multiplexes client commands and bridged session events. All writes happen
// here so the websocket never sees concurrent writers.
func (c *client) run(ctx context.Context) error {
	if err := c.join(ctx); err != nil {
		return err
	}
	defer c.manager.sessions.Detach(context.WithoutCancel(ctx), c.session.Id)

	unsubscribe, err := c.manager.subscriber.Subscribe(messaging.SessionSubject(c.session.Id), func(data []byte) {
		// Drop rather than block if the client is hopelessly behind.
		select {
		case c.msgs <- data:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("subscribing to session events: %w", err)
	}
	defer unsubscribe()

	// done lets the reader bail out of a pending send when this loop has
	// already returned through cancellation or a write error.
	done := make(chan struct{})
	defer close(done)

	inputChan := make(chan clientMessage)
	inputErrChan := make(chan error, 1)
	go func() {
		for {
			var msg clientMessage
			if err := c.conn.ReadJSON(&msg); err != nil {
				inputErrChan <- err
				close(inputChan)
				return
			}
			select {
			case inputChan <- msg:
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case data := <-c.msgs:
			if err := c.write(serverMessage{Type: "event", Payload: data}); err != nil {
				return err
			}

		case msg, ok := <-inputChan:
			if !ok {
				err := <-inputErrChan
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return nil
				}
				return err
			}

			resp := c.dispatch(ctx, msg)
			if err := c.write(resp); err != nil {
				return err
			}
		}
	}
}

// join performs the handshake: the first message must carry action "join".
func (c *client) join(ctx context.Context) error {
	var msg clientMessage
	if err := c.conn.ReadJSON(&msg); err != nil {
		return fmt.Errorf("reading join message: %w", err)
	}
	if msg.Action != "join" {
		_ = c.write(serverMessage{Type: "error", Error: "first message must be a join"})
		return fmt.Errorf("protocol violation: first action %q", msg.Action)
	}

	session, err := c.manager.sessions.Create(ctx, msg.SaveKey)
	if err != nil {
		_ = c.write(serverMessage{Type: "error", Error: "invalid save key"})
		return fmt.Errorf("creating session: %w", err)
	}
	c.session = session

	// Wire the session's events onto its NATS subject before any
	// gameplay so nothing is missed.
	c.manager.bridge.Attach(session.Id, session.Engine.Bus())

	if msg.PlayerName != "" {
		session.Engine.SetPlayerName(msg.PlayerName)
	}

	// Resume a previous save when one exists; a corrupt one degrades to
	// the fresh state created above.
	if msg.SaveKey != "" {
		if _, err := session.Engine.Load(ctx); err != nil {
			return fmt.Errorf("loading save: %w", err)
		}
	}

	snap := session.Engine.Snapshot()
	text, _ := c.renderRoom(ctx, snap.Record.CurrentRoomId)

	return c.write(serverMessage{
		Type:      "welcome",
		SessionId: session.Id,
		Text:      text,
		Snapshot:  &snap,
	})
}

func (c *client) dispatch(ctx context.Context, msg clientMessage) serverMessage {
	engine := c.session.Engine

	switch msg.Action {
	case "move":
		if err := engine.MoveToRoom(ctx, msg.RoomId); err != nil {
			return errorMessage(err)
		}
		text, _ := c.renderRoom(ctx, msg.RoomId)
		return serverMessage{Type: "moved", Text: text}

	case "question":
		question, err := c.manager.content.GetQuestion(ctx, msg.QuestionId)
		if err != nil || question == nil {
			return errorMessage(progress.ErrQuestionNotFound)
		}
		engine.StartQuestionTimer()
		text, err := display.RenderQuestion(display.QuestionView{
			Prompt:     question.Prompt,
			Category:   question.Category,
			Difficulty: question.Difficulty,
			Answers:    question.Answers,
		})
		if err != nil {
			return errorMessage(err)
		}
		return serverMessage{Type: "question", Text: text}

	case "start_timer":
		engine.StartQuestionTimer()
		return serverMessage{Type: "timer_started"}

	case "answer":
		result, err := engine.AnswerQuestion(ctx, msg.QuestionId, msg.AnswerIndex)
		if err != nil {
			return errorMessage(err)
		}
		return serverMessage{Type: "answered", Result: &answerView{
			IsCorrect:          result.IsCorrect,
			PointsEarned:       result.PointsEarned,
			CurrentScore:       result.CurrentScore,
			CorrectAnswerIndex: result.CorrectAnswerIndex,
			Explanation:        result.Explanation,
		}}

	case "look":
		snap := engine.Snapshot()
		text, err := c.renderRoom(ctx, snap.Record.CurrentRoomId)
		if err != nil {
			return errorMessage(err)
		}
		return serverMessage{Type: "room", Text: text}

	case "state":
		snap := engine.Snapshot()
		return serverMessage{Type: "state", Snapshot: &snap}

	case "set_name":
		engine.SetPlayerName(msg.PlayerName)
		return serverMessage{Type: "name_set"}

	case "save":
		if err := engine.Save(ctx); err != nil {
			return errorMessage(err)
		}
		return serverMessage{Type: "saved"}

	case "load":
		found, err := engine.Load(ctx)
		if err != nil {
			return errorMessage(err)
		}
		if !found {
			return serverMessage{Type: "no_save"}
		}
		snap := engine.Snapshot()
		return serverMessage{Type: "loaded", Snapshot: &snap}

	case "reset":
		if err := engine.Reset(ctx); err != nil {
			return errorMessage(err)
		}
		return serverMessage{Type: "reset"}

	default:
		return serverMessage{Type: "error", Error: fmt.Sprintf("unknown action: %s", msg.Action)}
	}
}

func (c *client) renderRoom(ctx context.Context, roomId string) (string, error) {
	room, err := c.manager.content.GetRoom(ctx, roomId)
	if err != nil || room == nil {
		return "", fmt.Errorf("room %q unavailable", roomId)
	}
	return display.RenderRoom(display.RoomView{
		Name:        room.Name,
		Description: room.Description,
		Connections: room.Connections,
	})
}

func (c *client) write(msg serverMessage) error {
	return c.conn.WriteJSON(msg)
}

func errorMessage(err error) serverMessage {
	return serverMessage{Type: "error", Error: err.Error()}
}
