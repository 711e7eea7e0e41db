package game

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-quest/internal/storage"
)

// Room is a location in the exploration graph. Rooms are content: they are
// loaded from asset files and never mutated at runtime. Which rooms a
// player can enter is tracked per session by the progression engine.
type Room struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	// Connections lists the ids of neighboring rooms. Answering a
	// question correctly while in this room unlocks its neighbors.
	Connections []string `json:"connections,omitempty"`

	// RequiredScore gates unlocking: a neighbor referencing this room
	// stays locked until the player's score reaches it.
	RequiredScore int `json:"required_score,omitempty"`

	// Starting marks the unique room a fresh session begins in.
	Starting bool `json:"starting,omitempty"`
}

// Validate satisfies storage.ValidatingSpec.
func (r *Room) Validate() error {
	el := errors.NewErrorList()

	if r.Name == "" {
		el.Add(fmt.Errorf("room name is required"))
	}
	if r.RequiredScore < 0 {
		el.Add(fmt.Errorf("required_score must not be negative"))
	}

	for i, conn := range r.Connections {
		if conn == "" {
			el.Add(fmt.Errorf("connection %d: room id is required", i))
		} else if !storage.ValidIdentifier(conn) {
			el.Add(fmt.Errorf("connection %d: invalid room id %q", i, conn))
		}
	}

	return el.Err()
}
