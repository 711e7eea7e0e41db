package game

import (
	"context"
	"fmt"

	"github.com/pixil98/go-quest/internal/storage"
)

// Dictionary holds all content definition stores and is the read-only
// content source the progression engine consults. Lookups take a context
// and return an error so callers don't care that this implementation is
// local files; a remote content service would satisfy the same shape.
// A missing id is (nil, nil), not an error.
type Dictionary struct {
	Rooms        storage.Storer[*Room]
	Questions    storage.Storer[*Question]
	Achievements storage.Storer[*Achievement]

	startingRoomId string
}

// Resolve cross-checks references between assets and locates the starting
// room. It must be called once after all stores are loaded.
func (d *Dictionary) Resolve() error {
	rooms := d.Rooms.GetAll()

	for id, room := range rooms {
		for _, conn := range room.Connections {
			if _, ok := rooms[conn]; !ok {
				return fmt.Errorf("room %s: connection %q not found", id, conn)
			}
		}
	}

	d.startingRoomId = ""
	for id, room := range rooms {
		if !room.Starting {
			continue
		}
		if d.startingRoomId != "" {
			return fmt.Errorf("multiple starting rooms: %s and %s", d.startingRoomId, id)
		}
		d.startingRoomId = id
	}
	if d.startingRoomId == "" {
		return fmt.Errorf("no starting room defined")
	}

	return nil
}

// GetRoom returns the room definition for id, or nil if not found.
func (d *Dictionary) GetRoom(_ context.Context, id string) (*Room, error) {
	return d.Rooms.Get(id), nil
}

// GetQuestion returns the question definition for id, or nil if not found.
func (d *Dictionary) GetQuestion(_ context.Context, id string) (*Question, error) {
	return d.Questions.Get(id), nil
}

// StartingRoom returns the id and definition of the unique starting room.
func (d *Dictionary) StartingRoom(_ context.Context) (string, *Room, error) {
	return d.startingRoomId, d.Rooms.Get(d.startingRoomId), nil
}

// Totals returns the content counts used in completion math.
func (d *Dictionary) Totals(_ context.Context) (rooms int, questions int, err error) {
	return len(d.Rooms.GetAll()), len(d.Questions.GetAll()), nil
}

// GetAchievements returns all achievement definitions keyed by id.
func (d *Dictionary) GetAchievements(_ context.Context) (map[string]*Achievement, error) {
	if d.Achievements == nil {
		return nil, nil
	}
	return d.Achievements.GetAll(), nil
}
