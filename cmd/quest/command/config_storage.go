package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-quest/internal/game"
	"github.com/pixil98/go-quest/internal/storage"
)

type StorageConfig struct {
	Rooms        AssetConfig[*game.Room]        `json:"rooms"`
	Questions    AssetConfig[*game.Question]    `json:"questions"`
	Achievements AssetConfig[*game.Achievement] `json:"achievements"`
}

func (c *StorageConfig) Validate() error {
	el := errors.NewErrorList()
	el.Add(c.Rooms.Validate("rooms"))
	el.Add(c.Questions.Validate("questions"))
	el.Add(c.Achievements.Validate("achievements"))
	return el.Err()
}

func (c *StorageConfig) BuildDictionary() (*game.Dictionary, error) {
	rooms, err := c.Rooms.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating room store: %w", err)
	}
	questions, err := c.Questions.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating question store: %w", err)
	}
	achievements, err := c.Achievements.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating achievement store: %w", err)
	}

	dict := &game.Dictionary{
		Rooms:        rooms,
		Questions:    questions,
		Achievements: achievements,
	}

	if err := dict.Resolve(); err != nil {
		return nil, fmt.Errorf("resolving references: %w", err)
	}

	return dict, nil
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}

func (c *AssetConfig[T]) BuildFileStore() (*storage.FileStore[T], error) {
	return storage.NewFileStore[T](c.Path)
}
