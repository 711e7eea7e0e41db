package storage

import (
	"fmt"
	"regexp"

	"github.com/pixil98/go-errors"
)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type ValidatingSpec interface {
	Validate() error
}

type Identifier string

func (id Identifier) String() string {
	return string(id)
}

// ValidIdentifier reports whether id is usable as an asset key. The
// restricted character class keeps ids safe to embed in file names,
// NATS subjects, and persisted save records.
func ValidIdentifier(id string) bool {
	return identifierPattern.MatchString(id)
}

type Asset[T ValidatingSpec] struct {
	Version    uint       `json:"version"`
	Identifier Identifier `json:"id"`
	Spec       T          `json:"spec"`
}

func (a *Asset[T]) Id() Identifier {
	return a.Identifier
}

func (a *Asset[T]) Validate() error {
	el := errors.NewErrorList()

	if a.Version == 0 {
		el.Add(fmt.Errorf("version must be set"))
	}

	if a.Identifier == "" {
		el.Add(fmt.Errorf("id must be set"))
	}

	if !ValidIdentifier(a.Identifier.String()) {
		el.Add(fmt.Errorf("id must be alphanumeric (dashes and underscores allowed)"))
	}

	el.Add(a.Spec.Validate())

	return el.Err()
}
