package ansel

import (
	"errors"
	"fmt"

	"github.com/fkoehler/ansel/model"
)

var (
	// ErrNotFocused is returned by operations that require a focused item.
	ErrNotFocused = errors.New("no item focused")

	// ErrEmptySelection is returned when a bulk mutation has nothing to act on.
	ErrEmptySelection = errors.New("selection is empty")

	// ErrEmptyTag is returned when a tag edit carries no tag.
	ErrEmptyTag = errors.New("tag is empty")
)

// ErrUnknownItem indicates an item id that is not part of the collection.
type ErrUnknownItem struct {
	ID model.ItemID
}

func (e *ErrUnknownItem) Error() string {
	return fmt.Sprintf("unknown item: %s", e.ID)
}

// ErrUnknownDimension indicates a facet dimension key that is not registered.
type ErrUnknownDimension struct {
	Key string
}

func (e *ErrUnknownDimension) Error() string {
	return fmt.Sprintf("unknown facet dimension: %s", e.Key)
}

// ErrInvalidStatus indicates a status value outside the curation vocabulary.
type ErrInvalidStatus struct {
	Status model.Status
}

func (e *ErrInvalidStatus) Error() string {
	return fmt.Sprintf("invalid status: %q", string(e.Status))
}

// ErrInvalidSortKey indicates an unregistered sort key.
type ErrInvalidSortKey struct {
	Key SortKey
}

func (e *ErrInvalidSortKey) Error() string {
	return fmt.Sprintf("invalid sort key: %q", string(e.Key))
}
