package state

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrStorageRead marks persisted data that could not be read back
var ErrStorageRead = errors.New("storage read error")

// Source tells where a loaded value came from
type Source int

const (
	// Missing means nothing was stored; the default is used
	Missing Source = iota
	// Parsed means the stored value was decoded and validated
	Parsed
	// Fallback means the stored value was unusable; the default is used
	Fallback
)

func (s Source) String() string {
	switch s {
	case Parsed:
		return "parsed"
	case Fallback:
		return "fallback"
	}
	return "missing"
}

// Loaded is the result of reading one persisted structure
type Loaded[T any] struct {
	Value  T
	Source Source
	Err    error // set when Source is Fallback
}

// LoadOrDefault decodes raw JSON into T and validates it. Missing, corrupt
// or invalid data yields def; the latter two are reported through Err.
func LoadOrDefault[T any](raw string, present bool, validate func(T) error, def T) Loaded[T] {
	if !present {
		return Loaded[T]{Value: def, Source: Missing}
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return Loaded[T]{Value: def, Source: Fallback, Err: fmt.Errorf("%w: %v", ErrStorageRead, err)}
	}
	if validate != nil {
		if err := validate(v); err != nil {
			return Loaded[T]{Value: def, Source: Fallback, Err: fmt.Errorf("%w: %v", ErrStorageRead, err)}
		}
	}
	return Loaded[T]{Value: v, Source: Parsed}
}
