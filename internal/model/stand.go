package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidStand is returned when a fixture record fails validation
var ErrInvalidStand = errors.New("invalid stand")

// Stand represents a single residential stand listing
type Stand struct {
	ID        int64     `json:"id" yaml:"id" db:"id"`
	Suburb    string    `json:"suburb" yaml:"suburb" db:"suburb"`
	City      string    `json:"city" yaml:"city" db:"city"`
	Price     float64   `json:"price" yaml:"price" db:"price"`
	Size      float64   `json:"size" yaml:"size" db:"size"` // square metres
	IsSold    bool      `json:"is_sold" yaml:"is_sold" db:"is_sold"`
	StandType StandType `json:"stand_type" yaml:"stand_type" db:"stand_type"`
	Community Community `json:"community" yaml:"community" db:"community"`
}

// Validate checks the invariants every loaded stand must satisfy
func (s Stand) Validate() error {
	switch {
	case strings.TrimSpace(s.Suburb) == "":
		return fmt.Errorf("%w: stand %d has no suburb", ErrInvalidStand, s.ID)
	case strings.TrimSpace(s.City) == "":
		return fmt.Errorf("%w: stand %d has no city", ErrInvalidStand, s.ID)
	case s.Price < 0:
		return fmt.Errorf("%w: stand %d has negative price %.2f", ErrInvalidStand, s.ID, s.Price)
	case s.Size < 0:
		return fmt.Errorf("%w: stand %d has negative size %.2f", ErrInvalidStand, s.ID, s.Size)
	case !slices.Contains(StandTypes, s.StandType):
		return fmt.Errorf("%w: stand %d has stand type %q", ErrInvalidStand, s.ID, s.StandType)
	case !slices.Contains(Communities, s.Community):
		return fmt.Errorf("%w: stand %d has community %q", ErrInvalidStand, s.ID, s.Community)
	}
	return nil
}
