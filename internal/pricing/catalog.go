package pricing

import (
	"errors"
	"fmt"
)

// ErrUnknownEntry marks a configuration referencing a room type, tier, add-on
// or reduction the catalog does not carry. Fatal to that single computation.
var ErrUnknownEntry = errors.New("unknown catalog entry")

// UnknownEntryError identifies the missing catalog entry.
type UnknownEntryError struct {
	Kind string
	ID   string
}

func (e *UnknownEntryError) Error() string {
	return fmt.Sprintf("unknown %s: %q", e.Kind, e.ID)
}

func (e *UnknownEntryError) Unwrap() error { return ErrUnknownEntry }

// RoomRate holds per-room pricing inputs for one room type.
type RoomRate struct {
	Base           Money
	PerRoom        Money
	PerRoomMinutes int
}

// Catalog is the static, read-only pricing table.
type Catalog struct {
	Rooms      map[string]RoomRate
	AddOns     map[string]Money
	Reductions map[string]Money
}

// DefaultCatalog returns the built-in pricing table.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Rooms: map[string]RoomRate{
			"kitchen":  {Base: 75, PerRoom: 25, PerRoomMinutes: 45},
			"bathroom": {Base: 60, PerRoom: 30, PerRoomMinutes: 40},
			"bedroom":  {Base: 50, PerRoom: 20, PerRoomMinutes: 30},
			"office":   {Base: 65, PerRoom: 22, PerRoomMinutes: 35},
			"whole_home": {
				Base: 120, PerRoom: 18, PerRoomMinutes: 25,
			},
		},
		AddOns: map[string]Money{
			"inside_fridge": 15,
			"inside_oven":   20,
			"windows":       25,
			"laundry":       18,
			"deep_carpet":   30,
		},
		Reductions: map[string]Money{
			"skip_dusting":    10,
			"skip_mopping":    12,
			"own_supplies":    8,
			"skip_baseboards": 6,
		},
	}
}

func (c *Catalog) room(roomType string) (RoomRate, error) {
	rate, ok := c.Rooms[roomType]
	if !ok {
		return RoomRate{}, &UnknownEntryError{Kind: "room type", ID: roomType}
	}
	return rate, nil
}

func (c *Catalog) addOn(id string) (Money, error) {
	delta, ok := c.AddOns[id]
	if !ok {
		return 0, &UnknownEntryError{Kind: "add-on", ID: id}
	}
	return delta, nil
}

func (c *Catalog) reduction(id string) (Money, error) {
	delta, ok := c.Reductions[id]
	if !ok {
		return 0, &UnknownEntryError{Kind: "reduction", ID: id}
	}
	return delta, nil
}
