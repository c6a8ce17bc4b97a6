package product

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
)

// Weekday is a case-sensitive English day name such as "Monday".
type Weekday string

const (
	Sunday    Weekday = "Sunday"
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
)

// byIndex follows time.Weekday numbering, index 0 is Sunday.
var byIndex = [7]Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// Week lists the days Monday first, the order fulfillment views print in.
var Week = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// WeekdayOf returns the calendar weekday of t in t's own location.
func WeekdayOf(t time.Time) Weekday { return byIndex[t.Weekday()] }

// Valid reports whether d is one of the seven day names.
func (d Weekday) Valid() bool { return slices.Contains(byIndex[:], d) }

// DayAvailability is one day of a recurring schedule.
type DayAvailability struct {
	Enabled   bool `json:"enabled"`
	Inventory int  `json:"inventory"`
}

// Schedule maps weekdays to availability. A nil Schedule is stored as NULL.
type Schedule map[Weekday]DayAvailability

// ErrDayNotEnabled is returned when inventory is set for a day the schedule
// does not deliver on.
var ErrDayNotEnabled = apperr.Conflict("delivery day is not enabled")

// Validate checks day names and inventory.
func (s Schedule) Validate() error {
	if len(s) == 0 {
		return apperr.Validation("schedule must name at least one day")
	}
	fields := map[string]string{}
	for day, a := range s {
		if !day.Valid() {
			fields[string(day)] = "is not a weekday name"
			continue
		}
		if a.Inventory < 0 {
			fields[string(day)] = "inventory must not be negative"
		}
	}
	if len(fields) > 0 {
		return apperr.ValidationFields("invalid delivery schedule", fields)
	}
	return nil
}

// WithInventory returns a copy of s with only day's inventory replaced.
func (s Schedule) WithInventory(day Weekday, inventory int) (Schedule, error) {
	if !s[day].Enabled {
		return nil, ErrDayNotEnabled
	}
	out := make(Schedule, len(s))
	for d, a := range s {
		out[d] = a
	}
	out[day] = DayAvailability{Enabled: true, Inventory: inventory}
	return out, nil
}

func (s Schedule) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal(s)
	return string(b), err
}

func (s *Schedule) Scan(src interface{}) error {
	b, err := jsonBytes(src)
	if err != nil || b == nil {
		*s = nil
		return err
	}
	var out Schedule
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("scan delivery schedule: %w", err)
	}
	*s = out
	return nil
}

// DateList is the JSON encoded list of one-time delivery dates.
type DateList []time.Time

func (d DateList) Value() (driver.Value, error) {
	if d == nil {
		d = DateList{}
	}
	b, err := json.Marshal([]time.Time(d))
	return string(b), err
}

func (d *DateList) Scan(src interface{}) error {
	b, err := jsonBytes(src)
	if err != nil {
		return err
	}
	out := DateList{}
	if b != nil {
		if err := json.Unmarshal(b, &out); err != nil {
			return fmt.Errorf("scan delivery dates: %w", err)
		}
	}
	*d = out
	return nil
}

func jsonBytes(src interface{}) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported JSON column type %T", src)
	}
}

// normaliseDates converts to UTC, drops duplicates and sorts ascending.
func normaliseDates(in []time.Time) DateList {
	out := make(DateList, 0, len(in))
	for _, t := range in {
		out = append(out, t.UTC())
	}
	slices.SortFunc(out, func(a, b time.Time) int { return a.Compare(b) })
	return slices.CompactFunc(out, func(a, b time.Time) bool { return a.Equal(b) })
}
