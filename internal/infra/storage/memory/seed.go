package memory

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

var ErrSeed = errors.New("memory: invalid seed")

// Seed is the catalog loaded into the in-memory store at startup.
type Seed struct {
	Locations []SeedLocation `toml:"locations"`
	Services  []SeedService  `toml:"services"`
	Employees []SeedEmployee `toml:"employees"`
	Resources []SeedResource `toml:"resources"`
}

type SeedLocation struct {
	ID            int64                  `toml:"id"`
	Name          string                 `toml:"name"`
	Timezone      string                 `toml:"timezone"`
	BusinessHours map[string][]SeedRange `toml:"business_hours"` // weekday name -> ranges
}

type SeedRange struct {
	Open  string `toml:"open"`
	Close string `toml:"close"`
}

type SeedService struct {
	ID              int64  `toml:"id"`
	LocationID      int64  `toml:"location_id"`
	Name            string `toml:"name"`
	DurationMin     int    `toml:"duration_min"`
	BufferBeforeMin int    `toml:"buffer_before_min"`
	BufferAfterMin  int    `toml:"buffer_after_min"`
}

type SeedEmployee struct {
	ID         int64  `toml:"id"`
	LocationID int64  `toml:"location_id"`
	Name       string `toml:"name"`
}

type SeedResource struct {
	ID         int64  `toml:"id"`
	LocationID int64  `toml:"location_id"`
	Name       string `toml:"name"`
	Capacity   int    `toml:"capacity"`
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// LoadSeed reads a seed file.
func LoadSeed(path string) (*Seed, error) {
	var seed Seed
	if _, err := toml.DecodeFile(path, &seed); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrSeed, path, err)
	}
	return &seed, nil
}

// ApplySeed validates the seed and adds every entry to the store as active.
func (s *Store) ApplySeed(seed *Seed) error {
	for _, sl := range seed.Locations {
		hours := make(domain.WeeklyHours, len(sl.BusinessHours))
		for day, ranges := range sl.BusinessHours {
			wd, ok := weekdays[strings.ToLower(day)]
			if !ok {
				return fmt.Errorf("%w: location %d: unknown weekday %q", ErrSeed, sl.ID, day)
			}
			for _, rg := range ranges {
				tr := domain.TimeRange{Open: types.TimeString(rg.Open), Close: types.TimeString(rg.Close)}
				if err := tr.Validate(); err != nil {
					return fmt.Errorf("%w: location %d: %v", ErrSeed, sl.ID, err)
				}
				hours[wd] = append(hours[wd], tr)
			}
		}

		loc := domain.Location{
			ID:            sl.ID,
			Name:          sl.Name,
			Timezone:      sl.Timezone,
			BusinessHours: hours,
			Active:        true,
		}
		if _, err := loc.TimeLocation(); err != nil {
			return fmt.Errorf("%w: %v", ErrSeed, err)
		}
		s.AddLocation(loc)
	}

	for _, ss := range seed.Services {
		if ss.DurationMin <= 0 || ss.BufferBeforeMin < 0 || ss.BufferAfterMin < 0 {
			return fmt.Errorf("%w: service %d: invalid duration or buffers", ErrSeed, ss.ID)
		}
		s.AddService(domain.Service{
			ID:              ss.ID,
			LocationID:      ss.LocationID,
			Name:            ss.Name,
			DurationMin:     ss.DurationMin,
			BufferBeforeMin: ss.BufferBeforeMin,
			BufferAfterMin:  ss.BufferAfterMin,
			Active:          true,
		})
	}

	for _, se := range seed.Employees {
		s.AddEmployee(domain.Employee{ID: se.ID, LocationID: se.LocationID, Name: se.Name, Active: true})
	}

	for _, sr := range seed.Resources {
		s.AddResource(domain.Resource{ID: sr.ID, LocationID: sr.LocationID, Name: sr.Name, Capacity: sr.Capacity, Active: true})
	}

	return nil
}
