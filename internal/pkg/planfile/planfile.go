// Package planfile reads offline tour drafts from YAML and runs them through
// the tour planner without touching the database.
package planfile

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ManuelReschke/CleanCity/app/models"
	"github.com/ManuelReschke/CleanCity/internal/pkg/apperrors"
	"github.com/ManuelReschke/CleanCity/internal/pkg/tourplanner"
	"github.com/ManuelReschke/CleanCity/internal/pkg/zonestate"
)

type Vehicle struct {
	Plate    string `yaml:"plate"`
	Capacity int    `yaml:"capacity"`
}

type Zone struct {
	ID          uint   `yaml:"id"`
	Name        string `yaml:"name"`
	Capacity    int    `yaml:"capacity"`
	CurrentFill int    `yaml:"current_fill"`
	Priority    string `yaml:"priority"`
}

// File is a tour draft:
//
//	vehicle: {plate: CC-1, capacity: 1500}
//	start: "22:00"
//	duration_hours: 3.5
//	zones:
//	  - {id: 1, name: Market, capacity: 500, current_fill: 450, priority: high}
type File struct {
	Vehicle       Vehicle `yaml:"vehicle"`
	Start         string  `yaml:"start"`
	DurationHours float64 `yaml:"duration_hours"`
	Zones         []Zone  `yaml:"zones"`
}

// Result is the outcome of planning a draft.
type Result struct {
	Ranked    []zonestate.Snapshot `yaml:"ranked"`
	Skipped   []uint               `yaml:"skipped,omitempty"`
	TotalFill int                  `yaml:"total_fill"`
	Capacity  int                  `yaml:"capacity"`
	Start     string               `yaml:"start,omitempty"`
	End       string               `yaml:"end,omitempty"`
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, apperrors.Validation("invalid plan file: %v", err)
	}
	if f.Vehicle.Capacity <= 0 {
		return nil, apperrors.Validation("vehicle capacity must be greater than zero")
	}
	if len(f.Zones) == 0 {
		return nil, apperrors.Validation("plan file lists no zones")
	}
	seen := map[uint]bool{}
	for i, z := range f.Zones {
		if z.ID == 0 {
			f.Zones[i].ID = uint(i + 1)
		}
		if seen[f.Zones[i].ID] {
			return nil, apperrors.Validation("zone %d listed twice", f.Zones[i].ID)
		}
		seen[f.Zones[i].ID] = true
		if z.Priority == "" {
			f.Zones[i].Priority = models.PriorityMedium
		}
	}
	return &f, nil
}

// Models converts the draft zones into active zone records.
func (f *File) Models() []models.Zone {
	out := make([]models.Zone, 0, len(f.Zones))
	for _, z := range f.Zones {
		out = append(out, models.Zone{
			ID:          z.ID,
			Name:        z.Name,
			Capacity:    z.Capacity,
			CurrentFill: z.CurrentFill,
			Priority:    z.Priority,
			Active:      true,
		})
	}
	return out
}

// Plan ranks the zones and checks them against the vehicle. With fit set,
// zones that do not fit are skipped instead of failing the plan.
func (f *File) Plan(fit bool) (*Result, error) {
	zones := f.Models()
	for i := range zones {
		if err := zonestate.Check(&zones[i]); err != nil {
			return nil, err
		}
	}
	ranked, err := tourplanner.Rank(zones)
	if err != nil {
		return nil, err
	}

	res := &Result{Capacity: f.Vehicle.Capacity}
	if fit {
		kept, skipped := tourplanner.FitToCapacity(ranked, f.Vehicle.Capacity)
		ranked = kept
		for _, z := range skipped {
			res.Skipped = append(res.Skipped, z.ID)
		}
	} else if err := tourplanner.CheckCapacity(ranked, f.Vehicle.Capacity); err != nil {
		return nil, err
	}

	for i := range ranked {
		snap, err := zonestate.Describe(&ranked[i])
		if err != nil {
			return nil, err
		}
		res.Ranked = append(res.Ranked, snap)
	}
	res.TotalFill = tourplanner.TotalFill(ranked)

	if f.Start != "" {
		start, err := tourplanner.ParseTimeOfDay(f.Start)
		if err != nil {
			return nil, err
		}
		res.Start = start.String()
		res.End = tourplanner.EstimatedEndTime(start, f.DurationHours).String()
	}
	return res, nil
}

// IsCapacityError reports whether err is a vehicle capacity violation.
func IsCapacityError(err error) bool {
	var ce *apperrors.CapacityExceededError
	return errors.As(err, &ce)
}
