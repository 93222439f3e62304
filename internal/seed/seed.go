// Package seed loads the initial board into empty repositories.
package seed

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/housekeeping/internal/history"
	"github.com/kazz187/housekeeping/internal/staff"
	"github.com/kazz187/housekeeping/internal/task"
)

//go:embed seed.yaml
var defaultSeed []byte

type Data struct {
	Tasks   []*task.Task      `yaml:"tasks"`
	Staff   []*staff.Staff    `yaml:"staff"`
	History []*history.Record `yaml:"history"`
}

func Default() (*Data, error) {
	return Parse(defaultSeed)
}

func Parse(raw []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}
	for _, t := range d.Tasks {
		if t.Version == 0 {
			t.Version = 1
		}
	}
	for _, s := range d.Staff {
		if s.Version == 0 {
			s.Version = 1
		}
	}
	return &d, nil
}

type Repositories struct {
	Tasks   task.Repository
	Staff   staff.Repository
	History history.Repository
}

// Apply writes d into repos if all of them are empty and reports whether it did.
// Staff workload in the seed is not trusted; callers reconcile it afterwards.
func Apply(ctx context.Context, repos Repositories, d *Data) (bool, error) {
	tasks, err := repos.Tasks.List(ctx)
	if err != nil {
		return false, err
	}
	members, err := repos.Staff.List(ctx)
	if err != nil {
		return false, err
	}
	records, err := repos.History.List(ctx)
	if err != nil {
		return false, err
	}
	if len(tasks)+len(members)+len(records) > 0 {
		return false, nil
	}

	for _, s := range d.Staff {
		if err := repos.Staff.Create(ctx, s); err != nil {
			return false, err
		}
	}
	for _, t := range d.Tasks {
		if err := repos.Tasks.Create(ctx, t); err != nil {
			return false, err
		}
	}
	for _, r := range d.History {
		if err := repos.History.Create(ctx, r); err != nil {
			return false, err
		}
	}
	return true, nil
}
