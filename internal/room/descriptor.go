package room

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/housekeeping/internal/task"
	"github.com/kazz187/housekeeping/pkg/cerr"
)

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyNormal Urgency = "normal"
	UrgencyHigh   Urgency = "high"
	UrgencyUrgent Urgency = "urgent"
)

// Priority maps the front desk's urgency onto task priority.
func (u Urgency) Priority() (task.Priority, error) {
	switch Urgency(strings.ToLower(string(u))) {
	case UrgencyLow:
		return task.PriorityLow, nil
	case "", UrgencyNormal, "medium":
		return task.PriorityMedium, nil
	case UrgencyHigh, UrgencyUrgent:
		return task.PriorityHigh, nil
	}
	return "", cerr.NewError(cerr.InvalidInput, fmt.Sprintf("unknown urgency %q", u), nil)
}

// Descriptor is one room as reported by the front desk.
type Descriptor struct {
	RoomID        string  `yaml:"room_id" json:"roomId"`
	RoomType      string  `yaml:"room_type" json:"roomType"`
	NeedsCleaning bool    `yaml:"needs_cleaning" json:"needsCleaning"`
	Urgency       Urgency `yaml:"urgency" json:"urgency"`
}

type feed struct {
	Rooms []Descriptor `yaml:"rooms"`
}

// ParseFeed decodes a YAML feed of the form {rooms: [...]}.
func ParseFeed(data []byte) ([]Descriptor, error) {
	var f feed
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, cerr.NewError(cerr.InvalidInput, "malformed room feed", err)
	}
	return f.Rooms, nil
}

func LoadFeed(path string) ([]Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read room feed %s: %w", path, err)
	}
	return ParseFeed(data)
}
