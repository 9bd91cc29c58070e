package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// DefaultMutationChannel is the pub/sub channel the CRUD layer announces
// graph mutations on
const DefaultMutationChannel = "family:graph:mutated"

// ErrEmptyMutation is returned for a mutation naming no persons
var ErrEmptyMutation = errors.New("mutation names no persons")

// GraphMutation announces that persons, their marriages or their parent
// links changed
type GraphMutation struct {
	EventID    string    `json:"event_id"`
	PersonIDs  []int64   `json:"person_ids"`
	Source     string    `json:"source"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher is implemented by the common Redis client
type Publisher interface {
	PublishEvent(ctx context.Context, channel string, message []byte) error
}

// NewGraphMutation builds an event with a fresh id. Person ids are sorted
// and deduplicated.
func NewGraphMutation(source string, personIDs []int64) (*GraphMutation, error) {
	ids, err := normalize(personIDs)
	if err != nil {
		return nil, err
	}
	return &GraphMutation{
		EventID:    uuid.NewString(),
		PersonIDs:  ids,
		Source:     source,
		OccurredAt: time.Now().UTC(),
	}, nil
}

// PublishGraphMutation publishes a mutation event and returns it
func PublishGraphMutation(ctx context.Context, pub Publisher, channel, source string, personIDs []int64) (*GraphMutation, error) {
	ev, err := NewGraphMutation(source, personIDs)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mutation event: %w", err)
	}

	if err := pub.PublishEvent(ctx, channel, payload); err != nil {
		return nil, err
	}
	return ev, nil
}

// DecodeGraphMutation parses and validates a mutation payload
func DecodeGraphMutation(payload []byte) (*GraphMutation, error) {
	var ev GraphMutation
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("failed to decode mutation event: %w", err)
	}

	ids, err := normalize(ev.PersonIDs)
	if err != nil {
		return nil, err
	}
	ev.PersonIDs = ids

	if ev.EventID != "" {
		if _, err := uuid.Parse(ev.EventID); err != nil {
			return nil, fmt.Errorf("invalid event id %q: %w", ev.EventID, err)
		}
	}

	return &ev, nil
}

func normalize(personIDs []int64) ([]int64, error) {
	if len(personIDs) == 0 {
		return nil, ErrEmptyMutation
	}
	ids := slices.Clone(personIDs)
	for _, id := range ids {
		if id <= 0 {
			return nil, fmt.Errorf("invalid person id %d", id)
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}
