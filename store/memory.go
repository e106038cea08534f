// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/veato-app/veato-server/models"
)

// Memory is an in-process PollStore/TeamStore/ProfileDirectory for tests.
// Documents round-trip through JSON on every read and write so tests see
// the same copy semantics (and the same tag-driven field set) as the SQL
// store. ConflictsBeforeWrite injects version conflicts to exercise the
// optimistic retry loop.
type Memory struct {
	mu       sync.Mutex
	polls    map[string]versionedDoc
	teams    map[string][]byte
	profiles map[string][]byte

	// ConflictsBeforeWrite makes the next N poll updates fail with
	// ErrVersionConflict without changing state.
	ConflictsBeforeWrite int
}

type versionedDoc struct {
	doc     []byte
	version int64
}

func NewMemory() *Memory {
	return &Memory{
		polls:    make(map[string]versionedDoc),
		teams:    make(map[string][]byte),
		profiles: make(map[string][]byte),
	}
}

func (m *Memory) Get(_ context.Context, id string) (models.Poll, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.polls[id]
	if !ok {
		return models.Poll{}, 0, ErrNotFound
	}
	var p models.Poll
	if err := json.Unmarshal(entry.doc, &p); err != nil {
		return models.Poll{}, 0, err
	}
	return p, entry.version, nil
}

func (m *Memory) Create(_ context.Context, p models.Poll) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.polls[p.ID]; ok {
		return ErrAlreadyExists
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return err
	}
	m.polls[p.ID] = versionedDoc{doc: doc, version: 1}
	return nil
}

func (m *Memory) Update(_ context.Context, p models.Poll, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.polls[p.ID]
	if !ok {
		return ErrNotFound
	}
	if m.ConflictsBeforeWrite > 0 {
		m.ConflictsBeforeWrite--
		return ErrVersionConflict
	}
	if entry.version != expectedVersion {
		return ErrVersionConflict
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return err
	}
	m.polls[p.ID] = versionedDoc{doc: doc, version: entry.version + 1}
	return nil
}

// Teams returns the TeamStore view of m.
func (m *Memory) Teams() TeamStore { return (*memoryTeams)(m) }

// Profiles returns the ProfileDirectory view of m.
func (m *Memory) Profiles() ProfileDirectory { return (*memoryProfiles)(m) }

type memoryTeams Memory

func (m *memoryTeams) Get(_ context.Context, id string) (models.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.teams[id]
	if !ok {
		return models.Team{}, ErrNotFound
	}
	var t models.Team
	if err := json.Unmarshal(doc, &t); err != nil {
		return models.Team{}, err
	}
	return t, nil
}

func (m *memoryTeams) Save(_ context.Context, t models.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := json.Marshal(t)
	if err != nil {
		return err
	}
	m.teams[t.ID] = doc
	return nil
}

type memoryProfiles Memory

func (m *memoryProfiles) Constraints(_ context.Context, userIDs []string) ([]models.MemberConstraints, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	members := make([]models.MemberConstraints, 0, len(userIDs))
	for _, userID := range userIDs {
		member := models.MemberConstraints{UserID: userID}
		if doc, ok := m.profiles[userID]; ok {
			if err := json.Unmarshal(doc, &member.Constraints); err != nil {
				return nil, err
			}
		}
		members = append(members, member)
	}
	return members, nil
}

func (m *memoryProfiles) Save(_ context.Context, userID string, c models.RawConstraints) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := json.Marshal(c)
	if err != nil {
		return err
	}
	m.profiles[userID] = doc
	return nil
}
