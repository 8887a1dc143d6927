package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/umlhub/umlhub-backend/internal/assistant/domain"
)

func TestVolatileStoreSaveAndLoad(t *testing.T) {
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewVolatileStore(24*time.Hour, func() time.Time { return clock })

	s.Save("sess-1", []domain.Turn{
		{Role: domain.RoleUser, Content: "draw a class diagram"},
		{Role: domain.RoleAssistant, Content: "@startuml\n@enduml", IsCodeResponse: true},
	})

	turns := s.Load("sess-1")
	assert.Len(t, turns, 2)
	assert.Equal(t, domain.RoleUser, turns[0].Role)
	assert.True(t, turns[1].IsCodeResponse)
}

func TestVolatileStoreUnknownSession(t *testing.T) {
	s := NewVolatileStore(24*time.Hour, nil)
	assert.Nil(t, s.Load("nope"))
}

func TestVolatileStoreExpiry(t *testing.T) {
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewVolatileStore(24*time.Hour, func() time.Time { return clock })

	s.Save("sess-1", []domain.Turn{{Role: domain.RoleUser, Content: "hi"}})

	clock = clock.Add(23 * time.Hour)
	assert.NotNil(t, s.Load("sess-1"))

	clock = clock.Add(2 * time.Hour)
	assert.Nil(t, s.Load("sess-1"))
}

func TestVolatileStoreSaveRefreshesDeadline(t *testing.T) {
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewVolatileStore(24*time.Hour, func() time.Time { return clock })

	s.Save("sess-1", []domain.Turn{{Role: domain.RoleUser, Content: "first"}})

	clock = clock.Add(20 * time.Hour)
	s.Save("sess-1", []domain.Turn{{Role: domain.RoleUser, Content: "second"}})

	clock = clock.Add(20 * time.Hour)
	turns := s.Load("sess-1")
	assert.Len(t, turns, 1)
	assert.Equal(t, "second", turns[0].Content)
}

func TestVolatileStoreSweepOnWrite(t *testing.T) {
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewVolatileStore(24*time.Hour, func() time.Time { return clock })

	s.Save("old", []domain.Turn{{Role: domain.RoleUser, Content: "stale"}})

	clock = clock.Add(25 * time.Hour)
	s.Save("fresh", []domain.Turn{{Role: domain.RoleUser, Content: "live"}})

	s.mu.Lock()
	_, oldPresent := s.sessions["old"]
	s.mu.Unlock()
	assert.False(t, oldPresent)
	assert.Equal(t, 1, s.Len())
}

func TestVolatileStoreClear(t *testing.T) {
	s := NewVolatileStore(24*time.Hour, nil)
	s.Save("sess-1", []domain.Turn{{Role: domain.RoleUser, Content: "hi"}})
	s.Clear("sess-1")
	assert.Nil(t, s.Load("sess-1"))
}

func TestVolatileStoreLoadReturnsCopy(t *testing.T) {
	s := NewVolatileStore(24*time.Hour, nil)
	s.Save("sess-1", []domain.Turn{{Role: domain.RoleUser, Content: "hi"}})

	turns := s.Load("sess-1")
	turns[0].Content = "mutated"

	again := s.Load("sess-1")
	assert.Equal(t, "hi", again[0].Content)
}
