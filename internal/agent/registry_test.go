// ABOUTME: Tests for the agent registry.
// ABOUTME: Covers registration, duplicates, lookup, listing order, and seeding.

package agent

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry(nil)

	a := &Agent{ID: "helper", Name: "Helper", Provider: ProviderOpenAI, Model: "gpt-4"}
	require.NoError(t, r.Register(a))

	got, err := r.Get("helper")
	require.NoError(t, err)
	assert.Equal(t, "Helper", got.Name)
	assert.Equal(t, ProviderOpenAI, got.Provider)
}

func TestRegistry_DuplicateID(t *testing.T) {
	r := NewRegistry(nil)

	require.NoError(t, r.Register(&Agent{ID: "helper", Provider: ProviderOpenAI}))
	err := r.Register(&Agent{ID: "helper", Provider: ProviderAnthropic})
	assert.ErrorIs(t, err, ErrDuplicateAgent)

	// Original entry is untouched
	got, err := r.Get("helper")
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, got.Provider)
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry(nil)

	_, err := r.Get("nope")
	assert.ErrorIs(t, err, ErrAgentNotFound)
}

func TestRegistry_ListPreservesInsertionOrder(t *testing.T) {
	r := NewRegistry(nil)

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, r.Register(&Agent{ID: id}))
	}

	list := r.List()
	require.Len(t, list, 3)
	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, "a", list[1].ID)
	assert.Equal(t, "b", list[2].ID)
}

func TestRegistry_SeedBuiltins(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, SeedBuiltins(r))

	list := r.List()
	require.Len(t, list, 4)
	assert.Equal(t, "general-assistant", list[0].ID)

	ga, err := r.Get("general-assistant")
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, ga.Provider)
	assert.Equal(t, "gpt-4", ga.Model)
	assert.NotEmpty(t, ga.SystemPrompt)

	cw, err := r.Get("creative-writer")
	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, cw.Provider)

	// Seeding twice fails on the first duplicate
	assert.ErrorIs(t, SeedBuiltins(r), ErrDuplicateAgent)
}

func TestRegistry_ConcurrentRegisterDistinctIDs(t *testing.T) {
	r := NewRegistry(nil)

	var wg sync.WaitGroup
	ids := []string{"a1", "a2", "a3", "a4", "a5", "a6", "a7", "a8"}
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			assert.NoError(t, r.Register(&Agent{ID: id}))
		}(id)
	}
	wg.Wait()

	assert.Len(t, r.List(), len(ids))
}

func TestProvider_Valid(t *testing.T) {
	assert.True(t, ProviderOpenAI.Valid())
	assert.True(t, ProviderAnthropic.Valid())
	assert.False(t, Provider("gemini").Valid())
	assert.False(t, Provider("").Valid())
}
