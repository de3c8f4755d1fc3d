// ABOUTME: Tests for user accounts and usage counters.
// ABOUTME: Covers duplicate emails, lookups, and usage accumulation.

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser(email string) *User {
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     "tester",
		PasswordHash: "$2a$10$fakehash",
		CreatedAt:    time.Now(),
	}
}

func TestCreateUser_AndLookups(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := testUser("a@example.com")
	require.NoError(t, s.CreateUser(ctx, u))

	byID, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", byID.Email)
	assert.Zero(t, byID.RequestCount)
	assert.Zero(t, byID.TokenCount)

	byEmail, err := s.GetUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, testUser("a@example.com")))
	err := s.CreateUser(ctx, testUser("a@example.com"))
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestGetUser_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUser(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetUserByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddUsage_Accumulates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := testUser("a@example.com")
	require.NoError(t, s.CreateUser(ctx, u))

	require.NoError(t, s.AddUsage(ctx, u.ID, 1, 120))
	require.NoError(t, s.AddUsage(ctx, u.ID, 1, 35))

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.RequestCount)
	assert.Equal(t, int64(155), got.TokenCount)
}

func TestAddUsage_UnknownUser(t *testing.T) {
	s := newTestStore(t)

	err := s.AddUsage(context.Background(), "missing", 1, 10)
	assert.ErrorIs(t, err, ErrNotFound)
}
