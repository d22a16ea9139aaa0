package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"liist/common"
	"liist/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(items []models.ListItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Text)
	}
	return out
}

func registerUser(t *testing.T, s *stack, email string) *models.User {
	t.Helper()
	u, err := s.auth.Register(context.Background(), registerReq(email, strings.Split(email, "@")[0], "pw123456"))
	require.NoError(t, err)
	return u
}

func TestListService_AddUpdateDeleteScenario(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	alice := registerUser(t, s, "a@x.com")

	milk, err := s.lists.Add(ctx, alice.ID, "milk")
	require.NoError(t, err)
	s.clock.Advance(time.Second)
	eggs, err := s.lists.Add(ctx, alice.ID, "eggs")
	require.NoError(t, err)

	list, err := s.lists.List(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"milk", "eggs"}, texts(list))

	s.clock.Advance(time.Second)
	updated, err := s.lists.Update(ctx, alice.ID, milk.ID, "oat milk")
	require.NoError(t, err)
	assert.Equal(t, "oat milk", updated.Text)
	assert.True(t, updated.UpdatedAt.Equal(s.clock.t))

	list, err = s.lists.List(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"eggs", "oat milk"}, texts(list))

	require.NoError(t, s.lists.Delete(ctx, alice.ID, eggs.ID))
	list, err = s.lists.List(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"oat milk"}, texts(list))
}

func TestListService_ItemsAreIsolatedPerOwner(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	alice := registerUser(t, s, "a@x.com")
	bob := registerUser(t, s, "b@x.com")

	milk, err := s.lists.Add(ctx, alice.ID, "milk")
	require.NoError(t, err)

	bobList, err := s.lists.List(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bobList)

	_, err = s.lists.Get(ctx, bob.ID, milk.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = s.lists.Update(ctx, bob.ID, milk.ID, "x")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, s.lists.Delete(ctx, bob.ID, milk.ID), common.ErrNotFound)

	got, err := s.lists.Get(ctx, alice.ID, milk.ID)
	require.NoError(t, err)
	assert.Equal(t, "milk", got.Text)
}

func TestListService_MissingItem(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	alice := registerUser(t, s, "a@x.com")

	_, err := s.lists.Update(ctx, alice.ID, 9999, "x")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, s.lists.Delete(ctx, alice.ID, 9999), common.ErrNotFound)
}

func TestListService_TextRules(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	alice := registerUser(t, s, "a@x.com")

	item, err := s.lists.Add(ctx, alice.ID, "  bread  ")
	require.NoError(t, err)
	assert.Equal(t, "bread", item.Text)

	for _, text := range []string{"", "   ", strings.Repeat("a", models.MaxItemLength+1)} {
		_, err := s.lists.Add(ctx, alice.ID, text)
		require.ErrorIs(t, err, common.ErrValidation)

		var verr *common.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "content", verr.Field)

		_, err = s.lists.Update(ctx, alice.ID, item.ID, text)
		assert.ErrorIs(t, err, common.ErrValidation)
	}

	// the bound counts characters, not bytes
	_, err = s.lists.Add(ctx, alice.ID, strings.Repeat("é", models.MaxItemLength))
	assert.NoError(t, err)

	got, err := s.lists.Get(ctx, alice.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "bread", got.Text)
}

func TestListService_DuplicatesAllowed(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	alice := registerUser(t, s, "a@x.com")

	first, err := s.lists.Add(ctx, alice.ID, "milk")
	require.NoError(t, err)
	second, err := s.lists.Add(ctx, alice.ID, "milk")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	list, err := s.lists.List(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestListService_IDsAreNeverReused(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	alice := registerUser(t, s, "a@x.com")

	first, err := s.lists.Add(ctx, alice.ID, "milk")
	require.NoError(t, err)
	require.NoError(t, s.lists.Delete(ctx, alice.ID, first.ID))

	second, err := s.lists.Add(ctx, alice.ID, "milk")
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)
}
