package storage

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/spacesub/internal/common"
	"github.com/Veraticus/spacesub/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSubscription(userID, name string, next time.Time) *model.Subscription {
	return &model.Subscription{
		UserID:       userID,
		Name:         name,
		Amount:       decimal.RequireFromString("799"),
		Currency:     "RUB",
		BillingCycle: model.CycleMonthly,
		NextBilling:  next,
		IsActive:     true,
	}
}

func TestCreateAndGetSubscription(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	sub := newTestSubscription("user-1", "Netflix", time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC))
	sub.Category = "Entertainment"
	require.NoError(t, store.CreateSubscription(ctx, sub))
	assert.NotEmpty(t, sub.ID)
	assert.False(t, sub.CreatedAt.IsZero())

	got, err := store.GetSubscription(ctx, "user-1", sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "Netflix", got.Name)
	assert.Equal(t, "Entertainment", got.Category)
	assert.True(t, got.Amount.Equal(sub.Amount))
	assert.Equal(t, model.CycleMonthly, got.BillingCycle)
	assert.True(t, got.NextBilling.Equal(sub.NextBilling))
	assert.True(t, got.IsActive)

	_, err = store.GetSubscription(ctx, "user-2", sub.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCreateSubscription_Invalid(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	tests := []struct {
		name   string
		mutate func(*model.Subscription)
	}{
		{name: "missing name", mutate: func(s *model.Subscription) { s.Name = "" }},
		{name: "negative amount", mutate: func(s *model.Subscription) { s.Amount = decimal.NewFromInt(-1) }},
		{name: "bad cycle", mutate: func(s *model.Subscription) { s.BillingCycle = "DAILY" }},
		{name: "missing currency", mutate: func(s *model.Subscription) { s.Currency = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := newTestSubscription("user-1", "Netflix", time.Now())
			tt.mutate(sub)
			assert.ErrorIs(t, store.CreateSubscription(ctx, sub), ErrInvalidSubscription)
		})
	}
}

func TestListSubscriptions_OrderedByNextBilling(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	later := newTestSubscription("user-1", "Yearly thing", time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC))
	sooner := newTestSubscription("user-1", "Spotify", time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))
	undated := newTestSubscription("user-1", "Gym", time.Time{})
	for _, s := range []*model.Subscription{later, undated, sooner} {
		require.NoError(t, store.CreateSubscription(ctx, s))
	}
	require.NoError(t, store.CreateSubscription(ctx, newTestSubscription("user-2", "Other", time.Now())))

	subs, err := store.ListSubscriptions(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, subs, 3)
	assert.Equal(t, "Spotify", subs[0].Name)
	assert.Equal(t, "Yearly thing", subs[1].Name)
	assert.Equal(t, "Gym", subs[2].Name)
	assert.True(t, subs[2].NextBilling.IsZero())
}

func TestCreateSubscriptionFromSuggestion(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	txns := createTestTransactions("user-1", "NETFLIX.COM", "799", 4)
	_, err := store.SaveTransactions(ctx, txns)
	require.NoError(t, err)

	ids := make([]string, 0, len(txns))
	for _, txn := range txns {
		ids = append(ids, txn.ID)
	}

	sub := newTestSubscription("user-1", "NETFLIX.COM", time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC))
	linked, err := store.CreateSubscriptionFromSuggestion(ctx, sub, ids)
	require.NoError(t, err)
	assert.Equal(t, 4, linked)

	unlinked, err := store.GetUnlinkedTransactions(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, unlinked)

	got, err := store.GetTransactionByID(ctx, ids[0])
	require.NoError(t, err)
	require.NotNil(t, got.SubscriptionID)
	assert.Equal(t, sub.ID, *got.SubscriptionID)
}

func TestCreateSubscriptionFromSuggestion_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	txns := createTestTransactions("user-1", "NETFLIX.COM", "799", 2)
	_, err := store.SaveTransactions(ctx, txns)
	require.NoError(t, err)

	existing := newTestSubscription("user-1", "Netflix", time.Now())
	require.NoError(t, store.CreateSubscription(ctx, existing))

	// Reusing the ID violates the primary key, so nothing may be linked.
	dup := newTestSubscription("user-1", "Netflix again", time.Now())
	dup.ID = existing.ID
	_, err = store.CreateSubscriptionFromSuggestion(ctx, dup, []string{txns[0].ID, txns[1].ID})
	require.Error(t, err)

	unlinked, err := store.GetUnlinkedTransactions(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, unlinked, 2)
}

func TestCreateSubscriptionFromSuggestion_AlreadyLinked(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	txns := createTestTransactions("user-1", "NETFLIX.COM", "799", 3)
	_, err := store.SaveTransactions(ctx, txns)
	require.NoError(t, err)
	ids := []string{txns[0].ID, txns[1].ID, txns[2].ID}

	first := newTestSubscription("user-1", "NETFLIX.COM", time.Now())
	_, err = store.CreateSubscriptionFromSuggestion(ctx, first, ids)
	require.NoError(t, err)

	second := newTestSubscription("user-1", "NETFLIX.COM", time.Now())
	_, err = store.CreateSubscriptionFromSuggestion(ctx, second, ids)
	assert.ErrorIs(t, err, common.ErrAlreadyLinked)

	subs, err := store.ListSubscriptions(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, subs, 1, "no orphan subscription")
}

func TestUpdateSubscription(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	sub := newTestSubscription("user-1", "Netflix", time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC))
	sub.Category = "Video"
	require.NoError(t, store.CreateSubscription(ctx, sub))
	created, err := store.GetSubscription(ctx, "user-1", sub.ID)
	require.NoError(t, err)

	sub.Name = "Netflix Premium"
	sub.Amount = decimal.RequireFromString("1199.50")
	sub.BillingCycle = model.CycleYearly
	sub.NextBilling = time.Time{}
	sub.Category = ""
	sub.IsActive = false
	require.NoError(t, store.UpdateSubscription(ctx, sub))

	got, err := store.GetSubscription(ctx, "user-1", sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "Netflix Premium", got.Name)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("1199.50")))
	assert.Equal(t, model.CycleYearly, got.BillingCycle)
	assert.True(t, got.NextBilling.IsZero(), "next billing can be cleared")
	assert.Empty(t, got.Category)
	assert.False(t, got.IsActive)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt), "created_at is preserved")

	t.Run("other user", func(t *testing.T) {
		other := *sub
		other.UserID = "user-2"
		assert.ErrorIs(t, store.UpdateSubscription(ctx, &other), common.ErrNotFound)

		unchanged, err := store.GetSubscription(ctx, "user-1", sub.ID)
		require.NoError(t, err)
		assert.Equal(t, "Netflix Premium", unchanged.Name)
	})

	t.Run("unknown id", func(t *testing.T) {
		missing := *sub
		missing.ID = "does-not-exist"
		assert.ErrorIs(t, store.UpdateSubscription(ctx, &missing), common.ErrNotFound)
	})

	t.Run("invalid", func(t *testing.T) {
		bad := *sub
		bad.Name = " "
		assert.ErrorIs(t, store.UpdateSubscription(ctx, &bad), ErrInvalidSubscription)

		noID := *sub
		noID.ID = ""
		assert.ErrorIs(t, store.UpdateSubscription(ctx, &noID), ErrEmptyString)
	})
}

func TestDeleteSubscription(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	txns := createTestTransactions("user-1", "NETFLIX.COM", "799", 3)
	_, err := store.SaveTransactions(ctx, txns)
	require.NoError(t, err)

	sub := newTestSubscription("user-1", "Netflix", time.Now())
	_, err = store.CreateSubscriptionFromSuggestion(ctx, sub, []string{txns[0].ID, txns[1].ID, txns[2].ID})
	require.NoError(t, err)

	assert.ErrorIs(t, store.DeleteSubscription(ctx, "user-2", sub.ID), common.ErrNotFound)

	require.NoError(t, store.DeleteSubscription(ctx, "user-1", sub.ID))

	_, err = store.GetSubscription(ctx, "user-1", sub.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	unlinked, err := store.GetUnlinkedTransactions(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, unlinked, 3, "deleting a subscription frees its transactions")

	assert.ErrorIs(t, store.DeleteSubscription(ctx, "user-1", sub.ID), common.ErrNotFound)
}
