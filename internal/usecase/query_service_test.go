package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/draft-auction/internal/domain/auction"
	"github.com/riskibarqy/draft-auction/internal/domain/item"
	"github.com/riskibarqy/draft-auction/internal/infrastructure/repository/memory"
)

func newQueryService(env *testEnv) *QueryService {
	svc := NewQueryService(env.store, env.comp, nil)
	svc.now = func() time.Time { return env.now }
	return svc
}

func TestQueryService_ListOpenAuctions(t *testing.T) {
	env := newTestEnv(t)
	queries := newQueryService(env)
	ctx := context.Background()

	opened, err := env.bids.PlaceBid(ctx, PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo,
		ItemID:   "item-fw-1",
		UserID:   "alice",
		Amount:   30,
		ProxyMax: 60,
	})
	require.NoError(t, err)
	require.True(t, opened.Opened)

	_, err = env.bids.PlaceBid(ctx, PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo,
		ItemID:   "item-mf-1",
		UserID:   "bob",
		Amount:   25,
	})
	require.NoError(t, err)

	views, err := queries.ListOpenAuctions(ctx, memory.LeagueIDDraftDemo, "alice")
	require.NoError(t, err)
	require.Len(t, views, 2)

	byItem := make(map[string]AuctionView, len(views))
	for _, v := range views {
		byItem[v.Auction.ItemID] = v
	}

	striker := byItem["item-fw-1"]
	require.Equal(t, "Striker", striker.ItemName)
	require.Equal(t, item.RoleForward, striker.Role)
	require.Equal(t, auction.UserStateLeading, striker.MyState)
	require.EqualValues(t, 60, striker.MyProxyMax)
	require.Nil(t, striker.TimerDeadline)

	playmaker := byItem["item-mf-1"]
	require.Equal(t, auction.UserState(""), playmaker.MyState)
	require.Zero(t, playmaker.MyProxyMax)
}

func TestQueryService_ListOpenAuctions_ShowsSurpassedDeadline(t *testing.T) {
	env := newTestEnv(t)
	queries := newQueryService(env)
	ctx := context.Background()

	_, err := env.bids.PlaceBid(ctx, PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo,
		ItemID:   "item-fw-1",
		UserID:   "alice",
		Amount:   30,
	})
	require.NoError(t, err)

	_, err = env.bids.PlaceBid(ctx, PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo,
		ItemID:   "item-fw-1",
		UserID:   "bob",
		Amount:   35,
	})
	require.NoError(t, err)

	views, err := queries.ListOpenAuctions(ctx, memory.LeagueIDDraftDemo, "alice")
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, auction.UserStateCanCounter, views[0].MyState)
	require.NotNil(t, views[0].TimerDeadline)
	require.Equal(t, env.now.Add(time.Hour), *views[0].TimerDeadline)
}

func TestQueryService_ListOpenAuctions_UnknownLeague(t *testing.T) {
	env := newTestEnv(t)
	queries := newQueryService(env)

	_, err := queries.ListOpenAuctions(context.Background(), "missing-league", "alice")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestQueryService_ParticipantSummary(t *testing.T) {
	env := newTestEnv(t)
	queries := newQueryService(env)
	ctx := context.Background()

	_, err := env.bids.PlaceBid(ctx, PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo,
		ItemID:   "item-fw-1",
		UserID:   "alice",
		Amount:   30,
		ProxyMax: 60,
	})
	require.NoError(t, err)

	summary, err := queries.ParticipantSummary(ctx, memory.LeagueIDDraftDemo, "alice")
	require.NoError(t, err)

	require.EqualValues(t, 500, summary.Participant.CurrentBudget)
	require.EqualValues(t, 60, summary.Participant.LockedCredits)
	require.EqualValues(t, 440, summary.Available)
	require.Empty(t, summary.Assignments)

	forward := summary.Coverage[item.RoleForward]
	require.Equal(t, 2, forward.Required)
	require.Equal(t, 1, forward.Covered)
}

func TestQueryService_ParticipantSummary_UnknownUser(t *testing.T) {
	env := newTestEnv(t)
	queries := newQueryService(env)

	_, err := queries.ParticipantSummary(context.Background(), memory.LeagueIDDraftDemo, "mallory")
	require.ErrorIs(t, err, ErrNotFound)
}
