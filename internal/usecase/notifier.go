package usecase

import "context"

// Event names pushed to the realtime gateway.
const (
	EventAuctionOpened      = "auction-opened"
	EventAuctionUpdated     = "auction-updated"
	EventAuctionClosed      = "auction-closed"
	EventBidSurpassed       = "bid-surpassed"
	EventProxyBidActivated  = "proxy-bid-activated"
	EventUserAbandoned      = "user-abandoned-auction"
	EventResponseTimer      = "response-timer-started"
	EventComplianceChanged  = "compliance-status-changed"
	EventPenaltyApplied     = "penalty-applied"
)

// LeagueRoom and UserRoom name the notification rooms.
func LeagueRoom(leagueID string) string { return "league-" + leagueID }
func UserRoom(userID string) string     { return "user-" + userID }

// Notifier is the fire-and-forget realtime publish channel. Implementations
// give no delivery guarantee; failures are logged by the caller and never
// affect the primary operation.
type Notifier interface {
	Publish(ctx context.Context, room, event string, payload any) error
}

type noopNotifier struct{}

func (noopNotifier) Publish(context.Context, string, string, any) error { return nil }

func NewNoopNotifier() Notifier {
	return noopNotifier{}
}
