package usecase

import (
	"context"

	"github.com/riskibarqy/draft-auction/internal/platform/logging"
)

// Effect is a side effect to run after the owning transaction commits:
// notification publishes and best-effort compliance re-checks. Settlement
// code returns effects instead of invoking collaborators mid-transaction, so
// the dependency is explicit and independently testable. Effects are
// best-effort; each one handles and logs its own failure.
type Effect func(ctx context.Context)

func runEffects(ctx context.Context, effects []Effect) {
	for _, effect := range effects {
		if effect == nil {
			continue
		}
		effect(ctx)
	}
}

// publishEffect wraps one notifier publish; failures are logged and swallowed.
func publishEffect(notifier Notifier, logger *logging.Logger, room, event string, payload any) Effect {
	return func(ctx context.Context) {
		if err := notifier.Publish(ctx, room, event, payload); err != nil {
			logger.WarnContext(ctx, "notification publish failed",
				"room", room,
				"event", event,
				"error", err,
			)
		}
	}
}
