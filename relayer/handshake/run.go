package handshake

import (
	"context"
	"time"

	"github.com/mosaicxc/relayer/pkg/relayererrors"
	"github.com/mosaicxc/relayer/relayer/ibc"
)

// stepper is satisfied by ConnectionDriver and ChannelDriver: drive
// one (a_state, b_state) observation and, if not yet Completed, send
// the next message the table prescribes (spec §4.5).
type stepper interface {
	Step(ctx context.Context) (ibc.IbcEvent, bool, error)
}

// defaultRetryBackoff is the delay between handshake cycles when Step
// reports the state pair has not yet matured (spec §7
// HandshakeRetryable: "Loop after small delay").
const defaultRetryBackoff = 500 * time.Millisecond

// Run drives s to completion, retrying on relayererrors.IsRetryable
// errors after defaultRetryBackoff and returning immediately on a
// fatal error or ctx cancellation. It returns every event extracted
// along the way, in order (spec §4.5 termination rule: "exits with
// Completed when both ends reach Open").
func Run(ctx context.Context, s stepper) ([]ibc.IbcEvent, error) {
	var events []ibc.IbcEvent
	for {
		if err := ctx.Err(); err != nil {
			return events, err
		}

		event, done, err := s.Step(ctx)
		if err != nil {
			if relayererrors.IsRetryable(err) {
				select {
				case <-time.After(defaultRetryBackoff):
					continue
				case <-ctx.Done():
					return events, ctx.Err()
				}
			}
			return events, err
		}
		if event != nil {
			events = append(events, event)
		}
		if done {
			return events, nil
		}
	}
}
