package assistant

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dbarry-dev/stationtrack/internal/domain/models"
	"github.com/dbarry-dev/stationtrack/internal/repository/registry"
)

// State models the assistant loop for observability. The loop itself is
// synchronous; states only appear in debug logs.
type State string

const (
	StateIdle       State = "idle"
	StateListening  State = "listening"
	StateResponding State = "responding"
	StateStopped    State = "stopped"
)

// Canned responses, kept in one place so the tests and the loop agree.
const (
	msgActivated    = "Voice assistant activated. Ask me about any item."
	msgRetry        = "I didn't understand that. Please repeat again."
	msgNoCandidate  = "I couldn't detect an item ID. Try again."
	msgStopping     = "Stopping voice assistant."
	fmtNotFound     = "I cannot find item %s in the system."
	fmtLastLocation = "Item %s was last seen at %s on %s."
)

// Listener captures one spoken utterance and returns its transcript.
type Listener interface {
	Listen(ctx context.Context) (string, error)
}

// Speaker voices a response back to the user.
type Speaker interface {
	Say(ctx context.Context, text string) error
}

// Assistant answers spoken queries about tracked items by substring-matching
// a token from the utterance against registry IDs.
type Assistant struct {
	listener Listener
	speaker  Speaker
	store    registry.Store
	logger   *zap.Logger
}

// New wires an assistant instance.
func New(listener Listener, speaker Speaker, store registry.Store, logger *zap.Logger) *Assistant {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{
		listener: listener,
		speaker:  speaker,
		store:    store,
		logger:   logger,
	}
}

// Run executes the query loop until a stop keyword is heard or the context
// is cancelled. Transcription failures and empty queries are recovered with
// a spoken prompt; only context cancellation and speaker failures end the
// loop early.
func (a *Assistant) Run(ctx context.Context) error {
	if err := a.say(ctx, msgActivated); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			a.transition(StateStopped)
			return nil
		}

		a.transition(StateListening)
		utterance, err := a.listener.Listen(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				a.transition(StateStopped)
				return nil
			}
			// no-speech, unrecognized and unreachable all get the same
			// retry prompt; the kind only matters for the log line.
			a.logger.Warn("transcription failed", zap.Error(err))
			if err := a.say(ctx, msgRetry); err != nil {
				return err
			}
			continue
		}

		a.logger.Debug("utterance received", zap.String("utterance", utterance))

		if models.IsStopCommand(utterance) {
			if err := a.say(ctx, msgStopping); err != nil {
				return err
			}
			a.transition(StateStopped)
			return nil
		}

		response, err := a.answer(ctx, utterance)
		if err != nil {
			return err
		}
		if err := a.say(ctx, response); err != nil {
			return err
		}
	}
}

// answer resolves one utterance to a spoken response. The query key is the
// last token longer than two characters; matching is a case-sensitive,
// unanchored substring scan over Item_ID, and the last matching row in
// registry order (the most recently appended) wins.
func (a *Assistant) answer(ctx context.Context, utterance string) (string, error) {
	candidates := models.CandidateIDs(utterance)
	if len(candidates) == 0 {
		return msgNoCandidate, nil
	}

	itemID := candidates[len(candidates)-1]

	matches, err := a.store.Search(ctx, itemID)
	if err != nil {
		return "", fmt.Errorf("search registry for %s: %w", itemID, err)
	}

	if len(matches) == 0 {
		return fmt.Sprintf(fmtNotFound, itemID), nil
	}

	last := matches[len(matches)-1]
	return fmt.Sprintf(fmtLastLocation, itemID, last.Location, last.Timestamp), nil
}

func (a *Assistant) say(ctx context.Context, text string) error {
	a.transition(StateResponding)
	if err := a.speaker.Say(ctx, text); err != nil {
		return fmt.Errorf("speak response: %w", err)
	}
	a.transition(StateIdle)
	return nil
}

func (a *Assistant) transition(state State) {
	a.logger.Debug("assistant state", zap.String("state", string(state)))
}
