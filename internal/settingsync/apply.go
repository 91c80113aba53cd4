package settingsync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/patrick-jessen/enginectl/internal/logging"
	"github.com/patrick-jessen/enginectl/internal/settings"
)

// ErrPartialApply is matched by errors reporting members that failed to commit.
var ErrPartialApply = errors.New("partial apply failure")

// PartialApplyError lists the members that did not commit.
type PartialApplyError struct {
	Failed map[settings.Key]error
}

func (e *PartialApplyError) Error() string {
	keys := make([]string, 0, len(e.Failed))
	for key := range e.Failed {
		keys = append(keys, string(key))
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", key, e.Failed[settings.Key(key)]))
	}
	return fmt.Sprintf("%d setting(s) failed to apply: %s", len(keys), strings.Join(parts, "; "))
}

func (e *PartialApplyError) Unwrap() error {
	return ErrPartialApply
}

// ApplyResult reports the outcome of Apply per member.
type ApplyResult struct {
	Failed    map[settings.Key]error
	Committed []settings.Key
}

// Err returns a *PartialApplyError when any member failed, nil otherwise.
func (r ApplyResult) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	return &PartialApplyError{Failed: r.Failed}
}

type stagedWrite struct {
	desc    settings.Descriptor
	value   settings.Value
	wire    any
	version uint64
}

// Apply writes every pending member and then commits the group. Members are
// written independently: those that succeed become Synced, those that fail
// stay Pending with Err set so a later Apply only resends them. If the commit
// request itself fails, every written member counts as failed.
func (s *Session) Apply(ctx context.Context) (ApplyResult, error) {
	result := ApplyResult{Failed: map[settings.Key]error{}}
	logger := logging.Get(ctx).With().Str("group", string(s.group.Key)).Logger()

	s.mu.Lock()
	if !s.mounted {
		s.mu.Unlock()
		return result, ErrUnmounted
	}
	if s.applying {
		s.mu.Unlock()
		return result, ErrApplyInFlight
	}

	var staged []stagedWrite
	for _, desc := range s.group.Members {
		e := s.entries[desc.Key]
		if e.status != Pending || !s.enabledLocked(desc) {
			continue
		}
		wire, err := desc.Encode(e.value)
		if err != nil {
			result.Failed[desc.Key] = err
			continue
		}
		staged = append(staged, stagedWrite{desc: desc, value: e.value, wire: wire, version: e.version})
	}
	if len(staged) == 0 {
		s.mu.Unlock()
		logger.Debug().Msg("nothing to apply")
		return result, nil
	}
	s.applying = true
	generation := s.generation
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.applying = false
		s.mu.Unlock()
	}()

	errs := make([]error, len(staged))
	var g errgroup.Group
	for i, w := range staged {
		g.Go(func() error {
			errs[i] = s.write(ctx, w.desc, w.wire)
			return nil
		})
	}
	_ = g.Wait()

	written := 0
	for _, err := range errs {
		if err == nil {
			written++
		}
	}
	if written > 0 {
		commitErr := s.endpoint.Post(ctx, s.group.ApplyPath(), nil)
		s.record(ctx, "", nil, commitErr)
		if commitErr != nil {
			logger.Error().Err(commitErr).Msg("failed to commit group")
			for i := range errs {
				if errs[i] == nil {
					errs[i] = fmt.Errorf("commit %s: %w", s.group.ApplyPath(), commitErr)
				}
			}
		}
	}

	s.mu.Lock()
	if !s.mounted || generation != s.generation {
		s.mu.Unlock()
		return result, ErrUnmounted
	}
	var changed []State
	for i, w := range staged {
		e := s.entries[w.desc.Key]
		if errs[i] != nil {
			result.Failed[w.desc.Key] = errs[i]
			e.err = errs[i]
		} else {
			result.Committed = append(result.Committed, w.desc.Key)
			e.synced = w.value
			e.err = nil
			// A newer edit made during the apply stays pending.
			if e.version == w.version {
				e.status = Synced
			}
		}
		e.version++
		changed = append(changed, s.stateLocked(e))
	}
	subs := s.subscribersLocked()
	s.mu.Unlock()
	notify(subs, changed)

	logger.Info().
		Int("committed", len(result.Committed)).
		Int("failed", len(result.Failed)).
		Msg("applied settings")
	return result, nil
}
