package settingsync

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/patrick-jessen/enginectl/internal/logging"
	"github.com/patrick-jessen/enginectl/internal/remote"
	"github.com/patrick-jessen/enginectl/internal/settings"
)

// Result is the outcome of reading one setting.
type Result struct {
	Value settings.Value
	Raw   any
	Err   error
}

// Fetch maps each member of a group to its read result.
type Fetch map[settings.Key]Result

// Failed returns the keys whose read did not produce a recognised value.
func (f Fetch) Failed() []settings.Key {
	var keys []settings.Key
	for key, r := range f {
		if r.Err != nil {
			keys = append(keys, key)
		}
	}
	return keys
}

// FetchGroup reads every member of the group from the engine. Members are read
// concurrently and independently: a failed read only affects its own result.
func FetchGroup(ctx context.Context, endpoint remote.Endpoint, group settings.Group) Fetch {
	return fetchGroup(ctx, endpoint, group, nil)
}

// fetchGroup optionally holds a per-key lock around each read so that reads
// and writes of the same key reach the engine in order.
func fetchGroup(ctx context.Context, endpoint remote.Endpoint, group settings.Group, lock func(settings.Key) func()) Fetch {
	results := make([]Result, len(group.Members))

	var g errgroup.Group
	for i, desc := range group.Members {
		g.Go(func() error {
			if lock != nil {
				defer lock(desc.Key)()
			}
			results[i] = readMember(ctx, endpoint, group, desc)
			return nil
		})
	}
	_ = g.Wait()

	fetch := make(Fetch, len(results))
	for i, desc := range group.Members {
		fetch[desc.Key] = results[i]
	}
	return fetch
}

func readMember(ctx context.Context, endpoint remote.Endpoint, group settings.Group, desc settings.Descriptor) Result {
	path := group.PathOf(desc)
	logger := logging.Get(ctx)

	wire := desc.Codec.NewWire()
	if err := endpoint.Get(ctx, path, wire); err != nil {
		logger.Warn().Err(err).Str("key", string(desc.Key)).Msg("failed to read setting")
		return Result{Err: err}
	}

	value := desc.Decode(wire)
	if value == settings.Unrecognized {
		err := &remote.DecodeError{Path: path, Err: fmt.Errorf("unrecognized value %+v", wire)}
		logger.Warn().Err(err).Str("key", string(desc.Key)).Msg("engine reported unknown value")
		return Result{Value: value, Raw: wire, Err: err}
	}

	logger.Debug().Str("key", string(desc.Key)).Stringer("value", value).Msg("read setting")
	return Result{Value: value, Raw: wire}
}
