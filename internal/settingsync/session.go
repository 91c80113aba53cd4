package settingsync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/patrick-jessen/enginectl/internal/logging"
	"github.com/patrick-jessen/enginectl/internal/remote"
	"github.com/patrick-jessen/enginectl/internal/settings"
)

type entry struct {
	desc   settings.Descriptor
	value  settings.Value
	synced settings.Value // last value known to be on the engine, nil before the first read
	raw    any
	err    error
	status Status
	// version is bumped by every local edit and every completed write so that
	// reads started earlier can be recognised as stale.
	version uint64
	// writing counts immediate writes in flight; reads never land over them.
	writing int
}

// Session is the client-side state of one mounted settings group.
type Session struct {
	endpoint remote.Endpoint
	recorder Recorder
	now      func() time.Time
	keyLocks map[settings.Key]*sync.Mutex
	engine   string
	group    settings.Group

	mu          sync.Mutex
	entries     map[settings.Key]*entry
	subscribers map[int]func(State)
	nextSub     int
	generation  uint64
	mounted     bool
	applying    bool
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithRecorder journals every write of the session.
func WithRecorder(r Recorder) SessionOption {
	return func(s *Session) {
		s.recorder = r
	}
}

// WithEngine names the engine in journal records.
func WithEngine(name string) SessionOption {
	return func(s *Session) {
		s.engine = name
	}
}

// Mount creates the state of a group. Every member starts Unknown with its
// documented default value until Load succeeds.
func Mount(endpoint remote.Endpoint, group settings.Group, opts ...SessionOption) *Session {
	s := &Session{
		endpoint:    endpoint,
		group:       group,
		now:         time.Now,
		keyLocks:    make(map[settings.Key]*sync.Mutex, len(group.Members)),
		entries:     make(map[settings.Key]*entry, len(group.Members)),
		subscribers: make(map[int]func(State)),
		mounted:     true,
	}
	for _, desc := range group.Members {
		s.keyLocks[desc.Key] = &sync.Mutex{}
		s.entries[desc.Key] = &entry{desc: desc, value: desc.Default, status: Unknown}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Group returns the mounted group.
func (s *Session) Group() settings.Group {
	return s.group
}

// Unmount discards the state. Results of calls still in flight are dropped.
func (s *Session) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mounted = false
	s.generation++
	s.entries = make(map[settings.Key]*entry)
	s.subscribers = make(map[int]func(State))
}

// Subscribe registers fn to be called with every changed state. The returned
// function removes the subscription.
func (s *Session) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Snapshot returns the state of every member in group order.
func (s *Session) Snapshot() []State {
	s.mu.Lock()
	defer s.mu.Unlock()

	states := make([]State, 0, len(s.group.Members))
	for _, desc := range s.group.Members {
		if e, ok := s.entries[desc.Key]; ok {
			states = append(states, s.stateLocked(e))
		}
	}
	return states
}

// State returns the state of one member.
func (s *Session) State(key settings.Key) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return State{}, false
	}
	return s.stateLocked(e), true
}

// Pending returns the keys with staged edits, in group order.
func (s *Session) Pending() []settings.Key {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []settings.Key
	for _, desc := range s.group.Members {
		if e, ok := s.entries[desc.Key]; ok && e.status == Pending {
			keys = append(keys, desc.Key)
		}
	}
	return keys
}

// Load reads the engine state of every member. A member whose read fails keeps
// its status and gets Err set; the other members are unaffected. A value the
// member does not offer is shown as Unrecognized with Err set, status kept. Reads are
// ignored for members edited while the read was in flight, and entirely when
// the session was unmounted meanwhile.
func (s *Session) Load(ctx context.Context) Fetch {
	logger := logging.Get(ctx)

	s.mu.Lock()
	if !s.mounted {
		s.mu.Unlock()
		return Fetch{}
	}
	generation := s.generation
	versions := make(map[settings.Key]uint64, len(s.entries))
	for key, e := range s.entries {
		versions[key] = e.version
	}
	s.mu.Unlock()

	fetch := fetchGroup(ctx, s.endpoint, s.group, s.lockKey)

	s.mu.Lock()
	if !s.mounted || generation != s.generation {
		s.mu.Unlock()
		logger.Debug().Str("group", string(s.group.Key)).Msg("dropping read for unmounted group")
		return fetch
	}

	var changed []State
	for _, desc := range s.group.Members {
		e := s.entries[desc.Key]
		res := fetch[desc.Key]
		if e.version != versions[desc.Key] || e.status == Pending || e.writing > 0 {
			logger.Debug().Str("key", string(desc.Key)).Msg("keeping local edit over engine read")
			continue
		}
		switch {
		case res.Value == nil:
			e.err = res.Err
		case res.Err != nil:
			// Engine value outside the domain: shown, but not trusted as synced.
			e.value = res.Value
			e.raw = res.Raw
			e.err = res.Err
		default:
			e.value = res.Value
			e.synced = res.Value
			e.raw = res.Raw
			e.err = res.Err
			e.status = Synced
		}
		changed = append(changed, s.stateLocked(e))
	}
	changed = append(changed, s.discardDisabledLocked()...)
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, changed)
	return fetch
}

// Set changes the value of a member. Immediate members are written to the
// engine right away and stay Synced; deferred members become Pending until
// Apply. A failed immediate write restores the previous value and sets Err.
func (s *Session) Set(ctx context.Context, key settings.Key, value settings.Value) error {
	s.mu.Lock()
	if !s.mounted {
		s.mu.Unlock()
		return ErrUnmounted
	}
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%s in group %s: %w", key, s.group.Key, settings.ErrUnknownSetting)
	}
	wire, err := e.desc.Encode(value)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if !s.enabledLocked(e.desc) {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", key, ErrDisabled)
	}

	e.version++
	e.value = value

	if e.desc.Policy == settings.Deferred {
		e.status = Pending
		changed := append([]State{s.stateLocked(e)}, s.discardDisabledLocked()...)
		subs := s.subscribersLocked()
		s.mu.Unlock()

		logging.Get(ctx).Debug().Str("key", string(key)).Stringer("value", value).Msg("staged setting")
		notify(subs, changed)
		return nil
	}

	previous := e.status
	generation := s.generation
	version := e.version
	e.status = Synced
	e.writing++
	changed := append([]State{s.stateLocked(e)}, s.discardDisabledLocked()...)
	subs := s.subscribersLocked()
	s.mu.Unlock()
	notify(subs, changed)

	err = s.write(ctx, e.desc, wire)

	s.mu.Lock()
	e.writing--
	if !s.mounted || generation != s.generation {
		s.mu.Unlock()
		return err
	}
	if err == nil {
		e.synced = value
		e.err = nil
		if e.version == version {
			e.value = value
		}
	} else if e.version == version {
		e.err = err
		e.status = previous
		if e.synced != nil {
			e.value = e.synced
		} else {
			e.value = e.desc.Default
		}
	}
	e.version++
	changed = []State{s.stateLocked(e)}
	changed = append(changed, s.discardDisabledLocked()...)
	subs = s.subscribersLocked()
	s.mu.Unlock()
	notify(subs, changed)

	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Revert drops every staged edit and restores the last known engine values.
func (s *Session) Revert() {
	s.mu.Lock()
	var changed []State
	for _, desc := range s.group.Members {
		e, ok := s.entries[desc.Key]
		if !ok || e.status != Pending {
			continue
		}
		s.resetLocked(e)
		changed = append(changed, s.stateLocked(e))
	}
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, changed)
}

// write sends one member's wire body, ordered behind other calls for the key.
func (s *Session) write(ctx context.Context, desc settings.Descriptor, wire any) error {
	unlock := s.lockKey(desc.Key)
	err := s.endpoint.Post(ctx, s.group.PathOf(desc), wire)
	unlock()

	s.record(ctx, desc.Key, wire, err)

	logger := logging.Get(ctx)
	if err != nil {
		logger.Error().Err(err).Str("key", string(desc.Key)).Msg("failed to write setting")
	} else {
		logger.Info().Str("key", string(desc.Key)).Interface("wire", wire).Msg("wrote setting")
	}
	return err
}

func (s *Session) record(ctx context.Context, key settings.Key, wire any, err error) {
	if s.recorder == nil {
		return
	}
	rec := Record{
		At:     s.now(),
		Engine: s.engine,
		Group:  s.group.Key,
		Key:    key,
		Wire:   wire,
		Err:    err,
	}
	if recErr := s.recorder.Record(rec); recErr != nil {
		logging.Get(ctx).Warn().Err(recErr).Msg("failed to journal write")
	}
}

func (s *Session) lockKey(key settings.Key) func() {
	mu, ok := s.keyLocks[key]
	if !ok {
		return func() {}
	}
	mu.Lock()
	return mu.Unlock
}

func (s *Session) enabledLocked(desc settings.Descriptor) bool {
	if desc.Requires == nil {
		return true
	}
	dep, ok := s.entries[desc.Requires.Key]
	if !ok {
		return true
	}
	return desc.Requires.Allows(dep.value)
}

// discardDisabledLocked drops staged edits of members that became disabled.
func (s *Session) discardDisabledLocked() []State {
	var changed []State
	for _, desc := range s.group.Members {
		e, ok := s.entries[desc.Key]
		if !ok || e.status != Pending || s.enabledLocked(desc) {
			continue
		}
		s.resetLocked(e)
		changed = append(changed, s.stateLocked(e))
	}
	return changed
}

func (s *Session) resetLocked(e *entry) {
	e.version++
	if e.synced == nil {
		e.value = e.desc.Default
		e.status = Unknown
		return
	}
	e.value = e.synced
	e.status = Synced
}

func (s *Session) stateLocked(e *entry) State {
	return State{
		Key:     e.desc.Key,
		Label:   e.desc.Label,
		Policy:  e.desc.Policy,
		Status:  e.status,
		Value:   e.value,
		Raw:     e.raw,
		Err:     e.err,
		Enabled: s.enabledLocked(e.desc),
	}
}

func (s *Session) subscribersLocked() []func(State) {
	subs := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(State), changed []State) {
	for _, state := range changed {
		for _, fn := range subs {
			fn(state)
		}
	}
}
