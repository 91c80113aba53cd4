// Package panel is the interactive settings panel: a line-oriented view of
// every settings group backed by one sync session per group.
package panel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/patrick-jessen/enginectl/internal/logging"
	"github.com/patrick-jessen/enginectl/internal/prompt"
	"github.com/patrick-jessen/enginectl/internal/remote"
	"github.com/patrick-jessen/enginectl/internal/settings"
	"github.com/patrick-jessen/enginectl/internal/settingsync"
)

// ErrUsage is returned for malformed panel commands.
var ErrUsage = errors.New("usage")

var commands = []string{"show", "set", "apply", "revert", "reload", "help", "quit"}

// Panel shows and edits every settings group.
type Panel struct {
	out      io.Writer
	sessions []*settingsync.Session
}

// New mounts a session per settings group against endpoint.
func New(endpoint remote.Endpoint, out io.Writer, opts ...settingsync.SessionOption) *Panel {
	p := &Panel{out: out}
	for _, g := range settings.Groups() {
		p.sessions = append(p.sessions, settingsync.Mount(endpoint, g, opts...))
	}
	return p
}

// Close unmounts every session. Results still in flight are dropped.
func (p *Panel) Close() {
	for _, s := range p.sessions {
		s.Unmount()
	}
}

// Run loads every group, then reads commands from prompter until quit or
// end of input.
func (p *Panel) Run(ctx context.Context, prompter prompt.Prompter) error {
	p.reload(ctx, p.sessions)
	p.render(p.sessions)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := prompt.ReadLine(prompter, "enginectl>")
		if errors.Is(err, prompt.ErrCancelled) {
			return nil
		}
		if err != nil {
			return err
		}
		quit, err := p.Exec(ctx, line)
		if err != nil {
			p.printErr(err)
		}
		if quit {
			return nil
		}
	}
}

// Exec runs one panel command line.
func (p *Panel) Exec(ctx context.Context, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	logging.Get(ctx).Debug().Str("command", line).Msg("panel command")

	switch strings.ToLower(fields[0]) {
	case "show", "ls":
		sessions, err := p.selectSessions(fields[1:])
		if err != nil {
			return false, err
		}
		p.render(sessions)
	case "set":
		return false, p.set(ctx, fields[1:])
	case "apply":
		sessions, err := p.selectSessions(fields[1:])
		if err != nil {
			return false, err
		}
		return false, p.apply(ctx, sessions)
	case "revert":
		sessions, err := p.selectSessions(fields[1:])
		if err != nil {
			return false, err
		}
		for _, s := range sessions {
			s.Revert()
		}
		p.render(sessions)
	case "reload":
		sessions, err := p.selectSessions(fields[1:])
		if err != nil {
			return false, err
		}
		p.reload(ctx, sessions)
		p.render(sessions)
	case "help", "?":
		p.help()
	case "quit", "exit", "q":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q, try help", fields[0])
	}
	return false, nil
}

// Candidates completes commands, group keys, setting keys and option labels.
func (p *Panel) Candidates(fields []string) []string {
	if len(fields) == 0 {
		return commands
	}
	switch strings.ToLower(fields[0]) {
	case "show", "apply", "revert", "reload":
		if len(fields) == 1 {
			var groups []string
			for _, g := range settings.Groups() {
				groups = append(groups, string(g.Key))
			}
			return groups
		}
	case "set":
		if len(fields) == 1 {
			var keys []string
			for _, k := range settings.Keys() {
				keys = append(keys, string(k))
			}
			return keys
		}
		if len(fields) == 2 {
			if _, desc, err := settings.Lookup(settings.Key(fields[1])); err == nil {
				return desc.Labels()
			}
		}
	}
	return nil
}

func (p *Panel) set(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: set <key> <option>", ErrUsage)
	}
	group, desc, err := settings.Lookup(settings.Key(args[0]))
	if err != nil {
		return err
	}
	value, err := settings.Parse(desc, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	s := p.session(group.Key)
	if err := s.Set(ctx, desc.Key, value); err != nil {
		return err
	}
	p.render([]*settingsync.Session{s})
	return nil
}

func (p *Panel) apply(ctx context.Context, sessions []*settingsync.Session) error {
	var errs []error
	for _, s := range sessions {
		if len(s.Pending()) == 0 {
			continue
		}
		result, err := s.Apply(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Group().Key, err))
			continue
		}
		if len(result.Committed) > 0 {
			fmt.Fprintf(p.out, "%s: applied %d setting(s)\n", s.Group().Label, len(result.Committed))
		}
		if err := result.Err(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Group().Key, err))
		}
		p.render([]*settingsync.Session{s})
	}
	return errors.Join(errs...)
}

// reload reads the given groups concurrently.
func (p *Panel) reload(ctx context.Context, sessions []*settingsync.Session) {
	var g errgroup.Group
	for _, s := range sessions {
		g.Go(func() error {
			fetch := s.Load(ctx)
			if failed := fetch.Failed(); len(failed) > 0 {
				logging.Get(ctx).Warn().
					Str("group", string(s.Group().Key)).
					Int("failed", len(failed)).
					Msg("some settings could not be read")
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (p *Panel) selectSessions(args []string) ([]*settingsync.Session, error) {
	if len(args) == 0 {
		return p.sessions, nil
	}
	var out []*settingsync.Session
	for _, arg := range args {
		group, err := settings.FindGroup(settings.GroupKey(strings.ToLower(arg)))
		if err != nil {
			return nil, err
		}
		out = append(out, p.session(group.Key))
	}
	return out, nil
}

func (p *Panel) session(key settings.GroupKey) *settingsync.Session {
	for _, s := range p.sessions {
		if s.Group().Key == key {
			return s
		}
	}
	return nil
}
