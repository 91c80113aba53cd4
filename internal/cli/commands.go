package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/patrick-jessen/enginectl/internal/enginestub"
	"github.com/patrick-jessen/enginectl/internal/panel"
	"github.com/patrick-jessen/enginectl/internal/prompt"
	"github.com/patrick-jessen/enginectl/internal/settings"
	"github.com/patrick-jessen/enginectl/internal/settingsync"
)

// Status prints the engine state of one group, or of every group when
// groupKey is empty.
func (a *App) Status(ctx context.Context, groupKey string) error {
	groups := settings.Groups()
	if groupKey != "" {
		g, err := settings.FindGroup(settings.GroupKey(groupKey))
		if err != nil {
			return err
		}
		groups = []settings.Group{g}
	}

	var failed int
	for _, g := range groups {
		s := settingsync.Mount(a.client, g, a.sessionOptions()...)
		fetch := s.Load(ctx)
		failed += len(fetch.Failed())

		fmt.Fprintln(a.out, g.Label)
		for _, st := range s.Snapshot() {
			fmt.Fprintln(a.out, "  "+panel.FormatState(g, st))
		}
		s.Unmount()
	}

	if failed > 0 {
		return fmt.Errorf("%d setting(s) could not be read", failed)
	}
	return nil
}

// Get prints the current engine value of one setting.
func (a *App) Get(ctx context.Context, key string) error {
	g, desc, err := settings.Lookup(settings.Key(key))
	if err != nil {
		return err
	}

	s := settingsync.Mount(a.client, g, a.sessionOptions()...)
	defer s.Unmount()

	fetch := s.Load(ctx)
	res := fetch[desc.Key]
	if res.Err != nil && res.Value == nil {
		return fmt.Errorf("failed to read %s: %w", key, res.Err)
	}

	st, _ := s.State(desc.Key)
	fmt.Fprintf(a.out, "%s = %s\n", desc.Key, st.Value)
	if res.Err != nil {
		return res.Err
	}
	return nil
}

type assignment struct {
	desc  settings.Descriptor
	value settings.Value
}

// Set changes settings given as key=option pairs. Settings are grouped, set
// in group order and every group with staged edits is applied.
func (a *App) Set(ctx context.Context, pairs []string) error {
	if len(pairs) == 0 {
		return errors.New("nothing to set, expected key=option")
	}

	byGroup := map[settings.GroupKey][]assignment{}
	for _, pair := range pairs {
		key, label, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("invalid assignment %q, expected key=option", pair)
		}
		g, desc, err := settings.Lookup(settings.Key(strings.TrimSpace(key)))
		if err != nil {
			return err
		}
		value, err := settings.Parse(desc, label)
		if err != nil {
			return err
		}
		byGroup[g.Key] = append(byGroup[g.Key], assignment{desc: desc, value: value})
	}

	var errs []error
	for _, g := range settings.Groups() {
		assignments, ok := byGroup[g.Key]
		if !ok {
			continue
		}
		if err := a.setGroup(ctx, g, assignments); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *App) setGroup(ctx context.Context, g settings.Group, assignments []assignment) error {
	order := map[settings.Key]int{}
	for i, d := range g.Members {
		order[d.Key] = i
	}
	sort.SliceStable(assignments, func(i, j int) bool {
		return order[assignments[i].desc.Key] < order[assignments[j].desc.Key]
	})

	s := settingsync.Mount(a.client, g, a.sessionOptions()...)
	defer s.Unmount()
	s.Load(ctx)

	for _, asg := range assignments {
		if err := s.Set(ctx, asg.desc.Key, asg.value); err != nil {
			return err
		}
		if asg.desc.Policy == settings.Immediate {
			fmt.Fprintf(a.out, "%s = %s\n", asg.desc.Key, asg.value)
		}
	}

	if len(s.Pending()) == 0 {
		return nil
	}
	result, err := s.Apply(ctx)
	if err != nil {
		return err
	}
	for _, key := range result.Committed {
		st, _ := s.State(key)
		fmt.Fprintf(a.out, "%s = %s\n", key, st.Value)
	}
	return result.Err()
}

// Options lists the options of a setting, marking the default.
func (a *App) Options(key string) error {
	_, desc, err := settings.Lookup(settings.Key(key))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (%s, %s)\n", desc.Label, desc.Key, desc.Policy)
	for _, v := range desc.Domain {
		marker := " "
		if v == desc.Default {
			marker = "*"
		}
		fmt.Fprintf(a.out, " %s %s\n", marker, v)
	}
	return nil
}

// History prints the n most recent journal entries.
func (a *App) History(ctx context.Context, n int) error {
	if a.journal == nil {
		return ErrHistoryDisabled
	}
	entries, err := a.journal.Recent(ctx, n)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "no history")
		return nil
	}
	for _, e := range entries {
		what := e.Key + " " + e.Wire
		if e.Commit() {
			what = e.Group + "/apply"
		}
		line := fmt.Sprintf("%s  %-6s  %s", e.At.Format("2006-01-02 15:04:05"), e.Outcome, what)
		if e.Error != "" {
			line += "  " + e.Error
		}
		fmt.Fprintln(a.out, line)
	}
	return nil
}

// Panel runs the interactive settings panel.
func (a *App) Panel(ctx context.Context) error {
	p := panel.New(a.client, a.out, a.sessionOptions()...)
	defer p.Close()

	prompter := prompt.NewLinerPrompter(p.Candidates)
	defer func() { _ = prompter.Close() }()

	return p.Run(ctx, prompter)
}

// Stub serves a stand-in engine on addr until ctx is cancelled.
func Stub(ctx context.Context, addr string) error {
	return enginestub.New().Serve(ctx, addr)
}
