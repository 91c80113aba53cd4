package panel

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/patrick-jessen/enginectl/internal/settings"
	"github.com/patrick-jessen/enginectl/internal/settingsync"
)

var (
	heading  = color.New(color.Bold).SprintFunc()
	synced   = color.New(color.FgGreen).SprintFunc()
	pending  = color.New(color.FgYellow).SprintFunc()
	stale    = color.New(color.FgRed).SprintFunc()
	disabled = color.New(color.Faint).SprintFunc()
)

const (
	labelWidth = 22
	valueWidth = 20
)

func (p *Panel) render(sessions []*settingsync.Session) {
	for _, s := range sessions {
		group := s.Group()
		fmt.Fprintln(p.out, heading(group.Label))
		for _, st := range s.Snapshot() {
			fmt.Fprintln(p.out, "  "+FormatState(group, st))
		}
		if keys := s.Pending(); len(keys) > 0 {
			fmt.Fprintf(p.out, "  %s\n", pending(fmt.Sprintf("%d pending, run: apply %s", len(keys), group.Key)))
		}
	}
}

// FormatState renders one setting as a single line.
func FormatState(group settings.Group, st settingsync.State) string {
	value := "-"
	if st.Value != nil {
		value = st.Value.String()
	}
	line := fmt.Sprintf("%-*s %-*s ", labelWidth, st.Label, valueWidth, value)

	if !st.Enabled {
		return disabled(line + "disabled" + requirementHint(group, st.Key))
	}

	status := StatusText(st)
	switch {
	case st.Stale() || st.Status == settingsync.Unknown:
		status = stale(status)
	case st.Status == settingsync.Pending:
		status = pending(status)
	default:
		status = synced(status)
	}
	line += status
	if st.Policy == settings.Immediate {
		line += " (immediate)"
	}
	if st.Err != nil {
		line += " " + stale(st.Err.Error())
	}
	return line
}

// StatusText is the uncolored status column.
func StatusText(st settingsync.State) string {
	if st.Stale() {
		return st.Status.String() + "!"
	}
	return st.Status.String()
}

func requirementHint(group settings.Group, key settings.Key) string {
	desc, ok := group.Member(key)
	if !ok || desc.Requires == nil {
		return ""
	}
	dep, ok := group.Member(desc.Requires.Key)
	if !ok {
		return ""
	}
	var allowed []string
	for _, v := range dep.Domain {
		if desc.Requires.Allows(v) {
			allowed = append(allowed, v.String())
		}
	}
	return fmt.Sprintf(" (needs %s: %s)", dep.Label, strings.Join(allowed, ", "))
}

func (p *Panel) help() {
	fmt.Fprint(p.out, `Commands:
  show [group]            show settings
  set <key> <option>      change a setting
  apply [group]           apply pending settings
  revert [group]          drop pending settings
  reload [group]          read settings from the engine again
  help                    show this help
  quit                    leave the panel
`)
}

func (p *Panel) printErr(err error) {
	fmt.Fprintln(p.out, stale("Error: "+err.Error()))
}
