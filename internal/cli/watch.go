package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/worktreekit/worktree/internal/worktree"
)

var watchCmd = &cobra.Command{
	Use:   "watch <path>",
	Short: "Watch a worktree's scan state and entry counts live",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := args[0]
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	wt, err := worktree.Open(ctx, worktree.Config{RootAbsPath: root})
	if err != nil {
		return worktree.NewScanError(root, err)
	}
	defer wt.Close()

	p := tea.NewProgram(newWatchModel(wt), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// watchModel polls a Worktree's published Snapshot on a 200ms timer
// (independent of the PollInterval NextScanComplete uses), and renders the scan state and
// entry counts — a status readout rather than shotgun-cli's interactive
// tree, since a live index has no selection state for a user to toggle.
type watchModel struct {
	wt *worktree.Worktree
}

func newWatchModel(wt *worktree.Worktree) watchModel {
	return watchModel{wt: wt}
}

func (m watchModel) Init() tea.Cmd {
	return tick()
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" || msg.String() == "esc" {
			return m, tea.Quit
		}
	case tickMsg:
		return m, tick()
	}
	return m, nil
}

var (
	watchLabelStyle = lipgloss.NewStyle().Bold(true)
	watchIdleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	watchBusyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	watchErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func (m watchModel) View() string {
	state, scanErr := m.wt.State()
	snap := m.wt.Snapshot()

	var stateStr string
	switch state {
	case worktree.Idle:
		stateStr = watchIdleStyle.Render("idle")
	case worktree.Scanning:
		stateStr = watchBusyStyle.Render("scanning")
	case worktree.ScanErr:
		stateStr = watchErrStyle.Render(fmt.Sprintf("error: %v", scanErr))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", watchLabelStyle.Render("root:"), snap.RootAbsPath)
	fmt.Fprintf(&b, "%s %s\n", watchLabelStyle.Render("state:"), stateStr)
	fmt.Fprintf(&b, "%s %d\n", watchLabelStyle.Render("files:"), snap.FileCount())
	fmt.Fprintf(&b, "%s %d\n", watchLabelStyle.Render("visible:"), snap.VisibleFileCount())
	b.WriteString("\npress q to quit\n")
	return b.String()
}
