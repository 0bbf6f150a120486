package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/roomchat/internal/core/chat"
	"github.com/hay-kot/roomchat/internal/tui"
)

type TuiCmd struct {
	flags    *Flags
	markdown bool
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags) *TuiCmd {
	return &TuiCmd{
		flags: flags,
	}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "markdown",
			Usage:       "render message text as markdown (overrides chat.render_markdown)",
			Sources:     cli.EnvVars("ROOMCHAT_MARKDOWN"),
			Destination: &cmd.markdown,
		},
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, c *cli.Command) error {
	session := cmd.flags.Session
	if !session.Check(ctx) {
		return errNotSignedIn
	}

	cfg := cmd.flags.Config
	logger := log.With().Str("component", "chat").Logger()

	room, err := cmd.flags.Room(ctx, logger)
	if err != nil {
		return err
	}

	vm := chat.NewViewModel(
		room,
		session,
		logger,
		chat.WithReconcileDelay(cfg.Chat.ReconcileDelay),
	)

	opts := tui.Options{
		RequestTimeout: cfg.Chat.RequestTimeout,
		RenderMarkdown: cfg.Chat.RenderMarkdown,
	}
	if c.IsSet("markdown") {
		opts.RenderMarkdown = cmd.markdown
	}

	m := tui.New(vm, session, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	return nil
}
