package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/roomchat/internal/core/chat"
	"github.com/hay-kot/roomchat/internal/printer"
)

type MsgCmd struct {
	flags *Flags

	// ls flags
	lsLast   int
	lsSender string
	lsJSON   bool

	// send flags
	sendFile string
}

// NewMsgCmd creates a new msg command.
func NewMsgCmd(flags *Flags) *MsgCmd {
	return &MsgCmd{flags: flags}
}

// Register adds the msg command to the application.
func (cmd *MsgCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "msg",
		Usage: "Read and post chat room messages",
		Description: `Message commands for scripting against the chat room.

Messages are read from and written to the configured database and collection
(store.database_id and store.collection_id), the same ones the chat room uses.`,
		Commands: []*cli.Command{
			cmd.lsCmd(),
			cmd.sendCmd(),
		},
	})

	return app
}

func (cmd *MsgCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "List recent messages",
		UsageText: "roomchat msg ls [--last N] [--sender PATTERN] [--json]",
		Description: `Lists up to 100 messages, oldest first.

Sender patterns are globs matched against sender names, e.g. "ali*" or "{alice,bob}".

Examples:
  roomchat msg ls
  roomchat msg ls --last 10
  roomchat msg ls --sender "ali*" --json`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "last",
				Aliases:     []string{"n"},
				Usage:       "show only the last N messages",
				Destination: &cmd.lsLast,
			},
			&cli.StringFlag{
				Name:        "sender",
				Aliases:     []string{"s"},
				Usage:       "glob pattern matched against sender names",
				Destination: &cmd.lsSender,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output one JSON object per line",
				Destination: &cmd.lsJSON,
			},
		},
		Action: cmd.runLs,
	}
}

func (cmd *MsgCmd) sendCmd() *cli.Command {
	return &cli.Command{
		Name:      "send",
		Usage:     "Post a message as the signed-in user",
		UsageText: "roomchat msg send [message]",
		Description: `Posts a message to the chat room.

The message can be provided as:
- A command-line argument
- From a file with -f/--file
- From stdin if no argument is provided and stdin is not a terminal

Examples:
  roomchat msg send "Deploy finished"
  echo "Hello" | roomchat msg send`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "read message from file",
				Destination: &cmd.sendFile,
			},
		},
		Action: cmd.runSend,
	}
}

func (cmd *MsgCmd) runLs(ctx context.Context, c *cli.Command) error {
	if cmd.lsSender != "" && !doublestar.ValidatePattern(cmd.lsSender) {
		return fmt.Errorf("invalid sender pattern %q", cmd.lsSender)
	}

	room, err := cmd.flags.Room(ctx, log.With().Str("component", "msg").Logger())
	if err != nil {
		return err
	}

	messages, err := room.FetchRecent(ctx)
	if err != nil {
		return errors.New(chat.UserMessage(err))
	}

	messages = filterMessages(messages, cmd.lsSender, cmd.lsLast)

	if cmd.lsJSON {
		return printMessagesJSON(c.Root().Writer, messages)
	}

	if len(messages) == 0 {
		printer.Ctx(ctx).Infof("No messages found")
		return nil
	}

	p := printer.New(c.Root().Writer)
	for _, msg := range messages {
		p.Message(msg.SenderName, messageTime(msg), msg.Text)
	}
	return nil
}

// filterMessages keeps messages whose sender name matches pattern, then
// trims to the last n. An empty pattern or n <= 0 disables that step.
func filterMessages(messages []chat.Message, pattern string, n int) []chat.Message {
	if pattern != "" {
		messages = lo.Filter(messages, func(m chat.Message, _ int) bool {
			ok, _ := doublestar.Match(pattern, m.SenderName)
			return ok
		})
	}
	if n > 0 && len(messages) > n {
		messages = messages[len(messages)-n:]
	}
	return messages
}

func messageTime(msg chat.Message) string {
	t, ok := msg.Time()
	if !ok {
		return msg.CreatedAt
	}
	return t.Local().Format("2006-01-02 15:04")
}

func printMessagesJSON(w io.Writer, messages []chat.Message) error {
	enc := json.NewEncoder(w)
	for _, msg := range messages {
		if err := enc.Encode(msg); err != nil {
			return err
		}
	}
	return nil
}

func (cmd *MsgCmd) runSend(ctx context.Context, c *cli.Command) error {
	session := cmd.flags.Session
	if !session.Check(ctx) {
		return errNotSignedIn
	}
	user, _ := session.User()

	text, err := cmd.readText(c)
	if err != nil {
		return err
	}

	room, err := cmd.flags.Room(ctx, log.With().Str("component", "msg").Logger())
	if err != nil {
		return err
	}

	msg, err := room.Send(ctx, user.ID, user.DisplayName(), strings.TrimSpace(text))
	if err != nil {
		return errors.New(chat.UserMessage(err))
	}

	printer.Ctx(ctx).Success("Message sent", msg.ID)
	return nil
}

func (cmd *MsgCmd) readText(c *cli.Command) (string, error) {
	switch {
	case c.NArg() >= 1:
		return strings.Join(c.Args().Slice(), " "), nil
	case cmd.sendFile != "":
		data, err := os.ReadFile(cmd.sendFile)
		if err != nil {
			return "", fmt.Errorf("read file: %w", err)
		}
		return string(data), nil
	default:
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return "", fmt.Errorf("no message provided (stdin is a terminal); pass it as an argument or pipe it in")
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
}
