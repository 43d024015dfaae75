package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/steward/event"
	"github.com/spetersoncode/steward/internal/app"
)

func buildChatCmd(g *globals) *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Ask the agents a question",
		Long: `Ask the agents a question. With a message, run one turn and exit;
without one, read messages from stdin until EOF or "exit".`,
		Example: `  # One-shot question
  steward chat "explain how pads are selected"

  # Continue a stored conversation
  steward chat --session 3f0c... "and how are they rendered?"

  # Interactive
  steward chat`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			c := &chatter{app: a, out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr(), sessionID: sessionID}
			if len(args) > 0 {
				return c.turn(cmd.Context(), strings.Join(args, " "))
			}
			return c.repl(cmd.Context(), cmd.InOrStdin())
		},
	}
	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Conversation to continue")
	return cmd
}

type chatter struct {
	app       *app.App
	out       io.Writer
	errOut    io.Writer
	sessionID string
}

func (c *chatter) repl(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(c.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}
		if err := c.turn(ctx, line); err != nil {
			return err
		}
	}
}

// turn runs one turn, printing text as it streams. Tool activity and
// errors reported by the model go to errOut.
func (c *chatter) turn(ctx context.Context, text string) error {
	turn, err := c.app.Begin(ctx, c.sessionID, text)
	if err != nil {
		return err
	}
	c.sessionID = turn.Record.ID

	stream := turn.Run(ctx)
	defer stream.Close()

	for stream.Next() {
		ev := stream.Event()
		switch ev.Type {
		case event.NodeAdded:
			if !ev.ToolID.IsZero() {
				fmt.Fprintf(c.errOut, "\n[%s]\n", ev.ToolID.Name)
			}
		case event.ChunkAppended:
			if ev.Chunk.IsError() {
				fmt.Fprintf(c.errOut, "\nerror: %s\n", ev.Chunk.Message)
				continue
			}
			fmt.Fprint(c.out, ev.Chunk.Text)
		}
	}
	if err := stream.Err(); err != nil {
		return err
	}
	fmt.Fprintln(c.out)
	if err := turn.Finish(ctx); err != nil {
		return err
	}
	u := turn.Usage()
	fmt.Fprintf(c.errOut, "session %s (%d input, %d output tokens, $%.4f)\n",
		c.sessionID, u.InputTokens+u.CachedInputTokens, u.OutputTokens, u.Cost)
	return nil
}
