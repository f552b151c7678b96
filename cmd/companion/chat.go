package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-chat-companion/internal/kv"
	"github.com/tbourn/go-chat-companion/internal/services"
	"github.com/tbourn/go-chat-companion/internal/sysutil"
)

const chatMaxRunes = 2000

var (
	chatUser string
	chatName string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the companion in the terminal",
	Long: `Starts an in-memory conversation. Commands:
  /suggest  show proactive suggestions
  /clear    clear the history
  /quit     leave`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		sysutil.SetupLogger("warn", true, cmd.ErrOrStderr())
		user := sysutil.FirstNonEmpty(chatUser, os.Getenv("USER"), "cli")
		return chat(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), user, chatName)
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatUser, "user", "", "user id for the session (default $USER)")
	chatCmd.Flags().StringVar(&chatName, "name", "", "display name to greet you by")
	rootCmd.AddCommand(chatCmd)
}

func chat(ctx context.Context, in io.Reader, out io.Writer, user, name string) error {
	reg := services.NewManagerRegistry(kv.NewMemoryRepository(0), services.ManagerOptions{}, 0)
	defer reg.Drain()
	svc := services.NewCompanionService(reg, chatMaxRunes)

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/clear":
			if err := svc.ClearHistory(ctx, user); err != nil {
				return err
			}
			fmt.Fprintln(out, "history cleared")
			continue
		case "/suggest":
			list, err := svc.Suggestions(ctx, user)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(out, "no suggestions right now")
			}
			for _, s := range list {
				fmt.Fprintf(out, "[%s] %s: %s\n", s.Priority, s.Title, s.Message)
			}
			continue
		}

		res, err := svc.Turn(ctx, user, line, name)
		if errors.Is(err, services.ErrTooLong) {
			fmt.Fprintln(out, "that message is too long")
			continue
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(out, res.Response.Text)
		for _, a := range res.Response.Actions {
			fmt.Fprintf(out, "  -> %s (%s)\n", a.Label, a.Target)
		}
		if len(res.Response.QuickReplies) > 0 {
			fmt.Fprintf(out, "  try: %s\n", strings.Join(res.Response.QuickReplies, " | "))
		}
	}
}
