package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/cenkalti/backoff/v4"

	"github.com/skyflydev/threadly-go/internal/game"
	"github.com/skyflydev/threadly-go/internal/sessions"
	"github.com/skyflydev/threadly-go/internal/version"
	"github.com/skyflydev/threadly-go/pkg/apperr"
	"github.com/skyflydev/threadly-go/sdk"
)

// prefLastSession remembers the most recently joined session for play.
const prefLastSession = "last_session"

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	args, err := parseFlags(os.Args[1:])
	if err != nil {
		return err
	}
	if len(args) == 0 {
		printUsage()
		return nil
	}

	switch args[0] {
	case "help", "--help", "-h":
		printUsage()
		return nil
	case "version", "--version", "-v":
		fmt.Printf("threadly %s\n", version.RichVersion())
		return nil
	}

	client, err := sdk.New()
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd, rest := args[0], args[1:]; cmd {
	case "login":
		return authCommand(ctx, rest, func(ctx context.Context, user, pass string) *apperr.Error {
			return client.SignIn(ctx, user, pass).Err()
		})
	case "register":
		return authCommand(ctx, rest, func(ctx context.Context, user, pass string) *apperr.Error {
			return client.SignUp(ctx, user, pass).Err()
		})
	case "logout":
		if err := client.SignOut().Err(); err != nil {
			return errors.New(err.Message())
		}
		fmt.Println("Signed out.")
		return nil
	case "sessions":
		return sessionsCommand(ctx, client)
	case "create":
		return createCommand(ctx, client, rest)
	case "join":
		return joinCommand(ctx, client, rest)
	case "leave":
		return unwrap(oneArg(rest, "leave", func(id string) *apperr.Error {
			return client.LeaveSession(ctx, id).Err()
		}))
	case "ready":
		return readyCommand(ctx, client, rest)
	case "start":
		return unwrap(oneArg(rest, "start", func(id string) *apperr.Error {
			return client.StartGame(ctx, id).Err()
		}))
	case "watch":
		return watchCommand(ctx, client)
	case "play":
		return playCommand(ctx, client, rest)
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func authCommand(ctx context.Context, args []string, op func(context.Context, string, string) *apperr.Error) error {
	if len(args) != 2 {
		return errors.New("usage: threadly login|register <username> <password>")
	}
	if err := op(ctx, args[0], args[1]); err != nil {
		return errors.New(err.Message())
	}
	fmt.Printf("Signed in as %s.\n", args[0])
	return nil
}

func sessionsCommand(ctx context.Context, client *sdk.Client) error {
	lists, err := client.ObserveDirectory(ctx).Get()
	if err != nil {
		return errors.New(err.Message())
	}
	// Print the snapshot only; watch streams updates.
	list := <-lists
	printSessions(list)
	return nil
}

func createCommand(ctx context.Context, client *sdk.Client, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: threadly create <theme> <max-rounds>")
	}
	maxRounds, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid max-rounds %q", args[1])
	}
	created, cerr := client.CreateSession(ctx, args[0], maxRounds).Get()
	if cerr != nil {
		return errors.New(cerr.Message())
	}
	fmt.Printf("Created session %s (host %s).\n", created.SessionID, created.HostUserID)
	return nil
}

func joinCommand(ctx context.Context, client *sdk.Client, args []string) error {
	return unwrap(oneArg(args, "join", func(id string) *apperr.Error {
		player, err := client.JoinSession(ctx, id).Get()
		if err != nil {
			return err
		}
		if perr := client.SetPreference(prefLastSession, id); perr != nil {
			log.Printf("remember session failed: %v", perr)
		}
		fmt.Printf("Joined as %s.\n", player.UserID)
		return nil
	}))
}

func readyCommand(ctx context.Context, client *sdk.Client, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: threadly ready <session-id> <true|false>")
	}
	ready, err := strconv.ParseBool(args[1])
	if err != nil {
		return fmt.Errorf("invalid flag %q", args[1])
	}
	if _, rerr := client.SetReady(ctx, args[0], ready).Get(); rerr != nil {
		return errors.New(rerr.Message())
	}
	fmt.Printf("Ready=%v in session %s.\n", ready, args[0])
	return nil
}

// watchCommand tails the session directory. The core never reconnects on its
// own; the resubscribe loop with backoff lives here at the edge.
func watchCommand(ctx context.Context, client *sdk.Client) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 0

	operation := func() error {
		lists, err := client.ObserveDirectory(ctx).Get()
		if err != nil {
			if err.Kind == apperr.KindUnauthorized {
				return backoff.Permanent(errors.New(err.Message()))
			}
			return errors.New(err.Message())
		}
		for list := range lists {
			printSessions(list)
			bo.Reset()
		}
		if ctx.Err() != nil {
			return nil
		}
		return errors.New("directory stream ended")
	}
	return backoff.Retry(operation, backoff.WithContext(bo, ctx))
}

func playCommand(ctx context.Context, client *sdk.Client, args []string) error {
	var sessionID string
	switch len(args) {
	case 0:
		// Fall back to the last joined session.
		last, ok, err := client.Preference(prefLastSession)
		if err != nil || !ok {
			return errors.New("usage: threadly play <session-id>")
		}
		sessionID = last
	case 1:
		sessionID = args[0]
	default:
		return errors.New("usage: threadly play <session-id>")
	}

	g, err := client.ObserveGame(ctx, sessionID).Get()
	if err != nil {
		return errors.New(err.Message())
	}

	input := bufio.NewScanner(os.Stdin)
	for state := range g.States() {
		printGameState(state)
		if state.SessionDeleted {
			fmt.Println("Session deleted by the host.")
			return nil
		}
		if state.Phase == game.PhaseFinished {
			fmt.Println("Game over.")
			return nil
		}
		if !state.MyTurn {
			continue
		}

		fmt.Print("your turn> ")
		if !input.Scan() {
			return input.Err()
		}
		content := strings.TrimSpace(input.Text())
		if content == "" {
			continue
		}
		if serr := g.SubmitTurn(ctx, content).Err(); serr != nil {
			fmt.Printf("submit failed: %s\n", serr.Message())
		}
	}
	return nil
}

func printSessions(list []sessions.Session) {
	fmt.Printf("--- %d session(s) ---\n", len(list))
	for _, s := range list {
		fmt.Printf("%s  theme=%q  rounds=%d/%d  players=%d\n",
			s.ID, s.Theme, s.CurrentRound, s.MaxRounds, s.PlayersCount)
	}
}

func printGameState(state game.State) {
	fmt.Printf("[%s] players=%v turn=%s\n", state.Phase, state.Players, state.CurrentTurnUserID)
	if state.LastPlayerMessage != "" {
		fmt.Printf("last message: %s\n", state.LastPlayerMessage)
	}
	if state.StorySoFar != "" {
		fmt.Printf("story: %s\n", state.StorySoFar)
	}
}

func oneArg(args []string, cmd string, op func(id string) *apperr.Error) *apperr.Error {
	if len(args) != 1 {
		return apperr.Unknown("usage: threadly %s <session-id>", cmd)
	}
	return op(args[0])
}

func unwrap(err *apperr.Error) error {
	if err != nil {
		return errors.New(err.Message())
	}
	return nil
}

func parseFlags(args []string) ([]string, error) {
	fs := flag.NewFlagSet("threadly", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	showHelp := fs.Bool("help", false, "Show help")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *showHelp {
		printUsage()
		return nil, nil
	}
	return fs.Args(), nil
}

func printUsage() {
	fmt.Println(`threadly - collaborative storytelling client

Usage:
  threadly login <user> <pass>        Sign in
  threadly register <user> <pass>     Create an account and sign in
  threadly logout                     Sign out
  threadly sessions                   List joinable sessions
  threadly create <theme> <rounds>    Create a session
  threadly join <session-id>          Join a session
  threadly leave <session-id>         Leave a session
  threadly ready <session-id> <bool>  Set lobby readiness
  threadly start <session-id>         Start the game (host only)
  threadly watch                      Tail the session directory
  threadly play [session-id]          Play a running game (defaults to the
                                      last joined session)
  threadly help                       Show this help message
  threadly version                    Show version information

Environment Variables:
  THREADLY_SERVER_URL       Server URL (default: http://localhost:3000)
  THREADLY_WS_URL           Websocket URL (default: derived from server URL)
  THREADLY_HOME             State directory (default: ~/.threadly)
  THREADLY_REQUEST_TIMEOUT  Per-request timeout (default: 20s)
  THREADLY_DEBUG            Enable debug logging (true/1)`)
}
