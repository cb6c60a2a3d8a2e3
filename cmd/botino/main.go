// ABOUTME: CLI client for the Botino bot-management backend
// ABOUTME: Session login/logout, bot CRUD and toggles, admin reads, and the dashboard TUI

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/botino/botino/internal/api"
	"github.com/botino/botino/internal/config"
	"github.com/botino/botino/internal/guard"
	"github.com/botino/botino/internal/localstate"
	"github.com/botino/botino/internal/notify"
	"github.com/botino/botino/internal/optimistic"
	"github.com/botino/botino/internal/session"
	"github.com/botino/botino/internal/tui"
)

const banner = `
  _           _   _
 | |__   ___ | |_(_)_ __   ___
 | '_ \ / _ \| __| | '_ \ / _ \
 | |_) | (_) | |_| | | | | (_) |
 |_.__/ \___/ \__|_|_| |_|\___/
`

// app bundles everything a command needs.
type app struct {
	cfg      *config.Config
	client   *api.Client
	state    *localstate.Store
	store    *session.Store
	notifier notify.Notifier
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		printUsage()
		return
	}

	a, err := setup()
	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
	defer a.state.Close()

	ctx := context.Background()
	a.store.Bootstrap(ctx)

	switch cmd {
	case "login":
		err = cmdLogin(ctx, a, args)
	case "signup":
		err = cmdSignup(ctx, a, args)
	case "logout":
		err = cmdLogout(ctx, a)
	case "me":
		err = cmdMe(a)
	case "status":
		err = cmdStatus(ctx, a)
	case "bots":
		err = cmdBots(ctx, a, args)
	case "engines":
		err = cmdEngines(ctx, a)
	case "users":
		err = cmdUsers(ctx, a)
	case "stats":
		err = cmdStats(ctx, a)
	case "logs":
		err = cmdLogs(ctx, a)
	case "messages":
		err = cmdMessages(ctx, a)
	case "dash":
		err = tui.Run(a.client, a.state, a.cfg.Offline)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration and wires the client, state store, and session.
func setup() (*app, error) {
	cfgPath := os.Getenv("BOTINO_CONFIG")
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(config.SetupLogger(cfg.Logging))

	client, err := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
	if err != nil {
		return nil, err
	}

	state, err := localstate.Open(cfg.State.Path)
	if err != nil {
		return nil, err
	}

	notifier := notify.NewConsole()
	store := session.New(session.Options{
		Backend:   client,
		Persister: state,
		Notifier:  notifier,
		Navigator: cliNavigator{},
		Offline:   cfg.Offline,
	})
	client.SetUnauthenticatedHandler(store.SessionExpired)

	return &app{cfg: cfg, client: client, state: state, store: store, notifier: notifier}, nil
}

// cliNavigator translates route redirects into CLI guidance; a terminal
// session has no router to swap views in.
type cliNavigator struct{}

func (cliNavigator) Replace(route string) {
	if route == session.RouteLogin {
		fmt.Fprintln(os.Stderr, "Run 'botino login' to sign in again.")
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()
	fmt.Println("Usage: botino <command> [args]")
	fmt.Println()
	yellow.Println("Session:")
	fmt.Println("  login [--email <email>]         Sign in (prompts for password)")
	fmt.Println("  signup --name <n> --email <e>   Register and sign in")
	fmt.Println("  logout                          Sign out")
	fmt.Println("  me                              Show your identity and role")
	fmt.Println("  status                          Show backend status and identity")
	fmt.Println()
	yellow.Println("Bots:")
	fmt.Println("  bots                            List your bots")
	fmt.Println("  bots create --name <n> --platform <p> [--set k=v ...]")
	fmt.Println("  bots toggle <id>                Flip a bot's active state")
	fmt.Println("  bots config <id>                Show a bot's configuration")
	fmt.Println("  bots config <id> --set k=v ...  Update a bot's configuration")
	fmt.Println("  bots delete <id>                Delete a bot")
	fmt.Println("  engines                         List available AI engines")
	fmt.Println()
	yellow.Println("Dashboard:")
	fmt.Println("  dash                            Open the interactive dashboard")
	fmt.Println("  messages                        Show the bot message feed")
	fmt.Println()
	yellow.Println("Admin:")
	fmt.Println("  users                           List all accounts")
	fmt.Println("  stats                           Show system statistics")
	fmt.Println("  logs                            Show recent system logs")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  BOTINO_CONFIG       Config file path (default: ~/.config/botino/config.yaml)")
	fmt.Println("  BOTINO_API_URL      Backend base URL override")
	fmt.Println("  BOTINO_OFFLINE      Set to 'true' for offline/demo mode")
	fmt.Println()
}

// requireAuth applies the route guard before a command that needs a session.
func requireAuth(a *app, adminOnly bool) error {
	switch guard.Evaluate(a.store.State(), adminOnly) {
	case guard.RedirectLogin:
		return fmt.Errorf("not signed in (run 'botino login')")
	case guard.RedirectDashboard:
		return fmt.Errorf("admin role required")
	}
	return nil
}

// cmdLogin signs in, prompting for the password without echo.
func cmdLogin(ctx context.Context, a *app, args []string) error {
	var email string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--email", "-e":
			if i+1 < len(args) {
				email = args[i+1]
				i++
			}
		}
	}

	if email == "" {
		fmt.Print("Email: ")
		if _, err := fmt.Scanln(&email); err != nil {
			return fmt.Errorf("reading email: %w", err)
		}
	}

	if a.cfg.Offline {
		// Offline mode: the session store's Login is a no-op; the caller
		// installs the demo identity instead.
		return a.store.UseDemoIdentity(ctx, email)
	}

	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}

	return a.store.Login(ctx, email, password)
}

// cmdSignup registers and signs in with the same credentials.
func cmdSignup(ctx context.Context, a *app, args []string) error {
	var name, email string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--name", "-n":
			if i+1 < len(args) {
				name = args[i+1]
				i++
			}
		case "--email", "-e":
			if i+1 < len(args) {
				email = args[i+1]
				i++
			}
		}
	}

	if email == "" {
		return fmt.Errorf("usage: signup --name <name> --email <email>")
	}

	if a.cfg.Offline {
		return a.store.UseDemoIdentity(ctx, email)
	}

	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}

	return a.store.Signup(ctx, name, email, password)
}

func cmdLogout(ctx context.Context, a *app) error {
	a.store.Logout(ctx)
	color.Green("✓ Signed out\n")
	return nil
}

// cmdMe shows the locally held identity.
func cmdMe(a *app) error {
	if err := requireAuth(a, false); err != nil {
		return err
	}

	id := a.store.State().Identity
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)

	fmt.Println()
	cyan.Println("  Identity")
	cyan.Println("  --------")
	fmt.Printf("  ID:            %s\n", id.ID)
	fmt.Printf("  Email:         %s\n", id.Email)
	fmt.Printf("  Display Name:  %s\n", id.DisplayName)
	green.Printf("  Role:          %s\n", id.Role)
	if id.SubscriptionStatus != "" {
		fmt.Printf("  Subscription:  %s\n", id.SubscriptionStatus)
	}
	fmt.Println()
	return nil
}

// cmdStatus shows backend reachability and identity.
func cmdStatus(ctx context.Context, a *app) error {
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()

	if a.cfg.Offline {
		yellow.Printf("  Backend:  ")
		fmt.Println("offline/demo mode (no backend calls)")
	} else {
		yellow.Printf("  Backend:  ")
		if err := a.client.FetchCSRF(ctx); err != nil {
			color.Red("UNREACHABLE (%v)\n", err)
		} else {
			green.Printf("connected")
			fmt.Printf(" to %s\n", a.cfg.API.BaseURL)
		}
	}

	yellow.Printf("  Identity: ")
	if id := a.store.State().Identity; id != nil {
		fmt.Printf("%s (%s)\n", id.DisplayName, id.Role)
	} else {
		fmt.Println("(not signed in)")
	}

	fmt.Println()
	return nil
}

// cmdBots dispatches bot subcommands.
func cmdBots(ctx context.Context, a *app, args []string) error {
	if err := requireAuth(a, false); err != nil {
		return err
	}

	// Default to list
	subcmd := "list"
	if len(args) > 0 {
		subcmd = args[0]
		args = args[1:]
	}

	switch subcmd {
	case "list", "ls":
		return cmdBotsList(ctx, a)
	case "create", "add":
		return cmdBotsCreate(ctx, a, args)
	case "toggle":
		return cmdBotsToggle(ctx, a, args)
	case "config":
		return cmdBotsConfig(ctx, a, args)
	case "delete", "rm", "remove":
		return cmdBotsDelete(ctx, a, args)
	default:
		return fmt.Errorf("unknown bots subcommand: %s (use list, create, toggle, config, delete)", subcmd)
	}
}

func cmdBotsList(ctx context.Context, a *app) error {
	bots, err := a.client.ListBots(ctx)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Bots")
	cyan.Println("  ----")

	if len(bots) == 0 {
		fmt.Println("  (no bots)")
		fmt.Println()
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tNAME\tPLATFORM\tSTATUS\tCREATED")
	fmt.Fprintln(w, "  --\t----\t--------\t------\t-------")

	for _, b := range bots {
		created := b.CreatedAt
		if t, err := time.Parse(time.RFC3339, b.CreatedAt); err == nil {
			created = t.Format("Jan 02 15:04")
		}
		fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%s\n", b.ID, truncate(b.Name, 24), b.Platform, b.Status, created)
	}
	w.Flush()
	fmt.Println()
	return nil
}

func cmdBotsCreate(ctx context.Context, a *app, args []string) error {
	var name, platform string
	settings := map[string]any{}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--name", "-n":
			if i+1 < len(args) {
				name = args[i+1]
				i++
			}
		case "--platform", "-p":
			if i+1 < len(args) {
				platform = strings.ToLower(args[i+1])
				i++
			}
		case "--set", "-s":
			if i+1 < len(args) {
				k, v, ok := strings.Cut(args[i+1], "=")
				if !ok {
					return fmt.Errorf("invalid --set %q (want key=value)", args[i+1])
				}
				settings[k] = v
				i++
			}
		}
	}

	if name == "" || platform == "" {
		return fmt.Errorf("usage: bots create --name <name> --platform <discord|telegram|slack|twitch> [--set key=value ...]")
	}

	bot, err := a.client.CreateBot(ctx, api.CreateBotRequest{
		Name:     name,
		Platform: platform,
		Settings: settings,
	})
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ Created bot: %d\n", bot.ID)
	fmt.Printf("  Name:      %s\n", bot.Name)
	fmt.Printf("  Platform:  %s\n", bot.Platform)
	fmt.Printf("  Status:    %s\n", bot.Status)
	return nil
}

// cmdBotsToggle flips a bot's state with optimistic console feedback.
func cmdBotsToggle(ctx context.Context, a *app, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: bots toggle <bot-id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid bot id %q", args[0])
	}

	bots, err := a.client.ListBots(ctx)
	if err != nil {
		return err
	}
	var bot *api.Bot
	for i := range bots {
		if bots[i].ID == id {
			bot = &bots[i]
			break
		}
	}
	if bot == nil {
		return fmt.Errorf("bot %d not found", id)
	}

	next := api.BotStatusInactive
	pending := "Stopping bot..."
	if bot.Status == api.BotStatusInactive {
		next = api.BotStatusActive
		pending = "Activating bot..."
	}
	previous := bot.Status

	toggler := optimistic.NewToggler(a.notifier)
	return toggler.Run(ctx, optimistic.Toggle{
		Key:          args[0],
		Apply:        func() { fmt.Printf("  %s → %s\n", previous, next) },
		Rollback:     func() { fmt.Printf("  reverted to %s\n", previous) },
		Request:      func(ctx context.Context) error { return a.client.ToggleBot(ctx, id) },
		PendingTitle: pending,
		SuccessText:  "Bot is now " + next,
	})
}

func cmdBotsConfig(ctx context.Context, a *app, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: bots config <bot-id> [--set key=value ...]")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid bot id %q", args[0])
	}
	args = args[1:]

	updates := map[string]any{}
	for i := 0; i < len(args); i++ {
		if args[i] == "--set" || args[i] == "-s" {
			if i+1 < len(args) {
				k, v, ok := strings.Cut(args[i+1], "=")
				if !ok {
					return fmt.Errorf("invalid --set %q (want key=value)", args[i+1])
				}
				updates[k] = v
				i++
			}
		}
	}

	cfg, err := a.client.GetBotConfig(ctx, id)
	if err != nil {
		return err
	}

	if len(updates) == 0 {
		cyan := color.New(color.FgCyan)
		fmt.Println()
		cyan.Printf("  Config for bot %d\n", id)
		cyan.Println("  -----------------")
		if len(cfg.Settings) == 0 {
			fmt.Println("  (empty)")
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for k, v := range cfg.Settings {
			fmt.Fprintf(w, "  %s\t%v\n", k, v)
		}
		w.Flush()
		fmt.Println()
		return nil
	}

	if cfg.Settings == nil {
		cfg.Settings = map[string]any{}
	}
	for k, v := range updates {
		cfg.Settings[k] = v
	}
	if err := a.client.PutBotConfig(ctx, id, *cfg); err != nil {
		return err
	}
	color.Green("✓ Updated config for bot %d\n", id)
	return nil
}

func cmdBotsDelete(ctx context.Context, a *app, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: bots delete <bot-id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid bot id %q", args[0])
	}

	if err := a.client.DeleteBot(ctx, id); err != nil {
		return err
	}
	color.Green("✓ Deleted bot: %d\n", id)
	return nil
}

func cmdEngines(ctx context.Context, a *app) error {
	if err := requireAuth(a, false); err != nil {
		return err
	}

	engines, err := a.client.ListEngines(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	color.New(color.FgCyan).Println("  AI Engines")
	color.New(color.FgCyan).Println("  ----------")
	if len(engines) == 0 {
		fmt.Println("  (none available)")
	}
	for _, e := range engines {
		fmt.Printf("  %s: %s\n", e.ID, e.Name)
	}
	fmt.Println()
	return nil
}

func cmdUsers(ctx context.Context, a *app) error {
	if err := requireAuth(a, true); err != nil {
		return err
	}

	users, err := a.client.ListUsers(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	color.New(color.FgCyan).Println("  Accounts")
	color.New(color.FgCyan).Println("  --------")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tUSERNAME\tROLE\tSUBSCRIPTION")
	fmt.Fprintln(w, "  --\t--------\t----\t------------")
	for _, u := range users {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", truncate(u.ID, 12), u.Username, u.Role, u.SubscriptionStatus)
	}
	w.Flush()
	fmt.Println()
	return nil
}

func cmdStats(ctx context.Context, a *app) error {
	if err := requireAuth(a, true); err != nil {
		return err
	}

	stats, err := a.client.GetSystemStats(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	color.New(color.FgCyan).Println("  System Stats")
	color.New(color.FgCyan).Println("  ------------")
	fmt.Printf("  Users:           %d\n", stats.TotalUsers)
	fmt.Printf("  Bots:            %d\n", stats.TotalBots)
	fmt.Printf("  Active bots:     %d\n", stats.ActiveBots)
	fmt.Printf("  Messages today:  %d\n", stats.MessagesToday)
	fmt.Println()
	return nil
}

func cmdLogs(ctx context.Context, a *app) error {
	if err := requireAuth(a, true); err != nil {
		return err
	}

	logs, err := a.client.ListLogs(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	color.New(color.FgCyan).Println("  System Logs")
	color.New(color.FgCyan).Println("  -----------")
	for _, entry := range logs {
		ts := entry.Timestamp
		if t, err := time.Parse(time.RFC3339, entry.Timestamp); err == nil {
			ts = t.Format("Jan 02 15:04:05")
		}
		level := entry.Level
		switch entry.Level {
		case "error":
			level = color.RedString(entry.Level)
		case "warn":
			level = color.YellowString(entry.Level)
		}
		fmt.Printf("  %s  %-7s %s\n", ts, level, entry.Message)
	}
	fmt.Println()
	return nil
}

func cmdMessages(ctx context.Context, a *app) error {
	if err := requireAuth(a, false); err != nil {
		return err
	}

	messages, err := a.client.ListMessages(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	color.New(color.FgCyan).Println("  Messages")
	color.New(color.FgCyan).Println("  --------")
	if len(messages) == 0 {
		fmt.Println("  (no messages)")
	}
	for _, m := range messages {
		fmt.Printf("  [%s] %s: %s\n", m.Platform, m.Sender, truncate(m.Content, 80))
	}
	fmt.Println()
	return nil
}

// readPassword prompts for a password without echoing it.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	data, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(data), nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
