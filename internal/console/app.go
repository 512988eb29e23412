package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"tableside/internal/api"
	"tableside/internal/domain"
)

// App is the interactive staff console. It reads line commands from in and
// renders plain text to out; all state lives behind the REST client except
// the per-table pending cart owned by the session coordinator.
type App struct {
	client *api.Client
	logger *zap.Logger
	in     *bufio.Scanner
	out    io.Writer
	user   *domain.User
}

func NewApp(client *api.Client, in io.Reader, out io.Writer, logger *zap.Logger) *App {
	return &App{
		client: client,
		logger: logger,
		in:     bufio.NewScanner(in),
		out:    out,
	}
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// banner renders an error the way the web console shows its dismissible
// alert: one line, generic message, gone on the next command.
func (a *App) banner(message string) {
	a.printf("! %s\n", message)
}

func (a *App) readLine(prompt string) (string, bool) {
	a.printf("%s", prompt)
	if !a.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}

// Run drives login and the top-level loop until quit or EOF.
func (a *App) Run(ctx context.Context) error {
	if err := a.login(ctx); err != nil {
		return err
	}

	a.printf("Signed in as %s (%s). Type 'help' for commands.\n", a.user.Username, strings.Join(a.user.Roles, ", "))

	for {
		line, ok := a.readLine("> ")
		if !ok {
			return nil
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "help":
			a.printf("commands: tables | table <number> | menu [category] | logout | quit\n")
		case "tables":
			a.showTables(ctx)
		case "table":
			if len(fields) < 2 {
				a.banner("usage: table <number>")
				continue
			}
			id, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				a.banner("usage: table <number>")
				continue
			}
			a.tableLoop(ctx, id)
		case "menu":
			category := ""
			if len(fields) > 1 {
				category = fields[1]
			}
			a.showMenu(ctx, category)
		case "logout":
			if err := a.client.Logout(ctx); err != nil {
				a.banner("Failed to log out")
				continue
			}
			a.printf("Logged out.\n")
			return nil
		case "quit", "exit":
			return nil
		default:
			a.banner(fmt.Sprintf("unknown command %q, try 'help'", fields[0]))
		}
	}
}

func (a *App) login(ctx context.Context) error {
	for {
		username, ok := a.readLine("username: ")
		if !ok {
			return fmt.Errorf("input closed before login")
		}
		password, ok := a.readLine("password: ")
		if !ok {
			return fmt.Errorf("input closed before login")
		}

		if _, err := a.client.Login(ctx, username, password); err != nil {
			a.banner("Login failed")
			a.logger.Debug("login attempt failed", zap.String("username", username), zap.Error(err))
			continue
		}

		user, err := a.client.CurrentUser(ctx)
		if err != nil {
			return fmt.Errorf("fetching current user: %w", err)
		}
		a.user = user
		return nil
	}
}

func (a *App) showTables(ctx context.Context) {
	tables, err := a.client.Tables(ctx)
	if err != nil {
		a.banner("Failed to load tables")
		return
	}
	for _, t := range tables {
		line := fmt.Sprintf("table %d  %s", t.Number, t.TableState)
		if t.CurrentOrderID != nil {
			line += fmt.Sprintf("  order #%d", *t.CurrentOrderID)
		}
		a.printf("%s\n", line)
	}
}

func (a *App) showMenu(ctx context.Context, category string) {
	var (
		items []domain.MenuItem
		err   error
	)
	if category == "" {
		items, err = a.client.MenuItems(ctx)
	} else {
		items, err = a.client.MenuItemsByCategory(ctx, category)
	}
	if err != nil {
		a.banner("Failed to load menu")
		return
	}
	for _, m := range items {
		line := fmt.Sprintf("%3d  %-16s $%.2f  %s", m.ID, m.Name, m.Price, m.Category)
		if len(m.Allergens) > 0 {
			line += "  [" + strings.Join(m.Allergens, ",") + "]"
		}
		a.printf("%s\n", line)
	}
}
