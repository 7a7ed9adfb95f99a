// Package cli implements kivactl, a terminal client sharing the console's
// session core: the same storage, token store and session manager.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"kiva-console/internal/model"
	"kiva-console/internal/session"
)

var ErrUsage = errors.New("usage error")

// ErrNotSignedIn is returned by commands that need a restored session.
var ErrNotSignedIn = errors.New("not signed in; run 'kivactl login' first")

type Session interface {
	Initialize(ctx context.Context) session.State
	State() session.State
	Login(ctx context.Context, username string, password string) (*model.SessionUser, error)
	Logout(ctx context.Context)
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
}

type StatusLookup interface {
	Lookup(ctx context.Context, token string) (*model.OrderStatus, error)
}

type OrderFilter interface {
	Filter(ctx context.Context, params model.FilterParams) (*model.Page[model.Order], error)
}

type command struct {
	summary string
	run     func(a *App, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"login":    {summary: "login [username]             sign in and persist the session", run: (*App).login},
	"logout":   {summary: "logout                       end the session", run: (*App).logout},
	"whoami":   {summary: "whoami                       show the restored session user", run: (*App).whoami},
	"register": {summary: "register [-role R] [username] create a user account", run: (*App).register},
	"status":   {summary: "status <token>               public order status lookup", run: (*App).status},
	"orders":   {summary: "orders [-status S] [-search T] [-page N] [-size N]", run: (*App).orders},
}

type App struct {
	session Session
	scan    StatusLookup
	filter  OrderFilter
	reader  *bufio.Reader
	out     io.Writer
}

func New(s Session, scan StatusLookup, orders OrderFilter, in io.Reader, out io.Writer) *App {
	return &App{
		session: s,
		scan:    scan,
		filter:  orders,
		reader:  bufio.NewReader(in),
		out:     out,
	}
}

// Run dispatches args[0] to its command.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		a.usage()
		if len(args) == 0 {
			return ErrUsage
		}
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		a.usage()
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	return cmd.run(a, ctx, args[1:])
}

func (a *App) usage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Usage: kivactl <command> [arguments]\n\nCommands:\n")
	for _, name := range names {
		b.WriteString("  " + commands[name].summary + "\n")
	}
	fmt.Fprint(a.out, b.String())
}

// restore runs the restore procedure and requires a signed-in user.
func (a *App) restore(ctx context.Context) (session.State, error) {
	state := a.session.Initialize(ctx)
	if !state.IsAuthenticated {
		return state, ErrNotSignedIn
	}
	return state, nil
}
