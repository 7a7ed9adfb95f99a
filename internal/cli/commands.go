package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"kiva-console/internal/guard"
	"kiva-console/internal/model"
	"kiva-console/internal/session"
)

func (a *App) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	username := fs.Arg(0)
	if username == "" {
		var err error
		if username, err = GetSimpleText(a.reader, "Username", a.out); err != nil {
			return err
		}
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	user, err := a.session.Login(ctx, username, string(password))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Signed in as %s (%s)\n", user.Username, user.Role)
	return nil
}

func (a *App) logout(ctx context.Context, _ []string) error {
	state := a.session.Initialize(ctx)
	a.session.Logout(ctx)

	if state.IsAuthenticated {
		fmt.Fprintf(a.out, "Signed out %s\n", state.Username())
	} else {
		fmt.Fprintln(a.out, "No session to end")
	}
	return nil
}

func (a *App) whoami(ctx context.Context, _ []string) error {
	state, err := a.restore(ctx)
	if err != nil {
		return err
	}

	u := state.CurrentUser
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Username:\t%s\n", u.Username)
	fmt.Fprintf(w, "Role:\t%s\n", u.Role)
	if u.FullName != "" {
		fmt.Fprintf(w, "Name:\t%s\n", u.FullName)
	}
	if u.Email != "" {
		fmt.Fprintf(w, "Email:\t%s\n", u.Email)
	}
	if u.Exp > 0 {
		fmt.Fprintf(w, "Expires:\t%s\n", time.Unix(u.Exp, 0).Format(time.RFC3339))
	}
	return w.Flush()
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	role := fs.String("role", "", "role for the new account (default USER)")
	email := fs.String("email", "", "email address")
	phone := fs.String("phone", "", "phone number")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	req := model.RegisterRequest{Username: fs.Arg(0), Email: *email, Phone: *phone, Role: *role}

	var err error
	if req.Username == "" {
		if req.Username, err = GetSimpleText(a.reader, "Username", a.out); err != nil {
			return err
		}
	}
	if req.Email == "" {
		if req.Email, err = GetSimpleText(a.reader, "Email", a.out); err != nil {
			return err
		}
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer wipe(password)
	req.Password = string(password)

	// Registration goes out with the stored credential when one is valid.
	a.session.Initialize(ctx)

	created, err := a.session.Register(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Created %s (%s)\n", created.Username, created.Role)
	return nil
}

func (a *App) status(ctx context.Context, args []string) error {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return fmt.Errorf("%w: status <token>", ErrUsage)
	}

	st, err := a.scan.Lookup(ctx, strings.TrimSpace(args[0]))
	if err != nil {
		return errors.New(session.Describe(err))
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Order:\t%s\n", firstNonEmpty(st.OrderNumber, st.OrderID.String()))
	fmt.Fprintf(w, "Status:\t%s\n", st.Status)
	if st.DeviceName != "" {
		fmt.Fprintf(w, "Device:\t%s\n", st.DeviceName)
	}
	if st.ClientName != "" {
		fmt.Fprintf(w, "Client:\t%s\n", st.ClientName)
	}
	if st.UpdatedAt != "" {
		fmt.Fprintf(w, "Updated:\t%s\n", st.UpdatedAt)
	}
	return w.Flush()
}

func (a *App) orders(ctx context.Context, args []string) error {
	fs := a.flags("orders")
	params := model.FilterParams{}
	fs.StringVar(&params.Kind, "status", "", "only orders in this status")
	fs.StringVar(&params.SearchTerm, "search", "", "search term")
	fs.IntVar(&params.Page, "page", 0, "zero-based page number")
	fs.IntVar(&params.Size, "size", model.DefaultPageSize, "page size")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	state := a.session.Initialize(ctx)
	if d := guard.Decide(state, ""); d.Verdict != guard.Render {
		return ErrNotSignedIn
	}

	page, err := a.filter.Filter(ctx, params)
	if err != nil {
		return errors.New(session.Describe(err))
	}

	printOrders(a.out, page)
	return nil
}

func printOrders(out io.Writer, page *model.Page[model.Order]) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tSTATUS\tCLIENT\tDEVICE")
	for _, o := range page.Content {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", firstNonEmpty(o.OrderNumber, o.ID.String()), o.Status, o.ClientName, o.DeviceName)
	}
	_ = w.Flush()

	if page.TotalPages > 0 {
		fmt.Fprintf(out, "page %d of %d, %d orders\n", page.Number+1, page.TotalPages, page.TotalElements)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
