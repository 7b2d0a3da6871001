// Package console drives the user workflows from a terminal.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"user-admin-console/internal/domain"
	"user-admin-console/internal/transport/rest"
	"user-admin-console/internal/validation"
	"user-admin-console/internal/workflow"
)

const usage = `usage: console <command> [flags]

commands:
  list   [--page N] [--limit N]     list users
  get    ID                         show one user
  create --username U --email E --name N --password P [--role R]
  edit   ID [--username U] [--email E] [--name N] [--password P] [--role R] [--status S]
  delete ID [--yes]                 delete after confirmation
`

// ErrUsage is returned for an unknown command or missing arguments.
var ErrUsage = errors.New("invalid usage")

type App struct {
	Users    domain.UserRepository
	In       io.Reader
	Out      io.Writer
	Log      *zap.Logger
	PageSize int
}

func (a *App) logger() *zap.Logger {
	if a.Log == nil {
		return zap.NewNop()
	}
	return a.Log
}

// Run executes one command line.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.Out, usage)
		return ErrUsage
	}
	cmd, sub := args[0], args[1:]
	switch cmd {
	case "list":
		return a.list(ctx, sub)
	case "get":
		return a.get(ctx, sub)
	case "create":
		return a.create(ctx, sub)
	case "edit":
		return a.edit(ctx, sub)
	case "delete":
		return a.delete(ctx, sub)
	case "help", "-h", "--help":
		fmt.Fprint(a.Out, usage)
		return nil
	}
	fmt.Fprintf(a.Out, "unknown command %q\n\n%s", cmd, usage)
	return ErrUsage
}

func (a *App) flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.Out)
	return fs
}

func (a *App) list(ctx context.Context, args []string) error {
	fs := a.flags("list")
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", a.PageSize, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}

	l := workflow.NewUserList(a.Users, workflow.WithLimit(*limit), workflow.WithLogger(a.logger()))
	defer l.Close()
	if err := l.SetPage(ctx, *page); err != nil {
		return err
	}
	s := l.Snapshot()
	if s.PastEnd {
		fmt.Fprintf(a.Out, "Page %d is past the last page (%d)\n", s.Page, max(s.TotalPages, 1))
		return nil
	}
	if len(s.Items) == 0 {
		fmt.Fprintln(a.Out, "No users found")
		return nil
	}
	a.table(s.Items)
	if l.ShowPagination() {
		fmt.Fprintf(a.Out, "\n%s   (%d users)\n", FormatWindow(l.Window(), s.Page), s.Total)
	}
	return nil
}

func (a *App) get(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	d := workflow.NewDetail(a.Users, workflow.WithLogger(a.logger()))
	u, err := d.Load(ctx, args[0])
	if err != nil {
		return err
	}
	a.detail(u)
	return nil
}

type formFlags struct {
	fs     *pflag.FlagSet
	fields map[string]*string
}

func (a *App) formFlags(name string, withStatus bool) formFlags {
	ff := formFlags{fs: a.flags(name), fields: map[string]*string{}}
	for _, f := range []string{workflow.FieldUsername, workflow.FieldEmail, workflow.FieldName, workflow.FieldPassword, workflow.FieldRole} {
		ff.fields[f] = ff.fs.String(f, "", f)
	}
	if withStatus {
		ff.fields[workflow.FieldStatus] = ff.fs.String(workflow.FieldStatus, "", "status")
	}
	return ff
}

// apply copies only the flags given on the command line into the form.
func (ff formFlags) apply(f *workflow.Form) error {
	var err error
	ff.fs.Visit(func(fl *pflag.Flag) {
		if v, ok := ff.fields[fl.Name]; ok && err == nil {
			err = f.Set(fl.Name, *v)
		}
	})
	return err
}

func (a *App) create(ctx context.Context, args []string) error {
	ff := a.formFlags("create", false)
	if err := ff.fs.Parse(args); err != nil {
		return err
	}
	f := workflow.NewCreateForm(a.Users, workflow.WithLogger(a.logger()))
	if err := ff.apply(f); err != nil {
		return err
	}
	u, err := f.Submit(ctx)
	if err != nil {
		return a.formError(err)
	}
	fmt.Fprintf(a.Out, "User created: %s\n", u.ID)
	return nil
}

func (a *App) edit(ctx context.Context, args []string) error {
	ff := a.formFlags("edit", true)
	if err := ff.fs.Parse(args); err != nil {
		return err
	}
	if ff.fs.NArg() != 1 {
		return ErrUsage
	}
	f, err := workflow.LoadEditForm(ctx, a.Users, ff.fs.Arg(0), workflow.WithLogger(a.logger()))
	if err != nil {
		return err
	}
	if err := ff.apply(f); err != nil {
		return err
	}
	u, err := f.Submit(ctx)
	if err != nil {
		return a.formError(err)
	}
	fmt.Fprintf(a.Out, "User updated: %s\n", u.ID)
	return nil
}

func (a *App) delete(ctx context.Context, args []string) error {
	fs := a.flags("delete")
	yes := fs.BoolP("yes", "y", false, "skip confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return ErrUsage
	}
	u, err := workflow.NewDetail(a.Users).Load(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	d := workflow.NewDeletion(a.Users, nil, workflow.WithLogger(a.logger()))
	if err := d.Request(u.ID, u.Name); err != nil {
		return err
	}
	if !*yes && !a.confirm(fmt.Sprintf("Delete user %s (%s)? This cannot be undone. [y/N] ", u.Name, u.Username)) {
		_ = d.Cancel()
		fmt.Fprintln(a.Out, "Cancelled")
		return nil
	}
	if _, err := d.Confirm(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.Out, "User deleted successfully")
	return nil
}

func (a *App) confirm(prompt string) bool {
	fmt.Fprint(a.Out, prompt)
	if a.In == nil {
		return false
	}
	line, _ := bufio.NewReader(a.In).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// formError prints field errors one per line; other errors are returned as is.
func (a *App) formError(err error) error {
	if fe, ok := validation.AsErrors(err); ok {
		for _, f := range []string{"username", "email", "name", "password", "role", "status"} {
			if msg := fe.Field(f); msg != "" {
				fmt.Fprintf(a.Out, "  %-9s %s\n", f+":", msg)
			}
		}
	}
	return err
}

func (a *App) table(users []domain.User) {
	cols := []string{"ID", "USERNAME", "NAME", "EMAIL", "ROLE", "STATUS", "CREATED"}
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			u.ID, u.Username, u.Name, u.Email, string(u.Role), string(u.Status),
			u.CreatedAt.Format("2006-01-02"),
		})
	}
	// 按显示宽度对齐，韩文/中文占两格
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = runewidth.StringWidth(c)
	}
	for _, r := range rows {
		for i, c := range r {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}
	line := func(r []string) {
		parts := make([]string, len(r))
		for i, c := range r {
			parts[i] = runewidth.FillRight(c, widths[i])
		}
		fmt.Fprintln(a.Out, strings.TrimRight(strings.Join(parts, "  "), " "))
	}
	line(cols)
	for _, r := range rows {
		line(r)
	}
}

func (a *App) detail(u *domain.User) {
	fmt.Fprintf(a.Out, "ID:       %s\n", u.ID)
	fmt.Fprintf(a.Out, "Username: %s\n", u.Username)
	fmt.Fprintf(a.Out, "Name:     %s\n", u.Name)
	fmt.Fprintf(a.Out, "Email:    %s\n", u.Email)
	fmt.Fprintf(a.Out, "Role:     %s\n", u.Role)
	fmt.Fprintf(a.Out, "Status:   %s\n", u.Status)
	fmt.Fprintf(a.Out, "Created:  %s\n", u.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(a.Out, "Updated:  %s\n", u.UpdatedAt.Format("2006-01-02 15:04"))
}

// FormatWindow renders pagination controls, e.g. "1 … 4 [5] 6 … 10".
func FormatWindow(items []workflow.PageItem, current int) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		switch {
		case it.Ellipsis:
			parts = append(parts, "…")
		case it.Page == current:
			parts = append(parts, fmt.Sprintf("[%d]", it.Page))
		default:
			parts = append(parts, fmt.Sprint(it.Page))
		}
	}
	return strings.Join(parts, " ")
}

// Message is the user-facing text of err.
func Message(err error) string {
	if e, ok := rest.As(err); ok {
		return e.Message
	}
	return err.Error()
}
