// Package console is a line-oriented driver for the dashboard session layer.
// It stands in for the browser: History is the address bar, the guard loop
// reacts to every navigation and session change, and commands map to what a
// user would click.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hongminglow/all-in-dash/internal/api"
	"github.com/hongminglow/all-in-dash/internal/endpoints"
	"github.com/hongminglow/all-in-dash/internal/guard"
	"github.com/hongminglow/all-in-dash/internal/routes"
	"github.com/hongminglow/all-in-dash/internal/session"
)

// ErrQuit is returned by Execute for the quit command.
var ErrQuit = errors.New("quit")

// Shell executes console commands against one session.
type Shell struct {
	Store   *session.Store
	History *guard.History
	Guard   *guard.Guard
	Client  *api.Client
	Auth    *endpoints.Auth
	Users   *endpoints.Users
	Table   routes.Table
	Sidebar []routes.NavItem
	Out     io.Writer

	lastNote string
}

// Run reads commands from in until EOF, quit, or ctx is done.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	s.prompt()
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.Execute(ctx, scanner.Text())
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(s.Out, "error: %v\n", err)
		}
		s.prompt()
	}
	return scanner.Err()
}

func (s *Shell) prompt() {
	fmt.Fprintf(s.Out, "%s> ", s.History.Path())
}

// Execute runs a single command line.
func (s *Shell) Execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	switch cmd {
	case "help", "?":
		s.help()
		return nil
	case "quit", "exit":
		return ErrQuit
	case "login":
		if len(args) != 2 {
			return errors.New("usage: login <username|email> <password>")
		}
		resp, err := s.Auth.Login(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(s.Out, "signed in as %s (%s)\n", resp.User.Username, resp.User.Role.Normalize())
		return nil
	case "logout":
		if err := s.Auth.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(s.Out, "signed out")
		return nil
	case "goto":
		if len(args) != 1 || !strings.HasPrefix(args[0], "/") {
			return errors.New("usage: goto </path>")
		}
		s.History.Push(args[0])
		return nil
	case "back":
		if !s.History.Back() {
			return errors.New("no earlier page")
		}
		return nil
	case "where":
		s.where()
		return nil
	case "whoami":
		s.whoami()
		return nil
	case "nav":
		s.nav()
		return nil
	case "me":
		user, err := s.Users.Me(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.Out, "%s %s <%s> %s\n", user.ID, user.Username, user.Email, user.Role)
		return nil
	case "verify":
		resp, err := s.Users.VerifyIdentity(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.Out, "identity confirmed for %s (%s)\n", resp.User.Username, resp.User.Role.Normalize())
		return nil
	case "get", "delete":
		if len(args) != 1 || !strings.HasPrefix(args[0], "/") {
			return fmt.Errorf("usage: %s </endpoint>", cmd)
		}
		method := http.MethodGet
		if cmd == "delete" {
			method = http.MethodDelete
		}
		out, err := s.Client.Send(ctx, method, args[0], nil)
		s.printOutcome(out)
		return err
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
}

func (s *Shell) help() {
	fmt.Fprint(s.Out, `commands:
  login <user> <password>   sign in
  logout                    sign out
  goto </path>              navigate
  back                      go to the previous page
  where                     show the current page and any pending redirect
  whoami                    show the session
  nav                       show the sidebar for the current role
  me                        fetch /users/me
  verify                    re-confirm the session with the backend
  get </endpoint>           send a GET through the request pathway
  delete </endpoint>        send a DELETE through the request pathway
  quit
`)
}

func (s *Shell) where() {
	path := s.History.Path()
	class := s.Table.Classify(path)
	fmt.Fprintf(s.Out, "page %s (%s", path, class.Kind)
	if class.Kind == routes.RoleOwned {
		fmt.Fprintf(s.Out, ", owner %s", class.Role)
	}
	fmt.Fprint(s.Out, ")")
	if to, ok := s.Guard.Pending(); ok {
		fmt.Fprintf(s.Out, ", redirecting to %s", to)
	}
	fmt.Fprintln(s.Out)
}

func (s *Shell) whoami() {
	snap := s.Store.Snapshot()
	switch {
	case !snap.Ready:
		fmt.Fprintln(s.Out, "loading")
	case !snap.Authenticated():
		fmt.Fprintln(s.Out, "anonymous")
	default:
		fmt.Fprintf(s.Out, "%s (%s) id=%s home=%s\n", snap.User.Username, snap.Role, snap.User.ID, s.Table.OwnerOf(snap.Role))
	}
}

func (s *Shell) nav() {
	snap := s.Store.Snapshot()
	if !snap.Authenticated() {
		fmt.Fprintln(s.Out, "sign in to see navigation")
		return
	}
	path := s.History.Path()
	for _, item := range s.Table.Items(s.Sidebar, snap.Role) {
		marker := " "
		if s.Table.IsActive(s.Sidebar, snap.Role, path, item) {
			marker = "*"
		}
		fmt.Fprintf(s.Out, "%s %-18s %s\n", marker, item.Label, item.Path)
	}
}

func (s *Shell) printOutcome(out api.Outcome) {
	switch out.Kind {
	case api.Success:
		fmt.Fprintf(s.Out, "%d %s\n", out.StatusCode, out.Payload)
	case api.EmptyOK:
		fmt.Fprintf(s.Out, "%d (no content)\n", out.StatusCode)
	case api.ServerError:
		fmt.Fprintf(s.Out, "%d %s: %s\n", out.StatusCode, out.Envelope.Code, out.Envelope.Message)
	default:
		fmt.Fprintf(s.Out, "%s\n", out.Kind)
	}
}

// Observe is a guard.Observer that reports loading and redirect decisions,
// once per distinct decision. It must only be called from the guard loop.
func (s *Shell) Observe(st guard.State, d guard.Decision) {
	var note string
	switch d.Kind {
	case guard.Redirect:
		note = fmt.Sprintf("[guard] %s -> %s", st.Path, d.Target)
	case guard.Loading:
		note = fmt.Sprintf("[guard] %s: loading session", st.Path)
	}
	if note == s.lastNote {
		return
	}
	s.lastNote = note
	if note != "" {
		fmt.Fprintf(s.Out, "\n%s\n", note)
	}
}
