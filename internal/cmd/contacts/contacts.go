// Package contacts is the interactive terminal front end for the contacts
// API. It reads one command per line, drives a client.App and re-renders the
// form and list after every command.
package contacts

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-contacts-backend/internal/client"
	"github.com/tbourn/go-contacts-backend/internal/utils"
)

// Config holds the front end settings. Flags override the environment.
type Config struct {
	BaseURL string        `env:"CONTACTS_API_URL" envDefault:"http://localhost:5000/api/contacts"`
	Timeout time.Duration `env:"CONTACTS_TIMEOUT" envDefault:"10s"`
}

// ParseConfig reads the environment and then args into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	fs.StringVar(&cfg.BaseURL, "api", cfg.BaseURL, "contacts collection URL")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if cfg.Timeout <= 0 {
		return cfg, errors.New("timeout must be positive")
	}
	return cfg, nil
}

const helpText = `Commands:
  name|email|phone|message <value>   set a form field
  submit                             create, or update the contact being edited
  edit <n>                           load row n into the form
  cancel                             stop editing and clear the form
  delete <n>                         delete row n (asks for confirmation)
  search <term>                      filter by name or phone
  clear                              remove the filter
  list                               reload contacts from the server
  help                               show this text
  quit                               exit
`

// Run reads commands from in until "quit" or EOF and writes the screen to out.
func Run(ctx context.Context, cfg Config, in io.Reader, out io.Writer) error {
	api, err := client.NewHTTPClient(cfg.BaseURL, client.WithTimeout(cfg.Timeout))
	if err != nil {
		return err
	}
	return run(ctx, api, in, out)
}

func run(ctx context.Context, api client.API, in io.Reader, out io.Writer) error {
	t := &terminal{in: bufio.NewScanner(in), out: out}
	app := client.NewApp(api, t, t, log.Logger)
	t.app = app

	if err := app.Load(ctx); err != nil {
		t.printf("could not load contacts: %v\n", err)
	}
	t.render()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		t.printf("> ")
		line, ok := t.readLine()
		if !ok {
			return t.in.Err()
		}
		quit := t.exec(ctx, line)
		if quit {
			return nil
		}
	}
}

// terminal is the line-oriented UI. It is also the App's Confirmer and
// Alerter, reading answers from the same input stream.
type terminal struct {
	in  *bufio.Scanner
	out io.Writer
	app *client.App
}

func (t *terminal) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(t.out, format, args...)
}

func (t *terminal) readLine() (string, bool) {
	if !t.in.Scan() {
		return "", false
	}
	return t.in.Text(), true
}

func (t *terminal) render() {
	t.printf("\n")
	_ = client.Render(t.out, t.app.State())
}

// Confirm asks a y/N question. EOF counts as no.
func (t *terminal) Confirm(prompt string) bool {
	t.printf("%s [y/N] ", prompt)
	line, ok := t.readLine()
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// Alert prints a notice.
func (t *terminal) Alert(msg string) { t.printf("!! %s\n", msg) }

// exec runs one command line and reports whether the loop should stop.
func (t *terminal) exec(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
		return false
	case "quit", "exit":
		return true
	case "help":
		t.printf("%s", helpText)
		return false
	case "name":
		t.app.SetField(client.FieldName, arg)
	case "email":
		t.app.SetField(client.FieldEmail, arg)
	case "phone":
		t.app.SetField(client.FieldPhone, arg)
	case "message":
		t.app.SetField(client.FieldMessage, arg)
	case "submit":
		if err := t.app.Submit(ctx); errors.Is(err, client.ErrSubmitBlocked) {
			t.printf("Fix the form before submitting.\n")
		}
	case "edit":
		id, ok := t.row(arg)
		if !ok {
			return false
		}
		t.app.StartEdit(id)
	case "cancel":
		t.app.CancelEdit()
	case "delete":
		id, ok := t.row(arg)
		if !ok {
			return false
		}
		_, _ = t.app.Delete(ctx, id)
	case "search":
		t.app.SetSearch(arg)
	case "clear":
		t.app.ClearSearch()
	case "list":
		if err := t.app.Load(ctx); err != nil {
			t.printf("could not load contacts: %v\n", err)
		}
	default:
		t.printf("unknown command %q (type help)\n", cmd)
		return false
	}
	t.render()
	return false
}

func (t *terminal) row(arg string) (string, bool) {
	n := utils.AtoiDefault(arg, 0)
	id, ok := client.RowID(t.app.State(), n)
	if !ok {
		t.printf("no row %q\n", arg)
	}
	return id, ok
}
