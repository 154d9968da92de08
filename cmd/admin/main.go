// Command admin edits site content through the content API.
//
//	admin [-api URL] [-email E] [-password P] <command> [args]
//
// Commands:
//
//	reload                      fetch and print the site and all collections
//	list <kind>                 print one collection (events, programs, contacts, gallery, footer-links, users)
//	site key=value...           update site fields
//	add-event -title T [...]    create an event
//	update <kind> <id> key=value...  update fields of a record
//	delete <kind> <id>          delete a record
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/masjid/internal/config"
)

var errUsage = errors.New("usage: admin [-api URL] [-email E] [-password P] <reload|list|site|add-event|update|delete> [args]")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)

	if err := run(ctx, cfg, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// public commands work without signing in.
var public = map[string]bool{"reload": true, "list": true}

func run(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("admin", flag.ContinueOnError)
	fs.SetOutput(stderr)
	apiURL := fs.String("api", cfg.APIBaseURL, "content API base URL")
	email := fs.String("email", cfg.AdminEmail, "admin email (ADMIN_EMAIL)")
	password := fs.String("password", cfg.AdminPassword, "admin password (ADMIN_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		return errUsage
	}

	sess := newSession(*apiURL, stderr)
	defer sess.Close()

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch {
	case *email != "" && *password != "":
		if err := sess.ctl.Login(ctx, *email, *password); err != nil {
			return err
		}
	case public[cmd] && !(cmd == "list" && len(rest) > 0 && rest[0] == "users"):
		if err := sess.ctl.ReloadAll(ctx); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%s needs -email and -password", cmd)
	}

	switch cmd {
	case "reload":
		return sess.printAll(stdout)
	case "list":
		return sess.list(stdout, rest)
	case "site":
		return sess.site(ctx, stdout, rest)
	case "add-event":
		return sess.addEvent(ctx, stdout, rest)
	case "update":
		return sess.update(ctx, stdout, rest)
	case "delete":
		return sess.delete(ctx, stdout, rest)
	default:
		return errUsage
	}
}
