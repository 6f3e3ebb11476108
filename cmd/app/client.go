package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/starford/inkwell/internal"
	"github.com/starford/inkwell/internal/client"
	"github.com/starford/inkwell/internal/client/cache"
	"github.com/starford/inkwell/internal/client/form"
	"github.com/starford/inkwell/internal/client/tui"
	"github.com/starford/inkwell/internal/client/view"
	"github.com/starford/inkwell/internal/models"
	pkgconfig "github.com/starford/inkwell/pkg/config"
)

// Client commands run without a config file; defaults point at a local server.
func loadClientConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// openSession loads config and builds a client session. Logs go to stderr so
// rendered output on stdout stays clean.
func openSession(cmd *cli.Command, opts ...client.Option) (*client.Session, *slog.Logger, error) {
	cfg, err := loadClientConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger := internal.NewLogger(os.Stderr, cfg.App.LogLevel)
	opts = append([]client.Option{client.WithLogger(logger)}, opts...)
	sess, err := client.NewSession(cfg.Client, opts...)
	if err != nil {
		return nil, nil, err
	}
	return sess, logger, nil
}

func textWriter(out io.Writer, sess **client.Session) *view.Writer {
	return &view.Writer{
		Out:      out,
		Renderer: view.TextRenderer{ShowActions: true},
		Status:   func() string { return (*sess).State.Status() },
	}
}

func postFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "Post title"},
		&cli.StringFlag{Name: "date", Usage: "Post date, YYYY-MM-DD (blank for today)"},
		&cli.StringFlag{Name: "content", Usage: "Post body"},
	}
}

func yesFlag() cli.Flag {
	return &cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt"}
}

func clientCommand() *cli.Command {
	return &cli.Command{
		Name:  "client",
		Usage: "Offline-capable post client",
		Commands: []*cli.Command{
			{
				Name:    "sync",
				Aliases: []string{"list"},
				Usage:   "Fetch posts (falling back to the cache) and print them",
				Action:  clientSync,
			},
			{
				Name:  "render",
				Usage: "Fetch posts and render the list",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: "text", Usage: "text or html"},
					&cli.StringFlag{Name: "out", Usage: "Output file (default stdout)"},
				},
				Action: clientRender,
			},
			{
				Name:   "create",
				Usage:  "Create a post",
				Flags:  postFlags(),
				Action: clientCreate,
			},
			{
				Name:      "update",
				Usage:     "Update a post; unset flags keep their current value",
				ArgsUsage: "ID",
				Flags:     postFlags(),
				Action:    clientUpdate,
			},
			{
				Name:      "delete",
				Usage:     "Delete a post after confirmation",
				ArgsUsage: "ID",
				Flags:     []cli.Flag{yesFlag()},
				Action:    clientDelete,
			},
			{
				Name:      "action",
				Usage:     "Run a list action (edit or delete) on a post",
				ArgsUsage: "edit|delete ID",
				Flags:     append([]cli.Flag{yesFlag()}, postFlags()...),
				Action:    clientAction,
			},
			{
				Name:   "watch",
				Usage:  "Re-print the list whenever the file cache changes",
				Action: clientWatch,
			},
			{
				Name:   "tui",
				Usage:  "Interactive terminal client",
				Action: clientTUI,
			},
		},
	}
}

func clientSync(ctx context.Context, cmd *cli.Command) error {
	var sess *client.Session
	sess, _, err := openSession(cmd, client.WithRenderer(textWriter(os.Stdout, &sess)))
	if err != nil {
		return err
	}
	defer sess.Close()

	sess.Sync.Refresh(ctx)
	return nil
}

func clientRender(ctx context.Context, cmd *cli.Command) error {
	var renderer view.PageRenderer
	switch cmd.String("format") {
	case "text":
		renderer = view.TextRenderer{}
	case "html":
		renderer = view.HTMLRenderer{}
	default:
		return fmt.Errorf("unknown format %q", cmd.String("format"))
	}

	sess, _, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	sess.Sync.Refresh(ctx)

	out := io.Writer(os.Stdout)
	if path := cmd.String("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	w := &view.Writer{Out: out, Renderer: renderer, Status: sess.State.Status}
	return w.Render(sess.State.Posts())
}

func valuesFromFlags(cmd *cli.Command, v form.Values) form.Values {
	if cmd.IsSet("title") {
		v.Title = cmd.String("title")
	}
	if cmd.IsSet("date") {
		v.Date = cmd.String("date")
	}
	if cmd.IsSet("content") {
		v.Content = cmd.String("content")
	}
	return v
}

func clientCreate(ctx context.Context, cmd *cli.Command) error {
	sess, _, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.Form.Submit(ctx, valuesFromFlags(cmd, form.Values{})); err != nil {
		return formError(err)
	}
	fmt.Println(sess.State.Status())
	return nil
}

func clientUpdate(ctx context.Context, cmd *cli.Command) error {
	return runAction(ctx, cmd, view.CommandEdit, cmd.Args().First())
}

func clientDelete(ctx context.Context, cmd *cli.Command) error {
	return runAction(ctx, cmd, view.CommandDelete, cmd.Args().First())
}

func clientAction(ctx context.Context, cmd *cli.Command) error {
	command, err := view.ParseCommand(cmd.Args().Get(0))
	if err != nil {
		return err
	}
	return runAction(ctx, cmd, command, cmd.Args().Get(1))
}

func stdinConfirmer(cmd *cli.Command) form.Confirmer {
	return form.ConfirmFunc(func(_ context.Context, prompt string) bool {
		if cmd.Bool("yes") {
			return true
		}
		fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		return strings.EqualFold(strings.TrimSpace(line), "y")
	})
}

// runAction routes a post action through the same dispatcher the list
// view uses.
func runAction(ctx context.Context, cmd *cli.Command, command view.Command, id string) error {
	if id == "" {
		return errors.New("post ID is required")
	}
	var confirm form.Confirmer
	if command == view.CommandDelete {
		confirm = stdinConfirmer(cmd)
	}
	sess, _, err := openSession(cmd, client.WithConfirmer(confirm))
	if err != nil {
		return err
	}
	defer sess.Close()

	d := view.NewDispatcher()
	d.Handle(view.CommandEdit, func(ctx context.Context, id string) error {
		sess.Sync.Refresh(ctx)
		if !sess.Form.StartEdit(id) {
			return fmt.Errorf("post %s not found", id)
		}
		if err := sess.Form.Submit(ctx, valuesFromFlags(cmd, sess.Form.Values())); err != nil {
			return formError(err)
		}
		fmt.Println(sess.State.Status())
		return nil
	})
	d.Handle(view.CommandDelete, func(ctx context.Context, id string) error {
		ok, err := sess.Form.RequestDelete(ctx, id)
		if err != nil {
			return err
		}
		if ok {
			fmt.Println(sess.State.Status())
		}
		return nil
	})
	return d.Dispatch(ctx, view.Action{Command: command, PostID: id})
}

func formError(err error) error {
	if errors.Is(err, form.ErrMissingFields) {
		return errors.New("title and content are required")
	}
	return err
}

func clientWatch(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var sess *client.Session
	w := textWriter(os.Stdout, &sess)
	sess, logger, err := openSession(cmd, client.WithRenderer(w))
	if err != nil {
		return err
	}
	defer sess.Close()

	fs, ok := sess.Slot.(*cache.FileSlot)
	if !ok {
		return errors.New("watch needs the file cache driver")
	}

	sess.Sync.Refresh(ctx)
	return cache.Watch(ctx, fs.Path(), logger, func(posts []models.Post) {
		if err := w.Render(posts); err != nil {
			logger.Warn("render failed", slog.String("error", err.Error()))
		}
	})
}

func clientTUI(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadClientConfig(cmd)
	if err != nil {
		return err
	}
	// The alternate screen owns the terminal.
	logger := internal.NewLogger(io.Discard, cfg.App.LogLevel)
	conf := tui.NewConfirmer()
	sess, err := client.NewSession(cfg.Client, client.WithLogger(logger), client.WithConfirmer(conf))
	if err != nil {
		return err
	}
	defer sess.Close()

	return tui.Run(tui.New(ctx, sess.Sync, sess.Form, conf))
}
