// Package cli is the ministagram command line: one cobra command per page, each
// driving the matching controller and printing the result to stdout.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ministagram/internal/api"
	"ministagram/internal/config"
	"ministagram/internal/controller"
	"ministagram/internal/logger"
	"ministagram/internal/media"
	"ministagram/internal/model"
	"ministagram/internal/session"
	"ministagram/internal/tokenstore"
)

// App wires the controllers to one output stream.
type App struct {
	deps controller.Deps
	log  *zap.Logger
	out  io.Writer
}

// New builds an App around a gateway client. uploader may be nil.
func New(client *api.Client, uploader controller.ImageUploader, log *zap.Logger, out io.Writer) *App {
	log = logger.OrNop(log)
	return &App{
		deps: controller.Deps{
			API:      client,
			Session:  session.NewManager(client.Auth, client.Users, client.Tokens(), log),
			Uploader: uploader,
			Log:      log,
		},
		log: log,
		out: out,
	}
}

// Execute loads the configuration, builds the process dependencies and runs the
// command named by os.Args.
func Execute() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tokens, err := tokenstore.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	if closer, ok := tokens.(io.Closer); ok {
		defer closer.Close()
	}

	app := New(api.NewFromConfig(cfg, tokens, log), newUploader(ctx, cfg, log), log, os.Stdout)
	go app.watchSession(app.deps.Session.Subscribe(ctx))
	return app.Command().ExecuteContext(ctx)
}

// watchSession logs every session transition until ch is closed.
func (a *App) watchSession(ch <-chan session.State) {
	for s := range ch {
		a.log.Debug("session changed",
			zap.Bool("authenticated", s.Authenticated()),
			zap.Bool("hydrating", s.IsHydrating),
		)
	}
}

// newUploader returns nil when media uploads are not configured.
func newUploader(ctx context.Context, cfg *config.Config, log *zap.Logger) controller.ImageUploader {
	u, err := media.NewUploader(ctx, cfg, log)
	if err != nil {
		if !errors.Is(err, model.ErrMediaDisabled) {
			log.Warn("media uploads unavailable", zap.Error(err))
		}
		return nil
	}
	return u
}

// Command builds the command tree.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:           "ministagram",
		Short:         "A small photo sharing client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.hydrate(cmd.Context())
		},
	}
	root.SetOut(a.out)

	root.AddCommand(
		a.loginCmd(),
		a.signupCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.feedCmd(),
		a.postsCmd(),
		a.commentsCmd(),
		a.profileCmd(),
		a.usersCmd(),
		a.userCmd(),
		a.connectionsCmd(),
		a.chatCmd(),
	)
	return root
}

// hydrate restores the stored session. An invalid token leaves the user signed
// out rather than failing the command.
func (a *App) hydrate(ctx context.Context) error {
	if err := a.deps.Session.Hydrate(ctx); err != nil {
		a.log.Info("stored session discarded", zap.Error(err))
	}
	return nil
}

// requireAuth is the route guard for every page but login and signup.
func (a *App) requireAuth() (*model.User, error) {
	me, err := a.deps.Session.RequireAuth()
	if err != nil {
		return nil, errors.New("not signed in: run `ministagram login` first")
	}
	return me, nil
}

// authed wraps a RunE so it only runs for a signed-in user.
func (a *App) authed(run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if _, err := a.requireAuth(); err != nil {
			return err
		}
		return run(cmd, args)
	}
}

// userError shows the user-facing message and keeps the cause for errors.Is.
type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.err }

// failure turns a controller failure into the error printed to the user.
func failure(msg string, err error) error {
	if err == nil {
		return nil
	}
	if msg == "" {
		return err
	}
	return &userError{msg: msg, err: err}
}
