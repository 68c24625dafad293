package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/mercato-io/mercato/api"
	"github.com/mercato-io/mercato/auth"
	"github.com/mercato-io/mercato/config"
	"github.com/mercato-io/mercato/store"
)

type App struct {
	config       *gconfig.Container[*config.BaseConfig]
	bunDB        *bun.DB
	repo         store.RepositoryManager
	auth         auth.Authenticator
	identities   auth.IdentityProvider
	tokenService auth.TokenService
	srv          router.Server[*fiber.App]
	logger       *glog.BaseLogger
}

func (a *App) Config() *config.BaseConfig {
	return a.config.Raw()
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Info),
		glog.WithName("mercato"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := gconfig.New(&config.BaseConfig{}).
		WithLogger(lgr.GetLogger("config"))

	ctx := context.Background()
	if err := cfg.Load(ctx); err != nil {
		panic(err)
	}

	app := &App{
		config: cfg,
		logger: lgr,
	}

	if app.Config().GetPersistence().GetDebug() {
		fmt.Println(print.MaybeHighlightJSON(cfg.Raw()))
	}

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithAuth(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	app.srv.Serve(app.Config().GetServer().GetAddr())

	WaitExitSignal()
}

func WithPersistence(ctx context.Context, app *App) error {
	db, err := sql.Open(sqliteshim.ShimName, app.Config().GetPersistence().GetDSN())
	if err != nil {
		log.Fatal(err)
		return err
	}

	persistence.RegisterModel((*store.User)(nil))
	persistence.RegisterModel((*store.Product)(nil))
	persistence.RegisterModel((*store.Order)(nil))
	persistence.RegisterModel((*store.OrderItem)(nil))
	persistence.RegisterModel((*store.Review)(nil))

	pcfg := app.Config().GetPersistence()
	dialect := sqlitedialect.New()
	client, err := persistence.New(pcfg, db, dialect)
	if err != nil {
		log.Fatal(err)
		return err
	}

	client.SetLogger(app.GetLogger("persistence"))

	migrationsFS, err := fs.Sub(store.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}
	client.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("postgres", "sqlite"),
	)
	if err := client.ValidateDialects(ctx); err != nil {
		return err
	}

	if err := client.Migrate(ctx); err != nil {
		return err
	}

	app.bunDB = client.DB()
	app.repo = store.NewRepositoryManager(client.DB())

	return app.repo.Validate()
}

func WithAuth(ctx context.Context, app *App) error {
	acfg := app.Config().GetAuth()

	// signing key is decoded and length checked here; an undersized key
	// keeps the process from starting
	tokenService, err := auth.NewTokenService(
		acfg.GetSigningKey(),
		acfg.GetTokenTTL(),
		acfg.GetIssuer(),
		acfg.GetAudience(),
		app.GetLogger("auth:token"),
	)
	if err != nil {
		return err
	}

	userProvider := auth.NewUserProvider(store.NewUserTrackerAdapter(app.repo.Users()))
	userProvider.WithLogger(app.GetLogger("auth:prv"))

	authenticator := auth.NewAuthenticator(userProvider, tokenService)
	authenticator.WithLogger(app.GetLogger("auth:authn"))

	app.tokenService = tokenService
	app.auth = authenticator
	app.identities = userProvider

	return nil
}

func WithHTTPServer(ctx context.Context, app *App) error {
	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:  true,
			StrictRouting: false,
			AppName:       app.Config().GetName(),
		}))
	})

	srv.Router().WithLogger(app.GetLogger("router"))

	acfg := app.Config().GetAuth()

	if err := api.RegisterRoutes(srv.Router(), api.Config{
		Logger:       app.GetLogger("api"),
		Repo:         app.repo,
		Auther:       app.auth,
		TokenService: app.tokenService,
		Identities:   app.identities,
		TokenTTL:     acfg.GetTokenTTL(),
		ContextKey:   acfg.GetContextKey(),
		TokenLookup:  acfg.GetTokenLookup(),
		AuthScheme:   acfg.GetAuthScheme(),
	}); err != nil {
		return err
	}

	app.srv = srv

	return nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
