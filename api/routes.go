package api

import (
	"time"

	"github.com/goliatone/go-router"
	"github.com/mercato-io/mercato/auth"
	"github.com/mercato-io/mercato/middleware/bearerauth"
	"github.com/mercato-io/mercato/store"
)

// AccessRules is the route classification table the bearer middleware
// consults, keyed by "METHOD /path". First match wins; anything unmatched
// is protected.
func AccessRules() []auth.PolicyRule {
	return []auth.PolicyRule{
		auth.Public("POST /api/auth/login"),
		auth.Public("POST /api/users"),
		auth.Public("GET /api/products"),
		auth.Public("GET /api/products/*"),
		auth.Public("GET /api/products/*/reviews"),
		auth.Public("* /health"),
	}
}

// Config wires the controllers and the request authenticator.
type Config struct {
	Logger       auth.Logger
	Repo         store.RepositoryManager
	Auther       auth.Authenticator
	TokenService auth.TokenService
	// Identities resolves token subjects against the user store so tokens
	// for deleted or disabled accounts stop at the middleware.
	Identities  auth.IdentityProvider
	TokenTTL    time.Duration
	ContextKey  string
	TokenLookup string
	AuthScheme  string
}

// RegisterRoutes mounts the whole API surface on the router. Authentication
// is a single middleware pass; role gates sit on individual routes.
func RegisterRoutes[T any](app router.Router[T], cfg Config) error {
	if cfg.Logger == nil {
		cfg.Logger = auth.DefaultLogger()
	}
	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	policy, err := auth.NewAccessPolicy(AccessRules()...)
	if err != nil {
		return err
	}

	bearerCfg := bearerauth.Config{
		Policy:          policy,
		TokenValidator:  auth.NewTokenValidatorAdapter(cfg.TokenService),
		ContextKey:      cfg.ContextKey,
		TokenLookup:     cfg.TokenLookup,
		AuthScheme:      cfg.AuthScheme,
		ContextEnricher: auth.ContextEnricherAdapter,
	}

	// a valid signature is not enough, the subject has to still exist
	if cfg.Identities != nil {
		auth.RegisterValidationListeners(&bearerCfg, auth.IdentityCheckListener(cfg.Identities))
	}

	app.Use(bearerauth.New(bearerCfg))

	authController := NewAuthController(
		WithAuther(cfg.Auther),
		WithAuthLogger(cfg.Logger),
		WithTokenTTL(cfg.TokenTTL),
	)
	users := NewUsersController(cfg.Repo, cfg.Logger)
	products := NewProductsController(cfg.Repo, cfg.Logger)
	orders := NewOrdersController(cfg.Repo, cfg.Logger)
	reviews := NewReviewsController(cfg.Repo, cfg.Logger)

	users.ContextKey = cfg.ContextKey
	orders.ContextKey = cfg.ContextKey
	reviews.ContextKey = cfg.ContextKey

	adminOnly := RequireMinimumRole(cfg.ContextKey, auth.RoleAdmin)
	managerUp := RequireMinimumRole(cfg.ContextKey, auth.RoleManager)

	app.Get("/health", func(ctx router.Context) error {
		return ctx.JSON(router.StatusOK, map[string]string{"status": "ok"})
	}).SetName("health.get")

	app.Post("/api/auth/login", authController.Login).SetName("auth.login")

	app.Post("/api/users", users.Register).SetName("users.register")
	app.Post("/api/users/admin/register", users.AdminRegister, adminOnly).SetName("users.admin-register")
	app.Get("/api/users", users.List, adminOnly).SetName("users.list")
	app.Get("/api/users/:id", users.Get).SetName("users.get")
	app.Put("/api/users/:id", users.Update).SetName("users.update")
	app.Delete("/api/users/:id", users.Delete, adminOnly).SetName("users.delete")

	app.Get("/api/products", products.List).SetName("products.list")
	app.Get("/api/products/:id", products.Get).SetName("products.get")
	app.Post("/api/products", products.Create, managerUp).SetName("products.create")
	app.Put("/api/products/:id", products.Update, managerUp).SetName("products.update")
	app.Delete("/api/products/:id", products.Delete, adminOnly).SetName("products.delete")

	app.Post("/api/orders", orders.Place).SetName("orders.place")
	app.Get("/api/orders", orders.List).SetName("orders.list")
	app.Get("/api/orders/:reference", orders.Get).SetName("orders.get")
	app.Delete("/api/orders/:reference", orders.Delete).SetName("orders.delete")

	app.Get("/api/products/:id/reviews", reviews.ListByProduct).SetName("reviews.list")
	app.Post("/api/products/:id/reviews", reviews.Create).SetName("reviews.create")

	return nil
}

// RequireMinimumRole rejects requests whose claims sit below minRole in the
// role hierarchy. It assumes the bearer middleware already attached claims.
func RequireMinimumRole(contextKey string, minRole auth.UserRole) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			claims, ok := claimsFromRequest(ctx, contextKey)
			if !ok {
				return ctx.JSON(router.StatusUnauthorized, map[string]string{
					"error": "missing identity",
				})
			}

			if !claims.IsAtLeast(string(minRole)) {
				return ctx.JSON(router.StatusForbidden, map[string]string{
					"error": "insufficient role",
				})
			}

			return ctx.Next()
		}
	}
}
