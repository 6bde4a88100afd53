package main

import (
	"context"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/storefront-api/auth"
	"github.com/jrsteele09/storefront-api/catalog"
	catalogpostgres "github.com/jrsteele09/storefront-api/catalog/postgres"
	fakeproductrepo "github.com/jrsteele09/storefront-api/catalog/repofake"
	"github.com/jrsteele09/storefront-api/federated"
	"github.com/jrsteele09/storefront-api/internal/config"
	"github.com/jrsteele09/storefront-api/internal/metrics"
	"github.com/jrsteele09/storefront-api/internal/store"
	"github.com/jrsteele09/storefront-api/server"
	"github.com/jrsteele09/storefront-api/token"
	"github.com/jrsteele09/storefront-api/users"
	userspostgres "github.com/jrsteele09/storefront-api/users/postgres"
	fakeuserrepo "github.com/jrsteele09/storefront-api/users/repofake"
)

const revocationCleanupInterval = time.Minute

// app owns every long-lived resource of a serving process. Close releases
// them in reverse order of acquisition.
type app struct {
	server  *server.Server
	closers []func()
}

func (a *app) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

type stores struct {
	accounts users.AccountRepo
	products catalog.Repo
}

func newApp(ctx context.Context, c config.Config) (_ *app, returnError error) {
	a := &app{}
	defer func() {
		if returnError != nil {
			a.Close()
		}
	}()

	st, err := a.openStores(ctx, c)
	if err != nil {
		return nil, err
	}

	revoked, err := a.revocationCache(ctx, c)
	if err != nil {
		return nil, err
	}

	issuer := token.NewIssuer(token.NewHMACSigner(c.GetTokenSecret()),
		token.WithIssuerName(c.GetTokenIssuer()),
		token.WithExpiry(c.GetTokenExpiry()),
		token.WithRevocation(revoked),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	opts := []auth.ServiceOption{
		auth.WithHasher(users.NewBcryptHasher(c.GetBcryptCost())),
		auth.WithLinkPolicy(auth.LinkPolicy(c.GetFederatedLinkPolicy())),
		auth.WithOperationTimeout(c.GetOperationTimeout()),
		auth.WithMetrics(collector),
	}
	googleOpts, err := googleOptions(ctx, c)
	if err != nil {
		return nil, err
	}
	opts = append(opts, googleOpts...)

	authService, err := auth.NewService(auth.Repos{Accounts: st.accounts}, issuer, opts...)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[newApp] auth service")
	}

	a.server, err = server.New(c, authService, catalog.NewService(st.products, c.GetOperationTimeout()),
		server.WithMetrics(collector),
		server.WithMetricsHandler(metrics.Handler(registry)),
	)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[newApp] server")
	}
	a.onClose(a.server.Close)
	return a, nil
}

// openStores connects to PostgreSQL when a database URL is configured and
// otherwise falls back to in-memory repositories.
func (a *app) openStores(ctx context.Context, c config.Config) (stores, error) {
	if c.GetDatabaseURL() == "" {
		log.Warn().Msg("DATABASE_URL not set, using in-memory stores; data is lost on restart")
		return stores{
			accounts: fakeuserrepo.NewFakeUserRepo(),
			products: fakeproductrepo.NewFakeProductRepo(),
		}, nil
	}

	pool, err := store.Connect(ctx, c.GetDatabaseURL(), store.ConnectOptions{
		MaxConns: c.GetDatabaseMaxConns(),
		Attempts: c.GetDatabaseConnectAttempts(),
	})
	if err != nil {
		return stores{}, err
	}
	a.onClose(pool.Close)

	return stores{
		accounts: userspostgres.NewAccountRepo(pool),
		products: catalogpostgres.NewProductRepo(pool),
	}, nil
}

// revocationCache uses Redis when configured so logouts survive restarts and
// are shared across instances.
func (a *app) revocationCache(ctx context.Context, c config.Config) (token.RevokedTokenCache, error) {
	if c.GetRedisAddr() == "" {
		cache := token.NewInMemoryRevokedTokenCache()
		token.StartCleanup(ctx, cache, revocationCleanupInterval)
		return cache, nil
	}

	client, err := token.NewRedisClient(c.GetRedisAddr(), c.GetRedisPassword(), c.GetRedisDB())
	if err != nil {
		return nil, err
	}
	a.onClose(func() {
		if err := client.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close")
		}
	})
	return token.NewRedisRevokedTokenCache(client), nil
}

func googleOptions(ctx context.Context, c config.Config) ([]auth.ServiceOption, error) {
	switch c.GetGoogleVerifier() {
	case "firebase":
		verifier, err := federated.NewFirebaseVerifier(ctx, c.GetFirebaseCredentialsFile(), c.GetFirebaseProjectID())
		if err != nil {
			return nil, err
		}
		return []auth.ServiceOption{auth.WithFederatedVerifier(verifier)}, nil

	case "oidc", "":
		if c.GetGoogleClientID() == "" {
			log.Warn().Msg("GOOGLE_CLIENT_ID not set, Google login is disabled")
			return nil, nil
		}
		verifier, err := federated.NewOIDCVerifier(ctx, federated.OIDCConfig{
			ClientID:     c.GetGoogleClientID(),
			ClientSecret: c.GetGoogleClientSecret(),
			RedirectURL:  c.GetGoogleRedirectURL(),
		})
		if err != nil {
			return nil, err
		}
		return []auth.ServiceOption{
			auth.WithFederatedVerifier(verifier),
			auth.WithCodeExchanger(verifier),
		}, nil

	default:
		return nil, pkgerrors.Errorf("[googleOptions] unknown google verifier %q", c.GetGoogleVerifier())
	}
}
