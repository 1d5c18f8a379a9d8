package di

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
	feedService "github.com/subonly/gate/internal/modules/feed/service"
	policyService "github.com/subonly/gate/internal/modules/policy/service"
	resolverService "github.com/subonly/gate/internal/modules/resolver/service"
	scheduleService "github.com/subonly/gate/internal/modules/schedule/service"
	settingsRepo "github.com/subonly/gate/internal/modules/settings/repository"
	settingsService "github.com/subonly/gate/internal/modules/settings/service"
	userRepo "github.com/subonly/gate/internal/modules/user/repository"
	userService "github.com/subonly/gate/internal/modules/user/service"
	"github.com/subonly/gate/internal/shared/config"
	httpServer "github.com/subonly/gate/internal/transport/http"
	telegramHandler "github.com/subonly/gate/internal/transport/telegram"
)

// Setup initializes the dependency injection container
func Setup() (do.Injector, error) {
	injector := do.New()

	// Register Config
	do.Provide(injector, func(i do.Injector) (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, oops.With("context", "failed to load config").Wrap(err)
		}
		return cfg, nil
	})

	// Register Settings Repository
	do.Provide(injector, func(i do.Injector) (settingsRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := settingsRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize settings repository").Wrap(err)
		}
		return repo, nil
	})

	// Register User Repository
	do.Provide(injector, func(i do.Injector) (userRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := userRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize user repository").Wrap(err)
		}
		return repo, nil
	})

	// Register Resolver Service
	do.Provide(injector, func(i do.Injector) (*resolverService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return resolverService.New(cfg), nil
	})

	// Register Settings Service
	do.Provide(injector, func(i do.Injector) (*settingsService.Service, error) {
		repo := do.MustInvoke[settingsRepo.Repository](i)
		resolver := do.MustInvoke[*resolverService.Service](i)
		return settingsService.New(repo, resolver), nil
	})

	// Register User Service
	do.Provide(injector, func(i do.Injector) (*userService.Service, error) {
		repo := do.MustInvoke[userRepo.Repository](i)
		return userService.New(repo), nil
	})

	// Register Schedule Service
	do.Provide(injector, func(i do.Injector) (*scheduleService.Service, error) {
		return scheduleService.New(), nil
	})

	// Register Policy Engine
	do.Provide(injector, func(i do.Injector) (*policyService.Engine, error) {
		schedule := do.MustInvoke[*scheduleService.Service](i)
		return policyService.NewEngine(schedule, policyService.NewClassifier(), policyService.NewMatcher()), nil
	})

	// Register Feed Service
	do.Provide(injector, func(i do.Injector) (*feedService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		settings := do.MustInvoke[*settingsService.Service](i)
		resolver := do.MustInvoke[*resolverService.Service](i)
		return feedService.New(cfg, settings, resolver), nil
	})

	// Register Telegram Handler
	do.Provide(injector, func(i do.Injector) (*telegramHandler.Handler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		settings := do.MustInvoke[*settingsService.Service](i)
		engine := do.MustInvoke[*policyService.Engine](i)
		users := do.MustInvoke[*userService.Service](i)
		return telegramHandler.New(cfg, settings, engine, users), nil
	})

	// Register HTTP Server
	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		engine := do.MustInvoke[*policyService.Engine](i)
		settings := do.MustInvoke[*settingsService.Service](i)
		resolver := do.MustInvoke[*resolverService.Service](i)
		feeds := do.MustInvoke[*feedService.Service](i)
		server := httpServer.New(cfg, engine, settings, resolver, feeds)
		server.SetLogger(slog.Default())
		return server, nil
	})

	// Register Bot. The Telegram surface is optional: without a token the
	// gate runs HTTP-only and the provider hands out a nil bot.
	do.Provide(injector, func(i do.Injector) (*bot.Bot, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.TelegramBotToken == "" {
			slog.Info("No Telegram token configured, skipping bot setup")
			return nil, nil
		}

		handler := do.MustInvoke[*telegramHandler.Handler](i)

		opts := []bot.Option{
			bot.WithDefaultHandler(handler.HandleUpdate),
			bot.WithServerURL(cfg.TelegramAPIURL),
		}

		b, err := bot.New(cfg.TelegramBotToken, opts...)
		if err != nil {
			return nil, oops.With("context", "failed to create telegram bot").Wrap(err)
		}

		// Register bot commands
		handler.RegisterCommands(b)

		return b, nil
	})

	return injector, nil
}

// Shutdown gracefully shuts down all services
func Shutdown(injector do.Injector) error {
	ctx := context.Background()

	// Shutdown bot if it exists
	if b, err := do.Invoke[*bot.Bot](injector); err == nil && b != nil {
		b.Close(ctx)
	}

	// Shutdown feed service if it exists
	if feeds, err := do.Invoke[*feedService.Service](injector); err == nil && feeds != nil {
		feeds.Stop()
	}

	return nil
}
