// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-storefront/config"
	"go-storefront/controllers"
	"go-storefront/logger"
	"go-storefront/middleware"
	"go-storefront/notify"
	"go-storefront/routes"
	"go-storefront/services"
	"go-storefront/store"
	"go-storefront/store/memory"
	"go-storefront/store/mongodb"
	"go-storefront/utils"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version = "dev"

	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "storefront",
	Short:   "Storefront API server",
	Version: Version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file")

	makeAdminCmd.Flags().String("email", "", "email of the account to promote")
	makeAdminCmd.Flags().Bool("revoke", false, "remove admin rights instead")
	_ = makeAdminCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(makeAdminCmd)
}

// loadConfig reads the configuration and initializes the global logger
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	logger.Init(logger.Config{
		Level:      logger.Level(cfg.LogLevel),
		JSONOutput: cfg.LogJSON,
	})
	return cfg, nil
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	if cfg.StoreBackend == config.StoreMemory {
		logger.Logger.Warn().Msg("using in-memory store; data is lost on exit")
		return memory.New(), nil
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return mongodb.Connect(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := st.Close(closeCtx); err != nil {
				logger.Logger.Error().Err(err).Msg("failed to close store")
			}
		}()

		tokens, err := utils.NewTokenManager(cfg.Secrets(), cfg.JWTExpiresIn)
		if err != nil {
			return err
		}
		emailService := utils.NewEmailService(cfg.PostmarkToken, cfg.EmailSender)

		// Status-change fan-out
		hub := notify.NewHub(16)
		localHub := hub
		var sinks []notify.Sink
		if cfg.NotifyBackend == config.NotifyRedis {
			client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
			defer client.Close()
			relay := notify.NewRedisRelay(client, hub)
			sinks = append(sinks, relay)
			// every instance, this one included, receives through the relay
			localHub = nil
			go func() {
				if err := relay.Run(ctx); err != nil {
					logger.Logger.Error().Err(err).Msg("redis relay stopped")
				}
			}()
		}
		if len(cfg.KafkaBrokers) > 0 {
			kafkaSink := notify.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
			defer kafkaSink.Close()
			sinks = append(sinks, kafkaSink)
		}
		if emailService != nil {
			sinks = append(sinks, notify.NewEmailSink(emailService, st))
		}
		dispatcher := notify.NewDispatcher(localHub, 5*time.Second, sinks...)
		defer dispatcher.Wait()

		orders := services.NewOrderService(st, st, dispatcher, services.TotalPolicyFrom(cfg))
		if emailService != nil {
			orders.WithMailer(emailService)
		}

		guard := middleware.NewGuard(tokens, st)
		router := routes.NewRouter(routes.Handlers{
			Guard:   guard,
			User:    controllers.NewUserController(services.NewAccountService(st, tokens)),
			Product: controllers.NewProductController(services.NewCatalogService(st)),
			Cart:    controllers.NewCartController(services.NewCartService(st, st)),
			Order:   controllers.NewOrderController(orders),
			Message: controllers.NewMessageController(services.NewInboxService(st)),
			Health:  &controllers.HealthController{Store: st},
			Live:    notify.NewWSHandler(hub, guard, cfg.ClientURL),
		})

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Logger.Info().
				Str("port", cfg.Port).
				Str("store", cfg.StoreBackend).
				Str("notify", cfg.NotifyBackend).
				Msg("server is running")
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		case <-ctx.Done():
			logger.Logger.Info().Msg("shutting down")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
