package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"garage_gateway/internal/eventlog"
	"garage_gateway/internal/handlers"
	"garage_gateway/internal/logger"
	"garage_gateway/internal/mqtt"
	"garage_gateway/internal/repository"
	"garage_gateway/internal/repository/db"
	"garage_gateway/internal/server"
	"garage_gateway/internal/service"
	"garage_gateway/internal/state"
	"garage_gateway/internal/telemetry"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// load config first so the logger comes up at the configured level
	if err := loadConfig(); err != nil {
		logger.Get(logger.DefaultLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(viper.GetString("log.level"))

	// open DB
	database, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := database.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	repos := repository.NewRepository(database)
	if err := seedAdmin(repos, log); err != nil {
		log.Fatalw("failed to seed admin account", "err", err)
	}

	// shared in-memory state
	store := state.NewStore()
	events := eventlog.NewLog()

	// bus + telemetry intake
	bus, closeBus := connectBus(store, log.Named("mqtt"))
	defer closeBus()
	if bus != nil {
		consumer := telemetry.NewConsumer(store, events, log.Named("telemetry"))
		if err := consumer.Attach(bus); err != nil {
			log.Fatalw("failed to subscribe to telemetry topics", "err", err)
		}
		store.SetConnected(bus.IsConnected())
	}

	services := service.NewService(service.Deps{
		Repos:  repos,
		Store:  store,
		Events: events,
		Bus:    pickPublisher(bus, log),
		Config: serviceConfig(),
	})
	apiHandler := handlers.NewHandler(services, log)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, apiHandler, log)

	// graceful shutdown
	waitForShutdown(srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	viper.SetDefault("auth.token_ttl", "1h")
	viper.SetDefault("auth.session_ttl", "30m")
	viper.SetDefault("device_id", 123)
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "gateway.db")
		dbPath = "gateway.db"
	}
	return db.InitDB(dbPath)
}

// seedAdmin creates the bootstrap admin account on first run so a fresh
// deployment is manageable. Existing accounts are never touched.
func seedAdmin(repos *repository.Repository, log *logger.Logger) error {
	username := viper.GetString("admin.username")
	password := viper.GetString("admin.password")
	if username == "" || password == "" {
		return nil
	}

	ctx := context.Background()
	existing, err := repos.Users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if _, err := repos.Users.Create(ctx, username, string(hash), "admin", ""); err != nil {
		return err
	}
	log.Infow("seeded bootstrap admin account", "username", username)
	return nil
}

// connectBus dials the broker when mqtt is enabled. Returns a nil client
// (and a no-op closer) when disabled or unreachable: the HTTP surface
// stays up and reports mqtt_connected=false.
func connectBus(store *state.Store, log *logger.Logger) (*mqtt.Client, func()) {
	if !viper.GetBool("mqtt.enabled") {
		log.Infow("mqtt disabled; running without a bus")
		return nil, func() {}
	}

	cfg := mqtt.Config{
		Broker:   viper.GetString("mqtt.broker"),
		Port:     viper.GetInt("mqtt.port"),
		ClientID: viper.GetString("mqtt.client_id"),
		Username: viper.GetString("mqtt.username"),
		Password: viper.GetString("mqtt.password"),
		OnConnectionChange: func(connected bool) {
			store.SetConnected(connected)
		},
	}
	bus, err := mqtt.Connect(cfg, log)
	if err != nil {
		log.Errorw("mqtt connect failed; continuing without a bus", "err", err)
		return nil, func() {}
	}
	return bus, bus.Close
}

// pickPublisher hands the gateway the real bus, or a stand-in that fails
// every publish when no broker is available.
func pickPublisher(bus *mqtt.Client, log *logger.Logger) service.Publisher {
	if bus != nil {
		return bus
	}
	return disconnectedBus{log: log}
}

type disconnectedBus struct {
	log *logger.Logger
}

func (d disconnectedBus) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if d.log != nil {
		d.log.Warnw("publish dropped: no bus", "topic", topic)
	}
	return mqtt.ErrNotConnected
}

func serviceConfig() service.Config {
	return service.Config{
		DeviceID:   viper.GetInt("device_id"),
		SigningKey: viper.GetString("auth.signing_key"),
		TokenTTL:   viper.GetDuration("auth.token_ttl"),
		APIKey:     viper.GetString("auth.api_key"),
		SessionTTL: viper.GetDuration("auth.session_ttl"),
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		cfg := server.Config{
			Port:              viper.GetString("port"),
			ReadHeaderTimeout: viper.GetDuration("http.read_header_timeout"),
			WriteTimeout:      viper.GetDuration("http.write_timeout"),
			IdleTimeout:       viper.GetDuration("http.idle_timeout"),
		}
		if err := srv.Run(cfg, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
