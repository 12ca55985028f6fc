package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"

	"blog/app/mail"
	"blog/app/routes"
)

type Config struct {
	HTTPAddr string `toml:"httpAddr"`
	DBDir    string `toml:"dbDir"`
	ViewsDir string `toml:"viewsDir"`
	LogLevel string `toml:"logLevel"`

	BaseURL          string `toml:"baseURL"`
	ContactRecipient string `toml:"contactRecipient"`
	FromAddress      string `toml:"fromAddress"`
	SMTPAddr         string `toml:"smtpAddr"`

	SessionTTLHours int `toml:"sessionTTLHours"`
}

func main() {
	var (
		configPath string
		httpAddr   string
		dbDir      string
		logLevel   string
	)

	flag.StringVar(&configPath, "config", "config.toml", "Path to TOML config file")
	flag.StringVar(&httpAddr, "http", "", "HTTP server address in the form 'host:port'.")
	flag.StringVar(&dbDir, "db", "", "Path to the Badger data directory.")
	flag.StringVar(&logLevel, "log", "", "Log level: debug, info, warn, error.")
	flag.Parse()

	var cfg Config
	if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
		log.Fatalf("[server] failed to load config file %s: %v", configPath, err)
	}

	// Override config with flags if set
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.ViewsDir == "" {
		cfg.ViewsDir = "app/views"
	}
	if cfg.SessionTTLHours == 0 {
		cfg.SessionTTLHours = 24 * 14
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	db, err := badger.Open(badger.DefaultOptions(cfg.DBDir).WithLogger(nil))
	if err != nil {
		log.Fatalf("[server] failed to open Badger DB at %s: %v", cfg.DBDir, err)
	}
	defer db.Close()

	router, err := routes.Setup(routes.Deps{
		DB:               db,
		Sender:           mail.NewSMTPSender(cfg.SMTPAddr),
		ViewsDir:         cfg.ViewsDir,
		ContactRecipient: cfg.ContactRecipient,
		FromAddress:      cfg.FromAddress,
		BaseURL:          cfg.BaseURL,
		SessionTTL:       time.Duration(cfg.SessionTTLHours) * time.Hour,
	})
	if err != nil {
		log.Fatalf("[server] failed to setup routes: %v", err)
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Infof("[server] starting on %v", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("[server] failed to start: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	shutdownCtx, shutdownRelease := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownRelease()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("[server] HTTP server shutdown error: %v", err)
	} else {
		log.Info("[server] HTTP server shut down gracefully")
	}
}
