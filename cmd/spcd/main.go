package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/machshop/spc/publish"
	"github.com/machshop/spc/server"
	"github.com/machshop/spc/store"
)

func main() {
	cfg, err := parseCommandLine()
	if err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Printf("Could not parse configuration: %s\n\nUse spcd --help for options\n", err)
		}
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)
	server.SuppressErrorReporting = cfg.NoErrorReports

	if err := run(cfg, log); err != nil {
		log.Error("spcd exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg settings, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	st, err := store.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	cancel()
	if err != nil {
		return fmt.Errorf("could not connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	defer st.Close()
	log.Info("connected to redis", slog.String("addr", cfg.RedisAddr))

	var opts []server.Option
	if len(cfg.Brokers) > 0 {
		pub := publish.NewKafka(cfg.Brokers, cfg.Topic, log)
		defer pub.Close()
		opts = append(opts, server.WithPublisher(pub))
		log.Info("publishing violations", slog.String("topic", cfg.Topic))
	}

	srv, err := server.New(st, log, opts...)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("serving SPC API", slog.String("addr", cfg.Listen))
		errc <- httpServer.ListenAndServe()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errc:
		return err
	case s := <-sig:
		log.Info("shutting down", slog.String("signal", s.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown did not complete cleanly: %w", err)
	}
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
