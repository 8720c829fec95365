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

	"qna/internal/auth"
	"qna/internal/config"
	"qna/internal/handler"
	"qna/internal/logger"
	"qna/internal/session"
	"qna/internal/templates"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "qna: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, closer := logger.New(cfg.LogLevel, cfg.LogFile)
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Warn("close store", "error", err)
		}
	}()

	passwords, err := auth.NewPasswordHasher(cfg.PasswordHashing)
	if err != nil {
		return err
	}

	sessionStore, err := session.NewStore(session.OptionsFromConfig(cfg), log)
	if err != nil {
		return err
	}

	pages, err := templates.Parse()
	if err != nil {
		return err
	}

	router := handler.NewRouter(handler.Deps{
		Auth:     auth.NewService(store.Users(), passwords),
		Resolver: auth.NewResolver(store.Users()),
		Sessions: session.NewManager(sessionStore),
		Store:    store,
		Pages:    pages,
		Log:      log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", "addr", srv.Addr, "store", cfg.StoreDriver, "sessions", cfg.SessionStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
