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

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"ticket_desk/pkg/config"
	"ticket_desk/pkg/logging"
	"ticket_desk/pkg/stubserver"
)

func main() {
	fs := pflag.NewFlagSet("td-stub", pflag.ExitOnError)
	config.RegisterStubFlags(fs)
	help := fs.BoolP("help", "h", false, "Show help")
	_ = fs.Parse(os.Args[1:])

	if *help {
		fmt.Println("Usage: td-stub [options]")
		fmt.Println("\nAn in-memory ticket service for trying out td.")
		fs.PrintDefaults()
		os.Exit(0)
	}

	cfg, err := config.FromFlags(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	var logger *zap.Logger
	closeLog := func() error { return nil }
	if cfg.Log.File != "" {
		logger, closeLog, err = logging.New(cfg.Log)
	} else {
		logger, err = logging.NewConsole(cfg.Log.Level)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	gin.SetMode(gin.ReleaseMode)
	store := stubserver.NewStore(nil)
	if cfg.Stub.Seed {
		stubserver.Seed(store)
	}
	srv := &http.Server{
		Addr:              cfg.Stub.Addr,
		Handler:           stubserver.New(store, stubserver.WithLogger(logger)).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("http_listen", zap.String("addr", srv.Addr), zap.Int("tickets", store.Len()))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http_server_error", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("shutdown_start")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	logger.Info("shutdown_done")
}
