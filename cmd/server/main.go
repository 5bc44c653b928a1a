// Command server starts the codeit HTTP API: editor sessions that run code
// on a remote execution service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/gsarma/codeit/internal/api"
	"github.com/gsarma/codeit/internal/code"
	"github.com/gsarma/codeit/internal/config"
	"github.com/gsarma/codeit/internal/crypto"
	"github.com/gsarma/codeit/internal/language"
	"github.com/gsarma/codeit/internal/metrics"
	"github.com/gsarma/codeit/internal/profile"
	"github.com/gsarma/codeit/internal/session"
	"github.com/gsarma/codeit/internal/store"
	"github.com/gsarma/codeit/internal/worker"
)

var logger *zap.Logger

func main() {
	conf := loadConf()
	initLogger(conf)
	defer logger.Sync()
	if ce := logger.Check(zap.InfoLevel, "Config loaded"); ce != nil {
		ce.Write(zap.String("backend", conf.Backend), zap.String("store", conf.Store))
	}

	backend, err := openStore(conf)
	if err != nil {
		logger.Fatal("open store failed", zap.Error(err))
	}

	provider, err := code.NewProvider(conf.Backend, conf.RunURL, conf.RunToken, conf.RunTimeout)
	if err != nil {
		logger.Fatal("init provider failed", zap.Error(err))
	}

	sealer, err := newSealer(conf)
	if err != nil {
		logger.Fatal("init cookie sealer failed", zap.Error(err))
	}

	profiles := profile.NewService(backend, sealer, logger)
	sessions := session.NewManager(provider, language.DefaultVersions(), profiles, logger)
	h := api.NewHandler(sessions, profiles, logger)

	srv := &http.Server{
		Addr:    conf.HTTPAddr,
		Handler: initHTTPMux(conf, h),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := worker.New(sessions, conf.SessionTTL, conf.ReaperInterval, logger)
	go w.Start(ctx)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting http server", zap.String("addr", conf.HTTPAddr))
		serveErr <- srv.ListenAndServe()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		logger.Info("Shutting Down...", zap.Stringer("signal", s))
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Http server stopped", zap.Error(err))
		}
	}
	signal.Reset(syscall.SIGINT, syscall.SIGTERM)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer shutdownCancel()

	var eg errgroup.Group
	eg.Go(func() error {
		logger.Info("Http server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	eg.Go(func() error {
		n := sessions.EvictIdle(shutdownCtx, time.Now().Add(time.Hour))
		logger.Info("Sessions closed", zap.Int("count", n))
		return nil
	})
	err = eg.Wait()
	if cerr := backend.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	logger.Info("Shutdown Finished", zap.Error(err))
}

func loadConf() *config.Config {
	var conf config.Config
	if err := conf.Load(); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		log.Fatalln("load config failed ", err)
	}
	return &conf
}

func initLogger(conf *config.Config) {
	if conf.Silent {
		logger = zap.NewNop()
		return
	}

	var err error
	if conf.Release {
		logger, err = zap.NewProduction()
	} else {
		config := zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if !conf.EnableDebug {
			config.Level.SetLevel(zap.InfoLevel)
		}
		logger, err = config.Build()
	}
	if err != nil {
		log.Fatalln("init logger failed ", err)
	}
}

func openStore(conf *config.Config) (store.Backend, error) {
	switch conf.Store {
	case "memory":
		logger.Warn("Using in-memory store, saved code is lost on restart")
		return store.NewMemory(), nil
	case "bolt":
		logger.Info("Opening bolt store", zap.String("path", conf.BoltPath))
		return store.OpenBolt(conf.BoltPath)
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return store.OpenPostgres(ctx, conf.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store %q", conf.Store)
	}
}

func newSealer(conf *config.Config) (*crypto.Sealer, error) {
	if conf.CookieKey == "" {
		logger.Warn("No cookie key configured, client identities reset on restart")
		return crypto.NewRandomSealer()
	}
	return crypto.NewSealer(conf.CookieKey)
}

func initHTTPMux(conf *config.Config, h *api.Handler) http.Handler {
	if conf.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(ginzap.Ginzap(logger, "", false))
	r.Use(ginzap.RecoveryWithZap(logger, true))

	if conf.EnableMetrics {
		metrics.InitGin(r)
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api.RegisterRoutes(r, h)
	return r
}
