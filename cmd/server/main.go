package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	httpadapter "github.com/reimx/reimx-backend/internal/adapter/http"
	"github.com/reimx/reimx-backend/internal/adapter/repository/postgres"
	"github.com/reimx/reimx-backend/internal/auth"
	"github.com/reimx/reimx-backend/internal/config"
	"github.com/reimx/reimx-backend/internal/logger"
	"github.com/reimx/reimx-backend/internal/usecase/ledger"
	"github.com/reimx/reimx-backend/internal/usecase/reimbursement"
	"github.com/reimx/reimx-backend/internal/usecase/user"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Server.Debug); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.Migrate(context.Background(), db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	txManager := postgres.NewTxManager(db)
	userRepo := postgres.NewUserRepository(db)
	assetRepo := postgres.NewAssetRepository(db)
	recordRepo := postgres.NewRecordRepository(db)
	reimbursementRepo := postgres.NewReimbursementRepository(db)

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL())

	userService := user.NewService(userRepo, tokens)
	ledgerService := ledger.NewService(assetRepo, recordRepo, txManager)
	reimbursementService := reimbursement.NewService(reimbursementRepo, userRepo, txManager)

	router := httpadapter.NewRouter(httpadapter.Handlers{
		Users:          httpadapter.NewUserHandler(userService),
		Assets:         httpadapter.NewAssetHandler(ledgerService),
		Reimbursements: httpadapter.NewReimbursementHandler(reimbursementService, cfg.Payout.ChainID),
		Tokens:         tokens,
	})

	server := &nethttp.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}
