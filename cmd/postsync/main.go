package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/hemantwpdev/post-sync-translate/internal/ai"
	"github.com/hemantwpdev/post-sync-translate/internal/config"
	"github.com/hemantwpdev/post-sync-translate/internal/filestore"
	"github.com/hemantwpdev/post-sync-translate/internal/handler"
	"github.com/hemantwpdev/post-sync-translate/internal/job"
	"github.com/hemantwpdev/post-sync-translate/internal/middleware"
	"github.com/hemantwpdev/post-sync-translate/internal/pkg/password"
	"github.com/hemantwpdev/post-sync-translate/internal/repo"
	"github.com/hemantwpdev/post-sync-translate/internal/schedule"
	"github.com/hemantwpdev/post-sync-translate/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "postsync",
		Short: "content sync and translation node",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the sync server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded",
				zap.String("config", configPath),
				zap.String("role", cfg.Role),
			)

			db, err := repo.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := repo.ApplyMigrations(db); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, db)
		},
	}
	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	hashCmd := &cobra.Command{
		Use:   "hash-password [plain]",
		Short: "produce a bcrypt hash for the admin config section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hashed, err := password.Hash(args[0])
			if err != nil {
				return err
			}
			fmt.Println(hashed)
			return nil
		},
	}
	rootCmd.AddCommand(hashCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, db *sql.DB) error {
	logutil.GetLogger(context.Background()).Info("starting server",
		zap.String("role", cfg.Role),
		zap.Int("port", cfg.Port),
		zap.String("db_path", cfg.DBPath),
		zap.String("file_store", cfg.FileStore.Type),
	)

	postRepo := repo.NewPostRepo(db)
	termRepo := repo.NewTermRepo(db)
	mappingRepo := repo.NewMappingRepo(db)
	targetRepo := repo.NewTargetRepo(db)
	auditRepo := repo.NewAuditRepo(db)
	assetRepo := repo.NewAssetRepo(db)

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	auditor := service.NewAuditor(auditRepo, cfg.SiteURL)

	var translateClient *ai.Client
	if cfg.TranslationConfigured() {
		oracle := cfg.Target.Oracle
		providerArgs := oracle.Data
		provider, err := ai.NewProvider(oracle.Provider, providerArgs)
		if err != nil {
			return fmt.Errorf("init oracle provider: %w", err)
		}
		translateClient = ai.NewClient(provider, ai.ClientConfig{
			Model:       oracle.Model,
			Temperature: oracle.Temperature,
			ChunkSize:   oracle.ChunkSize,
			Timeout:     time.Duration(oracle.TimeoutSec) * time.Second,
		})
	}

	translator := service.NewTranslator(cfg, postRepo, translateClient, auditor)
	var queue *service.TranslateQueue
	if translateClient != nil {
		queue = service.NewTranslateQueue(translator, cfg.Target.QueueSize)
	}

	dispatcher := service.NewDispatcher(cfg, postRepo, termRepo, assetRepo, targetRepo, store, auditor)
	receiver := service.NewReceiver(cfg, postRepo, termRepo, mappingRepo, assetRepo, store, auditor, queue)
	postService := service.NewPostService(cfg, postRepo, termRepo, dispatcher)
	authService := service.NewAuthService(cfg)

	deps := handler.RouterDeps{
		Sync:      handler.NewSyncHandler(receiver),
		Translate: handler.NewTranslateHandler(cfg, postRepo, queue),
		Auth:      handler.NewAuthHandler(authService),
		Posts:     handler.NewPostHandler(postService),
		Targets:   handler.NewTargetHandler(cfg, targetRepo),
		Terms:     handler.NewTermHandler(termRepo),
		Logs:      handler.NewLogHandler(auditRepo),
		Files:     handler.NewFileHandler(store),
		JWTSecret: []byte(cfg.JWTSecret),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if queue != nil {
		queue.Start(ctx)
	}

	scheduler := schedule.NewCronScheduler()
	if cfg.Target.AuditKeepDays > 0 {
		if err := scheduler.AddJob(job.NewAuditRetentionJob(auditRepo, cfg.Target.AuditKeepDays), "30 3 * * *"); err != nil {
			return fmt.Errorf("schedule audit retention: %w", err)
		}
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(context.Background()).Info("http server listening",
		zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	if queue != nil {
		queue.Wait()
	}
	return nil
}
