package main

import (
	"context"
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

	"github.com/worldlore/lorekeeper/internal/config"
	"github.com/worldlore/lorekeeper/internal/gateway"
	"github.com/worldlore/lorekeeper/internal/graphql"
	"github.com/worldlore/lorekeeper/internal/handler"
	"github.com/worldlore/lorekeeper/internal/lore"
	"github.com/worldlore/lorekeeper/internal/loreclient"
	"github.com/worldlore/lorekeeper/internal/markdown"
	"github.com/worldlore/lorekeeper/internal/middleware"
	"github.com/worldlore/lorekeeper/internal/service"
)

func main() {
	var configPath string
	var snapshotBase string

	rootCmd := &cobra.Command{
		Use:   "lorekeeper",
		Short: "lore aggregation and indexing service",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the lorekeeper server",
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
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
			return runServer(cfg)
		},
	}
	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "fetch the current lore and print an index summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(cmd.Context(), snapshotBase)
		},
	}
	snapshotCmd.Flags().StringVar(&snapshotBase, "base", "http://127.0.0.1:8080/api/v1", "gateway base url")

	rootCmd.AddCommand(runCmd, snapshotCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config) error {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	cache, err := gateway.NewCache(cfg.Cache.Size, time.Duration(cfg.Cache.TTLSeconds)*time.Second, nil)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}
	gw, err := gateway.New(cfg.DocumentHost, cfg.Pagination, cache, timeout)
	if err != nil {
		return fmt.Errorf("init gateway: %w", err)
	}
	forwarder, err := graphql.NewForwarder(cfg.GraphQLGroups, timeout, cfg.DocumentHost.Proxy)
	if err != nil {
		return fmt.Errorf("init graphql forwarder: %w", err)
	}
	loreService := service.NewLoreService(gw, cfg.Pagination.MaxLimit)

	deps := handler.RouterDeps{
		Gateway:       handler.NewGatewayHandler(gw),
		GraphQL:       handler.NewGraphQLHandler(forwarder),
		Lore:          handler.NewLoreHandler(loreService),
		Health:        handler.NewHealthHandler(gw.Mirrors(), forwarder.Groups()),
		GraphQLWindow: time.Second,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening",
		zap.Int("port", cfg.Port),
		zap.Strings("document_mirrors", gw.Mirrors()),
		zap.Strings("graphql_groups", forwarder.Groups()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}

func runSnapshot(ctx context.Context, base string) error {
	client := loreclient.New(base, 10*time.Second)

	document := client.CanonicalDocument(ctx)
	sections := markdown.Parse(document)
	idx := lore.Build(sections, nil)

	page := client.OpenProposals(ctx, 100, 0)

	fmt.Printf("canonical sections: %d\n", idx.Len())
	for _, section := range idx.Sections() {
		fmt.Printf("  %-12s %-40s tags=%v\n", section.SectionID, section.Title, section.Tags)
	}
	fmt.Printf("open proposals: %d\n", len(page.Items))
	for _, item := range page.Items {
		fmt.Printf("  #%-5d %s\n", item.Number, item.Title)
	}
	return nil
}
