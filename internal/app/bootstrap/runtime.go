package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	blobadapter "github.com/erhardtcoza/vinet-onboarding-sub000/internal/adapters/blob"
	cacheadapter "github.com/erhardtcoza/vinet-onboarding-sub000/internal/adapters/cache"
	challengeadapter "github.com/erhardtcoza/vinet-onboarding-sub000/internal/adapters/challenge"
	crmadapter "github.com/erhardtcoza/vinet-onboarding-sub000/internal/adapters/crm"
	eventadapter "github.com/erhardtcoza/vinet-onboarding-sub000/internal/adapters/events"
	httpadapter "github.com/erhardtcoza/vinet-onboarding-sub000/internal/adapters/http"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/adapters/memory"
	messagingadapter "github.com/erhardtcoza/vinet-onboarding-sub000/internal/adapters/messaging"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/adapters/postgres"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/adapters/security"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/application"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/domain"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/ports"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/render"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("bootstrapping onboarding service", "http_port", cfg.HTTPPort)

	redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	// The audit trail is optional infrastructure: runs without a
	// database keep working with an in-process trail that is lost on
	// restart.
	var audit ports.AuditRepository = memory.NewAuditRepository()
	cleanup := func(context.Context) { _ = redisClient.Close() }
	if cfg.DatabaseURL != "" {
		db, dbErr := postgres.Connect(cfg.DatabaseURL)
		if dbErr != nil {
			_ = redisClient.Close()
			return nil, fmt.Errorf("connect postgres: %w", dbErr)
		}
		audit = postgres.NewAuditRepository(db)
		sqlDB, sqlErr := db.DB()
		if sqlErr == nil {
			prev := cleanup
			cleanup = func(ctx context.Context) {
				_ = sqlDB.Close()
				prev(ctx)
			}
		}
	} else {
		logger.Warn("no database configured, audit trail kept in memory")
	}

	var publisher ports.EventPublisher = eventadapter.NewNoopPublisher()
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic != "" {
		kafkaPublisher, kafkaErr := eventadapter.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if kafkaErr != nil {
			_ = redisClient.Close()
			return nil, fmt.Errorf("init kafka publisher: %w", kafkaErr)
		}
		publisher = kafkaPublisher
		prev := cleanup
		cleanup = func(ctx context.Context) {
			_ = kafkaPublisher.Close()
			prev(ctx)
		}
	} else {
		logger.Warn("no kafka brokers configured, lifecycle events disabled")
	}

	blobs, err := blobadapter.NewFileStore(cfg.BlobDir, cfg.BlobPublicBase)
	if err != nil {
		cleanup(ctx)
		return nil, fmt.Errorf("init blob store: %w", err)
	}

	renderCache := cacheadapter.NewRedisRenderCache(redisClient)
	terms := map[string]*render.TermsSource{
		domain.AgreementMSA:   render.NewTermsSource(cfg.MSATermsURL, cfg.TermsCacheTTL, 10*time.Second),
		domain.AgreementDebit: render.NewTermsSource(cfg.DebitTermsURL, cfg.TermsCacheTTL, 10*time.Second),
	}
	renderer := render.NewRenderer(render.Config{
		BrandTitle:   cfg.BrandTitle,
		BrandContact: cfg.BrandContact,
		PDFCacheTTL:  cfg.PDFCacheTTL,
		WrapCacheTTL: cfg.WrapCacheTTL,
	}, terms, blobs, renderCache, logger)

	tokens := security.NewTokenIssuer(cfg.StaffTokenSecret, cfg.StaffTokenTTL)

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			CustomerOTPTTL:       cfg.CustomerOTPTTL,
			StaffOTPTTL:          cfg.StaffOTPTTL,
			OTPTemplate:          cfg.OTPTemplate,
			ReusePlaceholderName: cfg.ReusePlaceholderName,
		},
		Sessions:    cacheadapter.NewRedisSessionStore(redisClient),
		Passcodes:   cacheadapter.NewRedisPasscodeStore(redisClient),
		Blobs:       blobs,
		CRM:         crmadapter.NewClient(cfg.CRMBaseURL, cfg.CRMUsername, cfg.CRMPassword, 15*time.Second),
		Messages:    messagingadapter.NewWhatsAppSender(cfg.WhatsAppEndpoint, cfg.WhatsAppToken, cfg.OTPLanguage, 10*time.Second),
		Challenge:   challengeadapter.NewVerifier(cfg.ChallengeEndpoint, cfg.ChallengeSecret, 10*time.Second),
		Tokens:      tokens,
		Events:      publisher,
		Audit:       audit,
		Renderer:    renderer,
		RenderCache: renderCache,
		Logger:      logger,
	})

	adminNets, err := parseCIDRs(cfg.AdminCIDRs)
	if err != nil {
		cleanup(ctx)
		return nil, err
	}

	router := httpadapter.NewRouter(svc, adminNets, tokens)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		cleanupFn:  cleanup,
	}, nil
}

func parseCIDRs(raw []string) ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(raw))
	for _, cidr := range raw {
		_, block, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("parse admin cidr %q: %w", cidr, err)
		}
		nets = append(nets, block)
	}
	return nets, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errCh:
		r.logger.Error("server failure", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.cleanupFn(shutdownCtx)
	return nil
}
