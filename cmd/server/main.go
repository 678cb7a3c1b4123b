package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adminFeature "agegate/internal/admin"
	attestationHandler "agegate/internal/attestation/handler"
	attestationMetrics "agegate/internal/attestation/metrics"
	attestationService "agegate/internal/attestation/service"
	attestationStore "agegate/internal/attestation/store"
	"agegate/internal/audit"
	"agegate/internal/clock"
	commitmentStore "agegate/internal/commitment/store"
	"agegate/internal/device"
	"agegate/internal/eligibility"
	eligibilityHandler "agegate/internal/eligibility/handler"
	eligibilityMetrics "agegate/internal/eligibility/metrics"
	"agegate/internal/ledger"
	"agegate/internal/platform/config"
	"agegate/internal/platform/database"
	"agegate/internal/platform/health"
	"agegate/internal/platform/httpserver"
	"agegate/internal/platform/kafka/producer"
	"agegate/internal/platform/logger"
	"agegate/internal/platform/redis"
	"agegate/internal/platform/tracer"
	rangeproofStore "agegate/internal/rangeproof/store"
	"agegate/internal/token"
	httptransport "agegate/internal/transport/http"
	verificationHandler "agegate/internal/verification/handler"
	verificationMetrics "agegate/internal/verification/metrics"
	engine "agegate/internal/verification/service"
	verificationStore "agegate/internal/verification/store"
	verifierStore "agegate/internal/verifier/store"
	"agegate/pkg/platform/middleware/metadata"
)

const (
	tokenIssuer   = "agegate"
	tokenAudience = "agegate-client"
	tokenTTL      = time.Hour
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing agegate",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"tick_interval", cfg.TickInterval.String(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The logical clock advances one tick per interval for the lifetime of
	// the process. Everything downstream reads ticks, never wall time.
	clk := clock.NewInterval(1, cfg.TickInterval)
	clk.Start(ctx)
	defer clk.Stop()

	healthHandler := health.New(cfg.Environment)
	healthHandler.RegisterTickSource(func() uint64 { return uint64(clk.Now()) })

	// Storage: postgres-backed when configured, in-memory otherwise.
	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.PostgresURL
	pool, err := database.New(dbCfg)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}

	var (
		commitments  commitmentStore.Store
		records      verificationStore.Store
		proofs       rangeproofStore.Store
		verifiers    verifierStore.Store
		attestations attestationStore.Store
	)
	if pool != nil {
		defer pool.Close() //nolint:errcheck // shutdown path
		db := pool.DB()
		if cfg.AutoMigrate {
			migrateCtx, migrateCancel := context.WithTimeout(ctx, 30*time.Second)
			if err := database.ApplyMigrations(migrateCtx, db); err != nil {
				migrateCancel()
				log.Error("migrations failed", "error", err)
				os.Exit(1)
			}
			migrateCancel()
			log.Info("schema migrations applied")
		}
		commitments = commitmentStore.NewPostgres(db)
		records = verificationStore.NewPostgres(db)
		proofs = rangeproofStore.NewPostgres(db)
		verifiers = verifierStore.NewPostgres(db)
		attestations = attestationStore.NewPostgres(db)
		healthHandler.RegisterCheck("postgres", func() error {
			checkCtx, checkCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer checkCancel()
			return pool.Health(checkCtx)
		})
		log.Info("using postgres-backed stores")
	} else {
		commitments = commitmentStore.New()
		records = verificationStore.New()
		proofs = rangeproofStore.New()
		verifiers = verifierStore.New()
		attestations = attestationStore.New()
		log.Warn("postgres not configured, protocol state is in-memory and lost on restart")
	}

	// Redis is optional; when present, attestations move to the TTL'd store
	// so expired entries evict themselves.
	redisClient, err := redis.New(cfg.RedisAddr)
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck // shutdown path
		attestations = attestationStore.NewRedis(redisClient.Client, clk, cfg.TickInterval)
		healthHandler.RegisterCheck("redis", func() error {
			checkCtx, checkCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer checkCancel()
			return redisClient.Health(checkCtx)
		})
		log.Info("using redis-backed attestation store")
	}

	// The audit trail ships to Kafka when brokers are configured; otherwise
	// events stay in process memory (development only).
	var auditStore audit.Store = audit.NewInMemoryStore()
	if len(cfg.KafkaBrokers) > 0 {
		prod, err := producer.New(producer.Config{
			Brokers:         cfg.KafkaBrokers,
			Acks:            "all",
			Retries:         5,
			DeliveryTimeout: 10 * time.Second,
		}, log)
		if err != nil {
			log.Error("kafka init failed", "error", err)
			os.Exit(1)
		}
		defer prod.Close() //nolint:errcheck // shutdown path
		auditStore = audit.NewKafkaStore(prod, cfg.AuditTopic)
		healthHandler.RegisterCheck("kafka", func() error {
			checkCtx, checkCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer checkCancel()
			if !prod.Healthy(checkCtx) {
				return errors.New("kafka unreachable")
			}
			return nil
		})
		log.Info("audit events publishing to kafka", "topic", cfg.AuditTopic)
	} else {
		log.Warn("kafka not configured, audit events stay in memory")
	}
	auditPublisher := audit.NewPublisher(auditStore,
		audit.WithAsyncBuffer(1024),
		audit.WithPublisherLogger(log),
	)
	defer auditPublisher.Close()

	// Protocol accounts are process-local micro-credit balances.
	ledgr := ledger.NewInMemoryLedger()
	devices := device.NewService(true)
	trc := tracer.NewOTel()

	engineSvc := engine.NewService(commitments, records, verifiers, proofs, ledgr, clk,
		engine.Config{
			Owner:               cfg.Owner,
			OperatorAccount:     cfg.OperatorAccount,
			EscrowAccount:       cfg.EscrowAccount,
			VerificationFee:     cfg.VerificationFee,
			ProofBond:           cfg.ProofBond,
			ProofValidityPeriod: cfg.ProofValidityPeriod,
		},
		engine.WithLogger(log),
		engine.WithAuditPublisher(auditPublisher),
		engine.WithMetrics(verificationMetrics.New()),
		engine.WithTracer(trc),
		engine.WithDeviceService(devices),
	)

	attestSvc := attestationService.NewService(attestations, verifiers, clk,
		attestationService.WithLogger(log),
		attestationService.WithAuditPublisher(auditPublisher),
		attestationService.WithMetrics(attestationMetrics.New()),
		attestationService.WithTracer(trc),
	)

	eligSvc := eligibility.New(engineSvc, attestSvc, clk,
		eligibility.WithLogger(log),
		eligibility.WithAuditPublisher(auditPublisher),
		eligibility.WithMetrics(eligibilityMetrics.New()),
		eligibility.WithTracer(trc),
	)

	adminSvc := adminFeature.NewService(verifiers, engineSvc, cfg.Owner, clk,
		adminFeature.WithLogger(log),
		adminFeature.WithAuditPublisher(auditPublisher),
	)

	tokenSvc := token.NewService(cfg.JWTSigningKey, tokenIssuer, tokenAudience, tokenTTL)

	trustedProxies, err := metadata.ParseTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		log.Error("invalid trusted proxy configuration", "error", err)
		os.Exit(1)
	}

	router := httptransport.NewRouter(httptransport.Config{
		Logger:         log,
		Clock:          clk,
		TokenValidator: token.NewServiceAdapter(tokenSvc),
		AdminKeyHash:   cfg.AdminKeyHash,
		TrustedProxies: trustedProxies,
		FingerprintFn:  devices.ComputeFingerprint,
		Verification:   verificationHandler.New(log, engineSvc),
		Attestation:    attestationHandler.New(log, attestSvc),
		Eligibility:    eligibilityHandler.New(log, eligSvc),
		Admin:          adminFeature.New(adminSvc, log),
		Health:         healthHandler,
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
