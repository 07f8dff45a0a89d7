package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	paymentApp "github.com/castpass/castpass/internal/application/payment"
	"github.com/castpass/castpass/internal/domain/entitlement"
	"github.com/castpass/castpass/internal/infrastructure/auth"
	"github.com/castpass/castpass/internal/infrastructure/blockchain"
	"github.com/castpass/castpass/internal/infrastructure/cache"
	"github.com/castpass/castpass/internal/infrastructure/config"
	"github.com/castpass/castpass/internal/infrastructure/ratelimit"
	"github.com/castpass/castpass/internal/infrastructure/repository"
	"github.com/castpass/castpass/internal/infrastructure/scheduler"
	"github.com/castpass/castpass/internal/interfaces/http/handlers"
	"github.com/castpass/castpass/internal/interfaces/http/middleware"
	"github.com/castpass/castpass/internal/shared/keylock"
	"github.com/castpass/castpass/internal/shared/logger"
)

const identityLockTTL = 30 * time.Second

// Container holds the infrastructure, services, handlers and middlewares of
// the process and wires them together. A nil db selects the in-memory
// entitlement store.
type Container struct {
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	// Infrastructure
	locker       keylock.Locker
	limiter      ratelimit.RateLimiter
	entitlements entitlement.Repository
	ledger       *blockchain.NetworkRouter

	// Services
	verificationService *paymentApp.VerificationService
	compactionScheduler *scheduler.CompactionScheduler

	// Handlers
	premiumHandler *handlers.PremiumHandler
	healthHandler  *handlers.HealthHandler

	// Middlewares; authMiddleware is nil when no JWT secret is configured
	authMiddleware    *middleware.AuthMiddleware
	verifyRateLimiter *middleware.RateLimiter
}

// NewContainer creates a Container with all dependencies wired together.
func NewContainer(db *gorm.DB, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
	}

	// Section 1: Infrastructure - Redis, locks, rate limiter, store
	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}

	// Section 2: Payment - ledger client and verification service
	if err := c.initPayment(); err != nil {
		c.Close()
		return nil, err
	}

	// Section 3: Handlers and middlewares
	c.initHandlers()

	return c, nil
}

func (c *Container) initInfrastructure() error {
	cfg := c.cfg
	log := c.log

	if cfg.Redis.Enabled {
		client, err := initRedis(cfg, log)
		if err != nil {
			return err
		}
		c.redis = client
		c.locker = cache.NewRedisIdentityLocker(client, identityLockTTL, log.Named("lock"))
		c.limiter = ratelimit.NewRedisRateLimiter(client)
	} else {
		c.locker = keylock.NewMemoryLocker()
		c.limiter = ratelimit.NewMemoryRateLimiter()
	}

	if c.db == nil {
		log.Warnw("no database configured, entitlements are kept in memory and lost on restart")
		c.entitlements = repository.NewMemoryEntitlementRepository()
	} else {
		c.entitlements = repository.NewEntitlementRepository(c.db, c.locker, log.Named("entitlements"))
	}

	return nil
}

// initRedis creates and tests the Redis client connection.
func initRedis(cfg *config.Config, log logger.Interface) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Infow("Redis connection established successfully", "addr", cfg.Redis.GetAddr())

	return client, nil
}

func (c *Container) initPayment() error {
	paymentCfg, err := c.cfg.ToPaymentConfig()
	if err != nil {
		return err
	}
	for _, n := range paymentCfg.Networks() {
		if unpinned := paymentCfg.UnpinnedTokens(n.Network); len(unpinned) > 0 {
			c.log.Warnw("accepted tokens without a pinned contract are not accepted on this network",
				"network", n.Network,
				"tokens", unpinned,
			)
		}
	}

	c.ledger = blockchain.NewEtherscanRouter(paymentCfg, blockchain.EtherscanOptions{
		Timeout:  c.cfg.Ledger.Timeout,
		PageSize: c.cfg.Ledger.PageSize,
	}, c.cfg.Ledger.MinInterval, c.log.Named("ledger"))

	c.verificationService = paymentApp.NewVerificationService(paymentCfg, c.ledger, c.entitlements, nil, c.log)

	if compaction := c.cfg.Payment.Compaction; compaction.Interval > 0 {
		c.compactionScheduler = scheduler.NewCompactionScheduler(c.verificationService,
			compaction.Interval, compaction.Retention, c.log.Named("compaction"))
	}
	return nil
}

func (c *Container) initHandlers() {
	log := c.log

	c.premiumHandler = handlers.NewPremiumHandler(c.verificationService, log.Named("premium"))
	c.healthHandler = handlers.NewHealthHandler(c.pingDatabase, log)

	if secret := c.cfg.Auth.JWT.Secret; secret != "" {
		jwtSvc := auth.NewJWTService(secret, c.cfg.Auth.JWT.Issuer)
		c.authMiddleware = middleware.NewAuthMiddleware(jwtSvc, log)
	}

	c.verifyRateLimiter = middleware.NewRateLimiter(c.limiter, "verify",
		ratelimit.RateLimitConfig{RequestsPerMinute: c.cfg.RateLimit.VerifyPerMinute}, log)
}

func (c *Container) pingDatabase(ctx context.Context) error {
	if c.db == nil {
		return nil
	}
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// VerificationService exposes the wired service to non-HTTP entry points.
func (c *Container) VerificationService() *paymentApp.VerificationService {
	return c.verificationService
}

// StartCompactionScheduler starts periodic compaction when it is configured.
func (c *Container) StartCompactionScheduler(ctx context.Context) {
	if c.compactionScheduler != nil {
		c.compactionScheduler.Start(ctx)
	}
}

// Close stops background work and releases connections owned by the
// container. The database is owned by the caller.
func (c *Container) Close() {
	if c.compactionScheduler != nil {
		c.compactionScheduler.Stop()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Warnw("failed to close Redis client", "error", err)
		}
		c.redis = nil
	}
}
