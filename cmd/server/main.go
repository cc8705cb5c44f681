package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	_ "github.com/planwise/business-planner/docs"
	"github.com/planwise/business-planner/internal/api"
	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/ports"
	"github.com/planwise/business-planner/internal/core/service"
	"github.com/planwise/business-planner/internal/core/session"
	"github.com/planwise/business-planner/internal/core/wizard"
	"github.com/planwise/business-planner/internal/infrastructure/db/memory"
	"github.com/planwise/business-planner/internal/infrastructure/db/mongo"
	"github.com/planwise/business-planner/internal/infrastructure/db/redis"
	"github.com/planwise/business-planner/internal/infrastructure/gateway"
	"github.com/planwise/business-planner/internal/infrastructure/generation"
	"github.com/planwise/business-planner/internal/infrastructure/identity"
	"github.com/planwise/business-planner/internal/infrastructure/payment"
	"github.com/planwise/business-planner/internal/infrastructure/queue"
	"github.com/planwise/business-planner/internal/infrastructure/storage"
	"github.com/planwise/business-planner/internal/pkg/config"
	"github.com/planwise/business-planner/pkg/logger"
)

// @title                       Business Planner API
// @version                     1.0
// @description                 Session, planner wizard, saved plans, checkout and public content for the business plan generator.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization

const sessionSweepInterval = time.Minute

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "business-planner",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Remote backend (optional) ---
	var db *mongodriver.Database
	if cfg.Mongo.URI != "" {
		client, database, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  "business-planner",
		})
		if err != nil {
			// Remote loss degrades to local storage instead of failing startup.
			log.Warn().Err(err).Msg("remote backend unavailable, using local storage only")
		} else {
			db = database
			defer func() { _ = client.Disconnect(context.Background()) }()
		}
	}

	// --- Local key-value store ---
	var (
		kv  ports.KeyValueStore
		rdb *goredis.Client
	)
	if cfg.Redis.Addr != "" {
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer func() { _ = client.Close() }()
		rdb = client
		kv = redis.NewKVStore(client, cfg.Redis.Prefix)
	} else {
		log.Info().Msg("redis not configured, local store is in-memory")
		kv = memory.NewKVStore()
	}

	// --- Persistence gateway ---
	plans := newRepository[domain.SavedPlan](db, mongo.CollectionPlans, "user_id", kv, gateway.OwnerRequired)
	drafts := newRepository[domain.Draft](db, mongo.CollectionDrafts, "_id", kv, gateway.OwnerRequired)
	transactions := newRepository[domain.Transaction](db, mongo.CollectionTransactions, "user_id", kv, gateway.OwnerRequired)
	shares := newRepository[domain.SharedLink](db, mongo.CollectionShares, "", kv, gateway.OwnerOptional)
	posts := newRepository[domain.BlogPost](db, mongo.CollectionBlogPosts, "", kv, gateway.OwnerOptional)
	testimonials := newRepository[domain.Testimonial](db, mongo.CollectionTestimonials, "", kv, gateway.OwnerOptional)

	var remoteUsers ports.UserRepository
	if db != nil {
		users := mongo.NewUserRepository(db)
		if err := users.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("user indexes not ensured")
		}
		remoteUsers = users
	}

	// --- Collaborators ---
	var gen ports.GenerationService = generation.Unavailable{}
	if cfg.Gemini.APIKey != "" {
		g, err := generation.NewGemini(ctx, generation.Config{
			APIKey:        cfg.Gemini.APIKey,
			BaseModel:     cfg.Gemini.BaseModel,
			AdvancedModel: cfg.Gemini.AdvancedModel,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create gemini client")
		}
		defer func() { _ = g.Close() }()
		gen = g
	} else {
		log.Warn().Msg("gemini not configured, generation is disabled")
	}

	var payments ports.PaymentGateway
	if cfg.Stripe.SecretKey != "" {
		payments = payment.NewStripeGateway(payment.Config{
			SecretKey: cfg.Stripe.SecretKey,
			Prices: map[domain.PlanTier]string{
				domain.PlanPro:        cfg.Stripe.ProPriceID,
				domain.PlanEnterprise: cfg.Stripe.EnterprisePrice,
			},
			BaseURL: cfg.BaseURL,
		})
	}

	blobs, err := storage.New(storage.Config{
		LocalPath:    cfg.Storage.LocalPath,
		S3Bucket:     cfg.Storage.S3Bucket,
		S3Region:     cfg.Storage.S3Region,
		S3Endpoint:   cfg.Storage.S3Endpoint,
		AWSAccessKey: cfg.Storage.AccessKey,
		AWSSecretKey: cfg.Storage.SecretKey,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create export storage")
	}

	// --- Services ---
	authService := service.NewAuthService(remoteUsers, identity.NewLocalUsers(kv), logger.Component("auth"))
	planService := service.NewPlanService(plans, logger.Component("plans"))
	shareService := service.NewShareService(shares)
	exportService := service.NewExportService(planService, blobs)
	checkoutService := service.NewCheckoutService(payments, transactions, authService, logger.Component("checkout"))
	testimonialService := service.NewTestimonialService(testimonials, gen, logger.Component("testimonials"))
	suggestionService := service.NewSuggestionService(gen)

	loc, err := time.LoadLocation(cfg.Blog.Timezone)
	if err != nil {
		log.Warn().Err(err).Str("timezone", cfg.Blog.Timezone).Msg("unknown blog timezone, using local time")
		loc = time.Local
	}
	blogService := service.NewBlogService(posts, gen, service.NewBlogRateLimiter(kv, loc), logger.Component("blog"))

	// --- Workers ---
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	autosaver := queue.NewAutosaver(drafts, cfg.Planner.AutosaveDelay, cfg.Planner.AutosaveWorkers, logger.Component("autosave"))
	autosaver.Start(workerCtx)

	registry := session.NewRegistry(session.Deps{
		Auth:     authService,
		Plans:    planService,
		Checkout: checkoutService,
		Events:   identity.NewHub(),
		Store:    kv,
		StateTTL: cfg.Session.StateTTL,
		Wizard: wizard.Deps{
			Plans:           planService,
			Drafts:          drafts,
			Autosave:        autosaver,
			Generator:       gen,
			GenerateTimeout: cfg.Planner.GenerateTimeout,
			Log:             logger.Component("wizard"),
		},
		Log: logger.Component("session"),
	}, cfg.Session.IdleTimeout)
	go registry.Run(workerCtx, sessionSweepInterval)

	if cfg.Blog.Enabled {
		go runBlogGeneration(workerCtx, blogService, cfg.Blog.CheckInterval, logger.Component("blog"))
	}

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		JWTSecret:    cfg.JWTSecret,
		Log:          log,
		Mongo:        db,
		Redis:        rdb,
		Sessions:     registry,
		Tokens:       service.NewSessionTokens(cfg.JWTSecret, cfg.Session.TokenTTL),
		Plans:        planService,
		Shares:       shareService,
		Exporter:     exportService,
		Blog:         blogService,
		Testimonials: testimonialService,
		Suggester:    suggestionService,
		Transactions: checkoutService,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	registry.Shutdown()
	autosaver.FlushAll(shutdownCtx)
	cancelWorkers()
}

// newRepository builds a gateway repository, remote-backed when db is set.
func newRepository[T domain.Entity](db *mongodriver.Database, collection, ownerField string, kv ports.KeyValueStore, policy gateway.OwnerPolicy) *gateway.Repository[T] {
	var remote ports.RemoteCollection[T]
	if db != nil {
		remote = mongo.NewCollection[T](db, collection, ownerField)
	}
	return gateway.New[T](collection, remote, kv, policy, logger.Component("gateway"))
}

// runBlogGeneration asks for a new post every interval. The rate limiter
// decides whether a generation actually happens.
func runBlogGeneration(ctx context.Context, blog *service.BlogService, interval time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			post, err := blog.Generate(ctx, now)
			switch {
			case errors.Is(err, domain.ErrRateLimited), errors.Is(err, domain.ErrDailyCapReached):
				log.Debug().Err(err).Msg("blog generation skipped")
			case err != nil:
				log.Warn().Err(err).Msg("blog generation failed")
			default:
				log.Info().Str("post_id", post.ID).Msg("blog post published")
			}
		}
	}
}
