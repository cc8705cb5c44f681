package api

import (
	"context"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/planwise/business-planner/internal/api/handler"
	"github.com/planwise/business-planner/internal/api/middleware"
	"github.com/planwise/business-planner/internal/core/session"
	"github.com/planwise/business-planner/internal/infrastructure/http/handlers"
)

// Sessions is the client-session registry the API runs on.
type Sessions interface {
	handler.SessionRegistry
	Acquire(ctx context.Context, sid string) (*session.Manager, error)
}

// Shares both creates and resolves public links.
type Shares interface {
	handler.ShareCreator
	handler.ShareReader
}

// Deps are the collaborators wired into the HTTP surface. Mongo and Redis may
// be nil when not configured; they only feed the readiness probe.
type Deps struct {
	JWTSecret string
	Log       zerolog.Logger
	Mongo     *mongo.Database
	Redis     *redis.Client

	Sessions     Sessions
	Tokens       handler.TokenIssuer
	Plans        handler.PlanReader
	Shares       Shares
	Exporter     handler.Exporter
	Blog         handler.BlogReader
	Testimonials handler.Testimonials
	Suggester    handler.Suggester
	Transactions handler.TransactionLister
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddleware("planner"))

	// --- Dependencies ---
	sessionHandler := handler.NewSessionHandler(d.Sessions, d.Tokens)
	authHandler := handler.NewAuthHandler()
	wizardHandler := handler.NewWizardHandler()
	planHandler := handler.NewPlanHandler(d.Plans, d.Shares, d.Exporter)
	contentHandler := handler.NewContentHandler(d.Shares, d.Blog, d.Testimonials, d.Suggester)
	checkoutHandler := handler.NewCheckoutHandler(d.Transactions)

	// --- Health probes and tooling (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Mongo, d.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")

	// --- Public routes ---
	v1.POST("/sessions", sessionHandler.Open)
	v1.GET("/shares/:id", contentHandler.GetShare)
	v1.GET("/blog", contentHandler.ListBlog)
	v1.GET("/blog/:id", contentHandler.GetBlogPost)
	v1.GET("/testimonials", contentHandler.ListTestimonials)
	v1.POST("/testimonials", contentHandler.SubmitTestimonial)

	// --- Session routes (bearer token, any identity) ---
	sess := v1.Group("", middleware.Auth(d.JWTSecret), middleware.Session(d.Sessions))
	sess.GET("/session", sessionHandler.Get)
	sess.DELETE("/session", sessionHandler.Close)
	sess.POST("/session/navigate", sessionHandler.Navigate)
	sess.POST("/auth/signup", authHandler.SignUp)
	sess.POST("/auth/login", authHandler.Login)
	sess.POST("/auth/logout", authHandler.Logout)

	// --- Signed-in routes ---
	user := sess.Group("", middleware.RequireSignedIn())
	user.PATCH("/me", authHandler.UpdateProfile)
	user.PUT("/me/plan", authHandler.UpdatePlan)
	user.PUT("/me/password", authHandler.UpdatePassword)

	user.GET("/wizard", wizardHandler.Get)
	user.PUT("/wizard/fields", wizardHandler.SetFields)
	user.POST("/wizard/next", wizardHandler.Next)
	user.POST("/wizard/back", wizardHandler.Back)
	user.POST("/wizard/edit", wizardHandler.Edit)
	user.POST("/wizard/restart", wizardHandler.Restart)

	user.GET("/plans", planHandler.List)
	user.GET("/plans/:id", planHandler.Get)
	user.DELETE("/plans/:id", planHandler.Delete)
	user.POST("/plans/:id/share", planHandler.Share)
	user.POST("/plans/:id/export", planHandler.Export)

	user.POST("/checkout", checkoutHandler.Begin)
	user.POST("/checkout/complete", checkoutHandler.Complete)
	user.DELETE("/checkout", checkoutHandler.Cancel)
	user.GET("/transactions", checkoutHandler.Transactions)

	user.GET("/suggestions", contentHandler.Suggestions)

	return e
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
