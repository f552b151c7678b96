// Package httpapi wires the HTTP transport (Gin) to the companion service,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation and user ids, logging/redaction, panic recovery,
// metrics, compression, CORS, security headers, idempotency, and rate
// limiting.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tbourn/go-chat-companion/docs"
	"github.com/tbourn/go-chat-companion/internal/config"
	"github.com/tbourn/go-chat-companion/internal/http/handlers"
	"github.com/tbourn/go-chat-companion/internal/http/middleware"
)

// maxBodyBytes caps request bodies. Turns are short texts; the largest
// legitimate body is an Islamic context patch with a day's events.
const maxBodyBytes = 64 << 10

// Deps are the collaborators RegisterRoutes mounts.
type Deps struct {
	Companion handlers.Companion
	// Idempotency enables Idempotency-Key replay on POST /chat/turns; nil
	// disables it.
	Idempotency handlers.IdempotencyStore
}

// RegisterRoutes attaches all middleware and HTTP endpoints to r.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID, then UserIdentity (optional here, required on the API group)
//  3. RedactingLogger, then Recovery
//  4. Body size limit, metrics, gzip
//  5. Idempotency validator (before the rate limiter so replays bypass it)
//  6. Rate limiter (per user or IP)
//  7. CORS and security headers
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.UserIdentity(middleware.UserIdentityOptions{}))
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
		MaskQuery:   []string{"message", "text"},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics", "/swagger"})))

	var lookup middleware.IdempotencyLookup
	if deps.Idempotency != nil {
		lookup = func(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
			rec, err := deps.Idempotency.Find(ctx, userID, scope, key, now)
			return rec != nil, err
		}
	}
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{
		MaxLen: 200,
		Scope:  idempotencyScope(cfg.APIBasePath),
	}, lookup))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	var opts []handlers.Option
	if deps.Idempotency != nil {
		opts = append(opts, handlers.WithIdempotency(deps.Idempotency, cfg.IdempotencyTTL))
	}
	h := handlers.New(deps.Companion, opts...)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.POST("/classify", h.Classify)

		user := api.Group("", middleware.UserIdentity(middleware.UserIdentityOptions{Required: true}))
		user.POST("/chat/turns", h.PostTurn)
		user.GET("/suggestions", h.Suggestions)

		ctx := user.Group("/context", middleware.NoStore())
		ctx.GET("", h.GetContext)
		ctx.GET("/messages", h.ListMessages)
		ctx.DELETE("/messages", h.ClearMessages)
		ctx.PUT("/user-name", h.PutUserName)
		ctx.PUT("/emotion", h.PutEmotion)
		ctx.PUT("/page", h.PutPage)
		ctx.PATCH("/islamic", h.PatchIslamic)
		ctx.GET("/insights", h.GetInsights)
	}
}

// idempotencyScope names turn requests "chat.turns" and falls back to the
// route for anything else.
func idempotencyScope(base string) func(*gin.Context) string {
	turns := joinPath(base, "/chat/turns")
	return func(c *gin.Context) string {
		if c.FullPath() == turns {
			return handlers.TurnScope
		}
		return c.FullPath()
	}
}

// corsMiddleware allows every origin when none are configured, otherwise
// echoes allow-listed origins.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization",
			middleware.HeaderUserID, middleware.HeaderIdempotencyKey},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length", middleware.HeaderIdempotencyReplayed},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		base.AllowAllOrigins = true
		// ACAO: * also for requests without an Origin header (health checks).
		return []gin.HandlerFunc{
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	base.AllowOrigins = origins
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(base),
	}
}

// limitBody caps the request body at maxBytes; later reads fail past it.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

func joinPath(base, p string) string {
	if base == "" || base == "/" {
		return p
	}
	return base + p
}
