package main

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"mealdesk/auth"
	"mealdesk/config"
	"mealdesk/controllers"
	"mealdesk/database"
	"mealdesk/repositories"
	"mealdesk/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	requestCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mealdesk_requests_total",
		Help: "Total number of HTTP requests handled, by method, path and status.",
	}, []string{"method", "path", "status"})
	errorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mealdesk_errors_total",
		Help: "Total number of requests answered with a 5xx status.",
	}, []string{"path"})
)

// RequestLogger logs every request after processing and feeds the
// Prometheus counters.
func RequestLogger(logger *zap.Logger) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		startTime := time.Now()

		chain.ProcessFilter(req, resp)

		path := req.Request.URL.Path
		status := resp.StatusCode()
		requestCounter.WithLabelValues(req.Request.Method, path, strconv.Itoa(status)).Inc()
		if status >= http.StatusInternalServerError {
			errorCounter.WithLabelValues(path).Inc()
		}

		logger.Info("Request",
			zap.String("client_ip", req.Request.RemoteAddr),
			zap.String("method", req.Request.Method),
			zap.Int("status_code", status),
			zap.Duration("latency", time.Since(startTime)),
			zap.String("user_agent", req.Request.UserAgent()),
			zap.String("path", path),
		)
	}
}

// RateLimiter applies a global token-bucket limit across the surface.
func RateLimiter(limiter *rate.Limiter) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		if !limiter.Allow() {
			_ = resp.WriteHeaderAndJson(http.StatusTooManyRequests, map[string]string{"message": "Too many requests"}, restful.MIME_JSON)
			return
		}
		chain.ProcessFilter(req, resp)
	}
}

func main() {
	// Initialize configs
	config.InitConfig()

	var logger *zap.Logger
	switch config.AppConfig.LogLevel {
	case "debug":
		logger, _ = zap.NewDevelopment()
	default:
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync() // Make sure the buffer is flushed before the program exits

	auth.SetSigningKey([]byte(config.AppConfig.JwtSecret))

	db, err := database.Open(config.AppConfig.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer database.Close(db)

	userRepo := repositories.NewUserRepository(db)
	mealRepo := repositories.NewMealSelectionRepository(db)
	userService := services.NewUserService(userRepo)
	mealService := services.NewMealService(mealRepo)

	authController := controllers.NewAuthController(userService, logger, config.AppConfig.CookieSecure)
	mealController := controllers.NewMealController(mealService, logger)
	userController := controllers.NewUserController(userService, mealService, logger)

	prometheus.MustRegister(requestCounter, errorCounter)

	container := restful.NewContainer()
	container.Filter(RequestLogger(logger))
	container.Filter(RateLimiter(rate.NewLimiter(rate.Limit(config.AppConfig.RateLimit), config.AppConfig.RateBurst)))

	// Credentialed CORS for the browser frontend.
	cors := restful.CrossOriginResourceSharing{
		AllowedDomains: []string{config.AppConfig.CORSOrigin},
		AllowedHeaders: []string{"Content-Type", "Accept"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		CookiesAllowed: true,
		Container:      container,
	}
	container.Filter(cors.Filter)
	container.Filter(container.OPTIONSFilter)

	authWS := new(restful.WebService)
	authController.RegisterRoutes(authWS)
	container.Add(authWS)

	mealWS := new(restful.WebService)
	mealController.RegisterRoutes(mealWS)
	container.Add(mealWS)

	userWS := new(restful.WebService)
	userController.RegisterRoutes(userWS)
	container.Add(userWS)

	// OpenAPI document for the registered routes.
	container.Add(restfulspec.NewOpenAPIService(restfulspec.Config{
		WebServices: container.RegisteredWebServices(),
		APIPath:     "/apidocs.json",
	}))

	container.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", config.AppConfig.HTTPPort)
	logger.Info("Server starting", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, container); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
