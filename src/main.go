package main

import (
	"artbook/src/booking"
	"artbook/src/boot"
	"artbook/src/config"
	"artbook/src/lib"
	"artbook/src/middlewares"
	"artbook/src/models"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"
)

const (
	apiPrefix string = "/api/v1"
)

var slotPolicy = booking.DefaultSlotPolicy()

// bookableDate accepts YYYY-MM-DD dates inside the booking window.
func bookableDate(fl validator.FieldLevel) bool {
	d, err := slotPolicy.ParseDate(fl.Field().String())
	if err != nil {
		return false
	}
	return slotPolicy.CheckDate(d, time.Now()) == nil
}

func registerValidators(p booking.SlotPolicy) {
	slotPolicy = p
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("bookabledate", bookableDate)
	}
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	if cfg.IsLocal() {
		return cors.Default()
	}
	appHost := os.Getenv("APP_HOST")
	cc := cors.DefaultConfig()
	cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PUT", "DELETE", "HEAD")
	cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization")
	cc.AllowOriginFunc = func(origin string) bool {
		if appHost != "" {
			if match, _ := regexp.MatchString(appHost, origin); match {
				return true
			}
		}
		match, _ := regexp.MatchString("app:mobile", origin)
		return match
	}
	cc.AllowCredentials = true
	return cors.New(cc)
}

func userHook(app *boot.App) middlewares.UserHook {
	if app.Users == nil {
		return nil
	}
	return func(ctx context.Context, u models.User) {
		if err := app.Users.Remember(ctx, u); err != nil {
			zap.S().Warnf("[auth] could not record user %s: %s", u.ID, err.Error())
		}
	}
}

func setupRouter(app *boot.App) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), corsMiddleware(app.Config))
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})

	public := router.Group(apiPrefix)
	subjectHandlers(public, app)

	authorized := router.Group(apiPrefix)
	authorized.Use(middlewares.Authenticate([]byte(app.Config.JWTSecret), userHook(app)))
	sessionHandlers(authorized, app)
	registrationHandlers(authorized, app)
	paymentHandlers(authorized, app)
	return router
}

func main() {
	cfg := config.Load()
	lib.InitLogger(cfg.LogDir, cfg.LogLevel, !cfg.IsLocal())
	defer zap.L().Sync()
	if cfg.IsLocal() {
		gin.ForceConsoleColor()
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := boot.InitSecrets(ctx, cfg); err != nil {
		zap.S().Fatalf("Failed to load secrets: %s", err.Error())
	}
	gateway, err := boot.NewGateway(cfg)
	if err != nil {
		zap.S().Fatalf("Failed to initialize payments: %s", err.Error())
	}
	gdb := boot.InitDb(cfg)
	dispatcher, _ := boot.NewDispatcher(cfg)
	app, err := boot.InitApp(ctx, cfg, gdb, gateway, dispatcher)
	if err != nil {
		zap.S().Fatalf("Failed to initialize: %s", err.Error())
	}
	registerValidators(app.Controller.SlotPolicy())
	boot.InitScheduler(app)
	boot.InitConsumers(ctx, app)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zap.S().Infof("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Fatalf("Failed to start server: %s", err)
		}
	}()

	<-ctx.Done()
	zap.S().Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.PaymentTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.S().Errorf("Server shutdown: %s", err.Error())
	}
	boot.Shutdown(app)
}
