package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/vibast-solutions/ms-go-account-settings/app/auth"
	"github.com/vibast-solutions/ms-go-account-settings/app/controller"
	"github.com/vibast-solutions/ms-go-account-settings/app/document"
	"github.com/vibast-solutions/ms-go-account-settings/app/gateway"
	grpcserver "github.com/vibast-solutions/ms-go-account-settings/app/grpc"
	"github.com/vibast-solutions/ms-go-account-settings/app/repository"
	"github.com/vibast-solutions/ms-go-account-settings/app/service"
	"github.com/vibast-solutions/ms-go-account-settings/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers",
	Long:  "Start both HTTP (Echo) and gRPC servers for the account settings service.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	userRepo := repository.NewUserRepository(db)
	planRepo := repository.NewPlanRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	redemptionRepo := repository.NewCouponRedemptionRepository(db)
	sessionRepo := repository.NewCheckoutSessionRepository(db)
	verificationRepo := repository.NewVerificationRepository(db)

	documentStore, err := document.NewDiskStore(cfg.Verification.StorageDir)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize document storage")
	}

	accountService := service.NewAccountService(userRepo)
	couponService := service.NewCouponService(couponRepo, redemptionRepo, planRepo)
	checkoutService := service.NewCheckoutService(
		sessionRepo,
		userRepo,
		planRepo,
		couponService,
		newPaymentGateway(cfg),
		cfg.Checkout,
		cfg.Payment.DefaultCurrency,
	)
	upgradeService := service.NewUpgradeService(userRepo, planRepo, couponService)
	verificationService := service.NewVerificationService(verificationRepo, documentStore, cfg.Verification)

	accountController := controller.NewAccountController(accountService)
	billingController := controller.NewBillingController(planRepo, couponService)
	checkoutController := controller.NewCheckoutController(checkoutService, upgradeService)
	verificationController := controller.NewVerificationController(verificationService)

	authMiddleware := auth.NewMiddleware(cfg.Auth.JWTSecret)

	e := setupHTTPServer(accountController, billingController, checkoutController, verificationController, authMiddleware)
	grpcSrv, lis := setupGRPCServer(cfg)

	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("HTTP server error")
		}
	}()

	go func() {
		logrus.WithField("addr", lis.Addr().String()).Info("Starting gRPC server")
		if err := grpcSrv.Serve(lis); err != nil {
			logrus.WithError(err).Fatal("gRPC server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown error")
	}
	grpcSrv.GracefulStop()

	logrus.Info("Server stopped")
}

// newPaymentGateway selects the live gateway when credentials are configured
// and the stub otherwise, so local development never needs gateway keys.
func newPaymentGateway(cfg *config.Config) gateway.Service {
	if cfg.Payment.KeyID == "" || cfg.Payment.KeySecret == "" {
		logrus.Warn("Payment gateway credentials missing, using stub gateway")
		return gateway.NewStubService()
	}
	return gateway.NewHTTPService(cfg.Payment.BaseURL, cfg.Payment.KeyID, cfg.Payment.KeySecret, cfg.Payment.RequestTimeout)
}

func setupHTTPServer(
	accountController *controller.AccountController,
	billingController *controller.BillingController,
	checkoutController *controller.CheckoutController,
	verificationController *controller.VerificationController,
	authMiddleware *auth.Middleware,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: func() string {
			return fmt.Sprintf("rest-%s", uuid.New().String())
		},
	}))

	e.GET("/health", accountController.Health)

	authed := e.Group("", authMiddleware.RequireUser())

	authed.GET("/me", accountController.Me)
	authed.PUT("/me", accountController.UpdateProfile)
	authed.PUT("/privacy/settings", accountController.UpdatePrivacySettings)
	authed.PUT("/notifications/settings", accountController.UpdateNotificationSettings)
	authed.POST("/auth/change-password", accountController.ChangePassword)
	authed.DELETE("/users/delete-account", accountController.DeleteAccount)

	authed.GET("/subscription/plans", billingController.ListPlans)

	coupons := authed.Group("/coupons")
	coupons.GET("", billingController.ListCoupons)
	coupons.POST("/apply", billingController.ApplyCoupon)
	coupons.POST("/redeem", billingController.RedeemCoupon)

	payment := authed.Group("/subscription/payment")
	payment.POST("/order", checkoutController.CreateOrder)
	payment.POST("/verify", checkoutController.VerifyPayment)
	payment.POST("/dismiss", checkoutController.Dismiss)

	authed.POST("/subscription/free-upgrade", checkoutController.FreeUpgrade)

	authed.GET("/verification", verificationController.GetVerification)
	authed.POST("/verification", verificationController.UploadVerification)

	return e
}

func setupGRPCServer(cfg *config.Config) (*grpc.Server, net.Listener) {
	grpcAddr := net.JoinHostPort(cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to listen on gRPC port")
	}

	grpcSrv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpcserver.RecoveryInterceptor(),
			grpcserver.RequestIDInterceptor(),
			grpcserver.LoggingInterceptor(),
		),
	)
	healthpb.RegisterHealthServer(grpcSrv, health.NewServer())

	return grpcSrv, lis
}
