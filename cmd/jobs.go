package cmd

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-account-settings/app/gateway"
	"github.com/vibast-solutions/ms-go-account-settings/app/repository"
	"github.com/vibast-solutions/ms-go-account-settings/app/service"
	"github.com/vibast-solutions/ms-go-account-settings/config"

	_ "github.com/go-sql-driver/mysql"
)

var (
	checkoutCleanupWorker bool
	couponExpiryWorker    bool
)

var checkoutCleanupCmd = &cobra.Command{
	Use:   "checkout-cleanup",
	Short: "Fail checkout sessions stuck before payment past the pending timeout",
	Run: func(_ *cobra.Command, _ []string) {
		runCommand(
			"checkout_cleanup",
			checkoutCleanupWorker,
			func(cfg *config.Config) time.Duration { return cfg.Jobs.CheckoutCleanupInterval },
			func(js *jobServices, ctx context.Context) error {
				return js.checkout.RunCheckoutCleanupBatch(ctx)
			},
		)
	},
}

var couponExpiryCmd = &cobra.Command{
	Use:   "coupon-expiry",
	Short: "Deactivate coupons whose expiry date has passed",
	Run: func(_ *cobra.Command, _ []string) {
		runCommand(
			"coupon_expiry",
			couponExpiryWorker,
			func(cfg *config.Config) time.Duration { return cfg.Jobs.CouponExpiryInterval },
			func(js *jobServices, ctx context.Context) error {
				return js.coupons.RunCouponExpiryBatch(ctx)
			},
		)
	},
}

func init() {
	rootCmd.AddCommand(checkoutCleanupCmd)
	rootCmd.AddCommand(couponExpiryCmd)

	checkoutCleanupCmd.Flags().BoolVar(&checkoutCleanupWorker, "worker", false, "Run continuously using configured interval")
	couponExpiryCmd.Flags().BoolVar(&couponExpiryWorker, "worker", false, "Run continuously using configured interval")
}

type jobServices struct {
	checkout *service.CheckoutService
	coupons  *service.CouponService
}

func runCommand(
	name string,
	worker bool,
	intervalResolver func(cfg *config.Config) time.Duration,
	fn func(js *jobServices, ctx context.Context) error,
) {
	cfg, services, cleanup := mustCreateJobServices()
	defer cleanup()

	if worker {
		runWorker(name, intervalResolver(cfg), services, fn)
		return
	}

	ctx := context.Background()
	runJob(name, func() error { return fn(services, ctx) })
}

func runWorker(
	name string,
	interval time.Duration,
	services *jobServices,
	fn func(js *jobServices, ctx context.Context) error,
) {
	if interval <= 0 {
		logrus.WithField("job", name).Fatal("invalid worker interval")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runJob(name, func() error { return fn(services, ctx) })

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	for {
		select {
		case <-quit:
			logrus.WithField("job", name).Info("Worker shutdown requested")
			return
		case <-ticker.C:
			runJob(name, func() error { return fn(services, ctx) })
		}
	}
}

func mustCreateJobServices() (*config.Config, *jobServices, func()) {
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

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	userRepo := repository.NewUserRepository(db)
	planRepo := repository.NewPlanRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	redemptionRepo := repository.NewCouponRedemptionRepository(db)
	sessionRepo := repository.NewCheckoutSessionRepository(db)

	couponService := service.NewCouponService(couponRepo, redemptionRepo, planRepo)
	checkoutService := service.NewCheckoutService(
		sessionRepo,
		userRepo,
		planRepo,
		couponService,
		gateway.NewStubService(),
		cfg.Checkout,
		cfg.Payment.DefaultCurrency,
	)

	cleanup := func() {
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}

	return cfg, &jobServices{checkout: checkoutService, coupons: couponService}, cleanup
}

func runJob(name string, fn func() error) {
	start := time.Now()
	err := fn()
	latency := time.Since(start)
	if err != nil {
		logrus.WithError(err).WithField("job", name).WithField("latency", latency.String()).Error("job_failed")
		return
	}
	logrus.WithField("job", name).WithField("latency", latency.String()).Info("job_completed")
}
