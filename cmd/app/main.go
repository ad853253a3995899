package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"github.com/wichananm65/storefront-backend/internal/address"
	"github.com/wichananm65/storefront-backend/internal/analytics"
	"github.com/wichananm65/storefront-backend/internal/auth"
	"github.com/wichananm65/storefront-backend/internal/banner"
	"github.com/wichananm65/storefront-backend/internal/broker"
	"github.com/wichananm65/storefront-backend/internal/cache"
	"github.com/wichananm65/storefront-backend/internal/cart"
	"github.com/wichananm65/storefront-backend/internal/category"
	"github.com/wichananm65/storefront-backend/internal/company"
	"github.com/wichananm65/storefront-backend/internal/config"
	"github.com/wichananm65/storefront-backend/internal/coupon"
	"github.com/wichananm65/storefront-backend/internal/database"
	"github.com/wichananm65/storefront-backend/internal/imagestore"
	"github.com/wichananm65/storefront-backend/internal/logger"
	"github.com/wichananm65/storefront-backend/internal/notify"
	"github.com/wichananm65/storefront-backend/internal/order"
	"github.com/wichananm65/storefront-backend/internal/payment"
	"github.com/wichananm65/storefront-backend/internal/product"
	"github.com/wichananm65/storefront-backend/internal/review"
	"github.com/wichananm65/storefront-backend/internal/user"
	"github.com/wichananm65/storefront-backend/internal/wishlist"
)

// collaborators that talk to something outside the process
type infra struct {
	images imagestore.Store
	cache  cache.JSON
	events broker.Publisher
	mailer notify.Mailer
	google user.TokenVerifier
	close  []func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	deps, err := setupInfra(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("setup infrastructure")
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(logger.Middleware(log))
	registerRoutes(app, db, cfg, deps, log)

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("starting server")
		if err := app.Listen(cfg.Addr); err != nil {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	for _, closeFn := range deps.close {
		if err := closeFn(); err != nil {
			log.Warn().Err(err).Msg("close client")
		}
	}
	if err := db.Close(); err != nil {
		log.Warn().Err(err).Msg("close database")
	}
}

// setupInfra falls back to in-process implementations for every
// collaborator whose configuration is empty.
func setupInfra(ctx context.Context, cfg config.Config, log zerolog.Logger) (infra, error) {
	deps := infra{
		images: imagestore.NewMemoryStore("/uploads"),
		cache:  cache.Noop{},
		events: broker.Noop{},
		mailer: notify.Noop{},
	}

	if cfg.GCSBucket != "" {
		gcs, err := imagestore.NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSPublicBaseURL)
		if err != nil {
			return infra{}, err
		}
		deps.images = gcs
		deps.close = append(deps.close, gcs.Close)
	} else {
		log.Warn().Msg("GCS_BUCKET is empty, images are kept in memory")
	}

	if cfg.RedisAddr != "" {
		rc := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "storefront:")
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, analytics will be recomputed per request")
		}
		deps.cache = rc
		deps.close = append(deps.close, rc.Close)
	}

	if brokers := cfg.Brokers(); len(brokers) > 0 {
		kp := broker.NewKafkaPublisher(brokers, cfg.KafkaOrderTopic)
		deps.events = kp
		deps.close = append(deps.close, kp.Close)
	}

	if cfg.SendGridAPIKey != "" {
		deps.mailer = notify.NewSendGridMailer(cfg.SendGridAPIKey, cfg.MailFrom, "Storefront")
	}

	if cfg.FirebaseProjectID != "" {
		fv, err := auth.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID)
		if err != nil {
			log.Warn().Err(err).Msg("firebase init failed, google sign-in disabled")
		} else {
			deps.google = fv
		}
	}
	return deps, nil
}

func registerRoutes(app *fiber.App, db *sql.DB, cfg config.Config, deps infra, log zerolog.Logger) {
	productService := product.NewService(product.NewPostgresRepository(db), deps.images, log)
	categoryService := category.NewService(category.NewPostgresRepository(db), deps.images, log)
	userService := user.NewService(user.NewPostgresRepository(db), auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL), deps.images, log).
		WithGoogle(deps.google)

	containers := cart.NewPostgresStore(db)
	cartService := cart.NewService(containers, productService, log)
	wishlistService := wishlist.NewService(containers, productService, log)
	couponService := coupon.NewService(coupon.NewPostgresRepository(db))
	addressService := address.NewService(address.NewPostgresRepository(db))

	orderService := order.NewService(order.NewPostgresRepository(db), productService, log, order.Options{
		Coupons:   couponService,
		Carts:     cartService,
		Addresses: addressService,
		Events:    deps.events,
		Mailer:    deps.mailer,
		TaxRate:   cfg.TaxRate,
	})
	paymentService := payment.NewService(
		payment.NewPayPalGateway(cfg.PayPalBaseURL, cfg.PayPalClientID, cfg.PayPalSecret),
		orderService,
		payment.NewPostgresRepository(db),
		cfg.ClientURL,
		log,
	)
	reviewService := review.NewService(review.NewPostgresRepository(db), productService, orderService, userService, log)
	bannerService := banner.NewService(banner.NewPostgresRepository(db), deps.images, log)
	companyService := company.NewService(company.NewPostgresRepository(db), deps.images, log)
	analyticsService := analytics.NewService(analytics.NewPostgresSource(db), deps.cache, cfg.AnalyticsCacheTTL, log)

	userHandler := user.NewHandler(userService)
	productHandler := product.NewHandler(productService)
	categoryHandler := category.NewHandler(categoryService)
	couponHandler := coupon.NewHandler(couponService)
	bannerHandler := banner.NewHandler(bannerService)
	companyHandler := company.NewHandler(companyService)
	reviewHandler := review.NewHandler(reviewService)
	cartHandler := cart.NewHandler(cartService)
	wishlistHandler := wishlist.NewHandler(wishlistService)
	addressHandler := address.NewHandler(addressService)
	orderHandler := order.NewHandler(orderService)
	paymentHandler := payment.NewHandler(paymentService)
	analyticsHandler := analytics.NewHandler(analyticsService)

	// public
	userHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)
	categoryHandler.RegisterPublicRoutes(app)
	couponHandler.RegisterPublicRoutes(app)
	bannerHandler.RegisterPublicRoutes(app)
	companyHandler.RegisterPublicRoutes(app)
	reviewHandler.RegisterPublicRoutes(app)

	// everything below needs a bearer token
	app.Use(auth.Middleware(cfg.JWTSecret), auth.Refresh(userService))
	userHandler.RegisterProtectedRoutes(app)
	reviewHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	wishlistHandler.RegisterProtectedRoutes(app)
	addressHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)
	paymentHandler.RegisterProtectedRoutes(app)

	admin := app.Group("/api/v1/admin", auth.RequireRole(auth.RoleAdmin))
	userHandler.RegisterAdminRoutes(admin)
	productHandler.RegisterAdminRoutes(admin)
	categoryHandler.RegisterAdminRoutes(admin)
	couponHandler.RegisterAdminRoutes(admin)
	bannerHandler.RegisterAdminRoutes(admin)
	companyHandler.RegisterAdminRoutes(admin)
	reviewHandler.RegisterAdminRoutes(admin)
	orderHandler.RegisterAdminRoutes(admin)
	paymentHandler.RegisterAdminRoutes(admin)
	analyticsHandler.RegisterAdminRoutes(admin)
}
