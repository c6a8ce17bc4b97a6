package main

import (
	"context"
	"log"
	"net/http"

	"github.com/cornucopia-market/cornucopia-backend/internal/modules/approval"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/auth"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/issue"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/listingcache"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/notify"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/order"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/product"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/stand"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/user"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/zone"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/config"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/database"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("config: %v", err)
	}
	loc, _ := cfg.Location()

	ctx := context.Background()
	db, err := database.Open(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatal(err)
	}
	log.Println("Successfully connected to the database!")

	// ── Identity ────────────────────────────────────────────
	userRepo := user.NewPostgresRepository(db)
	authService := auth.NewService(userRepo, []byte(cfg.SupabaseJWTSecret))

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(auth.Authenticate(authService))

	auth.NewHandler().RegisterRoutes(router)
	user.NewHandler(user.NewService(userRepo)).RegisterRoutes(router.With(auth.RequireAdmin))

	// ── Stands & Products ───────────────────────────────────
	listings := listingcache.New[[]*product.Listing](listingcache.SystemClock, cfg.ListingCacheTTL)

	standService := stand.NewService(stand.NewPostgresRepository(db))
	stand.NewHandler(standService).RegisterRoutes(router)

	productRepo := product.NewPostgresRepository(db)
	productService := product.NewService(productRepo, standService, listings)
	product.NewHandler(productService).RegisterRoutes(router)

	// ── Delivery Zones ──────────────────────────────────────
	zoneService := zone.NewService(zone.NewPostgresRepository(db))
	zone.NewHandler(zoneService).RegisterRoutes(router)

	// ── Orders & Issues ─────────────────────────────────────
	orderRepo := order.NewPostgresRepository(db)
	orderService := order.NewService(orderRepo, zoneService, productRepo, cfg.TaxRateBps, loc)
	order.NewHandler(orderService).RegisterRoutes(router)

	issueService := issue.NewService(issue.NewPostgresRepository(db), orderRepo)
	issue.NewHandler(issueService).RegisterRoutes(router)

	// ── Approval Workflow ───────────────────────────────────
	var mailer notify.Mailer = notify.LogMailer{}
	if cfg.ResendAPIKey != "" {
		mailer, err = notify.NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom, cfg.ResendBaseURL)
		if err != nil {
			log.Fatalf("mailer: %v", err)
		}
	} else {
		log.Println("RESEND_API_KEY not set, approval emails will only be logged")
	}
	approvalService := approval.NewService(
		approval.NewPostgresRepository(db),
		listings,
		notify.NewApprovalNotifier(userRepo, mailer),
	)
	approval.NewHandler(approvalService).RegisterRoutes(router)

	// ── Start Server ─────────────────────────────────────────
	log.Printf("Cornucopia API server starting on :%s (market timezone %s)", cfg.Port, loc)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, router))
}
