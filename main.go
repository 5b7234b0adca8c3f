package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"

	"github.com/matheusmosca/ecommerce-order-core/internal/address"
	"github.com/matheusmosca/ecommerce-order-core/internal/cart"
	"github.com/matheusmosca/ecommerce-order-core/internal/config"
	"github.com/matheusmosca/ecommerce-order-core/internal/discount"
	"github.com/matheusmosca/ecommerce-order-core/internal/inventory"
	"github.com/matheusmosca/ecommerce-order-core/internal/metrics"
	"github.com/matheusmosca/ecommerce-order-core/internal/orders"
	"github.com/matheusmosca/ecommerce-order-core/internal/payment"
	"github.com/matheusmosca/ecommerce-order-core/internal/postgres"
	"github.com/matheusmosca/ecommerce-order-core/internal/reservation"
	"github.com/matheusmosca/ecommerce-order-core/internal/telemetry"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	tp, err := telemetry.InitTracer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	mp, err := telemetry.InitMeter(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize meter: %v", err)
	}
	defer func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down meter: %v", err)
		}
	}()

	appMetrics, err := metrics.New(otel.Meter(cfg.ServiceName))
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	db, err := postgres.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(cfg); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Repositories
	inventoryRepository := inventory.NewPostgresRepository()
	discountRepository := discount.NewPostgresRepository()
	cartRepository := cart.NewPostgresRepository()
	addressRepository := address.NewPostgresRepository()
	orderRepository := orders.NewPostgresRepository()

	// Use cases
	ledger := inventory.NewUseCase(db, inventoryRepository, appMetrics)
	reservations := reservation.NewManager(ledger, cfg.ReservationTTL)
	discounts := discount.NewUseCase(db, discountRepository)
	carts := cart.NewUseCase(db, cartRepository, inventoryRepository)
	orderUseCase := orders.NewUseCase(
		db,
		orderRepository,
		inventoryRepository,
		cartRepository,
		addressRepository,
		discounts,
		appMetrics,
		orders.Options{
			OnInvalidDiscount:       cfg.OnInvalidDiscount,
			StrictStatusTransitions: cfg.StrictStatusTransitions,
			Currency:                cfg.DefaultCurrency,
		},
	)
	gateway := payment.NewRestyGateway(cfg.PaymentProviderURL, cfg.PaymentTimeout)
	payments := payment.NewUseCase(db, orderRepository, gateway)

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.RecoveryWithWriter(gin.DefaultWriter, func(c *gin.Context, recovered interface{}) {
		log.Printf("PANIC RECOVERED: %v", recovered)
		c.AbortWithStatus(http.StatusInternalServerError)
	}))
	r.Use(otelgin.Middleware(cfg.ServiceName))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": cfg.ServiceName})
	})

	api := r.Group("/api")

	api.POST("/orders", orders.HandlePlaceOrder(orderUseCase))
	api.GET("/orders", orders.HandleListOrders(orderUseCase))
	api.GET("/orders/:number", orders.HandleGetOrder(orderUseCase))
	api.PATCH("/orders/:number/status", orders.HandleUpdateStatus(orderUseCase))
	api.POST("/orders/:number/cancel", orders.HandleCancelOrder(orderUseCase))
	api.POST("/orders/:number/charge", payment.HandleChargeOrder(payments))

	api.GET("/inventory/:variantID/check", inventory.HandleCheckStock(ledger))
	api.POST("/inventory/confirm", inventory.HandleConfirmStock(ledger))
	api.POST("/inventory/restock", inventory.HandleRestock(ledger))
	api.POST("/inventory/adjust", inventory.HandleAdjustStock(ledger))
	api.GET("/inventory/alerts", inventory.HandleLowStockAlerts(ledger))

	api.POST("/inventory/reserve", reservation.HandleReserve(reservations))
	api.POST("/inventory/release", reservation.HandleRelease(reservations))
	api.POST("/inventory/confirm-reservation", reservation.HandleConfirm(reservations))

	api.GET("/discounts/:code/validate", discount.HandleValidate(discounts))

	api.GET("/cart", cart.HandleGetCart(carts))
	api.POST("/cart/items", cart.HandleAddItem(carts))
	api.DELETE("/cart/items/:variantID", cart.HandleRemoveItem(carts))

	api.POST("/payments/callback", payment.HandleCallback(payments))

	log.Printf("Order core listening on port %s", cfg.Port)
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
