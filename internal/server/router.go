// Package server assembles repositories, services and handlers into the
// HTTP API.
package server

import (
	"net/http"

	"propertydesk/internal/middleware"
	"propertydesk/internal/modules/auth"
	"propertydesk/internal/modules/board"
	"propertydesk/internal/modules/booking"
	"propertydesk/internal/modules/exchange"
	"propertydesk/internal/modules/invoice"
	"propertydesk/internal/modules/payment"
	"propertydesk/internal/modules/report"
	"propertydesk/internal/modules/room"
	"propertydesk/internal/modules/task"
	"propertydesk/internal/modules/tenant"
	"propertydesk/internal/pkg/events"
	"propertydesk/internal/pkg/idempotency"
	jwtsvc "propertydesk/internal/pkg/jwt"
	"propertydesk/internal/pkg/logger"
	"propertydesk/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Deps struct {
	DB          *gorm.DB
	JWT         *jwtsvc.Service
	Publisher   events.Publisher
	Idempotency idempotency.Store
	Hub         *board.Hub
	Log         logrus.FieldLogger

	CORSOrigins []string

	InternalToken      string
	InternalAllowedIPs []string

	// DefaultExchangeRate is served until a rate has been recorded.
	DefaultExchangeRate float64
}

// App exposes the wired services the command-line tools reuse.
type App struct {
	Router   *gin.Engine
	Rooms    *room.Service
	Bookings *booking.Service
	Board    *board.Service
}

func New(d Deps) *App {
	log := logger.OrDiscard(d.Log)
	if d.Publisher == nil {
		d.Publisher = events.Noop{}
	}
	if d.Hub == nil {
		d.Hub = board.NewHub()
	}

	userRepo := repository.NewUserRepository(d.DB)
	roomRepo := repository.NewRoomRepository(d.DB)
	bookingRepo := repository.NewBookingRepository(d.DB)
	tenantRepo := repository.NewTenantRepository(d.DB)
	invoiceRepo := repository.NewInvoiceRepository(d.DB)
	paymentRepo := repository.NewPaymentRepository(d.DB)
	taskRepo := repository.NewTaskRepository(d.DB)
	rateRepo := repository.NewExchangeRateRepository(d.DB)

	boardService := board.NewService(roomRepo, bookingRepo, d.Hub, log.WithField("module", "board"))
	boardHandler := board.NewHandler(d.Hub, boardService, d.CORSOrigins, log.WithField("module", "board"))

	exchangeService := exchange.NewService(rateRepo, d.DefaultExchangeRate, d.Publisher, log.WithField("module", "exchange"))
	exchangeHandler := exchange.NewHandler(exchangeService)

	authService := auth.NewService(userRepo, d.JWT, log.WithField("module", "auth"))
	authHandler := auth.NewHandler(authService)

	tenantService := tenant.NewService(tenantRepo)
	tenantHandler := tenant.NewHandler(tenantService)

	roomService := room.NewService(roomRepo, bookingRepo, boardService, d.Publisher, log.WithField("module", "room"))
	roomHandler := room.NewHandler(roomService)

	bookingService := booking.NewService(
		bookingRepo,
		roomRepo,
		invoiceRepo,
		taskRepo,
		tenantService,
		boardService,
		d.Publisher,
		log.WithField("module", "booking"),
	)
	bookingHandler := booking.NewHandler(bookingService)

	invoiceService := invoice.NewService(invoiceRepo, paymentRepo, exchangeService, log.WithField("module", "invoice"))
	invoiceHandler := invoice.NewHandler(invoiceService)

	paymentService := payment.NewService(invoiceRepo, paymentRepo, exchangeService, d.Publisher, log.WithField("module", "payment"))
	paymentHandler := payment.NewHandler(paymentService, d.Idempotency)

	taskService := task.NewService(taskRepo, roomRepo, boardService, log.WithField("module", "task"))
	taskHandler := task.NewHandler(taskService)

	reportService := report.NewService(paymentRepo, roomRepo, bookingRepo, exchangeService)
	reportHandler := report.NewHandler(reportService)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorLogger(log.WithField("component", "http")))
	r.Use(middleware.CORS(d.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "board_clients": d.Hub.OnlineCount()})
	})

	// websocket clients pass the token as ?token=
	ws := r.Group("")
	ws.Use(middleware.JWTAuth(d.JWT))
	boardHandler.RegisterRoutes(ws)

	internal := r.Group("/internal")
	internal.Use(middleware.InternalToken(d.InternalToken, d.InternalAllowedIPs, log.WithField("component", "internal")))
	roomHandler.RegisterInternalRoutes(internal)

	v1 := r.Group("/api/v1")
	authHandler.RegisterPublicRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(d.JWT))
	{
		authHandler.RegisterProtectedRoutes(protected)
		exchangeHandler.RegisterRoutes(protected)
		tenantHandler.RegisterRoutes(protected)
		roomHandler.RegisterRoutes(protected)
		bookingHandler.RegisterRoutes(protected)
		invoiceHandler.RegisterRoutes(protected)
		paymentHandler.RegisterRoutes(protected)
		taskHandler.RegisterRoutes(protected)
		reportHandler.RegisterRoutes(protected)
	}

	return &App{
		Router:   r,
		Rooms:    roomService,
		Bookings: bookingService,
		Board:    boardService,
	}
}
