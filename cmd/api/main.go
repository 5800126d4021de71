package main

import (
	"context"
	"fmt"
	common_api "inteldesk/internal/common/api"
	"inteldesk/internal/config"
	"inteldesk/internal/database"
	"inteldesk/internal/features/advisory"
	"inteldesk/internal/features/audit"
	"inteldesk/internal/features/auth"
	"inteldesk/internal/features/client"
	"inteldesk/internal/features/recipient"
	"inteldesk/internal/features/schedule"
	"inteldesk/internal/features/system"
	"inteldesk/internal/features/tracking"
	"inteldesk/internal/features/user"
	"inteldesk/internal/logger"
	"inteldesk/internal/mail"
	"inteldesk/internal/middleware"
	"inteldesk/pkg/utils"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
	log.Printf("Registered %d route groups\n", len(routes))
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			utils.SetSecret(cfg.JWTSecret)
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// InitializeIndexes ensures that necessary database indexes are created
func InitializeIndexes(lc fx.Lifecycle, scheduleRepo schedule.ScheduleRepository, trackingRepo tracking.TrackingRepository) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := scheduleRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure schedule indexes: %v", err)
				}
				if err := trackingRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure tracking indexes: %v", err)
				}
			}()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Database
			database.NewDatabase,
			database.NewRedis,

			// Outbound mail transport
			mail.NewTransport,

			// Initialize Repository
			user.NewUserRepository,
			client.NewClientRepository,
			advisory.NewAdvisoryRepository,
			audit.NewAuditRepository,
			schedule.NewScheduleRepository,
			tracking.NewTrackingRepository,

			audit.NewAuditService,
			auth.NewAuthService,
			user.NewUserService,
			client.NewClientService,
			advisory.NewAdvisoryService,
			recipient.NewResolverService,
			tracking.NewHub,
			tracking.NewTrackingService,
			schedule.NewDispatcher,
			schedule.NewScheduleService,
			schedule.NewDispatchScheduler,

			// Interface Adapters to break circular dependencies and satisfy Fx
			func(s tracking.TrackingService) schedule.TrackingRegistrar { return s },

			// Initialize Controller
			auth.NewAuthController,
			user.NewUserController,
			client.NewClientController,
			advisory.NewAdvisoryController,
			recipient.NewRecipientController,
			audit.NewAuditController,
			schedule.NewScheduleController,
			tracking.NewTrackingController,

			// Initialize API Routes
			AsRoute(auth.NewAuthApi),
			AsRoute(user.NewUserApi),
			AsRoute(client.NewClientApi),
			AsRoute(advisory.NewAdvisoryApi),
			AsRoute(recipient.NewRecipientApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(schedule.NewScheduleApi),
			AsRoute(tracking.NewTrackingApi),
			AsRoute(system.NewHealthApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			func(lc fx.Lifecycle, scheduler *schedule.DispatchScheduler) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return scheduler.Start()
					},
					OnStop: func(ctx context.Context) error {
						return scheduler.Stop()
					},
				})
			},
			InitializeIndexes,
		),
	)

	app.Run()
}
