package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"healteex/api/internal/config"
	"healteex/api/internal/mailer"
	"healteex/api/internal/middleware"
	"healteex/api/internal/models"
	"healteex/api/internal/repository"
	"healteex/api/internal/service"
	"healteex/api/internal/storage"
)

type HandlerSet struct {
	log           zerolog.Logger
	cfg           *config.AppConfig
	authService   *service.AuthService
	signupService *service.SignupService
	googleService *service.GoogleService
	exportService *service.ExportService
	db            *pgxpool.Pool
	cache         *redis.Client
	store         *storage.ObjectStore
	users         *repository.UserRepository
	facilities    *repository.FacilityRepository
	medicines     *repository.MedicineRepository
	transactions  *repository.TransactionRepository
	snapshots     *repository.SnapshotRepository
	forecasts     *repository.ForecastRepository
	alerts        *repository.AlertRepository
	integrations  *repository.IntegrationRepository
}

func NewHandlerSet(
	log zerolog.Logger,
	db *pgxpool.Pool,
	cache *redis.Client,
	store *storage.ObjectStore,
	mail mailer.Mailer,
	verifier service.IdentityVerifier,
	cfg *config.AppConfig,
) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewSignupTokenRepository(db)
	facilityRepo := repository.NewFacilityRepository(db)
	medicineRepo := repository.NewMedicineRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	forecastRepo := repository.NewForecastRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	integrationRepo := repository.NewIntegrationRepository(db)

	auth := service.NewAuthService(userRepo, cache, cfg, log)
	signup := service.NewSignupService(tokenRepo, userRepo, auth, mail, cfg, log)
	google := service.NewGoogleService(userRepo, verifier, auth, log)
	export := service.NewExportService(snapshotRepo, store, log)

	return HandlerSet{
		log:           log,
		cfg:           cfg,
		authService:   auth,
		signupService: signup,
		googleService: google,
		exportService: export,
		db:            db,
		cache:         cache,
		store:         store,
		users:         userRepo,
		facilities:    facilityRepo,
		medicines:     medicineRepo,
		transactions:  transactionRepo,
		snapshots:     snapshotRepo,
		forecasts:     forecastRepo,
		alerts:        alertRepo,
		integrations:  integrationRepo,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/health", h.Health)

	v1 := router.Group("/v1")
	{
		accounts := v1.Group("/accounts")
		accounts.POST("/signup/request", h.SignupRequest)
		accounts.POST("/signup/verify", h.SignupVerify)

		users := accounts.Group("/users")
		users.Use(
			middleware.Auth(h.cfg, h.users, h.authService),
			middleware.RequireRoles(models.RoleSuperAdmin),
		)
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)

		auth := v1.Group("/auth")
		auth.POST("/token", h.ObtainLegacyToken)
		auth.POST("/jwt/create", h.CreateJWT)
		auth.POST("/jwt/refresh", h.RefreshJWT)
		auth.POST("/jwt/verify", h.VerifyJWT)
		auth.POST("/google", h.GoogleSignIn)

		inventory := v1.Group("/inventory")
		inventory.Use(middleware.Auth(h.cfg, h.users, h.authService))

		inventory.GET("/facilities", h.ListFacilities)
		inventory.POST("/facilities", h.CreateFacility)
		inventory.GET("/facilities/:id", h.GetFacility)
		inventory.PUT("/facilities/:id", h.UpdateFacility)
		inventory.DELETE("/facilities/:id", h.DeleteFacility)

		inventory.GET("/medicines", h.ListMedicines)
		inventory.POST("/medicines", h.CreateMedicine)
		inventory.GET("/medicines/:id", h.GetMedicine)
		inventory.PUT("/medicines/:id", h.UpdateMedicine)
		inventory.DELETE("/medicines/:id", h.DeleteMedicine)

		inventory.GET("/transactions", h.ListTransactions)
		inventory.POST("/transactions", h.CreateTransaction)
		inventory.GET("/transactions/:id", h.GetTransaction)
		inventory.PUT("/transactions/:id", h.UpdateTransaction)
		inventory.DELETE("/transactions/:id", h.DeleteTransaction)

		inventory.GET("/stock-snapshots", h.ListSnapshots)
		inventory.POST("/stock-snapshots", h.CreateSnapshot)
		inventory.POST("/stock-snapshots/export", h.ExportSnapshots)
		inventory.GET("/stock-snapshots/:id", h.GetSnapshot)
		inventory.PUT("/stock-snapshots/:id", h.UpdateSnapshot)
		inventory.DELETE("/stock-snapshots/:id", h.DeleteSnapshot)

		inventory.GET("/forecasts", h.ListForecasts)
		inventory.POST("/forecasts", h.CreateForecast)
		inventory.GET("/forecasts/:id", h.GetForecast)
		inventory.PUT("/forecasts/:id", h.UpdateForecast)
		inventory.DELETE("/forecasts/:id", h.DeleteForecast)

		inventory.GET("/alerts", h.ListAlerts)
		inventory.POST("/alerts", h.CreateAlert)
		inventory.GET("/alerts/:id", h.GetAlert)
		inventory.PUT("/alerts/:id", h.UpdateAlert)
		inventory.DELETE("/alerts/:id", h.DeleteAlert)

		inventory.GET("/integrations", h.ListIntegrations)
		inventory.POST("/integrations", h.CreateIntegration)
		inventory.GET("/integrations/:id", h.GetIntegration)
		inventory.PUT("/integrations/:id", h.UpdateIntegration)
		inventory.DELETE("/integrations/:id", h.DeleteIntegration)
	}
}

func paginationParams(c *gin.Context) (limit int, offset int) {
	limit = 50
	offset = 0

	if perPage := c.Query("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 1 {
			offset = (v - 1) * limit
		}
	}
	return limit, offset
}
