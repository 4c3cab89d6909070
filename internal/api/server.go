package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/happy2help/h2h-api/docs"
	v1 "github.com/happy2help/h2h-api/internal/api/handler/v1"
	"github.com/happy2help/h2h-api/internal/api/middleware"
	"github.com/happy2help/h2h-api/internal/config"
	"github.com/happy2help/h2h-api/internal/lock"
	"github.com/happy2help/h2h-api/internal/repository"
	"github.com/happy2help/h2h-api/internal/repository/dao"
	"github.com/happy2help/h2h-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

type handlers struct {
	user          *v1.UserHandler
	event         *v1.EventHandler
	job           *v1.JobHandler
	participation *v1.ParticipationHandler
}

func NewServer(conf *config.AppConfig, db *gorm.DB, locker lock.Locker, policies *service.Policies) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()
	s.MountHandlers(s.initHandlers(db, locker, policies))

	return s
}

func (s *Server) initHandlers(db *gorm.DB, locker lock.Locker, policies *service.Policies) handlers {
	tx := dao.NewTransactor(db)
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	orgRepo := repository.NewOrganisationRepository(dao.NewOrganisationDAO(db))
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))
	jobRepo := repository.NewJobRepository(dao.NewJobDAO(db))
	participationRepo := repository.NewParticipationRepository(dao.NewParticipationDAO(db))

	ledger := service.NewCapacityLedger(participationRepo)
	credit := service.NewCreditAccounting(userRepo, policies)
	cascade := service.NewCascadeManager(tx, eventRepo, jobRepo, participationRepo)

	uSvc := service.NewUserService(userRepo, orgRepo)
	eventSvc := service.NewEventService(tx, eventRepo, jobRepo, orgRepo, cascade, credit, policies)
	jobSvc := service.NewJobService(tx, eventRepo, jobRepo, ledger, cascade, locker, policies)
	participationSvc := service.NewParticipationService(tx, eventRepo, jobRepo, participationRepo, ledger, credit, locker, policies)

	return handlers{
		user:          v1.NewUserHandler(uSvc),
		event:         v1.NewEventHandler(eventSvc, uSvc),
		job:           v1.NewJobHandler(jobSvc, uSvc),
		participation: v1.NewParticipationHandler(participationSvc, uSvc),
	}
}

func (s *Server) MountMiddlewares() {
	// Recovery is needed unless we use gin.Default().
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.Logger())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(h handlers) {
	const basePath = "/api/v1"

	api := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		api.GET("/users/me", h.user.HandleGetMe)

		api.POST("/events", h.event.HandleCreateEvent)
		api.GET("/events/:eventID", h.event.HandleGetEvent)
		api.PATCH("/events/:eventID", h.event.HandleUpdateEvent)
		api.DELETE("/events/:eventID", h.event.HandleDeleteEvent)

		api.GET("/events/:eventID/jobs", h.job.HandleListJobs)
		api.POST("/events/:eventID/jobs", h.job.HandleCreateJob)
		api.GET("/jobs/:jobID", h.job.HandleGetJob)
		api.GET("/jobs/:jobID/capacity", h.job.HandleGetCapacity)
		api.PATCH("/jobs/:jobID", h.job.HandleUpdateJob)
		api.DELETE("/jobs/:jobID", h.job.HandleDeleteJob)

		api.GET("/jobs/:jobID/participations", h.participation.HandleListParticipations)
		api.POST("/jobs/:jobID/participations", h.participation.HandleApply)
		api.GET("/participations/:participationID", h.participation.HandleGetParticipation)
		api.PATCH("/participations/:participationID", h.participation.HandleUpdateState)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Happy2Help API"
	docs.SwaggerInfo.Description = "Volunteer matching: events, jobs and participations."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
