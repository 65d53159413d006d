package router

import (
	"net/http"

	assetsvc "armory-backend/internal/application/assets"
	assignsvc "armory-backend/internal/application/assignments"
	dedsvc "armory-backend/internal/application/deductions"
	empsvc "armory-backend/internal/application/employees"
	stationsvc "armory-backend/internal/application/stations"
	usersvc "armory-backend/internal/application/users"
	authsvc "armory-backend/internal/auth"
	"armory-backend/internal/config"
	"armory-backend/internal/constants"
	"armory-backend/internal/health"
	"armory-backend/internal/infrastructure/database"
	assetshandler "armory-backend/internal/interfaces/handlers/assets"
	assignhandler "armory-backend/internal/interfaces/handlers/assignments"
	authhandler "armory-backend/internal/interfaces/handlers/auth"
	dedhandler "armory-backend/internal/interfaces/handlers/deductions"
	emphandler "armory-backend/internal/interfaces/handlers/employees"
	stationshandler "armory-backend/internal/interfaces/handlers/stations"
	usershandler "armory-backend/internal/interfaces/handlers/users"
	"armory-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	sessionHandler, rdb, err := middleware.Session(middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	})
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.ResponseFormatter())
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	hh := &health.Handlers{
		Rdb:            rdb,
		DB:             nil,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, errDB
		}
		if errDB = database.AutoMigrate(db); errDB != nil {
			return nil, nil, nil, errDB
		}
		hh.DB = &gormDBPinger{db: db}
	}

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}

	var userFinder authsvc.UserFinder
	if db != nil {
		userFinder = &authsvc.GormUserFinder{DB: db}
	}
	ah := &authhandler.Handlers{
		UserFinder: userFinder,
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)

	if db != nil && rdb != nil {
		// Users
		us := &usersvc.Service{DB: db, Rdb: rdb}
		uh := &usershandler.Handlers{Service: us}
		ug := app.Group("/api/v1/users", middleware.RequireAuth())
		ug.Post("/", middleware.AuthorizePermission(constants.AssignRole), uh.Create)
		ug.Get("/", middleware.AuthorizePermission(constants.ViewData), uh.List)
		ug.Get("/:id", middleware.AuthorizePermission(constants.ViewData), uh.Get)
		ug.Patch("/:id/role", middleware.AuthorizePermission(constants.AssignRole), uh.UpdateRole)

		// Stations
		ss := &stationsvc.Service{DB: db}
		sh := &stationshandler.Handlers{Service: ss}
		sg := app.Group("/api/v1/stations", middleware.RequireAuth())
		sg.Post("/", middleware.AuthorizePermission(constants.ManageStations), sh.Create)
		sg.Get("/", middleware.AuthorizePermission(constants.ViewData), sh.List)
		sg.Get("/:id", middleware.AuthorizePermission(constants.ViewData), sh.Get)
		sg.Patch("/:id", middleware.AuthorizePermission(constants.ManageStations), sh.Update)

		// Employees
		es := &empsvc.Service{DB: db}
		eh := &emphandler.Handlers{Service: es}
		eg := app.Group("/api/v1/employees", middleware.RequireAuth())
		eg.Post("/", middleware.AuthorizePermission(constants.ManageEmployees), eh.Create)
		eg.Get("/", middleware.AuthorizePermission(constants.ViewData), eh.ListForStation)
		eg.Get("/:id", middleware.AuthorizePermission(constants.ViewData), eh.Get)
		eg.Patch("/:id", middleware.AuthorizePermission(constants.ManageEmployees), eh.Update)

		// Assets
		as := &assetsvc.Service{DB: db}
		ath := &assetshandler.Handlers{Service: as}
		ag := app.Group("/api/v1/assets", middleware.RequireAuth())
		ag.Post("/", middleware.AuthorizePermission(constants.ManageAssets), ath.Create)
		ag.Get("/", middleware.AuthorizePermission(constants.ViewData), ath.List)
		ag.Get("/:id", middleware.AuthorizePermission(constants.ViewData), ath.Get)

		// Assignments
		asgs := &assignsvc.Service{DB: db}
		asgh := &assignhandler.Handlers{Service: asgs}
		asg := app.Group("/api/v1/assignments", middleware.RequireAuth())
		asg.Post("/", middleware.AuthorizePermission(constants.CreateAssignment), asgh.Create)
		asg.Get("/", middleware.AuthorizePermission(constants.ViewData), asgh.List)
		asg.Get("/:id", middleware.AuthorizePermission(constants.ViewData), asgh.Get)
		asg.Post("/:id/issue", middleware.AuthorizePermission(constants.IssueRounds), asgh.Issue)
		asg.Post("/:id/consume", middleware.AuthorizePermission(constants.ConsumeRounds), asgh.Consume)
		asg.Post("/:id/return", middleware.AuthorizePermission(constants.ReturnRounds), asgh.Return)
		asg.Post("/:id/transfer", middleware.AuthorizePermission(constants.TransferAssignment), asgh.Transfer)
		asg.Post("/:id/approve", middleware.AuthorizePermission(constants.ApproveAssignment), asgh.Approve)

		// Deductions
		ds := &dedsvc.Service{DB: db}
		dh := &dedhandler.Handlers{Service: ds}
		dg := app.Group("/api/v1/deductions", middleware.RequireAuth())
		dg.Post("/", middleware.AuthorizePermission(constants.CreateDeduction), dh.Create)
		dg.Get("/", middleware.AuthorizePermission(constants.ViewData), dh.ListForEmployee)
		dg.Patch("/:id", middleware.AuthorizePermission(constants.EditDeduction), dh.Update)
		dg.Post("/:id/approve", middleware.AuthorizePermission(constants.ApproveDeduction), dh.Approve)
	}

	return app, db, rdb, nil
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
