package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	"github.com/sur-voley/club-system/handlers"
	"github.com/sur-voley/club-system/middleware"
	"github.com/sur-voley/club-system/models"
)

// SetupRoutes собирает всю маршрутизацию API. Правила доступа:
// admin управляет учётками и категориями, team_admin — командами и
// активностями, coach отмечает посещаемость.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	categoryHandler *handlers.CategoryHandler,
	teamHandler *handlers.TeamHandler,
	playerHandler *handlers.PlayerHandler,
	activityHandler *handlers.ActivityHandler,
	attendanceHandler *handlers.AttendanceHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)
	adminOnly := middleware.Authorize(string(models.RoleAdmin))
	staffOnly := middleware.Authorize(string(models.RoleAdmin), string(models.RoleTeamAdmin))
	coachOrStaff := middleware.Authorize(string(models.RoleAdmin), string(models.RoleTeamAdmin), string(models.RoleCoach))

	// Публичные маршруты
	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/profiles", func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/me", profileHandler.GetCurrent)
		r.Get("/{profileID}", profileHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)

			r.Get("/", profileHandler.List)
			r.Put("/{profileID}", profileHandler.Update)
			r.Patch("/{profileID}/active", profileHandler.SetActive)
			r.Post("/{profileID}/photo", profileHandler.UploadPhoto)
		})
	})

	router.Route("/categories", func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/", categoryHandler.List)
		r.Get("/{categoryID}", categoryHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)

			r.Post("/", categoryHandler.Create)
			r.Put("/{categoryID}", categoryHandler.Update)
			r.Delete("/{categoryID}", categoryHandler.Delete)
		})
	})

	router.Route("/teams", func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/", teamHandler.List)
		r.Get("/{teamID}", teamHandler.GetByID)
		r.Get("/{teamID}/players", playerHandler.ListByTeam)
		r.Get("/{teamID}/activities", activityHandler.UpcomingByTeam)

		r.Group(func(r chi.Router) {
			r.Use(staffOnly)

			r.Post("/", teamHandler.Create)
			r.Put("/{teamID}", teamHandler.Update)
			r.Delete("/{teamID}", teamHandler.Delete)
			r.Post("/{teamID}/crest", teamHandler.UploadCrest)
		})
	})

	router.Route("/players", func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/", playerHandler.List)
		r.Get("/{playerID}", playerHandler.GetByID)
		r.Get("/{playerID}/attendances", attendanceHandler.ListByPlayer)

		r.Group(func(r chi.Router) {
			r.Use(staffOnly)

			r.Post("/", playerHandler.Create)
			r.Put("/{playerID}", playerHandler.Update)
			r.Patch("/{playerID}/active", playerHandler.SetActive)
			r.Get("/{playerID}/eligibility", playerHandler.CheckEligibility)
		})
	})

	router.Route("/activities", func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/", activityHandler.List)
		r.Get("/available-coaches", activityHandler.AvailableCoaches)
		r.Get("/{activityID}", activityHandler.GetByID)
		r.Get("/{activityID}/attendances", attendanceHandler.ListByActivity)

		r.Group(func(r chi.Router) {
			r.Use(staffOnly)

			r.Post("/", activityHandler.Create)
			r.Put("/{activityID}", activityHandler.Update)
			r.Post("/{activityID}/cancel", activityHandler.Cancel)
			r.Delete("/{activityID}", activityHandler.Delete)
		})
	})

	router.Route("/attendances", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(coachOrStaff)

		r.Post("/", attendanceHandler.Mark)
		r.Get("/{attendanceID}", attendanceHandler.GetByID)
		r.Patch("/{attendanceID}/status", attendanceHandler.UpdateStatus)
		r.Delete("/{attendanceID}", attendanceHandler.Delete)
	})

	// Живое расписание, токен не требуется: канал только на чтение.
	router.Get("/ws/schedule/{teamID}", webSocketHandler.ScheduleUpdates)
}
