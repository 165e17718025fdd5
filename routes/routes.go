package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Dosada05/sports-registry/handlers"
	"github.com/Dosada05/sports-registry/middleware"
	"github.com/Dosada05/sports-registry/models"
)

// Handlers собирает все HTTP-обработчики приложения.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Sport        *handlers.SportHandler
	Organization *handlers.OrganizationHandler
	Building     *handlers.BuildingHandler
	Person       *handlers.PersonHandler
	Sportsmen    *handlers.SportsmenHandler
	Competition  *handlers.CompetitionHandler
	Dashboard    *handlers.DashboardHandler
	WebSocket    *handlers.WebSocketHandler
	Health       *handlers.HealthHandler
}

func SetupRoutes(r chi.Router, h Handlers, jwtSecret string, allowedOrigins []string) {
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Health.Healthz)

	// Токен для веб-сокета передаётся через ?token=
	r.With(middleware.Authenticate(jwtSecret)).Get("/ws/{room}", h.WebSocket.ServeWs)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Auth.Login)
		// Первый пользователь регистрируется без токена, дальше только админ.
		r.With(middleware.OptionalAuthenticate(jwtSecret)).Post("/register", h.Auth.Register)
		r.With(middleware.Authenticate(jwtSecret)).Get("/me", h.Auth.Me)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		editors := middleware.RequireRole(models.RoleAdmin, models.RoleOperator)

		r.Get("/dashboard", h.Dashboard.GetStats)

		r.Route("/sports", func(r chi.Router) {
			r.Get("/", h.Sport.GetAllSports)
			r.With(editors).Post("/", h.Sport.CreateSport)
			r.Route("/{sportID}", func(r chi.Router) {
				r.Get("/", h.Sport.GetSportByID)
				r.Get("/coaches", h.Sport.GetCoachesOfSport)
				r.Get("/delete-preview", h.Sport.GetDeletePreview)
				r.With(editors).Put("/", h.Sport.UpdateSport)
				r.With(editors).Delete("/", h.Sport.DeleteSport)
			})
		})

		r.Route("/organizations", func(r chi.Router) {
			r.Get("/", h.Organization.List)
			r.With(editors).Post("/", h.Organization.Create)
			r.Route("/{organizationID}", func(r chi.Router) {
				r.Get("/", h.Organization.Get)
				r.With(editors).Put("/", h.Organization.Update)
				r.With(editors).Delete("/", h.Organization.Delete)
			})
		})

		r.Route("/buildings", func(r chi.Router) {
			r.Get("/", h.Building.List)
			r.Get("/types", h.Building.ListTypes)
			r.With(editors).Post("/", h.Building.Create)
			r.Route("/{buildingID}", func(r chi.Router) {
				r.Get("/", h.Building.Get)
				r.With(editors).Put("/", h.Building.Update)
				r.With(editors).Delete("/", h.Building.Delete)
			})
		})

		r.Route("/people", func(r chi.Router) {
			r.Get("/", h.Person.List)
			r.With(editors).Post("/", h.Person.Create)
			r.Route("/{personID}", func(r chi.Router) {
				r.Get("/", h.Person.Get)
				r.Get("/card", h.Person.Card)
				r.Get("/experience", h.Person.ListExperience)

				r.Group(func(r chi.Router) {
					r.Use(editors)
					r.Put("/", h.Person.Update)
					r.Delete("/", h.Person.Delete)
					r.Post("/photo", h.Person.UploadPhoto)
					r.Post("/experience", h.Person.AddExperience)
					r.Delete("/experience/{experienceID}", h.Person.DeleteExperience)
					r.Post("/sports", h.Person.AssignCoachSport)
					r.Delete("/sports/{sportID}", h.Person.RemoveCoachSport)
					r.Post("/trainings", h.Person.AssignTraining)
					r.Delete("/trainings/{sportID}", h.Person.RemoveTraining)
				})
			})
		})

		r.Get("/coaches/all", h.Person.ListAllCoaches)
		r.Get("/coaches", h.Sportsmen.ListCoaches)
		r.Get("/qualifications", h.Sportsmen.ListQualifications)
		r.Route("/sportsmen", func(r chi.Router) {
			r.Get("/", h.Sportsmen.List)
			r.Get("/{personID}/coaches", h.Sportsmen.Coaches)
		})

		r.Route("/competitions", func(r chi.Router) {
			r.Get("/", h.Competition.List)
			r.With(editors).Post("/", h.Competition.Create)
			r.Route("/{competitionID}", func(r chi.Router) {
				r.Get("/", h.Competition.Get)
				r.Get("/participants", h.Competition.ListParticipants)
				r.With(editors).Delete("/", h.Competition.Delete)
				r.With(editors).Post("/participants", h.Competition.AddParticipant)
				r.With(editors).Delete("/participants/{personID}", h.Competition.RemoveParticipant)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"the requested resource could not be found"}`))
	})
}
