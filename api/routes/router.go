package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/grupomotriz/catalogo-backend/api/controllers"
	"github.com/grupomotriz/catalogo-backend/api/middleware"
	"github.com/grupomotriz/catalogo-backend/internal/brands"
	"github.com/grupomotriz/catalogo-backend/internal/catalog"
	"github.com/grupomotriz/catalogo-backend/internal/colors"
	"github.com/grupomotriz/catalogo-backend/internal/features"
	"github.com/grupomotriz/catalogo-backend/internal/media"
	"github.com/grupomotriz/catalogo-backend/internal/vehicles"
	"github.com/grupomotriz/catalogo-backend/pkg/config"
	"github.com/grupomotriz/catalogo-backend/pkg/logger"
)

// Pingers collect the dependency health checks exposed by /health/ready.
type Pingers struct {
	DB    controllers.Pinger
	Redis controllers.Pinger
	GCS   controllers.Pinger
}

type Services struct {
	Vehicles vehicles.Service
	Catalog  catalog.Service
	Media    media.Service
	Colors   colors.Service
	Brands   brands.Service
	Features features.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	pingers Pingers,
	services Services,
	promRegistry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers.DB, pingers.Redis, pingers.GCS))
	})

	if promRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	}

	maxUpload := cfg.Media.MaxUploadBytes()

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		// Reads are open to every authenticated role.
		r.Get("/vehicles", controllers.ListVehicles(services.Vehicles, logg))
		r.Get("/vehicles/slug/{slug}", controllers.GetVehicleBySlug(services.Vehicles, logg))
		r.Get("/vehicles/{vehicleId}", controllers.GetVehicle(services.Vehicles, logg))
		r.Get("/vehicles/{vehicleId}/colors", controllers.ListVehicleColors(services.Catalog, logg))
		r.Get("/vehicles/{vehicleId}/images", controllers.ListVehicleImages(services.Media, logg))
		r.Get("/vehicles/{vehicleId}/videos", controllers.ListVehicleVideos(services.Media, logg))
		r.Get("/colors", controllers.ListColors(services.Colors, logg))
		r.Get("/colors/{colorId}", controllers.GetColor(services.Colors, logg))
		r.Get("/brands", controllers.ListBrands(services.Brands, logg))
		r.Get("/brands/{brandId}", controllers.GetBrand(services.Brands, logg))
		r.Get("/features", controllers.ListFeatures(services.Features, logg))

		// Writes require an admin or editor role.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireMutator(logg))

			r.Post("/vehicles", controllers.CreateVehicle(services.Vehicles, logg))
			r.Patch("/vehicles/{vehicleId}", controllers.UpdateVehicle(services.Vehicles, logg))
			r.Delete("/vehicles/{vehicleId}", controllers.DeleteVehicle(services.Vehicles, logg))

			r.Put("/vehicles/{vehicleId}/colors", controllers.ReassignVehicleColors(services.Catalog, logg))
			r.Put("/vehicles/{vehicleId}/features", controllers.SetVehicleFeatures(services.Features, logg))

			r.Post("/vehicles/{vehicleId}/images", controllers.UploadVehicleImage(services.Media, maxUpload, logg))
			r.Post("/vehicles/{vehicleId}/videos", controllers.UploadVehicleVideo(services.Media, maxUpload, logg))
			r.Delete("/media/images/{imageId}", controllers.DeleteVehicleImage(services.Media, logg))
			r.Delete("/media/videos/{videoId}", controllers.DeleteVehicleVideo(services.Media, logg))

			r.Post("/colors", controllers.CreateColor(services.Colors, logg))
			r.Patch("/colors/{colorId}", controllers.UpdateColor(services.Colors, logg))
			r.Delete("/colors/{colorId}", controllers.DeleteColor(services.Colors, logg))

			r.Post("/brands", controllers.CreateBrand(services.Brands, logg))
			r.Patch("/brands/{brandId}", controllers.UpdateBrand(services.Brands, logg))
			r.Delete("/brands/{brandId}", controllers.DeleteBrand(services.Brands, logg))

			r.Post("/features", controllers.CreateFeature(services.Features, logg))
			r.Delete("/features/{featureId}", controllers.DeleteFeature(services.Features, logg))
		})
	})

	return r
}
