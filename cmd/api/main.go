package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	scalargo "github.com/bdpiprava/scalar-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/brillante-joyas/catalog-api/internal/metrics"
	"github.com/brillante-joyas/catalog-api/internal/modules/auth"
	"github.com/brillante-joyas/catalog-api/internal/modules/catalog"
	"github.com/brillante-joyas/catalog-api/internal/modules/source"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	// ── Catalog source ──────────────────────────────────────
	primary, err := buildPrimarySource()
	if err != nil {
		log.Fatal(err)
	}

	var snapshot *source.SnapshotStore
	if path := os.Getenv("SNAPSHOT_DB_PATH"); path != "" {
		snapshot, err = source.NewSnapshotStore(path)
		if err != nil {
			log.Fatal(err)
		}
		defer snapshot.Close()
		log.Printf("Snapshot store at %s", path)
	}

	var src catalog.Source = primary
	if snapshot != nil {
		src = source.NewFallbackSource(primary, snapshot)
	}

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	// ── Auth ────────────────────────────────────────────────
	jwtKey := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtKey) == 0 {
		log.Fatal("JWT_SECRET is required")
	}
	authService := auth.NewService(jwtKey, os.Getenv("ADMIN_PASSWORD_HASH"))
	authHandler := auth.NewHandler(authService)
	authHandler.RegisterRoutes(router)

	// ── Catalog ─────────────────────────────────────────────
	reg := metrics.NewRegistry()
	cache := catalog.NewResultCache(cacheTTL())
	catalogService := catalog.NewService(src, cache, reg)
	catalog.NewHandler(catalogService, authHandler.RequireAdmin).RegisterRoutes(router)

	// ── Observability & docs ────────────────────────────────
	router.Handle("/metrics", reg.Handler())
	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		html, err := scalargo.NewV2(
			scalargo.WithSpecDir("./api"),
			scalargo.WithMetaDataOpts(
				scalargo.WithTitle("Brillante Catalog API"),
			),
		)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, html)
	})

	// ── Start server ────────────────────────────────────────
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("Catalog API server starting on :%s\n", port)
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}

// buildPrimarySource picks the catalog backend: the headless platform, the
// shop database, or the static local JSON catalog.
func buildPrimarySource() (catalog.Source, error) {
	switch os.Getenv("CATALOG_SOURCE") {
	case "platform":
		baseURL := os.Getenv("PLATFORM_BASE_URL")
		if baseURL == "" {
			return nil, fmt.Errorf("PLATFORM_BASE_URL is required for the platform source")
		}
		log.Printf("Using platform catalog at %s", baseURL)
		return source.NewPlatformSource(baseURL), nil
	case "postgres":
		db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
		if err != nil {
			return nil, err
		}
		if err := db.Ping(); err != nil {
			return nil, err
		}
		fmt.Println("Successfully connected to the database!")
		return source.NewPostgresSource(db), nil
	default:
		path := os.Getenv("LOCAL_CATALOG_PATH")
		if path == "" {
			path = "./data/productos.json"
		}
		log.Printf("Using local catalog at %s", path)
		return source.NewLocalSource(path)
	}
}

func cacheTTL() time.Duration {
	if val := os.Getenv("CACHE_TTL_MINUTES"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return time.Duration(parsed) * time.Minute
		}
	}
	return catalog.DefaultCacheTTL
}
