package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"melhado-backend/internal/auth"
	"melhado-backend/internal/config"
	"melhado-backend/internal/database"
	"melhado-backend/internal/handlers"
	"melhado-backend/internal/inspection"
	"melhado-backend/internal/middleware"
	"melhado-backend/internal/services"
	"melhado-backend/internal/storage"
	"melhado-backend/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func fatal(step string, err error) {
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Printf("❌ FATAL ERROR: %s", step)
	log.Printf("   Error: %v", err)
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Fatal(err)
}

func main() {
	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("🚀 MELHADO BACKEND SERVER STARTING")
	log.Println("═══════════════════════════════════════════════════════════════════")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("📂 Loading configuration...")
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fatal("Configuration invalid", err)
	}
	log.Println("✅ Configuration loaded")

	log.Println("🔌 Connecting to database...")
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		fatal("Database connection failed", err)
	}
	defer db.Close()
	log.Println("✅ Database connection established")

	log.Println("🔄 Running database migrations...")
	if err := database.Migrate(db); err != nil {
		fatal("Database migrations failed", err)
	}
	log.Println("✅ Database migrations completed")

	if cfg.SeedDemoData {
		log.Println("🌱 Seeding database with demo data...")
		if err := database.SeedUsers(db, cfg.DemoPassword); err != nil {
			fatal("User seeding failed", err)
		}
		if err := database.SeedDemoData(db); err != nil {
			fatal("Property seeding failed", err)
		}
		log.Println("✅ Demo data seeded")
	}

	store := database.NewStore(db)

	// Checklist templates, hot-reloaded when a templates file is configured
	catalog, err := inspection.NewCatalogSource(cfg.TemplatesFile)
	if err != nil {
		fatal("Checklist templates invalid", err)
	}
	go func() {
		if err := catalog.Watch(ctx); err != nil {
			log.Printf("⚠️  Template watcher stopped: %v", err)
		}
	}()

	// Firebase backs both push messaging and, optionally, file storage
	app, err := services.NewFirebaseApp(ctx, cfg.FirebaseCredentialsFile, cfg.FirebaseCredentialsBase64, cfg.FirebaseBucket)
	if err != nil {
		log.Printf("⚠️  Failed to initialize Firebase: %v (push notifications disabled)", err)
	}

	var push services.Notifier
	if app != nil {
		fcm, err := services.NewFCMService(ctx, app)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM: %v (push notifications disabled)", err)
		} else {
			push = fcm
			log.Println("✅ Firebase Cloud Messaging initialized")
		}
	} else {
		log.Println("⚠️  Firebase credentials not found (push notifications disabled)")
	}

	var files storage.FileStore
	switch cfg.StorageBackend {
	case "firebase":
		if app == nil {
			fatal("Storage backend unavailable", errors.New("firebase storage needs Firebase credentials"))
		}
		files, err = storage.NewFirebaseStore(ctx, app, cfg.FirebaseBucket)
	default:
		files, err = storage.NewLocalStore(cfg.UploadDir, "/uploads")
	}
	if err != nil {
		fatal("Storage backend unavailable", err)
	}
	log.Printf("✅ File storage: %s", cfg.StorageBackend)

	windows := cfg.Expiry.Windows()
	notifications := services.NewNotificationService(store, push, windows)
	if cfg.ExpiryScanInterval > 0 {
		go notifications.RunExpiryScans(ctx, cfg.ExpiryScanInterval)
		log.Printf("✅ Expiry scans every %s", cfg.ExpiryScanInterval)
	}

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := store.DeleteExpiredSessions(ctx, time.Now().Unix()); err != nil {
					log.Printf("⚠️  Session cleanup failed: %v", err)
				} else if n > 0 {
					log.Printf("🧹 Removed %d expired sessions", n)
				}
			}
		}
	}()

	// Initialize WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()
	log.Println("✅ WebSocket hub started")

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	api := &handlers.API{
		Store:    store,
		Authn:    auth.NewAuthenticator(store, cfg.LoginDelay),
		Tokens:   tokens,
		Builder:  inspection.NewBuilder(catalog),
		Files:    files,
		Events:   wsHub,
		Notifier: notifications,
		Scanner:  notifications,
		Windows:  windows,
	}

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// WebSocket endpoint (token in query param)
	r.With(middleware.AuthWS(tokens, store)).Get("/ws", websocket.HandleWebSocket(wsHub))

	// Evidence photos from the local backend. Documents and reports are only
	// served through the download endpoint, which checks access roles.
	if local, ok := files.(*storage.LocalStore); ok {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(local.Root)))
		r.With(middleware.Auth(tokens, store)).Handle("/uploads/inspections/*", fs)
	}

	api.Routes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("🛑 Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("⚠️  Shutdown error: %v", err)
		}
	}()

	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("✅ ALL INITIALIZATION COMPLETE")
	log.Printf("🚀 Server starting on http://localhost:%s", cfg.Port)
	log.Println("🔌 Ready to accept requests!")
	log.Println("═══════════════════════════════════════════════════════════════════")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fatal("Server failed to start", err)
	}
}
