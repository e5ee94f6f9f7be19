package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/animovital/semaforo/internal/api"
	"github.com/animovital/semaforo/internal/db"
	"github.com/animovital/semaforo/internal/middleware"
	"github.com/animovital/semaforo/internal/utils"
)

var version = "dev"

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}

	addr := utils.SafeEnv("SEMAFORO_ADDR", ":8080")
	dbPath := os.Getenv("SEMAFORO_DB")

	var store api.Store
	if dbPath != "" {
		sq, err := db.OpenSQLite(dbPath)
		if err != nil {
			log.Fatalf("open sqlite %s: %v", dbPath, err)
		}
		defer sq.Close()
		store = sq
		log.Printf("using sqlite store at %s", dbPath)
	} else {
		store = api.NewMemoryStore()
		log.Println("SEMAFORO_DB not set, using in-memory store")
	}

	router := api.NewRouter(store, api.Config{
		LeadWebhookURL: os.Getenv("SEMAFORO_LEAD_WEBHOOK_URL"),
		GeminiAPIKey:   os.Getenv("SEMAFORO_GEMINI_API_KEY"),
	})

	mux := http.NewServeMux()
	router.Register(mux)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version":"` + version + `"}`))
	})

	if staticDir := os.Getenv("SEMAFORO_STATIC_DIR"); staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}

	// Abandoned sessions are purged nightly after 48 hours.
	c := cron.New()
	if _, err := c.AddFunc("@daily", func() {
		cutoff := time.Now().UTC().Add(-48 * time.Hour)
		n, err := store.DeleteExpiredSessions(cutoff)
		if err != nil {
			log.Printf("session purge: %v", err)
			return
		}
		if n > 0 {
			log.Printf("session purge: removed %d abandoned sessions", n)
		}
	}); err != nil {
		log.Fatalf("schedule session purge: %v", err)
	}
	c.Start()
	defer c.Stop()

	handler := middleware.NoStore(
		middleware.SecureHeaders(
			middleware.CORS(
				middleware.LocaleMiddleware(
					middleware.WithAuth(mux)))))

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("semaforo listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
