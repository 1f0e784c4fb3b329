package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"agendagov/internal/agenda"
	"agendagov/internal/handler"
	"agendagov/internal/middleware"
	"agendagov/internal/store"
)

func main() {
	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	port := env("PORT", "8080")
	dbURL := os.Getenv("DATABASE_URL")

	// update flag policy: omitted flags keep their value unless the
	// legacy reset behavior is asked for explicitly
	policy := agenda.FlagsPreserveOmitted
	if env("UPDATE_FLAG_POLICY", "preserve") == "reset" {
		policy = agenda.FlagsResetOmitted
	}

	var (
		users  agenda.UserRepo
		appts  agenda.AppointmentRepo
		tokens handler.RefreshTokens
	)

	if dbURL != "" {
		pool, err := pgxpool.New(context.Background(), dbURL)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer pool.Close()
		if err := pool.Ping(context.Background()); err != nil {
			log.Fatalf("db ping: %v", err)
		}
		log.Println("connected to postgres")

		// run migrations
		if migration, err := os.ReadFile("db/migrations/001_init.sql"); err != nil {
			log.Printf("migration file not found, skipping: %v", err)
		} else if _, err := pool.Exec(context.Background(), string(migration)); err != nil {
			log.Printf("migration warning: %v", err)
		} else {
			log.Println("migration applied")
		}

		st := store.New(pool)
		users, appts, tokens = st.Users(), st.Appointments(), st.RefreshTokens()
	} else {
		log.Println("DATABASE_URL not set, using in-memory store with demo data")
		mem := store.NewMemory()
		if err := store.SeedDemo(context.Background(), mem); err != nil {
			log.Fatalf("seed: %v", err)
		}
		users, appts, tokens = mem.Users(), mem.Appointments(), mem.RefreshTokens()
	}

	svc := agenda.NewService(users, appts, nil, policy)
	h := handler.New(svc, tokens, secret)
	rl := middleware.NewRateLimiter(5, 10)
	router := handler.NewRouter(h, secret, rl)

	httpSrv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}
	go func() {
		log.Printf("http on :%s", port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http: %v", err)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	log.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
