package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"golang.org/x/net/netutil"

	"daritana-backend/internal/auth"
	"daritana-backend/internal/config"
	"daritana-backend/internal/db"
	"daritana-backend/internal/schedule"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg := config.Load()

	database, err := db.Connect(cfg.ConnString())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect DB")
	}
	defer database.Close()
	log.Info().Str("host", cfg.DBHost).Msg("connected to PostgreSQL")

	store := schedule.NewStore(database)

	// Holiday calendar: YAML file if configured, otherwise persisted
	// rows, otherwise the built-in federal table.
	var holidays []schedule.Holiday
	if cfg.HolidayCalendar != "" {
		hs, err := config.LoadHolidayCalendar(cfg.HolidayCalendar)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.HolidayCalendar).Msg("failed to load holiday calendar")
		}
		holidays = hs
		log.Info().Int("holidays", len(hs)).Str("path", cfg.HolidayCalendar).Msg("holiday calendar loaded")
	} else {
		stored, err := store.ListHolidays(context.Background())
		if err != nil {
			log.Warn().Err(err).Msg("holiday query failed, using built-in calendar")
		}
		holidays = schedule.SeedHolidays(stored, err)
		log.Info().Int("holidays", len(holidays)).Bool("persisted", err == nil && len(stored) > 0).Msg("holiday calendar seeded")
	}

	svc := schedule.NewService(log.With().Str("cmp", "schedule").Logger(), store, schedule.NewCalendar(holidays))

	secret := []byte(cfg.JWTSecret)
	authed := auth.New(secret)

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// ----- AUTH API -----
	mux.HandleFunc("/auth/register", auth.RegisterHandler(database, secret))
	mux.HandleFunc("/auth/login", auth.LoginHandler(database, secret))
	mux.HandleFunc("/auth/me", authed.Wrap(auth.MeHandler(database)))

	// ----- TIMELINES API -----
	mux.HandleFunc("/timelines", authed.Wrap(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			schedule.GetTimelinesHandler(store)(w, r)
		case http.MethodPost:
			schedule.CreateTimelineHandler(database, store)(w, r)
		case http.MethodPut:
			schedule.UpdateTimelineHandler(database, store)(w, r)
		case http.MethodDelete:
			schedule.DeleteTimelineHandler(database, store)(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	// ----- SCHEDULE API -----
	mux.HandleFunc("/schedule/critical-path", authed.Wrap(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			schedule.GetCriticalPathHandler(store, svc)(w, r)
		case http.MethodPost:
			schedule.RecalculateHandler(database, store, svc)(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}))
	mux.HandleFunc("/schedule/level", authed.Wrap(schedule.LevelResourcesHandler(database, svc)))
	mux.HandleFunc("/schedule/conflicts", authed.Wrap(schedule.ConflictsHandler(svc)))
	mux.HandleFunc("/schedule/working-days", authed.Wrap(schedule.WorkingDaysHandler(svc)))
	mux.HandleFunc("/schedule/config", authed.Wrap(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			schedule.GetGanttConfigHandler(svc)(w, r)
		case http.MethodPatch:
			schedule.UpdateGanttConfigHandler(svc)(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	// ----- MILESTONES API -----
	mux.HandleFunc("/milestones/generate", authed.Wrap(schedule.GenerateMilestonesHandler(database)))

	// ----- HOLIDAYS API -----
	mux.HandleFunc("/holidays", authed.Wrap(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			schedule.GetHolidaysHandler(svc)(w, r)
		case http.MethodPost:
			schedule.AddHolidayHandler(store, svc)(w, r)
		case http.MethodDelete:
			schedule.RemoveHolidayHandler(store, svc)(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Idempotency-Key", "X-Session-Id", "X-Platform", "X-App-Version"},
		AllowCredentials: true,
	})
	handler := c.Handler(mux)

	addr := fmt.Sprintf(":%d", cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", addr).Msg("listen failed")
	}
	ln = netutil.LimitListener(ln, cfg.MaxConns)

	log.Info().Str("addr", addr).Int("max_conns", cfg.MaxConns).Msg("API server running")
	if err := http.Serve(ln, handler); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
