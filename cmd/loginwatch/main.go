// Package main runs the loginwatch service: form login, role-based
// redirects and new-device login notifications.
package main

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loginwatch/loginwatch/pkg/authsuccess"
	"github.com/loginwatch/loginwatch/pkg/bootstrap"
	"github.com/loginwatch/loginwatch/pkg/config"
	"github.com/loginwatch/loginwatch/pkg/device"
	"github.com/loginwatch/loginwatch/pkg/fingerprint"
	"github.com/loginwatch/loginwatch/pkg/geo"
	"github.com/loginwatch/loginwatch/pkg/iam"
	"github.com/loginwatch/loginwatch/pkg/notification"
	"github.com/loginwatch/loginwatch/pkg/session"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Config{}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	deviceRepo, iamRepo, err := buildRepositories(ctx, cfg)
	if err != nil {
		slog.Error("Failed to set up persistence", "err", err)
		os.Exit(1)
	}

	locator, err := buildLocator(cfg.Geo)
	if err != nil {
		slog.Error("Failed to open geoip database", "path", cfg.Geo.DBPath, "err", err)
		os.Exit(1)
	}

	notifier, err := buildNotifier(cfg.SMTP)
	if err != nil {
		slog.Error("Failed to set up mail client", "err", err)
		os.Exit(1)
	}

	if err := bootstrap.NewSeeder(iamRepo).Run(ctx); err != nil {
		slog.Error("Failed to seed initial data", "err", err)
		os.Exit(1)
	}

	verifier := device.NewVerifier(deviceRepo, locator, fingerprint.New(), notifier,
		device.WithNotificationsEnabled(cfg.Notification.NewLoginEnabled))
	sessions := session.NewManager()
	coordinator := authsuccess.NewCoordinator(sessions, verifier)
	iamService := iam.NewService(iamRepo)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/login", loginHandler(iamService, coordinator, sessions))
	r.Get("/console.html", pageHandler("Admin Console"))
	r.Get("/management.html", pageHandler("Management Console"))
	r.Get("/homepage.html", homepageHandler(sessions))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	slog.Info("Starting loginwatch", "addr", addr, "persistence", cfg.Server.PersistenceType,
		"newLoginNotification", cfg.Notification.NewLoginEnabled)
	if err := http.ListenAndServe(addr, r); err != nil {
		slog.Error("Server stopped", "err", err)
		os.Exit(1)
	}
}

func buildRepositories(ctx context.Context, cfg config.Config) (device.Repository, iam.Repository, error) {
	switch cfg.Server.PersistenceType {
	case "postgres", "postgresql":
		pool, err := pgxpool.New(ctx, cfg.Db.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create db pool: %w", err)
		}
		deviceRepo, err := device.NewRepository(cfg.Server.PersistenceType, device.RepositoryConfig{DB: pool})
		if err != nil {
			return nil, nil, err
		}
		return deviceRepo, iam.NewPostgresRepository(pool), nil
	case "inmem", "memory":
		return device.NewInMemRepository(), iam.NewInMemRepository(), nil
	default:
		return nil, nil, fmt.Errorf("unsupported persistence type: %s", cfg.Server.PersistenceType)
	}
}

func buildLocator(cfg config.GeoConfig) (geo.Locator, error) {
	if cfg.DBPath == "" {
		slog.Info("No geoip database configured, all locations resolve to UNKNOWN")
		return geo.Unresolved{}, nil
	}
	return geo.NewMaxMindLocator(cfg.DBPath, cfg.ExemptIPs)
}

func buildNotifier(cfg config.SMTPConfig) (notification.Notifier, error) {
	if cfg.Host == "" {
		slog.Info("No SMTP host configured, notifications are recorded but not delivered")
		return &notification.MockNotifier{}, nil
	}
	return notification.NewEmailNotifier(notification.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		TLS:      cfg.TLS,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
	})
}

func loginHandler(iamService *iam.Service, coordinator *authsuccess.Coordinator, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "invalid form"})
			return
		}

		email := r.PostFormValue("email")
		password := r.PostFormValue("password")

		ident, err := iamService.Authenticate(r.Context(), email, password)
		if err != nil {
			if errors.Is(err, iam.ErrInvalidCredentials) || errors.Is(err, iam.ErrUserDisabled) {
				// Leave the error marker for the login page; the next
				// success clears it.
				if sess, ok := sessions.Lookup(r); ok {
					sessions.SetAttribute(sess, session.AuthErrorAttribute, err.Error())
				}
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, map[string]string{"error": "invalid credentials"})
				return
			}
			slog.Error("Authentication failed", "email", email, "err", err)
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "internal error"})
			return
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		if err := coordinator.OnSuccess(ww, r, ident); err != nil {
			if errors.Is(err, authsuccess.ErrVerificationFailed) {
				// Redirect is already on the wire; operator-visible only.
				return
			}
			slog.Error("Post-login handling failed", "email", email, "err", err)
			if ww.Status() == 0 {
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, map[string]string{"error": "internal error"})
			}
		}
	}
}

func pageHandler(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<html><head><title>%s</title></head><body><h1>%s</h1></body></html>", title, title)
	}
}

func homepageHandler(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("user")
		if name == "" {
			if sess, ok := sessions.Lookup(r); ok {
				if user, ok := sessions.GetAttribute(sess, session.UserAttribute); ok {
					name, _ = user.(string)
				}
			}
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<html><head><title>Homepage</title></head><body><h1>Welcome %s</h1></body></html>", html.EscapeString(name))
	}
}
