package main

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sharewall/backend/internal/config"
	"github.com/sharewall/backend/internal/feed"
	"github.com/sharewall/backend/internal/handler"
	"github.com/sharewall/backend/internal/logging"
	"github.com/sharewall/backend/internal/metrics"
	"github.com/sharewall/backend/internal/repository"
	"github.com/sharewall/backend/internal/service"
	"github.com/sharewall/backend/internal/storage"
	"github.com/sharewall/backend/pkg/auth"
	"github.com/sharewall/backend/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	logging.Setup(cfg.LogLevel)
	if err != nil {
		logging.Fatal("invalid configuration", "error", err)
	}
	if cfg.SessionSecret == config.DefaultSessionSecret {
		slog.Warn("SESSION_SECRET is not set; using the development secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("failed to connect to database", "error", err)
	}
	defer pool.Close()

	shareRepo := repository.NewPgShareRepository(pool)
	contactRepo := repository.NewPgContactRepository(pool)
	adminRepo := repository.NewPgAdminRepository(pool)

	m := metrics.New()
	hub := feed.NewHub(cfg.AllowedOrigins)
	go hub.Run(ctx)

	mux := http.NewServeMux()

	// 画像ストレージ（Cloudinary 未設定の場合はローカルに保存して /uploads/ で配信）
	var store storage.Storage
	if cfg.CloudinaryEnabled() {
		client := cloudinary.NewClient(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		store = storage.NewCloudinaryStorage(client, cfg.CloudinaryFolder)
		slog.Info("image storage: cloudinary", "cloud", cfg.CloudinaryCloudName, "folder", cfg.CloudinaryFolder)
	} else {
		local := storage.NewLocalStorage(cfg.UploadDir, cfg.UploadURLPrefix)
		store = local
		if strings.HasPrefix(cfg.UploadURLPrefix, "/") {
			prefix := cfg.UploadURLPrefix + "/"
			mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(local.BaseDir()))))
		}
		slog.Info("image storage: local", "dir", cfg.UploadDir, "url_prefix", cfg.UploadURLPrefix)
	}

	sessionSecret := auth.SessionSecretBytes(cfg.SessionSecret)
	moderation := service.NewModerationService(shareRepo, store, hub, m, service.ModerationConfig{
		FeedLimit:     cfg.FeedLimit,
		MaxImageBytes: cfg.MaxUploadBytes,
	})
	contactService := service.NewContactService(contactRepo, m)
	adminAuth := service.NewAdminAuthService(adminRepo, sessionSecret, cfg.TokenTTL, m)

	if cfg.SeedAdmin() {
		if err := adminAuth.EnsureAdmin(ctx, cfg.AdminUser, cfg.AdminPass); err != nil {
			logging.Fatal("failed to ensure admin", "error", err)
		}
	}

	h := handler.New(pool)
	shareHandler := handler.NewShareHandler(moderation, cfg.MaxUploadBytes)
	contactHandler := handler.NewContactHandler(contactService)
	adminHandler := handler.NewAdminHandler(adminAuth)

	// 投稿・ログインは IP 単位でレート制限
	limiter := handler.NewRateLimiter(cfg.RateLimitPerMinute)
	go pruneLoop(ctx, limiter)
	limited := func(fn http.HandlerFunc) http.Handler {
		return limiter.Middleware(fn)
	}
	requireAdmin := func(fn http.HandlerFunc) http.Handler {
		return auth.RequireAdmin(sessionSecret)(fn)
	}

	mux.HandleFunc("GET /health", h.Health)
	mux.Handle("GET /metrics", m.Handler())

	// 公開 API
	mux.Handle("POST /shares", limited(shareHandler.Submit))
	mux.HandleFunc("GET /shares/published", shareHandler.PublishedFeed)
	mux.HandleFunc("GET /shares/stream", hub.ServeWS)
	mux.Handle("POST /contacts", limited(contactHandler.Submit))
	mux.Handle("POST /admin/login", limited(adminHandler.Login))

	// 管理者 API（Bearer トークン必須）
	mux.HandleFunc("POST /admin/verify-token", adminHandler.VerifyToken)
	mux.Handle("GET /admin/shares", requireAdmin(shareHandler.AdminList))
	mux.Handle("POST /admin/shares/publish/{id}", requireAdmin(shareHandler.Publish))
	mux.Handle("POST /admin/shares/unpublish/{id}", requireAdmin(shareHandler.Unpublish))
	mux.Handle("DELETE /admin/shares/{id}", requireAdmin(shareHandler.Delete))
	mux.Handle("GET /admin/contacts", requireAdmin(contactHandler.AdminList))
	mux.Handle("DELETE /admin/contacts/{id}", requireAdmin(contactHandler.Delete))

	var root http.Handler = mux
	root = handler.CORS(cfg.AllowedOrigins)(root)
	root = handler.SecurityHeaders(root)
	root = handler.RequestLogger(m)(root)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal("server error", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func pruneLoop(ctx context.Context, rl *handler.RateLimiter) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Prune()
		}
	}
}

