package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-referral-api/internal/application/auth"
	"github.com/go-referral-api/internal/application/dashboard"
	"github.com/go-referral-api/internal/application/order"
	"github.com/go-referral-api/internal/application/product"
	"github.com/go-referral-api/internal/application/referral"
	"github.com/go-referral-api/internal/application/session"
	"github.com/go-referral-api/internal/application/setting"
	"github.com/go-referral-api/internal/application/shop"
	"github.com/go-referral-api/internal/application/user"
	"github.com/go-referral-api/internal/application/wallet"
	"github.com/go-referral-api/internal/config"
	"github.com/go-referral-api/internal/domain"
	"github.com/go-referral-api/internal/pkg/logx"
	"github.com/go-referral-api/internal/transport/http/handler"
	appmiddleware "github.com/go-referral-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	if cfg.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(logx.Middleware(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-VERIFY"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10, on endpoints that send mail or check passwords.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	sessionSvc := session.NewService(session.ServiceDeps{
		UserRepo:    deps.UserRepo,
		SessionRepo: deps.SessionRepo,
		JWTProvider: deps.JWTProvider,
		Google:      deps.Google,
	})
	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:         deps.UserRepo,
		OtpRepo:          deps.OtpRepo,
		RegistrationRepo: deps.RegistrationRepo,
		ReferralRepo:     deps.ReferralRepo,
		SessionRepo:      deps.SessionRepo,
		TokenIssuer:      sessionSvc,
		Mailer:           deps.Mailer,
		SMSSender:        deps.SMSSender,
		Broadcaster:      deps.Broadcaster,
		FrontendURL:      cfg.FrontendURL,
		AllowAdminSignup: cfg.AllowAdminSignup,
	})
	userSvc := user.NewService(user.ServiceDeps{UserRepo: deps.UserRepo, SessionRepo: deps.SessionRepo})
	referralSvc := referral.NewService(referral.ServiceDeps{ReferralRepo: deps.ReferralRepo})
	walletSvc := wallet.NewService(wallet.ServiceDeps{
		UserRepo:    deps.UserRepo,
		WalletRepo:  deps.WalletRepo,
		TopUpRepo:   deps.TopUpRepo,
		PhonePe:     deps.PhonePe,
		Broadcaster: deps.Broadcaster,
	})
	productSvc := product.NewService(product.ServiceDeps{ProductRepo: deps.ProductRepo, Objects: deps.Objects})
	shopSvc := shop.NewService(shop.ServiceDeps{
		ProductRepo: deps.ProductRepo,
		OrderRepo:   deps.OrderRepo,
		UserRepo:    deps.UserRepo,
		Razorpay:    deps.Razorpay,
	})
	orderSvc := order.NewService(order.ServiceDeps{OrderRepo: deps.OrderRepo})
	dashboardSvc := dashboard.NewService(dashboard.ServiceDeps{UserRepo: deps.UserRepo, OrderRepo: deps.OrderRepo})
	settingSvc := setting.NewService(setting.ServiceDeps{SettingRepo: deps.SettingRepo})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc, sessionSvc)
	userH := handler.NewUserHandler(userSvc)
	referralH := handler.NewReferralHandler(referralSvc)
	walletH := handler.NewWalletHandler(walletSvc)
	shopH := handler.NewShopHandler(productSvc, shopSvc)
	orderH := handler.NewOrderHandler(orderSvc)
	productH := handler.NewProductHandler(productSvc)
	dashboardH := handler.NewDashboardHandler(dashboardSvc)
	settingH := handler.NewSettingHandler(settingSvc)
	realtimeH := handler.NewRealtimeHandler(deps.Broadcaster)

	authMw := appmiddleware.Auth(sessionSvc)

	r.Get("/health", healthH.Health)

	r.Route("/api", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(sensitiveRL.Limit)
			r.Post("/auth/register", authH.Register)
			r.Post("/auth/verify-otp", authH.VerifyOTP)
			r.Post("/auth/login", authH.Login)
			r.Post("/auth/admin-login", authH.AdminLogin)
			r.Post("/auth/google", authH.GoogleLogin)
			r.Post("/auth/resend-otp", authH.ResendOTP)
			r.Post("/auth/forgot-password", authH.ForgotPassword)
			r.Post("/auth/reset-password", authH.ResetPassword)
		})
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.OptionalAuth(sessionSvc))
			r.Get("/shop/products", shopH.Products)
			r.Get("/shop/products/{id}", shopH.Product)
		})
		r.Post("/wallet/phonepe/callback", walletH.PhonePeCallback)

		r.With(appmiddleware.QueryToken, authMw).Get("/realtime/stream", realtimeH.Stream)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Post("/auth/logout", authH.Logout)
			r.Get("/auth/me", authH.Me)
			r.Get("/referrals/me", referralH.Mine)
			r.Get("/wallet/balance", walletH.Balance)
			r.Get("/wallet/transactions", walletH.Transactions)
			r.Post("/wallet/add", walletH.Add)
			r.Post("/shop/buy/initiate", shopH.Initiate)
			r.Post("/shop/buy/verify", shopH.Verify)
			r.Get("/orders", orderH.Mine)

			// Admin-only routes
			r.Route("/admin", func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/users", userH.List)
				r.Get("/users/{id}", userH.Get)
				r.Put("/users/{id}", userH.Update)
				r.Delete("/users/{id}", userH.Delete)
				r.Post("/users/{id}/wallet/credit", walletH.Credit)

				r.Get("/orders", orderH.List)
				r.Get("/orders/{id}", orderH.Get)
				r.Put("/orders/{id}", orderH.Update)
				r.Delete("/orders/{id}", orderH.Delete)

				r.Post("/products", productH.Create)
				r.Get("/products", productH.List)
				r.Put("/products/{id}", productH.Update)
				r.Delete("/products/{id}", productH.Delete)
				r.Post("/products/{id}/image", productH.UploadImage)

				r.Get("/dashboard/metrics", dashboardH.Metrics)
				r.Get("/dashboard/user-growth", dashboardH.UserGrowth)
				r.Get("/dashboard/order-analytics", dashboardH.OrderAnalytics)

				r.Get("/settings", settingH.List)
				r.Get("/settings/{key}", settingH.Get)
				r.Put("/settings/{key}", settingH.Put)
			})
		})
	})

	return r
}
