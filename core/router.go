package core

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps carries the collaborators the HTTP layer composes. Test
// setups swap in fakes; cmd/api wires the real implementations.
type RouterDeps struct {
	Auth         *AuthService
	Users        UserRepository
	Issuer       Issuer
	Metrics      *Metrics
	Registry     *prometheus.Registry // nil disables /metrics
	DB           Pinger               // nil reports database: error on /admin/status
	Sessions     SessionStore         // nil for the token strategy
	LoginLimiter *LoginRateLimiter    // nil disables login rate limiting
}

// NewRouter constructs the Gin engine with routes wired.
func NewRouter(cfg Config, store *sessions.CookieStore, deps RouterDeps) *gin.Engine {
	startedAt := time.Now()
	r := gin.Default()

	// Global middleware: origin/CORS -> session -> CSRF
	r.Use(OriginRefererMiddleware(cfg))
	r.Use(SessionMiddleware(cfg, store))
	r.Use(CSRFMiddleware(cfg, store))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if deps.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")

		auth.POST("/register", func(c *gin.Context) {
			var req RegisterInput
			if err := c.ShouldBindJSON(&req); err != nil {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json")
				return
			}

			user, artifact, err := deps.Auth.Register(c.Request.Context(), req)
			if err != nil {
				respondServiceError(c, err, cfg.Debug)
				return
			}
			if artifact != "" {
				if err := setArtifactCookie(c, cfg, store, artifact); err != nil {
					respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to set session")
					return
				}
			}
			c.JSON(http.StatusCreated, gin.H{"message": "User created successfully", "user": user})
		})

		login := func(c *gin.Context) {
			var req struct {
				Email    string `json:"email"`
				Password string `json:"password"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json")
				return
			}

			user, artifact, err := deps.Auth.Login(c.Request.Context(), req.Email, req.Password)
			if err != nil {
				respondServiceError(c, err, cfg.Debug)
				return
			}

			if err := setArtifactCookie(c, cfg, store, artifact); err != nil {
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to set session")
				return
			}
			c.JSON(http.StatusOK, gin.H{"message": "Login successful", "user": user})
		}
		if deps.LoginLimiter != nil {
			auth.POST("/login", deps.LoginLimiter.Middleware(), login)
		} else {
			auth.POST("/login", login)
		}

		auth.POST("/logout", func(c *gin.Context) {
			artifact := artifactFromContext(c)
			if err := deps.Auth.Logout(c.Request.Context(), artifact); err != nil {
				// Logout is idempotent towards the client; log and move on.
				log.Printf("logout: invalidate artifact: %v", err)
			}
			if err := clearArtifactCookie(c, cfg, store); err != nil {
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to clear session")
				return
			}
			c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
		})

		auth.GET("/check-auth", func(c *gin.Context) {
			artifact := artifactFromContext(c)
			user, err := deps.Auth.CheckAuth(c.Request.Context(), artifact)
			if err != nil {
				// The probe never errors to the caller.
				log.Printf("check-auth: %v", err)
				c.JSON(http.StatusOK, gin.H{"authenticated": false})
				return
			}
			if user == nil {
				c.JSON(http.StatusOK, gin.H{"authenticated": false})
				return
			}
			c.JSON(http.StatusOK, gin.H{"authenticated": true, "user": user})
		})

		requireAuth := RequireAuth(cfg, store, deps.Issuer, deps.Metrics)

		api.GET("/users/me", requireAuth, func(c *gin.Context) {
			p, _ := PrincipalFromContext(c)
			u, err := deps.Users.FindByID(c.Request.Context(), p.UserID)
			if err != nil {
				respondServiceError(c, err, cfg.Debug)
				return
			}
			if u == nil {
				respondServiceError(c, errors.New("principal user vanished"), cfg.Debug)
				return
			}
			c.JSON(http.StatusOK, gin.H{"user": u.Sanitize()})
		})

		api.GET("/users", requireAuth, AdminOnly(), func(c *gin.Context) {
			page, perPage, err := parsePagination(c.Query("page"), c.Query("per_page"))
			if err != nil {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
				return
			}
			items, total, err := deps.Users.List(c.Request.Context(), page, perPage)
			if err != nil {
				respondServiceError(c, err, cfg.Debug)
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"items":       items,
				"page":        page,
				"per_page":    perPage,
				"total_items": total,
				"total_pages": calcTotalPages(total, perPage),
			})
		})

		admin := api.Group("/admin", requireAuth, AdminOnly())
		admin.GET("/status", func(c *gin.Context) {
			st := CollectSystemStatus(c.Request.Context(), deps.DB, deps.Sessions, startedAt)
			c.JSON(http.StatusOK, st)
		})
	}

	return r
}

func parsePagination(pageStr, perPageStr string) (page, perPage int, err error) {
	page, perPage = 1, 20
	if pageStr != "" {
		page, err = strconv.Atoi(pageStr)
		if err != nil || page <= 0 {
			return 0, 0, errors.New("invalid page")
		}
	}
	if perPageStr != "" {
		perPage, err = strconv.Atoi(perPageStr)
		if err != nil || perPage <= 0 || perPage > 100 {
			return 0, 0, errors.New("invalid per_page")
		}
	}
	return page, perPage, nil
}

func calcTotalPages(total, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}
