package core

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const principalContextKey = "principal"

// RequireAuth gates protected routes. It extracts the credential
// artifact from the session cookie, asks the issuer to verify it, and
// either attaches the resulting Principal to the request context or
// rejects with 401. Expired and malformed artifacts additionally get
// the cookie cleared so the client stops resending them.
func RequireAuth(cfg Config, store *sessions.CookieStore, issuer Issuer, metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		artifact := artifactFromContext(c)
		if artifact == "" {
			respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
			c.Abort()
			return
		}

		user, err := issuer.Verify(c.Request.Context(), artifact)
		if err != nil {
			if isVerifyFailure(err) {
				metrics.RecordVerifyFailure(verifyFailureReason(err))
				if errors.Is(err, ErrArtifactExpired) || errors.Is(err, ErrArtifactMalformed) {
					_ = clearArtifactCookie(c, cfg, store)
				}
				respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", verifyFailureReason(err))
			} else {
				respondServiceError(c, err, cfg.Debug)
			}
			c.Abort()
			return
		}

		c.Set(principalContextKey, Principal{
			UserID:   user.ID,
			Email:    user.Email,
			FullName: user.FullName,
			Role:     user.Role,
		})
		c.Next()
	}
}

// AdminOnly requires an authenticated principal with the admin role.
// Must run after RequireAuth.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFromContext(c)
		if !ok || p.Role != "admin" {
			respondError(c, http.StatusForbidden, "FORBIDDEN", "admin privileges required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// PrincipalFromContext returns the principal attached by RequireAuth.
func PrincipalFromContext(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalContextKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

// artifactFromContext reads the artifact value out of the session
// placed by SessionMiddleware. Empty string when absent.
func artifactFromContext(c *gin.Context) string {
	sessionAny, _ := c.Get(sessionContextKey)
	sess, _ := sessionAny.(*sessions.Session)
	if sess == nil {
		return ""
	}
	artifact, _ := sess.Values[artifactSessionValue].(string)
	return artifact
}

// setArtifactCookie rotates the session and stores the artifact in it.
func setArtifactCookie(c *gin.Context, cfg Config, store *sessions.CookieStore, artifact string) error {
	sess, err := store.Get(c.Request, sessionName)
	if err != nil {
		return err
	}
	sess.Values = map[interface{}]interface{}{}
	sess.Values[artifactSessionValue] = artifact
	applySessionOptions(cfg, sess)
	return sess.Save(c.Request, c.Writer)
}

// clearArtifactCookie empties the session and expires the cookie.
func clearArtifactCookie(c *gin.Context, cfg Config, store *sessions.CookieStore) error {
	sess, err := store.Get(c.Request, sessionName)
	if err != nil {
		return err
	}
	sess.Values = map[interface{}]interface{}{}
	applySessionOptions(cfg, sess)
	sess.Options.MaxAge = -1 // Must be set AFTER applySessionOptions to properly delete cookie
	return sess.Save(c.Request, c.Writer)
}
