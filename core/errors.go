package core

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	// ErrInvalidCredentials is returned for a wrong password or an
	// unknown email. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound is returned when a referenced user no longer exists.
	ErrUserNotFound = errors.New("user not found")
)

// Artifact verification failures. The guard maps these to 401 and,
// for expired/malformed, instructs the client to drop its cookie.
var (
	ErrArtifactNotFound  = errors.New("artifact not found")
	ErrArtifactExpired   = errors.New("artifact expired")
	ErrArtifactMalformed = errors.New("artifact malformed")
	ErrUnknownUser       = errors.New("artifact user no longer exists")
)

// ValidationError reports malformed or missing input. It is always
// raised before any store mutation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError reports a uniqueness violation on a user field.
type ConflictError struct {
	Field   string // "email" or "phone_number"
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// respondError sends unified error payload {"error": {"code", "message"}}.
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}

// respondServiceError translates a service-layer error into the HTTP
// taxonomy. Handlers call this for any error they do not special-case.
// Internal detail is withheld unless debug is set.
func respondServiceError(c *gin.Context, err error, debug bool) {
	var ve *ValidationError
	var ce *ConflictError
	switch {
	case errors.As(err, &ve):
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", ve.Message)
	case errors.As(err, &ce):
		respondError(c, http.StatusConflict, "CONFLICT", ce.Message)
	case errors.Is(err, ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, ErrUserNotFound):
		respondError(c, http.StatusNotFound, "NOT_FOUND", "user not found")
	case errors.Is(err, ErrArtifactNotFound), errors.Is(err, ErrArtifactExpired),
		errors.Is(err, ErrArtifactMalformed), errors.Is(err, ErrUnknownUser):
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
	default:
		log.Printf("internal error: %v", err)
		msg := "internal server error"
		if debug {
			msg = err.Error()
		}
		respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", msg)
	}
}
