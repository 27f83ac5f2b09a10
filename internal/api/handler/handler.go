package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/opsflow/internal/api/middleware"
	"github.com/Rrens/opsflow/internal/api/response"
	"github.com/Rrens/opsflow/internal/domain"
)

var validate = validator.New()

func init() {
	// report fields by their JSON names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// decode reads a JSON body into dst and runs struct validation.
// It writes the 400 response itself and reports false on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		response.BadRequest(w, "invalid request body")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			response.BadRequest(w, fieldErrors(validationErrors))
			return false
		}
		response.BadRequest(w, err.Error())
		return false
	}
	return true
}

func fieldErrors(validationErrors validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out[field] = "field is required"
		case "email":
			out[field] = "invalid email format"
		case "min":
			out[field] = "must be at least " + e.Param() + " characters"
		case "max":
			out[field] = "must be at most " + e.Param() + " characters"
		case "oneof":
			out[field] = "must be one of " + e.Param()
		case "uuid":
			out[field] = "must be a valid UUID"
		default:
			out[field] = "validation failed on " + e.Tag()
		}
	}
	return out
}

// uuidParam parses a UUID path parameter, answering 400 when malformed
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		response.BadRequest(w, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// requesterID returns the authenticated principal's ID or answers 401
func requesterID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return uuid.Nil, false
	}
	return userID, true
}

// writeError maps service errors onto HTTP statuses
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		response.BadRequest(w, verr.Fields)
	case errors.Is(err, domain.ErrValidation):
		response.BadRequest(w, message(err, domain.ErrValidation))
	case errors.Is(err, domain.ErrUnauthorized):
		response.Unauthorized(w, message(err, domain.ErrUnauthorized))
	case errors.Is(err, domain.ErrForbidden):
		response.Forbidden(w, domain.ErrForbidden.Error())
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, message(err, domain.ErrNotFound))
	case errors.Is(err, domain.ErrConflict):
		response.Conflict(w, message(err, domain.ErrConflict))
	case errors.Is(err, domain.ErrRateLimited):
		response.TooManyRequests(w, domain.ErrRateLimited.Error())
	case errors.Is(err, domain.ErrUpstream):
		log.Warn().Err(err).Str("request_id", chimw.GetReqID(r.Context())).Msg("Upstream failure")
		response.BadGateway(w, "AI service returned an invalid response")
	default:
		log.Error().Err(err).
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("path", r.URL.Path).
			Msg("Request failed")
		response.InternalError(w, "internal server error")
	}
}

// message strips the sentinel prefix ("conflict: ") from a wrapped error
func message(err, sentinel error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
		return rest
	}
	return msg
}
