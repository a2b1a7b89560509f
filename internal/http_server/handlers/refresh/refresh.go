package refresh

import (
	"errors"
	"log/slog"
	"net/http"

	"trailmate/internal/auth"
	resp "trailmate/internal/lib/api/response"
	sl "trailmate/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	RefreshToken   string `json:"refreshToken" validate:"required"`
	RefreshTokenID string `json:"refreshTokenId" validate:"required"`
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	authService *auth.Auth,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.refresh.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		pair, err := authService.Exchange(r.Context(), req.RefreshToken, req.RefreshTokenID, r.RemoteAddr, r.UserAgent())
		if err != nil {
			// Expiry is folded into the same boundary code on purpose.
			if errors.Is(err, auth.ErrInvalidRefreshToken) || errors.Is(err, auth.ErrExpiredToken) {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.AuthError(resp.CodeInvalidRefreshToken))

				return
			}
			if errors.Is(err, auth.ErrEmailNotVerified) {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.AuthError(resp.CodeEmailNotVerified))

				return
			}

			log.Error("failed to refresh tokens", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, pair)
	}
}
