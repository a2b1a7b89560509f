package me

import (
	"errors"
	"log/slog"
	"net/http"

	"trailmate/internal/auth"
	resp "trailmate/internal/lib/api/response"
	sl "trailmate/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

func New(
	log *slog.Logger,
	authService *auth.Auth,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.me.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user, err := authService.Me(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			if errors.Is(err, auth.ErrEmailNotVerified) {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.AuthError(resp.CodeEmailNotVerified))

				return
			}
			if errors.Is(err, auth.ErrInvalidAccessToken) || errors.Is(err, auth.ErrExpiredToken) {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.AuthError(resp.CodeInvalidAccessToken))

				return
			}

			log.Error("failed to resolve current user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, user.Public())
	}
}
