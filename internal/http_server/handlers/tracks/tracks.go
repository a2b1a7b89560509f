package tracks

import (
	"context"
	"log/slog"
	"net/http"

	resp "trailmate/internal/lib/api/response"
	"trailmate/internal/lib/id"
	sl "trailmate/internal/lib/logger"
	"trailmate/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type TrackProvider interface {
	Tracks(ctx context.Context) ([]models.Track, error)
}

type TrackSaver interface {
	SaveTrack(ctx context.Context, t models.Track) error
}

type CreateRequest struct {
	Name string `json:"name" validate:"required"`
}

func List(
	log *slog.Logger,
	provider TrackProvider,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.tracks.List"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		tracks, err := provider.Tracks(r.Context())
		if err != nil {
			log.Error("failed to list tracks", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		if tracks == nil {
			tracks = []models.Track{}
		}

		render.JSON(w, r, tracks)
	}
}

func Create(
	log *slog.Logger,
	validate *validator.Validate,
	saver TrackSaver,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.tracks.Create"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req CreateRequest

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

		track := models.Track{
			ID:   id.NewTrackID(),
			Name: req.Name,
		}

		if err := saver.SaveTrack(r.Context(), track); err != nil {
			log.Error("failed to save track", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, track)
	}
}
