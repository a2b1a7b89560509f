package health

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
)

type Response struct {
	Status string  `json:"status"`
	Uptime float64 `json:"uptime"`
}

func New(startedAt time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, Response{
			Status: "ok",
			Uptime: time.Since(startedAt).Seconds(),
		})
	}
}
