package verify

import (
	"fmt"
	"log/slog"
	"net/http"

	"trailmate/internal/auth"
	resp "trailmate/internal/lib/api/response"
	sl "trailmate/internal/lib/logger"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

const successPage = `<!DOCTYPE html>
<html>
<body>
<h1>Email verified</h1>
<p>Your email address has been verified. You can close this page and log in.</p>
</body>
</html>`

// The failure page stays deliberately vague and still ships with status 200;
// the token is the only secret here and we leak nothing about why it failed.
const failurePage = `<!DOCTYPE html>
<html>
<body>
<h1>Verification failed</h1>
<p>This verification link is not valid.</p>
</body>
</html>`

func New(
	log *slog.Logger,
	authService *auth.Auth,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.verify.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		token := chi.URLParam(r, "token")

		accepted, err := authService.VerifyEmail(r.Context(), token)
		if err != nil {
			log.Error("failed to verify email", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		page := successPage
		if !accepted {
			page = failurePage
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	}
}
