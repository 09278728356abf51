package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/nyashahama/program-matcher-backend/internal/quiz"
	"github.com/nyashahama/program-matcher-backend/internal/session"
	"github.com/nyashahama/program-matcher-backend/internal/store"
)

// respondSessionErr maps quiz, session and store sentinels to status codes.
// Anything unrecognised is a logged 500.
func (s *Server) respondSessionErr(w http.ResponseWriter, r *http.Request, err error) {
	var limited *session.RateLimitError
	switch {
	case errors.As(err, &limited):
		secs := int(math.Ceil(limited.RetryAfter.Seconds()))
		if secs < 1 {
			secs = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		respondErr(w, http.StatusTooManyRequests, limited.Error())
	case errors.Is(err, quiz.ErrUnknownVersion),
		errors.Is(err, quiz.ErrUnknownQuestion),
		errors.Is(err, quiz.ErrInvalidAnswer):
		respondErr(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrNotFound), errors.Is(err, store.ErrResultNotFound):
		respondErr(w, http.StatusNotFound, "not found")
	case errors.Is(err, session.ErrForbidden):
		respondErr(w, http.StatusForbidden, "session does not belong to caller")
	case errors.Is(err, session.ErrCompleted):
		respondErr(w, http.StatusConflict, "quiz already completed")
	case errors.Is(err, session.ErrInProgress):
		respondErr(w, http.StatusConflict, "quiz not completed")
	case errors.Is(err, session.ErrConflict):
		respondErr(w, http.StatusConflict, "concurrent update, please retry")
	case errors.Is(err, store.ErrResultAlreadyClaimed):
		respondErr(w, http.StatusConflict, "result already claimed")
	default:
		s.respondInternalErr(w, r, err)
	}
}
