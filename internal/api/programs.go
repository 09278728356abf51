package api

import (
	"net/http"

	"github.com/nyashahama/program-matcher-backend/internal/matching"
)

// ─── POST /api/programs/match ─────────────────────────────────────────────────

type matchProgramsRequest struct {
	StudentProfile *matching.Profile `json:"studentProfile"`
}

// handleMatchPrograms runs the matcher for an explicit profile. The matcher
// never errors; a failed match is returned as success false with 200, the
// same body the result pipeline persists.
func (s *Server) handleMatchPrograms(w http.ResponseWriter, r *http.Request) {
	var req matchProgramsRequest
	if !decode(w, r, &req) {
		return
	}
	if req.StudentProfile == nil {
		respondErr(w, http.StatusBadRequest, "studentProfile is required")
		return
	}
	p := req.StudentProfile
	if p.RiasecScores == nil && len(p.Answers) == 0 {
		respondErr(w, http.StatusBadRequest, "studentProfile needs riasec_scores or answers")
		return
	}

	res := s.matcher.Match(r.Context(), *p)
	if !res.Success {
		s.logger.Warn("programs: match failed", "error", res.Error, logField(r))
	}
	respond(w, http.StatusOK, res)
}
