package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sqlc-dev/pqtype"

	"github.com/nyashahama/program-matcher-backend/internal/db"
	"github.com/nyashahama/program-matcher-backend/internal/matching"
)

// ActivePrograms implements matching.ProgramSource over the programs and
// universities tables. A JSONB blob that cannot be decoded is logged and
// replaced by its zero value, so one bad row degrades to neutral fits instead
// of failing every match.
func (s *Store) ActivePrograms(ctx context.Context) ([]matching.Program, error) {
	rows, err := s.q.ListActivePrograms(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: list active programs: %w", err)
	}
	out := make([]matching.Program, 0, len(rows))
	for _, r := range rows {
		out = append(out, s.programFromRow(r))
	}
	return out, nil
}

func (s *Store) programFromRow(r db.ListActiveProgramsRow) matching.Program {
	p := matching.Program{
		ID:               r.ID,
		Name:             r.Name,
		DegreeLevel:      r.DegreeLevel,
		Domain:           r.Domain,
		Discipline:       r.Discipline,
		Field:            r.Field,
		Description:      r.Description,
		ShortDescription: r.ShortDescription,
		TuitionUSD:       floatPtr(r.TuitionUsd),
		DurationYears:    floatPtr(r.DurationYears),
		ApplicationURL:   stringPtr(r.ApplicationUrl),
		ImageURL:         stringPtr(r.ImageUrl),
		University: matching.University{
			ID:            r.UniversityID,
			Name:          r.UniversityName,
			City:          r.UniversityCity,
			LogoURL:       stringPtr(r.UniversityLogoUrl),
			LivingCostUSD: floatPtr(r.UniversityLivingCostUsd),
		},
	}
	if err := decodeJSONB(r.ScoringData, &p.ScoringData); err != nil {
		s.logger.Warn("store: bad scoring_data, using defaults", "program_id", r.ID, "error", err)
		p.ScoringData = matching.ScoringData{}
	}
	if err := decodeJSONB(r.UniversityCampusData, &p.University.CampusData); err != nil {
		s.logger.Warn("store: bad campus_data, using defaults", "university_id", r.UniversityID, "error", err)
		p.University.CampusData = matching.FactorSet{}
	}
	if err := decodeJSONB(r.UniversityCityData, &p.University.CityData); err != nil {
		s.logger.Warn("store: bad city_data, using defaults", "university_id", r.UniversityID, "error", err)
		p.University.CityData = matching.FactorSet{}
	}
	return p
}

// decodeJSONB leaves dst at its zero value for SQL NULL.
func decodeJSONB(m pqtype.NullRawMessage, dst any) error {
	if !m.Valid || len(m.RawMessage) == 0 {
		return nil
	}
	return json.Unmarshal(m.RawMessage, dst)
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func stringPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}
