package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

const listActivePrograms = `-- name: ListActivePrograms :many
SELECT
    p.id, p.name, p.degree_level, p.domain, p.discipline, p.field,
    p.description, p.short_description, p.tuition_usd, p.duration_years,
    p.application_url, p.image_url, p.scoring_data,
    u.id AS university_id, u.name AS university_name, u.city AS university_city,
    u.logo_url AS university_logo_url, u.living_cost_usd AS university_living_cost_usd,
    u.campus_data AS university_campus_data, u.city_data AS university_city_data
FROM programs p
JOIN universities u ON u.id = p.university_id
WHERE p.is_active AND u.is_active
ORDER BY p.created_at, p.id
`

type ListActiveProgramsRow struct {
	ID                      uuid.UUID             `json:"id"`
	Name                    string                `json:"name"`
	DegreeLevel             string                `json:"degree_level"`
	Domain                  string                `json:"domain"`
	Discipline              string                `json:"discipline"`
	Field                   string                `json:"field"`
	Description             string                `json:"description"`
	ShortDescription        string                `json:"short_description"`
	TuitionUsd              sql.NullFloat64       `json:"tuition_usd"`
	DurationYears           sql.NullFloat64       `json:"duration_years"`
	ApplicationUrl          sql.NullString        `json:"application_url"`
	ImageUrl                sql.NullString        `json:"image_url"`
	ScoringData             pqtype.NullRawMessage `json:"scoring_data"`
	UniversityID            uuid.UUID             `json:"university_id"`
	UniversityName          string                `json:"university_name"`
	UniversityCity          string                `json:"university_city"`
	UniversityLogoUrl       sql.NullString        `json:"university_logo_url"`
	UniversityLivingCostUsd sql.NullFloat64       `json:"university_living_cost_usd"`
	UniversityCampusData    pqtype.NullRawMessage `json:"university_campus_data"`
	UniversityCityData      pqtype.NullRawMessage `json:"university_city_data"`
}

func (q *Queries) ListActivePrograms(ctx context.Context) ([]ListActiveProgramsRow, error) {
	rows, err := q.query(ctx, q.listActiveProgramsStmt, listActivePrograms)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListActiveProgramsRow
	for rows.Next() {
		var i ListActiveProgramsRow
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.DegreeLevel,
			&i.Domain,
			&i.Discipline,
			&i.Field,
			&i.Description,
			&i.ShortDescription,
			&i.TuitionUsd,
			&i.DurationYears,
			&i.ApplicationUrl,
			&i.ImageUrl,
			&i.ScoringData,
			&i.UniversityID,
			&i.UniversityName,
			&i.UniversityCity,
			&i.UniversityLogoUrl,
			&i.UniversityLivingCostUsd,
			&i.UniversityCampusData,
			&i.UniversityCityData,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
