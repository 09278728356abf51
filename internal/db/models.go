package db

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

type ResultStatus string

const (
	ResultStatusPending    ResultStatus = "pending"
	ResultStatusProcessing ResultStatus = "processing"
	ResultStatusReady      ResultStatus = "ready"
	ResultStatusError      ResultStatus = "error"
)

func (e *ResultStatus) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = ResultStatus(s)
	case string:
		*e = ResultStatus(s)
	default:
		return fmt.Errorf("unsupported scan type for ResultStatus: %T", src)
	}
	return nil
}

type NullResultStatus struct {
	ResultStatus ResultStatus `json:"result_status"`
	Valid        bool         `json:"valid"` // Valid is true if ResultStatus is not NULL
}

// Scan implements the Scanner interface.
func (ns *NullResultStatus) Scan(value interface{}) error {
	if value == nil {
		ns.ResultStatus, ns.Valid = "", false
		return nil
	}
	ns.Valid = true
	return ns.ResultStatus.Scan(value)
}

// Value implements the driver Valuer interface.
func (ns NullResultStatus) Value() (driver.Value, error) {
	if !ns.Valid {
		return nil, nil
	}
	return string(ns.ResultStatus), nil
}

func (e ResultStatus) Valid() bool {
	switch e {
	case ResultStatusPending,
		ResultStatusProcessing,
		ResultStatusReady,
		ResultStatusError:
		return true
	}
	return false
}

type Program struct {
	ID               uuid.UUID             `json:"id"`
	UniversityID     uuid.UUID             `json:"university_id"`
	Name             string                `json:"name"`
	DegreeLevel      string                `json:"degree_level"`
	Domain           string                `json:"domain"`
	Discipline       string                `json:"discipline"`
	Field            string                `json:"field"`
	Description      string                `json:"description"`
	ShortDescription string                `json:"short_description"`
	TuitionUsd       sql.NullFloat64       `json:"tuition_usd"`
	DurationYears    sql.NullFloat64       `json:"duration_years"`
	ApplicationUrl   sql.NullString        `json:"application_url"`
	ImageUrl         sql.NullString        `json:"image_url"`
	ScoringData      pqtype.NullRawMessage `json:"scoring_data"`
	IsActive         bool                  `json:"is_active"`
	CreatedAt        time.Time             `json:"created_at"`
}

type QuizResult struct {
	ID                 uuid.UUID             `json:"id"`
	AccessToken        string                `json:"access_token"`
	SessionID          string                `json:"session_id"`
	UserID             sql.NullString        `json:"user_id"`
	Email              sql.NullString        `json:"email"`
	CatalogVersion     string                `json:"catalog_version"`
	Answers            json.RawMessage       `json:"answers"`
	Status             ResultStatus          `json:"status"`
	SectionWeights     pqtype.NullRawMessage `json:"section_weights"`
	RiasecScores       pqtype.NullRawMessage `json:"riasec_scores"`
	PersonalityScores  pqtype.NullRawMessage `json:"personality_scores"`
	ScoringDiagnostics pqtype.NullRawMessage `json:"scoring_diagnostics"`
	BrillianceSummary  sql.NullString        `json:"brilliance_summary"`
	ProgramMatches     pqtype.NullRawMessage `json:"program_matches"`
	CostAnalysis       pqtype.NullRawMessage `json:"cost_analysis"`
	ModelVersion       sql.NullString        `json:"model_version"`
	MatchingVersion    sql.NullString        `json:"matching_version"`
	ErrorMessage       sql.NullString        `json:"error_message"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
	CompletedAt        sql.NullTime          `json:"completed_at"`
	ClaimedAt          sql.NullTime          `json:"claimed_at"`
}

type University struct {
	ID            uuid.UUID             `json:"id"`
	Name          string                `json:"name"`
	City          string                `json:"city"`
	LogoUrl       sql.NullString        `json:"logo_url"`
	LivingCostUsd sql.NullFloat64       `json:"living_cost_usd"`
	CampusData    pqtype.NullRawMessage `json:"campus_data"`
	CityData      pqtype.NullRawMessage `json:"city_data"`
	IsActive      bool                  `json:"is_active"`
	CreatedAt     time.Time             `json:"created_at"`
}
