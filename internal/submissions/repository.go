package submissions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/clearcert/clearcert/internal/forensics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrSubmissionNotFound is returned when no submission matches the lookup
var ErrSubmissionNotFound = errors.New("submission not found")

// Repository handles submission data operations
type Repository struct {
	db *pgxpool.Pool
}

var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new submission repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateSubmission inserts a submission row with its full analysis payload
func (r *Repository) CreateSubmission(ctx context.Context, sub *Submission) error {
	analysisJSON, err := json.Marshal(sub.Analysis)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO submissions (
			id, file_name, file_hash, file_size, mime_type, storage_key,
			expected_name, certificate_code, status, fraud_score, risk_level,
			analysis, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = r.db.Exec(ctx, query,
		sub.ID,
		sub.FileName,
		sub.FileHash,
		sub.FileSize,
		sub.MimeType,
		sub.StorageKey,
		sub.ExpectedName,
		sub.CertificateCode,
		sub.Status,
		sub.FraudScore,
		sub.RiskLevel,
		analysisJSON,
		sub.CreatedAt,
	)

	return err
}

// CreateValidationLog records a registry check made during submission
func (r *Repository) CreateValidationLog(ctx context.Context, log *ValidationLog) error {
	query := `
		INSERT INTO validation_logs (id, submission_id, certificate_code, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query,
		log.ID,
		log.SubmissionID,
		log.CertificateCode,
		log.Status,
		log.CreatedAt,
	)

	return err
}

// GetSubmissionByID retrieves a submission by its ID
func (r *Repository) GetSubmissionByID(ctx context.Context, id uuid.UUID) (*Submission, error) {
	query := `
		SELECT id, file_name, file_hash, file_size, mime_type, storage_key,
		       expected_name, certificate_code, status, fraud_score, risk_level,
		       analysis, created_at
		FROM submissions
		WHERE id = $1
	`

	var sub Submission
	var expectedName, certificateCode sql.NullString
	var analysisJSON []byte

	err := r.db.QueryRow(ctx, query, id).Scan(
		&sub.ID,
		&sub.FileName,
		&sub.FileHash,
		&sub.FileSize,
		&sub.MimeType,
		&sub.StorageKey,
		&expectedName,
		&certificateCode,
		&sub.Status,
		&sub.FraudScore,
		&sub.RiskLevel,
		&analysisJSON,
		&sub.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}

	if expectedName.Valid {
		sub.ExpectedName = expectedName.String
	}
	if certificateCode.Valid {
		sub.CertificateCode = certificateCode.String
	}
	if len(analysisJSON) > 0 {
		var analysis forensics.FraudAnalysisResult
		if err := json.Unmarshal(analysisJSON, &analysis); err == nil {
			sub.Analysis = &analysis
		}
	}

	return &sub, nil
}

// GetStats aggregates submission counts and scores by risk level
func (r *Repository) GetStats(ctx context.Context) (*SubmissionStats, error) {
	stats := &SubmissionStats{
		ByRiskLevel: make(map[string]int64),
	}

	summaryQuery := `
		SELECT COUNT(*), COALESCE(AVG(fraud_score), 0)
		FROM submissions
	`
	if err := r.db.QueryRow(ctx, summaryQuery).Scan(&stats.TotalSubmissions, &stats.AverageFraudScore); err != nil {
		return nil, err
	}

	levelQuery := `
		SELECT risk_level, COUNT(*)
		FROM submissions
		GROUP BY risk_level
	`
	rows, err := r.db.Query(ctx, levelQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var level string
		var count int64
		if err := rows.Scan(&level, &count); err != nil {
			return nil, err
		}
		stats.ByRiskLevel[level] = count
	}

	return stats, rows.Err()
}
