package verification

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrRecordNotFound marks a registry miss. Misses classify as fake, they are
// not failures.
var ErrRecordNotFound = errors.New("certificate record not found")

// Repository handles verified-certificate registry data operations
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new registry repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateRecord inserts a verified certificate record
func (r *Repository) CreateRecord(ctx context.Context, record *VerifiedCertificateRecord) error {
	query := `
		INSERT INTO verified_certificates (
			id, certificate_code, issuing_organization, file_hash, created_at
		) VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query,
		record.ID,
		record.CertificateCode,
		record.IssuingOrganization,
		record.FileHash,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create certificate record: %w", err)
	}

	return nil
}

// GetByCode retrieves a registry record by certificate code
func (r *Repository) GetByCode(ctx context.Context, code string) (*VerifiedCertificateRecord, error) {
	query := `
		SELECT id, certificate_code, issuing_organization, file_hash, created_at
		FROM verified_certificates
		WHERE certificate_code = $1
	`

	return r.scanRecord(r.db.QueryRow(ctx, query, code))
}

// GetByHash retrieves a registry record by exact content hash
func (r *Repository) GetByHash(ctx context.Context, fileHash string) (*VerifiedCertificateRecord, error) {
	query := `
		SELECT id, certificate_code, issuing_organization, file_hash, created_at
		FROM verified_certificates
		WHERE file_hash = $1
	`

	return r.scanRecord(r.db.QueryRow(ctx, query, fileHash))
}

func (r *Repository) scanRecord(row pgx.Row) (*VerifiedCertificateRecord, error) {
	var record VerifiedCertificateRecord
	err := row.Scan(
		&record.ID,
		&record.CertificateCode,
		&record.IssuingOrganization,
		&record.FileHash,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	return &record, nil
}
