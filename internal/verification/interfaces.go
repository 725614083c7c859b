package verification

import (
	"context"
	"time"
)

// RepositoryInterface defines the registry lookup contract. The registry is
// read-mostly; point lookups are idempotent and need no locking.
type RepositoryInterface interface {
	CreateRecord(ctx context.Context, record *VerifiedCertificateRecord) error
	GetByCode(ctx context.Context, code string) (*VerifiedCertificateRecord, error)
	GetByHash(ctx context.Context, fileHash string) (*VerifiedCertificateRecord, error)
}

// ResultCache is the read-through cache used for code-only verifications
type ResultCache interface {
	GetString(ctx context.Context, key string) (string, error)
	SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// Ensure the concrete repository satisfies the service's requirements
var _ RepositoryInterface = (*Repository)(nil)
