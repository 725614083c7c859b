package forensics

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockQRDecoder struct {
	mock.Mock
}

func (m *mockQRDecoder) Decode(ctx context.Context, img image.Image) ([]string, error) {
	args := m.Called(ctx, img)
	payloads, _ := args.Get(0).([]string)
	return payloads, args.Error(1)
}

type stubProber struct {
	reachable bool
}

func (s *stubProber) Probe(ctx context.Context, url string) bool {
	return s.reachable
}

func newTestQRVerifier(decoder QRDecoder, reachable bool) *QRVerifier {
	return NewQRVerifier(decoder, &stubProber{reachable: reachable}, QRVerifierConfig{
		VerificationDomains: []string{"verify.certificates.com"},
	})
}

func TestVerifyNoDecoder(t *testing.T) {
	verifier := newTestQRVerifier(nil, false)

	result := verifier.Verify(context.Background(), testBitmap())

	assert.Equal(t, QRNotFound, result.Status)
}

func TestVerifyNoQRCodeFound(t *testing.T) {
	ctx := context.Background()
	decoder := new(mockQRDecoder)
	decoder.On("Decode", ctx, mock.Anything).Return(nil, nil).Once()
	verifier := newTestQRVerifier(decoder, false)

	result := verifier.Verify(ctx, testBitmap())

	assert.Equal(t, QRNotFound, result.Status)
	assert.Zero(t, result.Found)
}

func TestVerifyDecoderErrorIsNeutral(t *testing.T) {
	ctx := context.Background()
	decoder := new(mockQRDecoder)
	decoder.On("Decode", ctx, mock.Anything).Return(nil, errors.New("decode failed")).Once()
	verifier := newTestQRVerifier(decoder, false)

	result := verifier.Verify(ctx, testBitmap())

	assert.Equal(t, QRNotFound, result.Status)
}

func TestVerifyAllowListedURL(t *testing.T) {
	ctx := context.Background()
	decoder := new(mockQRDecoder)
	decoder.On("Decode", ctx, mock.Anything).
		Return([]string{"https://verify.certificates.com/abc123"}, nil).Once()
	verifier := newTestQRVerifier(decoder, false)

	result := verifier.Verify(ctx, testBitmap())

	assert.Equal(t, QRVerified, result.Status)
	assert.Equal(t, 1, result.Found)
	assert.Equal(t, 1, result.Valid)
}

func TestVerifyEducationalDomain(t *testing.T) {
	ctx := context.Background()
	decoder := new(mockQRDecoder)
	decoder.On("Decode", ctx, mock.Anything).
		Return([]string{"https://registrar.stanford.edu/verify/xyz"}, nil).Once()
	verifier := newTestQRVerifier(decoder, false)

	result := verifier.Verify(ctx, testBitmap())

	assert.Equal(t, QRVerified, result.Status)
}

func TestVerifyUnknownHostUsesProbe(t *testing.T) {
	ctx := context.Background()

	decoder := new(mockQRDecoder)
	decoder.On("Decode", ctx, mock.Anything).
		Return([]string{"https://example-unknown.io/cert"}, nil)

	// Reachable host upgrades to verified
	result := newTestQRVerifier(decoder, true).Verify(ctx, testBitmap())
	assert.Equal(t, QRVerified, result.Status)

	// Unreachable host stays suspicious, never invalid
	result = newTestQRVerifier(decoder, false).Verify(ctx, testBitmap())
	assert.Equal(t, QRSuspicious, result.Status)
}

func TestVerifyJSONPayloadWithCertificateKey(t *testing.T) {
	ctx := context.Background()
	decoder := new(mockQRDecoder)
	decoder.On("Decode", ctx, mock.Anything).
		Return([]string{`{"certificate_id":"CERT-2025-001","holder":"John Smith"}`}, nil).Once()
	verifier := newTestQRVerifier(decoder, false)

	result := verifier.Verify(ctx, testBitmap())

	assert.Equal(t, QRVerified, result.Status)
}

func TestVerifyJSONPayloadWithoutCertificateKey(t *testing.T) {
	ctx := context.Background()
	decoder := new(mockQRDecoder)
	decoder.On("Decode", ctx, mock.Anything).
		Return([]string{`{"foo":"bar"}`}, nil).Once()
	verifier := newTestQRVerifier(decoder, false)

	result := verifier.Verify(ctx, testBitmap())

	assert.Equal(t, QRSuspicious, result.Status)
}

func TestVerifyPlainTextCertificateVocabulary(t *testing.T) {
	ctx := context.Background()
	decoder := new(mockQRDecoder)
	decoder.On("Decode", ctx, mock.Anything).
		Return([]string{"Certificate No: ABC-12345"}, nil).Once()
	verifier := newTestQRVerifier(decoder, false)

	result := verifier.Verify(ctx, testBitmap())

	assert.Equal(t, QRVerified, result.Status)
}

func TestVerifyGibberishPayloadIsInvalid(t *testing.T) {
	ctx := context.Background()
	decoder := new(mockQRDecoder)
	decoder.On("Decode", ctx, mock.Anything).
		Return([]string{"xK9!!zz"}, nil).Once()
	verifier := newTestQRVerifier(decoder, false)

	result := verifier.Verify(ctx, testBitmap())

	assert.Equal(t, QRInvalid, result.Status)
	assert.Equal(t, 1, result.Found)
	assert.Zero(t, result.Valid)
	assert.NotEmpty(t, result.Detail)
}

func TestVerifyAnyVerifiedPayloadWins(t *testing.T) {
	ctx := context.Background()
	decoder := new(mockQRDecoder)
	decoder.On("Decode", ctx, mock.Anything).
		Return([]string{"xK9!!zz", "https://verify.certificates.com/abc"}, nil).Once()
	verifier := newTestQRVerifier(decoder, false)

	result := verifier.Verify(ctx, testBitmap())

	assert.Equal(t, QRVerified, result.Status)
	assert.Equal(t, 2, result.Found)
	assert.Equal(t, 1, result.Valid)
}

func TestVerifyNilImage(t *testing.T) {
	decoder := new(mockQRDecoder)
	verifier := newTestQRVerifier(decoder, false)

	result := verifier.Verify(context.Background(), nil)

	assert.Equal(t, QRNotFound, result.Status)
	decoder.AssertNotCalled(t, "Decode", mock.Anything, mock.Anything)
}
