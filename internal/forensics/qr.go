package forensics

import (
	"context"
	"encoding/json"
	"image"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

var reCertVocabulary = regexp.MustCompile(`(?i)\b(?:cert(?:ificate)?[\s_-]*(?:id|no|number|code)?|verification[\s_-]*code|diploma|serial)\b[\s:#-]*[A-Za-z0-9-]{4,}`)

// qrPayloadKeys identify a certificate payload inside decoded JSON
var qrPayloadKeys = []string{
	"certificate_id", "certificate_code", "cert_id", "certificate",
	"verification_code", "verification_id", "verify", "credential_id",
}

// QRVerifierConfig tunes QR payload validation
type QRVerifierConfig struct {
	VerificationDomains []string
	ProbeTimeout        time.Duration
}

// QRVerifier decodes and validates QR payloads found in the document bitmap.
// Absence of a QR code carries no penalty.
type QRVerifier struct {
	decoder QRDecoder
	prober  URLProber
	cfg     QRVerifierConfig
}

// NewQRVerifier creates a QR payload verifier. A nil prober falls back to a
// short-timeout HTTP prober.
func NewQRVerifier(decoder QRDecoder, prober URLProber, cfg QRVerifierConfig) *QRVerifier {
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 3 * time.Second
	}
	if prober == nil {
		prober = &httpProber{timeout: cfg.ProbeTimeout}
	}
	return &QRVerifier{decoder: decoder, prober: prober, cfg: cfg}
}

// Verify decodes and classifies every QR payload in the bitmap
func (v *QRVerifier) Verify(ctx context.Context, img image.Image) *QRVerification {
	result := &QRVerification{Status: QRNotFound}

	if v.decoder == nil || img == nil {
		return result
	}

	payloads, err := v.decoder.Decode(ctx, img)
	if err != nil || len(payloads) == 0 {
		return result
	}

	result.Found = len(payloads)
	result.Payloads = payloads

	var anyVerified, anySuspicious bool
	for _, payload := range payloads {
		switch v.classifyPayload(ctx, payload) {
		case QRVerified:
			anyVerified = true
			result.Valid++
		case QRSuspicious:
			anySuspicious = true
		}
	}

	switch {
	case anyVerified:
		result.Status = QRVerified
	case anySuspicious:
		result.Status = QRSuspicious
		result.Detail = "QR payload could not be validated"
	default:
		result.Status = QRInvalid
		result.Detail = "no QR payload matched a known certificate format"
	}

	return result
}

// classifyPayload validates one decoded payload. URL hosts on the allow-list
// or under .edu/.org verify directly; other URLs get a best-effort
// reachability probe that can only upgrade to suspicious, never invalid.
func (v *QRVerifier) classifyPayload(ctx context.Context, payload string) QRStatus {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return QRInvalid
	}

	if u, err := url.Parse(payload); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		host := strings.ToLower(u.Hostname())
		for _, domain := range v.cfg.VerificationDomains {
			d := strings.ToLower(domain)
			if host == d || strings.HasSuffix(host, "."+d) {
				return QRVerified
			}
		}
		if strings.HasSuffix(host, ".edu") || strings.HasSuffix(host, ".org") {
			return QRVerified
		}

		// Unknown host: probe, tolerating failure
		if v.prober != nil && v.prober.Probe(ctx, payload) {
			return QRVerified
		}
		return QRSuspicious
	}

	// JSON payloads verify when they carry an identifiable certificate key
	if strings.HasPrefix(payload, "{") {
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(payload), &obj); err == nil {
			for key := range obj {
				lower := strings.ToLower(key)
				for _, want := range qrPayloadKeys {
					if lower == want {
						return QRVerified
					}
				}
			}
			return QRSuspicious
		}
		return QRInvalid
	}

	// Plain text: certificate vocabulary pattern
	if reCertVocabulary.MatchString(payload) {
		return QRVerified
	}

	return QRInvalid
}

// httpProber does a best-effort GET with a short timeout. Any response at
// all counts as reachable; failures are inconclusive, never penalized here.
type httpProber struct {
	timeout time.Duration
}

func (p *httpProber) Probe(ctx context.Context, target string) bool {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, target, nil)
	if err != nil {
		return false
	}

	client := &http.Client{Timeout: p.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode < 500
}
