package services

import (
	"errors"
	"net/http"
	"strings"
	"vmp-callback/internal/models"
)

// Normalizer outcomes. Both are "ignore" conditions for the processor,
// not hard failures.
var (
	ErrIncomplete         = errors.New("callback payload missing ref id or status")
	ErrUnrecognizedFormat = errors.New("callback ref id has unrecognized prefix")
)

// Field aliases the provider has been observed to use across payload
// versions. First non-empty wins.
var (
	refFieldAliases       = []string{"ref", "ref_id", "ref_kode"}
	signatureFieldAliases = []string{"signature", "sign", "sig"}
)

const signatureHeader = "X-Callback-Signature"

// NormalizedCallback is the canonical view of an inbound notification.
type NormalizedCallback struct {
	RefID     string
	Status    string // lower-cased, not yet validated against known values
	Signature string // declared signature, empty when absent
}

// NormalizeCallback extracts the canonical reference id, status and
// declared signature from a raw field map plus request headers.
func NormalizeCallback(fields map[string]string, header http.Header) (*NormalizedCallback, error) {
	refID := firstNonEmpty(fields, refFieldAliases)
	status := strings.ToLower(strings.TrimSpace(fields["status"]))

	if refID == "" || status == "" {
		return nil, ErrIncomplete
	}

	if !strings.HasPrefix(refID, models.RefPrefixProduct) && !strings.HasPrefix(refID, models.RefPrefixTopUp) {
		return nil, ErrUnrecognizedFormat
	}

	signature := firstNonEmpty(fields, signatureFieldAliases)
	if signature == "" && header != nil {
		signature = header.Get(signatureHeader)
	}

	return &NormalizedCallback{
		RefID:     refID,
		Status:    status,
		Signature: signature,
	}, nil
}

func firstNonEmpty(fields map[string]string, aliases []string) string {
	for _, alias := range aliases {
		if v := strings.TrimSpace(fields[alias]); v != "" {
			return v
		}
	}
	return ""
}
