package catalog

import "errors"

// ErrInvalidSourceFormat indicates the source content could not be parsed
// (malformed JSON, or a delimited file without a header line).
var ErrInvalidSourceFormat = errors.New("invalid source format")

// ErrSourceUnreachable indicates a network or authentication failure while
// reading a remote origin.
var ErrSourceUnreachable = errors.New("source unreachable")

// ErrDuplicateSKU is returned by the single-record add path when the SKU is
// already present in the catalog.
var ErrDuplicateSKU = errors.New("duplicate sku")

// ErrMissingTitle is returned by the single-record add path when no title
// candidate resolves to a non-empty value.
var ErrMissingTitle = errors.New("missing title")

// RejectReason explains why a record was dropped from a batch.
type RejectReason string

const (
	RejectMissingTitle RejectReason = "missing_title"
)

// Rejection is a per-record, non-fatal failure recorded in the report.
type Rejection struct {
	Index  int          `json:"index"`
	Reason RejectReason `json:"reason"`
}

// CoercionIssue records a value that failed type coercion and fell back to
// the field default. Collected only in strict mode.
type CoercionIssue struct {
	Index int    `json:"index"`
	Field string `json:"field"`
	Raw   string `json:"raw"`
}
