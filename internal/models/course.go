package models

import (
	"strings"
	"time"
)

// TransferPrefix marks synthetic course identifiers for credit granted
// outside the normal grading pipeline.
const TransferPrefix = "TRANSF-"

// Course is a catalog entry keyed by its term-independent NRC identifier.
// Transfer credit uses a synthetic identifier carrying the transfer prefix.
type Course struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Credits     *int      `db:"credits" json:"credits,omitempty"`
	AlphaCode   *string   `db:"alpha_code" json:"alpha_code,omitempty"`
	ProgramCode *string   `db:"program_code" json:"program_code,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// IsTransfer reports whether the identifier denotes transferred credit.
func (c Course) IsTransfer() bool {
	return IsTransferID(c.ID)
}

// IsTransferID reports whether a raw course identifier denotes transferred
// credit under the default prefix.
func IsTransferID(id string) bool {
	return MatchesTransferPrefix(TransferPrefix, id)
}

// MatchesTransferPrefix reports whether the identifier carries the given
// transfer prefix. An empty prefix falls back to the default; the comparison
// is case-insensitive like every identifier lookup.
func MatchesTransferPrefix(prefix, id string) bool {
	if prefix == "" {
		prefix = TransferPrefix
	}
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(id)), strings.ToUpper(prefix))
}

// BuildAlphaCode joins the alpha prefix and course number into the
// alphanumeric course code ("ISOF V033"). Either part alone stands on its own.
func BuildAlphaCode(alpha, number string) string {
	alpha = strings.TrimSpace(alpha)
	number = strings.TrimSpace(number)
	switch {
	case alpha != "" && number != "":
		return alpha + " " + number
	case alpha != "":
		return alpha
	default:
		return number
	}
}
