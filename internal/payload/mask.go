package payload

import "github.com/harrylevesque/idqr/internal/models"

const (
	uidMaskPrefix = "XXXX XXXX "
	// uidFullyMasked replaces identifiers too short to keep four characters
	// without disclosing all of them.
	uidFullyMasked = "XXXX XXXX XXXX"
)

// MaskUID hides all but the last four characters of an identity number.
func MaskUID(uid string) string {
	if uid == "" {
		return models.NotAvailable
	}
	r := []rune(uid)
	if len(r) < 4 {
		return uidFullyMasked
	}
	return uidMaskPrefix + string(r[len(r)-4:])
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
