package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// fingerprintInput fixes the field order of the hashed request.
type fingerprintInput struct {
	Resume string `json:"resume"`
	Role   string `json:"role"`
	Skills string `json:"skills"`
	Years  string `json:"years"`
}

// Fingerprint returns the SHA-256 hex digest of the request fields in order.
// The fields are JSON-encoded before hashing so no separator inside a field can
// make two different tuples collide.
func Fingerprint(resume, role, skills, years string) string {
	// Marshal of a struct of strings cannot fail.
	body, _ := json.Marshal(fingerprintInput{
		Resume: resume,
		Role:   role,
		Skills: skills,
		Years:  years,
	})

	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
