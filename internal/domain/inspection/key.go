package inspection

import (
	"encoding/hex"
	"strconv"

	"github.com/zeebo/blake3"
)

// HashContent returns the hex blake3 digest of b.
func HashContent(b []byte) string {
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// AnalysisKey identifies one cached analysis. Any field change moves the key
// into a different key space.
type AnalysisKey struct {
	ContentHash   string
	PromptVersion string
	Model         string
	MaxDimension  int
}

// String derives the storage key. Fields are NUL separated so that no two
// distinct tuples can concatenate to the same input.
func (k AnalysisKey) String() string {
	h := blake3.New()
	for _, part := range []string{k.ContentHash, k.PromptVersion, k.Model, strconv.Itoa(k.MaxDimension)} {
		_, _ = h.Write([]byte(part))
		_, _ = h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
