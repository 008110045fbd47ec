package assemble

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// idAllocator derives stable, collision-free identifiers from content and
// position hashes. One allocator exists per document and is only touched
// by the single-threaded assembly pass, so no shared counters leak into
// the page-parallel stages.
type idAllocator struct {
	used map[string]bool
	seen map[string]int
}

func newIDAllocator() *idAllocator {
	return &idAllocator{
		used: make(map[string]bool),
		seen: make(map[string]int),
	}
}

// alloc returns "<prefix>-<12 hex>" derived from the key. Identical keys
// occurring more than once (e.g. two blocks with identical text and
// position) are disambiguated by an occurrence counter folded into the
// hash, keeping results deterministic.
func (a *idAllocator) alloc(prefix, key string) string {
	occurrence := a.seen[key]
	a.seen[key]++

	input := key
	if occurrence > 0 {
		input = fmt.Sprintf("%s|#%d", key, occurrence)
	}

	sum := sha256.Sum256([]byte(input))
	id := prefix + "-" + hex.EncodeToString(sum[:])[:12]

	// A truncated-hash clash between distinct keys is vanishingly rare;
	// salt until the identifier is free so uniqueness always holds.
	for salt := 0; a.used[id]; salt++ {
		resum := sha256.Sum256([]byte(fmt.Sprintf("%s|salt%d", input, salt)))
		id = prefix + "-" + hex.EncodeToString(resum[:])[:12]
	}

	a.used[id] = true
	return id
}
