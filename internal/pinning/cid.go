package pinning

import (
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// CIDv0 is a base58btc-encoded sha2-256 multihash: 34 bytes, prefixed
// 0x12 0x20 (sha2-256, 32-byte digest).
const (
	cidV0Len          = 34
	multihashSHA2_256 = 0x12
	multihashLen32    = 0x20
)

// ValidateCID shape-checks a content identifier returned by the pinning
// service. CIDv0 ("Qm…") is decoded and its multihash header verified;
// CIDv1 ("b…", lowercase multibase) is accepted on prefix alone since
// the gateway resolves either form.
func ValidateCID(cid string) error {
	if cid == "" {
		return fmt.Errorf("empty content identifier")
	}

	if strings.HasPrefix(cid, "Qm") {
		raw, err := base58.Decode(cid)
		if err != nil {
			return fmt.Errorf("decode base58 cid: %w", err)
		}
		if len(raw) != cidV0Len {
			return fmt.Errorf("cid v0 must decode to %d bytes, got %d", cidV0Len, len(raw))
		}
		if raw[0] != multihashSHA2_256 || raw[1] != multihashLen32 {
			return fmt.Errorf("cid v0 has unexpected multihash header %x%x", raw[0], raw[1])
		}
		return nil
	}

	if strings.HasPrefix(cid, "b") && cid == strings.ToLower(cid) {
		return nil
	}

	return fmt.Errorf("unrecognized content identifier %q", cid)
}
