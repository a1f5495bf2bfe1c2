package ethereum

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// MintSignature is the contract method the pipeline calls:
// mint(address to, string tokenURI) returns (uint256).
const MintSignature = "mint(address,string)"

const addressHexLen = 40 // 20 bytes

// Keccak256 computes the legacy Keccak-256 hash used by Ethereum.
func Keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

// MethodID returns the 4-byte ABI selector for a canonical method signature.
func MethodID(signature string) []byte {
	return Keccak256([]byte(signature))[:4]
}

// EncodeMintCall builds the calldata for mint(address,string).
// Layout: selector, padded recipient, offset of the string block (0x40),
// string length, string bytes padded to a 32-byte boundary.
func EncodeMintCall(recipient, tokenURI string) ([]byte, error) {
	addr, err := addressBytes(recipient)
	if err != nil {
		return nil, err
	}

	uriBytes := []byte(tokenURI)
	padded := len(uriBytes)
	if rem := padded % 32; rem != 0 {
		padded += 32 - rem
	}

	data := make([]byte, 0, 4+32*3+padded)
	data = append(data, MethodID(MintSignature)...)
	data = append(data, leftPad(addr, 32)...)
	data = append(data, leftPad([]byte{0x40}, 32)...) // offset of dynamic arg
	data = append(data, leftPad(uint64Bytes(uint64(len(uriBytes))), 32)...)
	data = append(data, uriBytes...)
	data = append(data, make([]byte, padded-len(uriBytes))...)
	return data, nil
}

// IsHexAddress reports whether s is a 0x-prefixed 20-byte hex address.
func IsHexAddress(s string) bool {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return false
	}
	body := s[2:]
	if len(body) != addressHexLen {
		return false
	}
	_, err := hex.DecodeString(body)
	return err == nil
}

// ChecksumAddress returns the EIP-55 mixed-case form of a hex address.
func ChecksumAddress(s string) (string, error) {
	if !IsHexAddress(s) {
		return "", fmt.Errorf("invalid address %q", s)
	}
	lower := strings.ToLower(s[2:])
	hash := Keccak256([]byte(lower))

	out := []byte(lower)
	for i := 0; i < len(out); i++ {
		c := out[i]
		if c < 'a' || c > 'f' {
			continue
		}
		// Uppercase when the corresponding hash nibble is >= 8.
		nibble := hash[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x0f >= 8 {
			out[i] = c - ('a' - 'A')
		}
	}
	return "0x" + string(out), nil
}

// EncodeBytes hex-encodes with the 0x prefix.
func EncodeBytes(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// DecodeBytes decodes a 0x-prefixed hex string.
func DecodeBytes(s string) ([]byte, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return b, nil
}

func addressBytes(s string) ([]byte, error) {
	if !IsHexAddress(s) {
		return nil, fmt.Errorf("invalid address %q", s)
	}
	return hex.DecodeString(s[2:])
}

func leftPad(b []byte, size int) []byte {
	if len(b) >= size {
		return b
	}
	out := make([]byte, size)
	copy(out[size-len(b):], b)
	return out
}

func uint64Bytes(v uint64) []byte {
	var b [8]byte
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b[:]
}
