package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainShape      = "sai/shape/v1"
	DomainConversion = "sai/conversion/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ShapeID computes the content-addressed ID of a call shape: an overload
// group name together with the runtime argument types. Equal shapes always
// resolve to the same outcome, so the ID is stable across sessions.
func ShapeID(group string, args ArgTypes) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"group": group,
		"args":  args.Names(),
	})
	if err != nil {
		return "", fmt.Errorf("ShapeID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainShape, canonical), nil
}

// ConversionID computes the content-addressed ID of a (source, target) pair.
func ConversionID(source, target *Type) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"source": source.Name(),
		"target": target.Name(),
	})
	if err != nil {
		return "", fmt.Errorf("ConversionID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainConversion, canonical), nil
}
