package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows future algorithm migration.
const (
	DomainDeclaration = "eventgraph/declaration/v1"
	DomainCatalog     = "eventgraph/catalog/v1"
	DomainPlan        = "eventgraph/plan/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// HashCanonical hashes the canonical JSON form of v under the given domain.
func HashCanonical(domain string, v any) (string, error) {
	data, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("%s: failed to marshal: %w", domain, err)
	}
	return hashWithDomain(domain, data), nil
}

// DeclarationHash computes the content hash of a dependency declaration.
// Children order is significant; key order is not.
func DeclarationHash(decl Declaration) (string, error) {
	obj := make(map[string]any, len(decl))
	for id, spec := range decl {
		children := spec.Children
		if children == nil {
			children = []string{}
		}
		obj[id] = map[string]any{"children": children}
	}
	return HashCanonical(DomainDeclaration, obj)
}

// CatalogHash computes the content hash of an event catalog.
// Records are keyed by id, so catalog order does not affect the hash.
func CatalogHash(events []EventRecord) (string, error) {
	obj := make(map[string]any, len(events))
	for _, e := range events {
		obj[e.ID] = e.canonical()
	}
	return HashCanonical(DomainCatalog, obj)
}

// CanonicalRecords converts records to canonical JSON objects, preserving order.
func CanonicalRecords(events []EventRecord) []any {
	out := make([]any, len(events))
	for i, e := range events {
		out[i] = e.canonical()
	}
	return out
}
