// Package drift fingerprints enum catalogs with merkle trees so a migration
// can tell whether the database still looks like the one it was generated
// against, and lists the enums that differ when it does not.
package drift

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/cbergoon/merkletree"

	"github.com/hlop3z/enumsync/internal/alerr"
	"github.com/hlop3z/enumsync/internal/ast"
)

// Snapshot is the enum state of several schemas, keyed by schema name.
type Snapshot map[string]ast.EnumValues

// Leaves returns one "schema.name=v1,v2" entry per enum, keyed by the
// qualified name.
func (s Snapshot) Leaves() map[string]string {
	leaves := make(map[string]string)
	for schema, enums := range s {
		for name, values := range enums {
			qualified := schema + "." + name
			leaves[qualified] = qualified + "=" + strings.Join(values, ",")
		}
	}
	return leaves
}

// SchemaHash is the merkle root of a snapshot plus one hash per enum.
type SchemaHash struct {
	Root  string
	Enums map[string]string // qualified name -> hash
}

// enumContent implements merkletree.Content for one enum leaf.
type enumContent struct {
	name string
	hash string
}

func (e enumContent) CalculateHash() ([]byte, error) {
	h := sha256.Sum256([]byte(e.hash))
	return h[:], nil
}

func (e enumContent) Equals(other merkletree.Content) (bool, error) {
	o, ok := other.(enumContent)
	if !ok {
		return false, nil
	}
	return e.hash == o.hash, nil
}

// ComputeHash builds the merkle tree over the snapshot's enums, sorted by
// qualified name.
func ComputeHash(s Snapshot) (*SchemaHash, error) {
	leaves := s.Leaves()
	result := &SchemaHash{Enums: make(map[string]string, len(leaves))}
	if len(leaves) == 0 {
		result.Root = emptyHash()
		return result, nil
	}

	names := make([]string, 0, len(leaves))
	for name := range leaves {
		names = append(names, name)
	}
	sort.Strings(names)

	contents := make([]merkletree.Content, 0, len(names))
	for _, name := range names {
		h := hashString(leaves[name])
		result.Enums[name] = h
		contents = append(contents, enumContent{name: name, hash: h})
	}

	tree, err := merkletree.NewTree(contents)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrIntrospection, err, "failed to build merkle tree")
	}
	result.Root = hex.EncodeToString(tree.MerkleRoot())
	return result, nil
}

// Fingerprint returns the merkle root for the enums of one schema.
func Fingerprint(schema string, enums ast.EnumValues) (string, error) {
	h, err := ComputeHash(Snapshot{schema: enums})
	if err != nil {
		return "", err
	}
	return h.Root, nil
}

// hashString computes SHA256 hash of a string and returns hex encoding.
func hashString(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// emptyHash returns a consistent hash for a snapshot without enums.
func emptyHash() string {
	return hashString("empty_schema")
}

// HashComparison represents the result of comparing two schema hashes.
type HashComparison struct {
	Match        bool
	ExpectedRoot string
	ActualRoot   string
	Missing      []string // enums expected but not in the database
	Extra        []string // enums only in the database
	Modified     []string // enums whose labels differ
}

// HasDifferences reports whether any enum differs.
func (c *HashComparison) HasDifferences() bool {
	return len(c.Missing) > 0 || len(c.Extra) > 0 || len(c.Modified) > 0
}

// CompareHashes compares two schema hashes and lists the enums that differ.
func CompareHashes(expected, actual *SchemaHash) *HashComparison {
	result := &HashComparison{
		Match:        expected.Root == actual.Root,
		ExpectedRoot: expected.Root,
		ActualRoot:   actual.Root,
		Missing:      []string{},
		Extra:        []string{},
		Modified:     []string{},
	}
	if result.Match {
		return result
	}

	for name, hash := range expected.Enums {
		actualHash, exists := actual.Enums[name]
		switch {
		case !exists:
			result.Missing = append(result.Missing, name)
		case hash != actualHash:
			result.Modified = append(result.Modified, name)
		}
	}
	for name := range actual.Enums {
		if _, exists := expected.Enums[name]; !exists {
			result.Extra = append(result.Extra, name)
		}
	}

	sort.Strings(result.Missing)
	sort.Strings(result.Extra)
	sort.Strings(result.Modified)
	return result
}

// Compare fingerprints both snapshots and compares them.
func Compare(expected, actual Snapshot) (*HashComparison, error) {
	e, err := ComputeHash(expected)
	if err != nil {
		return nil, err
	}
	a, err := ComputeHash(actual)
	if err != nil {
		return nil, err
	}
	return CompareHashes(e, a), nil
}
