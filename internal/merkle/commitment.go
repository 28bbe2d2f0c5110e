package merkle

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Commitment binds a fleet layout: Root = MiMC(salt, treeRoot). The salt
// keeps equal layouts from producing equal roots.
type Commitment struct {
	Bits []uint8
	Tree *Tree
	Salt *big.Int
	Root *big.Int
}

// RandomSalt draws a salt uniformly from the BN254 scalar field.
func RandomSalt() (*big.Int, error) {
	return rand.Int(rand.Reader, fr.Modulus())
}

// Commit builds the padded tree over bits and salts its root.
func Commit(bits []uint8, salt *big.Int) (*Commitment, error) {
	for i, b := range bits {
		if b > 1 {
			return nil, fmt.Errorf("leaf %d is not a bit: %d", i, b)
		}
	}
	if salt == nil || salt.Sign() < 0 || salt.Cmp(fr.Modulus()) >= 0 {
		return nil, fmt.Errorf("salt out of field range")
	}
	t, err := BuildFixedTree(bits, Leaves)
	if err != nil {
		return nil, err
	}
	own := make([]uint8, len(bits))
	copy(own, bits)
	return &Commitment{
		Bits: own,
		Tree: t,
		Salt: new(big.Int).Set(salt),
		Root: HashNodeMiMC(salt, t.Root()),
	}, nil
}

// RootHex is the salted root as 0x-prefixed hex.
func (c *Commitment) RootHex() string { return fmt.Sprintf("0x%x", c.Root) }

// VerifyLayout checks a revealed layout and salt against a published root.
func VerifyLayout(bits []uint8, salt, root *big.Int) bool {
	c, err := Commit(bits, salt)
	if err != nil {
		return false
	}
	return c.Root.Cmp(root) == 0
}

// ParseHex reads a 0x-prefixed (or bare) hex field element.
func ParseHex(s string) (*big.Int, error) {
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("cannot parse hex %q", s)
	}
	return n, nil
}
