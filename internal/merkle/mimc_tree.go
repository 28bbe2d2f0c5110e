package merkle

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	bnmimc "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

// Depth is the fixed tree depth: 128 leaves, enough for boards up to 128 cells.
const Depth = 7

// Leaves is the padded leaf count of a commitment tree.
const Leaves = 1 << Depth

// --- encode BN254 field elements as 32-byte big-endian ---
func feBytes(x *big.Int) []byte {
	out := make([]byte, fr.Bytes)
	return x.FillBytes(out)
}

func bytesToFE(b []byte) *big.Int { return new(big.Int).SetBytes(b) }

// MiMC helpers (off-chain), consistent with in-circuit MiMC
func HashLeafMiMC(bit uint8) *big.Int {
	h := bnmimc.NewMiMC()
	h.Write(feBytes(new(big.Int).SetUint64(uint64(bit))))
	return bytesToFE(h.Sum(nil))
}

func HashNodeMiMC(left, right *big.Int) *big.Int {
	h := bnmimc.NewMiMC()
	h.Write(feBytes(left))
	h.Write(feBytes(right))
	return bytesToFE(h.Sum(nil))
}

// Tree is a fixed-size binary Merkle tree stored level by level.
type Tree struct {
	Depth  int          `json:"depth"`
	Levels [][]*big.Int `json:"levels"` // Levels[0]=leaves, Levels[Depth]=root
}

// BuildFixedTree hashes bits into size leaves, padding with MiMC(0).
func BuildFixedTree(bits []uint8, size int) (*Tree, error) {
	if size <= 0 || size&(size-1) != 0 {
		return nil, errors.New("size must be power of two")
	}
	if len(bits) > size {
		return nil, errors.New("too many leaves")
	}

	pad := HashLeafMiMC(0)
	leaves := make([]*big.Int, size)
	for i := range leaves {
		if i < len(bits) {
			leaves[i] = HashLeafMiMC(bits[i])
		} else {
			leaves[i] = new(big.Int).Set(pad)
		}
	}
	levels := [][]*big.Int{leaves}

	for n := size; n > 1; n /= 2 {
		prev := levels[len(levels)-1]
		up := make([]*big.Int, n/2)
		for i := range up {
			up[i] = HashNodeMiMC(prev[2*i], prev[2*i+1])
		}
		levels = append(levels, up)
	}
	return &Tree{Depth: len(levels) - 1, Levels: levels}, nil
}

func (t *Tree) Root() *big.Int { return new(big.Int).Set(t.Levels[len(t.Levels)-1][0]) }

// Path returns sibling hashes + direction bits for index idx.
// dir[i]=0 ⇒ current is left child; dir[i]=1 ⇒ current is right child.
func (t *Tree) Path(idx int) (path []*big.Int, dir []uint8, err error) {
	if idx < 0 || idx >= len(t.Levels[0]) {
		return nil, nil, errors.New("idx OOB")
	}
	path = make([]*big.Int, 0, t.Depth)
	dir = make([]uint8, 0, t.Depth)
	cur := idx
	for level := 0; level < t.Depth; level++ {
		sib := cur ^ 1
		path = append(path, new(big.Int).Set(t.Levels[level][sib]))
		dir = append(dir, uint8(cur&1))
		cur /= 2
	}
	return path, dir, nil
}

// VerifyPath recomputes the tree root from a leaf bit and its path.
func VerifyPath(bit uint8, path []*big.Int, dir []uint8, root *big.Int) bool {
	if len(path) != len(dir) {
		return false
	}
	cur := HashLeafMiMC(bit)
	for i := range path {
		if dir[i] == 1 {
			cur = HashNodeMiMC(path[i], cur)
		} else {
			cur = HashNodeMiMC(cur, path[i])
		}
	}
	return cur.Cmp(root) == 0
}
