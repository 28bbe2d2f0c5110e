package merkle

import (
	"math/big"
	"testing"
)

func layout() []uint8 {
	bits := make([]uint8, 100)
	for _, i := range []int{0, 1, 2, 45, 55, 65, 99} {
		bits[i] = 1
	}
	return bits
}

func TestBuildFixedTreeRejects(t *testing.T) {
	if _, err := BuildFixedTree(nil, 6); err == nil {
		t.Error("non power of two size accepted")
	}
	if _, err := BuildFixedTree(make([]uint8, 9), 8); err == nil {
		t.Error("too many leaves accepted")
	}
}

func TestPathVerifies(t *testing.T) {
	bits := layout()
	tree, err := BuildFixedTree(bits, Leaves)
	if err != nil {
		t.Fatal(err)
	}
	if tree.Depth != Depth {
		t.Fatalf("depth = %d", tree.Depth)
	}
	root := tree.Root()
	for _, idx := range []int{0, 3, 45, 99, 127} {
		path, dir, err := tree.Path(idx)
		if err != nil {
			t.Fatal(err)
		}
		var bit uint8
		if idx < len(bits) {
			bit = bits[idx]
		}
		if !VerifyPath(bit, path, dir, root) {
			t.Errorf("path for %d does not verify", idx)
		}
		if VerifyPath(1-bit, path, dir, root) {
			t.Errorf("flipped bit at %d verifies", idx)
		}
	}
	if _, _, err := tree.Path(Leaves); err == nil {
		t.Error("out of range index accepted")
	}
}

func TestCommitBindsLayout(t *testing.T) {
	salt, err := RandomSalt()
	if err != nil {
		t.Fatal(err)
	}
	bits := layout()
	c, err := Commit(bits, salt)
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyLayout(bits, salt, c.Root) {
		t.Fatal("true layout does not verify")
	}

	moved := layout()
	moved[0], moved[3] = 0, 1
	if VerifyLayout(moved, salt, c.Root) {
		t.Fatal("moved ship verifies against old root")
	}
	if VerifyLayout(bits, new(big.Int).Add(salt, big.NewInt(1)), c.Root) {
		t.Fatal("wrong salt verifies")
	}

	parsed, err := ParseHex(c.RootHex())
	if err != nil || parsed.Cmp(c.Root) != 0 {
		t.Fatalf("RootHex round trip: %v", err)
	}
}

func TestCommitRejectsBadInput(t *testing.T) {
	if _, err := Commit([]uint8{0, 2}, big.NewInt(1)); err == nil {
		t.Error("non-binary leaf accepted")
	}
	if _, err := Commit([]uint8{0}, nil); err == nil {
		t.Error("nil salt accepted")
	}
}
