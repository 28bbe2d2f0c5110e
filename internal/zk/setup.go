package zk

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/logger"

	"battleship-salvo/internal/merkle"
)

const (
	pkFile = "shot.pk"
	vkFile = "shot.vk"
)

func init() {
	// gnark logs every compile through zerolog; the game has its own logger.
	logger.Disable()
}

// ShotPublic is the public part of a shot proof.
type ShotPublic struct {
	Root  *big.Int `json:"root"`
	Index int      `json:"index"`
	Hit   uint8    `json:"hit"`
}

// ShotProof is a serialized Groth16 proof with its public inputs.
type ShotProof struct {
	Proof  []byte     `json:"proof"`
	Public ShotPublic `json:"public"`
}

func compile() (constraint.ConstraintSystem, error) {
	var circuit ShotCircuit
	return frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit)
}

// EnsureShotKeys makes sure dir holds a parseable proving/verifying key pair,
// running the setup when it does not.
func EnsureShotKeys(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	vkPath := filepath.Join(dir, vkFile)
	pkPath := filepath.Join(dir, pkFile)

	if _, err := readVK(vkPath); err == nil {
		if _, err := readPK(pkPath); err == nil {
			return nil
		}
	}

	cs, err := compile()
	if err != nil {
		return err
	}
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return err
	}
	if err := writeKey(vkPath, vk); err != nil {
		return err
	}
	return writeKey(pkPath, pk)
}

// Prover holds the compiled circuit and keys so each shot proof skips the
// compile step.
type Prover struct {
	cs constraint.ConstraintSystem
	pk groth16.ProvingKey
	vk groth16.VerifyingKey
}

// LoadProver ensures keys exist in dir and loads them.
func LoadProver(dir string) (*Prover, error) {
	if err := EnsureShotKeys(dir); err != nil {
		return nil, fmt.Errorf("ensure keys: %w", err)
	}
	cs, err := compile()
	if err != nil {
		return nil, err
	}
	pk, err := readPK(filepath.Join(dir, pkFile))
	if err != nil {
		return nil, err
	}
	vk, err := readVK(filepath.Join(dir, vkFile))
	if err != nil {
		return nil, err
	}
	return &Prover{cs: cs, pk: pk, vk: vk}, nil
}

// NewProver runs an in-memory setup. Keys are not persisted.
func NewProver() (*Prover, error) {
	cs, err := compile()
	if err != nil {
		return nil, err
	}
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return nil, err
	}
	return &Prover{cs: cs, pk: pk, vk: vk}, nil
}

func (p *Prover) VerifyingKey() groth16.VerifyingKey { return p.vk }

// Prove proves the contents of cell idx of a committed layout.
func (p *Prover) Prove(c *merkle.Commitment, idx int) (ShotProof, error) {
	if idx < 0 || idx >= len(c.Bits) {
		return ShotProof{}, fmt.Errorf("cell %d outside committed layout", idx)
	}
	path, dir, err := c.Tree.Path(idx)
	if err != nil {
		return ShotProof{}, err
	}
	if len(path) != MerkleDepth || len(dir) != MerkleDepth {
		return ShotProof{}, errors.New("bad path length")
	}
	bit := c.Bits[idx]

	var assign ShotCircuit
	assign.Bit = bit
	assign.Salt = c.Salt
	for i := 0; i < MerkleDepth; i++ {
		assign.Path[i] = path[i]
		assign.Dir[i] = dir[i]
	}
	assign.Root = c.Root
	assign.Index = idx
	assign.Hit = bit

	fullWit, err := frontend.NewWitness(&assign, ecc.BN254.ScalarField())
	if err != nil {
		return ShotProof{}, err
	}
	proof, err := groth16.Prove(p.cs, p.pk, fullWit)
	if err != nil {
		return ShotProof{}, err
	}

	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return ShotProof{}, err
	}
	return ShotProof{
		Proof:  buf.Bytes(),
		Public: ShotPublic{Root: new(big.Int).Set(c.Root), Index: idx, Hit: bit},
	}, nil
}

// Verify checks sp against the verifying key and the expected root.
func Verify(vk groth16.VerifyingKey, sp ShotProof, root *big.Int) error {
	if sp.Public.Root == nil {
		return errors.New("proof payload missing public root")
	}
	if sp.Public.Root.Cmp(root) != 0 {
		return errors.New("root mismatch: proof root != committed root")
	}
	if sp.Public.Hit > 1 {
		return errors.New("invalid hit public output")
	}

	var pubAssign ShotCircuit
	pubAssign.Root = root
	pubAssign.Index = sp.Public.Index
	pubAssign.Hit = sp.Public.Hit
	pubWit, err := frontend.NewWitness(&pubAssign, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return err
	}

	pr := groth16.NewProof(ecc.BN254)
	if _, err := pr.ReadFrom(bytes.NewReader(sp.Proof)); err != nil {
		return err
	}
	return groth16.Verify(pr, vk, pubWit)
}

// VerifyFile verifies against a verifying key stored on disk.
func VerifyFile(vkPath string, sp ShotProof, root *big.Int) error {
	vk, err := readVK(vkPath)
	if err != nil {
		return err
	}
	return Verify(vk, sp, root)
}

// --- key IO helpers using io.WriterTo / io.ReaderFrom ---

func writeKey(path string, k io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = k.WriteTo(f)
	return err
}

func readVK(path string) (groth16.VerifyingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	vk := groth16.NewVerifyingKey(ecc.BN254)
	_, err = vk.ReadFrom(f)
	return vk, err
}

func readPK(path string) (groth16.ProvingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pk := groth16.NewProvingKey(ecc.BN254)
	_, err = pk.ReadFrom(f)
	return pk, err
}
