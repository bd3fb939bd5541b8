// Package zkemailtest 提供 ZK-Email 测试用的 Groth16 电路与证明生成工具
//
// 电路与生产电路拥有相同的公开输入布局，约束仅为三个输入之和等于私有见证，
// 用于在测试中产生真实可验证的 BN254 证明。
package zkemailtest

import (
	"bytes"
	"fmt"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/weisyn/absacc/internal/core/authn/zkemail"
)

// Circuit 测试电路
type Circuit struct {
	TxCommitment frontend.Variable `gnark:",public"`
	EmailHash    frontend.Variable `gnark:",public"`
	DkimHash     frontend.Variable `gnark:",public"`
	Sum          frontend.Variable
}

// Define 约束：TxCommitment + EmailHash + DkimHash == Sum
func (c *Circuit) Define(api frontend.API) error {
	api.AssertIsEqual(api.Add(c.TxCommitment, c.EmailHash, c.DkimHash), c.Sum)
	return nil
}

// Fixture 编译后的电路与可信设置
type Fixture struct {
	ccs       constraint.ConstraintSystem
	pk        groth16.ProvingKey
	VKeyBytes []byte
}

var (
	fixtureOnce sync.Once
	fixture     *Fixture
	fixtureErr  error
)

// Load 返回进程内共享的 Fixture，首次调用时编译电路并执行 Setup
func Load() (*Fixture, error) {
	fixtureOnce.Do(func() {
		fixture, fixtureErr = newFixture()
	})
	return fixture, fixtureErr
}

func newFixture() (*Fixture, error) {
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &Circuit{})
	if err != nil {
		return nil, fmt.Errorf("编译电路失败: %w", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("可信设置失败: %w", err)
	}
	var buf bytes.Buffer
	if _, err := vk.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("序列化验证密钥失败: %w", err)
	}
	return &Fixture{ccs: ccs, pk: pk, VKeyBytes: buf.Bytes()}, nil
}

// Prove 为给定公开输入生成压缩编码的证明
func (f *Fixture) Prove(inputs [zkemail.PublicInputCount]*big.Int) ([]byte, error) {
	sum := new(big.Int)
	for _, in := range inputs {
		sum.Add(sum, in)
	}
	sum.Mod(sum, fr.Modulus())

	assignment := &Circuit{
		TxCommitment: inputs[0],
		EmailHash:    inputs[1],
		DkimHash:     inputs[2],
		Sum:          sum,
	}
	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("构建witness失败: %w", err)
	}
	proof, err := groth16.Prove(f.ccs, f.pk, w)
	if err != nil {
		return nil, fmt.Errorf("生成证明失败: %w", err)
	}
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("序列化证明失败: %w", err)
	}
	return buf.Bytes(), nil
}

// Signature 组装 ZK-Email 签名：256 字节 DKIM 哈希块 + 证明
func Signature(dkimHash *big.Int, proof []byte) []byte {
	sig := make([]byte, zkemail.DkimHashBlockSize, zkemail.DkimHashBlockSize+len(proof))
	copy(sig, zkemail.EncodeFieldElement(dkimHash))
	return append(sig, proof...)
}

// SignTx 为交易生成完整签名
func (f *Fixture) SignTx(txBytes []byte, emailHash, dkimHash *big.Int) ([]byte, error) {
	txCommit, err := zkemail.TxBodyCommitmentFromBytes(txBytes)
	if err != nil {
		return nil, err
	}
	proof, err := f.Prove([zkemail.PublicInputCount]*big.Int{txCommit, emailHash, dkimHash})
	if err != nil {
		return nil, err
	}
	return Signature(dkimHash, proof), nil
}
