package zkemail

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	gnarklogger "github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"

	"github.com/weisyn/absacc/pkg/types"
)

const (
	// DkimHashBlockSize 签名中 DKIM 哈希块长度，域元素位于前 32 字节
	DkimHashBlockSize = 256
	// MinProofSize 压缩 BN254 证明的最小长度（A, B, C）
	MinProofSize = 128
	// MinSignatureSize ZK-Email 签名最小长度
	MinSignatureSize = DkimHashBlockSize + MinProofSize
	// PublicInputCount 电路公开输入数量
	PublicInputCount = 3

	defaultCacheEntries = 256
)

var silenceOnce sync.Once

// silenceGnark gnark 内部使用 zerolog 输出调试信息，统一丢弃
func silenceGnark() {
	silenceOnce.Do(func() {
		gnarklogger.Set(zerolog.New(io.Discard).Level(zerolog.Disabled))
	})
}

// publicInputs 只包含公开输入的赋值结构，用于构建 public witness
type publicInputs struct {
	TxCommitment frontend.Variable `gnark:",public"`
	EmailHash    frontend.Variable `gnark:",public"`
	DkimHash     frontend.Variable `gnark:",public"`
}

func (c *publicInputs) Define(api frontend.API) error {
	return nil
}

// ParseVerifyingKey 解析压缩编码的 BN254 Groth16 验证密钥
//
// 要求公开输入数量恰好为 3。
func ParseVerifyingKey(b []byte) (vk groth16.VerifyingKey, err error) {
	silenceGnark()
	defer func() {
		if r := recover(); r != nil {
			vk, err = nil, fmt.Errorf("%w: verifying key: %v", types.ErrMalformedInput, r)
		}
	}()

	vk = groth16.NewVerifyingKey(ecc.BN254)
	if _, err := vk.ReadFrom(bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("%w: verifying key: %v", types.ErrMalformedInput, err)
	}
	if n := vk.NbPublicWitness(); n != PublicInputCount {
		return nil, fmt.Errorf("%w: verifying key expects %d public inputs, want %d", types.ErrMalformedInput, n, PublicInputCount)
	}
	return vk, nil
}

// ParseProof 解析压缩编码的证明，证明来自交易，解析失败按普通拒绝处理
func ParseProof(b []byte) (proof groth16.Proof, err error) {
	silenceGnark()
	defer func() {
		if r := recover(); r != nil {
			proof, err = nil, fmt.Errorf("%w: proof: %v", types.ErrMalformedInput, r)
		}
	}()

	if len(b) < MinProofSize {
		return nil, fmt.Errorf("%w: proof of %d bytes", types.ErrMalformedInput, len(b))
	}
	proof = groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("%w: proof: %v", types.ErrMalformedInput, err)
	}
	return proof, nil
}

// VerifyProof 以三个公开输入验证证明
//
// 配对检查失败返回 false, nil；只有输入编码问题才返回错误。
func VerifyProof(vk groth16.VerifyingKey, proof groth16.Proof, inputs [PublicInputCount]*big.Int) (bool, error) {
	silenceGnark()
	for i, in := range inputs {
		if in == nil {
			return false, fmt.Errorf("%w: public input %d is nil", types.ErrMalformedInput, i)
		}
	}

	assignment := &publicInputs{
		TxCommitment: inputs[0],
		EmailHash:    inputs[1],
		DkimHash:     inputs[2],
	}
	publicWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return false, fmt.Errorf("构建公开输入witness失败: %w", err)
	}
	if err := groth16.Verify(proof, vk, publicWitness); err != nil {
		return false, nil
	}
	return true, nil
}

// KeyCache 已解析验证密钥缓存，键为原始字节的 SHA-256
type KeyCache struct {
	mu         sync.RWMutex
	keys       map[[32]byte]groth16.VerifyingKey
	maxEntries int
}

// NewKeyCache 创建缓存，maxEntries <= 0 时使用默认容量
func NewKeyCache(maxEntries int) *KeyCache {
	if maxEntries <= 0 {
		maxEntries = defaultCacheEntries
	}
	return &KeyCache{
		keys:       make(map[[32]byte]groth16.VerifyingKey),
		maxEntries: maxEntries,
	}
}

// Load 返回缓存的验证密钥，未命中时解析并缓存
func (c *KeyCache) Load(b []byte) (groth16.VerifyingKey, error) {
	id := sha256.Sum256(b)

	c.mu.RLock()
	vk, ok := c.keys[id]
	c.mu.RUnlock()
	if ok {
		return vk, nil
	}

	vk, err := ParseVerifyingKey(b)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if len(c.keys) >= c.maxEntries {
		// 满了直接清空，验证密钥数量通常远小于容量
		c.keys = make(map[[32]byte]groth16.VerifyingKey)
	}
	c.keys[id] = vk
	c.mu.Unlock()
	return vk, nil
}

// Len 缓存条目数
func (c *KeyCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.keys)
}
