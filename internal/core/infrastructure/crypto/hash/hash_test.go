package hash

import (
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/stretchr/testify/assert"
)

func TestSHA256(t *testing.T) {
	hashService := NewHashService()

	testCases := []struct {
		name     string
		input    []byte
		expected string
	}{
		{"空数据", []byte{}, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"abc", []byte("abc"), "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, hex.EncodeToString(hashService.SHA256(tc.input)))
		})
	}
}

func TestKeccak256(t *testing.T) {
	hashService := NewHashService()

	// Keccak-256("") 与 NIST SHA3-256("") 不同
	got := hex.EncodeToString(hashService.Keccak256(nil))
	assert.Equal(t, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", got)
}

func TestHash160(t *testing.T) {
	hashService := NewHashService()

	out := hashService.Hash160([]byte("pubkey"))
	assert.Len(t, out, 20)
	assert.Equal(t, hashService.RIPEMD160(hashService.SHA256([]byte("pubkey"))), out)
}

// TestEthereumMessageHash 与 go-ethereum 的 TextHash 保持一致
func TestEthereumMessageHash(t *testing.T) {
	hashService := NewHashService()

	inputs := [][]byte{
		nil,
		[]byte("hello"),
		make([]byte, 123),
		[]byte("你好，世界"),
	}
	for _, in := range inputs {
		assert.Equal(t, accounts.TextHash(in), hashService.EthereumMessageHash(in))
	}
}
