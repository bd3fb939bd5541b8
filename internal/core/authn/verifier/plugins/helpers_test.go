package plugins

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/absacc/internal/core/infrastructure/crypto/address"
	"github.com/weisyn/absacc/internal/core/infrastructure/crypto/hash"
	"github.com/weisyn/absacc/internal/core/infrastructure/crypto/secp256k1"
)

const testAccount = "xion14apeydfljtmvv8vdj97u3mtmlednfhz6dr5scfs2p6xd0gdlxutqvfagkh"

func newTestSecp256K1Plugin() *Secp256K1Plugin {
	hasher := hash.NewHashService()
	return NewSecp256K1Plugin(secp256k1.NewCurve(), hasher, address.NewAddressService(hasher), "xion")
}

func newTestEthPlugin() *EthWalletPlugin {
	hasher := hash.NewHashService()
	return NewEthWalletPlugin(hasher, address.NewAddressService(hasher))
}

// signSecp256K1 生成 SHA-256(msg) 上的 64 字节 low-S 签名
func signSecp256K1(t *testing.T, priv *btcec.PrivateKey, msg []byte) []byte {
	t.Helper()
	digest := sha256.Sum256(msg)
	return ecdsa.SignCompact(priv, digest[:], true)[1:]
}

func mustB64(t *testing.T, s string) []byte {
	t.Helper()
	b, err := base64.StdEncoding.DecodeString(s)
	require.NoError(t, err)
	return b
}

func flipBit(b []byte, i int) []byte {
	out := append([]byte(nil), b...)
	out[i] ^= 0x01
	return out
}
