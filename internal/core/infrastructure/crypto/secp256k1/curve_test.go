package secp256k1

import (
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signCompact 生成 64 字节 r||s（SignCompact 输出去掉首字节 header）
func signCompact(t *testing.T, priv *btcec.PrivateKey, digest []byte) []byte {
	t.Helper()
	return ecdsa.SignCompact(priv, digest, true)[1:]
}

func TestVerifyDigest(t *testing.T) {
	curve := NewCurve()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	pub := priv.PubKey().SerializeCompressed()
	digest := sha256.Sum256([]byte("tx bytes"))
	sig := signCompact(t, priv, digest[:])

	ok, err := curve.VerifyDigest(pub, digest[:], sig)
	require.NoError(t, err)
	assert.True(t, ok)

	// 未压缩公钥同样可用
	ok, err = curve.VerifyDigest(priv.PubKey().SerializeUncompressed(), digest[:], sig)
	require.NoError(t, err)
	assert.True(t, ok)

	other := sha256.Sum256([]byte("other"))
	ok, err = curve.VerifyDigest(pub, other[:], sig)
	require.NoError(t, err)
	assert.False(t, ok)
}

// highS 返回 (r, n-s) 形式
func highS(sig []byte) []byte {
	var s btcec.ModNScalar
	s.SetByteSlice(sig[32:])
	s.Negate()
	high := s.Bytes()
	return append(append([]byte{}, sig[:32]...), high[:]...)
}

// TestVerifyDigest_HighS 高 S 形式归一化后验证通过
func TestVerifyDigest_HighS(t *testing.T) {
	curve := NewCurve()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	digest := sha256.Sum256([]byte("malleable"))
	sig := signCompact(t, priv, digest[:])

	malleated := highS(sig)
	require.NotEqual(t, sig, malleated)

	ok, err := curve.VerifyDigest(priv.PubKey().SerializeCompressed(), digest[:], malleated)
	require.NoError(t, err)
	assert.True(t, ok)

	other := sha256.Sum256([]byte("other"))
	ok, err = curve.VerifyDigest(priv.PubKey().SerializeCompressed(), other[:], malleated)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyDigest_Malformed(t *testing.T) {
	curve := NewCurve()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	pub := priv.PubKey().SerializeCompressed()
	digest := sha256.Sum256([]byte("x"))

	var lenErr *ErrInvalidSignatureLength
	_, err = curve.VerifyDigest(pub, digest[:], make([]byte, 63))
	assert.ErrorAs(t, err, &lenErr)

	_, err = curve.VerifyDigest(pub, digest[:], make([]byte, 64))
	assert.ErrorIs(t, err, ErrScalarOutOfRange)

	var keyErr *ErrInvalidPublicKey
	_, err = curve.VerifyDigest([]byte{0x02, 0x00}, digest[:], signCompact(t, priv, digest[:]))
	assert.ErrorAs(t, err, &keyErr)

	var hashErr *ErrInvalidHashLength
	_, err = curve.VerifyDigest(pub, digest[:31], signCompact(t, priv, digest[:]))
	assert.ErrorAs(t, err, &hashErr)
}
