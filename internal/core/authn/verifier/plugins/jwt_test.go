package plugins

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/absacc/internal/core/authn/oracle/static"
	"github.com/weisyn/absacc/pkg/types"
)

const (
	testAud       = "project-test-aud"
	testSub       = "user-test-8f3a"
	testBlockTime = uint64(1_700_000_000)
)

type jwtFixture struct {
	priv   *rsa.PrivateKey
	plugin *JWTPlugin
}

func newJWTFixture(t *testing.T) *jwtFixture {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	plugin, err := NewJWTPlugin(map[string]string{testAud: EncodeRSAKeyEntry(&priv.PublicKey)}, 6)
	require.NoError(t, err)
	return &jwtFixture{priv: priv, plugin: plugin}
}

type claimOpt func(*TxClaims)

func (f *jwtFixture) token(t *testing.T, txHash []byte, opts ...claimOpt) []byte {
	t.Helper()
	claims := TxClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   testSub,
			Audience:  jwt.ClaimStrings{testAud},
			IssuedAt:  jwt.NewNumericDate(time.Unix(int64(testBlockTime)-10, 0)),
			NotBefore: jwt.NewNumericDate(time.Unix(int64(testBlockTime)-10, 0)),
			ExpiresAt: jwt.NewNumericDate(time.Unix(int64(testBlockTime)+300, 0)),
		},
		TransactionHash: txHash,
	}
	for _, opt := range opts {
		opt(&claims)
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(f.priv)
	require.NoError(t, err)
	return []byte(signed)
}

func expAt(ts int64) claimOpt {
	return func(c *TxClaims) { c.ExpiresAt = jwt.NewNumericDate(time.Unix(ts, 0)) }
}

func nbfAt(ts int64) claimOpt {
	return func(c *TxClaims) { c.NotBefore = jwt.NewNumericDate(time.Unix(ts, 0)) }
}

func TestJWTPlugin_Valid(t *testing.T) {
	f := newJWTFixture(t)
	assert.Equal(t, "jwt", f.plugin.Name())
	assert.Equal(t, []string{testAud}, f.plugin.Audiences())

	vctx := types.NewTxContext(testAccount, testBlockTime, []byte("jwt tx"))
	ok, err := f.plugin.Verify(context.Background(),
		&types.JWTAuthenticator{Aud: testAud, Sub: strings.ToUpper(testSub)}, vctx, f.token(t, vctx.Digest))
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestJWTPlugin_TimeWindow exp 以区块时间为界，nbf 允许一个平均出块间隔
func TestJWTPlugin_TimeWindow(t *testing.T) {
	f := newJWTFixture(t)
	vctx := types.NewTxContext(testAccount, testBlockTime, []byte("jwt tx"))
	auth := &types.JWTAuthenticator{Aud: testAud, Sub: testSub}
	now := int64(testBlockTime)

	tests := []struct {
		name    string
		opt     claimOpt
		wantErr bool
	}{
		{"exp one second in the past", expAt(now - 1), true},
		{"exp one second in the future", expAt(now + 1), false},
		{"exp equals block time", expAt(now), false},
		{"nbf within grace", nbfAt(now + 6), false},
		{"nbf beyond grace", nbfAt(now + 7), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := f.plugin.Verify(context.Background(), auth, vctx, f.token(t, vctx.Digest, tt.opt))
			if !tt.wantErr {
				require.NoError(t, err)
				assert.True(t, ok)
				return
			}
			var timeErr *types.InvalidTimeError
			require.True(t, errors.As(err, &timeErr), "got %v", err)
			assert.Equal(t, testBlockTime, timeErr.Current)
			assert.False(t, ok)
		})
	}
}

// TestJWTPlugin_UnknownAud 未知 aud 在 RSA 计算之前拒绝
func TestJWTPlugin_UnknownAud(t *testing.T) {
	f := newJWTFixture(t)
	vctx := types.NewTxContext(testAccount, testBlockTime, []byte("jwt tx"))

	ok, err := f.plugin.Verify(context.Background(), &types.JWTAuthenticator{Aud: "unknown", Sub: testSub},
		vctx, []byte("not even a token"))
	assert.False(t, ok)
	assert.ErrorIs(t, err, types.ErrInvalidJWTAud)
	assert.Equal(t, types.KindTrustLookup, types.ClassifyError(err))
}

// TestJWTPlugin_HashMismatch 签名有效但交易哈希不一致
func TestJWTPlugin_HashMismatch(t *testing.T) {
	f := newJWTFixture(t)
	vctx := types.NewTxContext(testAccount, testBlockTime, []byte("jwt tx"))
	other := types.NewTxContext(testAccount, testBlockTime, []byte("other tx"))

	_, err := f.plugin.Verify(context.Background(), &types.JWTAuthenticator{Aud: testAud, Sub: testSub},
		vctx, f.token(t, other.Digest))
	var detail *types.InvalidSignatureDetailError
	require.True(t, errors.As(err, &detail))
	assert.NotEqual(t, detail.Expected, detail.Received)
	assert.NotContains(t, detail.Expected, "=")
}

func TestJWTPlugin_Rejections(t *testing.T) {
	f := newJWTFixture(t)
	vctx := types.NewTxContext(testAccount, testBlockTime, []byte("jwt tx"))
	auth := &types.JWTAuthenticator{Aud: testAud, Sub: testSub}

	t.Run("wrong subject", func(t *testing.T) {
		_, err := f.plugin.Verify(context.Background(), &types.JWTAuthenticator{Aud: testAud, Sub: "someone"},
			vctx, f.token(t, vctx.Digest))
		assert.ErrorIs(t, err, types.ErrInvalidToken)
	})

	t.Run("aud not in claims", func(t *testing.T) {
		tok := f.token(t, vctx.Digest, func(c *TxClaims) { c.Audience = jwt.ClaimStrings{"another"} })
		_, err := f.plugin.Verify(context.Background(), auth, vctx, tok)
		assert.ErrorIs(t, err, types.ErrInvalidToken)
	})

	t.Run("missing nbf", func(t *testing.T) {
		tok := f.token(t, vctx.Digest, func(c *TxClaims) { c.NotBefore = nil })
		_, err := f.plugin.Verify(context.Background(), auth, vctx, tok)
		assert.ErrorIs(t, err, types.ErrInvalidToken)
	})

	t.Run("tampered signature", func(t *testing.T) {
		tok := f.token(t, vctx.Digest)
		tok[len(tok)-5] ^= 0x01
		ok, err := f.plugin.Verify(context.Background(), auth, vctx, tok)
		assert.False(t, ok)
		assert.Error(t, err)
	})

	t.Run("signed by another key", func(t *testing.T) {
		other := newJWTFixture(t)
		_, err := f.plugin.Verify(context.Background(), auth, vctx, other.token(t, vctx.Digest))
		assert.ErrorIs(t, err, types.ErrInvalidSignature)
	})

	t.Run("hs256 rejected", func(t *testing.T) {
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": testSub}).SignedString([]byte("secret"))
		require.NoError(t, err)
		ok, err := f.plugin.Verify(context.Background(), auth, vctx, []byte(signed))
		assert.False(t, ok)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := f.plugin.Verify(context.Background(), auth, vctx, []byte("a.b"))
		assert.ErrorIs(t, err, types.ErrInvalidToken)
	})
}

// TestJWTPlugin_Register 注册 token 绑定账户地址字节
func TestJWTPlugin_Register(t *testing.T) {
	f := newJWTFixture(t)
	regCtx := types.NewRegistrationContext(testAccount, testBlockTime)

	add := &types.AddJWT{Id: 4, Aud: testAud, Sub: testSub, Token: f.token(t, []byte(testAccount))}
	auth, err := f.plugin.Register(context.Background(), regCtx, add)
	require.NoError(t, err)
	assert.Equal(t, &types.JWTAuthenticator{Aud: testAud, Sub: testSub}, auth)

	// 绑定到交易摘要的 token 不能用于注册
	txCtx := types.NewTxContext(testAccount, testBlockTime, []byte(testAccount))
	add.Token = f.token(t, txCtx.Digest)
	_, err = f.plugin.Register(context.Background(), regCtx, add)
	var detail *types.InvalidSignatureDetailError
	assert.True(t, errors.As(err, &detail))
}

// TestJWTPlugin_Delegated 委托模式把请求交给预言机
func TestJWTPlugin_Delegated(t *testing.T) {
	f := newJWTFixture(t)
	validator := &static.JWTValidator{}
	f.plugin.WithValidator(validator)

	vctx := types.NewTxContext(testAccount, testBlockTime, []byte("jwt tx"))
	ok, err := f.plugin.Verify(context.Background(), &types.JWTAuthenticator{Aud: "any-aud", Sub: testSub}, vctx, []byte("opaque"))
	require.NoError(t, err)
	assert.True(t, ok)
	require.NotNil(t, validator.Last)
	assert.Equal(t, "opaque", validator.Last.SigBytes)
	assert.Equal(t, vctx.Digest, validator.Last.TxHash)

	validator.Err = types.ErrOracleUnavailable
	ok, err = f.plugin.Verify(context.Background(), &types.JWTAuthenticator{Aud: "any-aud", Sub: testSub}, vctx, []byte("opaque"))
	assert.False(t, ok)
	assert.ErrorIs(t, err, types.ErrOracleUnavailable)
}

func TestParseRSAKeyEntry(t *testing.T) {
	f := newJWTFixture(t)
	entry := EncodeRSAKeyEntry(&f.priv.PublicKey)

	pub, err := ParseRSAKeyEntry(entry)
	require.NoError(t, err)
	assert.Equal(t, 0, pub.N.Cmp(f.priv.N))
	assert.Equal(t, 65537, pub.E)

	for _, bad := range []string{"", "no-separator", "!!;AQAB", "AQAB;", "AQAB;!!"} {
		_, err := ParseRSAKeyEntry(bad)
		assert.ErrorIs(t, err, types.ErrInvalidJWTAud, bad)
	}

	_, err = NewJWTPlugin(map[string]string{"x": "broken"}, 6)
	assert.Error(t, err)
}
