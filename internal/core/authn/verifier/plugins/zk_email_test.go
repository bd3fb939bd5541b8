package plugins

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/absacc/internal/core/authn/oracle/static"
	"github.com/weisyn/absacc/internal/core/authn/zkemail"
	"github.com/weisyn/absacc/internal/core/authn/zkemail/zkemailtest"
	"github.com/weisyn/absacc/pkg/types"
)

const testDkimDomain = "gmail.com"

type zkFixture struct {
	circuit   *zkemailtest.Fixture
	dkim      *static.DkimRegistry
	plugin    *ZKEmailPlugin
	emailHash *big.Int
	dkimHash  *big.Int
	auth      *types.ZKEmailAuthenticator
}

func newZKFixture(t *testing.T) *zkFixture {
	t.Helper()
	circuit, err := zkemailtest.Load()
	require.NoError(t, err)

	emailHash, err := zkemail.EmailCommitment("alice@gmail.com", "pepper")
	require.NoError(t, err)
	dkimHash := big.NewInt(987654321)

	dkim := static.NewDkimRegistry().Add(testDkimDomain, zkemail.EncodeFieldElement(dkimHash))
	return &zkFixture{
		circuit:   circuit,
		dkim:      dkim,
		plugin:    NewZKEmailPlugin(dkim, nil),
		emailHash: emailHash,
		dkimHash:  dkimHash,
		auth: &types.ZKEmailAuthenticator{
			VKey:       circuit.VKeyBytes,
			EmailHash:  zkemail.EncodeFieldElement(emailHash),
			DkimDomain: testDkimDomain,
		},
	}
}

func TestZKEmailPlugin_Verify(t *testing.T) {
	f := newZKFixture(t)
	assert.Equal(t, "zk_email", f.plugin.Name())

	tx := []byte(`{"body":{"messages":[]}}`)
	sig, err := f.circuit.SignTx(tx, f.emailHash, f.dkimHash)
	require.NoError(t, err)

	// 重复验证结果一致
	for i := 0; i < 2; i++ {
		ok, err := f.plugin.Verify(context.Background(), f.auth, types.NewTxContext(testAccount, 0, tx), sig)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

// TestZKEmailPlugin_ModifiedTx 交易变化一个字节后证明不成立
func TestZKEmailPlugin_ModifiedTx(t *testing.T) {
	f := newZKFixture(t)
	tx := []byte(`{"body":{"messages":[]}}`)
	sig, err := f.circuit.SignTx(tx, f.emailHash, f.dkimHash)
	require.NoError(t, err)

	ok, err := f.plugin.Verify(context.Background(), f.auth, types.NewTxContext(testAccount, 0, flipBit(tx, 3)), sig)
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestZKEmailPlugin_UnknownDkim 未登记的 DKIM 在 Groth16 之前拒绝
func TestZKEmailPlugin_UnknownDkim(t *testing.T) {
	f := newZKFixture(t)
	tx := []byte("tx")
	sig, err := f.circuit.SignTx(tx, f.emailHash, f.dkimHash)
	require.NoError(t, err)

	other := *f.auth
	other.DkimDomain = "unknown.example"
	ok, err := f.plugin.Verify(context.Background(), &other, types.NewTxContext(testAccount, 0, tx), sig)
	assert.False(t, ok)
	assert.ErrorIs(t, err, types.ErrInvalidDkim)

	// 域名已知但哈希不同
	wrongHash, err := f.circuit.SignTx(tx, f.emailHash, big.NewInt(1))
	require.NoError(t, err)
	_, err = f.plugin.Verify(context.Background(), f.auth, types.NewTxContext(testAccount, 0, tx), wrongHash)
	assert.ErrorIs(t, err, types.ErrInvalidDkim)
	assert.Equal(t, 2, f.dkim.Calls())
}

func TestZKEmailPlugin_Malformed(t *testing.T) {
	f := newZKFixture(t)
	vctx := types.NewTxContext(testAccount, 0, []byte("tx"))

	_, err := f.plugin.Verify(context.Background(), f.auth, vctx, make([]byte, zkemail.MinSignatureSize-1))
	assert.ErrorIs(t, err, types.ErrShortSignature)

	// 证明部分无法解析
	garbage := make([]byte, zkemail.MinSignatureSize+40)
	for i := zkemail.DkimHashBlockSize; i < len(garbage); i++ {
		garbage[i] = 0xFF
	}
	_, err = f.plugin.Verify(context.Background(), f.auth, vctx, garbage)
	assert.ErrorIs(t, err, types.ErrMalformedInput)

	badKey := *f.auth
	badKey.VKey = []byte("not a key")
	_, err = f.plugin.Verify(context.Background(), &badKey, vctx, garbage)
	assert.ErrorIs(t, err, types.ErrMalformedInput)
}

// TestZKEmailPlugin_Register 注册证明绑定账户地址
func TestZKEmailPlugin_Register(t *testing.T) {
	f := newZKFixture(t)
	proof, err := f.circuit.SignTx([]byte(testAccount), f.emailHash, f.dkimHash)
	require.NoError(t, err)

	add := &types.AddZKEmail{
		Id:         6,
		VKey:       f.circuit.VKeyBytes,
		EmailHash:  zkemail.EncodeFieldElement(f.emailHash),
		DkimDomain: testDkimDomain,
		Proof:      proof,
	}
	auth, err := f.plugin.Register(context.Background(), types.NewRegistrationContext(testAccount, 0), add)
	require.NoError(t, err)
	assert.Equal(t, testDkimDomain, auth.(*types.ZKEmailAuthenticator).DkimDomain)

	_, err = f.plugin.Register(context.Background(), types.NewRegistrationContext("xion1another", 0), add)
	assert.ErrorIs(t, err, types.ErrInvalidSignature)

	short := *add
	short.EmailHash = []byte{0x01}
	_, err = f.plugin.Register(context.Background(), types.NewRegistrationContext(testAccount, 0), &short)
	assert.ErrorIs(t, err, types.ErrMalformedInput)

	noDomain := *add
	noDomain.DkimDomain = ""
	_, err = f.plugin.Register(context.Background(), types.NewRegistrationContext(testAccount, 0), &noDomain)
	assert.ErrorIs(t, err, types.ErrMalformedInput)
}
