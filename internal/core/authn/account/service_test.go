package account

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventconfig "github.com/weisyn/absacc/internal/config/event"
	"github.com/weisyn/absacc/internal/core/authn/registry"
	"github.com/weisyn/absacc/internal/core/authn/store"
	"github.com/weisyn/absacc/internal/core/authn/verifier"
	"github.com/weisyn/absacc/internal/core/authn/verifier/plugins"
	"github.com/weisyn/absacc/internal/core/authn/zkemail"
	"github.com/weisyn/absacc/internal/core/infrastructure/crypto/address"
	"github.com/weisyn/absacc/internal/core/infrastructure/crypto/hash"
	"github.com/weisyn/absacc/internal/core/infrastructure/crypto/secp256k1"
	eventimpl "github.com/weisyn/absacc/internal/core/infrastructure/event"
	"github.com/weisyn/absacc/internal/core/infrastructure/log"
	"github.com/weisyn/absacc/internal/core/infrastructure/storage/badger"
	"github.com/weisyn/absacc/pkg/types"
)

const (
	testAccount = "xion14apeydfljtmvv8vdj97u3mtmlednfhz6dr5scfs2p6xd0gdlxutqvfagkh"

	// 对 testAccount 的注册签名
	regPubKey    = "Ayrlj6q3WWs91p45LVKwI8JyfMYNmWMrcDinLNEdWYE4"
	regSignature = "ywxOndY+x+AzT77KBVptdCarKG6YyPBVRkpm188P8Sh9SOQ4sIIFK5ZMzN8XLqClTTIsXT14FeeRhuDaL+fMYA=="

	// 同一密钥对一笔转账交易的签名
	txSignature = "UDerMpp4QzGxjuu3uTmqoOdPrmRnwiOf6BOlL5xG2pAEx+gS8DV3HwBzrb+QRIVyKVc3D7RYMOAlRFRkpVANDA=="
	txBody      = "Cp0BCpoBChwvY29zbW9zLmJhbmsudjFiZXRhMS5Nc2dTZW5kEnoKP3hpb24xbTZ2aDIwcHM3NW0ybjZxeHdwandmOGZzM2t4dzc1enN5M3YycnllaGQ5c3BtbnUwcTlyc2g0NnljeRIreGlvbjFlMmZ1d2UzdWhxOHpkOW5ra2s4NzZuYXdyd2R1bGd2NDYwdnpnNxoKCgV1eGlvbhIBMRJTCksKQwodL2Fic3RyYWN0YWNjb3VudC52MS5OaWxQdWJLZXkSIgog3pl1PDD1NqnoBnBk5J0wjYzvUFAkWKGTN2lgHc+PAUcSBAoCCAESBBDgpxIaFHhpb24tbG9jYWwtdGVzdG5ldC0xIAg="
)

type published struct {
	account string
	event   types.Event
}

type testEnv struct {
	svc *Service

	mu     sync.Mutex
	events []published
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := badger.NewInMemory(log.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	hasher := hash.NewHashService()
	kernel := verifier.NewKernel(verifier.Plugins{
		Secp256K1: plugins.NewSecp256K1Plugin(secp256k1.NewCurve(), hasher, address.NewAddressService(hasher), "xion"),
		Ed25519:   plugins.NewEd25519Plugin(),
	}, log.NewNop())
	reg := registry.New(store.NewBadgerAuthenticatorStore(db), kernel, address.NewAddressService(hasher), nil, log.NewNop())

	env := &testEnv{}
	bus := eventimpl.New(eventconfig.New())
	require.NoError(t, bus.Subscribe(EventTopic, func(account string, ev types.Event) {
		env.mu.Lock()
		env.events = append(env.events, published{account: account, event: ev})
		env.mu.Unlock()
	}))

	env.svc = NewService(Config{
		Registry:   reg,
		Dispatcher: kernel,
		EventBus:   bus,
		Logger:     log.NewNop(),
	})
	return env
}

func (e *testEnv) published() []published {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]published(nil), e.events...)
}

func mustB64(t *testing.T, s string) []byte {
	t.Helper()
	b, err := base64.StdEncoding.DecodeString(s)
	require.NoError(t, err)
	return b
}

// instantiate 以 secp256k1 测试密钥在编号 0 上实例化账户
func (e *testEnv) instantiate(t *testing.T) *types.Response {
	t.Helper()
	resp, err := e.svc.Instantiate(context.Background(), testAccount, 100, &types.AddSecp256K1{
		Id:        0,
		PubKey:    mustB64(t, regPubKey),
		Signature: mustB64(t, regSignature),
	})
	require.NoError(t, err)
	return resp
}

func newEd25519Add(t *testing.T, id types.AuthenticatorID) (*types.AddEd25519, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	digest := sha256.Sum256([]byte(testAccount))
	return &types.AddEd25519{Id: id, PubKey: pub, Signature: ed25519.Sign(priv, digest[:])}, priv
}

func TestService_Instantiate(t *testing.T) {
	env := newTestEnv(t)
	resp := env.instantiate(t)

	require.Len(t, resp.Events, 1)
	ev := resp.Events[0]
	assert.Equal(t, types.EventCreateAbstractAccount, ev.Type)
	addr, _ := ev.Attr("contract_address")
	assert.Equal(t, testAccount, addr)
	id, _ := ev.Attr("authenticator_id")
	assert.Equal(t, "0", id)
	encoded, _ := ev.Attr("authenticator")
	assert.True(t, strings.Contains(encoded, `"kind":"secp256k1"`))

	// 事件同步发布到总线
	got := env.published()
	require.Len(t, got, 1)
	assert.Equal(t, testAccount, got[0].account)
	assert.Equal(t, ev, got[0].event)

	ids, err := env.svc.AuthenticatorIDs(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, []types.AuthenticatorID{0}, ids)
}

// TestService_BeforeTx_EndToEnd 编号 0 的 secp256k1 认证器授权一笔真实交易
func TestService_BeforeTx_EndToEnd(t *testing.T) {
	env := newTestEnv(t)
	env.instantiate(t)

	cred := append([]byte{0x00}, mustB64(t, txSignature)...)
	resp, err := env.svc.BeforeTx(context.Background(), testAccount, 100, mustB64(t, txBody), cred, false)
	require.NoError(t, err)
	require.Len(t, resp.Attributes, 1)
	assert.Equal(t, types.Attribute{Key: "method", Value: "before_tx"}, resp.Attributes[0])

	// 63 个零字节在曲线运算之前即判定过短
	short := append([]byte{0x00}, make([]byte, 63)...)
	_, err = env.svc.BeforeTx(context.Background(), testAccount, 100, mustB64(t, txBody), short, false)
	assert.ErrorIs(t, err, types.ErrShortSignature)
}

func TestService_BeforeTx_Rejections(t *testing.T) {
	env := newTestEnv(t)
	env.instantiate(t)
	ctx := context.Background()
	tx := []byte("tx")

	_, err := env.svc.BeforeTx(ctx, testAccount, 0, tx, nil, false)
	assert.ErrorIs(t, err, types.ErrEmptySignature)

	_, err = env.svc.BeforeTx(ctx, testAccount, 0, tx, append([]byte{0x00}, make([]byte, 65)...), false)
	assert.ErrorIs(t, err, types.ErrSignatureLength)

	_, err = env.svc.BeforeTx(ctx, testAccount, 0, tx, append([]byte{0x07}, make([]byte, 64)...), false)
	assert.ErrorIs(t, err, types.ErrAuthenticatorNotFound)

	_, err = env.svc.BeforeTx(ctx, testAccount+"/x", 0, tx, append([]byte{0x00}, make([]byte, 64)...), false)
	assert.ErrorIs(t, err, types.ErrMalformedInput)

	// simulate 跳过全部检查
	resp, err := env.svc.BeforeTx(ctx, testAccount, 0, tx, nil, true)
	require.NoError(t, err)
	assert.Equal(t, "before_tx", resp.Attributes[0].Value)
}

// TestService_BeforeTx_InvalidSignature 验证结果为 false 时返回 ErrInvalidSignature
func TestService_BeforeTx_InvalidSignature(t *testing.T) {
	env := newTestEnv(t)
	env.instantiate(t)
	ctx := context.Background()

	add, priv := newEd25519Add(t, 1)
	_, err := env.svc.AddAuthMethod(ctx, testAccount, testAccount, 0, add)
	require.NoError(t, err)

	tx := []byte("ed25519 tx")
	digest := sha256.Sum256(tx)
	sig := ed25519.Sign(priv, digest[:])

	_, err = env.svc.BeforeTx(ctx, testAccount, 0, tx, append([]byte{0x01}, sig...), false)
	require.NoError(t, err)

	sig[0] ^= 0x01
	_, err = env.svc.BeforeTx(ctx, testAccount, 0, tx, append([]byte{0x01}, sig...), false)
	assert.ErrorIs(t, err, types.ErrInvalidSignature)
}

// TestService_AuthMethods 增删认证方式仅账户自身可调用
func TestService_AuthMethods(t *testing.T) {
	env := newTestEnv(t)
	env.instantiate(t)
	ctx := context.Background()

	add, priv := newEd25519Add(t, 1)
	_, err := env.svc.AddAuthMethod(ctx, "xion1intruder", testAccount, 0, add)
	assert.ErrorIs(t, err, types.ErrUnauthorized)

	resp, err := env.svc.AddAuthMethod(ctx, testAccount, testAccount, 0, add)
	require.NoError(t, err)
	assert.Equal(t, types.EventAddAuthMethod, resp.Events[0].Type)

	_, err = env.svc.RemoveAuthMethod(ctx, "xion1intruder", testAccount, 0)
	assert.ErrorIs(t, err, types.ErrUnauthorized)

	resp, err = env.svc.RemoveAuthMethod(ctx, testAccount, testAccount, 0)
	require.NoError(t, err)
	assert.Equal(t, types.EventRemoveAuthMethod, resp.Events[0].Type)
	id, _ := resp.Events[0].Attr("authenticator_id")
	assert.Equal(t, "0", id)

	// 剩下的认证器仍可授权
	tx := []byte("after removal")
	digest := sha256.Sum256(tx)
	_, err = env.svc.BeforeTx(ctx, testAccount, 0, tx, append([]byte{0x01}, ed25519.Sign(priv, digest[:])...), false)
	require.NoError(t, err)

	_, err = env.svc.RemoveAuthMethod(ctx, testAccount, testAccount, 1)
	assert.ErrorIs(t, err, types.ErrMinimumAuthenticatorCount)

	raw, err := env.svc.AuthenticatorByID(ctx, testAccount, 1)
	require.NoError(t, err)
	auth, err := types.UnmarshalAuthenticator(raw)
	require.NoError(t, err)
	assert.Equal(t, add.Project(), auth)

	assert.Len(t, env.published(), 3)
}

func TestService_Emit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.svc.Emit(ctx, testAccount, testAccount, strings.Repeat("a", DefaultMaxEmitBytes))
	require.NoError(t, err)
	assert.Equal(t, types.EventAccountEmit, resp.Events[0].Type)

	_, err = env.svc.Emit(ctx, testAccount, testAccount, strings.Repeat("a", DefaultMaxEmitBytes+1))
	assert.ErrorIs(t, err, types.ErrEmissionSizeExceeded)

	_, err = env.svc.Emit(ctx, "xion1intruder", testAccount, "x")
	assert.ErrorIs(t, err, types.ErrUnauthorized)
}

func TestService_AfterTx(t *testing.T) {
	env := newTestEnv(t)
	resp, err := env.svc.AfterTx(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, "after_tx", resp.Attributes[0].Value)
}

func TestCheckSignatureLength(t *testing.T) {
	tests := []struct {
		name string
		kind types.AuthenticatorKind
		size int
		want error
	}{
		{"secp256k1 exact", types.KindSecp256K1, 64, nil},
		{"secp256k1 short", types.KindSecp256K1, 63, types.ErrShortSignature},
		{"ed25519 long", types.KindEd25519, 65, types.ErrSignatureLength},
		{"secp256r1 exact", types.KindSecp256R1, 64, nil},
		{"eth exact", types.KindEthWallet, 65, nil},
		{"eth short", types.KindEthWallet, 64, types.ErrShortSignature},
		{"jwt empty", types.KindJWT, 0, types.ErrEmptySignature},
		{"passkey any", types.KindPasskey, 1, nil},
		{"zk short", types.KindZKEmail, zkemail.MinSignatureSize - 1, types.ErrShortSignature},
		{"zk min", types.KindZKEmail, zkemail.MinSignatureSize, nil},
		{"unknown", types.AuthenticatorKind("rsa"), 64, types.ErrMalformedInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSignatureLength(tt.kind, make([]byte, tt.size))
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
