package plugins

import (
	"context"
	"fmt"
	"math/big"

	"github.com/weisyn/absacc/internal/core/authn/zkemail"
	"github.com/weisyn/absacc/pkg/interfaces/authn"
	"github.com/weisyn/absacc/pkg/types"
)

// ZKEmailPlugin ZK-Email 验证插件
//
// 🎯 **验证流水线**：
// 1. 加载验证密钥（注册时已校验格式，按 SHA-256 缓存）
// 2. 拆分签名：256 字节 DKIM 哈希块 + 压缩证明，证明解析失败为普通拒绝
// 3. 计算交易体承诺，解码存储的邮箱承诺
// 4. 向 DKIM 预言机确认 (domain, hash)，无匹配时在 Groth16 之前返回 types.ErrInvalidDkim
// 5. Groth16 验证，配对失败返回 false 而不是错误
type ZKEmailPlugin struct {
	dkim  authn.DkimKeyLookup
	vkeys *zkemail.KeyCache
}

// NewZKEmailPlugin 创建 ZK-Email 插件
func NewZKEmailPlugin(dkim authn.DkimKeyLookup, vkeys *zkemail.KeyCache) *ZKEmailPlugin {
	if vkeys == nil {
		vkeys = zkemail.NewKeyCache(0)
	}
	return &ZKEmailPlugin{dkim: dkim, vkeys: vkeys}
}

// Name 返回插件名称
func (p *ZKEmailPlugin) Name() string {
	return types.KindZKEmail.String()
}

// Verify 验证 ZK-Email 签名
func (p *ZKEmailPlugin) Verify(
	ctx context.Context,
	auth *types.ZKEmailAuthenticator,
	vctx *types.VerificationContext,
	sig []byte,
) (bool, error) {
	if len(sig) < zkemail.MinSignatureSize {
		return false, fmt.Errorf("%w: zk-email signature needs at least %d bytes, got %d",
			types.ErrShortSignature, zkemail.MinSignatureSize, len(sig))
	}

	vk, err := p.vkeys.Load(auth.VKey)
	if err != nil {
		return false, err
	}

	dkimBlock, proofBytes := sig[:zkemail.DkimHashBlockSize], sig[zkemail.DkimHashBlockSize:]
	proof, err := zkemail.ParseProof(proofBytes)
	if err != nil {
		return false, err
	}

	txCommit, err := zkemail.TxBodyCommitmentFromBytes(vctx.Message)
	if err != nil {
		return false, fmt.Errorf("交易体承诺: %w", err)
	}
	emailHash, err := zkemail.DecodeFieldElement(auth.EmailHash)
	if err != nil {
		return false, fmt.Errorf("邮箱承诺: %w", err)
	}

	if err := p.checkDkim(ctx, auth.DkimDomain, dkimBlock); err != nil {
		return false, err
	}
	dkimHash, err := zkemail.DecodeFieldElement(dkimBlock)
	if err != nil {
		return false, fmt.Errorf("DKIM 哈希: %w", err)
	}

	return zkemail.VerifyProof(vk, proof, [zkemail.PublicInputCount]*big.Int{txCommit, emailHash, dkimHash})
}

// checkDkim 确认 (domain, poseidon_hash) 存在于信任锚
func (p *ZKEmailPlugin) checkDkim(ctx context.Context, domain string, dkimBlock []byte) error {
	if p.dkim == nil {
		return types.ErrOracleUnavailable
	}
	resp, err := p.dkim.QueryDkimPubKeys(ctx, &types.DkimPubKeysRequest{
		Selector:     "",
		Domain:       domain,
		PoseidonHash: dkimBlock,
	})
	if err != nil {
		return err
	}
	if resp == nil || len(resp.DkimPubKeys) == 0 {
		return types.ErrInvalidDkim
	}
	return nil
}

// Register 校验验证密钥与邮箱承诺格式，再以注册上下文验证证明
func (p *ZKEmailPlugin) Register(
	ctx context.Context,
	vctx *types.VerificationContext,
	add *types.AddZKEmail,
) (types.Authenticator, error) {
	if _, err := p.vkeys.Load(add.VKey); err != nil {
		return nil, err
	}
	if len(add.EmailHash) != zkemail.FieldElementSize {
		return nil, fmt.Errorf("%w: email hash must be %d bytes", types.ErrMalformedInput, zkemail.FieldElementSize)
	}
	if _, err := zkemail.DecodeFieldElement(add.EmailHash); err != nil {
		return nil, err
	}
	if add.DkimDomain == "" {
		return nil, fmt.Errorf("%w: empty dkim domain", types.ErrMalformedInput)
	}

	auth := add.Project().(*types.ZKEmailAuthenticator)
	ok, err := p.Verify(ctx, auth, vctx, add.Proof)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrInvalidSignature
	}
	return auth, nil
}
