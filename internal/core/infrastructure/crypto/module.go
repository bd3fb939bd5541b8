// Package crypto 提供认证引擎使用的密码学基础服务
package crypto

import (
	"github.com/weisyn/absacc/internal/core/infrastructure/crypto/address"
	"github.com/weisyn/absacc/internal/core/infrastructure/crypto/hash"
	"github.com/weisyn/absacc/internal/core/infrastructure/crypto/secp256k1"
	"github.com/weisyn/absacc/pkg/interfaces/infrastructure/crypto"
	"go.uber.org/fx"
)

// CryptoOutput 定义加密模块的输出结构
type CryptoOutput struct {
	fx.Out

	HashManager    crypto.HashManager
	AddressManager crypto.AddressManager
	Curve          *secp256k1.Curve
}

// Module 返回加密模块
func Module() fx.Option {
	return fx.Module("crypto",
		fx.Provide(ProvideCryptoServices),
	)
}

// ProvideCryptoServices 提供加密服务
func ProvideCryptoServices() CryptoOutput {
	hasher := hash.NewHashService()
	return CryptoOutput{
		HashManager:    hasher,
		AddressManager: address.NewAddressService(hasher),
		Curve:          secp256k1.NewCurve(),
	}
}
