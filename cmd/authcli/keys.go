package main

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/weisyn/absacc/internal/core/infrastructure/crypto/address"
	"github.com/weisyn/absacc/internal/core/infrastructure/crypto/hash"
)

// decodeKey 接受 0x 十六进制或标准 base64
func decodeKey(s string) ([]byte, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return hex.DecodeString(s[2:])
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("公钥既不是 0x 十六进制也不是 base64: %w", err)
	}
	return b, nil
}

func newAddressCmd() *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "address <secp256k1-pubkey>",
		Short: "由 secp256k1 压缩公钥派生 bech32 地址",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := decodeKey(args[0])
			if err != nil {
				return err
			}
			addr, err := address.NewAddressService(hash.NewHashService()).PubKeyToBech32(prefix, pub)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{"address": addr})
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "xion", "bech32 前缀")
	return cmd
}

func newEthAddrCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ethaddr <secp256k1-pubkey>",
		Short: "由 secp256k1 公钥（压缩或未压缩）派生以太坊地址",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := decodeKey(args[0])
			if err != nil {
				return err
			}
			var addr string
			switch len(raw) {
			case 33:
				pub, err := ethcrypto.DecompressPubkey(raw)
				if err != nil {
					return fmt.Errorf("解压公钥失败: %w", err)
				}
				addr = ethcrypto.PubkeyToAddress(*pub).Hex()
			case 65:
				pub, err := ethcrypto.UnmarshalPubkey(raw)
				if err != nil {
					return fmt.Errorf("解析公钥失败: %w", err)
				}
				addr = ethcrypto.PubkeyToAddress(*pub).Hex()
			default:
				return fmt.Errorf("公钥长度 %d 无效，需要 33 或 65 字节", len(raw))
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{"address": addr})
		},
	}
}
