package main

import (
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weisyn/absacc/internal/core/authn/zkemail"
)

func newCommitmentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commitment <tx-base64>",
		Short: "计算交易体的 Poseidon 承诺（ZK-Email 公开输入）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tx, err := base64.StdEncoding.DecodeString(args[0])
			if err != nil {
				return fmt.Errorf("交易不是合法 base64: %w", err)
			}
			c, err := zkemail.TxBodyCommitmentFromBytes(tx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{
				"commitment": c.String(),
				"le_bytes":   base64.StdEncoding.EncodeToString(zkemail.EncodeFieldElement(c)),
			})
		},
	}
}

func newEmailCommitmentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "email-commitment <email> <salt>",
		Short: "计算邮箱地址承诺，用于注册 ZK-Email 认证器的 email_hash",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := zkemail.EmailCommitment(args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{
				"commitment": c.String(),
				"le_bytes":   base64.StdEncoding.EncodeToString(zkemail.EncodeFieldElement(c)),
			})
		},
	}
}
