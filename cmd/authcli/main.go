// authcli 账户认证离线工具
//
// 地址派生、ZK-Email 承诺计算与离线签名验证，不依赖运行中的 authd。
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// newRootCmd 构建命令树，测试中每次新建避免标志状态串扰
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "authcli",
		Short:         "账户认证离线工具",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newAddressCmd(),
		newEthAddrCmd(),
		newCommitmentCmd(),
		newEmailCommitmentCmd(),
		newVerifyCmd(),
	)
	return root
}

// printJSON 以缩进 JSON 输出结果
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
