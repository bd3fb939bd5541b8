// authd 账户认证服务
//
// 用法：
//
//	authd --config ./authd.json
//	authd --env dev
//	ABSACC_CONFIG_PATH=./authd.json authd
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weisyn/absacc/configs"
	"github.com/weisyn/absacc/internal/app"
	"github.com/weisyn/absacc/internal/app/version"
	"github.com/weisyn/absacc/pkg/types"
)

var (
	configPath string
	envName    string
	noAPI      bool
)

var rootCmd = &cobra.Command{
	Use:           "authd",
	Short:         "账户认证服务",
	Long:          "多方案账户认证器注册表与交易前授权服务，HTTP 接口见 /v1/accounts",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := buildOptions()
		if err != nil {
			return err
		}
		application, err := app.Start(opts...)
		if err != nil {
			return fmt.Errorf("启动失败: %w", err)
		}
		application.Wait()
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.GetFullVersion())
	},
}

// buildOptions 配置来源优先级：--config > --env 嵌入配置 > 环境变量 > 默认值
func buildOptions() ([]app.Option, error) {
	var opts []app.Option
	switch {
	case configPath != "":
		opts = append(opts, app.WithConfigFile(configPath))
	case envName != "":
		raw := configs.ForEnvironment(envName)
		if raw == nil {
			return nil, fmt.Errorf("未知环境 %q，可选 dev | prod", envName)
		}
		var cfg types.AppConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("解析嵌入配置失败: %w", err)
		}
		opts = append(opts, app.WithAppConfig(&cfg))
	}
	if noAPI {
		opts = append(opts, app.WithoutAPI())
	}
	return opts, nil
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "配置文件路径")
	rootCmd.Flags().StringVar(&envName, "env", "", "使用嵌入的环境配置: dev | prod")
	rootCmd.Flags().BoolVar(&noAPI, "no-api", false, "不启动 HTTP 接口")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
