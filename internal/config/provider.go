package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/weisyn/absacc/internal/config/api"
	"github.com/weisyn/absacc/internal/config/authn"
	"github.com/weisyn/absacc/internal/config/event"
	"github.com/weisyn/absacc/internal/config/log"
	"github.com/weisyn/absacc/internal/config/oracle"
	"github.com/weisyn/absacc/internal/config/storage/badger"
	"github.com/weisyn/absacc/pkg/interfaces/config"
	"github.com/weisyn/absacc/pkg/types"
)

const (
	defaultEnvironment = "prod"
	defaultDataDir     = "./data"
)

// Provider 实现配置提供者接口
type Provider struct {
	appConfig *types.AppConfig
}

var _ config.Provider = (*Provider)(nil)

// NewProvider 创建配置提供者，appConfig 为 nil 时全部使用默认值
func NewProvider(appConfig *types.AppConfig) config.Provider {
	if appConfig == nil {
		appConfig = &types.AppConfig{}
	}
	return &Provider{appConfig: appConfig}
}

// LoadAppConfig 从 JSON 文件读取应用配置
func LoadAppConfig(path string) (*types.AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	var appConfig types.AppConfig
	if err := json.Unmarshal(data, &appConfig); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	return &appConfig, nil
}

// GetAPI 获取API服务配置
func (p *Provider) GetAPI() *api.APIOptions {
	return api.New(p.appConfig.API).GetOptions()
}

// GetLog 获取日志配置，未指定文件路径时写入 {data_dir}/logs
func (p *Provider) GetLog() *log.LogOptions {
	return log.NewWithDataDir(p.appConfig.Log, p.logDataDir()).GetOptions()
}

// GetEvent 获取事件配置
func (p *Provider) GetEvent() *event.EventOptions {
	return event.New().GetOptions()
}

// GetBadger 获取注册表存储配置
//
// storage.data_root 缺省时回退到 data_dir。
func (p *Provider) GetBadger() *badger.BadgerOptions {
	storage := p.appConfig.Storage
	if (storage == nil || storage.DataRoot == nil) && p.appConfig.DataDir != nil {
		merged := &types.UserStorageConfig{DataRoot: p.appConfig.DataDir}
		if storage != nil {
			merged.MemoryOnly = storage.MemoryOnly
		}
		storage = merged
	}
	return badger.New(storage).GetOptions()
}

// GetAuthn 获取认证引擎配置
func (p *Provider) GetAuthn() *authn.AuthnOptions {
	return authn.New(p.appConfig.Authn).GetOptions()
}

// GetOracle 获取预言机配置
func (p *Provider) GetOracle() *oracle.OracleOptions {
	return oracle.New(p.appConfig.Oracle).GetOptions()
}

// GetEnvironment 获取运行环境，未配置或无效值时为 prod
func (p *Provider) GetEnvironment() string {
	if p.appConfig.Environment == nil {
		return defaultEnvironment
	}
	switch env := *p.appConfig.Environment; env {
	case "dev", "test", "prod":
		return env
	default:
		return defaultEnvironment
	}
}

// GetDataDir 获取数据根目录
func (p *Provider) GetDataDir() string {
	if p.appConfig.DataDir != nil && *p.appConfig.DataDir != "" {
		return *p.appConfig.DataDir
	}
	return defaultDataDir
}

// logDataDir 只有显式配置 data_dir 时才默认写日志文件
func (p *Provider) logDataDir() string {
	if p.appConfig.DataDir != nil {
		return *p.appConfig.DataDir
	}
	return ""
}
