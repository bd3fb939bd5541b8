// Package configs 嵌入各环境的默认配置
package configs

import _ "embed"

//go:embed development/authd.json
var developmentConfig []byte

//go:embed production/authd.json
var productionConfig []byte

// ForEnvironment 返回指定环境的嵌入配置，dev | prod，未知环境返回 nil
func ForEnvironment(env string) []byte {
	switch env {
	case "dev", "development":
		return developmentConfig
	case "prod", "production":
		return productionConfig
	default:
		return nil
	}
}
