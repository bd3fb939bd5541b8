package log

import "go.uber.org/zap/zapcore"

// 日志配置默认值
const (
	defaultLogLevel  = "info"
	defaultToConsole = true

	// defaultLogFileName 数据目录下的日志文件名
	defaultLogFileName = "authd.log"

	defaultMaxSize    = 100 // MB
	defaultMaxBackups = 10
	defaultMaxAge     = 30 // 天
	defaultCompress   = true

	defaultEnableCaller     = true
	defaultEnableStacktrace = true
)

var defaultLevelMap = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
	"panic": zapcore.PanicLevel,
	"fatal": zapcore.FatalLevel,
}
