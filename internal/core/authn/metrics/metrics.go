// Package metrics 认证引擎的 Prometheus 指标
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const namespace = "absacc"

// 结果标签
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

var (
	verifyTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "authn",
		Name:      "verify_total",
		Help:      "Total number of authenticator verifications by scheme and result.",
	}, []string{"scheme", "result"})

	verifyDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "authn",
		Name:      "verify_duration_seconds",
		Help:      "Duration of authenticator verifications.",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"scheme"})

	oracleCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "oracle",
		Name:      "calls_total",
		Help:      "Total number of external oracle calls by oracle and result.",
	}, []string{"oracle", "result"})

	registryMutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "registry",
		Name:      "mutations_total",
		Help:      "Total number of registry mutations by operation and result.",
	}, []string{"op", "result"})
)

func init() {
	prometheus.MustRegister(verifyTotal, verifyDuration, oracleCalls, registryMutations)
}

// Result 将验证结果映射为标签
func Result(ok bool, err error) string {
	switch {
	case err != nil:
		return ResultError
	case ok:
		return ResultOK
	default:
		return ResultRejected
	}
}

// ObserveVerify 记录一次验证
func ObserveVerify(scheme string, ok bool, err error, elapsed time.Duration) {
	verifyTotal.WithLabelValues(scheme, Result(ok, err)).Inc()
	verifyDuration.WithLabelValues(scheme).Observe(elapsed.Seconds())
}

// ObserveOracle 记录一次预言机调用
func ObserveOracle(oracle string, err error) {
	oracleCalls.WithLabelValues(oracle, Result(err == nil, err)).Inc()
}

// ObserveRegistry 记录一次注册表变更
func ObserveRegistry(op string, err error) {
	registryMutations.WithLabelValues(op, Result(err == nil, err)).Inc()
}

// VerifyCount 读取计数，用于测试
func VerifyCount(scheme, result string) float64 {
	return counterValue(verifyTotal.WithLabelValues(scheme, result))
}

// OracleCount 读取计数，用于测试
func OracleCount(oracle, result string) float64 {
	return counterValue(oracleCalls.WithLabelValues(oracle, result))
}

// RegistryCount 读取计数，用于测试
func RegistryCount(op, result string) float64 {
	return counterValue(registryMutations.WithLabelValues(op, result))
}

func counterValue(c prometheus.Counter) float64 {
	return testutil.ToFloat64(c)
}
