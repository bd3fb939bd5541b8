package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResult(t *testing.T) {
	assert.Equal(t, ResultOK, Result(true, nil))
	assert.Equal(t, ResultRejected, Result(false, nil))
	assert.Equal(t, ResultError, Result(false, errors.New("x")))
	assert.Equal(t, ResultError, Result(true, errors.New("x")))
}

func TestObserve(t *testing.T) {
	before := VerifyCount("metrics_test", ResultOK)
	ObserveVerify("metrics_test", true, nil, time.Millisecond)
	assert.Equal(t, before+1, VerifyCount("metrics_test", ResultOK))

	before = OracleCount("metrics_test", ResultError)
	ObserveOracle("metrics_test", errors.New("down"))
	assert.Equal(t, before+1, OracleCount("metrics_test", ResultError))

	before = RegistryCount("metrics_test", ResultOK)
	ObserveRegistry("metrics_test", nil)
	assert.Equal(t, before+1, RegistryCount("metrics_test", ResultOK))
}
