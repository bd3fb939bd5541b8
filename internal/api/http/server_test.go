package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apitypes "github.com/weisyn/absacc/internal/api/http/types"
	apiconfig "github.com/weisyn/absacc/internal/config/api"
	logimpl "github.com/weisyn/absacc/internal/core/infrastructure/log"
	"github.com/weisyn/absacc/pkg/types"
)

const testAccount = "xion1account"

// fakeService 记录调用参数的账户服务
type fakeService struct {
	err error

	lastAccount   string
	lastSender    string
	lastBlockTime uint64
	lastAdd       types.AddAuthenticator
	lastTx        []byte
	lastCred      []byte
	lastSimulate  bool
	lastID        types.AuthenticatorID
	lastData      string
}

func (f *fakeService) ok(method string) (*types.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return types.NewResponse().AddAttribute("method", method), nil
}

func (f *fakeService) Instantiate(_ context.Context, account string, blockTime uint64, add types.AddAuthenticator) (*types.Response, error) {
	f.lastAccount, f.lastBlockTime, f.lastAdd = account, blockTime, add
	return f.ok("instantiate")
}

func (f *fakeService) AddAuthMethod(_ context.Context, sender, account string, blockTime uint64, add types.AddAuthenticator) (*types.Response, error) {
	f.lastSender, f.lastAccount, f.lastBlockTime, f.lastAdd = sender, account, blockTime, add
	return f.ok("add_auth_method")
}

func (f *fakeService) RemoveAuthMethod(_ context.Context, sender, account string, id types.AuthenticatorID) (*types.Response, error) {
	f.lastSender, f.lastAccount, f.lastID = sender, account, id
	return f.ok("remove_auth_method")
}

func (f *fakeService) BeforeTx(_ context.Context, account string, blockTime uint64, txBytes, cred []byte, simulate bool) (*types.Response, error) {
	f.lastAccount, f.lastBlockTime, f.lastTx, f.lastCred, f.lastSimulate = account, blockTime, txBytes, cred, simulate
	return f.ok("before_tx")
}

func (f *fakeService) AfterTx(_ context.Context, account string) (*types.Response, error) {
	f.lastAccount = account
	return f.ok("after_tx")
}

func (f *fakeService) Emit(_ context.Context, sender, account, data string) (*types.Response, error) {
	f.lastSender, f.lastAccount, f.lastData = sender, account, data
	return f.ok("emit")
}

func (f *fakeService) AuthenticatorIDs(_ context.Context, account string) ([]types.AuthenticatorID, error) {
	f.lastAccount = account
	if f.err != nil {
		return nil, f.err
	}
	return []types.AuthenticatorID{0, 3, 7}, nil
}

func (f *fakeService) AuthenticatorByID(_ context.Context, account string, id types.AuthenticatorID) ([]byte, error) {
	f.lastAccount, f.lastID = account, id
	if f.err != nil {
		return nil, f.err
	}
	return []byte(`{"kind":"ed25519","data":{"pubkey":"AA=="}}`), nil
}

func newTestRouter(t *testing.T, svc *fakeService, mutate func(*apiconfig.HTTPConfig)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	opts := apiconfig.New(nil).GetOptions().HTTP
	opts.ReadRateLimit, opts.WriteRateLimit = 0, 0
	if mutate != nil {
		mutate(&opts)
	}
	reg := prometheus.NewRegistry()
	return NewRouter(RouterConfig{
		Options:  opts,
		Service:  svc,
		Logger:   logimpl.NewNop(),
		Registry: reg,
		Gatherer: reg,
	})
}

func do(t *testing.T, h nethttp.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apitypes.ErrorDetail {
	t.Helper()
	var resp apitypes.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func addEd25519JSON(t *testing.T) json.RawMessage {
	t.Helper()
	raw, err := types.MarshalAddAuthenticator(&types.AddEd25519{Id: 2, PubKey: make([]byte, 32), Signature: make([]byte, 64)})
	require.NoError(t, err)
	return raw
}

func TestRouter_Instantiate(t *testing.T) {
	svc := &fakeService{}
	r := newTestRouter(t, svc, nil)

	rec := do(t, r, nethttp.MethodPost, "/v1/accounts/"+testAccount+"/instantiate", map[string]interface{}{
		"block_time":    1700000000,
		"authenticator": addEd25519JSON(t),
	})
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	assert.Equal(t, testAccount, svc.lastAccount)
	assert.Equal(t, uint64(1700000000), svc.lastBlockTime)
	require.NotNil(t, svc.lastAdd)
	assert.Equal(t, types.KindEd25519, svc.lastAdd.Kind())
	assert.Equal(t, types.AuthenticatorID(2), svc.lastAdd.ID())

	var resp struct {
		Data apitypes.ExecuteResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Attributes, 1)
	assert.Equal(t, "instantiate", resp.Data.Attributes[0].Value)
}

func TestRouter_MalformedBodies(t *testing.T) {
	r := newTestRouter(t, &fakeService{}, nil)
	path := "/v1/accounts/" + testAccount + "/instantiate"

	rec := do(t, r, nethttp.MethodPost, path, "{not json")
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Equal(t, "MALFORMED_INPUT", decodeError(t, rec).Code)

	rec = do(t, r, nethttp.MethodPost, path, map[string]interface{}{
		"authenticator": map[string]interface{}{"kind": "rsa", "data": map[string]interface{}{}},
	})
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)

	rec = do(t, r, nethttp.MethodGet, "/v1/accounts/"+testAccount+"/authenticators/256", nil)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
}

func TestRouter_BeforeTx(t *testing.T) {
	svc := &fakeService{}
	r := newTestRouter(t, svc, nil)

	// []byte 字段按 base64 解码
	rec := do(t, r, nethttp.MethodPost, "/v1/accounts/"+testAccount+"/before-tx", map[string]interface{}{
		"block_time": 42,
		"tx_bytes":   []byte("tx"),
		"cred":       []byte{0, 1, 2},
		"simulate":   true,
	})
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []byte("tx"), svc.lastTx)
	assert.Equal(t, []byte{0, 1, 2}, svc.lastCred)
	assert.True(t, svc.lastSimulate)
	assert.Equal(t, uint64(42), svc.lastBlockTime)
}

// TestRouter_ErrorMapping 引擎错误按分类映射为状态码
func TestRouter_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{types.ErrShortSignature, nethttp.StatusBadRequest, "MALFORMED_INPUT"},
		{types.ErrInvalidSignature, nethttp.StatusUnauthorized, "AUTHORIZATION"},
		{types.ErrUnauthorized, nethttp.StatusForbidden, apitypes.ErrUnauthorized},
		{fmt.Errorf("get: %w", types.ErrAuthenticatorNotFound), nethttp.StatusNotFound, "REGISTRY_INVARIANT"},
		{types.ErrMinimumAuthenticatorCount, nethttp.StatusConflict, "REGISTRY_INVARIANT"},
		{&types.InvalidTimeError{}, nethttp.StatusUnauthorized, "TIME_WINDOW"},
		{types.ErrOracleUnavailable, nethttp.StatusServiceUnavailable, "ORACLE"},
		{fmt.Errorf("disk on fire"), nethttp.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			r := newTestRouter(t, &fakeService{err: tc.err}, nil)
			rec := do(t, r, nethttp.MethodPost, "/v1/accounts/"+testAccount+"/before-tx", map[string]interface{}{})
			assert.Equal(t, tc.status, rec.Code)
			detail := decodeError(t, rec)
			assert.Equal(t, tc.code, detail.Code)
			assert.Equal(t, rec.Header().Get("X-Request-ID"), detail.RequestID)
		})
	}
}

func TestRouter_AuthMethods(t *testing.T) {
	svc := &fakeService{}
	r := newTestRouter(t, svc, nil)
	base := "/v1/accounts/" + testAccount

	rec := do(t, r, nethttp.MethodPost, base+"/auth-methods", map[string]interface{}{
		"sender":        testAccount,
		"block_time":    7,
		"authenticator": addEd25519JSON(t),
	})
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, testAccount, svc.lastSender)

	rec = do(t, r, nethttp.MethodPost, base+"/auth-methods", map[string]interface{}{
		"authenticator": addEd25519JSON(t),
	})
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code, "sender is required")

	rec = do(t, r, nethttp.MethodDelete, base+"/auth-methods/5?sender="+testAccount, nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, types.AuthenticatorID(5), svc.lastID)

	rec = do(t, r, nethttp.MethodPost, base+"/emit", map[string]interface{}{"sender": testAccount, "data": "hello"})
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "hello", svc.lastData)

	rec = do(t, r, nethttp.MethodPost, base+"/after-tx", nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
}

func TestRouter_Queries(t *testing.T) {
	svc := &fakeService{}
	r := newTestRouter(t, svc, nil)
	base := "/v1/accounts/" + testAccount

	rec := do(t, r, nethttp.MethodGet, base+"/authenticators", nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ids":[0,3,7]`)

	rec = do(t, r, nethttp.MethodGet, base+"/authenticators/3", nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, types.AuthenticatorID(3), svc.lastID)
	assert.Contains(t, rec.Body.String(), `"kind":"ed25519"`)
}

func TestRouter_BodyLimit(t *testing.T) {
	r := newTestRouter(t, &fakeService{}, func(o *apiconfig.HTTPConfig) { o.MaxRequestSize = 64 })

	rec := do(t, r, nethttp.MethodPost, "/v1/accounts/"+testAccount+"/emit", map[string]interface{}{
		"sender": testAccount,
		"data":   strings.Repeat("x", 256),
	})
	assert.Equal(t, nethttp.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, apitypes.ErrRequestTooLarge, decodeError(t, rec).Code)
}

func TestRouter_RateLimit(t *testing.T) {
	r := newTestRouter(t, &fakeService{}, func(o *apiconfig.HTTPConfig) { o.WriteRateLimit = 2 })
	path := "/v1/accounts/" + testAccount + "/after-tx"

	assert.Equal(t, nethttp.StatusOK, do(t, r, nethttp.MethodPost, path, nil).Code)
	assert.Equal(t, nethttp.StatusOK, do(t, r, nethttp.MethodPost, path, nil).Code)
	rec := do(t, r, nethttp.MethodPost, path, nil)
	assert.Equal(t, nethttp.StatusTooManyRequests, rec.Code)
	assert.Equal(t, apitypes.ErrRateLimitExceeded, decodeError(t, rec).Code)

	// 查询额度为 0，不受限
	for i := 0; i < 5; i++ {
		assert.Equal(t, nethttp.StatusOK, do(t, r, nethttp.MethodGet, "/v1/accounts/"+testAccount+"/authenticators", nil).Code)
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	r := newTestRouter(t, &fakeService{}, nil)

	rec := do(t, r, nethttp.MethodGet, "/health/live", nil)
	assert.Equal(t, nethttp.StatusOK, rec.Code)
	rec = do(t, r, nethttp.MethodGet, "/health/ready", nil)
	assert.Equal(t, nethttp.StatusOK, rec.Code)
	rec = do(t, r, nethttp.MethodGet, "/health", nil)
	assert.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)

	rec = do(t, r, nethttp.MethodGet, "/metrics", nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "absacc_api_requests_total")
	assert.Contains(t, rec.Body.String(), `route="/health"`)
}

func TestRouter_KeepsIncomingRequestID(t *testing.T) {
	r := newTestRouter(t, &fakeService{}, nil)
	req := httptest.NewRequest(nethttp.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}
