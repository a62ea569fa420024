package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"gameportal/internal/config"
	"gameportal/internal/model"
	"gameportal/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// memSessionStore 测试用内存会话存储
type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session.Identity
	seq      int
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: map[string]*session.Identity{}}
}

func (s *memSessionStore) Issue(_ context.Context, identity *session.Identity) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	token := fmt.Sprintf("test-token-%d", s.seq)
	s.sessions[token] = identity
	return token, nil
}

func (s *memSessionStore) Get(_ context.Context, token string) (*session.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[token], nil
}

func (s *memSessionStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	accountDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, accountDB.AutoMigrate(&model.User{}))

	// 预置 id=1 的管理员行，与旧库一致，同时避免测试注册的账号拿到 id=1
	hash, err := model.HashPassword("adminpass")
	require.NoError(t, err)
	require.NoError(t, accountDB.Create(&model.User{
		ID:       model.AdminUserID,
		Account:  "gmmaster",
		Password: hash,
		Username: "gmmaster",
	}).Error)

	rechargeDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, rechargeDB.AutoMigrate(&model.RechargeRecord{}))

	cfg := &config.Config{
		Business: config.BusinessConfig{
			Servers: []string{"神武奇章", "炎黄新章"},
			Items:   []string{"月卡", "季卡", "年卡", "元宝礼包"},
		},
	}

	return SetupRouter(accountDB, rechargeDB, newMemSessionStore(), nil, cfg), accountDB
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := map[string]interface{}{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func registerBody(account string) gin.H {
	return gin.H{
		"account":         account,
		"password":        "secret123",
		"confirmPassword": "secret123",
		"email":           "player@example.com",
		"telephone":       "13800138000",
	}
}

func loginFor(t *testing.T, router *gin.Engine, account, password string) string {
	t.Helper()
	w, resp := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"account":  account,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := resp["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRegisterLoginProfileFlow(t *testing.T) {
	router, accountDB := newTestRouter(t)

	w, _ := doJSON(t, router, http.MethodPost, "/api/auth/register", "", registerBody("player01"))
	assert.Equal(t, http.StatusCreated, w.Code)

	// 同账号二次注册
	w, resp := doJSON(t, router, http.MethodPost, "/api/auth/register", "", registerBody("player01"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "该账号已被注册", resp["message"])

	// 密码错误
	w, _ = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"account": "player01", "password": "wrong-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := loginFor(t, router, "player01", "secret123")

	// 给账号补两个角色槽位再查资料
	require.NoError(t, accountDB.Model(&model.User{}).
		Where("account = ?", "player01").
		Updates(map[string]interface{}{"char1": "Hero ", "char3": "   "}).Error)

	w, resp = doJSON(t, router, http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := resp["profile"].(map[string]interface{})
	assert.Equal(t, "player01", profile["account"])
	assert.Equal(t, []interface{}{"Hero"}, profile["characters"])
}

func TestRegisterValidationReturnsAllErrors(t *testing.T) {
	router, _ := newTestRouter(t)

	w, resp := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"account":         "ab",      // 太短
		"password":        "123",     // 太短
		"confirmPassword": "1234",    // 不一致
		"email":           "not-an-email",
		"telephone":       "123",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "输入验证失败", resp["message"])

	errs := resp["errors"].([]interface{})
	assert.Len(t, errs, 5, "所有失败字段一次性返回")
}

func TestProfileRequiresAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	// 没有令牌
	w, _ := doJSON(t, router, http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 乱码令牌按未登录处理，不允许抛错
	for _, garbage := range []string{"%%%%", "eyJpZCI6MX0=", "Bearer", "!@#$^&*"} {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
		req.Header.Set("Authorization", garbage)
		w := httptest.NewRecorder()
		require.NotPanics(t, func() { router.ServeHTTP(w, req) })
		assert.Equal(t, http.StatusUnauthorized, w.Code, "令牌 %q", garbage)
	}
}

func TestForgedIdentityTokenRejected(t *testing.T) {
	router, _ := newTestRouter(t)

	// 旧版把 base64(用户JSON) 当令牌，伪造 id=1 即可冒充管理员。
	// 新方案下这种令牌在会话存储里不存在，必须被拒。
	forged := "eyJpZCI6MSwiYWNjb3VudCI6ImdtIiwiaXNBZG1pbiI6dHJ1ZX0="
	w, _ := doJSON(t, router, http.MethodGet, "/api/admin/recharge-stats", forged, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestChangePasswordFlow(t *testing.T) {
	router, _ := newTestRouter(t)

	w, _ := doJSON(t, router, http.MethodPost, "/api/auth/register", "", registerBody("player01"))
	require.Equal(t, http.StatusCreated, w.Code)
	token := loginFor(t, router, "player01", "secret123")

	w, resp := doJSON(t, router, http.MethodPost, "/api/auth/change-password", token, gin.H{
		"oldPassword": "wrong-old",
		"newPassword": "newsecret1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "原密码不正确", resp["message"])

	w, _ = doJSON(t, router, http.MethodPost, "/api/auth/change-password", token, gin.H{
		"oldPassword": "secret123",
		"newPassword": "newsecret1",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	loginFor(t, router, "player01", "newsecret1")
}

func submitBody(transactionID string) gin.H {
	return gin.H{
		"payment_time":   "2025-01-02T15:04",
		"transaction_id": transactionID,
		"amount":         "19.995",
		"items":          []string{"月卡", "元宝礼包"},
		"game_account":   "player01",
		"character_name": "大侠",
		"server":         "炎黄新章",
		"remark":         "微信转账",
	}
}

func TestRechargeSubmitFlow(t *testing.T) {
	router, _ := newTestRouter(t)

	w, _ := doJSON(t, router, http.MethodPost, "/api/recharge/submit", "", submitBody("abc123"))
	assert.Equal(t, http.StatusCreated, w.Code)

	// 同一单号（不同大小写）重复提交
	w, resp := doJSON(t, router, http.MethodPost, "/api/recharge/submit", "", submitBody("ABC123"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "该交易单号已提交，请勿重复提交", resp["message"])

	// 校验失败列出全部问题字段
	w, resp = doJSON(t, router, http.MethodPost, "/api/recharge/submit", "", gin.H{
		"payment_time":   "",
		"transaction_id": "AB12",
		"amount":         "-1",
		"items":          []string{},
		"game_account":   "ab",
		"character_name": "",
		"server":         "没有的分区",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	errs := resp["errors"].([]interface{})
	assert.GreaterOrEqual(t, len(errs), 6)
}

func TestAdminEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	// 普通用户访问管理接口
	w, _ := doJSON(t, router, http.MethodPost, "/api/auth/register", "", registerBody("player01"))
	require.Equal(t, http.StatusCreated, w.Code)
	userToken := loginFor(t, router, "player01", "secret123")

	w, _ = doJSON(t, router, http.MethodGet, "/api/admin/recharge-records", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 无令牌同样是 403（与旧版行为一致）
	w, _ = doJSON(t, router, http.MethodGet, "/api/admin/recharge-records", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 管理员正常走完审核流程
	adminToken := loginFor(t, router, "gmmaster", "adminpass")

	w, _ = doJSON(t, router, http.MethodPost, "/api/recharge/submit", "", submitBody("TX0001"))
	require.Equal(t, http.StatusCreated, w.Code)

	w, resp := doJSON(t, router, http.MethodGet, "/api/admin/recharge-records?page=1&limit=20", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	records := resp["records"].([]interface{})
	require.Len(t, records, 1)
	assert.Equal(t, false, resp["hasMore"])

	first := records[0].(map[string]interface{})
	id := int64(first["id"].(float64))
	assert.Equal(t, "TX0001", first["transaction_id"])
	assert.Equal(t, "pending", first["status"])

	w, resp = doJSON(t, router, http.MethodPost, "/api/admin/update-status", adminToken, gin.H{
		"id": id, "status": "verified",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "充值记录已标记为已通过", resp["message"])

	// 不存在的记录
	w, _ = doJSON(t, router, http.MethodPost, "/api/admin/update-status", adminToken, gin.H{
		"id": 99999, "status": "verified",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 非法状态
	w, _ = doJSON(t, router, http.MethodPost, "/api/admin/update-status", adminToken, gin.H{
		"id": id, "status": "approved",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = doJSON(t, router, http.MethodGet, "/api/admin/recharge-stats", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := resp["stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["total"])
	assert.Equal(t, float64(1), stats["verified"])
	assert.Equal(t, "20.00", stats["totalAmount"], "19.995 归一成 20.00")
}

func TestLogout(t *testing.T) {
	router, _ := newTestRouter(t)

	w, _ := doJSON(t, router, http.MethodPost, "/api/auth/register", "", registerBody("player01"))
	require.Equal(t, http.StatusCreated, w.Code)
	token := loginFor(t, router, "player01", "secret123")

	w, _ = doJSON(t, router, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// 注销后的令牌立即失效
	w, _ = doJSON(t, router, http.MethodGet, "/api/auth/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestClientIPHeaderOrder(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newCtx := func(headers map[string]string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.RemoteAddr = "192.0.2.9:51234"
		for k, v := range headers {
			c.Request.Header.Set(k, v)
		}
		return c
	}

	// X-Forwarded-For 取第一跳
	c := newCtx(map[string]string{
		"X-Forwarded-For": "203.0.113.5, 10.0.0.1",
		"X-Real-IP":       "198.51.100.7",
	})
	assert.Equal(t, "203.0.113.5", ClientIP(c))

	c = newCtx(map[string]string{"X-Real-IP": "198.51.100.7"})
	assert.Equal(t, "198.51.100.7", ClientIP(c))

	c = newCtx(map[string]string{"X-Client-IP": "198.51.100.8"})
	assert.Equal(t, "198.51.100.8", ClientIP(c))

	c = newCtx(map[string]string{"CF-Connecting-IP": "198.51.100.9"})
	assert.Equal(t, "198.51.100.9", ClientIP(c))

	// 都没有就退回 socket 地址
	c = newCtx(nil)
	assert.Equal(t, "192.0.2.9", ClientIP(c))
}
