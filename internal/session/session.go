package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// ============================================================================
// 登录会话
// ============================================================================
//
// 旧版门户的“令牌”是客户端自己把用户 JSON 做 base64 编出来的字符串，
// 服务端既不签名也不校验来源，任何人改一下 id=1 就能伪造管理员身份。
// 这是一个安全缺陷，这里不再沿用。
//
// 现在的方案：登录成功后由服务端生成随机会话令牌，身份快照存在 Redis 里，
// 令牌本身不携带任何信息。对外契约不变：请求带令牌，服务端解析出身份或
// 视为未登录，解析过程永远不会向调用方抛错。
// ============================================================================

const keyPrefix = "session:"

// Identity 会话中保存的身份快照
type Identity struct {
	ID       int    `json:"id"`
	Account  string `json:"account"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Store 会话存取接口
// Get 对不存在、已过期、格式损坏的令牌一律返回 (nil, nil)，表示未登录；
// 只有存储本身不可用才返回 error。
type Store interface {
	Issue(ctx context.Context, identity *Identity) (string, error)
	Get(ctx context.Context, token string) (*Identity, error)
	Revoke(ctx context.Context, token string) error
}

// RedisStore 基于 Redis 的会话存储
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Issue 签发会话令牌
// 令牌是 32 字节 crypto/rand 随机数的 base64url 编码，不可预测也不可解码出身份
func (s *RedisStore) Issue(ctx context.Context, identity *Identity) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("生成会话令牌失败: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)

	payload, err := json.Marshal(identity)
	if err != nil {
		return "", fmt.Errorf("序列化会话身份失败: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+token, payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("写入会话失败: %w", err)
	}
	return token, nil
}

// Get 按令牌取回身份，未命中返回 (nil, nil)
func (s *RedisStore) Get(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, nil
	}

	payload, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取会话失败: %w", err)
	}

	var identity Identity
	if err := json.Unmarshal(payload, &identity); err != nil {
		// 会话内容损坏按未登录处理，不向上抛
		return nil, nil
	}
	return &identity, nil
}

// Revoke 注销会话，令牌不存在也视为成功
func (s *RedisStore) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("删除会话失败: %w", err)
	}
	return nil
}

// ExtractToken 从请求头里取出令牌
// 兼容两种携带方式：Authorization（可带 Bearer 前缀）和 X-Auth-Token。
// 取不到返回空串，由调用方按未登录处理。
func ExtractToken(authorization, xAuthToken string) string {
	header := authorization
	if header == "" {
		header = xAuthToken
	}
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	return strings.TrimSpace(header)
}
