package shortid

import (
	"encoding/base64"

	"github.com/google/uuid"
)

// Length 帖子短 ID 长度（同时作为主键与 short_id 别名）
const Length = 14

// Generator 生成全局唯一、URL 安全的短 ID
type Generator interface {
	New() string
}

type uuidGenerator struct{}

// NewGenerator 默认实现：uuid 裁剪为 base64url 短串
func NewGenerator() Generator { return uuidGenerator{} }

func (uuidGenerator) New() string {
	id := uuid.New()
	s := base64.RawURLEncoding.EncodeToString(id[:])
	return s[:Length]
}
