package public

import "github.com/comanda-next/internal/provider"

// Handler 顾客端处理器
type Handler struct {
	*provider.Container
}

// New 创建顾客端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
