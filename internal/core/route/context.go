package route

import "context"

// Ctx 服务执行上下文
type Ctx struct {
	// Route 开始分发的路由
	Route *Route

	// Path 完整的请求路径
	Path string

	// ChannelID 通道标识
	ChannelID string
}

type ctxKey struct{}

func withCtx(ctx context.Context, c Ctx) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext 取出服务执行上下文
func FromContext(ctx context.Context) (Ctx, bool) {
	c, ok := ctx.Value(ctxKey{}).(Ctx)
	return c, ok
}
