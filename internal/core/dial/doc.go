// Package dial 建立出站通道
//
// 每次尝试由两步组成：通过提供者打开原始流，再由升级器完成安全握手与
// hello 交换。只有 Transport 类错误会按配置的指数退避重试；握手、
// 篡改、拒绝、未找到等协议层失败立即返回。
//
//	d, _ := dial.New(providers, up, dial.NewConfig())
//	ch, err := d.Connect(ctx, addr, types.FormatJSON)
package dial
