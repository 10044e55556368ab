// Package canary 提供基于通道与路由的通信后端
//
// canary 围绕两个概念构建：
//
//   - Channel: 一条有序、可选加密、带编码格式的双向消息通道
//   - Route: 路径到服务的注册表，入站通道按路径分发给服务
//
// # 快速开始
//
//	r := canary.NewRoute("root")
//	_ = r.RegisterService("echo", func(ctx context.Context, ch *canary.Channel) error {
//	    msg, err := canary.Receive[string](ch)
//	    if err != nil {
//	        return err
//	    }
//	    return ch.Send(msg)
//	})
//
//	node, err := canary.New(ctx, canary.WithRoute(r))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer node.Close()
//
//	bound, _ := node.Bind(ctx, canary.MustParseAddress("tcp@127.0.0.1:7000"))
//
//	ch, _ := node.Connect(ctx, bound.Join("echo"))
//	_ = ch.Send("hello")
//
// # 地址
//
// 地址形如 kind@endpoint://path。kind 选择提供者（tcp、unix、quic、ws、mem），
// 前缀 i 表示不加密（itcp、iunix……）。path 是路由中的服务路径，
// 多级路径用 / 分隔，例如 tcp@10.0.0.1:7000://Math/Add。
//
// # 中继到直连
//
// 服务可以用 AddressFor 把另一个已绑定地址上的路径交给对端，
// 对端随后直接连接该地址，之后的流量不再经过中间节点。
package canary
