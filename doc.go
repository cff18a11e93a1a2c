// Package socketsys 提供可替换的 socket 工厂抽象
//
// 所有监听和出站连接都通过一个 System 完成。System 把便捷方法归约为
// 后端（Backend）的少数几个规范操作，后端可以是标准库实现、原生
// socket 实现或进程内的测试实现。
//
// # 快速开始
//
//	import "github.com/dep2p/go-socketsys"
//
//	// 使用进程默认系统
//	sys := socketsys.Current(ctx)
//	srv, err := sys.OpenServerSocket(8080)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Close()
//
//	conn, err := sys.Connect("example.org", 443)
//
// # 作用域覆盖
//
// 通过 SetCurrent 在 context 上绑定系统，作用域内的 Current 返回该系统，
// 不影响其他 goroutine：
//
//	ctx = socketsys.SetCurrent(ctx, testSys)
//	socketsys.Current(ctx) // testSys
//
// # 依赖注入
//
// New 基于 Fx 组装配置、指标和 socket 系统。启动后该系统成为进程默认值，
// 停止时恢复之前的默认值：
//
//	app, err := socketsys.Start(ctx,
//	    socketsys.WithPreset("server"),
//	    socketsys.WithRegisterer(prometheus.DefaultRegisterer),
//	)
//	defer app.Stop(context.Background())
//
// # 本地地址
//
// LocalAddresses 返回按固定策略排序的本地地址，并缓存 2 分钟；
// 测试模式下缓存永不过期，HardwareAddress 返回固定的测试值。
package socketsys
