// Package mocks 提供 socket 接口的测试替身
//
// # 核心 Mock
//
//   - MockBackend: 模拟 socket.Backend，记录所有规范调用
//   - MockServerSocket: 模拟 socket.ServerSocket
//   - MockSocket: 模拟 socket.Socket
//
// # 设计原则
//
// 1. 函数式注入: 每个 Mock 都支持通过 XxxFunc 字段注入自定义行为
// 2. 调用记录: 记录调用参数，便于验证便捷方法的归约结果
//
// # 使用示例
//
//	backend := &mocks.MockBackend{
//	    ConnectFunc: func(ctx context.Context, req socket.ConnectRequest) (socket.Socket, error) {
//	        return nil, syscall.ECONNREFUSED
//	    },
//	}
//	sys := socketsys.NewSystem(backend)
//	_, err := sys.Connect("127.0.0.1", 80)
//	// backend.ConnectCalls[0].Remote.Port == 80
package mocks
