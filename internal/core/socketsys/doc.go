// Package socketsys 实现可替换的 socket 工厂
//
// System 是监听 socket、出站连接、Unix 域 socket 和未连接句柄的统一创建入口，
// 同时提供本地地址缓存和主机硬件标识查询。具体传输由 socket.Backend 完成：
//
//	tcp     标准后端（Go net 包）
//	native  原生系统调用后端
//	mem     进程内测试后端
//
// 所有便捷方法都归一化为一次规范调用：
//
//	OpenServerSocket(port)                  → OpenServerSocketWith(nil, port, 100, true)
//	Connect / ConnectTimeout / ConnectTLS   → ConnectWith(nil, remote, nil, timeout, tls)
//
// Registry 维护进程默认 System 及按 context 的覆盖，CreateSubSystem
// 向当前 System 请求命名子系统。
package socketsys
