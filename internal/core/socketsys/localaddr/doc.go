// Package localaddr 提供本机地址视图
//
// 三个组件：
//
//   - Compare / Sort: 本地地址排序策略（普通地址 → 回环地址 → 全零地址）
//   - Cache: 带 TTL 的已排序本地地址缓存（键 "addresses"，默认 2 分钟）
//   - Resolver: 主机硬件标识解析（测试模式返回固定哨兵值）
//
// # 并发安全
//
// Cache 的读取与刷新在同一个临界区内完成，并发调用方只会看到旧值
// 或完整的新值。Resolver 无状态，可并发使用。
package localaddr
