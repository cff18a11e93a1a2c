// Package metrics 提供 socket 系统的监控指标收集
//
// Collector 基于 Prometheus 客户端库，记录：
//   - 监听与连接次数（按后端和结果分类）
//   - 连接耗时分布
//   - 本地地址缓存刷新次数与当前地址数量
//   - 当前打开的监听 socket 数量
//
// 结果标签取值为 "ok"、"error" 和 "unsupported"（后端缺少能力的配置错误）。
package metrics
