// Package config 提供 socket 系统的统一配置管理
//
// 本包沿用分文件的子配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义，并提供 Default*Config 与 Validate
//   - 支持从 JSON 加载、环境变量覆盖和预设
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Socket.Backend = "native"
//
//	// 从文件加载并应用环境变量
//	cfg, err := config.LoadFile("socketsys.json")
//	if err == nil {
//	    err = config.ApplyEnv(cfg)
//	}
package config

// Config socket 系统的完整配置
//
// 配置按功能组织：
//   - Socket: 后端选择、监听与连接默认值、地址缓存
//   - Metrics: Prometheus 指标
//   - Log: 日志级别与格式
type Config struct {
	// Socket socket 后端配置
	Socket SocketConfig `json:"socket"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`

	// Log 日志配置
	Log LogConfig `json:"log"`
}

// NewConfig 创建默认配置
//
// 默认使用标准后端，地址缓存 2 分钟，监听 backlog 为 100。
func NewConfig() *Config {
	return &Config{
		Socket:  DefaultSocketConfig(),
		Metrics: DefaultMetricsConfig(),
		Log:     DefaultLogConfig(),
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if err := c.Socket.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return nil
}
