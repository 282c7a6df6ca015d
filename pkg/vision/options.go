package vision

import (
	"time"

	"github.com/1ajie1/identification-tester/pkg/match"
)

// Options 全局配置选项
type Options struct {
	// 匹配配置
	Threshold    float64       // 模板匹配阈值，默认 0.8
	FindTimeout  time.Duration // 等待匹配超时时间，默认 10s
	PollInterval time.Duration // 等待匹配轮询间隔，默认 1s

	// 日志配置
	LogEnabled bool   // 是否启用日志
	LogLevel   string // 日志级别
}

// DefaultOptions 默认配置
var DefaultOptions = Options{
	Threshold:    0.8,
	FindTimeout:  10 * time.Second,
	PollInterval: time.Second,
	LogEnabled:   true,
	LogLevel:     "INFO",
}

// globalOptions 全局配置实例
var globalOptions = DefaultOptions

// GetOptions 获取当前全局配置
func GetOptions() *Options {
	return &globalOptions
}

// SetOptions 设置全局配置
func SetOptions(opts Options) {
	globalOptions = opts
}

// ResetOptions 重置为默认配置
func ResetOptions() {
	globalOptions = DefaultOptions
}

// Option 单次查找的配置选项函数类型
type Option func(*findConfig)

// findConfig 单次查找的临时配置
type findConfig struct {
	method      Method
	correlation match.CorrelationConfig
	feature     match.FeatureConfig
	hybrid      match.HybridConfig
	detector    match.Detector
	timeout     time.Duration
	interval    time.Duration
}

// defaultFindConfig 默认查找配置
func defaultFindConfig() *findConfig {
	correlation := match.DefaultCorrelationConfig()
	correlation.Threshold = globalOptions.Threshold

	return &findConfig{
		method:      MethodTemplate,
		correlation: correlation,
		feature:     match.DefaultFeatureConfig(),
		hybrid:      match.DefaultHybridConfig(),
		timeout:     globalOptions.FindTimeout,
		interval:    globalOptions.PollInterval,
	}
}

// WithMethod 设置匹配方法
func WithMethod(method Method) Option {
	return func(c *findConfig) {
		c.method = method
	}
}

// WithThreshold 设置模板匹配阈值
func WithThreshold(threshold float64) Option {
	return func(c *findConfig) {
		c.correlation.Threshold = threshold
	}
}

// WithScales 开启多尺度模板匹配
func WithScales(minScale, maxScale float64, steps int) Option {
	return func(c *findConfig) {
		c.correlation.ScaleMin = minScale
		c.correlation.ScaleMax = maxScale
		c.correlation.ScaleSteps = steps
	}
}

// WithCorrelationConfig 替换整个模板匹配配置
func WithCorrelationConfig(cfg match.CorrelationConfig) Option {
	return func(c *findConfig) {
		c.correlation = cfg
	}
}

// WithFeatureConfig 替换整个特征点匹配配置
func WithFeatureConfig(cfg match.FeatureConfig) Option {
	return func(c *findConfig) {
		c.feature = cfg
	}
}

// WithHybridConfig 替换整个混合匹配配置
func WithHybridConfig(cfg match.HybridConfig) Option {
	return func(c *findConfig) {
		c.hybrid = cfg
	}
}

// WithDetectorModel 设置混合匹配使用的检测模型
func WithDetectorModel(modelPath, labelsPath string) Option {
	return func(c *findConfig) {
		c.hybrid.Detector.ModelPath = modelPath
		c.hybrid.Detector.LabelsPath = labelsPath
	}
}

// WithDetector 替换混合匹配使用的检测器实现
func WithDetector(d match.Detector) Option {
	return func(c *findConfig) {
		c.detector = d
	}
}

// WithRetry 设置重试策略
func WithRetry(policy match.RetryPolicy) Option {
	return func(c *findConfig) {
		c.correlation.Retry = policy
		c.feature.Retry = policy
		c.hybrid.Feature.Retry = policy
	}
}

// WithTimeout 设置等待匹配超时时间
func WithTimeout(timeout time.Duration) Option {
	return func(c *findConfig) {
		c.timeout = timeout
	}
}

// WithPollInterval 设置等待匹配轮询间隔
func WithPollInterval(interval time.Duration) Option {
	return func(c *findConfig) {
		c.interval = interval
	}
}
