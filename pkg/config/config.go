// Package config 提供匹配器默认配置的持久化管理
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/1ajie1/identification-tester/pkg/match"
)

// MatcherConfig 匹配器默认配置
// 命令行工具在未指定参数时使用这里持久化的默认值
type MatcherConfig struct {
	// Method 默认匹配方法: template / orb / hybrid
	Method string `json:"method"`
	// Correlation 模板匹配配置
	Correlation match.CorrelationConfig `json:"correlation"`
	// Feature 特征点匹配配置
	Feature match.FeatureConfig `json:"feature"`
	// Hybrid 混合匹配配置
	Hybrid match.HybridConfig `json:"hybrid"`
	// LogLevel 日志级别
	LogLevel string `json:"log_level"`
}

// DefaultMatcherConfig 默认匹配器配置
func DefaultMatcherConfig() *MatcherConfig {
	return &MatcherConfig{
		Method:      "template",
		Correlation: match.DefaultCorrelationConfig(),
		Feature:     match.DefaultFeatureConfig(),
		Hybrid:      match.DefaultHybridConfig(),
		LogLevel:    "INFO",
	}
}

// Validate 校验配置
func (c *MatcherConfig) Validate() error {
	switch c.Method {
	case "template", "orb", "hybrid":
	default:
		return fmt.Errorf("未知的匹配方法: %s", c.Method)
	}
	if err := c.Correlation.Validate(); err != nil {
		return err
	}
	if err := c.Feature.Validate(); err != nil {
		return err
	}
	return c.Hybrid.Validate()
}

// Manager 配置管理器
type Manager struct {
	configDir  string
	configFile string
	mu         sync.RWMutex
}

// NewManager 创建配置管理器，配置存放在用户主目录下
func NewManager() *Manager {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	configDir := filepath.Join(homeDir, ".identification-tester")
	return &Manager{
		configDir:  configDir,
		configFile: filepath.Join(configDir, "config.json"),
	}
}

// NewManagerWithDir 使用指定目录创建配置管理器
func NewManagerWithDir(configDir string) *Manager {
	return &Manager{
		configDir:  configDir,
		configFile: filepath.Join(configDir, "config.json"),
	}
}

// ensureDir 确保配置目录存在
func (m *Manager) ensureDir() error {
	return os.MkdirAll(m.configDir, 0755)
}

// Load 加载配置，文件不存在时返回默认配置
func (m *Manager) Load() (*MatcherConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, err := os.Stat(m.configFile); os.IsNotExist(err) {
		return DefaultMatcherConfig(), nil
	}

	data, err := os.ReadFile(m.configFile)
	if err != nil {
		return DefaultMatcherConfig(), fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 未知字段直接拒绝，避免拼错的配置项被静默忽略
	config := DefaultMatcherConfig()
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(config); err != nil {
		return DefaultMatcherConfig(), fmt.Errorf("解析配置文件失败: %w", err)
	}

	return config, nil
}

// Save 保存配置
func (m *Manager) Save(config *MatcherConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureDir(); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(m.configFile, data, 0600); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}

	return nil
}

// Clear 清除配置
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := os.Stat(m.configFile); os.IsNotExist(err) {
		return nil
	}

	return os.Remove(m.configFile)
}

// GetConfigDir 获取配置目录
func (m *Manager) GetConfigDir() string {
	return m.configDir
}

// GetConfigFile 获取配置文件路径
func (m *Manager) GetConfigFile() string {
	return m.configFile
}

// Exists 检查配置文件是否存在
func (m *Manager) Exists() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, err := os.Stat(m.configFile)
	return err == nil
}

// 全局配置管理器
var defaultManager = NewManager()

// GetDefaultManager 获取默认配置管理器
func GetDefaultManager() *Manager {
	return defaultManager
}

// Load 使用默认管理器加载配置
func Load() (*MatcherConfig, error) {
	return defaultManager.Load()
}

// Save 使用默认管理器保存配置
func Save(config *MatcherConfig) error {
	return defaultManager.Save(config)
}

// Clear 使用默认管理器清除配置
func Clear() error {
	return defaultManager.Clear()
}
