// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName string `toml:"appName"` // 应用名称，用于日志标识等
	Host    string `toml:"host"`    // 本地 API 监听地址，默认 127.0.0.1
	Port    int    `toml:"port"`    // 本地 API 监听端口
}

// StoreConfig 本地镜像存储配置
type StoreConfig struct {
	DataPath string `toml:"dataPath"` // SQLite 数据库文件目录，每个账户一个文件
}

// RemoteConfig 远端聊天服务配置
type RemoteConfig struct {
	APIBaseURL string `toml:"apiBaseURL"` // 用户资料查询 API 基地址
	WsURL      string `toml:"wsURL"`      // 信令 WebSocket 地址
	AuthToken  string `toml:"authToken"`  // 远端服务的 Bearer Token
	TimeoutSec int    `toml:"timeoutSec"` // HTTP 请求超时（秒）
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// JWTConfig 本地会话认证配置
type JWTConfig struct {
	Secret            string `toml:"secret"`            // JWT 签名密钥
	AccessTokenExpiry int    `toml:"accessTokenExpiry"` // Access Token 有效期（分钟）
}

// SnowflakeConfig 雪花算法配置
type SnowflakeConfig struct {
	MachineID int64 `toml:"machineId"` // 节点 ID，范围 0-1023
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig      `toml:"mainConfig"`
	StoreConfig     `toml:"storeConfig"`
	RemoteConfig    `toml:"remoteConfig"`
	LogConfig       `toml:"logConfig"`
	JWTConfig       `toml:"jwtConfig"`
	SnowflakeConfig `toml:"snowflakeConfig"`
}

// config 全局配置单例，延迟加载
var config *Config

// LoadConfig 从多个候选路径加载配置文件
// 按顺序尝试加载，找到第一个可用的配置文件即停止
func LoadConfig() error {
	paths := []string{
		"configs/config_local.toml", // 本地开发配置（优先）
		"configs/config.toml",
		"../../configs/config_local.toml", // 从子目录运行时的路径
		"../../configs/config.toml",
	}

	for _, path := range paths {
		if _, err := toml.DecodeFile(path, config); err == nil {
			return nil
		}
	}

	return fmt.Errorf("could not find configuration file in any of the search paths")
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会自动加载配置文件
func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = LoadConfig() // 忽略加载错误，使用默认值
	}
	return config
}
