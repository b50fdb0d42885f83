package snowflake

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

var (
	node     *snowflake.Node
	nodeOnce sync.Once
	// machineID 由 Init 传入，镜像进程单机运行，默认 1 即可
	machineID int64 = 1
)

// Init 初始化雪花算法节点
// 应在程序启动时调用一次
func Init(id int64) {
	nodeOnce.Do(func() {
		if id < 0 || id > 1023 {
			id = 1
			zap.L().Warn("Invalid MachineID in config, using default value 1")
		}
		machineID = id
		var err error
		node, err = snowflake.NewNode(machineID)
		if err != nil {
			zap.L().Fatal("Failed to initialize snowflake node", zap.Error(err))
		}
	})
}

// GenerateID 生成雪花 ID (int64)
func GenerateID() int64 {
	if node == nil {
		Init(machineID)
	}
	return node.Generate().Int64()
}

// GenerateIDString 生成雪花 ID (string)
// 用于客户端生成的消息 uuid，避免 JavaScript 精度丢失
func GenerateIDString() string {
	if node == nil {
		Init(machineID)
	}
	return node.Generate().String()
}
