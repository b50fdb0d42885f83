package remote

import (
	"sync"

	"kama_chat_mirror/internal/config"
	"kama_chat_mirror/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SignalManager 按账户管理信令连接
// 会话打开时建立连接，进程退出时统一关闭
type SignalManager struct {
	cfg      *config.RemoteConfig
	sink     EventSink
	deviceID string

	mu      sync.Mutex
	clients map[string]*SignalClient
}

// NewSignalManager 创建信令连接管理器
// 每个进程生成一个设备标识，远端据此区分同一账户的多个设备
func NewSignalManager(cfg *config.RemoteConfig, sink EventSink) *SignalManager {
	return &SignalManager{
		cfg:      cfg,
		sink:     sink,
		deviceID: uuid.NewString(),
		clients:  make(map[string]*SignalClient),
	}
}

// EnsureStarted 确保指定账户的信令连接已建立，幂等
func (m *SignalManager) EnsureStarted(accountID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[accountID]; ok {
		return
	}
	client := NewSignalClient(m.cfg, accountID, m.deviceID, m.sink)
	m.clients[accountID] = client
	client.Start()
}

// Send 将消息经指定账户的信令连接转发远端
// 连接不存在或未就绪只记日志，本地镜像已写入，远端靠补推对齐
func (m *SignalManager) Send(accountID string, msg *model.Message) {
	m.mu.Lock()
	client, ok := m.clients[accountID]
	m.mu.Unlock()
	if !ok {
		zap.L().Warn("信令连接不存在，消息仅写入本地", zap.String("account", accountID))
		return
	}
	if err := client.SendMessage(msg); err != nil {
		zap.L().Warn("消息转发远端失败",
			zap.String("account", accountID),
			zap.String("client_generated_uuid", msg.ClientGeneratedUuid),
			zap.Error(err))
	}
}

// CloseAll 关闭所有信令连接
func (m *SignalManager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for accountID, client := range m.clients {
		client.Close()
		delete(m.clients, accountID)
	}
}
