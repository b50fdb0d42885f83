// Package refresh 实现远端用户资料的机会式回填
// 策略：本地缺失才拉取；失败静默丢弃不重试，
// 下一次派生查询重算会对仍缺失的 uuid 再次触发拉取
package refresh

import (
	"context"
	"time"

	"kama_chat_mirror/internal/dao/sqlite"
	"kama_chat_mirror/internal/model"
	"kama_chat_mirror/pkg/constants"

	"go.uber.org/zap"
)

// UserFetcher 远端用户资料查询接口，由 remote.Client 实现
type UserFetcher interface {
	FetchUsers(ctx context.Context, uuids []string) ([]model.User, error)
}

// Service 用户资料刷新服务
type Service struct {
	stores  *sqlite.Manager
	fetcher UserFetcher
}

// NewService 创建刷新服务
func NewService(stores *sqlite.Manager, fetcher UserFetcher) *Service {
	return &Service{stores: stores, fetcher: fetcher}
}

// RefreshUsers 异步回填一批用户资料，对调用方永不阻塞
// 重复 uuid 和空串在此去除；本地已有记录的 uuid 不再拉取
func (s *Service) RefreshUsers(accountID string, userIds []string) {
	ids := distinctNonEmpty(userIds)
	if len(ids) == 0 {
		return
	}
	go s.refresh(accountID, ids)
}

// refresh 实际执行拉取与写入，任何失败只记日志
func (s *Service) refresh(accountID string, ids []string) {
	store, err := s.stores.Open(accountID)
	if err != nil {
		zap.L().Warn("刷新用户资料时打开账户库失败",
			zap.String("account", accountID), zap.Error(err))
		return
	}

	missing, err := store.Repos.User.MissingUuids(ids)
	if err != nil {
		zap.L().Warn("查询缺失用户失败", zap.String("account", accountID), zap.Error(err))
		return
	}
	if len(missing) == 0 {
		return
	}
	if len(missing) > constants.REFRESH_BATCH_MAX {
		missing = missing[:constants.REFRESH_BATCH_MAX]
	}

	ctx, cancel := context.WithTimeout(context.Background(),
		constants.REMOTE_TIMEOUT_SEC*time.Second)
	defer cancel()

	users, err := s.fetcher.FetchUsers(ctx, missing)
	if err != nil {
		// 不重试：受影响的条目继续展示空串回退值
		zap.L().Warn("用户资料拉取失败",
			zap.String("account", accountID),
			zap.Int("count", len(missing)),
			zap.Error(err))
		return
	}

	// 部分失败：写入成功解析的子集，其余静默丢弃
	for i := range users {
		if err := store.Repos.User.Upsert(&users[i]); err != nil {
			zap.L().Warn("写入用户资料失败",
				zap.String("account", accountID),
				zap.String("uuid", users[i].Uuid),
				zap.Error(err))
		}
	}
}

// distinctNonEmpty 去重并去掉空串，保持原有顺序
func distinctNonEmpty(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	var out []string
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
