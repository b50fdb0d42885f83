package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kama_chat_mirror/internal/config"
	"kama_chat_mirror/internal/dao/sqlite"
	"kama_chat_mirror/internal/gateway/remote"
	"kama_chat_mirror/internal/handler"
	"kama_chat_mirror/internal/http_server"
	"kama_chat_mirror/internal/infrastructure/logger"
	"kama_chat_mirror/internal/notify"
	"kama_chat_mirror/internal/query"
	"kama_chat_mirror/internal/service/refresh"
	syncservice "kama_chat_mirror/internal/service/sync"
	"kama_chat_mirror/pkg/util/jwt"
	"kama_chat_mirror/pkg/util/snowflake"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, "dev"); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("日志初始化成功")

	// 3. 初始化 JWT 与雪花节点
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry)
	snowflake.Init(conf.SnowflakeConfig.MachineID)

	// 4. 初始化参数校验翻译器
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("翻译器初始化失败", zap.Error(err))
	}

	// 5. 初始化变更通知器和账户库管理器
	notifier := notify.NewNotifier()
	stores := sqlite.NewManager(conf.StoreConfig.DataPath, notifier)
	zap.L().Info("本地存储初始化成功")

	// 6. 初始化远端通道与业务服务 (依赖注入)
	remoteClient := remote.NewClient(&conf.RemoteConfig)
	refreshSvc := refresh.NewService(stores, remoteClient)
	// 注入 UserRefresher 接口实现 (依赖倒置: query → refresh)
	query.SetRefresher(refreshSvc)

	syncSvc := syncservice.NewService(stores)
	signals := remote.NewSignalManager(&conf.RemoteConfig, syncSvc)
	zap.L().Info("服务层初始化成功")

	// 7. 初始化本地 API 服务器
	handlers := handler.NewHandlers(stores, notifier, syncSvc, signals)
	engine := http_server.Init(handlers)
	zap.L().Info("本地 API 服务器初始化成功")

	// 8. 启动服务
	host := conf.MainConfig.Host
	if host == "" {
		host = "127.0.0.1"
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", host, conf.MainConfig.Port),
		Handler: engine,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()

	// 设置信号监听
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// 等待信号
	<-quit
	zap.L().Info("关闭服务器...")

	// 先断远端信令，再停本地 API
	signals.CloseAll()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Error("服务器关闭异常", zap.Error(err))
	}

	zap.L().Info("服务器已关闭")
}
