package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"aqua_chat_client/internal/config"
	"aqua_chat_client/internal/infrastructure/logger"
	"aqua_chat_client/internal/model"
	"aqua_chat_client/internal/stubserver"
	"aqua_chat_client/pkg/util/jwt"
)

// seed gives the stub a usable roster out of the box. Password is the
// username with a "123" suffix.
var seed = []model.User{
	{Username: "admin", Email: "admin@aquawatch.local", FirstName: "Quang", LastName: "Tran", Role: model.RoleAdmin},
	{Username: "an.nguyen", Email: "an.nguyen@aquawatch.local", FirstName: "An", LastName: "Nguyen", Role: model.RoleOfficer},
	{Username: "binh.le", Email: "binh.le@aquawatch.local", FirstName: "Binh", LastName: "Le", Role: model.RoleOfficer},
	{Username: "chi.pham", Email: "chi.pham@aquawatch.local", FirstName: "Chi", LastName: "Pham", Role: model.RoleOfficer},
	{Username: "viewer", Email: "viewer@aquawatch.local", FirstName: "Dung", LastName: "Vo", Role: model.RoleViewer},
}

func main() {
	conf := config.GetConfig()

	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("logger initialized")

	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry)

	store := stubserver.NewStore()
	for _, u := range seed {
		if _, err := store.AddUser(u, u.Username+"123"); err != nil {
			zap.L().Fatal("seed user failed", zap.String("username", u.Username), zap.Error(err))
		}
	}
	zap.L().Info("store seeded", zap.Int("users", len(seed)))

	server, err := stubserver.New(store)
	if err != nil {
		zap.L().Fatal("stub server init failed", zap.Error(err))
	}

	go func() {
		if err := server.Run(conf.StubConfig.Host, conf.StubConfig.Port); err != nil {
			zap.L().Fatal("stub server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("stub server shutting down")
}
