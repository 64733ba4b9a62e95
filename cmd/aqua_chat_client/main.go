// Command aqua_chat_client is a headless reference wiring of the chat
// client: it logs in, starts the unseen poller and the contact
// reconciler, follows one conversation and logs every state change. It
// exists to exercise the library against a running backend (usually
// the stub server).
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"aqua_chat_client/internal/chat"
	"aqua_chat_client/internal/client/rest"
	"aqua_chat_client/internal/client/session"
	"aqua_chat_client/internal/config"
	"aqua_chat_client/internal/infrastructure/logger"
	"aqua_chat_client/internal/model"
	"aqua_chat_client/pkg/constants"
)

// logListener writes every chat event to the log; a real front end
// would render instead.
type logListener struct{}

func (logListener) MessagesUpdated(peerID string, messages []model.Message, hint chat.ScrollHint) {
	zap.L().Info("conversation updated",
		zap.String("peerId", peerID),
		zap.Int("messages", len(messages)),
		zap.Int("scrollHint", int(hint)),
	)
}

func (logListener) ConversationFailed(peerID string, err error) {
	zap.L().Error("conversation load failed", zap.String("peerId", peerID), zap.Error(err))
}

func (logListener) Notify(text string) {
	zap.L().Warn("notice", zap.String("text", text))
}

func main() {
	username := flag.String("username", "admin", "login username")
	password := flag.String("password", "admin123", "login password")
	peerName := flag.String("peer", "", "username of a contact to follow")
	flag.Parse()

	conf := config.GetConfig()
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}

	sess := session.New()
	api := rest.NewClient(conf.APIConfig.BaseURL, conf.APIConfig.RequestTimeoutDuration(), sess)
	clock := clockwork.NewRealClock()

	ctx := context.Background()
	login, err := api.Login(ctx, *username, *password)
	if err != nil {
		zap.L().Fatal("login failed", zap.Error(err))
	}
	sess.SetAuthenticated(login.User, login.AccessToken)
	zap.L().Info("logged in",
		zap.String("userId", login.User.ID),
		zap.String("role", login.User.Role),
	)

	unseen := chat.NewUnseenPoller(api, sess, clock, conf.PollingConfig.UnseenInterval(), func(snapshot []model.Message) {
		zap.L().Info("unseen snapshot changed", zap.Int("messages", len(snapshot)))
	})
	unseen.Start()

	reconciler := chat.NewReconciler(api, sess, unseen.UnreadCountsBySender, constants.USER_PAGE_LIMIT)
	if err := reconciler.LoadDirectory(ctx); err != nil {
		zap.L().Fatal("directory load failed", zap.Error(err))
	}
	contacts, err := reconciler.Displayed(ctx)
	if err != nil {
		zap.L().Fatal("contact reconciliation failed", zap.Error(err))
	}
	for _, contact := range contacts {
		zap.L().Info("contact",
			zap.String("id", contact.ID),
			zap.String("name", contact.DisplayName()),
			zap.Int("unread", contact.UnreadCount),
			zap.Bool("pinned", contact.Pinned),
		)
	}

	conversation := chat.NewConversation(api, sess, clock,
		conf.PollingConfig.ConversationInterval(), constants.MESSAGE_PAGE_SIZE, logListener{})
	defer conversation.Stop()

	if *peerName != "" {
		for _, contact := range contacts {
			if contact.Username == *peerName {
				reconciler.Select(ctx, contact)
				conversation.Select(&contact.User)
				break
			}
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	unseen.Stop()
	zap.L().Info("client stopped")
}
