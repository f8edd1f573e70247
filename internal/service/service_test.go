package service

import (
	"context"
	"fmt"
	"testing"

	"wavelength/internal/models"
	"wavelength/internal/repository"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv bundles sqlite-backed repositories and the services under test.
// The realtime notifier is nil: publish paths are exercised separately in
// the realtime package.
type testEnv struct {
	db *gorm.DB

	userRepo         repository.UserRepository
	friendRepo       repository.FriendRepository
	postRepo         repository.PostRepository
	commentRepo      repository.CommentRepository
	chatRepo         repository.ChatRepository
	notificationRepo repository.NotificationRepository

	users         *UserService
	friends       *FriendService
	posts         *PostService
	comments      *CommentService
	chat          *ChatService
	notifications *NotificationService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Conversation{},
		&models.Message{},
		&models.ConversationUser{},
		&models.Friendship{},
		&models.Notification{},
	))

	env := &testEnv{
		db:               db,
		userRepo:         repository.NewUserRepository(db),
		friendRepo:       repository.NewFriendRepository(db),
		postRepo:         repository.NewPostRepository(db),
		commentRepo:      repository.NewCommentRepository(db),
		chatRepo:         repository.NewChatRepository(db),
		notificationRepo: repository.NewNotificationRepository(db),
	}

	env.notifications = NewNotificationService(env.notificationRepo, env.friendRepo, nil)
	env.users = NewUserService(env.userRepo, env.friendRepo)
	env.friends = NewFriendService(env.friendRepo, env.userRepo, env.notifications, nil)
	env.posts = NewPostService(env.postRepo, env.userRepo, env.notifications)
	env.comments = NewCommentService(env.commentRepo, env.postRepo, env.userRepo, env.notifications)
	env.chat = NewChatService(env.chatRepo, env.friendRepo, env.userRepo, nil)
	return env
}

func (e *testEnv) createUser(t *testing.T, name string) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("Sup3rSecret!pass"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Name:     name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: string(hashed),
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) befriend(t *testing.T, a, b *models.User) *models.Friendship {
	t.Helper()
	f := &models.Friendship{RequesterID: a.ID, AddresseeID: b.ID, Status: models.FriendshipStatusAccepted}
	require.NoError(t, e.db.Create(f).Error)
	return f
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, code, appErr.Code)
}

func ctx() context.Context {
	return context.Background()
}
