package repository

import (
	"testing"
	"time"

	"wavelength/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatRepository_CreateBetween_ReusesPair(t *testing.T) {
	db := setupDB(t)
	repo := NewChatRepository(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	conv, err := repo.CreateBetween(testCtx(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.NotZero(t, conv.ID)
	assert.Len(t, conv.Users, 2)

	// Creating again, in either argument order, yields the same conversation.
	same, err := repo.CreateBetween(testCtx(), bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, same.ID)

	var count int64
	require.NoError(t, db.Model(&models.Conversation{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestChatRepository_FindBetween(t *testing.T) {
	db := setupDB(t)
	repo := NewChatRepository(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	created, err := repo.CreateBetween(testCtx(), alice.ID, bob.ID)
	require.NoError(t, err)

	found, err := repo.FindBetween(testCtx(), bob.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	none, err := repo.FindBetween(testCtx(), alice.ID, carol.ID)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestChatRepository_IsParticipant(t *testing.T) {
	db := setupDB(t)
	repo := NewChatRepository(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	conv, err := repo.CreateBetween(testCtx(), alice.ID, bob.ID)
	require.NoError(t, err)

	ok, err := repo.IsParticipant(testCtx(), conv.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IsParticipant(testCtx(), conv.ID, carol.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChatRepository_Messages(t *testing.T) {
	db := setupDB(t)
	repo := NewChatRepository(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	conv, err := repo.CreateBetween(testCtx(), alice.ID, bob.ID)
	require.NoError(t, err)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		sender := alice
		if i%2 == 1 {
			sender = bob
		}
		msg := &models.Message{
			ConversationID: conv.ID,
			SenderID:       sender.ID,
			Content:        "hello",
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.CreateMessage(testCtx(), msg))
	}

	// History comes back oldest first and carries the sender's name.
	messages, err := repo.GetMessages(testCtx(), conv.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, messages, 5)
	for i := 1; i < len(messages); i++ {
		assert.False(t, messages[i].CreatedAt.Before(messages[i-1].CreatedAt))
	}
	assert.Equal(t, "alice", messages[0].SenderName)

	// Paging returns the most recent slice, still chronological.
	page, err := repo.GetMessages(testCtx(), conv.ID, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, messages[3].ID, page[0].ID)
	assert.Equal(t, messages[4].ID, page[1].ID)
}

func TestChatRepository_MarkSeen(t *testing.T) {
	db := setupDB(t)
	repo := NewChatRepository(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	conv, err := repo.CreateBetween(testCtx(), alice.ID, bob.ID)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.CreateMessage(testCtx(), &models.Message{
			ConversationID: conv.ID, SenderID: bob.ID, Content: "hi",
		}))
	}
	require.NoError(t, repo.CreateMessage(testCtx(), &models.Message{
		ConversationID: conv.ID, SenderID: alice.ID, Content: "hey",
	}))

	// Alice marks seen: only bob's messages flip.
	changed, err := repo.MarkSeen(testCtx(), conv.ID, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, changed)

	// Second call is a no-op.
	changed, err = repo.MarkSeen(testCtx(), conv.ID, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, changed)

	var unseen int64
	require.NoError(t, db.Model(&models.Message{}).
		Where("conversation_id = ? AND seen = ?", conv.ID, false).
		Count(&unseen).Error)
	assert.EqualValues(t, 1, unseen) // alice's own message stays unseen
}

func TestChatRepository_ListForUser(t *testing.T) {
	db := setupDB(t)
	repo := NewChatRepository(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	withBob, err := repo.CreateBetween(testCtx(), alice.ID, bob.ID)
	require.NoError(t, err)
	withCarol, err := repo.CreateBetween(testCtx(), alice.ID, carol.ID)
	require.NoError(t, err)

	require.NoError(t, repo.CreateMessage(testCtx(), &models.Message{
		ConversationID: withBob.ID, SenderID: bob.ID, Content: "first", CreatedAt: time.Now().Add(-time.Minute),
	}))
	require.NoError(t, repo.CreateMessage(testCtx(), &models.Message{
		ConversationID: withCarol.ID, SenderID: carol.ID, Content: "latest", CreatedAt: time.Now(),
	}))

	summaries, err := repo.ListForUser(testCtx(), alice.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// Most recently active conversation first.
	assert.Equal(t, withCarol.ID, summaries[0].Conversation.ID)
	require.NotNil(t, summaries[0].OtherUser)
	assert.Equal(t, "carol", summaries[0].OtherUser.Name)
	require.NotNil(t, summaries[0].LastMessage)
	assert.Equal(t, "latest", summaries[0].LastMessage.Content)
	assert.EqualValues(t, 1, summaries[0].UnreadCount)
}
