// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"wavelength/internal/models"

	"gorm.io/gorm"
)

// seedPassword is the password every generated user gets.
const seedPassword = "Password123!Seed"

// counts describes how much engagement is generated relative to the
// user and post volume.
type counts struct {
	friendsPerUser   int
	likesPerPost     int
	commentsPerPost  int
	convosPerUser    int
	messagesPerConvo int
	seenRatioPercent int
}

// computeCounts derives engagement volume from seed size. Small seeds get
// denser engagement so a development feed never looks empty.
func computeCounts(numUsers int) counts {
	c := counts{
		friendsPerUser:   6,
		likesPerPost:     5,
		commentsPerPost:  2,
		convosPerUser:    3,
		messagesPerConvo: 12,
		seenRatioPercent: 70,
	}
	if numUsers < 10 {
		c.friendsPerUser = numUsers - 1
		c.convosPerUser = numUsers - 1
		if c.friendsPerUser < 0 {
			c.friendsPerUser = 0
		}
		if c.convosPerUser < 0 {
			c.convosPerUser = 0
		}
	}
	if numUsers > 500 {
		// Keep like/comment volume bounded on large seeds.
		c.likesPerPost = 3
		c.commentsPerPost = 1
	}
	return c
}

// Seeder populates the database with a realistic social graph.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	rng     *rand.Rand
}

// NewSeeder creates a Seeder with default options.
func NewSeeder(db *gorm.DB) *Seeder {
	return NewSeederWithOptions(db, SeedOptions{})
}

// NewSeederWithOptions creates a Seeder with explicit factory options.
func NewSeederWithOptions(db *gorm.DB, opts SeedOptions) *Seeder {
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Seeder{
		db:      db,
		factory: NewFactory(db, opts),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes all seeded data. Postgres gets a single TRUNCATE; other
// dialects (sqlite in tests) fall back to per-table deletes.
func (s *Seeder) ClearAll() error {
	log.Println("clearing existing data...")
	if s.db.Dialector.Name() == "postgres" {
		return s.db.Exec(`TRUNCATE TABLE notifications, comments, likes, posts,
			messages, conversation_users, conversations, friendships, users
			RESTART IDENTITY CASCADE`).Error
	}
	tables := []string{
		"notifications", "comments", "likes", "posts",
		"messages", "conversation_users", "conversations", "friendships", "users",
	}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedSocialMesh creates users and a friendship mesh between them.
// Roughly friendsPerUser accepted friendships per user, plus a sprinkling
// of still-pending requests so the requests UI has content.
func (s *Seeder) SeedSocialMesh(numUsers int) ([]*models.User, error) {
	log.Printf("seeding %d users...", numUsers)
	c := computeCounts(numUsers)

	users := make([]*models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("create user %d: %w", i, err)
		}
		users = append(users, user)
		if i > 0 && i%100 == 0 {
			log.Printf("created %d users...", i)
		}
	}

	// Accepted friendships: each user befriends a handful of later users so
	// no pair is attempted twice.
	created := 0
	for i, u := range users {
		for n := 1; n <= c.friendsPerUser && i+n < len(users); n++ {
			status := models.FriendshipStatusAccepted
			// every fifth request stays pending
			if created%5 == 4 {
				status = models.FriendshipStatusPending
			}
			if _, err := s.factory.CreateFriendship(u, users[i+n], status); err != nil {
				return nil, fmt.Errorf("create friendship: %w", err)
			}
			created++
		}
	}
	log.Printf("created %d friendships", created)
	return users, nil
}

// SeedEngagement creates posts and spreads likes and comments across them,
// writing the matching notification ledger entries the way the live code paths do.
func (s *Seeder) SeedEngagement(users []*models.User, numPosts int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to seed posts for")
	}
	log.Printf("seeding %d posts...", numPosts)
	c := computeCounts(len(users))

	posts := make([]*models.Post, 0, numPosts)
	for i := 0; i < numPosts; i++ {
		author := users[s.rng.Intn(len(users))]
		post, err := s.factory.CreatePost(author)
		if err != nil {
			return nil, fmt.Errorf("create post: %w", err)
		}
		posts = append(posts, post)
	}

	for _, post := range posts {
		author := userByID(users, post.UserID)

		for n := 0; n < c.likesPerPost; n++ {
			liker := users[s.rng.Intn(len(users))]
			if liker.ID == post.UserID {
				continue
			}
			like, err := s.factory.CreateLike(liker, post)
			if err != nil {
				// unique constraint on (user, post); duplicates are fine to skip
				continue
			}
			if author != nil {
				if err := s.factory.CreateNotification(models.NewPostLiked(author.ID, like, liker)); err != nil {
					return nil, fmt.Errorf("create like notification: %w", err)
				}
			}
		}

		for n := 0; n < c.commentsPerPost; n++ {
			commenter := users[s.rng.Intn(len(users))]
			comment, err := s.factory.CreateComment(commenter, post)
			if err != nil {
				return nil, fmt.Errorf("create comment: %w", err)
			}
			if author != nil && commenter.ID != post.UserID {
				if err := s.factory.CreateNotification(models.NewPostCommented(author.ID, comment, commenter)); err != nil {
					return nil, fmt.Errorf("create comment notification: %w", err)
				}
			}
		}
	}

	log.Printf("created %d posts with engagement", len(posts))
	return posts, nil
}

// SeedConversations creates private conversations between neighboring users
// and fills them with message history, marking an older fraction as seen.
func (s *Seeder) SeedConversations(users []*models.User) (int, error) {
	c := computeCounts(len(users))
	created := 0

	for i, u := range users {
		for n := 1; n <= c.convosPerUser && i+n < len(users); n++ {
			other := users[i+n]
			conv, err := s.factory.CreateConversation(u, other)
			if err != nil {
				// pair already has a conversation
				continue
			}
			created++

			for m := 0; m < c.messagesPerConvo; m++ {
				sender := u
				if m%2 == 1 {
					sender = other
				}
				seen := s.rng.Intn(100) < c.seenRatioPercent
				if _, err := s.factory.CreateMessage(conv, sender, func(msg *models.Message) {
					msg.Seen = seen
				}); err != nil {
					return created, fmt.Errorf("create message: %w", err)
				}
			}
		}
	}

	log.Printf("created %d conversations", created)
	return created, nil
}

// Presets available via ApplyPreset.
const (
	// PresetMegaPopulated seeds a large, dense network for load-style manual testing.
	PresetMegaPopulated = "MegaPopulated"
	// PresetCozy seeds a small network where every user knows every other.
	PresetCozy = "Cozy"
)

// ApplyPreset runs a named seeding preset.
func (s *Seeder) ApplyPreset(name string) error {
	var numUsers, numPosts int
	switch name {
	case PresetMegaPopulated:
		numUsers, numPosts = 1000, 5000
	case PresetCozy:
		numUsers, numPosts = 8, 40
	default:
		return fmt.Errorf("unknown preset %q", name)
	}

	users, err := s.SeedSocialMesh(numUsers)
	if err != nil {
		return err
	}
	if _, err := s.SeedEngagement(users, numPosts); err != nil {
		return err
	}
	_, err = s.SeedConversations(users)
	return err
}

func userByID(users []*models.User, id uint) *models.User {
	for _, u := range users {
		if u.ID == id {
			return u
		}
	}
	return nil
}
