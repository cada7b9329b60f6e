// Package seed populates a database with demo users, posts, comments and likes.
// Everything is written through the service layer so denormalized counters
// stay consistent with the rows they summarize.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

// Options sizes a seeding run.
type Options struct {
	NumUsers         int
	PostsPerUser     int
	CommentsPerPost  int
	LikeProbability  float64
	ReplyProbability float64
	MaxFilesPerPost  int
	BcryptCost       int
	RandomSeed       int64
}

// DefaultOptions returns a small but connected data set.
func DefaultOptions() Options {
	return Options{
		NumUsers:         20,
		PostsPerUser:     5,
		CommentsPerPost:  3,
		LikeProbability:  0.3,
		ReplyProbability: 0.4,
		MaxFilesPerPost:  3,
		BcryptCost:       10,
	}
}

// Result summarizes what a run created.
type Result struct {
	Users    []models.AuthenticatedIdentity
	PostIDs  []uint
	Comments int
	Likes    int
}

// Seeder writes generated content through the services.
type Seeder struct {
	db       *gorm.DB
	users    repository.UserRepository
	auth     *service.AuthService
	posts    *service.PostService
	comments *service.CommentService
	likes    *service.LikeService
	faker    *gofakeit.Faker
	rng      *rand.Rand
	opts     Options
}

// NewSeeder builds a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)
	stats := repository.NewPostStatsRepository(db)
	comments := repository.NewCommentRepository(db)
	likes := repository.NewLikeRepository(db)
	tx := repository.NewTransactor(db)

	// Seeded accounts log in with a password; tokens are never issued here.
	tokens := service.NewTokenService(service.TokenConfig{})

	return &Seeder{
		db:       db,
		users:    users,
		auth:     service.NewAuthService(users, tokens, opts.BcryptCost),
		posts:    service.NewPostService(tx, users, posts, stats, comments),
		comments: service.NewCommentService(tx, users, posts, stats, comments),
		likes:    service.NewLikeService(tx, users, posts, stats, likes),
		faker:    gofakeit.New(opts.RandomSeed),
		rng:      rand.New(rand.NewSource(opts.RandomSeed)),
		opts:     opts,
	}
}

// ClearAll removes every row the seeder can create, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	all := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []interface{}{
		&models.Like{},
		&models.Comment{},
		&models.PostFile{},
		&models.PostStats{},
		&models.Post{},
		&models.User{},
	} {
		if err := all.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	middleware.Logger.InfoContext(ctx, "seed tables cleared")
	return nil
}

// Run creates users, then their posts, then comments and likes on those posts.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	res := &Result{}

	for i := 0; i < s.opts.NumUsers; i++ {
		identity, err := s.createUser(ctx, i)
		if err != nil {
			return nil, err
		}
		res.Users = append(res.Users, identity)
	}

	for _, author := range res.Users {
		for j := 0; j < s.opts.PostsPerUser; j++ {
			created, err := s.posts.CreatePost(ctx, author, service.CreatePostInput{
				Title:   s.faker.Sentence(s.rng.Intn(6) + 3),
				Content: s.faker.Paragraph(1, 3, 8, "\n"),
				Files:   s.files(),
			})
			if err != nil {
				return nil, fmt.Errorf("create post: %w", err)
			}
			res.PostIDs = append(res.PostIDs, created.ID)
		}
	}

	for _, postID := range res.PostIDs {
		n, err := s.commentThread(ctx, postID, res.Users)
		if err != nil {
			return nil, err
		}
		res.Comments += n

		for _, liker := range res.Users {
			if s.rng.Float64() >= s.opts.LikeProbability {
				continue
			}
			if _, err := s.likes.Like(ctx, liker, postID); err != nil {
				return nil, fmt.Errorf("like post %d: %w", postID, err)
			}
			res.Likes++
		}
	}

	middleware.Logger.InfoContext(ctx, "seed complete",
		slog.Int("users", len(res.Users)),
		slog.Int("posts", len(res.PostIDs)),
		slog.Int("comments", res.Comments),
		slog.Int("likes", res.Likes),
	)
	return res, nil
}

func (s *Seeder) createUser(ctx context.Context, i int) (models.AuthenticatedIdentity, error) {
	person := s.faker.Person()
	// The index suffix keeps generated emails and nicknames unique.
	email := strings.ToLower(fmt.Sprintf("%s.%d@agora.test", s.faker.Username(), i))
	nickname := fmt.Sprintf("%s%d", s.faker.Adjective(), i)
	if len(nickname) > 30 {
		nickname = nickname[len(nickname)-30:]
	}

	if _, err := s.auth.SignUp(ctx, service.SignUpInput{
		Email:    email,
		Password: DefaultPassword,
		Name:     person.FirstName + " " + person.LastName,
		Nickname: nickname,
	}); err != nil {
		return models.AuthenticatedIdentity{}, fmt.Errorf("sign up %s: %w", email, err)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return models.AuthenticatedIdentity{}, err
	}
	if user == nil {
		return models.AuthenticatedIdentity{}, fmt.Errorf("seeded user %s not found", email)
	}
	return models.AuthenticatedIdentity{UserID: user.ID, Email: user.Email}, nil
}

func (s *Seeder) commentThread(ctx context.Context, postID uint, users []models.AuthenticatedIdentity) (int, error) {
	if len(users) == 0 {
		return 0, nil
	}
	var ids []uint
	for k := 0; k < s.opts.CommentsPerPost; k++ {
		in := service.CreateCommentInput{
			PostID:  postID,
			Content: s.faker.Sentence(s.rng.Intn(10) + 4),
		}
		if len(ids) > 0 && s.rng.Float64() < s.opts.ReplyProbability {
			parent := ids[s.rng.Intn(len(ids))]
			in.ParentID = &parent
		}
		author := users[s.rng.Intn(len(users))]
		created, err := s.comments.CreateComment(ctx, author, in)
		if err != nil {
			return len(ids), fmt.Errorf("comment on post %d: %w", postID, err)
		}
		ids = append(ids, created.ID)
	}
	return len(ids), nil
}
