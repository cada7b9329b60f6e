// Command main runs the database seeder for Agora.
package main

import (
	"context"
	"flag"
	"log"

	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	numUsers := flag.Int("users", defaults.NumUsers, "Number of users to create")
	postsPerUser := flag.Int("posts-per-user", defaults.PostsPerUser, "Posts created by each user")
	commentsPerPost := flag.Int("comments-per-post", defaults.CommentsPerPost, "Comments created on each post")
	likeProbability := flag.Float64("like-probability", defaults.LikeProbability, "Chance that a user likes a given post")
	randomSeed := flag.Int64("seed", 0, "Random seed (0 picks one)")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	opts := defaults
	opts.NumUsers = *numUsers
	opts.PostsPerUser = *postsPerUser
	opts.CommentsPerPost = *commentsPerPost
	opts.LikeProbability = *likeProbability
	opts.RandomSeed = *randomSeed
	opts.BcryptCost = cfg.BcryptCost

	ctx := context.Background()
	s := seed.NewSeeder(db, opts)

	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	res, err := s.Run(ctx)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d posts, %d comments, %d likes", len(res.Users), len(res.PostIDs), res.Comments, res.Likes)
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
