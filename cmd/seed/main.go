// Command seed fills every store with fake users, posts and likes.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"socialmesh/internal/bootstrap"
	"socialmesh/internal/config"
	"socialmesh/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 100, "Number of posts to create")
	numLikes := flag.Int("likes", 500, "Number of likes to apply")
	seedValue := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	log.Printf("Target: %d users, %d posts, %d likes\n", *numUsers, *numPosts, *numLikes)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect stores: %v", err)
	}

	err = run(ctx, rt.Coordinator, *seedValue, seed.Options{
		NumUsers: *numUsers,
		NumPosts: *numPosts,
		NumLikes: *numLikes,
	})
	_ = rt.Close(ctx)
	if err != nil {
		log.Printf("Seeding stopped: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, coord seed.Coordinator, seedValue int64, opts seed.Options) error {
	report, err := seed.NewSeeder(coord, seedValue).Run(ctx, opts)
	if err != nil {
		return err
	}
	log.Printf("Seeded %d users, %d posts, %d likes (%d partial)", report.Users, report.Posts, report.Likes, report.Partial)
	return nil
}
