// Command seed populates a development database with users, forums, and
// post threads, and can remove everything it created by prefix.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/medcircle/commons/api/internal/config"
	"github.com/medcircle/commons/api/internal/database"
	"github.com/medcircle/commons/api/internal/repository"
	"github.com/medcircle/commons/api/internal/service"
)

func main() {
	forums := flag.Int("forums", 3, "Number of forums to create")
	membersPerForum := flag.Int("members", 5, "Members per forum (owner included)")
	postsPerForum := flag.Int("posts", 4, "Posts per forum")
	commentsPerPost := flag.Int("comments", 3, "Comments per post")
	prefix := flag.String("prefix", "seed_", "Prefix applied to seeded records")
	cleanup := flag.Bool("cleanup", false, "Remove previously seeded data and exit")

	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	seeder := service.NewSeederService(
		db,
		repository.NewUserRepository(db),
		repository.NewForumRepository(db),
		repository.NewPostRepository(db),
		repository.NewCommentRepository(db),
	)

	if *cleanup {
		result, err := seeder.Cleanup(ctx, *prefix)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error cleaning up: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Removed seeded data with prefix %q in %dms\n", *prefix, result.Duration)
		return
	}

	forumResult, err := seeder.SeedForums(ctx, service.SeedForumsRequest{
		Count:           *forums,
		MembersPerForum: *membersPerForum,
		Prefix:          *prefix,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error seeding forums: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created %d forums in %dms\n", forumResult.Created, forumResult.Duration)

	totalPosts := 0
	for _, forumID := range forumResult.IDs {
		postResult, err := seeder.SeedPosts(ctx, service.SeedPostsRequest{
			Count:           *postsPerForum,
			ForumID:         forumID,
			CommentsPerPost: *commentsPerPost,
			Prefix:          *prefix,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error seeding posts in %s: %v\n", forumID, err)
			os.Exit(1)
		}
		totalPosts += postResult.Created
	}
	fmt.Printf("Created %d posts with %d comments each\n", totalPosts, *commentsPerPost)
	fmt.Println()
	fmt.Printf("Seeded users sign in with password devpass123 (emails start with %q)\n", *prefix)
	fmt.Printf("Remove everything with: seed -cleanup -prefix %s\n", *prefix)
}
