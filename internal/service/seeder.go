package service

import (
	"context"
	"fmt"
	mrand "math/rand/v2"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/medcircle/commons/api/internal/database"
	"github.com/medcircle/commons/api/internal/model"
)

// SeederService generates development data: users with bcrypt-hashed
// passwords, forums with members, and threads of posts and comments. Seeded
// records carry an email or name prefix so Cleanup can remove them.
type SeederService struct {
	store    database.Store
	users    UserRepository
	forums   ForumRepository
	posts    PostRepository
	comments CommentRepository
}

// NewSeederService creates a new seeder service
func NewSeederService(store database.Store, users UserRepository, forums ForumRepository, posts PostRepository, comments CommentRepository) *SeederService {
	return &SeederService{
		store:    store,
		users:    users,
		forums:   forums,
		posts:    posts,
		comments: comments,
	}
}

// SeedUsersRequest configures user seeding
type SeedUsersRequest struct {
	Count  int                `json:"count"`
	Prefix string             `json:"prefix,omitempty"`
	Role   model.PlatformRole `json:"role,omitempty"`
}

// SeedForumsRequest configures forum seeding
type SeedForumsRequest struct {
	Count                int    `json:"count"`
	MembersPerForum      int    `json:"members_per_forum,omitempty"`
	RequiresPostApproval bool   `json:"requires_post_approval,omitempty"`
	Prefix               string `json:"prefix,omitempty"`
}

// SeedPostsRequest configures post seeding
type SeedPostsRequest struct {
	Count           int    `json:"count"`
	ForumID         string `json:"forum_id"`
	CommentsPerPost int    `json:"comments_per_post,omitempty"`
	Prefix          string `json:"prefix,omitempty"`
}

// SeedResult contains the results of a seeding operation
type SeedResult struct {
	Created  int      `json:"created"`
	IDs      []string `json:"ids"`
	Duration int64    `json:"duration_ms"`
}

// CleanupResult contains the results of a cleanup operation
type CleanupResult struct {
	Duration int64 `json:"duration_ms"`
}

// Sample data for realistic generation
var (
	seedDisplayNames = []string{
		"Dr. Amara Osei", "Dr. Lucas Meyer", "Dr. Priya Raman", "Dr. Tomas Lindgren",
		"Dr. Yuki Tanaka", "Dr. Elena Petrova", "Dr. Samuel Adeyemi", "Dr. Ines Castro",
		"Dr. Farid Nasser", "Dr. Hannah Cole", "Dr. Mateo Rossi", "Dr. Agnes Koch",
		"Nurse Dana Whitfield", "Nurse Omar Haddad", "Nurse Greta Larsen",
	}
	seedForumNames = []string{
		"Cardiology Rounds", "Emergency Medicine", "Pediatric Practice",
		"Oncology Updates", "Primary Care Corner", "Radiology Reads",
		"Pharmacology Watch", "Surgical Techniques", "Mental Health Forum",
		"Infectious Disease Alerts",
	}
	seedPostTitles = []string{
		"Interesting ECG from this morning's intake",
		"Dosage adjustment question for renal patients",
		"New guideline summary, thoughts?",
		"Case discussion: atypical presentation",
		"Journal club pick for this week",
		"Imaging artifact or real finding?",
		"Handover checklist that actually works",
		"Post-op protocol comparison",
	}
	seedPostBodies = []string{
		"Sharing the details below, curious what the community thinks.",
		"Attaching my notes from the case. All identifying details removed.",
		"The updated guidance changes our standing protocol, summary inside.",
		"Looking for second opinions before the next review meeting.",
	}
	seedCommentBodies = []string{
		"We handled a similar case last quarter, happy to share our workup.",
		"The cited study had a small cohort, I would wait for replication.",
		"Agreed with the above, but check the contraindication list first.",
		"Our department switched protocols last year and saw fewer readmissions.",
		"Good catch, this is easy to miss on a first read.",
	}
)

// SeedUsers creates mock users with bcrypt-hashed passwords
func (s *SeederService) SeedUsers(ctx context.Context, req SeedUsersRequest) (*SeedResult, error) {
	start := time.Now()

	if req.Count <= 0 || req.Count > 1000 {
		return nil, fmt.Errorf("count must be between 1 and 1000")
	}
	if req.Prefix == "" {
		req.Prefix = "seed_"
	}
	if req.Role == "" {
		req.Role = model.RoleDoctor
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("devpass123"), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	ids := make([]string, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		user := &model.User{
			Email:        fmt.Sprintf("%s%s@dev.local", req.Prefix, newID()[:12]),
			PasswordHash: string(hash),
			DisplayName:  seedDisplayNames[mrand.IntN(len(seedDisplayNames))],
			Role:         req.Role,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		ids = append(ids, user.ID)
	}

	return &SeedResult{
		Created:  len(ids),
		IDs:      ids,
		Duration: time.Since(start).Milliseconds(),
	}, nil
}

// SeedForums creates mock forums, each owned by a fresh seeded user with
// additional seeded members.
func (s *SeederService) SeedForums(ctx context.Context, req SeedForumsRequest) (*SeedResult, error) {
	start := time.Now()

	if req.Count <= 0 || req.Count > 100 {
		return nil, fmt.Errorf("count must be between 1 and 100")
	}
	if req.Prefix == "" {
		req.Prefix = "seed_"
	}
	if req.MembersPerForum <= 0 {
		req.MembersPerForum = 5
	}

	userResult, err := s.SeedUsers(ctx, SeedUsersRequest{
		Count:  req.Count * req.MembersPerForum,
		Prefix: req.Prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seed forum members: %w", err)
	}

	ids := make([]string, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		memberIDs := userResult.IDs[i*req.MembersPerForum : (i+1)*req.MembersPerForum]
		ownerID := memberIDs[0]

		forum := &model.Forum{
			Name:                 fmt.Sprintf("%s%s %s", req.Prefix, seedForumNames[mrand.IntN(len(seedForumNames))], newID()[:6]),
			Description:          "Seeded forum for local development",
			OwnerID:              ownerID,
			Moderators:           map[string]model.ModeratorEntry{},
			Members:              []string{ownerID},
			PendingMembers:       map[string]model.PendingMember{},
			RequiresPostApproval: req.RequiresPostApproval,
			MemberCount:          1,
			CreatedOn:            time.Now().UTC(),
		}
		fid := newID()
		forum.ID = "forum:" + fid

		batch := database.NewAtomicBatch()
		batch.AddStatement(s.forums.CreateStatement(fid, forum))
		batch.AddStatement(s.users.AddJoinedForumStatement(ownerID, forum.ID))
		for _, memberID := range memberIDs[1:] {
			batch.AddStatement(s.forums.AddMemberStatement(forum.ID, memberID))
			batch.AddStatement(s.users.AddJoinedForumStatement(memberID, forum.ID))
		}
		if err := batch.Execute(ctx, s.store); err != nil {
			return nil, fmt.Errorf("failed to create forum: %w", err)
		}
		ids = append(ids, forum.ID)
	}

	return &SeedResult{
		Created:  len(ids),
		IDs:      ids,
		Duration: time.Since(start).Milliseconds(),
	}, nil
}

// SeedPosts creates mock posts in a forum, authored by its members, each
// with a short comment thread.
func (s *SeederService) SeedPosts(ctx context.Context, req SeedPostsRequest) (*SeedResult, error) {
	start := time.Now()

	if req.Count <= 0 || req.Count > 500 {
		return nil, fmt.Errorf("count must be between 1 and 500")
	}
	if req.ForumID == "" {
		return nil, fmt.Errorf("forum_id is required")
	}
	// a post and its thread share one batch, so the thread length is capped
	if req.CommentsPerPost < 0 || req.CommentsPerPost > 10 {
		return nil, fmt.Errorf("comments_per_post must be between 0 and 10")
	}
	if req.Prefix == "" {
		req.Prefix = "seed_"
	}

	forum, err := s.forums.GetByID(ctx, req.ForumID)
	if err != nil {
		return nil, err
	}
	if forum == nil {
		return nil, ErrForumNotFound
	}
	if len(forum.Members) == 0 {
		return nil, fmt.Errorf("forum has no members to author posts")
	}

	ids := make([]string, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		authorID := forum.Members[mrand.IntN(len(forum.Members))]
		pid := newID()
		post := &model.Post{
			ID:       "post:" + pid,
			AuthorID: authorID,
			ForumID:  forum.ID,
			Title:    fmt.Sprintf("%s%s", req.Prefix, seedPostTitles[mrand.IntN(len(seedPostTitles))]),
			Content:  seedPostBodies[mrand.IntN(len(seedPostBodies))],
			Status:   model.PostStatusActive,
			Likes:    []string{},
			Dislikes: []string{},
		}

		batch := database.NewAtomicBatch()
		batch.AddStatement(s.posts.CreateStatement(pid, post))
		batch.AddStatement(s.forums.IncrementPostCountStatement(forum.ID, 1))
		batch.AddStatement(s.users.IncrementStatStatement(authorID, "post_count", 1))
		batch.AddStatement(s.users.IncrementStatStatement(authorID, "contribution_count", 1))

		for j := 0; j < req.CommentsPerPost; j++ {
			commenterID := forum.Members[mrand.IntN(len(forum.Members))]
			cid := newID()
			comment := &model.Comment{
				ID:       "comment:" + cid,
				PostID:   post.ID,
				AuthorID: commenterID,
				Content:  seedCommentBodies[mrand.IntN(len(seedCommentBodies))],
				Status:   model.PostStatusActive,
				Likes:    []string{},
			}
			batch.AddStatement(s.comments.CreateStatement(cid, comment))
			batch.AddStatement(s.posts.IncrementCommentCountStatement(post.ID, 1))
			batch.AddStatement(s.users.IncrementStatStatement(commenterID, "comment_count", 1))
			batch.AddStatement(s.users.IncrementStatStatement(commenterID, "contribution_count", 1))
		}

		if err := batch.Execute(ctx, s.store); err != nil {
			return nil, fmt.Errorf("failed to create post: %w", err)
		}
		ids = append(ids, post.ID)
	}

	return &SeedResult{
		Created:  len(ids),
		IDs:      ids,
		Duration: time.Since(start).Milliseconds(),
	}, nil
}

// Cleanup removes all seeded data with the given prefix
func (s *SeederService) Cleanup(ctx context.Context, prefix string) (*CleanupResult, error) {
	start := time.Now()

	if prefix == "" {
		prefix = "seed_"
	}
	vars := map[string]interface{}{"prefix": prefix}

	steps := []struct {
		name  string
		query string
	}{
		{"comments", `DELETE comment WHERE post_id IN (SELECT VALUE id FROM post WHERE string::starts_with(title, $prefix))`},
		{"posts", `DELETE post WHERE string::starts_with(title, $prefix)`},
		{"forums", `DELETE forum WHERE string::starts_with(name, $prefix)`},
		{"users", `DELETE user WHERE string::starts_with(email, $prefix)`},
	}
	for _, step := range steps {
		if err := s.store.Execute(ctx, step.query, vars); err != nil {
			return nil, fmt.Errorf("failed to delete seeded %s: %w", step.name, err)
		}
	}

	return &CleanupResult{Duration: time.Since(start).Milliseconds()}, nil
}
