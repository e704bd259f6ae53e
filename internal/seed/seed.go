package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"alphaboard/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder.
type Options struct {
	NumUsers    int
	NumIdeas    int
	ShouldClean bool
	// SkipBcrypt stores plaintext demo passwords. Dev fast mode only.
	SkipBcrypt bool
	// MaxDays bounds the created_at spread of generated ideas.
	MaxDays int
}

var serverNames = []string{
	"FX Majors", "Crypto Corner", "Indices Desk", "Commodities",
	"Options Flow", "Swing Traders", "Scalpers Lounge", "Macro Talk",
	"Earnings Season", "Charting 101",
}

// Seed populates the database with demo data: users, multi-page trade
// ideas with media, comments, likes, ads in every status, affiliate links,
// community servers with chatter, and a few direct conversations.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Starting database seeding with %d users and %d ideas...", opts.NumUsers, opts.NumIdeas)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	f := NewFactory(db, opts)
	//nolint:gosec // weak randomness is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	users, err := createUsers(f, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("Created %d users", len(users))

	ideas, err := createIdeas(f, r, users, opts.NumIdeas)
	if err != nil {
		return fmt.Errorf("failed to create ideas: %w", err)
	}
	log.Printf("Created %d ideas", len(ideas))

	if err := createEngagement(f, r, users, ideas); err != nil {
		return fmt.Errorf("failed to create comments and likes: %w", err)
	}

	if err := createPromotions(f, r, users); err != nil {
		return fmt.Errorf("failed to create ads and affiliate links: %w", err)
	}

	if err := createCommunities(f, r, users); err != nil {
		return fmt.Errorf("failed to create servers: %w", err)
	}

	if err := createConversations(f, r, users); err != nil {
		return fmt.Errorf("failed to create conversations: %w", err)
	}

	log.Println("Database seeding completed")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE comments, likes, breakdown_pages, media_items, trade_ideas,
		ads, affiliate_links, server_members, servers, conversation_participants,
		messages, conversations, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func createUsers(f *Factory, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)

	// Always include fixed accounts so demo logins stay predictable.
	fixed := []struct {
		username string
		admin    bool
	}{
		{"admin", true},
		{"demo", false},
		{"test", false},
	}
	for _, fu := range fixed {
		fu := fu
		user, err := f.CreateUser(func(u *models.User) {
			u.Username = fu.username
			u.Email = fmt.Sprintf("%s@example.com", fu.username)
			u.Bio = "One of the house accounts."
			u.Avatar = fmt.Sprintf("https://i.pravatar.cc/150?u=%s", fu.username)
			u.IsAdmin = fu.admin
		})
		if err != nil {
			// already exists on re-seed without clean
			continue
		}
		users = append(users, user)
	}

	for i := len(users); i < count; i++ {
		user, err := f.CreateUser()
		if err != nil {
			log.Printf("Failed to create user: %v", err)
			continue
		}
		users = append(users, user)
		logEvery(i, 100, "Created %d users...", i)
	}
	return users, nil
}

func createIdeas(f *Factory, r *rand.Rand, users []*models.User, count int) ([]*models.TradeIdea, error) {
	ideas := make([]*models.TradeIdea, 0, count)
	for i := 0; i < count; i++ {
		user := users[r.Intn(len(users))]
		idea, err := f.CreateIdea(user, func(idea *models.TradeIdea) {
			// a thin layer of pinned ideas so the hot feed shows them
			idea.IsPinned = r.Float32() < 0.05
		})
		if err != nil {
			return nil, err
		}
		ideas = append(ideas, idea)
		logEvery(i, 100, "Created %d ideas...", i)
	}
	return ideas, nil
}

func createEngagement(f *Factory, r *rand.Rand, users []*models.User, ideas []*models.TradeIdea) error {
	for _, idea := range ideas {
		commenters := r.Intn(4)
		for i := 0; i < commenters; i++ {
			user := users[r.Intn(len(users))]
			if _, err := f.CreateComment(user, idea); err != nil {
				return err
			}
		}

		// likes need distinct users per idea
		likers := r.Perm(len(users))
		n := r.Intn(len(users)/2 + 1)
		for _, li := range likers[:n] {
			if err := f.CreateLike(users[li], idea); err != nil {
				return err
			}
		}
	}
	return nil
}

func createPromotions(f *Factory, r *rand.Rand, users []*models.User) error {
	statuses := []models.AdStatus{
		models.AdStatusApproved, models.AdStatusApproved,
		models.AdStatusPending, models.AdStatusRejected,
	}
	for _, status := range statuses {
		user := users[r.Intn(len(users))]
		if _, err := f.CreateAd(user, status); err != nil {
			return err
		}
	}

	for i := 0; i < 3; i++ {
		if _, err := f.CreateAffiliateLink(); err != nil {
			return err
		}
	}
	// one inactive link so admin listings show the toggle
	_, err := f.CreateAffiliateLink(func(l *models.AffiliateLink) {
		l.IsActive = false
	})
	return err
}

func createCommunities(f *Factory, r *rand.Rand, users []*models.User) error {
	for _, name := range serverNames {
		owner := users[r.Intn(len(users))]
		server, err := f.CreateServer(owner, name)
		if err != nil {
			return err
		}

		memberIdx := r.Perm(len(users))
		n := r.Intn(len(users)/2 + 1)
		members := []*models.User{owner}
		for _, mi := range memberIdx[:n] {
			if users[mi].ID == owner.ID {
				continue
			}
			if err := f.AddServerMember(server, users[mi]); err != nil {
				return err
			}
			members = append(members, users[mi])
		}

		chatter := r.Intn(10)
		for i := 0; i < chatter; i++ {
			sender := members[r.Intn(len(members))]
			if _, err := f.CreateServerMessage(server, sender); err != nil {
				return err
			}
		}
	}
	return nil
}

func createConversations(f *Factory, r *rand.Rand, users []*models.User) error {
	if len(users) < 2 {
		return nil
	}
	pairs := len(users) / 2
	if pairs > 10 {
		pairs = 10
	}
	perm := r.Perm(len(users))
	for i := 0; i < pairs; i++ {
		a, b := users[perm[2*i]], users[perm[2*i+1]]
		conv, err := f.CreateConversation(a, b)
		if err != nil {
			return err
		}
		turns := 2 + r.Intn(6)
		for t := 0; t < turns; t++ {
			sender := a
			if t%2 == 1 {
				sender = b
			}
			if _, err := f.CreateDirectMessage(conv, sender); err != nil {
				return err
			}
		}
	}
	return nil
}
