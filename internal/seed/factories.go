// Package seed provides helpers to create demo and test data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"alphaboard/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var instruments = []string{
	"EURUSD", "GBPUSD", "USDJPY", "AUDUSD", "BTCUSD", "ETHUSD",
	"XAUUSD", "XAGUSD", "US500", "NAS100", "AAPL", "NVDA", "TSLA",
	"MSFT", "AMZN", "CL", "NG", "ZB",
}

var ideaTags = []string{
	"breakout", "pullback", "swing", "scalp", "trend", "reversal",
	"support", "resistance", "fibonacci", "volume-profile", "earnings",
	"macro", "orderflow", "wyckoff",
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by Seed and by tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	//nolint:gosec // weak randomness is fine for seeding
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, opts: opts, rng: rng}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: strings.ToLower(gofakeit.Username()) + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Bio:      gofakeit.Sentence(10),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildIdea constructs a multi-page trade idea with media attachments but
// does not persist it. Breakdown text references attachments through
// [MEDIA:<key>] placeholders so resolver paths get realistic input.
func (f *Factory) BuildIdea(user *models.User, overrides ...func(*models.TradeIdea)) *models.TradeIdea {
	instrument := instruments[f.rng.Intn(len(instruments))]
	idea := &models.TradeIdea{
		Title:      fmt.Sprintf("%s %s setup", instrument, ideaTags[f.rng.Intn(len(ideaTags))]),
		Instrument: instrument,
		UserID:     user.ID,
		ImageURL:   fmt.Sprintf("https://picsum.photos/seed/%s/1200/675", gofakeit.UUID()),
	}
	idea.SetTagList(pickTags(f.rng, 1+f.rng.Intn(3)))

	// realistic created_at spread
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	idea.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	mediaCount := 1 + f.rng.Intn(3)
	for i := 0; i < mediaCount; i++ {
		key := fmt.Sprintf("media_%d_%s", time.Now().UnixMilli(), gofakeit.LetterN(6))
		idea.Media = append(idea.Media, models.MediaItem{
			Key:          key,
			Type:         models.MediaTypeImage,
			URL:          fmt.Sprintf("https://picsum.photos/seed/chart-%s/1200/675", gofakeit.UUID()),
			Description:  gofakeit.Sentence(6),
			ThumbnailURL: fmt.Sprintf("https://picsum.photos/seed/thumb-%s/400/225", gofakeit.UUID()),
			Position:     i,
		})
	}

	pageCount := 1 + f.rng.Intn(3)
	for p := 0; p < pageCount; p++ {
		content := gofakeit.Paragraph(1, 3, 8, "\n")
		if p < len(idea.Media) {
			content = fmt.Sprintf("%s\n\n[MEDIA:%s]\n\n%s", gofakeit.Sentence(8), idea.Media[p].Key, content)
		}
		idea.Pages = append(idea.Pages, models.BreakdownPage{
			Position: p,
			Content:  content,
		})
	}

	for _, override := range overrides {
		override(idea)
	}
	return idea
}

// CreateIdea persists a generated trade idea for the given user.
func (f *Factory) CreateIdea(user *models.User, overrides ...func(*models.TradeIdea)) (*models.TradeIdea, error) {
	idea := f.BuildIdea(user, overrides...)
	if err := f.db.Create(idea).Error; err != nil {
		return nil, err
	}
	return idea, nil
}

// CreateComment persists a sample comment on the provided idea.
func (f *Factory) CreateComment(user *models.User, idea *models.TradeIdea, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content: gofakeit.Sentence(8),
		UserID:  user.ID,
		IdeaID:  idea.ID,
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like from `user` on `idea`.
func (f *Factory) CreateLike(user *models.User, idea *models.TradeIdea) error {
	like := &models.Like{
		UserID: user.ID,
		IdeaID: idea.ID,
	}
	return f.db.Create(like).Error
}

// CreateAd persists a sample ad in the given status.
func (f *Factory) CreateAd(user *models.User, status models.AdStatus, overrides ...func(*models.Ad)) (*models.Ad, error) {
	ad := &models.Ad{
		Title:    gofakeit.Company() + " - " + gofakeit.Sentence(4),
		Content:  gofakeit.Paragraph(1, 2, 6, "\n"),
		LinkURL:  gofakeit.URL(),
		MediaURL: fmt.Sprintf("https://picsum.photos/seed/ad-%s/600/400", gofakeit.UUID()),
		Status:   status,
		Cost:     decimal.NewFromInt(int64(gofakeit.Number(50, 5000))).Div(decimal.NewFromInt(10)),
		UserID:   user.ID,
	}

	for _, override := range overrides {
		override(ad)
	}

	if err := f.db.Create(ad).Error; err != nil {
		return nil, err
	}
	return ad, nil
}

// CreateAffiliateLink persists a sample affiliate link.
func (f *Factory) CreateAffiliateLink(overrides ...func(*models.AffiliateLink)) (*models.AffiliateLink, error) {
	link := &models.AffiliateLink{
		Title:       gofakeit.Company(),
		Description: gofakeit.Sentence(10),
		URL:         gofakeit.URL(),
		ImageURL:    fmt.Sprintf("https://picsum.photos/seed/aff-%s/600/400", gofakeit.UUID()),
		IsActive:    true,
	}

	for _, override := range overrides {
		override(link)
	}

	if err := f.db.Create(link).Error; err != nil {
		return nil, err
	}
	return link, nil
}

// CreateServer persists a community server owned by the given user, with
// the owner recorded as a member.
func (f *Factory) CreateServer(owner *models.User, name string, overrides ...func(*models.Server)) (*models.Server, error) {
	server := &models.Server{
		Name:        name,
		Description: gofakeit.Sentence(12),
		ImageURL:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", name),
		OwnerID:     owner.ID,
	}

	for _, override := range overrides {
		override(server)
	}

	if err := f.db.Create(server).Error; err != nil {
		return nil, err
	}
	member := &models.ServerMember{
		ServerID: server.ID,
		UserID:   owner.ID,
		Role:     models.ServerRoleOwner,
	}
	if err := f.db.Create(member).Error; err != nil {
		return nil, err
	}
	return server, nil
}

// AddServerMember records membership of `user` in `server`.
func (f *Factory) AddServerMember(server *models.Server, user *models.User) error {
	member := &models.ServerMember{
		ServerID: server.ID,
		UserID:   user.ID,
		Role:     models.ServerRoleMember,
	}
	return f.db.Create(member).Error
}

// CreateServerMessage persists a chat message in a server channel.
func (f *Factory) CreateServerMessage(server *models.Server, sender *models.User, overrides ...func(*models.Message)) (*models.Message, error) {
	message := &models.Message{
		ServerID: &server.ID,
		SenderID: sender.ID,
		Content:  gofakeit.Sentence(10),
	}

	for _, override := range overrides {
		override(message)
	}

	if err := f.db.Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// CreateConversation persists a direct conversation between two users with
// both recorded as participants.
func (f *Factory) CreateConversation(a, b *models.User) (*models.Conversation, error) {
	conv := &models.Conversation{CreatedBy: a.ID}
	if err := f.db.Create(conv).Error; err != nil {
		return nil, err
	}
	for _, u := range []*models.User{a, b} {
		p := &models.ConversationParticipant{ConversationID: conv.ID, UserID: u.ID}
		if err := f.db.Create(p).Error; err != nil {
			return nil, err
		}
	}
	return conv, nil
}

// CreateDirectMessage persists a message in a direct conversation.
func (f *Factory) CreateDirectMessage(conv *models.Conversation, sender *models.User, overrides ...func(*models.Message)) (*models.Message, error) {
	message := &models.Message{
		ConversationID: &conv.ID,
		SenderID:       sender.ID,
		Content:        gofakeit.Question(),
	}

	for _, override := range overrides {
		override(message)
	}

	if err := f.db.Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

func pickTags(rng *rand.Rand, n int) []string {
	picked := make([]string, 0, n)
	seen := map[string]bool{}
	for len(picked) < n {
		tag := ideaTags[rng.Intn(len(ideaTags))]
		if seen[tag] {
			continue
		}
		seen[tag] = true
		picked = append(picked, tag)
	}
	return picked
}

// logEvery logs progress once per `step` iterations.
func logEvery(i, step int, format string, args ...interface{}) {
	if step > 0 && i%step == 0 {
		log.Printf(format, args...)
	}
}
