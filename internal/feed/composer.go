// Package feed composes the home feed: organic trade ideas interleaved with
// monetized content (approved ads and promoted affiliate links) at a fixed
// cadence, so promotions are visible but not dominant.
package feed

import (
	"alphaboard/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultInterval is the number of ideas shown before each promoted slot.
// Callers may override it per surface (the idea list uses 4, the instrument
// page uses 5).
const DefaultInterval = 4

// ViewType discriminates feed items.
type ViewType string

const (
	// ViewTypeIdea marks an organic trade idea.
	ViewTypeIdea ViewType = "idea"
	// ViewTypeAd marks a monetized unit (real ad or promoted link).
	ViewTypeAd ViewType = "ad"
)

// PromotedAuthor is the display author of affiliate-link pseudo-ads.
const PromotedAuthor = "Promoted"

// AdUnit is the feed-compatible shape shared by real ads and promoted
// affiliate links. Pseudo-ads from affiliate links carry negative IDs so
// they can never collide with real ad IDs, which are positive.
type AdUnit struct {
	ID       int64           `json:"id"`
	Title    string          `json:"title"`
	Content  string          `json:"content"`
	LinkURL  string          `json:"link_url"`
	MediaURL string          `json:"media_url"`
	Status   models.AdStatus `json:"status"`
	Cost     decimal.Decimal `json:"cost"`
	Author   string          `json:"author"`
}

// Item is one element of the composed feed: a tagged union over trade ideas
// and ad units. Items are produced fresh on every composition and have no
// identity across requests.
type Item struct {
	ViewType ViewType          `json:"view_type"`
	Idea     *models.TradeIdea `json:"idea,omitempty"`
	Ad       *AdUnit           `json:"ad,omitempty"`
}

// PromoteLinks maps active affiliate links into pseudo-ad units. The link at
// index i gets id -(i+1) and a forced approved status.
func PromoteLinks(links []models.AffiliateLink) []AdUnit {
	units := make([]AdUnit, 0, len(links))
	for i, link := range links {
		units = append(units, AdUnit{
			ID:       -int64(i + 1),
			Title:    link.Title,
			Content:  link.Description,
			LinkURL:  link.URL,
			MediaURL: link.ImageURL,
			Status:   models.AdStatusApproved,
			Author:   PromotedAuthor,
		})
	}
	return units
}

// adUnit maps a real ad row into the shared feed shape.
func adUnit(ad models.Ad) AdUnit {
	return AdUnit{
		ID:       int64(ad.ID),
		Title:    ad.Title,
		Content:  ad.Content,
		LinkURL:  ad.LinkURL,
		MediaURL: ad.MediaURL,
		Status:   ad.Status,
		Cost:     ad.Cost,
		Author:   ad.User.Username,
	}
}

// Compose merges ideas (already ordered newest-first), approved ads, and
// promoted affiliate links into one ordered feed. Promoted slots open after
// every `interval` ideas; the slot positions follow the splice arithmetic of
// inserting into a growing list (interval, then steps of interval+1 over the
// combined sequence), realized here as a two-pointer merge over an explicit
// output buffer. Promoted units that find no slot before the ideas run out
// are appended at the end. Composition is deterministic and cannot fail;
// nil inputs are treated as empty.
func Compose(ideas []models.TradeIdea, ads []models.Ad, links []models.AffiliateLink, interval int) []Item {
	if interval <= 0 {
		interval = DefaultInterval
	}

	promoted := make([]AdUnit, 0, len(ads)+len(links))
	for _, ad := range ads {
		if ad.Status != models.AdStatusApproved {
			continue
		}
		promoted = append(promoted, adUnit(ad))
	}
	promoted = append(promoted, PromoteLinks(links)...)

	out := make([]Item, 0, len(ideas)+len(promoted))
	if len(ideas) == 0 {
		for i := range promoted {
			out = append(out, Item{ViewType: ViewTypeAd, Ad: &promoted[i]})
		}
		return out
	}

	ideaIdx, adIdx := 0, 0
	nextSlot := interval
	for ideaIdx < len(ideas) {
		// A slot is eligible only while it falls inside the combined
		// sequence built so far (all ideas plus promotions already placed).
		if adIdx < len(promoted) && len(out) == nextSlot && nextSlot < len(ideas)+adIdx {
			out = append(out, Item{ViewType: ViewTypeAd, Ad: &promoted[adIdx]})
			adIdx++
			nextSlot += interval + 1
			continue
		}
		out = append(out, Item{ViewType: ViewTypeIdea, Idea: &ideas[ideaIdx]})
		ideaIdx++
	}
	for ; adIdx < len(promoted); adIdx++ {
		out = append(out, Item{ViewType: ViewTypeAd, Ad: &promoted[adIdx]})
	}
	return out
}
