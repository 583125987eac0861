package content

import (
	"strings"
	"time"

	"meraki/internal/domain/validation"
)

// Sponsor tiers in display order.
const (
	TierPlatinum = "Platinum"
	TierGold     = "Gold"
	TierSilver   = "Silver"
	TierBronze   = "Bronze"
)

// TierRank orders sponsors on the sponsors page.
var TierRank = map[string]int{TierPlatinum: 0, TierGold: 1, TierSilver: 2, TierBronze: 3}

// BlogPost is a festival article. Content is Markdown.
type BlogPost struct {
	ID        string    `json:"id"`
	Title     string    `json:"title" validate:"trimmin=3,max=200"`
	Content   string    `json:"content" validate:"trimmin=1"`
	Author    string    `json:"author" validate:"max=200"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks the blog post rules.
// PRE: BlogPost struct is populated
// POST: Returns nil if valid, *validation.Error otherwise
func (p *BlogPost) Validate() error {
	return validation.Struct(p)
}

// Excerpt returns the first paragraph of the post, cut to at most n runes.
func (p *BlogPost) Excerpt(n int) string {
	text := strings.TrimSpace(p.Content)
	if i := strings.Index(text, "\n\n"); i >= 0 {
		text = text[:i]
	}
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}

// Speaker is a guest appearing at a festival event.
type Speaker struct {
	ID       string `json:"id"`
	Name     string `json:"name" validate:"trimmin=2,max=200"`
	Bio      string `json:"bio" validate:"trimmin=10,max=2000"`
	ImageURL string `json:"imageUrl,omitempty" validate:"omitempty,url"`
	EventID  string `json:"eventId,omitempty"`
}

// Validate checks the speaker rules.
func (s *Speaker) Validate() error {
	return validation.Struct(s)
}

// Sponsor is an organisation supporting the festival.
type Sponsor struct {
	ID      string `json:"id"`
	Name    string `json:"name" validate:"trimmin=2,max=200"`
	Tier    string `json:"tier" validate:"oneof=Platinum Gold Silver Bronze"`
	LogoURL string `json:"logoUrl,omitempty" validate:"omitempty,url"`
	Website string `json:"website,omitempty" validate:"omitempty,url"`
}

// Validate checks the sponsor rules.
func (s *Sponsor) Validate() error {
	return validation.Struct(s)
}
