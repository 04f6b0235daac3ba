package domain

// Ref references an entity of the remote API by id (and slug when known)
type Ref struct {
	ID   int    `json:"id"`
	Slug string `json:"slug,omitempty"`
}

// Collective represents the funded entity (organization, project, event, user)
type Collective struct {
	ID               int                    `json:"id"`
	Slug             string                 `json:"slug"`
	Path             string                 `json:"path,omitempty"`
	Name             string                 `json:"name"`
	Type             CollectiveType         `json:"type"`
	Tags             []string               `json:"tags,omitempty"`
	Description      string                 `json:"description,omitempty"`
	LongDescription  string                 `json:"longDescription,omitempty"`
	TwitterHandle    string                 `json:"twitterHandle,omitempty"`
	Website          string                 `json:"website,omitempty"`
	Image            string                 `json:"image,omitempty"`
	BackgroundImage  string                 `json:"backgroundImage,omitempty"`
	IsActive         bool                   `json:"isActive"`
	Currency         string                 `json:"currency,omitempty"`
	StartsAt         string                 `json:"startsAt,omitempty"`
	EndsAt           string                 `json:"endsAt,omitempty"`
	Timezone         string                 `json:"timezone,omitempty"`
	Settings         map[string]interface{} `json:"settings,omitempty"`
	Location         *Location              `json:"location,omitempty"`
	Host             *Collective            `json:"host,omitempty"`
	ParentCollective *Collective            `json:"parentCollective,omitempty"`
	Stats            *CollectiveStats       `json:"stats,omitempty"`
	Tiers            []Tier                 `json:"tiers,omitempty"`
	Events           []Collective           `json:"events,omitempty"`
}

// LogoImage returns the collective image, falling back to the parent's
func (c *Collective) LogoImage() string {
	if c.Image != "" {
		return c.Image
	}
	if c.ParentCollective != nil {
		return c.ParentCollective.Image
	}
	return ""
}

// TierByID returns the tier with the given id
func (c *Collective) TierByID(id int) (Tier, bool) {
	for _, t := range c.Tiers {
		if t.ID == id {
			return t, true
		}
	}
	return Tier{}, false
}

// MatchingFund returns the matching fund configured in the collective settings
func (c *Collective) MatchingFund() string {
	if c.Settings == nil {
		return ""
	}
	if v, ok := c.Settings["matchingFund"].(string); ok {
		return v
	}
	return ""
}

type Location struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

type CollectiveStats struct {
	ID           int `json:"id"`
	YearlyBudget int `json:"yearlyBudget"`
	Balance      int `json:"balance"`
	Backers      struct {
		All int `json:"all"`
	} `json:"backers"`
}

// Tier represents a funding level of a collective
type Tier struct {
	ID          int        `json:"id,omitempty"`
	Type        OrderType  `json:"type"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug,omitempty"`
	Description string     `json:"description,omitempty"`
	Amount      int        `json:"amount,omitempty"`
	Currency    string     `json:"currency,omitempty"`
	Interval    Interval   `json:"interval,omitempty"`
	Presets     []int      `json:"presets,omitempty"`
	MaxQuantity int        `json:"maxQuantity,omitempty"`
	Button      string     `json:"button,omitempty"`
	Stats       *TierStats `json:"stats,omitempty"`
}

type TierStats struct {
	ID                int `json:"id"`
	AvailableQuantity int `json:"availableQuantity"`
}

// User is the logged in user as returned by the remote API
type User struct {
	ID         int         `json:"id"`
	Email      string      `json:"email"`
	FirstName  string      `json:"firstName,omitempty"`
	LastName   string      `json:"lastName,omitempty"`
	Collective *Collective `json:"collective,omitempty"`
}

// SearchResult is one page of a collective search
type SearchResult struct {
	Collectives []Collective `json:"collectives"`
	Limit       int          `json:"limit"`
	Offset      int          `json:"offset"`
	Total       int          `json:"total"`
}

// CollectivesQuery filters the collectives listing
type CollectivesQuery struct {
	HostCollectiveID int
	OrderBy          string
	OrderDirection   string
	Limit            int
	Offset           int
}
