package app

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Page is an offset/limit window over an id-ordered listing.
type Page struct {
	Skip  int
	Limit int
}

func (p Page) normalize() (Page, error) {
	if p.Skip < 0 || p.Limit < 0 {
		return Page{}, invalidInput("skip and limit must not be negative")
	}
	if p.Limit == 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p, nil
}
