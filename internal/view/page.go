// Package view holds the page/layout state of a TidBid page and the pure
// transitions over it. Nothing here touches the store or the network.
package view

// Surface identifies which page family a state belongs to.
type Surface string

const (
	SurfaceAdmin  Surface = "admin"
	SurfacePortal Surface = "portal"
)

// Page identifies a section of a surface.
type Page string

const (
	PageChat      Page = "chat"
	PageClients   Page = "clients"
	PageSettings  Page = "settings"
	PageDashboard Page = "dashboard"
	PageProfile   Page = "profile"
)

// PageSet is the ordered list of pages of a surface with their titles.
type PageSet struct {
	Default Page
	Order   []Page
	Titles  map[Page]string
}

var pageSets = map[Surface]PageSet{
	SurfaceAdmin: {
		Default: PageChat,
		Order:   []Page{PageChat, PageClients, PageSettings},
		Titles: map[Page]string{
			PageChat:     "Chat",
			PageClients:  "Clients",
			PageSettings: "Settings",
		},
	},
	SurfacePortal: {
		Default: PageDashboard,
		Order:   []Page{PageDashboard, PageChat, PageProfile},
		Titles: map[Page]string{
			PageDashboard: "Dashboard",
			PageChat:      "Chat",
			PageProfile:   "Profile",
		},
	},
}

// ParseSurface returns the surface named s. The result is the package's
// own constant, never a view of s.
func ParseSurface(s string) (Surface, bool) {
	for sf := range pageSets {
		if string(sf) == s {
			return sf, true
		}
	}
	return "", false
}

// Pages returns the page set of a surface. Unknown surfaces get an empty
// set.
func Pages(s Surface) PageSet {
	return pageSets[s]
}

// Lookup resolves a page id within the set. The returned Page is the
// set's own key, so id may be a transient buffer.
func (ps PageSet) Lookup(id string) (Page, bool) {
	for _, p := range ps.Order {
		if string(p) == id {
			return p, true
		}
	}
	return "", false
}

// Title returns the header title for p, or "" when p is not in the set.
func (ps PageSet) Title(p Page) string {
	return ps.Titles[p]
}

// Link is a navigation entry.
type Link struct {
	ID    Page   `json:"id"`
	Title string `json:"title"`
}

// Links returns the navigation entries in display order.
func (ps PageSet) Links() []Link {
	out := make([]Link, 0, len(ps.Order))
	for _, p := range ps.Order {
		out = append(out, Link{ID: p, Title: ps.Titles[p]})
	}
	return out
}
