package domain

import (
	"errors"
	"time"
)

// ErrNotFound is returned by stores when a site, page or document does not
// exist.
var ErrNotFound = errors.New("not found")

type Site struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Page struct {
	ID        string    `json:"id"`
	SiteID    string    `json:"siteId"`
	Name      string    `json:"name"`
	Path      string    `json:"path"` // URL path within the site, e.g. "/about"
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SiteStore interface {
	CreateSite(s *Site) error
	GetSite(id string) (*Site, error)
	ListSites() ([]Site, error)
	UpdateSite(s *Site) error
	DeleteSite(id string) error

	CreatePage(p *Page) error
	GetPage(id string) (*Page, error)
	ListPages(siteID string) ([]Page, error)
	UpdatePage(p *Page) error
	DeletePage(id string) error
	DeletePagesBySite(siteID string) error
}

// DocumentStore persists one Document per page.
type DocumentStore interface {
	LoadDocument(pageID string) (Document, error)
	SaveDocument(pageID string, doc Document) error
}
