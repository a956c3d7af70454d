package interfaces

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// PageFetcher opens fetch sessions against the marketplace
type PageFetcher interface {
	NewSession(ctx context.Context) (FetchSession, error)
}

// FetchSession is one browsing context. Render may be called concurrently;
// Close releases every page the session opened.
type FetchSession interface {
	// Render navigates to url and returns the parsed page once waitSelector
	// matches at least one element. An empty waitSelector skips the check.
	Render(ctx context.Context, url, waitSelector string) (*goquery.Document, error)
	Close() error
}
