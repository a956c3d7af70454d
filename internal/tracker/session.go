package tracker

import (
	"context"

	"totw-tracker/internal/interfaces"
	"totw-tracker/internal/logger"
)

// lazySession opens a fetch session on first use so that calls served
// entirely from cache never touch the network.
type lazySession struct {
	fetcher interfaces.PageFetcher
	sess    interfaces.FetchSession
}

func newLazySession(fetcher interfaces.PageFetcher) *lazySession {
	return &lazySession{fetcher: fetcher}
}

// get is not safe for concurrent use; callers open the session before
// fanning out.
func (l *lazySession) get(ctx context.Context) (interfaces.FetchSession, error) {
	if l.sess != nil {
		return l.sess, nil
	}
	sess, err := l.fetcher.NewSession(ctx)
	if err != nil {
		return nil, err
	}
	l.sess = sess
	return sess, nil
}

func (l *lazySession) close(ctx context.Context) {
	if l.sess == nil {
		return
	}
	if err := l.sess.Close(); err != nil {
		logger.Warn(ctx, "Failed to close fetch session", "error", err)
	}
	l.sess = nil
}
