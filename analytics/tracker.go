package analytics

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Tracker records page views of rendered HTML pages.
type Tracker struct {
	Store *Store

	salt    string
	ownHost string
	logger  *zap.Logger
	skip    func(path string) bool
	now     func() time.Time

	stopOnce sync.Once
	done     chan struct{}
}

// NewTracker loads the hashing salt and returns a tracker writing to store.
// Requests whose path satisfies skip are never recorded.
func NewTracker(ctx context.Context, store *Store, ownHost string, logger *zap.Logger, skip func(string) bool) (*Tracker, error) {
	salt, err := store.Salt(ctx)
	if err != nil {
		return nil, err
	}
	if skip == nil {
		skip = func(string) bool { return false }
	}
	return &Tracker{
		Store:   store,
		salt:    salt,
		ownHost: ownHost,
		logger:  logger,
		skip:    skip,
		now:     time.Now,
		done:    make(chan struct{}),
	}, nil
}

// VisitorID identifies a visitor without storing the IP. It changes daily.
func (t *Tracker) VisitorID(ip, userAgent string) string {
	return saltedHash(t.salt, ip, userAgent, t.now().UTC().Format("2006-01-02"))
}

// Middleware records successful GET requests that rendered HTML.
func (t *Tracker) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		req := c.Request()
		if err != nil || req.Method != http.MethodGet || t.skip(req.URL.Path) {
			return err
		}
		res := c.Response()
		if res.Status != http.StatusOK || !strings.HasPrefix(res.Header().Get(echo.HeaderContentType), "text/html") {
			return nil
		}
		if recErr := t.record(req.Context(), c.RealIP(), req.UserAgent(), req.URL.Path, req.Referer()); recErr != nil {
			t.logger.Warn("record visit", zap.String("path", req.URL.Path), zap.Error(recErr))
		}
		return nil
	}
}

func (t *Tracker) record(ctx context.Context, ip, ua, path, referrer string) error {
	now := t.now()
	if bot := BotName(ua); bot != "" {
		return t.Store.SaveBotVisit(ctx, BotVisit{BotName: bot, Path: path, Timestamp: now})
	}
	ref := CleanReferrer(referrer, t.ownHost)
	if ref == "" {
		ref = "Internal"
	}
	browser, os, device := ParseUserAgent(ua)
	return t.Store.SaveVisit(ctx, Visit{
		VisitorID: t.VisitorID(ip, ua),
		Browser:   browser,
		OS:        os,
		Device:    device,
		Path:      path,
		Referrer:  ref,
		Timestamp: now,
	})
}

// StartCleanup deletes views older than retention every interval until Stop.
func (t *Tracker) StartCleanup(retention, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				n, err := t.Store.CleanupOldVisits(context.Background(), retention)
				if err != nil {
					t.logger.Error("analytics cleanup", zap.Error(err))
					continue
				}
				if n > 0 {
					t.logger.Info("analytics cleanup", zap.Int64("deleted", n))
				}
			case <-t.done:
				return
			}
		}
	}()
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() { close(t.done) })
}
