package geom

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Loader fetches the boundary dataset once per program start.
type Loader struct {
	Source    string // http(s) URL, file:// URL or plain path
	Client    *http.Client
	NameKeys  []string
	UserAgent string
	Logger    *zap.Logger
}

// Fetch reads and decodes the dataset. There is no retry.
func (l *Loader) Fetch(ctx context.Context) (*Dataset, error) {
	log := l.Logger
	if log == nil {
		log = zap.NewNop()
	}
	data, err := l.read(ctx)
	if err != nil {
		log.Error("dataset fetch failed", zap.String("source", l.Source), zap.Error(err))
		return nil, err
	}
	ds, err := Decode(data, l.NameKeys)
	if err != nil {
		log.Error("dataset decode failed", zap.String("source", l.Source), zap.Error(err))
		return nil, err
	}
	log.Info("dataset loaded",
		zap.String("source", l.Source),
		zap.Int("features", len(ds.Features)),
		zap.Int("skipped", ds.Skipped))
	return ds, nil
}

func (l *Loader) read(ctx context.Context) ([]byte, error) {
	src := strings.TrimSpace(l.Source)
	if src == "" {
		return nil, fmt.Errorf("no dataset source configured")
	}
	u, err := url.Parse(src)
	if err == nil {
		switch u.Scheme {
		case "http", "https":
			return l.get(ctx, src)
		case "file":
			return readFile(u.Path)
		}
	}
	return readFile(src)
}

func (l *Loader) get(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build dataset request: %w", err)
	}
	if l.UserAgent != "" {
		req.Header.Set("User-Agent", l.UserAgent)
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch dataset: %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset body: %w", err)
	}
	return data, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	return data, nil
}
