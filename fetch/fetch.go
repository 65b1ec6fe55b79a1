// Package fetch retrieves remote and local documents for the engine.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/gosimple/slug"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"obsync/common"
	"obsync/config"
)

// Fetcher returns complete body of the document addressed by url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// TextFetcher additionally decodes body into UTF-8 text.
type TextFetcher interface {
	Fetcher
	FetchText(ctx context.Context, url string) (string, error)
}

// Func adapts ordinary function to Fetcher.
type Func func(ctx context.Context, url string) ([]byte, error)

func (f Func) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// FetchText treats body as UTF-8 or sniffs its encoding.
func (f Func) FetchText(ctx context.Context, url string) (string, error) {
	data, err := f(ctx, url)
	if err != nil {
		return "", err
	}
	return decodeText(url, data, "")
}

// Client fetches http(s) URLs, file:// URLs and plain local paths. Every
// request runs under its own timeout. Client is safe for concurrent use.
type Client struct {
	http      *http.Client
	timeout   time.Duration
	userAgent string
	token     config.SecretString
	cacheDir  string
	rpt       *config.Report
	log       *zap.Logger
}

// Option customizes Client.
type Option func(*Client)

// WithHTTPClient replaces default http client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithReport makes client store bodies it could not decode in debug report.
func WithReport(rpt *config.Report) Option {
	return func(c *Client) {
		c.rpt = rpt
	}
}

// New creates client configured by fetch section of configuration.
func New(cfg *config.FetchConfig, log *zap.Logger, options ...Option) *Client {
	c := &Client{
		http:      http.DefaultClient,
		timeout:   cfg.Timeout,
		userAgent: cfg.UserAgent,
		token:     cfg.Token,
		log:       log.Named("fetch"),
	}
	if len(cfg.CacheDir) > 0 {
		c.cacheDir = filepath.Clean(cfg.CacheDir)
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Fetch returns body of the document. When network or server fails a
// previously cached copy is returned if one exists.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	data, _, err := c.fetch(ctx, url)
	return data, err
}

// FetchText returns body decoded into UTF-8 using charset from Content-Type
// header or sniffed from the content.
func (c *Client) FetchText(ctx context.Context, url string) (string, error) {
	data, contentType, err := c.fetch(ctx, url)
	if err != nil {
		return "", err
	}
	text, err := decodeText(url, data, contentType)
	if err != nil {
		c.rpt.StoreData(filepath.Join("undecodable", slug.Make(url)), data)
		return "", err
	}
	return text, nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	data, contentType, err := c.get(ctx, url)
	if err != nil {
		if !canUseCache(err) {
			return nil, "", err
		}
		if cached, ok := c.fromCache(url); ok {
			c.log.Warn("Using cached copy", zap.String("url", url), zap.Error(err))
			return cached, "", nil
		}
		return nil, "", err
	}
	c.log.Debug("Fetched", zap.String("url", url), zap.Int("size", len(data)), zap.Duration("elapsed", time.Since(start)))
	c.toCache(url, data)
	return data, contentType, nil
}

// canUseCache is true for transport failures and server side statuses,
// documents reported missing are never served from cache.
func canUseCache(err error) bool {
	var fe *common.FetchError
	if !errors.As(err, &fe) {
		return false
	}
	if fe.Status > 0 {
		return fe.Status >= 500
	}
	return !errors.Is(fe.Err, fs.ErrNotExist)
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", &common.FetchError{URL: rawURL, Err: err}
	}

	scheme := u.Scheme
	if len(filepath.VolumeName(rawURL)) > 0 {
		scheme = ""
	}

	switch scheme {
	case "", "file":
		name := rawURL
		if scheme == "file" {
			name = filepath.FromSlash(u.Path)
		}
		if err := ctx.Err(); err != nil {
			return nil, "", &common.FetchError{URL: rawURL, Err: err}
		}
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, "", &common.FetchError{URL: rawURL, Err: err}
		}
		return data, "", nil
	case "http", "https":
	default:
		return nil, "", &common.FetchError{URL: rawURL, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", &common.FetchError{URL: rawURL, Err: err}
	}
	if len(c.userAgent) > 0 {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if token := c.token.Reveal(); len(token) > 0 {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", &common.FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so connection could be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return nil, "", &common.FetchError{URL: rawURL, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &common.FetchError{URL: rawURL, Status: resp.StatusCode, Err: err}
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func decodeText(url string, data []byte, contentType string) (string, error) {
	r, err := charset.NewReader(bytes.NewReader(data), contentType)
	if err != nil {
		return "", &common.ParseError{Source: url, Err: err}
	}
	text, err := io.ReadAll(r)
	if err != nil {
		return "", &common.ParseError{Source: url, Err: err}
	}
	return string(text), nil
}

func (c *Client) cachePath(url string) string {
	return filepath.Join(c.cacheDir, slug.Make(url))
}

func (c *Client) fromCache(url string) ([]byte, bool) {
	if len(c.cacheDir) == 0 {
		return nil, false
	}
	data, err := os.ReadFile(c.cachePath(url))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.log.Warn("Unable to read cache", zap.String("url", url), zap.Error(err))
		}
		return nil, false
	}
	return data, true
}

func (c *Client) toCache(url string, data []byte) {
	if len(c.cacheDir) == 0 {
		return
	}
	if err := writeAtomic(c.cacheDir, c.cachePath(url), data); err != nil {
		c.log.Warn("Unable to update cache", zap.String("url", url), zap.Error(err))
		return
	}
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		c.log.Debug("Cached", zap.String("url", url), zap.String("type", kind.MIME.Value))
	}
}

func writeAtomic(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".fetch-*")
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), name)
}
