package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/sarjann/tiptap-cli/internal/model"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultCacheSize = 1024
	maxConcurrent    = 8
	maxBodyBytes     = 16 << 20
)

type Options struct {
	BaseURL           string
	Token             string
	RequestsPerSecond float64
	HTTPClient        *http.Client
	Logger            logrus.FieldLogger
}

// Client talks to the component registry. Fetched items are cached for the
// lifetime of the client so each item is requested at most once.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
	cache   *lru.Cache[string, model.RegistryItem]
	group   singleflight.Group
	log     logrus.FieldLogger
}

func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = model.DefaultRegistryURL
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	cache, err := lru.New[string, model.RegistryItem](defaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create registry cache: %w", err)
	}
	return &Client{
		baseURL: base,
		token:   opts.Token,
		http:    hc,
		limiter: rate.NewLimiter(rate.Limit(rps), maxConcurrent),
		cache:   cache,
		log:     log,
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// ItemURL maps an item reference (bare name, registry path or absolute URL)
// onto the canonical URL used both for fetching and as the dedupe key.
func (c *Client) ItemURL(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty registry reference")
	}
	if isURL(ref) {
		u, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("parse %q: %w", ref, err)
		}
		return u.String(), nil
	}
	switch {
	case ref == "index.json":
		return c.baseURL + "/r/index.json", nil
	case strings.HasPrefix(ref, "components/"):
		name := strings.TrimSuffix(strings.TrimPrefix(ref, "components/"), ".json")
		return c.baseURL + "/api/registry/components/" + name, nil
	case !strings.Contains(ref, "/"):
		return c.baseURL + "/api/registry/components/" + strings.TrimSuffix(ref, ".json"), nil
	}
	return c.baseURL + "/" + strings.TrimPrefix(ref, "/"), nil
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// FetchIndex returns every item listed in the public registry index.
func (c *Client) FetchIndex(ctx context.Context) ([]model.RegistryItem, error) {
	u, err := c.ItemURL("index.json")
	if err != nil {
		return nil, err
	}
	var items []model.RegistryItem
	if err := c.getJSON(ctx, u, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// FetchFree returns the names of items available without a paid plan.
func (c *Client) FetchFree(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.getJSON(ctx, c.baseURL+"/api/registry/free", &names); err != nil {
		return nil, err
	}
	return names, nil
}

// FetchItem fetches and validates one item. ref may be a name or URL.
func (c *Client) FetchItem(ctx context.Context, ref string) (model.RegistryItem, error) {
	key, err := c.ItemURL(ref)
	if err != nil {
		return model.RegistryItem{}, err
	}
	if item, ok := c.cache.Get(key); ok {
		c.log.WithField("url", key).Debug("registry cache hit")
		return item, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if item, ok := c.cache.Get(key); ok {
			return item, nil
		}
		var item model.RegistryItem
		if err := c.getJSON(ctx, key, &item); err != nil {
			return nil, err
		}
		if err := item.Validate(); err != nil {
			return nil, &Error{Kind: KindDecode, URL: key, Message: fmt.Sprintf("Invalid registry item at %s", key), Err: err}
		}
		c.cache.Add(key, item)
		return item, nil
	})
	if err != nil {
		return model.RegistryItem{}, err
	}
	return v.(model.RegistryItem), nil
}

// FetchItems fetches refs concurrently. The result preserves the order of
// refs; the first failure cancels the remaining requests.
func (c *Client) FetchItems(ctx context.Context, refs []string) ([]model.RegistryItem, error) {
	out := make([]model.RegistryItem, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			item, err := c.FetchItem(gctx, ref)
			if err != nil {
				return err
			}
			out[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, u string, dst any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &Error{Kind: KindNetwork, URL: u, Message: fmt.Sprintf("Failed to fetch from %s", u), Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.log.WithField("url", u).Debug("registry fetch")

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, URL: u, Message: fmt.Sprintf("Failed to fetch from %s", u), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &Error{Kind: KindNetwork, URL: u, Message: fmt.Sprintf("Failed to read response from %s", u), Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(u, resp.StatusCode, serverMessage(resp, body))
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &Error{Kind: KindDecode, URL: u, Message: fmt.Sprintf("Invalid response from %s", u), Err: err}
	}
	return nil
}

func serverMessage(resp *http.Response, body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return resp.Status
}
