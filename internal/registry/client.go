package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"discadian/internal/registry/lookupcache"
	"discadian/internal/registry/metrics"
	"discadian/pkg/platform/sentinel"
	strs "discadian/pkg/platform/strings"
)

const (
	// DefaultBaseURL is the EarthMC Aurora v3 API root.
	DefaultBaseURL = "https://api.earthmc.net/v3/aurora"
	// DefaultTimeout bounds each outbound call.
	DefaultTimeout = 15 * time.Second
	// MaxChunkSize is the upstream limit on identifiers per request.
	MaxChunkSize = 100

	maxResponseBytes = 8 << 20
	userAgent        = "discadian/1.0"
)

// TTLs configures lookup cache lifetimes per record kind. Failures use the
// shorter *Failure values.
type TTLs struct {
	Player        time.Duration
	PlayerFailure time.Duration
	Town          time.Duration
	TownFailure   time.Duration
	Nation        time.Duration
	NationFailure time.Duration
	Link          time.Duration
	LinkFailure   time.Duration
}

// DefaultTTLs returns the standard cache lifetimes.
func DefaultTTLs() TTLs {
	return TTLs{
		Player:        60 * time.Second,
		PlayerFailure: 30 * time.Second,
		Town:          300 * time.Second,
		TownFailure:   60 * time.Second,
		Nation:        300 * time.Second,
		NationFailure: 60 * time.Second,
		Link:          180 * time.Second,
		LinkFailure:   30 * time.Second,
	}
}

// APIError is an upstream transport, status or decode failure. Its message is
// the reason surfaced to callers ("API error 503").
type APIError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error %d", e.StatusCode)
	}
	return fmt.Sprintf("API error: %v", e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

type kindSpec struct {
	label      string
	endpoint   string
	namePrefix string
	uuidPrefix string
	template   map[string]bool
	ttl        time.Duration
	failTTL    time.Duration
}

func (k kindSpec) key(identifier string) string {
	id := strings.ToLower(strings.TrimSpace(identifier))
	if IsUUID(id) {
		return k.uuidPrefix + id
	}
	return k.namePrefix + id
}

// Client talks to the EarthMC registry. Every public method returns a Result;
// transport and decode errors never escape as Go errors.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	cache      lookupcache.Cache
	budget     *Budget
	ttls       TTLs
	budgetOpts []BudgetOption
	group      singleflight.Group
	logger     *slog.Logger
	metrics    *metrics.Metrics

	players kindSpec
	towns   kindSpec
	nations kindSpec
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithCache sets the lookup cache backend.
func WithCache(cache lookupcache.Cache) Option {
	return func(c *Client) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// WithBudget shares a call budget across clients.
func WithBudget(b *Budget) Option {
	return func(c *Client) {
		c.budget = b
	}
}

// WithBudgetOptions tunes the client's own budget. It is ignored when a
// shared budget is supplied with WithBudget.
func WithBudgetOptions(opts ...BudgetOption) Option {
	return func(c *Client) {
		c.budgetOpts = append(c.budgetOpts, opts...)
	}
}

// WithTTLs overrides cache lifetimes.
func WithTTLs(t TTLs) Option {
	return func(c *Client) {
		c.ttls = t
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New creates a registry client. An empty baseURL uses DefaultBaseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid registry base URL: %w", err)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		cache:      lookupcache.NewMemory(),
		ttls:       DefaultTTLs(),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.budget == nil {
		c.budget = NewBudget(append([]BudgetOption{WithWaitHook(c.observeWait)}, c.budgetOpts...)...)
	}

	c.players = kindSpec{
		label: "Player", endpoint: "/players",
		namePrefix: "player_ign:", uuidPrefix: "player_uuid:",
		template: map[string]bool{"name": true, "uuid": true, "town": true, "nation": true, "status": true},
		ttl:      c.ttls.Player, failTTL: c.ttls.PlayerFailure,
	}
	c.towns = kindSpec{
		label: "Town", endpoint: "/towns",
		namePrefix: "town_name:", uuidPrefix: "town_uuid:",
		template: map[string]bool{"name": true, "uuid": true, "nation": true, "coordinates": true},
		ttl:      c.ttls.Town, failTTL: c.ttls.TownFailure,
	}
	c.nations = kindSpec{
		label: "Nation", endpoint: "/nations",
		namePrefix: "nation_name:", uuidPrefix: "nation_uuid:",
		template: map[string]bool{"name": true, "uuid": true, "towns": true, "allies": true},
		ttl:      c.ttls.Nation, failTTL: c.ttls.NationFailure,
	}
	return c, nil
}

// IsUUID reports whether s is a UUID rather than a name.
func IsUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// LookupPlayer resolves a player by IGN or UUID.
func (c *Client) LookupPlayer(ctx context.Context, nameOrUUID string) Result[Player] {
	return lookupOne[Player](ctx, c, c.players, nameOrUUID, false)
}

// LookupTown resolves a town by name or UUID.
func (c *Client) LookupTown(ctx context.Context, nameOrUUID string) Result[Town] {
	return lookupOne[Town](ctx, c, c.towns, nameOrUUID, false)
}

// LookupTownFresh resolves a town bypassing cached entries. The fresh answer
// still refreshes the cache.
func (c *Client) LookupTownFresh(ctx context.Context, nameOrUUID string) Result[Town] {
	return lookupOne[Town](ctx, c, c.towns, nameOrUUID, true)
}

// LookupManyTowns resolves many towns, keyed by the identifiers given.
// Identifiers differing only in case or surrounding space are looked up once
// and share a result; a blank identifier gets a not-found failure.
func (c *Client) LookupManyTowns(ctx context.Context, namesOrUUIDs []string) map[string]Result[Town] {
	byCanon := lookupMany[Town](ctx, c, c.towns, namesOrUUIDs, false)
	out := make(map[string]Result[Town], len(namesOrUUIDs))
	for _, id := range namesOrUUIDs {
		r, ok := byCanon[canonical(id)]
		if !ok {
			r = NotFound[Town](c.towns.label + " identifier is required")
		}
		out[id] = r
	}
	return out
}

func canonical(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// LookupNation resolves a nation by name or UUID.
func (c *Client) LookupNation(ctx context.Context, nameOrUUID string) Result[Nation] {
	return lookupOne[Nation](ctx, c, c.nations, nameOrUUID, false)
}

type linkQuery struct {
	Type   string `json:"type"`
	Target string `json:"target"`
}

// CheckLink asks the registry for the Discord↔Minecraft associations of both
// discordID and playerUUID. Rows are returned as received.
func (c *Client) CheckLink(ctx context.Context, discordID, playerUUID string) Result[[]DiscordLink] {
	key := fmt.Sprintf("discord_link:%s:%s", discordID, strings.ToLower(playerUUID))
	if r, ok := cachedResult[[]DiscordLink](ctx, c, key, "discord_link"); ok {
		return r
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		queries := []linkQuery{{Type: "discord", Target: discordID}}
		if playerUUID != "" {
			queries = append(queries, linkQuery{Type: "minecraft", Target: playerUUID})
		}
		if err := c.budget.Wait(ctx); err != nil {
			return Upstream[[]DiscordLink]("request cancelled: " + err.Error()), nil
		}
		var links []DiscordLink
		if err := c.post(ctx, "/discord", map[string]any{"query": queries}, &links); err != nil {
			r := Upstream[[]DiscordLink](err.Error())
			if ctx.Err() == nil {
				storeResult(ctx, c, key, r, c.ttls.LinkFailure)
			}
			return r, nil
		}
		r := Success(links)
		storeResult(ctx, c, key, r, c.ttls.Link)
		return r, nil
	})
	return v.(Result[[]DiscordLink])
}

func lookupOne[T identified](ctx context.Context, c *Client, spec kindSpec, identifier string, fresh bool) Result[T] {
	id := strings.TrimSpace(identifier)
	if id == "" {
		return NotFound[T](spec.label + " identifier is required")
	}
	flight := spec.key(id)
	if fresh {
		flight = "fresh:" + flight
	}
	v, _, _ := c.group.Do(flight, func() (any, error) {
		return lookupMany[T](ctx, c, spec, []string{id}, fresh)[canonical(id)], nil
	})
	return v.(Result[T])
}

// lookupMany resolves the deduplicated identifiers and keys the results by
// their canonical form.
func lookupMany[T identified](ctx context.Context, c *Client, spec kindSpec, identifiers []string, fresh bool) map[string]Result[T] {
	ids := strs.DedupeAndTrimFold(identifiers)
	results := make(map[string]Result[T], len(ids))
	pending := make([]string, 0, len(ids))

	for _, id := range ids {
		if !fresh {
			if r, ok := cachedResult[T](ctx, c, spec.key(id), strings.ToLower(spec.label)); ok {
				results[canonical(id)] = r
				continue
			}
		}
		pending = append(pending, id)
	}

	for start := 0; start < len(pending); start += MaxChunkSize {
		end := min(start+MaxChunkSize, len(pending))
		fetchChunk(ctx, c, spec, pending[start:end], results)
	}
	return results
}

type chunkQuery struct {
	Query    []string        `json:"query"`
	Template map[string]bool `json:"template,omitempty"`
}

// fetchChunk resolves one chunk. A failure of the whole request marks every
// identifier in this chunk only.
func fetchChunk[T identified](ctx context.Context, c *Client, spec kindSpec, chunk []string, results map[string]Result[T]) {
	if err := c.budget.Wait(ctx); err != nil {
		for _, id := range chunk {
			results[canonical(id)] = Upstream[T]("request cancelled: " + err.Error())
		}
		return
	}

	var items []T
	if err := c.post(ctx, spec.endpoint, chunkQuery{Query: chunk, Template: spec.template}, &items); err != nil {
		c.logger.WarnContext(ctx, "registry chunk failed",
			"endpoint", spec.endpoint,
			"identifiers", len(chunk),
			"error", err,
		)
		for _, id := range chunk {
			r := Upstream[T](err.Error())
			results[canonical(id)] = r
			if ctx.Err() == nil {
				storeResult(ctx, c, spec.key(id), r, spec.failTTL)
			}
		}
		return
	}

	index := make(map[string]T, len(items)*2)
	for _, item := range items {
		name, id := item.identity()
		if name != "" {
			index[strings.ToLower(name)] = item
		}
		if id != "" {
			index[strings.ToLower(id)] = item
		}
	}

	for _, id := range chunk {
		item, ok := index[canonical(id)]
		if !ok {
			r := NotFound[T](spec.label + " not found")
			results[canonical(id)] = r
			storeResult(ctx, c, spec.key(id), r, spec.failTTL)
			continue
		}
		r := Success(item)
		results[canonical(id)] = r
		name, uid := item.identity()
		if name != "" {
			storeResult(ctx, c, spec.key(name), r, spec.ttl)
		}
		if uid != "" {
			storeResult(ctx, c, spec.key(uid), r, spec.ttl)
		}
	}
}

type cacheEntry struct {
	Kind   FailureKind     `json:"kind,omitempty"`
	Reason string          `json:"reason,omitempty"`
	Value  json.RawMessage `json:"value,omitempty"`
}

func cachedResult[T any](ctx context.Context, c *Client, key, kind string) (Result[T], bool) {
	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sentinel.ErrUnavailable) {
			c.logger.WarnContext(ctx, "registry cache read failed", "key", key, "error", err)
		}
		if c.metrics != nil {
			c.metrics.IncrementCacheMiss(kind)
		}
		return Result[T]{}, false
	}
	var e cacheEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		c.logger.WarnContext(ctx, "discarding unreadable registry cache entry", "key", key, "error", err)
		return Result[T]{}, false
	}
	if c.metrics != nil {
		c.metrics.IncrementCacheHit(kind)
	}
	if e.Kind != "" {
		return Result[T]{Kind: e.Kind, Reason: e.Reason}, true
	}
	var v T
	if err := json.Unmarshal(e.Value, &v); err != nil {
		c.logger.WarnContext(ctx, "discarding unreadable registry cache value", "key", key, "error", err)
		return Result[T]{}, false
	}
	return Success(v), true
}

func storeResult[T any](ctx context.Context, c *Client, key string, r Result[T], ttl time.Duration) {
	e := cacheEntry{Kind: r.Kind, Reason: r.Reason}
	if r.OK() {
		raw, err := json.Marshal(r.Value)
		if err != nil {
			return
		}
		e.Value = raw
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, raw, ttl); err != nil {
		c.logger.WarnContext(ctx, "registry cache write failed", "key", key, "error", err)
	}
}

func (c *Client) post(ctx context.Context, endpoint string, body any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return &APIError{Endpoint: endpoint, Err: fmt.Errorf("encode request: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return &APIError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observeRequest(endpoint, "error")
		return &APIError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		c.observeRequest(endpoint, "status_"+strconv.Itoa(resp.StatusCode))
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		c.observeRequest(endpoint, "bad_data")
		return &APIError{Endpoint: endpoint, Err: fmt.Errorf("decode response: %w", err)}
	}
	c.observeRequest(endpoint, "ok")
	return nil
}

func (c *Client) observeRequest(endpoint, outcome string) {
	if c.metrics != nil {
		c.metrics.ObserveRequest(endpoint, outcome)
	}
}

func (c *Client) observeWait(reason WaitReason, d time.Duration) {
	if reason == WaitWindow {
		c.logger.Info("registry call budget exhausted, pausing", "wait", d)
	}
	if c.metrics != nil {
		c.metrics.ObserveBudgetWait(string(reason), d.Seconds())
	}
}
