package solver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dwavesystems/dwave-cloud-client-go/pkg/apierrors"
	"github.com/dwavesystems/dwave-cloud-client-go/pkg/apitypes"
	"github.com/dwavesystems/dwave-cloud-client-go/pkg/logging"
	"github.com/dwavesystems/dwave-cloud-client-go/pkg/transport"
)

// CacheTTL is how long a fetched solver list is considered fresh before a
// non-forced Fetch issues a new request.
const CacheTTL = 300 * time.Second

type cacheEntry struct {
	descriptors []*Descriptor
	fetchedAt   time.Time
}

// Catalog is the cached view of the solver service's catalog endpoint. A
// single Catalog is shared across all callers of a Client; concurrent
// cache misses on the same key collapse into one in-flight fetch via
// singleflight.
type Catalog struct {
	session *transport.Session
	logger  *logging.Logger

	mu      sync.Mutex
	entries map[string]*cacheEntry
	ttl     time.Duration

	group singleflight.Group
}

// NewCatalog builds a Catalog backed by session.
func NewCatalog(session *transport.Session, logger *logging.Logger) *Catalog {
	if logger == nil {
		logger = logging.Default()
	}
	return &Catalog{
		session: session,
		logger:  logger.WithComponent("solver-catalog"),
		entries: make(map[string]*cacheEntry),
		ttl:     CacheTTL,
	}
}

// Fetch returns the cached descriptor list for name ("" means "all"),
// refreshing it from the server if the cache is stale or refresh is true.
func (c *Catalog) Fetch(ctx context.Context, name string, refresh bool) ([]*Descriptor, error) {
	key := name
	if key == "" {
		key = "all"
	}

	if !refresh {
		if descs, ok := c.cached(key); ok {
			return descs, nil
		}
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		descs, ferr := c.fetchRemote(ctx, name)
		if ferr != nil {
			return nil, ferr
		}
		c.mu.Lock()
		c.entries[key] = &cacheEntry{descriptors: descs, fetchedAt: time.Now()}
		c.mu.Unlock()
		return descs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*Descriptor), nil
}

func (c *Catalog) cached(key string) ([]*Descriptor, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || time.Since(entry.fetchedAt) > c.ttl {
		return nil, false
	}
	return entry.descriptors, true
}

func (c *Catalog) fetchRemote(ctx context.Context, name string) ([]*Descriptor, error) {
	path := "/solvers/remote/"
	if name != "" {
		path = fmt.Sprintf("/solvers/remote/%s/", name)
	}

	req, err := c.session.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, apierrors.Wrap(apierrors.IO, "building solver catalog request", err)
	}
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, apierrors.Wrap(apierrors.IO, "fetching solver catalog", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierrors.Wrap(apierrors.IO, "reading solver catalog response", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, apierrors.New(apierrors.SolverAuth, "unauthorized fetching solver catalog")
	case resp.StatusCode == http.StatusNotFound && name != "":
		return nil, apierrors.New(apierrors.SolverNotFound, fmt.Sprintf("solver %q not found", name))
	case resp.StatusCode >= 400:
		return nil, apierrors.Wrap(apierrors.IO, fmt.Sprintf("solver catalog request failed with status %d", resp.StatusCode), fmt.Errorf("%s", string(body)))
	}

	if name != "" {
		var raw apitypes.SolverDescriptor
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, apierrors.Wrap(apierrors.IO, "parsing solver descriptor", err)
		}
		return []*Descriptor{NewDescriptor(raw)}, nil
	}

	var rawList []apitypes.SolverDescriptor
	if err := json.Unmarshal(body, &rawList); err != nil {
		return nil, apierrors.Wrap(apierrors.IO, "parsing solver catalog", err)
	}
	descs := make([]*Descriptor, len(rawList))
	for i, raw := range rawList {
		descs[i] = NewDescriptor(raw)
	}
	return descs, nil
}

// GetSolvers applies the default filter ("online": true, unless the
// caller's filters override "online") plus the caller's filters, and
// returns a stably sorted list.
func (c *Catalog) GetSolvers(ctx context.Context, filters map[string]interface{}, orderBy OrderBy) ([]*Descriptor, error) {
	descs, err := c.Fetch(ctx, "", false)
	if err != nil {
		return nil, err
	}

	merged := MergeFilters(DefaultFilters(), filters)
	preds := ParseFilters(merged)

	matched := make([]*Descriptor, 0, len(descs))
	for _, d := range descs {
		if Match(d, preds) {
			matched = append(matched, d)
		}
	}
	return Sort(matched, orderBy), nil
}

// GetSolver returns the single first-ranked solver matching name and/or
// filters, or a SolverNotFound error. When name is non-empty it is
// resolved directly against the named-solver endpoint; filters still
// apply on top.
func (c *Catalog) GetSolver(ctx context.Context, name string, filters map[string]interface{}) (*Descriptor, error) {
	if name != "" {
		descs, err := c.Fetch(ctx, name, false)
		if err != nil {
			return nil, err
		}
		preds := ParseFilters(filters)
		for _, d := range descs {
			if Match(d, preds) {
				return d, nil
			}
		}
		return nil, apierrors.New(apierrors.SolverNotFound, fmt.Sprintf("solver %q does not match filters", name))
	}

	matched, err := c.GetSolvers(ctx, filters, nil)
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return nil, apierrors.New(apierrors.SolverNotFound, "no solver matches the given filters")
	}
	return matched[0], nil
}
