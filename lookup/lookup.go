// Package lookup resolves human-facing names (member mentions, group names, workflow state names,
// label names, custom field names) to API ids. Every resolver consults a cache.Store first and
// lists the corresponding collection from the API on a miss, caching everything it saw.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/shortcut-cli/sc/cache"
	"github.com/shortcut-cli/sc/pkg/logger"
	"github.com/shortcut-cli/sc/shortcut"
)

// ErrNotFound is returned when a name does not exist remotely.
var ErrNotFound = errors.New("not found")

// Source lists the collections names are resolved against. *shortcut.Client implements it.
type Source interface {
	ListMembers(ctx context.Context) ([]shortcut.Member, error)
	ListGroups(ctx context.Context) ([]shortcut.Group, error)
	ListLabels(ctx context.Context) ([]shortcut.Label, error)
	ListWorkflows(ctx context.Context) ([]shortcut.Workflow, error)
	GetEpicWorkflow(ctx context.Context) (*shortcut.EpicWorkflow, error)
	ListCustomFields(ctx context.Context) ([]shortcut.CustomField, error)
}

var _ Source = (*shortcut.Client)(nil)

// Resolvers builds the name resolvers for one run.
type Resolvers struct {
	src     Source
	store   cache.Store
	lggr    logger.Logger
	offline bool
}

// Option configures Resolvers.
type Option func(*Resolvers)

// WithLogger sets the logger.
func WithLogger(lggr logger.Logger) Option {
	return func(r *Resolvers) {
		r.lggr = lggr
	}
}

// Offline makes resolvers answer from the cache only. A name missing from the cache resolves to
// itself, which lets dry runs render request bodies without talking to the API.
func Offline() Option {
	return func(r *Resolvers) {
		r.offline = true
	}
}

// New creates Resolvers over src and store. src may be nil when Offline is used.
func New(src Source, store cache.Store, opts ...Option) *Resolvers {
	r := &Resolvers{src: src, store: store, lggr: logger.Nop()}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Members resolves mention names (with or without a leading @) and email addresses to member ids.
func (r *Resolvers) Members() *NameResolver {
	return r.newNameResolver(cache.KindMember, func(ctx context.Context) (map[string]string, error) {
		members, err := r.src.ListMembers(ctx)
		if err != nil {
			return nil, err
		}
		out := make(map[string]string, len(members)*2)
		for _, m := range members {
			if m.Profile.EmailAddress != "" {
				out[normalize(m.Profile.EmailAddress)] = m.ID
			}
			out[normalize(m.Profile.MentionName)] = m.ID
		}

		return out, nil
	})
}

// Groups resolves group mention names and display names to group ids.
func (r *Resolvers) Groups() *NameResolver {
	return r.newNameResolver(cache.KindGroup, func(ctx context.Context) (map[string]string, error) {
		groups, err := r.src.ListGroups(ctx)
		if err != nil {
			return nil, err
		}
		out := make(map[string]string, len(groups)*2)
		for _, g := range groups {
			out[normalize(g.Name)] = g.ID
			out[normalize(g.MentionName)] = g.ID
		}

		return out, nil
	})
}

// Labels resolves label names to label ids.
func (r *Resolvers) Labels() *NameResolver {
	return r.newNameResolver(cache.KindLabel, func(ctx context.Context) (map[string]string, error) {
		labels, err := r.src.ListLabels(ctx)
		if err != nil {
			return nil, err
		}
		out := make(map[string]string, len(labels))
		for _, l := range labels {
			out[normalize(l.Name)] = strconv.FormatInt(l.ID, 10)
		}

		return out, nil
	})
}

// StoryStates resolves story workflow state names to state ids. When several workflows share a
// state name the first workflow listed wins.
func (r *Resolvers) StoryStates() *NameResolver {
	return r.newNameResolver(cache.KindStoryState, func(ctx context.Context) (map[string]string, error) {
		workflows, err := r.src.ListWorkflows(ctx)
		if err != nil {
			return nil, err
		}
		out := map[string]string{}
		for _, w := range workflows {
			for _, s := range w.States {
				if _, seen := out[normalize(s.Name)]; !seen {
					out[normalize(s.Name)] = strconv.FormatInt(s.ID, 10)
				}
			}
		}

		return out, nil
	})
}

// EpicStates resolves epic workflow state names to epic state ids.
func (r *Resolvers) EpicStates() *NameResolver {
	return r.newNameResolver(cache.KindEpicState, func(ctx context.Context) (map[string]string, error) {
		wf, err := r.src.GetEpicWorkflow(ctx)
		if err != nil {
			return nil, err
		}
		out := make(map[string]string, len(wf.EpicStates))
		for _, s := range wf.EpicStates {
			out[normalize(s.Name)] = strconv.FormatInt(s.ID, 10)
		}

		return out, nil
	})
}

func (r *Resolvers) newNameResolver(kind cache.Kind, fetch func(context.Context) (map[string]string, error)) *NameResolver {
	return &NameResolver{
		kind:    kind,
		store:   r.store,
		fetch:   fetch,
		offline: r.offline,
		lggr:    r.lggr,
	}
}

// NameResolver resolves names of one kind.
type NameResolver struct {
	kind    cache.Kind
	store   cache.Store
	fetch   func(context.Context) (map[string]string, error)
	offline bool
	lggr    logger.Logger

	mu    sync.Mutex
	names map[string]string // listed from the API, nil until the first miss
}

// Resolve returns the id for name. The remote collection is listed at most once per resolver.
func (n *NameResolver) Resolve(ctx context.Context, name string) (string, error) {
	key := normalize(name)
	id, err := n.store.Get(n.kind, key)
	if err == nil {
		n.lggr.Debugw("Cache hit", "kind", n.kind, "name", name)
		return id, nil
	}
	if !errors.Is(err, cache.ErrNotFound) {
		return "", fmt.Errorf("failed to read %s cache: %w", n.kind, err)
	}
	if n.offline {
		return name, nil
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.names == nil {
		n.lggr.Debugw("Cache miss, listing from API", "kind", n.kind, "name", name)
		all, err := n.fetch(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to list %s: %w", n.kind, err)
		}
		delete(all, "")
		n.names = all
		if err := n.store.PutAll(n.kind, all); err != nil {
			n.lggr.Warnw("Failed to write cache", "kind", n.kind, "error", err)
		}
	}
	if id, ok := n.names[key]; ok {
		return id, nil
	}

	return "", fmt.Errorf("%s %q: %w", strings.TrimSuffix(string(n.kind), "s"), name, ErrNotFound)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "@"))
}
