package schema

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/singleflight"
)

// Fetcher retrieves the raw bytes of an import target. The default
// implementation reads local files and performs HTTP GETs; tests substitute
// an in-memory Fetcher to avoid real I/O.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// defaultFetcher fetches imports from disk or over HTTP(S), matching
// §4.8's "locate on disk ... else fetch via HTTP GET" algorithm.
type defaultFetcher struct {
	client *http.Client
}

func newDefaultFetcher() *defaultFetcher {
	return &defaultFetcher{client: http.DefaultClient}
}

func (f *defaultFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, err
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, location)
		}
		return io.ReadAll(resp.Body)
	}
	return os.ReadFile(location)
}

// ImportResolver resolves a Schema's `imports` list into a single merged,
// import-free Schema (C3).
type ImportResolver struct {
	fetcher Fetcher
	group   singleflight.Group

	cacheImports bool
	byteCache    map[string][]byte
}

// NewImportResolver constructs a resolver using the default file/HTTP
// fetcher.
func NewImportResolver() *ImportResolver {
	return &ImportResolver{fetcher: newDefaultFetcher(), byteCache: map[string][]byte{}}
}

// NewImportResolverWithFetcher constructs a resolver using a caller-supplied
// Fetcher, for tests and for embedders with a custom source (e.g. an
// in-memory registry or a VFS).
func NewImportResolverWithFetcher(f Fetcher) *ImportResolver {
	return &ImportResolver{fetcher: f, byteCache: map[string][]byte{}}
}

// Resolve flattens root's transitive imports into root itself, returning a
// new Schema; root is not mutated. settings defaults to DefaultImportSettings
// when nil.
func (r *ImportResolver) Resolve(ctx context.Context, root *Schema, settings *ImportSettings) (*Schema, error) {
	if settings == nil {
		settings = DefaultImportSettings()
	}
	target := root.Clone()
	visiting := []string{schemaChainName(root)}
	if err := r.resolveInto(ctx, target, root.Imports, settings, visiting, 1); err != nil {
		return nil, err
	}
	target.MarkResolved()
	return target, nil
}

func schemaChainName(s *Schema) string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}

func (r *ImportResolver) resolveInto(ctx context.Context, target *Schema, imports []ImportRef, settings *ImportSettings, visiting []string, depth int) error {
	if depth > settings.MaxImportDepth {
		return &ImportError{Kind: ImportDepthExceeded, Path: strings.Join(visiting, " -> "), Chain: append([]string(nil), visiting...)}
	}
	if !settings.FollowImports {
		return nil
	}

	for _, ref := range imports {
		location := ref.Path
		if alias, ok := settings.Aliases[location]; ok {
			location = alias
		}

		for _, v := range visiting {
			if v == location {
				return &ImportError{Kind: ImportCircular, Path: location, Chain: append(append([]string(nil), visiting...), location)}
			}
		}

		data, resolvedLoc, err := r.fetch(ctx, location, settings)
		if err != nil {
			return err
		}

		imported, err := Load(data, resolvedLoc)
		if err != nil {
			return &ImportError{Kind: ImportParse, Path: location, Err: err}
		}

		nextVisiting := append(append([]string(nil), visiting...), location)
		if err := r.resolveInto(ctx, imported, imported.Imports, settings, nextVisiting, depth+1); err != nil {
			return err
		}

		filterSchema(imported, ref.Only, ref.Exclude)
		qualifier := ref.Alias
		if qualifier == "" {
			qualifier = imported.Name
		}
		if ref.Prefix != "" {
			applyNamePrefix(imported, ref.Prefix)
		}

		conflictMergeInto(target, imported, qualifier)
	}
	return nil
}

// fetch locates and retrieves one import, trying extensions yaml/yml/json in
// order when resolving from disk, per §4.8.b. It returns the bytes and the
// filename actually used (so Load can route on suffix).
func (r *ImportResolver) fetch(ctx context.Context, location string, settings *ImportSettings) ([]byte, string, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		full := location
		if settings.BaseURL != "" && !strings.HasPrefix(location, "http") {
			full = settings.BaseURL + "/" + location
		}
		if settings.CacheImports {
			if cached, ok := r.byteCache[full]; ok {
				return cached, full, nil
			}
		}
		v, err, _ := r.group.Do(full, func() (any, error) {
			return r.fetcher.Fetch(ctx, full)
		})
		if err != nil {
			return nil, "", &ImportError{Kind: ImportFetch, Path: location, Err: err}
		}
		data := v.([]byte)
		if settings.CacheImports {
			r.byteCache[full] = data
		}
		return data, full, nil
	}

	candidates := r.candidatePaths(location, settings)
	var lastErr error
	for _, candidate := range candidates {
		if settings.CacheImports {
			if cached, ok := r.byteCache[candidate]; ok {
				return cached, candidate, nil
			}
		}
		v, err, _ := r.group.Do(candidate, func() (any, error) {
			return r.fetcher.Fetch(ctx, candidate)
		})
		if err == nil {
			data := v.([]byte)
			if settings.CacheImports {
				r.byteCache[candidate] = data
			}
			return data, candidate, nil
		}
		lastErr = err
	}
	return nil, "", &ImportError{Kind: ImportNotFound, Path: location, Err: lastErr}
}

func (r *ImportResolver) candidatePaths(location string, settings *ImportSettings) []string {
	if filepath.Ext(location) != "" {
		return r.searchPathsFor(location, settings)
	}
	var out []string
	for _, ext := range []string{"yaml", "yml", "json"} {
		out = append(out, r.searchPathsFor(location+"."+ext, settings)...)
	}
	return out
}

func (r *ImportResolver) searchPathsFor(location string, settings *ImportSettings) []string {
	if filepath.IsAbs(location) {
		return []string{location}
	}
	switch settings.ResolutionStrategy {
	case ResolutionRelative:
		if len(settings.SearchPaths) > 0 {
			return []string{filepath.Join(settings.SearchPaths[0], location)}
		}
		return []string{location}
	case ResolutionAbsolute:
		var out []string
		for _, sp := range settings.SearchPaths {
			out = append(out, filepath.Join(sp, location))
		}
		return out
	default: // ResolutionMixed
		out := []string{filepath.Join(".", location)}
		for _, sp := range settings.SearchPaths {
			out = append(out, filepath.Join(sp, location))
		}
		return out
	}
}

// filterSchema applies `only`/`exclude` to an imported schema's definitions
// before merge, per §4.8.e.
func filterSchema(s *Schema, only, exclude []string) {
	if len(only) == 0 && len(exclude) == 0 {
		return
	}
	keep := func(name string) bool {
		if len(only) > 0 {
			found := false
			for _, o := range only {
				if o == name {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		for _, e := range exclude {
			if e == name {
				return false
			}
		}
		return true
	}
	pruneOrderedMap(s.Classes, keep)
	pruneOrderedMap(s.Slots, keep)
	pruneOrderedMap(s.Types, keep)
	pruneOrderedMap(s.Enums, keep)
}

func pruneOrderedMap[V any](m *OrderedMap[V], keep func(string) bool) {
	for _, k := range m.Keys() {
		if !keep(k) {
			m.Delete(k)
		}
	}
}

// applyNamePrefix renames every class/slot name in s and rewrites is_a,
// mixins, and class.slots references accordingly (§4.8.f).
func applyNamePrefix(s *Schema, prefix string) {
	renamed := func(n string) string {
		if n == "" {
			return n
		}
		return prefix + n
	}

	newClasses := NewOrderedMap[*Class]()
	for _, name := range s.Classes.Keys() {
		c, _ := s.Classes.Get(name)
		c.Name = renamed(c.Name)
		c.IsA = renamed(c.IsA)
		for i, m := range c.Mixins {
			c.Mixins[i] = renamed(m)
		}
		for i, sl := range c.Slots {
			c.Slots[i] = renamed(sl)
		}
		newClasses.Set(renamed(name), c)
	}
	s.Classes = newClasses

	newSlots := NewOrderedMap[*Slot]()
	for _, name := range s.Slots.Keys() {
		sl, _ := s.Slots.Get(name)
		sl.Name = renamed(sl.Name)
		sl.IsA = renamed(sl.IsA)
		newSlots.Set(renamed(name), sl)
	}
	s.Slots = newSlots
}

// conflictMergeInto implements §4.8.g's conflict-qualified merge: same-named
// elements with equal definitions are no-ops, differing ones are copied
// under `{qualifier}_{name}` while the original in target is preserved.
func conflictMergeInto(target, imported *Schema, qualifier string) {
	mergeOrdered(target.Types, imported.Types, qualifier, definitionsEqual[Type])
	mergeOrderedEnum(target.Enums, imported.Enums, qualifier)
	mergeOrdered(target.Slots, imported.Slots, qualifier, definitionsEqual[Slot])
	mergeOrderedClass(target.Classes, imported.Classes, qualifier)
	for _, name := range imported.Subsets {
		if !containsStr(target.Subsets, name) {
			target.Subsets = append(target.Subsets, name)
		}
	}
}

func containsStr(ss []string, v string) bool {
	for _, s := range ss {
		if s == v {
			return true
		}
	}
	return false
}

func mergeOrdered[V any](target, imported *OrderedMap[*V], qualifier string, equal func(*V, *V) bool) {
	for _, name := range imported.Keys() {
		v, _ := imported.Get(name)
		existing, exists := target.Get(name)
		if !exists {
			target.Set(name, v)
			continue
		}
		if equal(existing, v) {
			continue
		}
		target.Set(qualifier+"_"+name, v)
	}
}

func mergeOrderedEnum(target, imported *OrderedMap[*Enum], qualifier string) {
	for _, name := range imported.Keys() {
		v, _ := imported.Get(name)
		existing, exists := target.Get(name)
		if !exists {
			target.Set(name, v)
			continue
		}
		if definitionsEqual(existing, v) {
			continue
		}
		target.Set(qualifier+"_"+name, v)
	}
}

func mergeOrderedClass(target, imported *OrderedMap[*Class], qualifier string) {
	for _, name := range imported.Keys() {
		v, _ := imported.Get(name)
		existing, exists := target.Get(name)
		if !exists {
			target.Set(name, v)
			continue
		}
		if definitionsEqual(existing, v) {
			continue
		}
		target.Set(qualifier+"_"+name, v)
	}
}

// definitionsEqual compares two definitions field by field with the same
// options Diff uses.
func definitionsEqual[V any](a, b *V) bool { return cmp.Equal(a, b, diffOpts...) }

