package core

import (
	"context"
	"fmt"

	"github.com/schemalang/core/expr"
	"github.com/schemalang/core/schema"
	"github.com/schemalang/core/validate"
)

// Service is the public façade over the schema model, validator pipeline,
// and diff/patch/merge/lint engines (§4.13). It is constructed exclusively
// via NewService: its zero value is not usable, since the expression
// engine, validator cache, and import/inheritance resolvers all need
// initialization.
type Service struct {
	engine         *expr.Engine
	importResolver *schema.ImportResolver
	inheritance    *schema.InheritanceResolver
	pipeline       *validate.Pipeline
	validatorCache *validate.Cache
	lintEngine     *schema.LintEngine
	importSettings schema.ImportSettings
}

// Option configures a Service built by NewService.
type Option func(*Service)

// WithImportSettings overrides the settings used by resolve_imports /
// load_schema's automatic import resolution.
func WithImportSettings(settings schema.ImportSettings) Option {
	return func(s *Service) { s.importSettings = settings }
}

// WithFetcher overrides how the import resolver fetches a schema's imports.
func WithFetcher(f schema.Fetcher) Option {
	return func(s *Service) { s.importResolver = schema.NewImportResolverWithFetcher(f) }
}

// WithEngineOptions overrides the expression engine's compilation and
// caching behavior.
func WithEngineOptions(opts expr.EngineOptions) Option {
	return func(s *Service) { s.engine = expr.NewEngine(opts) }
}

// WithValidatorCache installs a validator cache built from opts; its L2 and
// L3 tiers are enabled only when opts sets L2 or L3Dir. Without this option
// the Service runs the pipeline uncached beyond the Pipeline's own per-call
// compilation.
func WithValidatorCache(opts validate.CacheOptions) Option {
	return func(s *Service) {
		c, err := validate.NewCache(opts)
		if err == nil {
			s.validatorCache = c
		}
	}
}

// WithLintRules overrides the lint engine's enabled rule set.
func WithLintRules(rules []schema.LintRule) Option {
	return func(s *Service) { s.lintEngine = schema.NewLintEngineWithRules(rules) }
}

// NewService is the sole factory for Service: it wires the expression
// engine, import/inheritance resolvers, validator pipeline, and lint
// engine before returning, matching the teacher's NewCompiler() discipline
// of fully-initialized construction over a bare struct literal.
func NewService(opts ...Option) *Service {
	s := &Service{
		engine:         expr.NewEngine(expr.DefaultEngineOptions()),
		importResolver: schema.NewImportResolver(),
		inheritance:    schema.NewInheritanceResolver(),
		pipeline:       validate.NewPipeline(),
		lintEngine:     schema.NewLintEngine(),
		importSettings: *schema.DefaultImportSettings(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadSchema parses data (format selected by filename's suffix) and
// resolves its imports and inheritance, returning a schema ready for
// Validate.
func (s *Service) LoadSchema(ctx context.Context, data []byte, filename string) (*schema.Schema, error) {
	sch, err := schema.Load(data, filename)
	if err != nil {
		return nil, fmt.Errorf("core: loading schema: %w", err)
	}
	return s.ResolveImports(ctx, sch)
}

// ResolveImports runs the import resolver and then the inheritance
// resolver over sch, populating every class's EffectiveSlots.
func (s *Service) ResolveImports(ctx context.Context, sch *schema.Schema) (*schema.Schema, error) {
	resolved, err := s.importResolver.Resolve(ctx, sch, &s.importSettings)
	if err != nil {
		return nil, fmt.Errorf("core: resolving imports: %w", err)
	}
	resolved, err = s.inheritance.Resolve(resolved)
	if err != nil {
		return nil, fmt.Errorf("core: resolving inheritance: %w", err)
	}
	return resolved, nil
}

// Validate runs the validator pipeline against instance as an instance of
// className within sch (§4.13). When a validator cache was installed via
// WithValidatorCache, the per-class validator plan is resolved through it
// (§4.7) instead of being recomputed on every call.
func (s *Service) Validate(ctx context.Context, sch *schema.Schema, instance map[string]any, className string) (*validate.Report, error) {
	class, ok := sch.Classes.Get(className)
	if !ok {
		return nil, fmt.Errorf("core: class %q not found in schema %q", className, sch.ID)
	}
	vctx := validate.NewContext(sch, class, instance, s.engine)
	vctx.SchemaID = sch.ID

	if s.validatorCache == nil {
		return s.pipeline.ValidateInstance(instance, class, vctx), nil
	}
	key := validate.NewValidatorCacheKey(sch.ID, sch.Version, className, "")
	cv, hit := s.validatorCache.Get(ctx, key)
	if !hit {
		cv = s.pipeline.Compile(class, sch)
		s.validatorCache.Put(key, cv)
	}
	return s.pipeline.ValidateInstanceCompiled(instance, class, vctx, cv), nil
}

// ValidateCollection runs the validator pipeline, including cross-instance
// unique_keys checks, across instances as instances of className.
func (s *Service) ValidateCollection(sch *schema.Schema, instances []map[string]any, className string) (*validate.Report, error) {
	class, ok := sch.Classes.Get(className)
	if !ok {
		return nil, fmt.Errorf("core: class %q not found in schema %q", className, sch.ID)
	}
	return s.pipeline.ValidateCollection(instances, class, sch, s.engine), nil
}

// ApplyPatch applies p to sch and returns the patched schema, without
// mutating sch (§4.13, §4.10).
func (s *Service) ApplyPatch(sch *schema.Schema, p *schema.Patch) (*schema.Schema, error) {
	return schema.ApplyPatch(sch, p)
}

// DiffSchemas computes the structural difference between two resolved
// schemas (§4.13, §4.10).
func (s *Service) DiffSchemas(v1, v2 *schema.Schema) *schema.DiffReport {
	return schema.Diff(v1, v2)
}

// MergeSchemas merges overlay onto base under strategy (§4.13, C13).
func (s *Service) MergeSchemas(base, overlay *schema.Schema, strategy schema.MergeStrategy) (*schema.Schema, error) {
	return schema.MergeSchemas(base, overlay, strategy)
}

// Lint runs the configured lint rule set against sch (§4.13, C14).
func (s *Service) Lint(sch *schema.Schema) []schema.LintIssue {
	return s.lintEngine.Run(sch)
}
