package expr

import (
	"sync"
	"time"
)

// EngineOptions configures an Engine's parse/compile/cache behavior.
type EngineOptions struct {
	OptimizationLevel     int
	CompilationThreshold  int
	MetricsEnabled        bool
	ParseOptions          ParseOptions
}

// DefaultEngineOptions returns the spec's documented defaults.
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		OptimizationLevel:    1,
		CompilationThreshold: DefaultCompilationThreshold,
		ParseOptions:         DefaultParseOptions(),
	}
}

// Metrics accumulates Engine-wide timing and dispatch counters (§4.5 step 4).
type Metrics struct {
	mu sync.Mutex

	ParseTime      time.Duration
	CompileTime    time.Duration
	EvalTime       time.Duration
	TotalTime      time.Duration
	CacheHits      uint64
	CacheMisses    uint64
	VMEvaluations  uint64
	InterpEvaluations uint64
}

func (m *Metrics) record(parse, compile, eval time.Duration, hit bool, usedVM bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ParseTime += parse
	m.CompileTime += compile
	m.EvalTime += eval
	m.TotalTime += parse + compile + eval
	if hit {
		m.CacheHits++
	} else {
		m.CacheMisses++
	}
	if usedVM {
		m.VMEvaluations++
	} else {
		m.InterpEvaluations++
	}
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Metrics{
		ParseTime: m.ParseTime, CompileTime: m.CompileTime, EvalTime: m.EvalTime, TotalTime: m.TotalTime,
		CacheHits: m.CacheHits, CacheMisses: m.CacheMisses,
		VMEvaluations: m.VMEvaluations, InterpEvaluations: m.InterpEvaluations,
	}
}

// Engine is the expression language's public orchestrator: parse, compile,
// cache, and dispatch between the interpreter and the VM (§4.5).
type Engine struct {
	opts    EngineOptions
	cache   *Cache
	funcs   *Functions
	vm      *VM
	interp  *Interpreter
	metrics *Metrics
}

// NewEngine builds an Engine with the given options, a fresh two-tier cache,
// and the built-in function registry.
func NewEngine(opts EngineOptions) *Engine {
	return &Engine{
		opts:    opts,
		cache:   NewCache(),
		funcs:   NewFunctions(),
		vm:      NewVM(),
		interp:  NewInterpreter(),
		metrics: &Metrics{},
	}
}

// RegisterFunc exposes the Engine's underlying function registry for adding
// schema-specific functions on top of the built-ins.
func (e *Engine) RegisterFunc(name string, spec FuncSpec) {
	e.funcs.RegisterFunc(name, spec)
}

// Metrics returns the Engine's live metrics accumulator.
func (e *Engine) Metrics() *Metrics { return e.metrics }

// Evaluate implements §4.5's evaluate(source, context, schema_id?).
func (e *Engine) Evaluate(source, schemaID string, ctx Context) (Value, error) {
	compiled, hit, parseDur, compileDur, err := e.resolve(source, schemaID)
	if err != nil {
		return Value{}, err
	}

	evalStart := time.Now()
	var result Value
	usedVM := compiled.Complexity >= e.opts.CompilationThreshold
	if usedVM {
		result, err = e.vm.Run(compiled, ctx, e.funcs)
	} else {
		result, err = e.interp.Eval(compiled.ast, ctx, e.funcs)
	}
	evalDur := time.Since(evalStart)

	if e.opts.MetricsEnabled {
		e.metrics.record(parseDur, compileDur, evalDur, hit, usedVM)
	}
	return result, err
}

// Precompile forces parse+compile and caching without executing, per §4.5.
func (e *Engine) Precompile(source, schemaID string) (*CompiledExpression, error) {
	compiled, _, _, _, err := e.resolve(source, schemaID)
	return compiled, err
}

// BatchInput pairs a source expression with its evaluation context for
// BatchEvaluate.
type BatchInput struct {
	Source   string
	SchemaID string
	Context  Context
}

// BatchResult pairs a BatchInput's outcome back with the input's index.
type BatchResult struct {
	Value Value
	Err   error
}

// BatchEvaluate evaluates each input in order, per §4.5's "simple loop over
// (source, context) pairs".
func (e *Engine) BatchEvaluate(inputs []BatchInput) []BatchResult {
	results := make([]BatchResult, len(inputs))
	for i, in := range inputs {
		v, err := e.Evaluate(in.Source, in.SchemaID, in.Context)
		results[i] = BatchResult{Value: v, Err: err}
	}
	return results
}

// resolve implements the cache-lookup-then-parse-compile path shared by
// Evaluate and Precompile.
func (e *Engine) resolve(source, schemaID string) (compiled *CompiledExpression, hit bool, parseDur, compileDur time.Duration, err error) {
	if c, ok := e.cache.Get(source, schemaID); ok {
		return c, true, 0, 0, nil
	}

	parseStart := time.Now()
	node, err := ParseWithOptions(source, e.opts.ParseOptions)
	parseDur = time.Since(parseStart)
	if err != nil {
		return nil, false, parseDur, 0, err
	}

	compileStart := time.Now()
	compiled, err = Compile(source, node, e.funcs, e.opts.OptimizationLevel)
	compileDur = time.Since(compileStart)
	if err != nil {
		return nil, false, parseDur, compileDur, err
	}

	e.cache.Put(source, schemaID, compiled)
	return compiled, false, parseDur, compileDur, nil
}
