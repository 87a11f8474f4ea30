package validate

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/schemalang/core/expr"
	"github.com/schemalang/core/schema"
)

// DefaultApplier fills ifabsent defaults on a mutable instance view before
// the rest of the pipeline runs (§4.6.3). It holds the bnode counter so
// that successive "_:b<n>" ids are unique across one applier's lifetime,
// not just within a single instance.
type DefaultApplier struct {
	bnodeSeq atomic.Uint64
	now      func() time.Time
}

// NewDefaultApplier constructs a DefaultApplier. now defaults to time.Now
// and is overridable for deterministic tests.
func NewDefaultApplier(now func() time.Time) *DefaultApplier {
	if now == nil {
		now = time.Now
	}
	return &DefaultApplier{now: now}
}

func (a *DefaultApplier) Name() string { return "default_applier" }

// Apply returns a shallow copy of instance with every effective slot's
// ifabsent directive applied where the slot is currently absent or null.
// The input map is never mutated.
func (a *DefaultApplier) Apply(instance map[string]any, class *schema.Class, ctx *Context) map[string]any {
	out := make(map[string]any, len(instance))
	for k, v := range instance {
		out[k] = v
	}
	for _, slotName := range class.EffectiveSlots {
		slot := schema.EffectiveSlot(ctx.Schema, class, slotName)
		if slot == nil || slot.IfAbsent == nil {
			continue
		}
		if v, present := out[slotName]; present && v != nil {
			continue
		}
		value, ok := a.resolve(slot.IfAbsent, class, ctx)
		if ok {
			out[slotName] = value
		}
	}
	return out
}

func (a *DefaultApplier) resolve(ia *schema.IfAbsent, class *schema.Class, ctx *Context) (any, bool) {
	switch ia.Kind {
	case schema.IfAbsentBnode:
		return fmt.Sprintf("_:b%d", a.bnodeSeq.Add(1)-1), true
	case schema.IfAbsentDatetime:
		return a.now().UTC().Format(time.RFC3339), true
	case schema.IfAbsentDate:
		return a.now().UTC().Format("2006-01-02"), true
	case schema.IfAbsentClassName:
		return class.Name, true
	case schema.IfAbsentUUID:
		return uuid.NewString(), true
	case schema.IfAbsentLiteral:
		return ia.Literal, true
	case schema.IfAbsentExpr:
		if ctx.Engine == nil || ia.Expr == "" {
			return nil, false
		}
		result, err := ctx.Engine.Evaluate(ia.Expr, ctx.SchemaID, exprContext(ctx.Instance))
		if err != nil {
			return nil, false
		}
		return expr.ToGo(result), true
	default:
		return nil, false
	}
}
