package validate

import (
	"encoding/json"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/schemalang/core/expr"
	"github.com/schemalang/core/schema"
)

// Pipeline runs the fixed validator order of §4.6 against one instance or a
// collection of instances of the same class:
//
//	DefaultApplier -> RequiredValidator -> TypeValidator ->
//	(range-appropriate SlotValidators) -> UniqueKeyValidator ->
//	ConditionalValidator -> RecursionValidator
type Pipeline struct {
	defaulter   *DefaultApplier
	required    *RequiredValidator
	typeV       *TypeValidator
	slotChecks  []SlotValidator
	uniqueKey   *UniqueKeyValidator
	conditional *ConditionalValidator
	recursion   *RecursionValidator
}

// NewPipeline assembles the default validator set. slotChecks runs after
// RequiredValidator/TypeValidator, one per Applies-matching slot.
func NewPipeline() *Pipeline {
	return &Pipeline{
		defaulter: NewDefaultApplier(nil),
		required:  &RequiredValidator{},
		typeV:     &TypeValidator{},
		slotChecks: []SlotValidator{
			&CardinalityValidator{},
			NewPatternValidator(),
			NewStructuredPatternValidator(),
			&EqualsStringInValidator{},
			&RangeValidator{},
			&LengthValidator{},
			&PermissibleValueValidator{},
		},
		uniqueKey:   &UniqueKeyValidator{},
		conditional: &ConditionalValidator{},
		recursion:   &RecursionValidator{},
	}
}

// CompiledValidator is the cacheable artifact of §4.7: for one class, the
// effective slot list plus which of the Pipeline's range-appropriate
// SlotValidators applies to each slot, resolved once instead of re-running
// every Applies() check on every ValidateInstance call. It is a plan, not
// executable state, so it round-trips through JSON for the L2/L3 tiers.
type CompiledValidator struct {
	ClassName          string              `json:"className"`
	EffectiveSlots     []string            `json:"effectiveSlots"`
	SlotValidatorNames map[string][]string `json:"slotValidatorNames"`
}

// Compile resolves the validator plan for class against s, for caching by
// ValidatorCacheKey.
func (p *Pipeline) Compile(class *schema.Class, s *schema.Schema) *CompiledValidator {
	cv := &CompiledValidator{
		ClassName:          class.Name,
		EffectiveSlots:     class.EffectiveSlots,
		SlotValidatorNames: make(map[string][]string, len(class.EffectiveSlots)),
	}
	for _, slotName := range class.EffectiveSlots {
		slot := schema.EffectiveSlot(s, class, slotName)
		if slot == nil {
			continue
		}
		var names []string
		for _, sv := range p.slotChecks {
			if sv.Applies(slot) {
				names = append(names, sv.Name())
			}
		}
		cv.SlotValidatorNames[slotName] = names
	}
	return cv
}

// Marshal/Unmarshal satisfy the Cache's blob encode/decode contract.
func (cv *CompiledValidator) Marshal() ([]byte, error) { return json.Marshal(cv) }

func UnmarshalCompiledValidator(blob []byte) (*CompiledValidator, error) {
	var cv CompiledValidator
	if err := json.Unmarshal(blob, &cv); err != nil {
		return nil, err
	}
	return &cv, nil
}

func (p *Pipeline) slotValidatorByName(name string) SlotValidator {
	for _, sv := range p.slotChecks {
		if sv.Name() == name {
			return sv
		}
	}
	return nil
}

// ValidateInstanceCompiled is ValidateInstance's fast path when a
// CompiledValidator plan is already known (e.g. retrieved from the Cache),
// skipping the re-evaluation of every SlotValidator's Applies() per slot.
func (p *Pipeline) ValidateInstanceCompiled(instance map[string]any, class *schema.Class, ctx *Context, cv *CompiledValidator) *Report {
	report := NewReport()
	instance = p.defaulter.Apply(instance, class, ctx)
	ctx.Instance = instance

	for _, slotName := range cv.EffectiveSlots {
		slot := schema.EffectiveSlot(ctx.Schema, class, slotName)
		if slot == nil {
			continue
		}
		value := instance[slotName]
		report.Add(p.required.Validate(value, slot, ctx)...)
		if value == nil {
			continue
		}
		report.Add(p.typeV.Validate(value, slot, ctx)...)
		for _, name := range cv.SlotValidatorNames[slotName] {
			if sv := p.slotValidatorByName(name); sv != nil {
				report.Add(sv.Validate(value, slot, ctx)...)
			}
		}
	}
	report.Add(p.conditional.Validate(instance, class, ctx)...)
	report.Add(p.recursion.Validate(instance, class, ctx)...)
	return report
}

// ValidateInstance runs the full per-instance pipeline. The UniqueKeyValidator
// step is skipped: it only has meaning across a collection (ValidateCollection).
func (p *Pipeline) ValidateInstance(instance map[string]any, class *schema.Class, ctx *Context) *Report {
	report := NewReport()
	instance = p.defaulter.Apply(instance, class, ctx)
	ctx.Instance = instance

	for _, slotName := range class.EffectiveSlots {
		slot := schema.EffectiveSlot(ctx.Schema, class, slotName)
		if slot == nil {
			continue
		}
		value := instance[slotName]
		report.Add(p.required.Validate(value, slot, ctx)...)
		if value == nil {
			continue
		}
		report.Add(p.typeV.Validate(value, slot, ctx)...)
	}

	report.Merge(p.validateSlotChecksParallel(instance, class, ctx))
	report.Add(p.conditional.Validate(instance, class, ctx)...)
	report.Add(p.recursion.Validate(instance, class, ctx)...)
	return report
}

// validateSlotChecksParallel fans the range-appropriate SlotValidators out
// across effective slots concurrently: each slot's checks are independent of
// every other slot's, so there is nothing to serialize beyond the final
// Report merge, which is guarded by a mutex rather than a channel since
// result order does not matter.
func (p *Pipeline) validateSlotChecksParallel(instance map[string]any, class *schema.Class, ctx *Context) *Report {
	report := NewReport()
	var mu sync.Mutex
	var g errgroup.Group
	for _, slotName := range class.EffectiveSlots {
		slotName := slotName
		g.Go(func() error {
			slot := schema.EffectiveSlot(ctx.Schema, class, slotName)
			if slot == nil {
				return nil
			}
			value := instance[slotName]
			var found []Issue
			for _, sv := range p.slotChecks {
				if !sv.Applies(slot) {
					continue
				}
				found = append(found, sv.Validate(value, slot, ctx)...)
			}
			if len(found) == 0 {
				return nil
			}
			mu.Lock()
			report.Add(found...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return report
}

// ValidateCollection validates each instance independently and then checks
// unique_keys across the whole collection. ValidateInstance already applies
// defaults to its own local copy, so unique_keys is checked against a second,
// separately-defaulted copy of each instance here; this mirrors the real
// instance each individual Report was computed against.
func (p *Pipeline) ValidateCollection(instances []map[string]any, class *schema.Class, s *schema.Schema, engine *expr.Engine) *Report {
	report := NewReport()
	resolved := make([]map[string]any, len(instances))
	for i, inst := range instances {
		ctx := NewContext(s, class, inst, engine)
		report.Merge(p.ValidateInstance(inst, class, ctx))
		resolved[i] = p.defaulter.Apply(inst, class, ctx)
	}
	report.Add(p.uniqueKey.ValidateCollection(resolved, class, NewContext(s, class, nil, engine))...)
	return report
}
