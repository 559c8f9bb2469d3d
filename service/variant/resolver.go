package variant

import (
	"errors"

	catalogEntity "storefront.GO/model/entity/catalog"
)

// ErrEmptyCatalog is returned when a product carries no variants at all.
// The selector UI must render a disabled state; there is nothing to resolve.
var ErrEmptyCatalog = errors.New("variant: product has no variants")

// Selection is the shopper's current property choices. Partial selections
// are legal while the shopper narrows options; an absent or empty value is
// a wildcard.
type Selection map[string]string

// With returns a copy of s with name set to value. The receiver is never
// mutated so callers can keep the previous selection for comparison.
func (s Selection) With(name, value string) Selection {
	out := make(Selection, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	out[name] = value
	return out
}

// Match is the result of resolving a selection. Exact is false when no
// variant satisfies the full selection and the best-ranked partial match was
// returned instead; Missing then lists the selected properties the variant
// does not satisfy, so callers can warn instead of silently accepting an
// unintended SKU.
type Match struct {
	Variant *catalogEntity.Variant
	Exact   bool
	Missing []string
}

// Initialize picks the variant a product detail view starts on: preferred if
// it is in the list, else the one flagged default, else the first.
func Initialize(variants []catalogEntity.Variant, preferred *catalogEntity.Variant) (*catalogEntity.Variant, error) {
	if len(variants) == 0 {
		return nil, ErrEmptyCatalog
	}
	if preferred != nil {
		for i := range variants {
			if variants[i].VariantID == preferred.VariantID {
				return &variants[i], nil
			}
		}
	}
	for i := range variants {
		if variants[i].IsDefault {
			return &variants[i], nil
		}
	}
	return &variants[0], nil
}

// satisfies reports whether v carries value for property name. Empty
// selection values are wildcards.
func satisfies(v *catalogEntity.Variant, name, value string) bool {
	if value == "" {
		return true
	}
	return v.Property(name) == value
}

// Resolve finds the best variant for a selection: first the exact matches in
// catalog order, then a best-effort ranking by how many selected properties
// each variant satisfies. The ranking keeps the UI on a concrete SKU while
// the shopper clicks through combinations that have no exact variant.
func Resolve(variants []catalogEntity.Variant, sel Selection) *Match {
	if len(variants) == 0 {
		return nil
	}
	for i := range variants {
		if missing := unsatisfied(&variants[i], sel); len(missing) == 0 {
			return &Match{Variant: &variants[i], Exact: true}
		}
	}
	best := 0
	bestMissing := unsatisfied(&variants[0], sel)
	for i := 1; i < len(variants); i++ {
		missing := unsatisfied(&variants[i], sel)
		// fewer missing == more satisfied; ties keep catalog order
		if len(missing) < len(bestMissing) {
			best = i
			bestMissing = missing
		}
	}
	return &Match{Variant: &variants[best], Missing: bestMissing}
}

func unsatisfied(v *catalogEntity.Variant, sel Selection) []string {
	var missing []string
	for name, value := range sel {
		if !satisfies(v, name, value) {
			missing = append(missing, name)
		}
	}
	return missing
}

// SelectValue applies one click: sets sel[name] = value and resolves. The
// returned selection is a copy; the match may be partial, in which case the
// caller should check Match.Exact before treating the click as confirmed.
func SelectValue(variants []catalogEntity.Variant, sel Selection, name, value string) (Selection, *Match) {
	next := sel.With(name, value)
	return next, Resolve(variants, next)
}

// SelectableValues returns the values for property name that exist on at
// least one variant compatible with every other current selection. Order is
// first appearance in the catalog.
func SelectableValues(variants []catalogEntity.Variant, sel Selection, name string) []string {
	seen := make(map[string]bool)
	var values []string
	for i := range variants {
		v := &variants[i]
		if !compatibleExcept(v, sel, name) {
			continue
		}
		val := v.Property(name)
		if val == "" || seen[val] {
			continue
		}
		seen[val] = true
		values = append(values, val)
	}
	return values
}

// compatibleExcept reports whether v satisfies every selected property other
// than the one being enumerated.
func compatibleExcept(v *catalogEntity.Variant, sel Selection, except string) bool {
	for name, value := range sel {
		if name == except {
			continue
		}
		if !satisfies(v, name, value) {
			return false
		}
	}
	return true
}

// IsValueInStock reports whether choosing value for property name, on top of
// the current selection, can land on a variant with stock.
func IsValueInStock(variants []catalogEntity.Variant, sel Selection, name, value string) bool {
	probe := sel.With(name, value)
	for i := range variants {
		v := &variants[i]
		if len(unsatisfied(v, probe)) == 0 && v.InStock() {
			return true
		}
	}
	return false
}
