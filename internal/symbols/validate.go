package symbols

import (
	"errors"
	"fmt"
)

// Validate walks the arena checking structural invariants. Returns nil if
// everything is consistent; otherwise aggregates all detected issues.
func (t *Table) Validate() error {
	var errs []error
	for idx, sym := range t.Symbols.Data() {
		id := SymbolID(idx + 1)
		if sym.Kind == SymbolInvalid {
			errs = append(errs, fmt.Errorf("symbol %d has invalid kind", id))
			continue
		}
		if sym.Owner.IsValid() && t.Get(sym.Owner) == nil {
			errs = append(errs, fmt.Errorf("symbol %d has dangling owner %d", id, sym.Owner))
		}
		for _, p := range sym.Params {
			ps := t.Get(p)
			if ps == nil || ps.Kind != SymbolValueParam || ps.Owner != id {
				errs = append(errs, fmt.Errorf("symbol %d lists bad parameter %d", id, p))
			}
		}
		for _, tp := range sym.TypeParams {
			ts := t.Get(tp)
			if ts == nil || ts.Kind != SymbolTypeParam || ts.Owner != id {
				errs = append(errs, fmt.Errorf("symbol %d lists bad type parameter %d", id, tp))
			}
		}
		if sym.Flags&SymbolFlagVararg != 0 && sym.Kind != SymbolValueParam {
			errs = append(errs, fmt.Errorf("symbol %d: only parameters may be vararg", id))
		}
		if sym.Flags&SymbolFlagOperator != 0 && sym.Kind != SymbolFunction {
			errs = append(errs, fmt.Errorf("symbol %d: only functions may be operators", id))
		}
	}
	return errors.Join(errs...)
}
