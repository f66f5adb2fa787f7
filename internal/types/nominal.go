package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"callmodel/internal/source"
)

// NominalInfo stores metadata for a class-like type, possibly applied to type arguments.
type NominalInfo struct {
	Name source.StringID
	Args []TypeID
}

// Named creates or finds the nominal type name<args...>.
func (in *Interner) Named(name string, args ...TypeID) TypeID {
	nameID := in.Strings.Intern(name)
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindNominal || int(tt.Payload) >= len(in.nominals) {
			continue
		}
		info := in.nominals[tt.Payload]
		if info.Name == nameID && slices.Equal(info.Args, args) {
			return id
		}
	}
	in.nominals = append(in.nominals, NominalInfo{Name: nameID, Args: slices.Clone(args)})
	slot, err := safecast.Conv[uint32](len(in.nominals) - 1)
	if err != nil {
		panic(fmt.Errorf("nominal info overflow: %w", err))
	}
	return in.internRaw(Type{Kind: KindNominal, Payload: slot})
}

// NominalInfo returns metadata for a nominal TypeID.
func (in *Interner) NominalInfo(id TypeID) (*NominalInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindNominal || int(tt.Payload) >= len(in.nominals) {
		return nil, false
	}
	return &in.nominals[tt.Payload], true
}
