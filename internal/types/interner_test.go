package types

import "testing"

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	if b.Unit == NoTypeID || b.Int == NoTypeID || b.String == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	unit, _ := in.Lookup(b.Unit)
	if unit.Kind != KindUnit {
		t.Fatalf("expected unit kind, got %v", unit.Kind)
	}
	if _, ok := in.Lookup(NoTypeID); ok {
		t.Fatalf("NoTypeID must not resolve")
	}
}

func TestNamedDeduplicates(t *testing.T) {
	in := NewInterner(nil)
	str := in.Builtins().String
	a := in.Named("MutableMap", str, str)
	b := in.Named("MutableMap", str, str)
	if a != b {
		t.Fatalf("nominal types should be deduplicated")
	}
	if c := in.Named("MutableMap", str, in.Builtins().Int); c == a {
		t.Fatalf("different type arguments must yield different types")
	}
}

func TestTypeParamsAreDistinct(t *testing.T) {
	in := NewInterner(nil)
	if in.TypeParam("T") == in.TypeParam("T") {
		t.Fatalf("each type parameter declaration must get its own type")
	}
}

func TestNullableIsIdempotent(t *testing.T) {
	in := NewInterner(nil)
	s := in.Nullable(in.Builtins().String)
	if in.Nullable(s) != s {
		t.Fatalf("T?? must collapse to T?")
	}
}

func TestFormat(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	cases := []struct {
		id   TypeID
		want string
	}{
		{b.Int, "Int"},
		{in.Nullable(b.String), "String?"},
		{in.Named("MutableMap", b.String, b.String), "MutableMap<String, String>"},
		{in.Named("MutableList", in.TypeParam("E")), "MutableList<E>"},
		{in.RegisterFn([]TypeID{b.Int}, b.Unit), "(Int) -> Unit"},
		{NoTypeID, "<invalid>"},
	}
	for _, tc := range cases {
		if got := in.Format(tc.id); got != tc.want {
			t.Fatalf("Format(%d) = %q, want %q", tc.id, got, tc.want)
		}
	}
}
