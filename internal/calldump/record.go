package calldump

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"callmodel/internal/ast"
	"callmodel/internal/calls"
	"callmodel/internal/lifetime"
)

// SchemaVersion changes whenever Record changes shape.
const SchemaVersion uint16 = 1

// Record is the flat, session-independent form of one resolved expression.
// It stays readable after the session that produced it has closed.
type Record struct {
	Expr    string   `msgpack:"expr" yaml:"expr"`
	Kind    string   `msgpack:"kind" yaml:"kind"`
	Symbols []string `msgpack:"symbols" yaml:"symbols"`

	Arguments      []ArgumentRecord `msgpack:"arguments,omitempty" yaml:"arguments,omitempty"`
	Inference      string           `msgpack:"inference,omitempty" yaml:"inference,omitempty"`
	TypeArguments  []TypeArgRecord  `msgpack:"type_arguments,omitempty" yaml:"type_arguments,omitempty"`
	ImplicitInvoke bool             `msgpack:"implicit_invoke,omitempty" yaml:"implicit_invoke,omitempty"`
	Delegation     string           `msgpack:"delegation,omitempty" yaml:"delegation,omitempty"`
	Access         string           `msgpack:"access,omitempty" yaml:"access,omitempty"`
	Compound       *CompoundRecord  `msgpack:"compound,omitempty" yaml:"compound,omitempty"`
	Indices        []string         `msgpack:"indices,omitempty" yaml:"indices,omitempty"`

	Dump string `msgpack:"dump" yaml:"dump"`
}

// ArgumentRecord is one argument-to-parameter binding.
type ArgumentRecord struct {
	Expr      string `msgpack:"expr" yaml:"expr"`
	Parameter string `msgpack:"parameter" yaml:"parameter"`
}

// TypeArgRecord is one inferred type argument.
type TypeArgRecord struct {
	Parameter string `msgpack:"parameter" yaml:"parameter"`
	Type      string `msgpack:"type" yaml:"type"`
}

// CompoundRecord is the arithmetic step of a compound access.
type CompoundRecord struct {
	Shape      string `msgpack:"shape" yaml:"shape"`
	Kind       string `msgpack:"kind" yaml:"kind"`
	Operand    string `msgpack:"operand,omitempty" yaml:"operand,omitempty"`
	Precedence string `msgpack:"precedence,omitempty" yaml:"precedence,omitempty"`
	Operator   string `msgpack:"operator" yaml:"operator"`
}

// File is the on-disk container of records.
type File struct {
	Schema  uint16   `msgpack:"schema" yaml:"schema"`
	Session string   `msgpack:"session" yaml:"session"`
	Records []Record `msgpack:"records" yaml:"records"`
}

// Record flattens the call resolved for expr.
func (d *Dumper) Record(expr ast.ExprID, call calls.Call) (rec Record, err error) {
	dump, err := d.Text(call)
	if err != nil {
		return Record{}, err
	}
	defer lifetime.Recover(&err)

	rec = Record{Expr: d.expr(expr), Kind: call.Kind().String(), Dump: dump}
	for _, id := range calls.Symbols(call) {
		rec.Symbols = append(rec.Symbols, d.table.QualifiedName(id))
	}
	if c, ok := call.(calls.CallableMemberCall); ok {
		ta := c.TypeArguments()
		rec.Inference = ta.Inference().String()
		for tp, t := range ta.All() {
			rec.TypeArguments = append(rec.TypeArguments, TypeArgRecord{Parameter: d.table.Name(tp), Type: d.typ(t)})
		}
	}
	if c, ok := call.(calls.FunctionCall); ok {
		for arg, p := range c.ArgumentMapping().All() {
			rec.Arguments = append(rec.Arguments, ArgumentRecord{Expr: d.expr(arg), Parameter: d.table.Name(p.Symbol())})
		}
	}
	switch c := call.(type) {
	case *calls.SimpleFunctionCall:
		rec.ImplicitInvoke = c.IsImplicitInvoke()
	case *calls.DelegatedConstructorCall:
		rec.Delegation = c.DelegationKind().String()
	case *calls.SimpleVariableAccessCall:
		rec.Access = c.Access().AccessKind().String()
	case *calls.CompoundVariableAccessCall:
		rec.Compound = d.compoundRecord(c.CompoundOperation())
	case *calls.CompoundArrayAccessCall:
		rec.Compound = d.compoundRecord(c.CompoundOperation())
		for _, idx := range c.IndexArguments() {
			rec.Indices = append(rec.Indices, d.expr(idx))
		}
	}
	return rec, nil
}

func (d *Dumper) compoundRecord(op calls.CompoundOperation) *CompoundRecord {
	out := &CompoundRecord{
		Shape:    op.Shape().String(),
		Operator: d.table.QualifiedName(op.Operation().Symbol()),
	}
	switch op := op.(type) {
	case *calls.CompoundAssign:
		out.Kind = op.Kind().String()
		out.Operand = d.expr(op.Operand())
	case *calls.CompoundIncDec:
		out.Kind = op.Kind().String()
		out.Precedence = op.Precedence().String()
	}
	return out
}

// Encode writes f as msgpack, stamping the current schema.
func Encode(w io.Writer, f *File) error {
	f.Schema = SchemaVersion
	return msgpack.NewEncoder(w).Encode(f)
}

// ErrSchema is returned when decoding a file written with another schema.
var ErrSchema = errors.New("calldump: unsupported record schema")

// Decode reads a msgpack file written by Encode.
func Decode(r io.Reader) (*File, error) {
	var f File
	if err := msgpack.NewDecoder(r).Decode(&f); err != nil {
		return nil, err
	}
	if f.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrSchema, f.Schema)
	}
	return &f, nil
}

// SaveFile writes f to path atomically through a temp file in the same directory.
func SaveFile(path string, f *File) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if err := Encode(tmp, f); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// EncodeYAML writes f as a YAML document, stamping the current schema.
func EncodeYAML(w io.Writer, f *File) error {
	f.Schema = SchemaVersion
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// DecodeYAML reads a document written by EncodeYAML.
func DecodeYAML(r io.Reader) (*File, error) {
	var f File
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, err
	}
	if f.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrSchema, f.Schema)
	}
	return &f, nil
}

// LoadFile reads a file written by SaveFile.
func LoadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Decode(fh)
}
