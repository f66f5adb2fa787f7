// Package calls models how a call-shaped expression was bound by semantic
// analysis.
//
// A Call is an immutable snapshot produced once per resolved expression (or
// per synthetic sub-call of a desugared operator). The set of variants is
// closed:
//
//   - SimpleFunctionCall: f(x), obj.m(x), and value(x) via an invoke operator
//   - AnnotationCall: @Ann(x)
//   - DelegatedConstructorCall: super(x) / this(x)
//   - SimpleVariableAccessCall: plain read or write of a variable
//   - CompoundVariableAccessCall: x += y, x++ synthesized as read-modify-write
//   - CompoundArrayAccessCall: a[i] += y via paired get/set calls
//
// Consumers switch over the concrete types or use Accept with a Visitor,
// which fails loudly on an unknown variant.
//
// Every snapshot is bound to a lifetime.Token. Accessors check the token
// before returning anything and panic with *lifetime.StaleAccessError once the
// owning session has ended. Constructors validate the model invariants and
// return *InvariantError instead of publishing a partially valid value.
package calls
