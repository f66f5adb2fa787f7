package ast

// ExprID is an opaque handle to a source expression. Resolution results use
// it only as a map key.
type ExprID uint32

const NoExprID ExprID = 0

func (id ExprID) IsValid() bool { return id != NoExprID }
