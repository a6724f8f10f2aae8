package rvsdg

import "jlmgo/internal/types"

// Origin is anything an Input can point to: a node Output or a region
// Argument — an input has an origin, either an output or a region
// argument.
type Origin interface {
	Type() types.Type
	Users() []*Input
	addUser(in *Input)
	removeUser(in *Input)
}

// Output is one of a node's results. Its Users list is the bidirectional
// half of every Input that points to it; divertUsers/removeNode keep both
// halves consistent.
type Output struct {
	node  *Node
	index int
	typ   types.Type
	users []*Input
}

func (o *Output) Type() types.Type { return o.typ }
func (o *Output) Node() *Node      { return o.node }
func (o *Output) Index() int       { return o.index }

// Users returns a defensive copy of the output's user list.
func (o *Output) Users() []*Input {
	out := make([]*Input, len(o.users))
	copy(out, o.users)
	return out
}

func (o *Output) addUser(in *Input) { o.users = append(o.users, in) }

func (o *Output) removeUser(in *Input) {
	for i, u := range o.users {
		if u == in {
			o.users = append(o.users[:i], o.users[i+1:]...)
			return
		}
	}
}

// Argument is a region entry point. An argument may optionally be
// backed by an Input on the enclosing structural node, when it imports a
// value across the region boundary (entry/context variables, theta loop
// arguments); EnclosingInput is nil for pure function parameters and phi
// self-references.
type Argument struct {
	region         *Region
	index          int
	typ            types.Type
	EnclosingInput *Input
	users          []*Input
}

func (a *Argument) Type() types.Type  { return a.typ }
func (a *Argument) Region() *Region   { return a.region }
func (a *Argument) Index() int        { return a.index }
func (a *Argument) Users() []*Input {
	out := make([]*Input, len(a.users))
	copy(out, a.users)
	return out
}
func (a *Argument) addUser(in *Input)    { a.users = append(a.users, in) }
func (a *Argument) removeUser(in *Input) {
	for i, u := range a.users {
		if u == in {
			a.users = append(a.users[:i], a.users[i+1:]...)
			return
		}
	}
}

// Input is a consumer of an Origin: either one of a node's operands, or a
// region Result (when Node is nil). Every input has exactly one origin.
type Input struct {
	node   *Node // nil when this Input is a region result
	region *Region
	index  int
	origin Origin
	typ    types.Type
}

func (i *Input) Origin() Origin     { return i.origin }
func (i *Input) Type() types.Type   { return i.typ }
func (i *Input) Node() *Node        { return i.node }
func (i *Input) Region() *Region    { return i.region }
func (i *Input) Index() int         { return i.index }
func (i *Input) IsResult() bool     { return i.node == nil }
