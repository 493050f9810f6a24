package app

import "lecturehall/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy decides what happens to a connection that cannot keep up with
// the fan-out rate.
type Policy interface {
	OnBackpressure(sid core.SessionID) BackpressureAction
}

type SimplePolicy struct{}

func (SimplePolicy) OnBackpressure(sid core.SessionID) BackpressureAction {
	return KickMember
}
