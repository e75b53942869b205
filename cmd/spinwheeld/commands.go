package main

import "fmt"

// ==============================
// Commands (side effects)
// ==============================

// Command represents a side effect requested by the reducer and executed by
// the daemon loop. The wheel has no remote backend, so the only side effect
// left is delivering state snapshots to requesters.
type Command interface {
	commandMarker()
	String() string
}

// CmdPublishSnapshot delivers a reducer-produced snapshot to the requester.
// Moving the channel send into the effects layer keeps the reducer pure.
type CmdPublishSnapshot struct {
	Reply    chan StateSnapshot
	Snapshot StateSnapshot
}

func (CmdPublishSnapshot) commandMarker() {}
func (c CmdPublishSnapshot) String() string {
	return fmt.Sprintf("CmdPublishSnapshot(status=%s, selected=%d)", c.Snapshot.Status, c.Snapshot.SelectedIndex)
}
