package main

import "log/slog"

// runEffect executes a single reducer-emitted Command.
//
// Design rules:
//   - This function is the only place allowed to perform command side effects.
//   - It must never call Reduce() directly.
func runEffect(cmd Command, logger *slog.Logger) {
	switch c := cmd.(type) {
	case CmdPublishSnapshot:
		if c.Reply == nil {
			logger.Warn("state snapshot requested with nil reply channel")
			return
		}
		// Never block the daemon loop on a slow requester.
		select {
		case c.Reply <- c.Snapshot:
		default:
			logger.Warn("state snapshot reply channel not ready; dropping snapshot")
		}

	default:
		logger.Warn("unknown command type", "command", cmd.String())
	}
}
