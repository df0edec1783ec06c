// Package restart coordinates development restarts of an embedded server.
//
// Each instance claims a mark file named after its port (boot<port>.mark). A newer
// instance on the same port touches the file; the older one notices the changed
// timestamp and stops itself, so restarting from an IDE never needs a manual kill.
//
// # Claiming
//
// If the mark file exists it is touched and the new instance waits ClaimDelay for the
// previous owner to release the port. Otherwise the mark directory and file are created.
// The timestamp read back after claiming is the snapshot every poll compares against.
//
// # Polling
//
// Start runs exactly one goroutine that stats the mark file every PollInterval. A
// missing file or a different timestamp calls the stop function once and reports
// ErrSuperseded through Err. Any other stat failure is terminal and is reported through
// Err as well. An fsnotify watch on the mark directory only wakes the loop early.
//
// # Usage
//
//	c := restart.New(restart.Config{Port: 8080}, srv.Shutdown, log)
//	if err := c.Start(ctx); err != nil {
//		return err
//	}
//	defer c.Stop()
package restart
