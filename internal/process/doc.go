// Package process runs short-lived commands for network actuation.
//
// Commands are given as a single shell-like string, split with
// github.com/google/shlex, and executed directly without a shell:
//   - each command runs in its own process group
//   - context cancellation sends SIGINT, then SIGKILL after a grace period
//   - stdout and stderr are captured and returned in the Result
//
// Example usage:
//
//	res, err := process.Run(ctx, "ovs-ofctl -O OpenFlow13 mod-port s1 s1-eth1 down")
//	if err != nil {
//	    logger.Error("Command failed", "error", err, "stderr", res.Stderr)
//	}
package process
