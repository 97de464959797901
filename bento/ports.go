package bento

import (
	"fmt"
	"net"
	"strings"
	"time"

	"kiji-testing/types"
)

// Default ports the bento cluster binds on startup. The cluster does
// not come up when any of them is already taken, and it fails without a
// useful diagnostic, so the harness probes them first.
var DefaultPorts = []int{
	2181,  // ZooKeeper client port
	8020,  // HDFS namenode
	8021,  // MapReduce job tracker
	50070, // HDFS namenode web UI
	60010, // HBase master web UI
}

const probeTimeout = 250 * time.Millisecond

// CheckPorts probes the default cluster ports on localhost and returns
// ErrPortsUnavailable naming the occupied ones, if any. A port that
// accepts a connection is in use.
func CheckPorts(ports []int) error {
	var occupied []string
	for _, port := range ports {
		addr := fmt.Sprintf("localhost:%d", port)
		conn, err := net.DialTimeout("tcp", addr, probeTimeout)
		if err == nil {
			conn.Close()
			occupied = append(occupied, addr)
		}
	}
	if len(occupied) > 0 {
		return types.Wrapf(types.ErrPortsUnavailable, "%s", strings.Join(occupied, ", "))
	}
	return nil
}
