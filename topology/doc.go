// Package topology discovers the layout of a Cassandra cluster from its
// system tables.
//
// A coordinator answers two queries: system.local describes the node the
// session is talking to (cluster name, datacenter, rack, address), and
// system.peers lists every other node it gossips with.
//
//	info, err := topology.Discover(ctx, session)
//	if err != nil {
//	    logger.Warn("topology discovery failed", "error", err)
//	}
//	for _, h := range info.Hosts {
//	    logger.Info("host", "datacenter", h.Datacenter, "address", h.Address, "rack", h.Rack)
//	}
//
// Discovery is read-only and never changes driver routing. A single-node
// cluster has an empty peers table, which is not an error.
package topology
