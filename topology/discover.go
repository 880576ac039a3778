package topology

import (
	"context"
	"errors"

	"github.com/hkhamm/cqlclient/adapter/cql"
	"github.com/hkhamm/cqlclient/types"
)

const (
	// LocalStatement reads the coordinator's own row.
	LocalStatement = "SELECT cluster_name, data_center, rack, rpc_address, broadcast_address FROM system.local"

	// PeersStatement reads one row per peer known to the coordinator.
	PeersStatement = "SELECT peer, data_center, rack, rpc_address FROM system.peers"
)

// unboundAddress is reported by nodes configured with rpc_address 0.0.0.0.
const unboundAddress = "0.0.0.0"

// Discover reads the cluster name and host list through the given session.
//
// The coordinator is always the first host. When the peers query fails the
// returned ClusterInfo still carries the coordinator, together with the error.
//
// Parameters:
//   - ctx: Context for cancellation and deadlines
//   - session: An established CQL session
//
// Returns:
//   - types.ClusterInfo: Cluster name and hosts
//   - error: *types.StatementError if a system table cannot be read
func Discover(ctx context.Context, session cql.Session) (types.ClusterInfo, error) {
	if session == nil {
		return types.ClusterInfo{}, types.ErrNilSession
	}

	var (
		info               types.ClusterInfo
		local              types.Host
		rpcAddr, broadcast string
	)

	q := session.Query(LocalStatement)
	err := q.ScanContext(ctx, &info.Name, &local.Datacenter, &local.Rack, &rpcAddr, &broadcast)
	q.Release()
	if err != nil {
		return types.ClusterInfo{}, &types.StatementError{
			Kind:      types.KindDiscovery,
			Statement: LocalStatement,
			Cause:     err,
		}
	}
	local.Address = pickAddress(rpcAddr, broadcast)
	info.Hosts = append(info.Hosts, local)

	peers, err := readPeers(ctx, session)
	info.Hosts = append(info.Hosts, peers...)
	if err != nil {
		return info, &types.StatementError{
			Kind:      types.KindDiscovery,
			Statement: PeersStatement,
			Cause:     err,
		}
	}

	return info, nil
}

func readPeers(ctx context.Context, session cql.Session) ([]types.Host, error) {
	q := session.Query(PeersStatement)
	defer q.Release()

	iter := q.IterContext(ctx)
	if iter == nil {
		return nil, errors.New("cqlclient: nil iterator for system.peers")
	}

	var (
		hosts                   []types.Host
		peer, dc, rack, rpcAddr string
	)
	for iter.Scan(&peer, &dc, &rack, &rpcAddr) {
		hosts = append(hosts, types.Host{
			Datacenter: dc,
			Address:    pickAddress(rpcAddr, peer),
			Rack:       rack,
		})
		peer, dc, rack, rpcAddr = "", "", "", ""
	}

	return hosts, iter.Close()
}

// pickAddress prefers the client-facing address and falls back to the
// gossip address when the former is unset or unbound.
func pickAddress(preferred, fallback string) string {
	if preferred == "" || preferred == unboundAddress {
		return fallback
	}

	return preferred
}
