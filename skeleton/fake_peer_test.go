package skeleton

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/tessera-chain/corestack/chain"
)

// fakePeer is a scriptable chain.Peer double for scheduler tests.
type fakePeer struct {
	id string

	headers    []*types.Header // returned verbatim by GetBlockHeaders.
	headersErr error

	bodies    []*types.Body // returned verbatim by GetBlockBodies.
	bodiesErr error
}

func (p *fakePeer) ID() string { return p.id }

func (p *fakePeer) GetBlockHeaders(req chain.HeaderRequest) ([]*types.Header, error) {
	if p.headersErr != nil {
		return nil, p.headersErr
	}
	return p.headers, nil
}

func (p *fakePeer) GetBlockBodies(hashes []common.Hash) ([]*types.Body, error) {
	if p.bodiesErr != nil {
		return nil, p.bodiesErr
	}
	return p.bodies, nil
}

var errFakePeer = errors.New("fakePeer: induced failure")
