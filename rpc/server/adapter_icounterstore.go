package server

import (
	"fmt"
	"github.com/ValentinKolb/dCount/lib/store"
	"github.com/ValentinKolb/dCount/rpc/common"
)

func NewICounterStoreServerAdapter() IRPCServerAdapter {
	return &iCounterStoreServerAdapterImpl{}
}

type iCounterStoreServerAdapterImpl struct{}

func (adapter *iCounterStoreServerAdapterImpl) Handle(req *common.Message, store store.ICounterStore) *common.Message {
	// Check for nil store
	if store == nil {
		return common.NewErrorResponse("handler: store is nil")
	}

	// Handle different message types
	switch req.MsgType {
	case common.MsgTIncr:
		total, err := store.Incr(req.Key, req.Delta)
		return common.NewIncrResponse(total, err)
	case common.MsgTGet:
		total, ok, err := store.Get(req.Key)
		return common.NewGetResponse(total, ok, err)
	default:
		return common.NewErrorResponse(
			fmt.Sprintf("RPC CounterStoreAdapter - Unsupported message type: %s", req.MsgType),
		)
	}
}
