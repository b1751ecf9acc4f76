package memory

import (
	"fmt"
	"time"

	"github.com/mohitkumar/closureflow/model"
	"github.com/mohitkumar/closureflow/persistence"
	"github.com/mohitkumar/closureflow/util"
	c "github.com/patrickmn/go-cache"
)

var _ persistence.FlowDao = new(inMemoryFlowDao)

// inMemoryFlowDao keeps encoded snapshots in a go-cache so callers never
// share a snapshot with the running instance.
type inMemoryFlowDao struct {
	cache *c.Cache
	codec util.Codec[model.FlowContext]
}

// NewInMemoryFlowDao keeps snapshots for ttl, zero keeps them until deleted.
func NewInMemoryFlowDao(ttl time.Duration) *inMemoryFlowDao {
	expiration := c.NoExpiration
	cleanup := 10 * time.Minute
	if ttl > 0 {
		expiration = ttl
		if ttl < cleanup {
			cleanup = ttl
		}
	}
	return &inMemoryFlowDao{
		cache: c.New(expiration, cleanup),
		codec: util.NewJsonCodec[model.FlowContext](),
	}
}

func key(wfName string, flowId string) string {
	return fmt.Sprintf("%s:%s", wfName, flowId)
}

func (m *inMemoryFlowDao) SaveFlowContext(wfName string, flowId string, flowCtx *model.FlowContext) error {
	data, err := m.codec.Encode(flowCtx)
	if err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	m.cache.SetDefault(key(wfName, flowId), data)
	return nil
}

func (m *inMemoryFlowDao) GetFlowContext(wfName string, flowId string) (*model.FlowContext, error) {
	v, found := m.cache.Get(key(wfName, flowId))
	if !found {
		return nil, persistence.NotFoundError{WorkflowName: wfName, FlowId: flowId}
	}
	return m.codec.Decode(v.([]byte))
}

func (m *inMemoryFlowDao) DeleteFlowContext(wfName string, flowId string) error {
	m.cache.Delete(key(wfName, flowId))
	return nil
}

func (m *inMemoryFlowDao) Count() int {
	return m.cache.ItemCount()
}
