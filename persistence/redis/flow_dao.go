package redis

import (
	"context"
	"errors"

	rd "github.com/go-redis/redis/v9"
	"github.com/mohitkumar/closureflow/logger"
	"github.com/mohitkumar/closureflow/model"
	"github.com/mohitkumar/closureflow/persistence"
	"github.com/mohitkumar/closureflow/util"
	"go.uber.org/zap"
)

const FLOW_KEY string = "FLOW"

var _ persistence.FlowDao = new(redisFlowDao)

// redisFlowDao keeps every snapshot under its own key so the configured TTL
// expires it with no reader involved.
type redisFlowDao struct {
	*baseDao
	codec util.Codec[model.FlowContext]
	conf  Config
}

func NewRedisFlowDao(conf Config) *redisFlowDao {
	return &redisFlowDao{
		baseDao: newBaseDao(conf),
		codec:   util.NewJsonCodec[model.FlowContext](),
		conf:    conf,
	}
}

func (rf *redisFlowDao) flowKey(wfName string, flowId string) string {
	return rf.getNamespaceKey(FLOW_KEY, wfName, flowId)
}

func (rf *redisFlowDao) SaveFlowContext(wfName string, flowId string, flowCtx *model.FlowContext) error {
	ctx := context.Background()
	data, err := rf.codec.Encode(flowCtx)
	if err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	// zero expiration keeps the key forever
	if err := rf.redisClient.Set(ctx, rf.flowKey(wfName, flowId), data, rf.conf.TTL).Err(); err != nil {
		logger.Error("error in saving flow context", zap.String("flowName", wfName), zap.String("flowId", flowId), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rf *redisFlowDao) GetFlowContext(wfName string, flowId string) (*model.FlowContext, error) {
	ctx := context.Background()
	data, err := rf.redisClient.Get(ctx, rf.flowKey(wfName, flowId)).Bytes()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, persistence.NotFoundError{WorkflowName: wfName, FlowId: flowId}
		}
		logger.Error("error in getting flow context", zap.String("flowName", wfName), zap.String("flowId", flowId), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rf.codec.Decode(data)
}

func (rf *redisFlowDao) DeleteFlowContext(wfName string, flowId string) error {
	ctx := context.Background()
	if err := rf.redisClient.Del(ctx, rf.flowKey(wfName, flowId)).Err(); err != nil {
		logger.Error("error in deleting flow context", zap.String("flowName", wfName), zap.String("flowId", flowId), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}
