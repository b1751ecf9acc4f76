package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mohitkumar/closureflow/logger"
	"github.com/mohitkumar/closureflow/model"
	"github.com/mohitkumar/closureflow/persistence"
	"go.uber.org/zap"
)

func (s *Server) HandleRunFlow(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var runReq model.WorkflowRunRequest
	if err := json.NewDecoder(r.Body).Decode(&runReq); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	flowId, err := s.executorService.StartFlow(runReq.Input)
	if err != nil {
		logger.Error("error running workflow", zap.String("name", s.executorService.WorkflowName()), zap.Error(err))
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusAccepted, map[string]any{"flowId": flowId})
}

func (s *Server) HandleGetFlowExecution(w http.ResponseWriter, r *http.Request) {
	flowId := mux.Vars(r)["id"]
	flowContext, err := s.executorService.GetFlow(flowId)
	if err != nil {
		var notFound persistence.NotFoundError
		if errors.As(err, &notFound) {
			respondWithError(w, http.StatusNotFound, "flow execution not found")
			return
		}
		logger.Error("error getting flow execution", zap.String("id", flowId), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "error getting flow execution")
		return
	}
	respondWithJSON(w, http.StatusOK, flowContext)
}

func (s *Server) HandleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, s.definition)
}
