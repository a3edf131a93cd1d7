package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"katydid-common-idgen/pkg/idgen/core"
	"katydid-common-idgen/pkg/idgen/domain"
)

// timeLayout RFC3339，保留毫秒
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

type errorResponse struct {
	Error string `json:"error"`
}

type idResponse struct {
	ID domain.ID `json:"id" swaggertype:"string" example:"1234567890123456789"`
}

type idsResponse struct {
	IDs domain.IDSlice `json:"ids" swaggertype:"array,string"`
}

type idInfoResponse struct {
	ID           domain.ID `json:"id" swaggertype:"string"`
	Timestamp    int64     `json:"timestamp"`
	Time         string    `json:"time"`
	DatacenterID uint8     `json:"datacenter_id"`
	WorkerID     uint8     `json:"worker_id"`
	Sequence     uint16    `json:"sequence"`
}

type healthResponse struct {
	Status       string `json:"status"`
	WorkerID     uint8  `json:"worker_id"`
	DatacenterID uint8  `json:"datacenter_id"`
}

// handleGenerate 生成单个ID
//
//	@Summary	生成ID
//	@Tags		ids
//	@Produce	json
//	@Success	200	{object}	idResponse
//	@Failure	500	{object}	errorResponse
//	@Router		/ids [post]
func (s *Server) handleGenerate(c *gin.Context) {
	id, err := s.gen.NextID()
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, idResponse{ID: domain.ID(id)})
}

// handleGenerateBatch 批量生成ID
//
//	@Summary	批量生成ID
//	@Tags		ids
//	@Produce	json
//	@Param		count	query		int	true	"数量 (1-100000)"
//	@Success	200		{object}	idsResponse
//	@Failure	400		{object}	errorResponse
//	@Failure	500		{object}	errorResponse
//	@Router		/ids/batch [post]
func (s *Server) handleGenerateBatch(c *gin.Context) {
	count, err := strconv.Atoi(c.Query("count"))
	if err != nil {
		s.fail(c, http.StatusBadRequest, errors.New("count must be an integer"))
		return
	}

	ids, err := s.gen.NextIDBatch(count)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrInvalidBatchSize) {
			status = http.StatusBadRequest
		}
		s.fail(c, status, err)
		return
	}
	c.JSON(http.StatusOK, idsResponse{IDs: domain.NewIDSlice(ids...)})
}

// handleDecode 解析ID
//
//	@Summary	解析ID
//	@Tags		ids
//	@Produce	json
//	@Param		id	path		string	true	"ID（十进制、0x 或 0b）"
//	@Success	200	{object}	idInfoResponse
//	@Failure	400	{object}	errorResponse
//	@Router		/ids/{id} [get]
func (s *Server) handleDecode(c *gin.Context) {
	id, err := domain.ParseID(c.Param("id"))
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	info, err := s.gen.ParseID(id.Uint64())
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, idInfoResponse{
		ID:           domain.ID(info.ID),
		Timestamp:    info.Timestamp,
		Time:         info.Time.UTC().Format(timeLayout),
		DatacenterID: info.DatacenterID,
		WorkerID:     info.WorkerID,
		Sequence:     info.Sequence,
	})
}

// handleMetrics 生成器监控指标
//
//	@Summary	生成器指标
//	@Tags		ops
//	@Produce	json
//	@Success	200	{object}	map[string]uint64
//	@Router		/metrics [get]
func (s *Server) handleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.gen.GetMetrics())
}

// handleHealth 健康检查
//
//	@Summary	健康检查
//	@Tags		ops
//	@Produce	json
//	@Success	200	{object}	healthResponse
//	@Router		/healthz [get]
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:       "ok",
		WorkerID:     s.gen.GetWorkerID(),
		DatacenterID: s.gen.GetDatacenterID(),
	})
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error()})
}
