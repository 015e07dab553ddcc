package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/covidtrack/covid19-api/pipeline"
)

// updateDataset is an internal only api to trigger a pipeline run. A
// run already in flight is reported, not duplicated.
func (s *Server) updateDataset(c *gin.Context) {
	switch err := s.pipeline.Run(c.Request.Context()); err {
	case nil:
		c.JSON(http.StatusOK, gin.H{"result": "OK"})
	case pipeline.ErrUpdateInProgress:
		c.JSON(http.StatusAccepted, gin.H{"result": "update already in progress"})
	default:
		abortWithEncoding(c, http.StatusInternalServerError, errorUpdateFailed, err)
	}
}
