package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/covidtrack/covid19-api/cache"
	"github.com/covidtrack/covid19-api/stats"
	"github.com/covidtrack/covid19-api/store"
)

// statistics serves the latest aggregated snapshot, cache first. A
// never-populated store is a normal empty state and maps to 404.
func (s *Server) statistics(c *gin.Context) {
	if cached, ok := s.cache.Get(cache.StatisticsKey); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	snapshot, err := s.mongoStore.GetLatestSnapshot()
	if err == store.ErrNoSnapshot {
		abortWithEncoding(c, http.StatusNotFound, errorNoSnapshot)
		return
	}
	if shouldInterupt(err, c) {
		return
	}

	s.cache.Set(cache.StatisticsKey, snapshot)
	c.JSON(http.StatusOK, snapshot)
}

// markers serves the GeoJSON point layer derived from the latest
// snapshot. The derivation is recomputed on each cache miss.
func (s *Server) markers(c *gin.Context) {
	if cached, ok := s.cache.Get(cache.MarkersKey); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	snapshot, err := s.mongoStore.GetLatestSnapshot()
	if err == store.ErrNoSnapshot {
		abortWithEncoding(c, http.StatusNotFound, errorNoSnapshot)
		return
	}
	if shouldInterupt(err, c) {
		return
	}

	markers := stats.Markers(snapshot)

	s.cache.Set(cache.MarkersKey, markers)
	c.JSON(http.StatusOK, markers)
}
