package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/razeghi71/insight/dataset"
	"github.com/razeghi71/insight/insight"
	"github.com/razeghi71/insight/loader"
	"github.com/razeghi71/insight/qerr"
	"github.com/razeghi71/insight/schema"
)

func (s *Server) addDataset(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		s.fail(c, err)
		return
	}
	ids, err := s.facade.AddDataset(c.Request.Context(), c.Param("id"), schema.Kind(c.Param("kind")), body)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": ids})
}

func (s *Server) removeDataset(c *gin.Context) {
	id, err := s.facade.RemoveDataset(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": id})
}

func (s *Server) listDatasets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"result": s.facade.ListDatasets()})
}

func (s *Server) query(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		s.fail(c, err)
		return
	}
	result, err := s.facade.RunQuery(c.Request.Context(), body)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// fail writes {"error": msg, "kind": code}.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, dataset.ErrNotFound):
		status = http.StatusNotFound
	case insight.IsClientError(err):
		status = http.StatusBadRequest
	default:
		s.log.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "kind": errorKind(err)})
}

// errorKind names the cause of err for API clients.
func errorKind(err error) string {
	if k := qerr.KindOf(err); k != "" {
		return string(k)
	}
	for _, e := range []struct {
		target error
		kind   string
	}{
		{dataset.ErrInvalidID, "invalid_id"},
		{dataset.ErrExists, "dataset_exists"},
		{dataset.ErrNotFound, "dataset_not_found"},
		{dataset.ErrUnsupportedKind, "unsupported_kind"},
		{loader.ErrInvalidArchive, "invalid_archive"},
		{loader.ErrNoSections, "no_sections"},
	} {
		if errors.Is(err, e.target) {
			return e.kind
		}
	}
	return "internal"
}
