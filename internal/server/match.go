package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/orders-intake/internal/common"
	"github.com/joseph-ayodele/orders-intake/internal/entity"
)

// Queries accepts either a single JSON string or an array of strings.
type Queries []string

func (q *Queries) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*q = Queries{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return errors.New("queries must be a string or an array of strings")
	}
	*q = list
	return nil
}

type matchRequest struct {
	Queries *Queries `json:"queries" binding:"required"`
}

type matchCandidate struct {
	Match *string  `json:"match"`
	Score *float64 `json:"score"`
}

type matchResponse struct {
	Results map[string][]matchCandidate `json:"results"`
}

func toMatchResponse(res entity.MatchBatchResult) matchResponse {
	out := matchResponse{Results: make(map[string][]matchCandidate, len(res))}
	for q, cands := range res {
		list := make([]matchCandidate, 0, len(cands))
		for _, cand := range cands {
			list = append(list, matchCandidate{Match: cand.Label, Score: cand.Score})
		}
		out.Results[q] = list
	}
	return out
}

// Match resolves the submitted descriptions against the catalog in one batch.
func (s *Server) Match(c *gin.Context) {
	limit := s.opts.DefaultMatchLimit
	if raw, ok := c.GetQuery("limit"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(c, "match", common.InvalidInputError("limit must be a positive integer", err))
			return
		}
		limit = n
	}

	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, "match", bindError(err))
		return
	}

	res, err := s.deps.Matcher.MatchBatch(c.Request.Context(), []string(*req.Queries), limit)
	if err != nil {
		s.writeError(c, "match", err)
		return
	}
	c.JSON(http.StatusOK, toMatchResponse(res))
}
