// Package handlers provides HTTP request handlers for the fanout API.
//
// ENDPOINTS:
//   - GET  /dispatch: run a dispatch from query parameters
//   - POST /dispatch: run a dispatch from a JSON body
//   - GET  /pools: per-group pool sizes and rotation cursors
//   - POST /pools/reload: drop cached pools
//   - GET  /health: liveness plus dependency checks
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/concave-dev/fanout/internal/credential"
	"github.com/concave-dev/fanout/internal/logging"
	"github.com/concave-dev/fanout/internal/orchestrator"
	"github.com/concave-dev/fanout/internal/selector"
	"github.com/concave-dev/fanout/internal/validate"
	"github.com/gin-gonic/gin"
)

// Dispatcher executes dispatch requests.
type Dispatcher interface {
	Execute(ctx context.Context, req orchestrator.Request) (*orchestrator.Response, error)
}

// DispatchRequest is accepted both as query parameters and as a JSON body.
type DispatchRequest struct {
	TargetID uint64 `form:"target_id" json:"target_id" binding:"required"`
	Group    string `form:"group" json:"group" binding:"required"`
	Mode     string `form:"mode" json:"mode"`
}

// HandleDispatchQuery runs a dispatch described by query parameters.
func HandleDispatchQuery(d Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DispatchRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			badRequest(c, "target_id and group are required; target_id must be numeric", err)
			return
		}
		runDispatch(c, d, req)
	}
}

// HandleDispatchJSON runs a dispatch described by a JSON body.
func HandleDispatchJSON(d Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DispatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request body", err)
			return
		}
		runDispatch(c, d, req)
	}
}

// runDispatch normalizes and validates the group and mode, then executes the
// request. Execute errors answer 500; pool outages are already logged by the
// orchestrator and are not logged again here.
func runDispatch(c *gin.Context, d Dispatcher, req DispatchRequest) {
	group := credential.NormalizeGroup(req.Group)
	if err := validate.GroupName(group); err != nil {
		badRequest(c, "Invalid group", err)
		return
	}
	mode, err := selector.ParseMode(req.Mode)
	if err != nil {
		badRequest(c, "Invalid mode", err)
		return
	}

	resp, err := d.Execute(c.Request.Context(), orchestrator.Request{
		Target: req.TargetID,
		Group:  group,
		Mode:   mode,
	})
	if err != nil {
		if !errors.Is(err, orchestrator.ErrPoolUnavailable) {
			logging.Error("Dispatch for %d in %s failed: %v", req.TargetID, group, err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   resp,
	})
}

func badRequest(c *gin.Context, message string, err error) {
	logging.Warn("Dispatch: %s: %v", message, err)
	c.JSON(http.StatusBadRequest, gin.H{
		"status":  "error",
		"error":   message,
		"details": err.Error(),
	})
}
