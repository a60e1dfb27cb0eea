package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dbarry-dev/stationtrack/internal/repository/registry"
)

// DashboardHandler serves the registry browsing surface.
type DashboardHandler struct {
	store  registry.Store
	logger *zap.Logger
}

// NewDashboardHandler constructs the HTTP handler adapter.
func NewDashboardHandler(store registry.Store, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{store: store, logger: logger}
}

// Index renders the registry table. A POST with a "search" form field
// narrows the table to IDs containing the submitted substring.
func (h *DashboardHandler) Index(c *gin.Context) {
	search := ""
	if c.Request.Method == http.MethodPost {
		search = c.PostForm("search")
	}

	records, err := h.store.Search(c.Request.Context(), search)
	if err != nil {
		h.logger.Error("failed loading registry", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to load registry")
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Items":  records,
		"Search": search,
	})
}

// Items returns the full or filtered registry as JSON for programmatic
// consumers.
func (h *DashboardHandler) Items(c *gin.Context) {
	search := c.Query("search")

	records, err := h.store.Search(c.Request.Context(), search)
	if err != nil {
		h.logger.Error("failed loading registry", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load registry"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": records})
}
