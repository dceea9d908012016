package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/blockport/trade-finance-api/internal/api/middleware"
)

// DashboardHandler serves the role-specific dashboard payloads. The content
// is static placeholder data; these routes exist as the protected resources
// the auth pipeline (rate limit → authenticate → authorize) composes around.
type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// Importer handles GET /v1/dashboard/importer.
func (h *DashboardHandler) Importer(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"active_contracts": []map[string]any{
			{"id": "c2", "title": "Tea Export Contract", "status": "active", "value": 75000},
		},
		"pending_shipments": []map[string]any{
			{"id": "s1", "contract_id": "c1", "status": "in_transit", "location": "Port of Singapore"},
		},
		"required_documents": []map[string]any{
			{"id": "d2", "contract_id": "c1", "type": "invoice", "status": "pending"},
		},
	})
}

// Exporter handles GET /v1/dashboard/exporter.
func (h *DashboardHandler) Exporter(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"contract_requests": []map[string]any{
			{"id": "c1", "title": "Coffee Beans Import", "status": "pending", "value": 50000},
		},
		"payment_status": []map[string]any{
			{"contract_id": "c1", "amount": 50000, "status": "escrow_funded"},
		},
	})
}

// Logistics handles GET /v1/dashboard/logistics.
func (h *DashboardHandler) Logistics(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"active_shipments": []map[string]any{
			{"id": "s1", "contract_id": "c1", "status": "in_transit", "location": "Port of Singapore"},
			{"id": "s2", "contract_id": "c2", "status": "customs_clearance", "location": "Dubai Customs"},
		},
		"customs_status": []map[string]any{
			{"shipment_id": "s1", "status": "cleared", "location": "Port of Singapore"},
		},
	})
}

// Admin handles GET /v1/dashboard/admin.
func (h *DashboardHandler) Admin(c echo.Context) error {
	user := middleware.CurrentUser(c)
	viewer := ""
	if user != nil {
		viewer = user.Email
	}
	return c.JSON(http.StatusOK, map[string]any{
		"viewer": viewer,
		"platform_stats": map[string]any{
			"open_contracts":    3,
			"active_shipments":  2,
			"pending_documents": 1,
		},
	})
}
