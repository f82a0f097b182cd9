package router

import (
	"net/http"

	"menu-costing/app/controller"
)

type Controllers struct {
	Costing *controller.CostingController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// SetupRoutes registers every endpoint on mux
func SetupRoutes(mux *http.ServeMux, controllers *Controllers) {
	// Ping endpoint
	mux.HandleFunc("/ping", pingHandler)

	// Decomposition routes
	mux.HandleFunc("/admin/decompose", controllers.Costing.Decompose)

	// Write-off preview, valued at catalog base cost
	mux.HandleFunc("/admin/write-off/preview", controllers.Costing.PreviewWriteOff)

	// Sales routes
	// Write off and FIFO-cost a sale
	mux.HandleFunc("/admin/sales/cost", controllers.Costing.CostSale)
}
