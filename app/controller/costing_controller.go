package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"menu-costing/decomposition"
	"menu-costing/models"
	"menu-costing/service"
)

// CostingController handles HTTP requests for menu decomposition and sale costing
type CostingController struct {
	service service.SaleCostingServiceInterface
}

// NewCostingController creates a new CostingController
func NewCostingController(svc service.SaleCostingServiceInterface) *CostingController {
	return &CostingController{
		service: svc,
	}
}

// Decompose handles POST /admin/decompose
// Example request:
// POST /admin/decompose
// {
//   "menuItemId": "fried-rice",
//   "variantId": "regular",
//   "quantity": 3,
//   "selectedModifiers": [],
//   "options": {"applyYield": true, "convertPortions": true, "includePath": true, "preparationStrategy": "keep"}
// }
// Example response:
// {
//   "nodes": [{"kind": "product", "entityId": "rice", "name": "Rice", "quantity": 450, "unit": "gram", "path": ["Fried Rice", "Regular", "Rice"]}],
//   "metadata": {"menuItemName": "Fried Rice", "variantName": "Regular", "quantity": 3, "modifiersApplied": 0, "replacementsApplied": 0}
// }
func (c *CostingController) Decompose(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 Decompose: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		log.Printf("❌ Decompose: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.DecomposeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Decompose: Failed to decode request body: %v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if msg := validateInput(req.MenuItemInput); msg != "" {
		log.Printf("❌ Decompose: %s", msg)
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	opts := models.DefaultWriteOffOptions()
	if req.Options != nil {
		opts = *req.Options
	}
	switch opts.PreparationStrategy {
	case "", models.PreparationKeep, models.PreparationDecompose:
	default:
		http.Error(w, "preparationStrategy must be keep or decompose", http.StatusBadRequest)
		return
	}

	result, err := c.service.Decompose(req.MenuItemInput, opts)
	if err != nil {
		log.Printf("❌ Decompose: Error decomposing %s/%s: %v", req.MenuItemID, req.VariantID, err)
		writeCostingError(w, err, "Failed to decompose menu item")
		return
	}

	log.Printf("✅ Decompose: %s x%d -> %d nodes", req.MenuItemID, req.Quantity, len(result.Nodes))
	writeJSON(w, "Decompose", result)
}

// PreviewWriteOff handles POST /admin/write-off/preview
// Example request:
// POST /admin/write-off/preview
// {"menuItemId": "fried-rice", "variantId": "regular", "quantity": 3}
// Example response: see models.WriteOffResult
func (c *CostingController) PreviewWriteOff(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 PreviewWriteOff: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		log.Printf("❌ PreviewWriteOff: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var input models.MenuItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Printf("❌ PreviewWriteOff: Failed to decode request body: %v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if msg := validateInput(input); msg != "" {
		log.Printf("❌ PreviewWriteOff: %s", msg)
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	writeOff, err := c.service.PreviewWriteOff(input)
	if err != nil {
		log.Printf("❌ PreviewWriteOff: Error building write-off for %s/%s: %v", input.MenuItemID, input.VariantID, err)
		writeCostingError(w, err, "Failed to build write-off")
		return
	}

	log.Printf("✅ PreviewWriteOff: %s x%d -> %d lines", input.MenuItemID, input.Quantity, len(writeOff.Items))
	writeJSON(w, "PreviewWriteOff", writeOff)
}

// CostSale handles POST /admin/sales/cost
// Example request:
// POST /admin/sales/cost
// {
//   "lines": [{"menuItemId": "fried-rice", "variantId": "regular", "quantity": 2}],
//   "warehouseId": "main",
//   "departmentId": "kitchen",
//   "reference": "bill-1042"
// }
// Example response: see models.SaleCostResponse
func (c *CostingController) CostSale(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 CostSale: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		log.Printf("❌ CostSale: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.CostSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ CostSale: Failed to decode request body: %v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	for i, line := range req.Lines {
		if msg := validateInput(line); msg != "" {
			log.Printf("❌ CostSale: line %d: %s", i, msg)
			http.Error(w, fmt.Sprintf("line %d: %s", i, msg), http.StatusBadRequest)
			return
		}
	}

	response, err := c.service.ProcessSale(r.Context(), &req)
	if err != nil {
		log.Printf("❌ CostSale: Error costing sale %s: %v", req.Reference, err)
		writeCostingError(w, err, "Failed to cost sale")
		return
	}

	log.Printf("✅ CostSale: reference=%s, lines=%d, total=%s", req.Reference, len(req.Lines), response.TotalCost.String())
	writeJSON(w, "CostSale", response)
}

// validateInput returns a client error message, or "" when the line is usable
func validateInput(input models.MenuItemInput) string {
	if strings.TrimSpace(input.MenuItemID) == "" {
		return "menuItemId is required"
	}
	if strings.TrimSpace(input.VariantID) == "" {
		return "variantId is required"
	}
	if input.Quantity < 1 {
		return "quantity must be at least 1"
	}
	return ""
}

// writeCostingError maps domain errors to HTTP status codes
func writeCostingError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, decomposition.ErrMenuItemNotFound), errors.Is(err, decomposition.ErrVariantNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, decomposition.ErrCompositionCycle):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, decomposition.ErrInvalidQuantity),
		errors.Is(err, service.ErrEmptySale),
		errors.Is(err, service.ErrMissingWarehouse):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, fmt.Sprintf("%s: %v", fallback, err), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, handler string, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("❌ %s: Error encoding response: %v", handler, err)
	}
}
