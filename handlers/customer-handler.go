package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"lindsay-precast/backend/design-service/services"
)

type CustomerHandler struct {
	Service *services.CustomerService
}

func NewCustomerHandler(service *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{Service: service}
}

func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var input services.CreateCustomerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	customer, err := h.Service.CreateCustomer(r.Context(), input)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusCreated, "Customer created successfully", map[string]interface{}{
		"id":   customer.ID.Hex(),
		"name": customer.Name,
	})
}

func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	customers, pagination, err := h.Service.ListCustomers(r.Context(), q.Get("search"), page, limit)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, "", map[string]interface{}{
		"customers":  customers,
		"pagination": pagination,
	})
}

func (h *CustomerHandler) GetCustomerByID(w http.ResponseWriter, r *http.Request) {
	customer, err := h.Service.GetCustomerByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, "", customer)
}

func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"engineer", "manager"}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	var changes map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	customer, err := h.Service.UpdateCustomer(r.Context(), mux.Vars(r)["id"], changes)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Customer updated successfully", customer)
}

func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"manager"}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	if err := h.Service.DeleteCustomer(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, "Customer deleted successfully", nil)
}
