package handlers

import (
	"net/http"

	"github.com/zuricart/api/internal/platform/httpx"
	"github.com/zuricart/api/internal/services"
)

// AddressHandler serves the authenticated user's address book.
type AddressHandler struct {
	addresses services.AddressService
}

// NewAddressHandler constructs an AddressHandler.
func NewAddressHandler(addresses services.AddressService) *AddressHandler {
	return &AddressHandler{addresses: addresses}
}

type addressRequest struct {
	Label     string `json:"label"`
	Recipient string `json:"recipient"`
	Phone     string `json:"phone"`
	Line1     string `json:"line1"`
	Line2     string `json:"line2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Country   string `json:"country"`
	IsDefault bool   `json:"isDefault"`
}

func (req addressRequest) command(userID string) services.UpsertAddressCommand {
	return services.UpsertAddressCommand{
		UserID:    userID,
		Label:     req.Label,
		Recipient: req.Recipient,
		Phone:     req.Phone,
		Line1:     req.Line1,
		Line2:     req.Line2,
		City:      req.City,
		State:     req.State,
		Country:   req.Country,
		IsDefault: req.IsDefault,
	}
}

// List responds to GET /me/addresses.
func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}
	addresses, err := h.addresses.ListAddresses(r.Context(), identity.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	items := make([]addressResponse, 0, len(addresses))
	for _, a := range addresses {
		items = append(items, toAddressResponse(a))
	}
	httpx.WriteSuccess(w, http.StatusOK, items, "")
}

// Create responds to POST /me/addresses.
func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}
	var req addressRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	address, err := h.addresses.CreateAddress(r.Context(), req.command(identity.UserID))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusCreated, toAddressResponse(address), "address created")
}

// Update responds to PUT /me/addresses/{addressID}.
func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}
	addressID, ok := pathUUID(w, r, "addressID")
	if !ok {
		return
	}
	var req addressRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	address, err := h.addresses.UpdateAddress(r.Context(), addressID, req.command(identity.UserID))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, toAddressResponse(address), "address updated")
}

// Delete responds to DELETE /me/addresses/{addressID}.
func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}
	addressID, ok := pathUUID(w, r, "addressID")
	if !ok {
		return
	}
	if err := h.addresses.DeleteAddress(r.Context(), identity.UserID, addressID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, nil, "address deleted")
}
