package handlers

import (
	"net/http"

	"taskhub/internal/models"
)

const msgContactNotFound = "Contact not found"

type createContactRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
}

type updateContactRequest struct {
	FirstName *string `json:"firstName" validate:"omitnil,min=1"`
	LastName  *string `json:"lastName" validate:"omitnil,min=1"`
	Email     *string `json:"email" validate:"omitnil,email"`
}

// ListContacts returns every contact.
func (h *Handlers) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contacts.FindAll(r.Context())
	if err != nil {
		h.respondFailure(w, r, err, "Failed to retrieve contacts")
		return
	}
	respondSuccess(w, http.StatusOK, contacts)
}

func (h *Handlers) GetContact(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	contact, err := h.contacts.FindByID(r.Context(), id)
	if err != nil {
		h.respondFailure(w, r, err, "Failed to retrieve contact")
		return
	}
	if contact == nil {
		respondError(w, http.StatusNotFound, msgContactNotFound)
		return
	}
	respondSuccess(w, http.StatusOK, contact)
}

func (h *Handlers) CreateContact(w http.ResponseWriter, r *http.Request) {
	var req createContactRequest
	if !h.bind(w, r, &req) {
		return
	}

	contact, err := h.contacts.Create(r.Context(), &models.Contact{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		h.respondFailure(w, r, err, "Failed to create contact")
		return
	}
	respondSuccess(w, http.StatusCreated, contact)
}

func (h *Handlers) UpdateContact(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req updateContactRequest
	if !h.bind(w, r, &req) {
		return
	}

	contact, err := h.contacts.Update(r.Context(), id, models.ContactPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		h.respondFailure(w, r, err, "Failed to update contact")
		return
	}
	if contact == nil {
		respondError(w, http.StatusNotFound, msgContactNotFound)
		return
	}
	respondSuccess(w, http.StatusOK, contact)
}

// DeleteContact responds with the contact as it was before deletion.
func (h *Handlers) DeleteContact(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	contact, err := h.contacts.Delete(r.Context(), id)
	if err != nil {
		h.respondFailure(w, r, err, "Failed to delete contact")
		return
	}
	if contact == nil {
		respondError(w, http.StatusNotFound, msgContactNotFound)
		return
	}
	respondSuccess(w, http.StatusOK, contact)
}
