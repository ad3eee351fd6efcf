package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/crossroads-hq/crossroads-backend/internal/application/services"
)

// TriggerHandler handles identity-provider lifecycle webhooks. The provider
// calls pre-signup before an account is created and post-confirmation once
// the account is verified.
type TriggerHandler struct {
	service *services.ProvisioningService
}

// NewTriggerHandler creates a new trigger handler
func NewTriggerHandler(service *services.ProvisioningService) *TriggerHandler {
	return &TriggerHandler{service: service}
}

type signupPayload struct {
	Username string `json:"username"`
	Subject  string `json:"sub"`
	Email    string `json:"email"`
	Attributes struct {
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Birthdate  string `json:"birthdate"`
	} `json:"attributes"`
}

func (p signupPayload) toAttributes() services.SignupAttributes {
	return services.SignupAttributes{
		Username:  p.Username,
		Subject:   p.Subject,
		Email:     p.Email,
		FirstName: p.Attributes.GivenName,
		LastName:  p.Attributes.FamilyName,
		Birthdate: p.Attributes.Birthdate,
	}
}

// PreSignup handles POST /webhooks/identity/pre-signup
//
// A 200 tells the provider to continue the signup; a 4xx aborts it with the
// returned message shown to the user.
func (h *TriggerHandler) PreSignup(w http.ResponseWriter, r *http.Request) {
	var payload signupPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.ValidateSignup(payload.toAttributes()); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"result": "allow"})
}

// PostConfirmation handles POST /webhooks/identity/post-confirmation
func (h *TriggerHandler) PostConfirmation(w http.ResponseWriter, r *http.Request) {
	var payload signupPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.service.ProvisionUser(r.Context(), payload.toAttributes())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, user)
}
