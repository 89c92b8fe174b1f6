package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/collegehub/internal/auth"
	"github.com/charlesng35/collegehub/internal/services"
	"github.com/charlesng35/collegehub/pkg/response"
)

// AuthHandler issues access tokens and describes the signed-in account.
type AuthHandler struct {
	directory *services.AccountDirectory
	jwt       *iauth.JWTService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(directory *services.AccountDirectory, jwt *iauth.JWTService) (*AuthHandler, error) {
	if directory == nil {
		return nil, errors.New("auth handler: account directory is required")
	}
	if jwt == nil {
		return nil, errors.New("auth handler: jwt service is required")
	}
	return &AuthHandler{directory: directory, jwt: jwt}, nil
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type accountPayload struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Role               string `json:"role"`
	ProfileID          string `json:"profile_id,omitempty"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	StaffIDNumber      string `json:"staff_id_number,omitempty"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := requestContext(c)
	account, err := h.directory.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	token, err := h.jwt.GenerateAccessToken(account.ID, account.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	principal, err := h.directory.Resolve(ctx, account.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int(h.jwt.TTL().Seconds()),
		"account":      toAccountPayload(principal),
	})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	principal, err := currentPrincipal(c, h.directory)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, toAccountPayload(principal))
}

func toAccountPayload(p *services.Principal) accountPayload {
	out := accountPayload{
		ID:        p.Account.ID,
		Email:     p.Account.Email,
		FirstName: p.Account.FirstName,
		LastName:  p.Account.LastName,
		Role:      string(p.Account.Role),
	}
	if p.Student != nil {
		out.ProfileID = p.Student.ID
		out.RegistrationNumber = p.Student.RegistrationNumber
	}
	if p.Staff != nil {
		out.ProfileID = p.Staff.ID
		out.StaffIDNumber = p.Staff.StaffIDNumber
	}
	return out
}
