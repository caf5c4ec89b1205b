package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/orderdesk/app/models"
	"github.com/shashiranjanraj/orderdesk/app/repositories"
	"github.com/shashiranjanraj/orderdesk/pkg/bind"
	"github.com/shashiranjanraj/orderdesk/pkg/logger"
	"github.com/shashiranjanraj/orderdesk/pkg/middleware"
	"github.com/shashiranjanraj/orderdesk/pkg/response"
	"github.com/shashiranjanraj/orderdesk/pkg/session"
)

type AuthController struct {
	users *repositories.UserRepository
}

func NewAuthController() *AuthController {
	return &AuthController{
		users: repositories.NewUserRepository(),
	}
}

type credentialsInput struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

// login writes the identity into the session and sets the cookie. The
// session ID is rotated first so a pre-auth ID never carries the identity.
func login(w http.ResponseWriter, r *http.Request, username string, role models.Role) error {
	sess := session.FromCtx(r)
	sess.Renew()
	sess.Set("username", username)
	sess.Set("role", string(role))
	return sess.Save(w)
}

// Register handles POST /register: creates a client account and logs it in.
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var body credentialsInput
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	username := strings.TrimSpace(body.Username)
	u, err := c.users.Register(username, body.Password)
	switch {
	case errors.Is(err, repositories.ErrReservedUsername),
		errors.Is(err, repositories.ErrUsernameTaken):
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		logger.WithCtx(r.Context()).Error("register failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if err := login(w, r, username, u.Role); err != nil {
		logger.WithCtx(r.Context()).Error("session save failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	response.OK(w)
}

// Login handles POST /login.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var body credentialsInput
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	username := strings.TrimSpace(body.Username)
	u, err := c.users.Authenticate(username, body.Password)
	if err != nil {
		if errors.Is(err, repositories.ErrInvalidCredentials) {
			response.Error(w, http.StatusUnauthorized, err.Error())
			return
		}
		logger.WithCtx(r.Context()).Error("login failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if err := login(w, r, username, u.Role); err != nil {
		logger.WithCtx(r.Context()).Error("session save failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	response.OK(w)
}

// Logout handles POST /logout. Always succeeds.
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	session.FromCtx(r).Destroy(w)
	response.OK(w)
}

// Who handles GET /who: reports the session identity without side effects.
// The role is re-read from the user directory so a role change on disk is
// reflected immediately.
func (c *AuthController) Who(w http.ResponseWriter, r *http.Request) {
	username := middleware.UserFromCtx(r.Context())
	if username == "" {
		response.JSON(w, http.StatusOK, map[string]interface{}{"logged": false})
		return
	}

	role := models.RoleClient
	if u, ok := c.users.Find(username); ok {
		role = u.Role
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"logged":   true,
		"username": username,
		"role":     role,
	})
}
