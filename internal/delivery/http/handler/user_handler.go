package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"catalog-system/internal/delivery/dto"
	"catalog-system/internal/usecase"
	"catalog-system/pkg/response"
	"catalog-system/pkg/validator"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	log         *logrus.Logger
	userUsecase usecase.UserUsecase
}

func NewUserHandler(log *logrus.Logger, userUsecase usecase.UserUsecase) *UserHandler {
	return &UserHandler{
		log:         log,
		userUsecase: userUsecase,
	}
}

// GetAll handles listing users
// @Summary List users
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users/ [get]
func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.userUsecase.GetAll(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get users")
		return
	}

	response.Success(w, http.StatusOK, "Users retrieved successfully", users)
}

// GetByID handles getting one user
// @Summary Get user by ID
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(r)
	if !ok {
		response.NotFound(w, "User not found")
		return
	}

	user, err := h.userUsecase.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "Failed to get user")
		return
	}

	response.Success(w, http.StatusOK, "User retrieved successfully", user)
}

// Create handles staff user creation
// @Summary Create a new user
// @Tags Users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateUserRequest true "Create User Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users/create [post]
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	user, err := h.userUsecase.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "Failed to create user")
		return
	}

	response.Success(w, http.StatusCreated, "User created successfully", user)
}

// Update handles full replacement of a user
// @Summary Update user
// @Tags Users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body dto.UpdateUserRequest true "Update User Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/update/{id} [put]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(r)
	if !ok {
		response.NotFound(w, "User not found")
		return
	}

	// Decode failures are judged after the not-found and superuser checks.
	var req *dto.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = nil
	}

	user, err := h.userUsecase.Update(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, usecase.ErrSuperuserProtected) {
			response.BadRequest(w, "Can't update superusers, only admins.")
			return
		}
		h.writeError(w, err, "Failed to update user")
		return
	}

	response.Success(w, http.StatusOK, "User updated successfully", user)
}

// Delete handles user deletion
// @Summary Delete user
// @Tags Users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/delete/{id} [delete]
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(r)
	if !ok {
		response.NotFound(w, "User not found")
		return
	}

	if err := h.userUsecase.Delete(r.Context(), id); err != nil {
		if errors.Is(err, usecase.ErrSuperuserProtected) {
			response.BadRequest(w, "Can't delete superusers, only admins.")
			return
		}
		h.writeError(w, err, "Failed to delete user")
		return
	}

	response.NoContent(w)
}

func (h *UserHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	var (
		validationErr *validator.ValidationError
		existsErr     *usecase.UsernameExistsError
	)
	switch {
	case errors.As(err, &existsErr):
		response.BadRequest(w, existsErr.Error())
	case errors.As(err, &validationErr):
		response.ValidationError(w, validationErr.Fields)
	case errors.Is(err, usecase.ErrUserNotFound):
		response.NotFound(w, "User not found")
	case errors.Is(err, usecase.ErrInvalidPayload):
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
	default:
		h.log.Errorf("%s: %+v", fallback, err)
		response.InternalServerError(w, fallback)
	}
}

func parseUserID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
