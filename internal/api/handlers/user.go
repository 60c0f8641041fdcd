package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/temirbekuulu/deckgen/internal/models"
	"github.com/temirbekuulu/deckgen/internal/repository"
	"github.com/temirbekuulu/deckgen/internal/utils/password"
)

// UserHandler handles user management requests
type UserHandler struct {
	UserRepo repository.UserRepository
}

// NewUserHandler creates a new user handler
func NewUserHandler(repo repository.UserRepository) *UserHandler {
	return &UserHandler{UserRepo: repo}
}

func userPayload(user *models.User) fiber.Map {
	return fiber.Map{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"role":       user.Role.Name,
		"created_at": user.CreatedAt,
	}
}

// ListUsers returns a paginated list of users
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	users, total, err := h.UserRepo.FindAll(page, pageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch users",
		})
	}

	items := make([]fiber.Map, 0, len(users))
	for _, u := range users {
		items = append(items, userPayload(u))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"users":     items,
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		},
	})
}

// GetUser returns a single user with their recent activity
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid user ID",
		})
	}

	user, activities, err := h.UserRepo.FindWithActivity(userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "User not found",
		})
	}

	payload := userPayload(user)
	payload["activity"] = activities

	return c.JSON(fiber.Map{
		"success": true,
		"data":    payload,
	})
}

// UpdateUserRequest represents a request to update a user's profile
type UpdateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUser updates a user's profile fields
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid user ID",
		})
	}

	req := new(UpdateUserRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	user, _, err := h.UserRepo.FindWithActivity(userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "User not found",
		})
	}

	if req.Username != "" && req.Username != user.Username {
		taken, err := h.UserRepo.ExistsByUsername(req.Username)
		if err != nil || taken {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"error":   "Username already taken",
			})
		}
		user.Username = req.Username
	}

	if req.Email != "" && req.Email != user.Email {
		taken, err := h.UserRepo.ExistsByEmail(req.Email)
		if err != nil || taken {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"error":   "Email already registered",
			})
		}
		user.Email = req.Email
	}

	if err := h.UserRepo.Update(user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to update user",
		})
	}

	if req.Password != "" {
		if len(req.Password) < 8 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "Password must be at least 8 characters",
			})
		}
		hash, err := password.Hash(req.Password)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to hash password",
			})
		}
		if err := h.UserRepo.UpdatePassword(userID, hash); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to update password",
			})
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    userPayload(user),
	})
}

// UpdateRoleRequest represents a request to change a user's role
type UpdateRoleRequest struct {
	RoleID uint `json:"role_id" validate:"required"`
}

// UpdateRole changes a user's role
func (h *UserHandler) UpdateRole(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid user ID",
		})
	}

	req := new(UpdateRoleRequest)
	if err := c.BodyParser(req); err != nil || req.RoleID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if err := h.UserRepo.UpdateRole(userID, req.RoleID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to update role",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Role updated successfully",
	})
}

// DeleteUser removes a user account
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid user ID",
		})
	}

	user := models.User{ID: userID}
	if err := h.UserRepo.Delete(&user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to delete user",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "User deleted successfully",
	})
}
