package Controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"Mizan/Models"
	"Mizan/middleware"
)

type RegisterUserInput struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	Permission int    `json:"permission" validate:"gte=0,lte=4"`
}

func RegisterUser(ctx *fiber.Ctx) error {
	var input RegisterUserInput
	if !validateBody(ctx, &input) {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	user := Models.User{
		Name:       input.Name,
		Email:      input.Email,
		Password:   hash,
		Permission: input.Permission,
		IsApproved: 1,
	}
	if err := Models.DB.Create(&user).Error; err != nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A user with this email already exists"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(user)
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func Login(ctx *fiber.Ctx) error {
	var input LoginInput
	if !validateBody(ctx, &input) {
		return nil
	}

	var user Models.User
	if err := Models.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid credentials"})
	}
	if err := bcrypt.CompareHashAndPassword(user.Password, []byte(input.Password)); err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid credentials"})
	}

	claims := jwt.RegisteredClaims{
		Issuer:    strconv.Itoa(int(user.ID)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(middleware.SecretKey())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Could not sign token"})
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     "jwt",
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HTTPOnly: true,
	})
	return ctx.JSON(fiber.Map{"message": "Logged in successfully", "user": user})
}

func Logout(ctx *fiber.Ctx) error {
	ctx.Cookie(&fiber.Cookie{
		Name:     "jwt",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
	return ctx.JSON(fiber.Map{"message": "Logged out successfully"})
}

func ValidateToken(ctx *fiber.Ctx) error {
	cookie := ctx.Cookies("jwt")
	if cookie == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not Logged In."})
	}
	token, err := jwt.ParseWithClaims(cookie, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return middleware.SecretKey(), nil
	})
	if err != nil || !token.Valid {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid or expired token"})
	}
	return ctx.JSON(fiber.Map{"message": "Token is valid"})
}

func FetchUsers(ctx *fiber.Ctx) error {
	var users []Models.User
	if err := Models.DB.Find(&users).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve users"})
	}
	return ctx.JSON(users)
}

type UpdateUserInput struct {
	ID         uint   `json:"id" validate:"required"`
	Name       string `json:"name"`
	Password   string `json:"password" validate:"omitempty,min=6"`
	Permission *int   `json:"permission" validate:"omitempty,gte=0,lte=4"`
}

func UpdateUser(ctx *fiber.Ctx) error {
	var input UpdateUserInput
	if !validateBody(ctx, &input) {
		return nil
	}

	var user Models.User
	if err := Models.DB.First(&user, input.ID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Permission != nil {
		user.Permission = *input.Permission
	}
	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
		}
		user.Password = hash
	}
	if err := Models.DB.Save(&user).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user"})
	}
	return ctx.JSON(fiber.Map{"message": "User updated successfully", "user": user})
}

func DeleteUser(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}
	if err := Models.DB.Delete(&Models.User{}, id).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete user"})
	}
	return ctx.JSON(fiber.Map{"message": "User deleted successfully"})
}
