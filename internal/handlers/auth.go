package handlers

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pulse/pkg/auth"
	api "pulse/pkg/api/pulse"
	"pulse/pkg/models"
)

// Register creates a user account plus its empty profile and returns
// a session token.
func Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Email and a password of at least 6 characters are required.")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		dbError(c, err)
		return
	}

	ctx := c.Request.Context()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		dbError(c, err)
		return
	}
	defer tx.Rollback()

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	err = tx.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash) VALUES ($1, $2)
		 RETURNING id, email, created_at, updated_at`,
		email, hash).
		Scan(&user.ID, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		recordMutation("register", err)
		dbError(c, err)
		return
	}

	var name *string
	if trimmed := strings.TrimSpace(req.Name); trimmed != "" {
		name = &trimmed
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO profiles (id, name) VALUES ($1, $2)`, user.ID, name); err != nil {
		recordMutation("register", err)
		dbError(c, err)
		return
	}

	if err := tx.Commit(); err != nil {
		recordMutation("register", err)
		dbError(c, err)
		return
	}
	recordMutation("register", nil)

	token, err := auth.GenerateJWT(user.ID, user.Email, jwtSecret)
	if err != nil {
		dbError(c, err)
		return
	}

	logger.WithField("user_id", user.ID).Info("User registered")
	c.JSON(http.StatusOK, api.AuthResponse{Success: true, Token: token, User: user})
}

// Login checks credentials and returns a session token
func Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Email and password are required.")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	err := db.QueryRowContext(c.Request.Context(),
		`SELECT id, email, password_hash, created_at, updated_at FROM users WHERE email = $1`,
		email).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusUnauthorized, api.Err("Invalid login credentials"))
		return
	}
	if err != nil {
		dbError(c, err)
		return
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, api.Err("Invalid login credentials"))
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.Email, jwtSecret)
	if err != nil {
		dbError(c, err)
		return
	}

	logger.WithField("user_id", user.ID).Info("User logged in")
	c.JSON(http.StatusOK, api.AuthResponse{Success: true, Token: token, User: user})
}
