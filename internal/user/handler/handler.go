package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"store-directory/internal/flash"
	"store-directory/internal/logger"
	"store-directory/internal/middleware"
	"store-directory/internal/user/model"
	"store-directory/internal/user/service"
	"store-directory/internal/view"
	appErrors "store-directory/pkg/errors"
	"store-directory/pkg/utils"
)

type UserHandler struct {
	service *service.UserService
	baseURL string // overrides the request host in reset links when set
}

func NewHandler(service *service.UserService, baseURL string) *UserHandler {
	return &UserHandler{service: service, baseURL: baseURL}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/login", h.LoginForm)
	router.POST("/login", h.Login)
	router.GET("/logout", h.Logout)
	router.GET("/register", h.RegisterForm)
	router.POST("/register", h.Register)

	account := router.Group("/account")
	{
		account.POST("/forgot", h.Forgot)
		account.GET("/reset/:token", h.ResetForm)
		account.POST("/reset/:token", h.Reset)
	}
}

func (h *UserHandler) LoginForm(c *gin.Context) {
	view.Render(c, http.StatusOK, "login.html", gin.H{"title": "Login"})
}

func (h *UserHandler) Login(c *gin.Context) {
	var request model.LoginRequest
	if err := c.ShouldBind(&request); err != nil {
		flash.Add(c, flash.Error, "Failed Login!")
		c.Redirect(http.StatusFound, "/login")
		return
	}
	request.Email = utils.SanitizeEmail(request.Email)

	user, err := h.service.Authenticate(c.Request.Context(), &request)
	if err != nil {
		if !errors.Is(err, appErrors.ErrInvalidCredentials) {
			logger.Error("Login failed",
				zap.String("request_id", middleware.GetRequestID(c)),
				zap.Error(err),
			)
		}
		flash.Add(c, flash.Error, "Failed Login!")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	if err := h.setSessionUser(c, user); err != nil {
		logger.Error("Failed to save session", zap.Error(err))
		flash.Add(c, flash.Error, "Failed Login!")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	flash.Add(c, flash.Success, "You are now logged in!")
	c.Redirect(http.StatusFound, "/")
}

func (h *UserHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Delete(middleware.SessionUserKey)
	_ = session.Save()

	flash.Add(c, flash.Success, "You are now logged out.")
	c.Redirect(http.StatusFound, "/")
}

func (h *UserHandler) RegisterForm(c *gin.Context) {
	view.Render(c, http.StatusOK, "register.html", gin.H{"title": "Register"})
}

func (h *UserHandler) Register(c *gin.Context) {
	var request model.RegisterRequest
	if err := c.ShouldBind(&request); err != nil {
		flash.Add(c, flash.Error, "Invalid registration details")
		c.Redirect(http.StatusFound, "/register")
		return
	}
	request.Email = utils.SanitizeEmail(request.Email)
	request.Name = utils.SanitizeString(request.Name)

	user, err := h.service.Register(c.Request.Context(), &request)
	if err != nil {
		switch {
		case errors.Is(err, appErrors.ErrEmailTaken):
			flash.Add(c, flash.Error, err.Error())
		default:
			var appErr *appErrors.AppError
			if errors.As(err, &appErr) {
				flash.Add(c, flash.Error, appErr.Message)
			} else {
				logger.Error("Registration failed",
					zap.String("request_id", middleware.GetRequestID(c)),
					zap.Error(err),
				)
				flash.Add(c, flash.Error, "Something went wrong, please try again")
			}
		}
		c.Redirect(http.StatusFound, "/register")
		return
	}

	if err := h.setSessionUser(c, user); err != nil {
		logger.Error("Failed to save session", zap.Error(err))
	}
	flash.Add(c, flash.Success, "Welcome! Your account has been created.")
	c.Redirect(http.StatusFound, "/")
}

// Forgot starts the password reset flow. The flash message reveals
// whether an account exists for the address; that mirrors the original
// behavior and is recorded as a known weakness.
func (h *UserHandler) Forgot(c *gin.Context) {
	var request model.ForgotPasswordRequest
	if err := c.ShouldBind(&request); err != nil {
		flash.Add(c, flash.Error, "Please enter a valid email address.")
		c.Redirect(http.StatusFound, "/login")
		return
	}
	request.Email = utils.SanitizeEmail(request.Email)

	err := h.service.ForgotPassword(c.Request.Context(), &request, h.resolveBaseURL(c))
	if err != nil {
		if errors.Is(err, appErrors.ErrUserNotFound) {
			flash.Add(c, flash.Error, "No account with that email address exists.")
		} else {
			logger.Error("Forgot password failed",
				zap.String("request_id", middleware.GetRequestID(c)),
				zap.Error(err),
			)
			flash.Add(c, flash.Error, "Something went wrong, please try again")
		}
		c.Redirect(http.StatusFound, "/login")
		return
	}

	flash.Add(c, flash.Success, "You have been emailed a password reset link.")
	c.Redirect(http.StatusFound, "/login")
}

func (h *UserHandler) ResetForm(c *gin.Context) {
	token := c.Param("token")

	if _, err := h.service.ValidateResetToken(c.Request.Context(), token); err != nil {
		flash.Add(c, flash.Error, "Password reset is invalid or has expired")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	view.Render(c, http.StatusOK, "reset.html", gin.H{
		"title": "Reset your password",
		"token": token,
	})
}

func (h *UserHandler) Reset(c *gin.Context) {
	token := c.Param("token")

	var request model.ResetPasswordRequest
	if err := c.ShouldBind(&request); err != nil {
		flash.Add(c, flash.Error, "Please fill in both password fields.")
		c.Redirect(http.StatusFound, "/account/reset/"+token)
		return
	}

	// Confirmation gate: nothing is mutated on a mismatch.
	if request.Password != request.ConfirmPassword {
		flash.Add(c, flash.Error, "Passwords do not match")
		c.Redirect(http.StatusFound, "/account/reset/"+token)
		return
	}

	user, err := h.service.ResetPassword(c.Request.Context(), token, &request)
	if err != nil {
		switch {
		case errors.Is(err, appErrors.ErrResetTokenInvalid):
			flash.Add(c, flash.Error, "Password reset is invalid or has expired")
			c.Redirect(http.StatusFound, "/login")
		case errors.Is(err, appErrors.ErrPasswordsDiffer):
			flash.Add(c, flash.Error, "Passwords do not match")
			c.Redirect(http.StatusFound, "/account/reset/"+token)
		default:
			var appErr *appErrors.AppError
			if errors.As(err, &appErr) {
				flash.Add(c, flash.Error, appErr.Message)
				c.Redirect(http.StatusFound, "/account/reset/"+token)
				return
			}
			logger.Error("Password reset failed",
				zap.String("request_id", middleware.GetRequestID(c)),
				zap.Error(err),
			)
			flash.Add(c, flash.Error, "Something went wrong, please try again")
			c.Redirect(http.StatusFound, "/login")
		}
		return
	}

	// Auto-login after a successful reset.
	if err := h.setSessionUser(c, user); err != nil {
		logger.Error("Failed to save session", zap.Error(err))
	}
	flash.Add(c, flash.Success, "Nice! Your password has been reset!")
	c.Redirect(http.StatusFound, "/")
}

func (h *UserHandler) setSessionUser(c *gin.Context, user *model.User) error {
	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.ID.String())
	return session.Save()
}

func (h *UserHandler) resolveBaseURL(c *gin.Context) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	return fmt.Sprintf("http://%s", c.Request.Host)
}
