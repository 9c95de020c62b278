package delivery

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	useCase usecase.AuthUseCase
	log     *logrus.Logger
}

func NewAuthHandler(uc usecase.AuthUseCase, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *AuthHandler) RegisterRoutes(router gin.IRouter) {
	auth := router.Group("/auth")
	{
		auth.POST("/signup", h.SignUp)
		auth.POST("/signin", h.SignIn)
		auth.POST("/signout", h.SignOut)
		auth.GET("/me", h.Me)
	}
}

type SignUpRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "SignUp")
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlerLogger.Warnf("Failed to bind sign up request: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	user, err := h.useCase.SignUp(c.Request.Context(), usecase.SignUpInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		handlerLogger.Warnf("Sign up failed for %s: %v", req.Email, err)
		FailWithNotice(c, err, "Failed to create account",
			Notice{Title: "Sign Up Failed", Description: "Could not create your account", Variant: variantDestructive})
		return
	}

	NoticeResponse(c, http.StatusCreated, "Account created successfully", user,
		Notice{Title: "Account Created", Description: "You can now sign in"})
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "SignIn")
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlerLogger.Warnf("Failed to bind sign in request: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.useCase.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handlerLogger.Warnf("Sign in failed for %s: %v", req.Email, err)
		status := mapErrorToStatus(err)
		_ = c.Error(err)
		c.JSON(status, Response{
			Status:  "Fail",
			Message: "Failed to sign in: " + err.Error(),
			Notice:  &Notice{Title: "Sign In Failed", Description: "Invalid email or password", Variant: variantDestructive},
		})
		return
	}

	handlerLogger.Infof("User %s signed in", result.User.ID)
	NoticeResponse(c, http.StatusOK, "Signed in successfully", result,
		Notice{Title: "Welcome back", Description: "You have signed in"})
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := h.useCase.SignOut(c.Request.Context(), sessionFrom(c)); err != nil {
		h.log.Warnf("Sign out failed: %v", err)
		FailWithNotice(c, err, "Failed to sign out",
			Notice{Title: "Error", Description: "Failed to sign out", Variant: variantDestructive})
		return
	}
	SuccessResponse(c, http.StatusOK, "Signed out successfully", nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.useCase.CurrentUser(c.Request.Context(), sessionFrom(c))
	if err != nil {
		FailWithNotice(c, err, "Failed to load profile",
			Notice{Title: "Error", Description: "Failed to load profile", Variant: variantDestructive})
		return
	}
	SuccessResponse(c, http.StatusOK, "Profile retrieved successfully", user)
}
