package model

type RegisterRequest struct {
	Name            string `form:"name" validate:"required,min=2,max=255"`
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required,min=8"`
	ConfirmPassword string `form:"password-confirm" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `form:"email" validate:"required,email"`
}

// ResetPasswordRequest carries the form fields of the reset page. The
// token itself travels in the URL path, not the body.
type ResetPasswordRequest struct {
	Password        string `form:"password" validate:"required,min=8"`
	ConfirmPassword string `form:"password-confirm" validate:"required"`
}
