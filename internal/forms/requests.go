package forms

import "strings"

// Registration is the client sign-up form.
type Registration struct {
	FirstName       string `json:"firstName" form:"firstName"`
	LastName        string `json:"lastName" form:"lastName"`
	Email           string `json:"email" form:"email"`
	Phone           string `json:"phone" form:"phone"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
	Terms           bool   `json:"terms" form:"terms"`
}

// FullName joins the trimmed first and last names.
func (r Registration) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
}

func (r Registration) Validate() Errors {
	errs := Errors{}
	required := map[string]string{
		"firstName":       r.FirstName,
		"lastName":        r.LastName,
		"email":           r.Email,
		"phone":           r.Phone,
		"password":        r.Password,
		"confirmPassword": r.ConfirmPassword,
	}
	for field, v := range required {
		if blank(v) {
			errs.add(field, "This field is required")
		}
	}
	if !blank(r.Email) && !ValidEmail(strings.TrimSpace(r.Email)) {
		errs.add("email", "Please enter a valid email address")
	}
	if !blank(r.Phone) && !ValidPhone(strings.TrimSpace(r.Phone)) {
		errs.add("phone", "Please enter a valid phone number")
	}
	if r.Password != "" && PasswordStrength(r.Password) < Medium {
		errs.add("password", "Password must be stronger")
	}
	if r.Password != r.ConfirmPassword {
		errs.add("confirmPassword", "Passwords do not match")
	}
	if !r.Terms {
		errs.add("terms", "You must accept the terms of service")
	}
	return errs
}

// ClientLogin is the client sign-in form.
type ClientLogin struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Remember bool   `json:"remember" form:"remember"`
}

func (l ClientLogin) Validate() Errors {
	errs := Errors{}
	email := strings.TrimSpace(l.Email)
	password := strings.TrimSpace(l.Password)
	switch {
	case email == "":
		errs.add("email", "Email is required")
	case !ValidEmail(email):
		errs.add("email", "Please enter a valid email address")
	}
	switch {
	case password == "":
		errs.add("password", "Password is required")
	case len([]rune(password)) < 8:
		errs.add("password", "Password must be at least 8 characters long")
	}
	return errs
}

// AdminLogin is the admin sign-in form.
type AdminLogin struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (l AdminLogin) Validate() Errors {
	errs := Errors{}
	if l.Email == "" || l.Password == "" {
		errs.add("form", "Please fill in all fields")
		return errs
	}
	if !ValidEmail(l.Email) {
		errs.add("email", "Please enter a valid email address")
	}
	return errs
}

// ForgotPassword asks for a reset link.
type ForgotPassword struct {
	Email string `json:"email" form:"email"`
}

func (f ForgotPassword) Validate() Errors {
	errs := Errors{}
	email := strings.TrimSpace(f.Email)
	switch {
	case email == "":
		errs.add("email", "Please enter your email address first")
	case !ValidEmail(email):
		errs.add("email", "Please enter a valid email address")
	}
	return errs
}

// ProfileUpdate is the portal's edit-profile form.
type ProfileUpdate struct {
	Name   string `json:"name" form:"name"`
	Email  string `json:"email" form:"email"`
	Phone  string `json:"phone" form:"phone"`
	School string `json:"school" form:"school"`
}

// Trimmed returns the form with surrounding whitespace removed.
func (p ProfileUpdate) Trimmed() ProfileUpdate {
	return ProfileUpdate{
		Name:   strings.TrimSpace(p.Name),
		Email:  strings.TrimSpace(p.Email),
		Phone:  strings.TrimSpace(p.Phone),
		School: strings.TrimSpace(p.School),
	}
}

func (p ProfileUpdate) Validate() Errors {
	t := p.Trimmed()
	errs := Errors{}
	if t.Name == "" || t.Email == "" || t.Phone == "" || t.School == "" {
		errs.add("form", "Please fill in all fields")
		return errs
	}
	if !ValidEmail(t.Email) {
		errs.add("email", "Please enter a valid email address")
	}
	return errs
}

// PasswordChange is the portal's change-password form.
type PasswordChange struct {
	Current string `json:"currentPassword" form:"currentPassword"`
	New     string `json:"newPassword" form:"newPassword"`
	Confirm string `json:"confirmPassword" form:"confirmPassword"`
}

func (p PasswordChange) Validate() Errors {
	errs := Errors{}
	switch {
	case p.Current == "" || p.New == "" || p.Confirm == "":
		errs.add("form", "Please fill in all password fields")
	case len([]rune(p.New)) < 8:
		errs.add("newPassword", "New password must be at least 8 characters long")
	case p.New != p.Confirm:
		errs.add("confirmPassword", "New passwords do not match")
	}
	return errs
}

// Role is the choice made on the landing page.
type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// LoginPath returns where a role continues to, or "" for unknown roles.
func (r Role) LoginPath() string {
	switch r {
	case RoleClient:
		return "/client/login"
	case RoleAdmin:
		return "/admin/login"
	default:
		return ""
	}
}
