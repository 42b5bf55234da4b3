package model

// Role identifies the kind of account a session belongs to.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleMerchant Role = "MERCHANT"
)

// Session is the persisted authentication state returned by login or
// registration. It is never mutated in place; logout discards it.
type Session struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
	Email     string `json:"email"`
	Type      Role   `json:"type"`
}

// IsCustomer reports whether the session belongs to a customer account.
func (s *Session) IsCustomer() bool {
	return s != nil && s.Type == RoleCustomer
}

// IsMerchant reports whether the session belongs to a merchant account.
func (s *Session) IsMerchant() bool {
	return s != nil && s.Type == RoleMerchant
}

// BearerToken returns the token, or "" for a nil session.
func (s *Session) BearerToken() string {
	if s == nil {
		return ""
	}
	return s.Token
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register. CompanyName is only
// used for merchant accounts.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	Type        Role   `json:"type"`
	CompanyName string `json:"companyName"`
}

// AuthResponse is returned by both auth endpoints.
type AuthResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
	Email     string `json:"email"`
	Type      Role   `json:"type"`
}

// ToSession builds the session to persist after a successful auth call.
// Missing fields fall back to what the user typed.
func (r AuthResponse) ToSession(email string, fallback Role) Session {
	s := Session{
		Token:     r.Token,
		TokenType: r.TokenType,
		Email:     r.Email,
		Type:      r.Type,
	}
	if s.Email == "" {
		s.Email = email
	}
	if s.Type == "" {
		s.Type = fallback
	}
	if s.TokenType == "" {
		s.TokenType = "Bearer"
	}
	return s
}
