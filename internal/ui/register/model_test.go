package register

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/marketplace/internal/model"
)

func validRequest() model.RegisterRequest {
	return model.RegisterRequest{
		Email:    "ada@example.com",
		Password: "secret",
		Name:     "Ada",
		Surname:  "Lovelace",
		Type:     model.RoleCustomer,
	}
}

func TestValidate_Customer(t *testing.T) {
	assert.NoError(t, Validate(validRequest()))
}

func TestValidate_MerchantNeedsCompany(t *testing.T) {
	req := validRequest()
	req.Type = model.RoleMerchant

	err := Validate(req)
	require.Error(t, err)
	assert.Equal(t, "Company name is required", err.Error())

	req.CompanyName = "Acme"
	assert.NoError(t, Validate(req))
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.RegisterRequest)
		want   string
	}{
		{"missing email", func(r *model.RegisterRequest) { r.Email = "" }, "Email is required"},
		{"bad email", func(r *model.RegisterRequest) { r.Email = "not-an-email" }, "Email is not a valid email address"},
		{"missing password", func(r *model.RegisterRequest) { r.Password = "" }, "Password is required"},
		{"missing surname", func(r *model.RegisterRequest) { r.Surname = "" }, "Surname is required"},
		{"unknown type", func(r *model.RegisterRequest) { r.Type = "ADMIN" }, "Account type must be one of: CUSTOMER MERCHANT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			err := Validate(req)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestFormBindings_CompanyOnlyForMerchants(t *testing.T) {
	fb := &formBindings{
		role:    model.RoleCustomer,
		email:   " ada@example.com ",
		company: "Acme",
	}
	assert.Empty(t, fb.request().CompanyName)
	assert.Equal(t, "ada@example.com", fb.request().Email)

	fb.role = model.RoleMerchant
	assert.Equal(t, "Acme", fb.request().CompanyName)
}
