package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsHash(t *testing.T) {
	tests := []struct {
		name  string
		hash  string
		valid bool
	}{
		{
			name:  "32 alphanumeric",
			hash:  "a1B2c3D4e5F6a1B2c3D4e5F6a1B2c3D4",
			valid: true,
		},
		{
			name:  "33 alphanumeric",
			hash:  "a1B2c3D4e5F6a1B2c3D4e5F6a1B2c3D4e",
			valid: true,
		},
		{
			name:  "too short",
			hash:  "short",
			valid: false,
		},
		{
			name:  "34 characters",
			hash:  "a1B2c3D4e5F6a1B2c3D4e5F6a1B2c3D4ef",
			valid: false,
		},
		{
			name:  "non-alphanumeric",
			hash:  "a1B2c3D4e5F6a1B2c3D4e5F6a1B2c3D-",
			valid: false,
		},
		{
			name:  "empty",
			hash:  "",
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsHash(tt.hash))
		})
	}
}

func TestStruct_FieldNamesAndReasons(t *testing.T) {
	type item struct {
		Product  string `json:"product" validate:"required,productref"`
		Quantity int64  `json:"quantity" validate:"required,gt=0"`
	}
	type req struct {
		Hash     string  `json:"hash" validate:"required,idemhash"`
		Number   string  `json:"number" validate:"omitempty,extref"`
		Email    string  `json:"email" validate:"omitempty,email_basic"`
		Currency string  `json:"currency" validate:"omitempty,currency3"`
		First    string  `json:"first_name" validate:"omitempty,alphaname"`
		Amount   float64 `json:"amount" validate:"required,gt=0"`
		Type     string  `json:"type" validate:"required,oneof=deposit withdraw refund"`
		Items    []item  `json:"items" validate:"omitempty,dive"`
	}

	t.Run("valid payload", func(t *testing.T) {
		errs := Struct(req{
			Hash:     "a1B2c3D4e5F6a1B2c3D4e5F6a1B2c3D4",
			Number:   "txn_42-A",
			Email:    "donor@example.org",
			Currency: "EUR",
			First:    "Maria",
			Amount:   10.5,
			Type:     "deposit",
			Items: []item{
				{Product: "dog-food-5kg", Quantity: 2},
			},
		})
		require.Nil(t, errs)
	})

	t.Run("every broken field is named", func(t *testing.T) {
		errs := Struct(req{
			Hash:     "short",
			Number:   "no spaces allowed",
			Email:    "not-an-email",
			Currency: "eur",
			First:    "M4ria",
			Amount:   -1,
			Type:     "bogus",
			Items: []item{
				{Product: "dog food", Quantity: 0},
			},
		})
		require.NotNil(t, errs)

		assert.Equal(t, "must be 32-33 alphanumeric characters", errs["hash"])
		assert.Equal(t, "may contain only letters, digits, '-' and '_'", errs["number"])
		assert.Equal(t, "invalid email address", errs["email"])
		assert.Equal(t, "must be a 3-letter uppercase code", errs["currency"])
		assert.Equal(t, "may contain only letters", errs["first_name"])
		assert.Equal(t, "must be greater than 0", errs["amount"])
		assert.Equal(t, "must be one of: deposit, withdraw, refund", errs["type"])
		assert.Equal(t, "may contain only letters, digits and '-'", errs["items[0].product"])
		assert.Equal(t, "is required", errs["items[0].quantity"])
	})

	t.Run("missing required fields", func(t *testing.T) {
		errs := Struct(req{})
		require.NotNil(t, errs)
		assert.Equal(t, "is required", errs["hash"])
		assert.Equal(t, "is required", errs["amount"])
		assert.Equal(t, "is required", errs["type"])
		assert.NotContains(t, errs, "email")
		assert.NotContains(t, errs, "currency")
	})
}

func TestNormalizeEnum(t *testing.T) {
	assert.Equal(t, "deposit", NormalizeEnum(" DEPOSIT "))
	assert.Equal(t, "paypal", NormalizeEnum("PayPal"))
}

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		valid bool
	}{
		{name: "rfc3339", in: "2025-07-20T00:00:00+00:01", valid: true},
		{name: "no timezone", in: "2025-07-20T10:30:00", valid: true},
		{name: "date only", in: "2025-07-20", valid: true},
		{name: "garbage", in: "yesterday", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDateTime(tt.in)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
