package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type userRules struct {
	Name  string `json:"name" validate:"required,min=1,max=15"`
	Email string `json:"email" validate:"required,email"`
	Type  string `json:"user_type" validate:"required,oneof=regular pro"`
}

func TestStruct_Valid(t *testing.T) {
	errs := Struct(userRules{Name: "Ann", Email: "a@b.com", Type: "regular"})
	require.Nil(t, errs)
}

func TestStruct_ReportsEveryViolation(t *testing.T) {
	errs := Struct(userRules{Name: "", Email: "not-an-email", Type: "admin"})
	require.Len(t, errs, 3)

	byField := map[string]FieldError{}
	for _, e := range errs {
		byField[e.Field] = e
	}

	require.Equal(t, "required", byField["name"].Rule)
	require.Equal(t, "email", byField["email"].Rule)
	require.Equal(t, "oneof", byField["user_type"].Rule)
	require.Equal(t, "must be one of: regular, pro", byField["user_type"].Message)
}

func TestStruct_NameLengthBounds(t *testing.T) {
	require.Nil(t, Struct(userRules{Name: "A", Email: "a@b.com", Type: "pro"}))
	require.Nil(t, Struct(userRules{Name: "123456789012345", Email: "a@b.com", Type: "pro"}))

	errs := Struct(userRules{Name: "1234567890123456", Email: "a@b.com", Type: "pro"})
	require.Len(t, errs, 1)
	require.Equal(t, "name", errs[0].Field)
	require.Equal(t, "max", errs[0].Rule)
	require.Equal(t, "must be at most 15 characters long", errs[0].Message)
}

type pwdRules struct {
	Password string `json:"password" validate:"required,pwd"`
}

func TestStruct_PasswordAlias(t *testing.T) {
	require.Nil(t, Struct(pwdRules{Password: "123456"}))
	require.Nil(t, Struct(pwdRules{Password: "123456789012"}))

	errs := Struct(pwdRules{Password: "12345"})
	require.Len(t, errs, 1)
	require.Equal(t, "password", errs[0].Field)

	errs = Struct(pwdRules{Password: "1234567890123"})
	require.Len(t, errs, 1)
	require.Equal(t, "password", errs[0].Field)
}

func TestDetailsFromFieldErrors(t *testing.T) {
	require.Nil(t, DetailsFromFieldErrors(nil))

	details := DetailsFromFieldErrors([]FieldError{
		{Field: "name", Rule: "max", Message: "must be at most 15 characters long"},
	})
	require.Equal(t, map[string]string{"name": "must be at most 15 characters long"}, details)
}

func TestFieldError_Error(t *testing.T) {
	fe := FieldError{Field: "email", Rule: "email", Message: "must be a valid email"}
	require.Equal(t, "email must be a valid email", fe.Error())
}
