package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCardUIDPattern(t *testing.T) {
	valid := []string{"RF001234", "RF000000", "RF999999"}
	for _, uid := range valid {
		assert.True(t, cardUIDRe.MatchString(uid), uid)
	}

	invalid := []string{"", "RF12345", "RF1234567", "rf001234", "XX001234", "RF00123A", "001234RF"}
	for _, uid := range invalid {
		assert.False(t, cardUIDRe.MatchString(uid), uid)
	}
}

func TestPINPattern(t *testing.T) {
	assert.True(t, pinRe.MatchString("123456"))
	assert.True(t, pinRe.MatchString("000000"))

	invalid := []string{"", "12345", "1234567", "12345a", "abcdef", " 123456"}
	for _, pin := range invalid {
		assert.False(t, pinRe.MatchString(pin), pin)
	}
}

// --- SanitizeStruct tests ---

func TestSanitizeStruct_TrimsWhitespace(t *testing.T) {
	req := RegisterCardRequest{
		CardUID:   "  RF001234  ",
		PIN:       " 123456 ",
		OwnerName: " Budi Santoso ",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "RF001234", req.CardUID)
	assert.Equal(t, "123456", req.PIN)
	assert.Equal(t, "Budi Santoso", req.OwnerName)
}

func TestSanitizeStruct_EscapesHTML(t *testing.T) {
	req := ProductRequest{
		Name: "Nasi <script>alert('x')</script> Gudeg",
	}
	SanitizeStruct(&req)

	assert.Contains(t, req.Name, "&lt;script&gt;")
	assert.NotContains(t, req.Name, "<script>")
}

func TestSanitizeStruct_HandlesPointerString(t *testing.T) {
	phone := "  081234567890  "
	req := RegisterCardRequest{
		CardUID:   "RF001234",
		PIN:       "123456",
		OwnerName: "Budi",
		Phone:     &phone,
	}
	SanitizeStruct(&req)

	assert.Equal(t, "081234567890", *req.Phone)
}

func TestSanitizeStruct_NilPointerIsNoOp(t *testing.T) {
	req := RegisterCardRequest{
		CardUID:   "RF001234",
		PIN:       "123456",
		OwnerName: "Budi",
		Phone:     nil,
	}
	SanitizeStruct(&req)
	assert.Nil(t, req.Phone)
}

func TestSanitizeStruct_NonPointerIsNoOp(t *testing.T) {
	req := LoginRequest{Email: "  a@b.com  "}
	SanitizeStruct(req)
	assert.Equal(t, "  a@b.com  ", req.Email)
}
