package services_test

import (
	"testing"

	"eshop/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	const owner = "64b7f0c2a1e4d3f5b6c7d8e9"
	const other = "64b7f0c2a1e4d3f5b6c7d8ea"

	admin := services.Requester{UserID: other, IsAdmin: true}
	ownerReq := services.Requester{UserID: owner}
	stranger := services.Requester{UserID: other}
	anonymous := services.Requester{}

	tests := []struct {
		name      string
		requester services.Requester
		cap       services.Capability
		allowed   bool
	}{
		{"admin only allows admin", admin, services.AdminOnly(), true},
		{"admin only denies owner", ownerReq, services.AdminOnly(), false},
		{"admin or owner allows admin", admin, services.AdminOrOwner(owner), true},
		{"admin or owner allows owner", ownerReq, services.AdminOrOwner(owner), true},
		{"admin or owner denies stranger", stranger, services.AdminOrOwner(owner), false},
		{"empty owner never matches empty requester", anonymous, services.AdminOrOwner(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := services.Authorize(tt.requester, tt.cap)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, services.ErrForbidden)
			}
		})
	}

	assert.True(t, services.IsAdministrator(admin))
	assert.False(t, services.IsAdministrator(ownerReq))
	assert.True(t, services.IsAdministratorOrOwner(ownerReq, owner))
	assert.False(t, services.IsAdministratorOrOwner(stranger, owner))
}
