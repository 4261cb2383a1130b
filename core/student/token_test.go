package student

import (
	"testing"
	"time"
)

func TestMakeVerifyToken(t *testing.T) {
	secretKey = []byte("secret")
	resetTimeout = 3 * 24 * time.Hour

	now := time.Now()
	std := Student{
		ID:        "0c4e0c58-6b71-4e2b-a41f-3b1f9bb7d90f",
		Email:     "t@test.test",
		CreatedAt: now,
		UpdatedAt: now,
	}
	_ = std.SetPassword("pwd")

	validToken, err := MakeToken(std)
	if err != nil {
		t.Fatalf("MakeToken() failed: %v", err)
	}

	// generate an expired token
	dayLate := resetTimeout + (24 * time.Hour)
	NowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken, err := MakeToken(std)
	if err != nil {
		t.Fatalf("MakeToken() failed: %v", err)
	}
	NowFunc = time.Now // reset

	tests := []struct {
		name    string
		std     Student
		token   string
		wantErr error
	}{
		{name: "no token", std: std, wantErr: errInvalidToken},
		{name: "invalid parts len", std: std, token: "lmaooolol", wantErr: errInvalidToken},
		{name: "invalid base32", std: std, token: "hahaha-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid timestamp", std: std, token: "NRXWY-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid token", std: std, token: "HE4TS-sigsig-sig", wantErr: errInvalidToken},
		{name: "expired token", std: std, token: expiredToken, wantErr: errTokenExpired},
		{name: "valid token", std: std, token: validToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := verifyToken(tt.std, tt.token); err != tt.wantErr {
				t.Errorf("verifyToken() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
