package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGet(t *testing.T) {
	gokeyring.MockInit()

	tests := []struct {
		name  Secret
		value string
	}{
		{ConnectionString, "postgres://wellkept@localhost:5432/wellkept?sslmode=disable"},
		{APIToken, "s3cret-token"},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			if err := Set(tt.name, tt.value); err != nil {
				t.Fatalf("Set() failed: %v", err)
			}
			got, err := Get(tt.name)
			if err != nil {
				t.Fatalf("Get() failed: %v", err)
			}
			if got != tt.value {
				t.Errorf("Get() = %q, want %q", got, tt.value)
			}
		})
	}

	conn, err := GetConnectionString()
	if err != nil || conn != tests[0].value {
		t.Errorf("GetConnectionString() = %q, %v", conn, err)
	}
}

func TestSetEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := Set(APIToken, ""); err == nil {
		t.Error("Set() with empty value should return an error")
	}
}

func TestGetNotFound(t *testing.T) {
	gokeyring.MockInit()
	_ = Delete(ConnectionString)

	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetConnectionString() error = %v, want %v", err, ErrNotFound)
	}
}

func TestDelete(t *testing.T) {
	gokeyring.MockInit()

	if err := Set(APIToken, "token"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := Delete(APIToken); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := Get(APIToken); !errors.Is(err, ErrNotFound) {
		t.Errorf("after Delete(), Get() error = %v, want %v", err, ErrNotFound)
	}
	if err := Delete(APIToken); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want %v", err, ErrNotFound)
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()

	if !IsAvailable() {
		t.Error("IsAvailable() = false, want true in mock mode")
	}
}
