//go:build integration

package integration

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"testing"

	"github.com/eventup/accounts/internal/testutil"
	"github.com/stretchr/testify/require"
)

const testPassword = "password123"

// RandomEmail returns a unique email address for test isolation.
func RandomEmail() string {
	return fmt.Sprintf("user%d@example.com", rand.Int63())
}

// RandomCPF returns a structurally valid CPF with correct check digits.
func RandomCPF() string {
	digits := make([]int, 11)
	for i := 0; i < 9; i++ {
		digits[i] = rand.Intn(10)
	}
	digits[9] = cpfCheckDigit(digits[:9], 10)
	digits[10] = cpfCheckDigit(digits[:10], 11)

	var cpf string
	for _, d := range digits {
		cpf += fmt.Sprintf("%d", d)
	}
	return cpf
}

func cpfCheckDigit(digits []int, startWeight int) int {
	sum := 0
	for i, d := range digits {
		sum += d * (startWeight - i)
	}
	rest := sum * 10 % 11
	if rest == 10 {
		rest = 0
	}
	return rest
}

type profilePayload struct {
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

type userPayload struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Email    string           `json:"email"`
	Phone    string           `json:"phone"`
	Profiles []profilePayload `json:"profiles"`
}

// registerUser registers a fresh user with the given roles and returns the
// created payload plus its credentials.
func registerUser(t *testing.T, client *testutil.Client, roles ...string) (userPayload, string) {
	t.Helper()

	email := RandomEmail()
	resp, err := client.POST("/api/v1/users", map[string]interface{}{
		"name":     "Ana Souza",
		"email":    email,
		"cpf":      RandomCPF(),
		"phone":    "11987654321",
		"password": testPassword,
		"roles":    roles,
	})
	require.NoError(t, err)

	body := testutil.ReadBody(t, resp)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)

	var result struct {
		Data userPayload `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &result))
	return result.Data, email
}
