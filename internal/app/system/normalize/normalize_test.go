package normalize_test

import (
	"testing"

	"github.com/dalemusser/missio/internal/app/system/normalize"
	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	assert.Equal(t, "ana@example.com", normalize.Email("  Ana@Example.COM\t"))
	assert.Equal(t, "", normalize.Email("   "))
}

func TestName(t *testing.T) {
	cases := map[string]string{
		"Igreja   Central":     "Igreja Central",
		"  Maria da\tSilva \n": "Maria da Silva",
		"ÉDEN":                 "ÉDEN",
		"":                     "",
		"single":               "single",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalize.Name(in), "Name(%q)", in)
	}
}

func TestRoleAndStatus(t *testing.T) {
	assert.Equal(t, "admin", normalize.Role(" Admin "))
	assert.Equal(t, "approved", normalize.Status("APPROVED"))
	assert.Equal(t, "", normalize.Status(""))
}
