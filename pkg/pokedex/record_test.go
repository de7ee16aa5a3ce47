package pokedex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"bulbasaur":     "Bulbasaur",
		"mr-mime":       "Mr Mime",
		"pikachu-gmax":  "Pikachu Gmax",
		"tapu-koko":     "Tapu Koko",
		"deoxys-normal": "Deoxys Normal",
		"ho-oh":         "Ho Oh",
	}

	for in, want := range tests {
		assert.Equal(t, want, DisplayName(in), in)
	}
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "Pikachu", BaseName("pikachu-gmax"))
	assert.Equal(t, "Bulbasaur", BaseName("bulbasaur"))
	assert.Equal(t, "Mr", BaseName("mr-mime"))
}

func TestIsBase(t *testing.T) {
	assert.True(t, (&Record{Name: "Pikachu", BaseName: "Pikachu"}).IsBase())
	assert.False(t, (&Record{Name: "Pikachu Gmax", BaseName: "Pikachu"}).IsBase())
	// Multi-word species never count as a base under this rule
	assert.False(t, (&Record{Name: "Mr Mime", BaseName: "Mr"}).IsBase())
}

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"Bulbasaur":    "bulbasaur",
		"Mr Mime":      "mr_mime",
		"pikachu-gmax": "pikachu_gmax",
		"Farfetch'd":   "farfetchd",
		"Nidoran♀":     "nidoran",
		"Type: Null":   "type_null",
		"Porygon2":     "porygon2",
	}

	for in, want := range tests {
		assert.Equal(t, want, SanitizeName(in), in)
	}
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "Grass", TypeName("grass"))
}
