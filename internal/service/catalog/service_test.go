package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "water-bottle", slugify("Water Bottle"))
	assert.Equal(t, "acme-750ml", slugify("  Acme 750ml  "))
	assert.Equal(t, "caf-latte", slugify("Café Latte"))
	assert.Equal(t, "a-b-c", slugify("a_b-c"))
	assert.Equal(t, "", slugify("!!!"))
}
