package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0, Percentage(0, 0))
	assert.Equal(t, 0, Percentage(3, 0))
	assert.Equal(t, 0, Percentage(0, 5))
	assert.Equal(t, 60, Percentage(3, 5))
	assert.Equal(t, 100, Percentage(5, 5))
	// 四舍五入
	assert.Equal(t, 33, Percentage(1, 3))
	assert.Equal(t, 67, Percentage(2, 3))
}
