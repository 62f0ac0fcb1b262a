package lgomega

import (
	"fmt"
	"testing"

	"github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failure(f func()) (message string) {
	defer func() {
		if r := recover(); r != nil {
			message = fmt.Sprint(r)
		}
	}()
	f()
	return ""
}

func TestFailedExpectationPanics(t *testing.T) {
	message := failure(func() {
		gomega.Expect("paused").To(gomega.Equal("active"))
	})
	require.NotEmpty(t, message)
	assert.Contains(t, message, "active")
	assert.Contains(t, message, "TestFailedExpectationPanics")
	assert.Contains(t, message, "init_test.go")
	assert.NotContains(t, message, "github.com/onsi/gomega/internal")
}

func TestPassingExpectationIsSilent(t *testing.T) {
	assert.Empty(t, failure(func() {
		gomega.Expect(3).To(gomega.BeNumerically(">", 2))
	}))
}
