package kernelerr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicyErrorMessage(t *testing.T) {
	err := NewPolicyErrorf("Access to path %s is not allowed", "/etc/hosts")
	assert.Contains(t, err.Error(), "not allowed")
}

func TestInstallErrorPreservesStderr(t *testing.T) {
	err := &InstallError{Stderr: "npm ERR! network timeout"}
	assert.Contains(t, err.Error(), "npm ERR! network timeout")
}

func TestAsyncErrorFormatting(t *testing.T) {
	err := &AsyncError{Name: "ReferenceError", Message: "boom"}
	assert.Equal(t, "ReferenceError: boom", err.Error())
}
