// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codeForm struct {
	Code string `validate:"required,agent_code"`
}

type categoryForm struct {
	Category string `validate:"required,category_code"`
}

func TestValidateAgentCode(t *testing.T) {
	valid := []string{"HQ", "AGENT_01", "A2", "SUB_AGENT_KR"}
	for _, code := range valid {
		assert.NoError(t, ValidateStruct(codeForm{Code: code}), code)
	}

	invalid := []string{"a", "hq", "AGENT-01", "AGENT 01", "A", "한국"}
	for _, code := range invalid {
		assert.Error(t, ValidateStruct(codeForm{Code: code}), code)
	}
}

func TestValidateCategoryCode(t *testing.T) {
	valid := []string{"casino", "sports", "slot_live", "p2p"}
	for _, category := range valid {
		assert.NoError(t, ValidateStruct(categoryForm{Category: category}), category)
	}

	invalid := []string{"Casino", "2sports", "_slot", "live games", "c"}
	for _, category := range invalid {
		assert.Error(t, ValidateStruct(categoryForm{Category: category}), category)
	}
}

func TestGetValidationErrors(t *testing.T) {
	err := ValidateStruct(codeForm{})
	require.Error(t, err)

	errors := GetValidationErrors(err)
	require.Len(t, errors, 1)
	assert.Equal(t, "code", errors[0].Field)
	assert.Equal(t, "required", errors[0].Tag)
	assert.Equal(t, "Code is required", errors[0].Message)
}

func TestGetValidationErrorsIgnoresOtherErrors(t *testing.T) {
	assert.Empty(t, GetValidationErrors(assert.AnError))
}
