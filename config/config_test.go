package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultMatchesDocumentedDefaults(t *testing.T) {
	c := Default()
	assert.EqualValues(t, 128, c.Translator.LocalsLimit)
	assert.EqualValues(t, 128, c.Translator.ExecsLimit)
	assert.EqualValues(t, 128, c.Translator.BracketsLimit)
	assert.False(t, c.Translator.WarnImplicitDeclaration)
	assert.False(t, c.Translator.NoticeCopy)

	assert.EqualValues(t, 4096, c.Interpreter.CallStackSize)
	assert.EqualValues(t, 1048576, c.Interpreter.CallStackMax)
	assert.EqualValues(t, 4096, c.Interpreter.VarStackSize)
	assert.EqualValues(t, 256, c.Interpreter.BracketsStackSize)
	assert.EqualValues(t, 64, c.Interpreter.BoxedPatterns)
}

func TestFromEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("REFAL_LOCALS_LIMIT", "4")
	t.Setenv("REFAL_WARN_IMPLICIT_DECLARATION", "true")
	t.Setenv("REFAL_CALL_STACK_SIZE", "16")

	c, err := FromEnvironment()
	assert.NoError(t, err)
	assert.EqualValues(t, 4, c.Translator.LocalsLimit)
	assert.True(t, c.Translator.WarnImplicitDeclaration)
	assert.EqualValues(t, 16, c.Interpreter.CallStackSize)

	// Fields left unset still fall back to the documented defaults.
	assert.EqualValues(t, 128, c.Translator.ExecsLimit)
	assert.EqualValues(t, 1048576, c.Interpreter.CallStackMax)
}

func TestFromEnvironmentRejectsUnparsableValue(t *testing.T) {
	t.Setenv("REFAL_LOCALS_LIMIT", "not-a-number")
	_, err := FromEnvironment()
	assert.Error(t, err)
}
