// Package config resolves the translator's and interpreter's tunable limits
// from their spec-mandated defaults and environment variables; no CLI flag
// overrides them.
package config

import "github.com/caarlos0/env/v6"

// Translator holds the translator's configurable limits and warning/notice
// toggles (spec.md §4.3.7).
type Translator struct {
	LocalsLimit   uint `env:"REFAL_LOCALS_LIMIT" envDefault:"128"`
	ExecsLimit    uint `env:"REFAL_EXECS_LIMIT" envDefault:"128"`
	BracketsLimit uint `env:"REFAL_BRACKETS_LIMIT" envDefault:"128"`

	WarnImplicitDeclaration bool `env:"REFAL_WARN_IMPLICIT_DECLARATION" envDefault:"false"`
	NoticeCopy              bool `env:"REFAL_NOTICE_COPY" envDefault:"false"`
}

// Interpreter holds the interpreter's configurable limits (spec.md §4's
// refal_interpreter_config).
type Interpreter struct {
	CallStackSize     uint `env:"REFAL_CALL_STACK_SIZE" envDefault:"4096"`
	CallStackMax      uint `env:"REFAL_CALL_STACK_MAX" envDefault:"1048576"`
	VarStackSize      uint `env:"REFAL_VAR_STACK_SIZE" envDefault:"4096"`
	BracketsStackSize uint `env:"REFAL_BRACKETS_STACK_SIZE" envDefault:"256"`
	BoxedPatterns     uint `env:"REFAL_BOXED_PATTERNS" envDefault:"64"`
}

// Config bundles both halves of the toolchain's configuration.
type Config struct {
	Translator  Translator
	Interpreter Interpreter
}

// Default returns a Config populated with spec.md's documented defaults,
// without consulting the environment.
func Default() Config {
	var c Config
	// env.Parse applies envDefault tags even when the corresponding
	// environment variable is unset, so parsing against an empty
	// lookup function yields exactly the documented defaults.
	_ = env.Parse(&c.Translator, env.Options{Environment: map[string]string{}})
	_ = env.Parse(&c.Interpreter, env.Options{Environment: map[string]string{}})
	return c
}

// FromEnvironment returns a Config with every field overridable by the
// corresponding REFAL_* environment variable, falling back to spec.md's
// defaults when unset.
func FromEnvironment() (Config, error) {
	var c Config
	if err := env.Parse(&c.Translator); err != nil {
		return Config{}, err
	}
	if err := env.Parse(&c.Interpreter); err != nil {
		return Config{}, err
	}
	return c, nil
}
