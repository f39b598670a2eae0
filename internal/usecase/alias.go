package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vadimbarashkov/shortlink/internal/entity"
)

const aliasField = "customPath"

var (
	aliasCharsetRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	digitsRe       = regexp.MustCompile(`^[0-9]+$`)
)

// AliasPolicy is the configurable rule set applied to user-chosen aliases.
type AliasPolicy struct {
	MinLength    int
	MaxLength    int
	AllowNumeric bool
	Reserved     []string
}

// DefaultAliasPolicy returns the policy used when nothing is configured.
func DefaultAliasPolicy() AliasPolicy {
	return AliasPolicy{
		MinLength: 3,
		MaxLength: 30,
		Reserved:  []string{"api", "about", "admin", "database", "login", "register", "settings", "docs", "swagger"},
	}
}

// Validate returns a *entity.ValidationError describing the first rule alias breaks.
func (p AliasPolicy) Validate(alias string) error {
	if !aliasCharsetRe.MatchString(alias) {
		return entity.NewValidationError(aliasField,
			"custom path may only contain letters, digits, hyphens and underscores")
	}

	if p.isReserved(alias) {
		return entity.NewValidationError(aliasField, "custom path is reserved")
	}

	if !p.AllowNumeric && isNumeric(alias) {
		return entity.NewValidationError(aliasField, "custom path must not be purely numeric")
	}

	if n := len(alias); n < p.MinLength || n > p.MaxLength {
		return entity.NewValidationError(aliasField,
			fmt.Sprintf("custom path must be between %d and %d characters", p.MinLength, p.MaxLength))
	}

	return nil
}

// IsCandidate reports whether identifier could be a stored alias at all.
// Length bounds are not checked: aliases accepted under earlier bounds stay resolvable.
func (p AliasPolicy) IsCandidate(identifier string) bool {
	return aliasCharsetRe.MatchString(identifier)
}

func (p AliasPolicy) isReserved(alias string) bool {
	for _, r := range p.Reserved {
		if strings.EqualFold(r, alias) {
			return true
		}
	}
	return false
}

func isNumeric(s string) bool {
	return digitsRe.MatchString(s)
}
