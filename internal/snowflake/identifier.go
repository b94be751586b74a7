package snowflake

import (
	"regexp"
	"strings"

	"frostline/pkg/errors"
)

// Warehouse and monitor DDL cannot be parameterized, so every identifier
// that ends up interpolated into a statement is validated first.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]{0,254}$`)

// ValidateIdentifier checks that a name is a legal unquoted Snowflake
// identifier
func ValidateIdentifier(name string) error {
	if name == "" {
		return errors.New(errors.ErrCodeRequiredField, "identifier is required")
	}
	if !identifierPattern.MatchString(name) {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid identifier: "+name).
			WithSuggestions("Use letters, digits, '_' and '$', starting with a letter or underscore")
	}
	return nil
}

// warehouse sizes as Snowflake spells them in DDL
var warehouseSizes = map[string]bool{
	"XSMALL":   true,
	"SMALL":    true,
	"MEDIUM":   true,
	"LARGE":    true,
	"XLARGE":   true,
	"XXLARGE":  true,
	"XXXLARGE": true,
	"X4LARGE":  true,
	"X5LARGE":  true,
	"X6LARGE":  true,
}

// NormalizeWarehouseSize folds the accepted spellings ("X-Small", "2X-LARGE",
// "xsmall") onto the canonical DDL token
func NormalizeWarehouseSize(size string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(size))
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, " ", "")

	switch s {
	case "2XLARGE":
		s = "XXLARGE"
	case "3XLARGE":
		s = "XXXLARGE"
	case "4XLARGE":
		s = "X4LARGE"
	case "5XLARGE":
		s = "X5LARGE"
	case "6XLARGE":
		s = "X6LARGE"
	}

	if !warehouseSizes[s] {
		return "", errors.New(errors.ErrCodeInvalidInput,
			"invalid warehouse size: "+size).
			WithSuggestions("Valid sizes: XSMALL, SMALL, MEDIUM, LARGE, XLARGE, XXLARGE, XXXLARGE, X4LARGE, X5LARGE, X6LARGE")
	}
	return s, nil
}

// escapeStringLiteral doubles single quotes for safe embedding in a SQL
// string literal (LIKE patterns, comments)
func escapeStringLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
