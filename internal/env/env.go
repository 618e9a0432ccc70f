package env

import (
	"encoding"
	"fmt"
	"strings"
)

// Environment selects deployment behavior of the server. It is read from
// ENV, so unknown values fail config parsing instead of silently running
// as development.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

var _ encoding.TextUnmarshaler = (*Environment)(nil)

func (e *Environment) UnmarshalText(text []byte) error {
	switch v := Environment(strings.ToLower(strings.TrimSpace(string(text)))); v {
	case Development, Production:
		*e = v
		return nil
	case "dev":
		*e = Development
		return nil
	case "prod":
		*e = Production
		return nil
	default:
		return fmt.Errorf("invalid environment %q (valid: development, production)", text)
	}
}

func (e Environment) IsDevelopment() bool { return e == Development }
func (e Environment) IsProduction() bool  { return e == Production }
