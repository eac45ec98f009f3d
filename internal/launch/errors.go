package launch

import (
	"errors"
	"fmt"
)

// ErrConfiguration is wrapped by every launch configuration rejection.
var ErrConfiguration = errors.New("launch: invalid configuration")

// Rule identifies which structural precondition a configuration violated.
type Rule string

const (
	RulePositive     Rule = "n, p and q must be positive"
	RuleTileFits     Rule = "p <= n"
	RuleWorkerLimit  Rule = "p*q < max workers per group"
	RuleColumnsFit   Rule = "q <= p"
	RuleEvenTiles    Rule = "n mod p == 0"
	RuleEvenColumns  Rule = "p mod q == 0"
	RuleSourceFits   Rule = "p <= source count"
	RuleEvenSrcTiles Rule = "source count mod p == 0"
)

// ConfigurationError reports a rejected (n, p, q) triple. It is raised
// before any kernel runs and is never worth retrying.
type ConfigurationError struct {
	N    int
	P    int
	Q    int
	Rule Rule
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("launch: n=%d p=%d q=%d violates %s", e.N, e.P, e.Q, e.Rule)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}
