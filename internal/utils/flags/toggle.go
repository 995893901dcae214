package flags

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

const (
	toggleTrueCanonicalValue               = "true"
	toggleFalseCanonicalValue              = "false"
	toggleYesLiteral                       = "yes"
	toggleNoLiteral                        = "no"
	toggleOnLiteral                        = "on"
	toggleOffLiteral                       = "off"
	toggleOneLiteral                       = "1"
	toggleZeroLiteral                      = "0"
	toggleTLiteral                         = "t"
	toggleFLiteral                         = "f"
	toggleYLiteral                         = "y"
	toggleNLiteral                         = "n"
	toggleParseErrorTemplate               = "invalid toggle value %q"
	toggleArgumentTruePlaceholderConstant  = "<YES|no>"
	toggleArgumentFalsePlaceholderConstant = "<yes|NO>"
	negatedTogglePrefixConstant            = "no-"
	longFlagPrefixConstant                 = "--"
	shortFlagPrefixConstant                = "-"
	flagValueSeparatorConstant             = "="
	argumentTerminatorConstant             = "--"
)

var (
	trueLiteralSet = map[string]struct{}{
		toggleTrueCanonicalValue: {},
		toggleYesLiteral:         {},
		toggleOnLiteral:          {},
		toggleOneLiteral:         {},
		toggleTLiteral:           {},
		toggleYLiteral:           {},
	}
	falseLiteralSet = map[string]struct{}{
		toggleFalseCanonicalValue: {},
		toggleNoLiteral:           {},
		toggleOffLiteral:          {},
		toggleZeroLiteral:         {},
		toggleFLiteral:            {},
		toggleNLiteral:            {},
	}

	toggleFlagRegistryMutex sync.RWMutex
	toggleFlagNames         = map[string]struct{}{}
	toggleFlagShorthands    = map[string]struct{}{}
)

// AddToggleFlag registers a boolean toggle flag that accepts yes/no style values.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil {
		return
	}
	if len(name) == 0 {
		return
	}

	toggleValue := newToggleFlagValue(defaultValue, target, false)
	registerToggleValue(flagSet, toggleValue, name, shorthand, formatToggleUsage(usage, defaultValue))
}

// AddNegatableToggleFlag registers the pair --name and --no-name bound to the same target.
// Both flags may appear several times; the last occurrence on the command line decides the value.
func AddNegatableToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string, negatedUsage string) {
	if flagSet == nil {
		return
	}
	if len(name) == 0 {
		return
	}

	if target != nil {
		*target = defaultValue
	}
	registerToggleValue(flagSet, &toggleFlagValue{currentValue: defaultValue, target: target}, name, "", usage)
	registerToggleValue(flagSet, &toggleFlagValue{currentValue: !defaultValue, target: target, negated: true}, negatedTogglePrefixConstant+name, "", negatedUsage)
}

func registerToggleValue(flagSet *pflag.FlagSet, toggleValue *toggleFlagValue, name string, shorthand string, usage string) {
	if len(shorthand) > 0 {
		flagSet.VarP(toggleValue, name, shorthand, usage)
	} else {
		flagSet.Var(toggleValue, name, usage)
	}

	flag := flagSet.Lookup(name)
	if flag == nil {
		return
	}
	flag.NoOptDefVal = toggleTrueCanonicalValue

	registerToggleFlag(name, shorthand)
}

func formatToggleUsage(description string, defaultValue bool) string {
	placeholder := toggleArgumentFalsePlaceholderConstant
	if defaultValue {
		placeholder = toggleArgumentTruePlaceholderConstant
	}
	trimmed := strings.TrimSpace(description)
	if len(trimmed) == 0 {
		return fmt.Sprintf("`%s`", placeholder)
	}
	return fmt.Sprintf("`%s` %s", placeholder, trimmed)
}

// NormalizeToggleArguments rewrites "--flag value" into "--flag=value" for toggle flags
// when the following argument is a recognised yes/no literal.
func NormalizeToggleArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(arguments))
	index := 0
	for index < len(arguments) {
		current := arguments[index]
		if current == argumentTerminatorConstant {
			normalized = append(normalized, arguments[index:]...)
			break
		}

		normalizedArgument, consumed := normalizeToggleArgument(current, arguments, index)
		if consumed > 0 {
			normalized = append(normalized, normalizedArgument)
			index += consumed
			continue
		}

		normalized = append(normalized, current)
		index++
	}

	return normalized
}

type toggleFlagValue struct {
	currentValue bool
	target       *bool
	negated      bool
}

func newToggleFlagValue(defaultValue bool, target *bool, negated bool) *toggleFlagValue {
	if target != nil {
		*target = defaultValue
	}
	return &toggleFlagValue{currentValue: defaultValue, target: target, negated: negated}
}

func (value *toggleFlagValue) Set(rawValue string) error {
	parsedValue, parseError := parseToggleValue(rawValue)
	if parseError != nil {
		return parseError
	}

	value.currentValue = parsedValue
	if value.target != nil {
		*value.target = parsedValue != value.negated
	}

	return nil
}

func (value *toggleFlagValue) String() string {
	if value == nil {
		return toggleFalseCanonicalValue
	}
	if value.currentValue {
		return toggleTrueCanonicalValue
	}
	return toggleFalseCanonicalValue
}

func (value *toggleFlagValue) Type() string {
	return "bool"
}

func parseToggleValue(rawValue string) (bool, error) {
	trimmedValue := strings.TrimSpace(rawValue)
	if len(trimmedValue) == 0 {
		trimmedValue = toggleTrueCanonicalValue
	}

	normalizedValue := strings.ToLower(trimmedValue)
	if _, isTrue := trueLiteralSet[normalizedValue]; isTrue {
		return true, nil
	}
	if _, isFalse := falseLiteralSet[normalizedValue]; isFalse {
		return false, nil
	}

	return false, fmt.Errorf(toggleParseErrorTemplate, rawValue)
}

func isToggleLiteral(value string) bool {
	_, parseError := parseToggleValue(value)
	return parseError == nil && len(strings.TrimSpace(value)) > 0
}

func registerToggleFlag(name string, shorthand string) {
	toggleFlagRegistryMutex.Lock()
	defer toggleFlagRegistryMutex.Unlock()
	toggleFlagNames[name] = struct{}{}
	if len(shorthand) > 0 {
		toggleFlagShorthands[shorthand] = struct{}{}
	}
}

func normalizeToggleArgument(current string, arguments []string, index int) (string, int) {
	name, hasInlineValue, isLong := splitFlagArgument(current)
	if len(name) == 0 {
		return "", 0
	}
	if isLong && !isToggleName(name) {
		return "", 0
	}
	if !isLong && !isToggleShorthand(name) {
		return "", 0
	}
	if hasInlineValue {
		return current, 1
	}
	if index+1 >= len(arguments) {
		return current, 1
	}
	nextValue := arguments[index+1]
	if startsWithDash(nextValue) || !isToggleLiteral(nextValue) {
		return current, 1
	}
	return current + flagValueSeparatorConstant + nextValue, 2
}

// splitFlagArgument extracts the flag name from "--name", "--name=value", "-n", or "-n=value".
func splitFlagArgument(argument string) (string, bool, bool) {
	var trimmed string
	isLong := false
	switch {
	case strings.HasPrefix(argument, longFlagPrefixConstant):
		trimmed = strings.TrimPrefix(argument, longFlagPrefixConstant)
		isLong = true
	case strings.HasPrefix(argument, shortFlagPrefixConstant):
		trimmed = strings.TrimPrefix(argument, shortFlagPrefixConstant)
	default:
		return "", false, false
	}
	if len(trimmed) == 0 {
		return "", false, false
	}

	name := trimmed
	splitIndex := strings.Index(trimmed, flagValueSeparatorConstant)
	if splitIndex >= 0 {
		name = trimmed[:splitIndex]
	}
	if !isLong && len(name) != 1 {
		return "", false, false
	}
	return name, splitIndex >= 0, isLong
}

func isToggleName(name string) bool {
	toggleFlagRegistryMutex.RLock()
	defer toggleFlagRegistryMutex.RUnlock()
	_, exists := toggleFlagNames[name]
	return exists
}

func isToggleShorthand(shorthand string) bool {
	toggleFlagRegistryMutex.RLock()
	defer toggleFlagRegistryMutex.RUnlock()
	_, exists := toggleFlagShorthands[shorthand]
	return exists
}

func startsWithDash(value string) bool {
	return strings.HasPrefix(value, shortFlagPrefixConstant)
}
