package flags

import (
	"fmt"
	"sync"

	"github.com/spf13/pflag"
)

const (
	missingArgumentTemplateConstant = "Missing argument for %s"
)

var (
	multiValueRegistryMutex   sync.RWMutex
	multiValueFlagNames       = map[string]struct{}{}
	multiValueFlagByShorthand = map[string]string{}
)

// MissingArgumentError reports a multi-value flag that was not followed by any value.
type MissingArgumentError struct {
	FlagName string
}

// Error describes the missing argument.
func (missingArgumentError MissingArgumentError) Error() string {
	return fmt.Sprintf(missingArgumentTemplateConstant, missingArgumentError.FlagName)
}

// AddMultiValueFlag registers a repeatable string flag that also accepts several
// space separated values after a single occurrence ("--repo a b").
func AddMultiValueFlag(flagSet *pflag.FlagSet, target *[]string, name string, shorthand string, usage string) {
	if flagSet == nil || target == nil || len(name) == 0 {
		return
	}

	flagSet.StringArrayVarP(target, name, shorthand, nil, usage)

	multiValueRegistryMutex.Lock()
	defer multiValueRegistryMutex.Unlock()
	multiValueFlagNames[name] = struct{}{}
	if len(shorthand) > 0 {
		multiValueFlagByShorthand[shorthand] = name
	}
}

// NormalizeArguments expands multi-value flags into one "--name=value" per value and
// then applies NormalizeToggleArguments. Values are consumed until the next argument
// starting with a dash.
func NormalizeArguments(arguments []string) ([]string, error) {
	if len(arguments) == 0 {
		return nil, nil
	}

	expanded := make([]string, 0, len(arguments))
	index := 0
	for index < len(arguments) {
		current := arguments[index]
		if current == argumentTerminatorConstant {
			expanded = append(expanded, arguments[index:]...)
			break
		}

		flagName, matched := resolveMultiValueFlag(current)
		if !matched {
			expanded = append(expanded, current)
			index++
			continue
		}

		valueIndex := index + 1
		for valueIndex < len(arguments) && !startsWithDash(arguments[valueIndex]) {
			expanded = append(expanded, longFlagPrefixConstant+flagName+flagValueSeparatorConstant+arguments[valueIndex])
			valueIndex++
		}
		if valueIndex == index+1 {
			return nil, MissingArgumentError{FlagName: current}
		}
		index = valueIndex
	}

	return NormalizeToggleArguments(expanded), nil
}

// resolveMultiValueFlag reports the long name for a bare multi-value flag argument.
// Arguments carrying an inline value are left for pflag.
func resolveMultiValueFlag(argument string) (string, bool) {
	name, hasInlineValue, isLong := splitFlagArgument(argument)
	if len(name) == 0 || hasInlineValue {
		return "", false
	}

	multiValueRegistryMutex.RLock()
	defer multiValueRegistryMutex.RUnlock()
	if isLong {
		_, exists := multiValueFlagNames[name]
		return name, exists
	}
	longName, exists := multiValueFlagByShorthand[name]
	return longName, exists
}
