package logging

import (
	"regexp"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// LoggerPatternConfig is the level setting for the loggers whose names match a pattern.
type LoggerPatternConfig struct {
	Pattern string `json:"pattern"`
	Level   string `json:"level"`
}

const (
	// e.g. "follower".
	validLoggerSectionName = `[a-zA-Z0-9]+([_-]*[a-zA-Z0-9]+)*`
	// e.g. "follower" or "*".
	validLoggerSectionNameWithWildcard = `(` + validLoggerSectionName + `|\*)`
	// e.g. "motioncore.*.pure_pursuit".
	validLoggerSectionsWithWildcard = validLoggerSectionNameWithWildcard + `(\.` + validLoggerSectionNameWithWildcard + `)*`
	// Restricts above regex to be the entire pattern.
	validLoggerName = `^` + validLoggerSectionsWithWildcard + `$`
)

var loggerPatternRegexp = regexp.MustCompile(validLoggerName)

func validatePattern(pattern string) bool {
	return loggerPatternRegexp.MatchString(pattern)
}

func buildRegexFromPattern(pattern string) string {
	var matcher strings.Builder
	matcher.WriteRune('^')
	for _, ch := range pattern {
		switch ch {
		case '*':
			matcher.WriteString(`.*`)
		case '.':
			matcher.WriteString(`\.`)
		default:
			matcher.WriteRune(ch)
		}
	}
	matcher.WriteRune('$')
	return matcher.String()
}

// ValidatePatternConfigs checks every pattern and level, returning all failures combined.
func ValidatePatternConfigs(configs []LoggerPatternConfig) error {
	var errs error
	for i, cfg := range configs {
		if !validatePattern(cfg.Pattern) {
			errs = multierr.Append(errs, errors.Errorf("log[%d]: invalid pattern %q", i, cfg.Pattern))
		}
		if _, err := LevelFromString(cfg.Level); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "log[%d]", i))
		}
	}
	return errs
}

// UpdateLoggerRegistry applies the pattern configs, in order, to every registered logger whose
// name matches. Later patterns win.
func UpdateLoggerRegistry(configs []LoggerPatternConfig) error {
	if err := ValidatePatternConfigs(configs); err != nil {
		return err
	}
	for _, cfg := range configs {
		matcher := regexp.MustCompile(buildRegexFromPattern(cfg.Pattern))
		level, err := LevelFromString(cfg.Level)
		if err != nil {
			return err
		}
		registry.forEach(func(name string, logger Logger) {
			if matcher.MatchString(name) {
				logger.SetLevel(level)
			}
		})
	}
	return nil
}

// LoggerNamed returns the registered logger with the given name, if any.
func LoggerNamed(name string) (Logger, bool) {
	return registry.loggerNamed(name)
}

type loggerRegistry struct {
	mu      sync.RWMutex
	loggers map[string]Logger
}

var registry = &loggerRegistry{loggers: make(map[string]Logger)}

func (lr *loggerRegistry) register(name string, logger Logger) {
	if name == "" {
		return
	}
	lr.mu.Lock()
	defer lr.mu.Unlock()
	lr.loggers[name] = logger
}

func (lr *loggerRegistry) loggerNamed(name string) (Logger, bool) {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	logger, ok := lr.loggers[name]
	return logger, ok
}

func (lr *loggerRegistry) forEach(fn func(name string, logger Logger)) {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	for name, logger := range lr.loggers {
		fn(name, logger)
	}
}
