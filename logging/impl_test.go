package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.viam.com/test"
)

func TestConsoleOutputFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewBlankLogger("impl")
	logger.AddAppender(NewWriterAppender(&buf))

	logger.Info("info log")
	line, err := buf.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)
	parts := strings.Split(strings.TrimSuffix(line, "\n"), "\t")
	test.That(t, len(parts), test.ShouldEqual, 5)
	test.That(t, len(parts[0]), test.ShouldEqual, len("2006-01-02T15:04:05.000Z"))
	test.That(t, parts[1], test.ShouldEqual, "INFO")
	test.That(t, parts[2], test.ShouldEqual, "impl")
	test.That(t, parts[3], test.ShouldStartWith, "logging/impl_test.go:")
	test.That(t, parts[4], test.ShouldEqual, "info log")

	logger.Infow("structured", "segment", 3, "curvature", 0.5)
	line, err = buf.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)
	parts = strings.Split(strings.TrimSuffix(line, "\n"), "\t")
	test.That(t, len(parts), test.ShouldEqual, 6)
	test.That(t, parts[5], test.ShouldEqual, `{"segment":3,"curvature":0.5}`)
}

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewBlankLogger("levels")
	logger.AddAppender(NewWriterAppender(&buf))
	logger.SetLevel(WARN)

	logger.Debug("dropped")
	logger.Info("dropped")
	test.That(t, buf.Len(), test.ShouldEqual, 0)

	logger.Warnf("kept %d", 1)
	test.That(t, buf.String(), test.ShouldContainSubstring, "kept 1")

	sub := logger.Sublogger("child")
	test.That(t, sub.Name(), test.ShouldEqual, "levels.child")
	test.That(t, sub.GetLevel(), test.ShouldEqual, WARN)
}

func TestLevelFromString(t *testing.T) {
	for str, expected := range map[string]Level{"debug": DEBUG, "INFO": INFO, "Warn": WARN, "error": ERROR} {
		level, err := LevelFromString(str)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, expected)
	}
	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)

	data, err := WARN.MarshalJSON()
	test.That(t, err, test.ShouldBeNil)
	var level Level
	test.That(t, level.UnmarshalJSON(data), test.ShouldBeNil)
	test.That(t, level, test.ShouldEqual, WARN)
}

func TestObservedTestLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Warnw("no path set", "status", "no_path")
	test.That(t, logs.FilterMessage("no path set").Len(), test.ShouldEqual, 1)
	test.That(t, logs.All()[0].ContextMap()["status"], test.ShouldEqual, "no_path")
}

func TestUpdateLoggerRegistry(t *testing.T) {
	root := NewLogger("registrytest")
	follower := root.Sublogger("follower")
	profile := root.Sublogger("profile")

	err := UpdateLoggerRegistry([]LoggerPatternConfig{
		{Pattern: "registrytest.*", Level: "error"},
		{Pattern: "registrytest.follower", Level: "debug"},
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, follower.GetLevel(), test.ShouldEqual, DEBUG)
	test.That(t, profile.GetLevel(), test.ShouldEqual, ERROR)
	test.That(t, root.GetLevel(), test.ShouldEqual, INFO)

	named, ok := LoggerNamed("registrytest.profile")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, named, test.ShouldEqual, profile)

	err = UpdateLoggerRegistry([]LoggerPatternConfig{
		{Pattern: "bad..pattern", Level: "info"},
		{Pattern: "ok", Level: "shout"},
	})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "log[0]")
	test.That(t, err.Error(), test.ShouldContainSubstring, "log[1]")
}

func TestUnpairedKey(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Debugw("odd fields", "segment", 2, "curvature")
	entry := logs.All()[0]
	test.That(t, entry.ContextMap()["segment"], test.ShouldEqual, int64(2))
	test.That(t, entry.ContextMap()["error"], test.ShouldContainSubstring, "curvature")
}

func TestAsZap(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	sugared := logger.AsZap()
	sugared.Warnw("through zap", "loop", "sim")
	test.That(t, logs.FilterMessage("through zap").Len(), test.ShouldEqual, 1)
	test.That(t, logs.All()[0].ContextMap()["loop"], test.ShouldEqual, "sim")
}
