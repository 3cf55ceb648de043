package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type coreBuilder func(level zapcore.LevelEnabler) zapcore.Core

// impl embeds the sugared logger so call sites report their own file and line.
type impl struct {
	*zap.SugaredLogger

	name  string
	level zap.AtomicLevel
	build coreBuilder
}

func newImpl(name string, level Level, build coreBuilder) *impl {
	atomic := zap.NewAtomicLevelAt(level.AsZap())
	sugared := zap.New(build(atomic), zap.AddCaller()).Sugar()
	if name != "" {
		sugared = sugared.Named(name)
	}
	return &impl{
		SugaredLogger: sugared,
		name:          name,
		level:         atomic,
		build:         build,
	}
}

func (imp *impl) Sublogger(subname string) Logger {
	newName := subname
	if imp.name != "" {
		newName = imp.name + "." + subname
	}
	return newImpl(newName, imp.GetLevel(), imp.build)
}

func (imp *impl) SetLevel(level Level) {
	imp.level.SetLevel(level.AsZap())
}

func (imp *impl) GetLevel() Level {
	switch imp.level.Level() {
	case zapcore.DebugLevel:
		return DEBUG
	case zapcore.InfoLevel:
		return INFO
	case zapcore.WarnLevel:
		return WARN
	default:
		return ERROR
	}
}

func (imp *impl) AsZap() *zap.SugaredLogger {
	return imp.SugaredLogger
}
