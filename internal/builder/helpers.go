package builder

import (
	"regexp"

	"github.com/go-kit/log/level"
)

var windowCRregexp = regexp.MustCompile(`\r?\n`)

func replaceWindowsCarriageReturn(b []byte) []byte {
	return windowCRregexp.ReplaceAll(b, []byte("\n"))
}

func (b *Builder) debug(keyvals ...interface{}) {
	level.Debug(b.Log).Log(keyvals...)
}

func (b *Builder) info(keyvals ...interface{}) {
	level.Info(b.Log).Log(keyvals...)
}

func (b *Builder) warn(keyvals ...interface{}) {
	level.Warn(b.Log).Log(keyvals...)
}

func (b *Builder) error(keyvals ...interface{}) {
	level.Error(b.Log).Log(keyvals...)
}
