// Package logging configures the process-wide logrus logger for CLI output.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/sirupsen/logrus"
)

// Setup sends log lines to w, at debug level when verbose.
func Setup(w io.Writer, verbose bool) {
	logrus.SetOutput(w)
	logrus.SetFormatter(&PlainFormatter{})
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// PlainFormatter prints the message as an operator would read it, with a
// level prefix for anything that is not plain progress and trailing
// key=value fields.
type PlainFormatter struct{}

func (f *PlainFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer

	switch e.Level {
	case logrus.WarnLevel:
		b.WriteString("WARN: ")
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		b.WriteString("ERROR: ")
	case logrus.DebugLevel, logrus.TraceLevel:
		b.WriteString("  ")
	}
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}
