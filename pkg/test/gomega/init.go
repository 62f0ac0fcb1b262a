// Package lgomega makes gomega's package-level Expect usable in plain go tests. Import it for its side effect:
// a failed assertion panics with the message and the calling frames, which fails the running test.
package lgomega

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/onsi/gomega"
)

func init() {
	gomega.RegisterFailHandler(fail)
}

func fail(message string, callerSkip ...int) {
	skip := 0
	if len(callerSkip) > 0 {
		skip = callerSkip[0]
	}
	panic(fmt.Sprintf("\n%s\n%s", callers(skip), message))
}

// callers lists the frames above the failed assertion, leaving out gomega and the runtime and testing
// plumbing.
func callers(skip int) string {
	pcs := make([]uintptr, 32)
	// runtime.Callers, callers, fail
	n := runtime.Callers(3+skip, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var lines []string
	for {
		frame, more := frames.Next()
		if !hidden(frame.Function) {
			lines = append(lines, fmt.Sprintf("%s\n\t%s:%d", frame.Function, frame.File, frame.Line))
		}
		if !more {
			break
		}
	}
	return strings.Join(lines, "\n")
}

func hidden(function string) bool {
	for _, prefix := range []string{"github.com/onsi/gomega", "runtime.", "testing."} {
		if strings.HasPrefix(function, prefix) {
			return true
		}
	}
	return false
}
