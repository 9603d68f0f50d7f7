package util

import (
	"bufio"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/driftsync/driftsync/pkg/errors"
)

// HandleFatalError prints the friendliest form of the error available and
// exits with a non-zero status.
func HandleFatalError(err error) {
	log.WithError(err).Debug("Fatal error")
	fmt.Fprintln(os.Stderr, errors.GetPrintableMessage(err))
	os.Exit(1)
}

// HandlePanic recovers from panics in the main goroutine so that users see
// a crash report rather than a raw stack trace.
func HandlePanic() {
	r := recover()
	if r == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "driftsync crashed: %v\n\n"+
		"This is a bug. Please report it along with the trace below.\n\n%s",
		r, debug.Stack())
	os.Exit(1)
}

// PromptYesOrNo asks the user the given question until they answer yes or
// no.
func PromptYesOrNo(question string) (bool, error) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Printf("%s (y/n): ", question)

		response, err := reader.ReadString('\n')
		if err != nil {
			return false, errors.WithContext(err, "read response")
		}

		switch strings.ToLower(strings.TrimSpace(response)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}
