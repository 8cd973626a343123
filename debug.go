package fit

import (
	"log"
	"os"
	"strconv"
)

// debug gates verbose tracing of downgraded field definitions and slot
// replacements, toggled by the GOFIT_DEBUG environment variable.
var debug, _ = strconv.ParseBool(os.Getenv("GOFIT_DEBUG"))

func debugf(format string, args ...any) {
	if debug {
		log.Printf(format, args...)
	}
}
