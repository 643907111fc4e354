package logging

import (
	"os"
	"strings"

	"github.com/apex/log"
	jsonhandler "github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
)

// Setup installs the apex/log handler and level. Unknown levels fall back to info.
func Setup(level, format string) {
	if strings.EqualFold(format, "text") {
		log.SetHandler(text.New(os.Stderr))
	} else {
		log.SetHandler(jsonhandler.New(os.Stderr))
	}

	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}
