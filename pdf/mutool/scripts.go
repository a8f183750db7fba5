package mutool

import (
	_ "embed"
	"os"
	"path/filepath"
)

//go:embed scripts/inspect.js
var inspectScript []byte

//go:embed scripts/redact.js
var redactScript []byte

const (
	inspectName = "inspect.js"
	redactName  = "redact.js"
)

// writeScripts drops the embedded scripts into dir for mutool run
func writeScripts(dir string) error {
	for name, body := range map[string][]byte{inspectName: inspectScript, redactName: redactScript} {
		if err := os.WriteFile(filepath.Join(dir, name), body, 0o600); err != nil {
			return err
		}
	}
	return nil
}
