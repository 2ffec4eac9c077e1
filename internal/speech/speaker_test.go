package speech

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpeakWritesTextToStdin(t *testing.T) {
	scriptPath := writeStdinCaptureScript(t)
	outputPath := filepath.Join(t.TempDir(), "stdin.txt")

	speaker := NewSpeaker([]string{scriptPath, outputPath}, "en-US", nil)
	require.NoError(t, speaker.Speak(context.Background(), "  hello from recite \n"))

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	require.Equal(t, "hello from recite", string(data))
}

func TestArgvExpandsLanguage(t *testing.T) {
	speaker := NewSpeaker([]string{"espeak-ng", "-v", "{lang}", "--stdin", "lang={lang}"}, " en-GB ", nil)
	require.Equal(t, []string{"espeak-ng", "-v", "en-GB", "--stdin", "lang=en-GB"}, speaker.Argv())
}

func TestSpeakLanguageReachesCommand(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "args.sh")
	outputPath := filepath.Join(dir, "args.txt")
	script := "#!/usr/bin/env bash\nset -euo pipefail\ncat > /dev/null\nprintf '%s' \"$2\" > \"$1\"\n"
	require.NoError(t, os.WriteFile(scriptPath, []byte(script), 0o755))

	speaker := NewSpeaker([]string{scriptPath, outputPath, "{lang}"}, "fr-FR", nil)
	require.NoError(t, speaker.Speak(context.Background(), "bonjour"))

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	require.Equal(t, "fr-FR", string(data))
}

func TestSpeakSkipsEmptyText(t *testing.T) {
	scriptPath := writeStdinCaptureScript(t)
	outputPath := filepath.Join(t.TempDir(), "stdin.txt")

	speaker := NewSpeaker([]string{scriptPath, outputPath}, "en-US", nil)
	require.NoError(t, speaker.Speak(context.Background(), "   "))

	_, statErr := os.Stat(outputPath)
	require.True(t, os.IsNotExist(statErr))
}

func TestSpeakDisabledWithoutCommand(t *testing.T) {
	speaker := NewSpeaker(nil, "en-US", nil)
	require.ErrorIs(t, speaker.Speak(context.Background(), "hello"), ErrDisabled)
}

func TestSpeakReportsCommandFailure(t *testing.T) {
	speaker := NewSpeaker([]string{writeFailScript(t, "no voice installed")}, "en-US", nil)

	err := speaker.Speak(context.Background(), "hello")
	require.Error(t, err)
	require.Contains(t, err.Error(), "speak passage")
	require.Contains(t, err.Error(), "no voice installed")
}

func TestRunCommandWithInputRejectsEmptyArgv(t *testing.T) {
	err := runCommandWithInput(context.Background(), nil, "payload")
	require.Error(t, err)
	require.Contains(t, err.Error(), "argv cannot be empty")
}

func writeStdinCaptureScript(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "capture-stdin.sh")
	script := `#!/usr/bin/env bash
set -euo pipefail
cat > "$1"
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func writeFailScript(t *testing.T, message string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fail.sh")
	script := "#!/usr/bin/env bash\nset -euo pipefail\ncat > /dev/null\necho \"" + message + "\" >&2\nexit 1\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}
