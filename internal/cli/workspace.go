package cli

import "os"

// WorkspaceEnv overrides the toolchain working directory when set.
const WorkspaceEnv = "WORKSPACE"

// ResolveWorkspace picks the working directory for toolchain invocations.
// Precedence: explicit override → WORKSPACE environment variable → the
// process working directory. The result is resolved once at startup and
// fixed for the life of the Runner.
func ResolveWorkspace(override string) string {
	if override != "" {
		return override
	}
	if ws := os.Getenv(WorkspaceEnv); ws != "" {
		return ws
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}
