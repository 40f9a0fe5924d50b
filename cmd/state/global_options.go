package state

import "path/filepath"

const defaultConfigFileName = "config.json"

// GlobalOptions contains global config values that apply for all flakerun
// sub-commands.
type GlobalOptions struct {
	ConfigFilePath string
	Quiet          bool
	NoColor        bool
	LogOutput      string
	LogFormat      string
	TracesOutput   string
	Verbose        bool
}

// GetDefaultGlobalOptions returns the default global flags.
func GetDefaultGlobalOptions(confDir string) GlobalOptions {
	return GlobalOptions{
		ConfigFilePath: filepath.Join(confDir, "flakerun", defaultConfigFileName),
		LogOutput:      "stderr",
		TracesOutput:   "none",
	}
}

func consolidateGlobalFlags(defaultFlags GlobalOptions, env map[string]string) GlobalOptions {
	result := defaultFlags

	if val, ok := env["FLAKERUN_CONFIG"]; ok {
		result.ConfigFilePath = val
	}
	if val, ok := env["FLAKERUN_LOG_OUTPUT"]; ok {
		result.LogOutput = val
	}
	if val, ok := env["FLAKERUN_LOG_FORMAT"]; ok {
		result.LogFormat = val
	}
	if val, ok := env["FLAKERUN_TRACES_OUTPUT"]; ok {
		result.TracesOutput = val
	}
	if env["FLAKERUN_NO_COLOR"] != "" {
		result.NoColor = true
	}
	// Support https://no-color.org/, even an empty value should disable the
	// color output.
	if _, ok := env["NO_COLOR"]; ok {
		result.NoColor = true
	}
	return result
}
