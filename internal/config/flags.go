package config

import "github.com/spf13/pflag"

// Flags are the command-line overrides shared by every command.
type Flags struct {
	Config string
	Debug  bool
	FPS    int
}

// Register binds the flags to a command's persistent flag set.
func (f *Flags) Register(fs *pflag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "enable debug logging")
	fs.IntVar(&f.FPS, "fps", 0, "frame rate for animation and inertia")
}

func (f Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.FPS > 0 {
		cfg.Viewer.FPS = f.FPS
	}
}
