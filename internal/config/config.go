// Package config handles meshview configuration loading and management.
package config

import (
	"math"
	"time"

	"github.com/taigrr/meshview/pkg/viewport"
)

// Config holds all meshview settings.
type Config struct {
	Viewer      ViewerConfig     `yaml:"viewer"`
	Annotations AnnotationConfig `yaml:"annotations"`
	Server      ServerConfig     `yaml:"server"`
	Logging     LoggingConfig    `yaml:"logging"`
}

// ViewerConfig holds navigation and appearance settings.
type ViewerConfig struct {
	FPS            int     `yaml:"fps"`
	FOV            float64 `yaml:"fov"`
	TransitionMS   int     `yaml:"transition_ms"`
	ZoomStep       float64 `yaml:"zoom_step"`
	RotateStepDeg  float64 `yaml:"rotate_step_deg"`
	MinDistance    float64 `yaml:"min_distance"`
	MaxDistance    float64 `yaml:"max_distance"` // 0 means unbounded
	RotateSpeed    float64 `yaml:"rotate_speed"`
	ZoomSpeed      float64 `yaml:"zoom_speed"`
	Damping        bool    `yaml:"damping"`
	HighlightColor string  `yaml:"highlight_color"`
	FocusColor     string  `yaml:"focus_color"`
}

// AnnotationConfig holds annotation storage settings.
type AnnotationConfig struct {
	SeedPath string `yaml:"seed_path"`
	ModelID  string `yaml:"model_id"` // empty uses the loaded scene's id
}

// ServerConfig holds websocket server settings.
type ServerConfig struct {
	Addr        string        `yaml:"addr"`
	SessionFile string        `yaml:"session_file"` // empty keeps sessions in memory
	TokenTTL    time.Duration `yaml:"token_ttl"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Viewer: ViewerConfig{
			FPS:            60,
			FOV:            viewport.DefaultFOV,
			TransitionMS:   int(viewport.DefaultTransition / time.Millisecond),
			ZoomStep:       viewport.ZoomStep,
			RotateStepDeg:  22.5,
			RotateSpeed:    1,
			ZoomSpeed:      1,
			HighlightColor: "#ff0000",
			FocusColor:     "#00ff00",
		},
		Annotations: AnnotationConfig{
			SeedPath: "annotations.json",
		},
		Server: ServerConfig{
			Addr:     "127.0.0.1:8080",
			TokenTTL: 24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Settings converts the viewer section for the viewport package. Colors
// that do not parse fall back to the defaults.
func (c *Config) Settings() viewport.Settings {
	s := viewport.DefaultSettings()
	v := c.Viewer
	if v.FPS > 0 {
		s.FPS = v.FPS
	}
	if v.FOV > 0 {
		s.FOV = v.FOV
	}
	if v.TransitionMS >= 0 {
		s.Transition = time.Duration(v.TransitionMS) * time.Millisecond
	}
	if v.ZoomStep > 0 && v.ZoomStep < 1 {
		s.ZoomStep = v.ZoomStep
	}
	if v.RotateStepDeg != 0 {
		s.RotateStep = v.RotateStepDeg * math.Pi / 180
	}
	s.MinDistance = math.Max(0, v.MinDistance)
	if v.MaxDistance > 0 {
		s.MaxDistance = v.MaxDistance
	}
	if v.RotateSpeed > 0 {
		s.RotateSpeed = v.RotateSpeed
	}
	if v.ZoomSpeed > 0 {
		s.ZoomSpeed = v.ZoomSpeed
	}
	s.Damping = v.Damping
	if rgb, err := ParseColor(v.HighlightColor); err == nil {
		s.PickColor = rgb
	}
	if rgb, err := ParseColor(v.FocusColor); err == nil {
		s.FocusColor = rgb
	}
	s.ModelID = c.Annotations.ModelID
	return s
}
