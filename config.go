package gridparticles

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config holds the settings of the point cloud viewer.
type Config struct {
	Window    WindowConfig    `mapstructure:"window"`
	Particles ParticlesConfig `mapstructure:"particles"`
	Camera    CameraConfig    `mapstructure:"camera"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type WindowConfig struct {
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	Title  string `mapstructure:"title"`
}

type ParticlesConfig struct {
	Count     int        `mapstructure:"count"`
	Seed      int64      `mapstructure:"seed"`
	BoundsMin [3]float32 `mapstructure:"bounds_min"`
	BoundsMax [3]float32 `mapstructure:"bounds_max"`
}

type CameraConfig struct {
	Distance   float32 `mapstructure:"distance"`
	FovDegrees float32 `mapstructure:"fov_degrees"`
	OrbitSpeed float32 `mapstructure:"orbit_speed"`
	NearPlane  float32 `mapstructure:"near"`
	FarPlane   float32 `mapstructure:"far"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Debug bool   `mapstructure:"debug"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "Grid Particles",
		},
		Particles: ParticlesConfig{
			Count:     50000,
			Seed:      1,
			BoundsMin: [3]float32{-8, -8, -8},
			BoundsMax: [3]float32{8, 8, 8},
		},
		Camera: CameraConfig{
			Distance:   30,
			FovDegrees: 60,
			OrbitSpeed: 0.25,
			NearPlane:  0.1,
			FarPlane:   500,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads configuration from path (optional) and GRIDPARTICLES_*
// environment variables on top of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix("GRIDPARTICLES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		stringToArrayHook(","),
	))
	if err := v.Unmarshal(cfg, hook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// stringToArrayHook splits a string such as "-1,-1,-1" into elements for a
// fixed size array field. Environment values always arrive as strings.
func stringToArrayHook(sep string) mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t.Kind() != reflect.Array {
			return data, nil
		}
		raw := strings.TrimSpace(reflect.ValueOf(data).String())
		if raw == "" {
			return []string{}, nil
		}
		parts := strings.Split(raw, sep)
		if len(parts) != t.Len() {
			return nil, fmt.Errorf("expected %d values separated by %q, got %q", t.Len(), sep, raw)
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	}
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("window.width", cfg.Window.Width)
	v.SetDefault("window.height", cfg.Window.Height)
	v.SetDefault("window.title", cfg.Window.Title)

	v.SetDefault("particles.count", cfg.Particles.Count)
	v.SetDefault("particles.seed", cfg.Particles.Seed)
	v.SetDefault("particles.bounds_min", cfg.Particles.BoundsMin)
	v.SetDefault("particles.bounds_max", cfg.Particles.BoundsMax)

	v.SetDefault("camera.distance", cfg.Camera.Distance)
	v.SetDefault("camera.fov_degrees", cfg.Camera.FovDegrees)
	v.SetDefault("camera.orbit_speed", cfg.Camera.OrbitSpeed)
	v.SetDefault("camera.near", cfg.Camera.NearPlane)
	v.SetDefault("camera.far", cfg.Camera.FarPlane)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.debug", cfg.Logging.Debug)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Particles.Count < 0 {
		errs = append(errs, fmt.Errorf("particle count must not be negative, got %d", c.Particles.Count))
	}
	for i := 0; i < 3; i++ {
		if c.Particles.BoundsMin[i] > c.Particles.BoundsMax[i] {
			errs = append(errs, fmt.Errorf("particle bounds min exceeds max on axis %d", i))
		}
	}
	if c.Camera.NearPlane <= 0 || c.Camera.FarPlane <= c.Camera.NearPlane {
		errs = append(errs, fmt.Errorf("camera clip planes invalid: near=%v far=%v", c.Camera.NearPlane, c.Camera.FarPlane))
	}
	if c.Camera.FovDegrees <= 0 || c.Camera.FovDegrees >= 180 {
		errs = append(errs, fmt.Errorf("camera fov must be in (0, 180), got %v", c.Camera.FovDegrees))
	}
	return errors.Join(errs...)
}
