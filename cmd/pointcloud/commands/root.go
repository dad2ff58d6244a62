package commands

import (
	"fmt"

	gp "github.com/gekko3d/gridparticles"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	particles int
	width     int
	height    int
	debug     bool
)

// rootCmd opens the viewer
var rootCmd = &cobra.Command{
	Use:   "pointcloud",
	Short: "Render a GPU particle buffer as points",
	Long: `pointcloud uploads a seeded particle set into a WebGPU storage buffer
and draws it every frame as a point list through the particle render adapter.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := gp.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		if err := applyFlags(cmd, cfg); err != nil {
			return err
		}
		run(cfg)
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	rootCmd.Flags().IntVarP(&particles, "particles", "n", 0, "number of particles to seed")
	rootCmd.Flags().IntVar(&width, "width", 0, "window width")
	rootCmd.Flags().IntVar(&height, "height", 0, "window height")
	rootCmd.Flags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

// applyFlags overrides cfg with the flags the user set explicitly.
func applyFlags(cmd *cobra.Command, cfg *gp.Config) error {
	flags := cmd.Flags()
	if flags.Changed("particles") {
		cfg.Particles.Count = particles
	}
	if flags.Changed("width") {
		cfg.Window.Width = width
	}
	if flags.Changed("height") {
		cfg.Window.Height = height
	}
	if flags.Changed("debug") {
		cfg.Logging.Debug = debug
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

func run(cfg *gp.Config) {
	app := gp.NewAppBuilder().
		UseModule(
			gp.LoggingModule{Prefix: "pointcloud", Debug: cfg.Logging.Debug, Level: cfg.Logging.Level},
			gp.TimeModule{},
			gp.RenderModule{},
			gp.GpuModule{
				Width:  cfg.Window.Width,
				Height: cfg.Window.Height,
				Title:  cfg.Window.Title,
			},
			gp.PointCloudModule{Config: cfg},
		).
		Build()

	app.Run()
}
