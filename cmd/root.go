package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"note-trainer/config"
	"note-trainer/debug"
	"note-trainer/midi"
	"note-trainer/notes"
	"note-trainer/theme"
	"note-trainer/trainer"
	"note-trainer/tui"
)

var (
	clefFlag    string
	solfegeFlag bool
	debugFlag   bool
	paletteFlag string
)

var rootCmd = &cobra.Command{
	Use:   "note-trainer",
	Short: "Sight-reading practice for treble and bass clef",
	Long: `Shows notes on a staff one at a time. Name each note with the letter
keys, a MIDI keyboard, or a Launchpad.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&clefFlag, "clef", "", "clef to start with (treble or bass)")
	pf.BoolVar(&solfegeFlag, "solfege", false, "label notes do re mi instead of C D E")
	pf.BoolVar(&debugFlag, "debug", false, "write debug logs")
	rootCmd.Flags().StringVar(&paletteFlag, "palette", "", "path to a GIMP .gpl palette")
}

func Execute() {
	err := rootCmd.Execute()
	gomidi.CloseDriver()
	cobra.CheckErr(err)
}

// loadConfig reads the config file and applies command line overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("clef") {
		clef, err := notes.ParseClef(clefFlag)
		if err != nil {
			return nil, err
		}
		cfg.Trainer.Clef = clef
	}
	if flags.Changed("solfege") {
		cfg.Trainer.DisplayMode = notes.ModeLetter
		if solfegeFlag {
			cfg.Trainer.DisplayMode = notes.ModeSolfege
		}
	}
	return cfg, nil
}

func logLevel(cfg *config.Config) zapcore.Level {
	if debugFlag {
		return zapcore.DebugLevel
	}
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

func newTrainer(cfg *config.Config) *trainer.Trainer {
	opts := []trainer.Option{
		trainer.WithClef(cfg.Trainer.Clef),
		trainer.WithDisplayMode(cfg.Trainer.DisplayMode),
	}
	if d := cfg.FeedbackDelay(); d > 0 {
		opts = append(opts, trainer.WithFeedbackDelay(d))
	}
	return trainer.New(opts...)
}

func newDeviceManager(cfg *config.Config) *midi.DeviceManager {
	return midi.NewDeviceManager(
		midi.WithPollRate(cfg.PollRate()),
		midi.WithInputFilter(cfg.MIDI.InputFilter),
		midi.WithLaunchpads(cfg.MIDI.Launchpad),
	)
}

func loadTheme() (*theme.Theme, error) {
	if paletteFlag == "" {
		return theme.Default(), nil
	}
	palette, err := theme.LoadGPL(paletteFlag)
	if err != nil {
		return nil, err
	}
	return theme.New(palette), nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if debugFlag {
		if err := debug.Enable(logLevel(cfg)); err != nil {
			return err
		}
		defer debug.Disable()
	}

	th, err := loadTheme()
	if err != nil {
		return err
	}

	tr := newTrainer(cfg)
	tr.ResetGame()

	// Start device manager in background
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	deviceMgr := newDeviceManager(cfg)
	go deviceMgr.Run(ctx)

	log := debug.L().Named("prefs")
	save := func(clef notes.Clef, mode notes.DisplayMode) {
		cfg.Trainer.Clef = clef
		cfg.Trainer.DisplayMode = mode
		if err := cfg.Save(); err != nil {
			log.Warn("save preferences", zap.Error(err))
		}
	}

	m := tui.NewModel(tr, deviceMgr, th, save)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
