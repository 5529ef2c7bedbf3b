package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"note-trainer/debug"
	"note-trainer/midi"
	"note-trainer/server"
	"note-trainer/trainer"
)

var addrFlag string

func init() {
	serveCmd.Flags().StringVar(&addrFlag, "addr", "", "listen address (default from config, :8080)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the game as a JSON API",
	Long:  `Serves the game state over HTTP. Connected MIDI inputs still submit guesses.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if addrFlag != "" {
		cfg.Server.Addr = addrFlag
	}

	debug.EnableStderr(logLevel(cfg))
	defer debug.Disable()
	log := debug.L().Named("serve")

	tr := newTrainer(cfg)
	tr.ResetGame()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deviceMgr := newDeviceManager(cfg)
	go deviceMgr.Run(ctx)
	go forwardDevices(ctx, deviceMgr, tr, log)

	api := server.New(tr,
		server.WithLogger(log.Named("http")),
		server.WithAllowedOrigins(cfg.Server.AllowedOrigins),
	)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	log.Info("listening", zap.String("addr", cfg.Server.Addr))

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// forwardDevices feeds controller letters to the trainer and mirrors
// feedback back to the controllers. It plays the part the TUI plays when
// running interactively.
func forwardDevices(ctx context.Context, deviceMgr *midi.DeviceManager, tr *trainer.Trainer, log *zap.Logger) {
	events := deviceMgr.Events()
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			switch event.Type {
			case midi.DeviceConnected:
				log.Info("controller connected", zap.String("id", event.ID), zap.Stringer("type", event.Controller.Type()))
				c := event.Controller
				go func() {
					for l := range c.Letters() {
						tr.SubmitGuess(string(l))
					}
				}()
			case midi.DeviceDisconnected:
				log.Info("controller disconnected", zap.String("id", event.ID))
			case midi.DeviceUnavailable:
				log.Warn(midi.Issue(event.Err))
			}

		case <-tr.UpdateChan:
			fb := tr.FeedbackMap()
			for id, c := range deviceMgr.Controllers() {
				if err := c.ShowFeedback(fb); err != nil {
					log.Debug("show feedback", zap.String("id", id), zap.Error(err))
				}
			}
		}
	}
}
