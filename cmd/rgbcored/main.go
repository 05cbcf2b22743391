// Command rgbcored wires the LED ring's Config Store, rendering
// engine, and control plane into one running process. Grounded on
// ambient-light-agent/cmd/server/main.go's Load->Store->Hub->Router
// wiring and its signal.Notify-driven graceful shutdown.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Darkone83/XBOX-RGB/internal/config"
	"github.com/Darkone83/XBOX-RGB/internal/controlplane"
	"github.com/Darkone83/XBOX-RGB/internal/render"
	"github.com/Darkone83/XBOX-RGB/internal/sink"
)

const bootFadeDuration = 3200 * time.Millisecond

func main() {
	env := config.LoadEnvironment()
	store := config.NewStore(env.StatePath)

	busNames := [4]string{env.SPIBus0, env.SPIBus1, env.SPIBus2, env.SPIBus3}
	tx := sink.Detect(busNames, store.Snapshot().Count, true)

	scheduler := render.NewScheduler(store, tx, bootFadeDuration)
	scheduler.ArmBootFade(time.Now())

	udpServer, err := controlplane.NewServer(controlplane.Options{
		Port:          env.UDPPort,
		PSK:           env.PSK,
		DeviceName:    env.DeviceName,
		BuildVersion:  config.BuildVersion,
		PendingBudget: time.Duration(env.QuietBudget) * time.Microsecond,
	})
	if err != nil {
		log.Fatalf("rgbctrl: udp listen failed: %v", err)
	}
	udpServer.Attach(store)

	httpServer := &http.Server{
		Addr:    env.HTTPAddr,
		Handler: controlplane.Handler(env.HTTPBase, store, env.DeviceName, config.BuildVersion, config.Copyright),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 3)

	go func() {
		errCh <- scheduler.Run(ctx, nil)
	}()
	go func() {
		errCh <- udpServer.Run(ctx)
	}()
	go func() {
		log.Printf("rgbctrl: http listening on %s (base %s)", env.HTTPAddr, env.HTTPBase)
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	log.Printf("rgbctrl: udp listening on :%d", env.UDPPort)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			log.Printf("rgbctrl: component exited: %v", err)
		}
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("rgbctrl: http shutdown: %v", err)
	}

	if err := store.Save(); err != nil {
		log.Printf("rgbctrl: final save failed: %v", err)
	}
}
